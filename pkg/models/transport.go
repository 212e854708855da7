package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ProgressResponse is returned by the progress endpoint while a run is active
// and after it settles.
type ProgressResponse struct {
	Progress
	Analyzing bool   `json:"analyzing"`
	Redirect  string `json:"redirect,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Time    string                 `json:"time"`
	Metrics map[string]interface{} `json:"metrics,omitempty"`
}
