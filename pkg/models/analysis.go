package models

// AnalysisResult represents the color profile produced by an analysis run.
// Field names follow the /api/analyze wire contract.
type AnalysisResult struct {
	SkinColor         string   `json:"skinColor"`
	PupilColor        string   `json:"pupilColor"`
	HairColor         string   `json:"hairColor"`
	ResultText        string   `json:"resultText"`
	Season            string   `json:"season"`
	RecommendedColors []string `json:"recommendedColors"`
	AvoidColors       []string `json:"avoidColors"`
}

// Clone returns a deep copy so callers never share the color slices
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.RecommendedColors = append([]string(nil), r.RecommendedColors...)
	out.AvoidColors = append([]string(nil), r.AvoidColors...)
	return &out
}

// UploadedFile is an opaque image blob together with its declared media type.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// CloneFiles copies the slice header and entries; Data is shared since blobs
// are never mutated after intake.
func CloneFiles(files []UploadedFile) []UploadedFile {
	out := make([]UploadedFile, len(files))
	copy(out, files)
	return out
}

// RunState names a state of the analysis simulation.
type RunState string

const (
	RunIdle       RunState = "idle"
	RunValidating RunState = "validating"
	RunStepping   RunState = "stepping"
	RunProducing  RunState = "producing_result"
	RunDone       RunState = "done"
	RunFailed     RunState = "failed"
	RunCancelled  RunState = "cancelled"
)

// Progress reports where an analysis run currently is.
type Progress struct {
	State   RunState `json:"state"`
	Step    int      `json:"step"`
	Total   int      `json:"total"`
	Label   string   `json:"label"`
	Percent float64  `json:"percent"`
}
