package validation

import (
	"net/url"
	"slices"
	"strings"

	apperrors "github.com/anime-shed/palette-inspector/internal/errors"
)

// URLValidator checks analyzer endpoint URLs before the HTTP analyzer is built
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator accepts http and https URLs on any host
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// NewURLValidatorWithOptions restricts schemes and, when hosts is non-empty, hosts
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateURL reports whether rawURL can serve as an analyzer base URL.
// Query strings and fragments are rejected because the client appends a path.
func (v *URLValidator) ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !slices.Contains(v.allowedSchemes, parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if len(v.allowedHosts) > 0 && !slices.Contains(v.allowedHosts, parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return apperrors.NewValidationError("URL must not carry a query or fragment", nil)
	}

	return nil
}
