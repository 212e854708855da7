package validation

import (
	"strings"

	"github.com/anime-shed/palette-inspector/pkg/models"
)

const (
	// MinFiles is the fewest selfies an analysis run accepts
	MinFiles = 2
	// MaxFiles caps the upload list
	MaxFiles = 3
)

// AcceptedExtensions are advertised to the file picker
var AcceptedExtensions = []string{".jpeg", ".jpg", ".png", ".webp"}

// IsImage reports whether the declared media type is an image type
func IsImage(f models.UploadedFile) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(f.ContentType)), "image/")
}

// UploadGate enforces the 2-3 selfie bound on an upload list. It never
// mutates its inputs.
type UploadGate struct {
	maxFiles int
	minFiles int
}

// NewUploadGate returns a gate with the standard bounds
func NewUploadGate() *UploadGate {
	return &UploadGate{maxFiles: MaxFiles, minFiles: MinFiles}
}

// Accept appends the image-typed entries of incoming to existing, keeping their
// relative order, and truncates the combined list to the cap. Non-image entries
// are dropped silently. When existing is already full, it is returned as is.
func (g *UploadGate) Accept(existing, incoming []models.UploadedFile) []models.UploadedFile {
	out := models.CloneFiles(existing)
	if g.IsFull(out) {
		return out
	}
	for _, f := range incoming {
		if IsImage(f) {
			out = append(out, f)
		}
	}
	if len(out) > g.maxFiles {
		out = out[:g.maxFiles]
	}
	return out
}

// Remove drops the entry at index. Out-of-range indexes leave the list unchanged.
func (g *UploadGate) Remove(files []models.UploadedFile, index int) []models.UploadedFile {
	out := make([]models.UploadedFile, 0, len(files))
	for i, f := range files {
		if i != index {
			out = append(out, f)
		}
	}
	return out
}

// CanAnalyze reports whether the list satisfies the analysis precondition
func (g *UploadGate) CanAnalyze(files []models.UploadedFile) bool {
	return len(files) >= g.minFiles
}

// IsFull reports whether further intake is disabled
func (g *UploadGate) IsFull(files []models.UploadedFile) bool {
	return len(files) >= g.maxFiles
}

// Remaining is how many more files the list can take
func (g *UploadGate) Remaining(files []models.UploadedFile) int {
	if n := g.maxFiles - len(files); n > 0 {
		return n
	}
	return 0
}
