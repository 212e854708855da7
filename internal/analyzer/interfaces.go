package analyzer

import (
	"context"

	"github.com/anime-shed/palette-inspector/pkg/models"
)

// ColorAnalyzer produces a color profile from a set of selfies. The mock and the
// remote client are interchangeable behind this interface.
type ColorAnalyzer interface {
	Analyze(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error)

	// Name identifies the implementation in logs and health output
	Name() string
}
