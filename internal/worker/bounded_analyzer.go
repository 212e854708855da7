package worker

import (
	"context"

	"github.com/anime-shed/palette-inspector/internal/analyzer"
	"github.com/anime-shed/palette-inspector/pkg/models"
)

// BoundedAnalyzer runs every Analyze call on a pool, so no more than the pool's
// worker count hit the underlying analyzer at once. Callers wait for a slot.
type BoundedAnalyzer struct {
	inner analyzer.ColorAnalyzer
	pool  *Pool
}

// NewBoundedAnalyzer wraps a with p. The pool must be started.
func NewBoundedAnalyzer(a analyzer.ColorAnalyzer, p *Pool) *BoundedAnalyzer {
	return &BoundedAnalyzer{inner: a, pool: p}
}

func (b *BoundedAnalyzer) Analyze(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error) {
	var (
		result *models.AnalysisResult
		err    error
	)
	if poolErr := b.pool.Do(ctx, func() {
		result, err = b.inner.Analyze(ctx, files)
	}); poolErr != nil {
		return nil, poolErr
	}
	return result, err
}

func (b *BoundedAnalyzer) Name() string {
	return b.inner.Name()
}
