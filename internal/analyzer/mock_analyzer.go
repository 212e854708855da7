package analyzer

import (
	"context"
	"time"

	"github.com/anime-shed/palette-inspector/pkg/models"
)

// MockAnalyzer waits for a fixed delay and returns the demo profile
type MockAnalyzer struct {
	delay time.Duration
}

// NewMockAnalyzer creates a mock analyzer. A zero delay returns immediately.
func NewMockAnalyzer(delay time.Duration) *MockAnalyzer {
	return &MockAnalyzer{delay: delay}
}

func (m *MockAnalyzer) Analyze(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	return DemoResult(), nil
}

func (m *MockAnalyzer) Name() string {
	return "mock"
}
