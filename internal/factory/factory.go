package factory

import (
	"fmt"
	"time"

	"github.com/anime-shed/palette-inspector/internal/analyzer"
	"github.com/anime-shed/palette-inspector/internal/config"
)

// AnalyzerType represents the analyzer backends a deployment can select
type AnalyzerType string

const (
	// MockAnalyzer returns the fixed demo profile after a configurable delay
	MockAnalyzer AnalyzerType = config.AnalyzerModeMock
	// HTTPAnalyzer posts the selfies to a remote /api/analyze endpoint
	HTTPAnalyzer AnalyzerType = config.AnalyzerModeHTTP
)

// AnalyzerFactory creates color analyzers
type AnalyzerFactory interface {
	CreateAnalyzer(analyzerType AnalyzerType) (analyzer.ColorAnalyzer, error)
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct {
	baseURL   string
	timeout   time.Duration
	mockDelay time.Duration
}

// NewAnalyzerFactory creates an analyzer factory from configuration
func NewAnalyzerFactory(cfg *config.Config) AnalyzerFactory {
	return &analyzerFactory{
		baseURL:   cfg.AnalyzerURL,
		timeout:   cfg.AnalysisTimeout,
		mockDelay: cfg.AnalyzerMockDelay,
	}
}

// CreateAnalyzer creates an analyzer based on the specified type
func (f *analyzerFactory) CreateAnalyzer(analyzerType AnalyzerType) (analyzer.ColorAnalyzer, error) {
	switch analyzerType {
	case MockAnalyzer:
		return analyzer.NewMockAnalyzer(f.mockDelay), nil
	case HTTPAnalyzer:
		if f.baseURL == "" {
			return nil, fmt.Errorf("http analyzer requires ANALYZER_URL")
		}
		return analyzer.NewHTTPAnalyzer(f.baseURL, f.timeout), nil
	default:
		return nil, fmt.Errorf("unsupported analyzer type: %s", analyzerType)
	}
}

// NewAnalyzerFromConfig builds the analyzer named by cfg.AnalyzerMode
func NewAnalyzerFromConfig(cfg *config.Config) (analyzer.ColorAnalyzer, error) {
	return NewAnalyzerFactory(cfg).CreateAnalyzer(AnalyzerType(cfg.AnalyzerMode))
}
