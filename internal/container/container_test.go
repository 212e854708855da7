package container

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anime-shed/palette-inspector/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     5 * time.Second,
		AnalysisTimeout:    5 * time.Second,
		MaxRequestBodySize: 1024 * 1024,
		AnalyzerMode:       config.AnalyzerModeMock,
		StepDuration:       time.Millisecond,
		SessionTTL:         time.Minute,
		WorkerCount:        1,
	}
}

func TestNewContainer(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, err := NewContainer(testConfig())
	require.NoError(t, err)
	c.StartSweeper()
	c.StartSweeper()

	assert.Equal(t, "mock", c.Analyzer().Name())
	assert.NotNil(t, c.Service())
	assert.Equal(t, "127.0.0.1", c.Config().Host)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	c.Close()
	c.Close()
}

func TestNewContainer_HTTPModeNeedsURL(t *testing.T) {
	cfg := testConfig()
	cfg.AnalyzerMode = config.AnalyzerModeHTTP

	_, err := NewContainer(cfg)
	assert.Error(t, err)
}
