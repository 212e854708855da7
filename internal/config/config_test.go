package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress())
	assert.Equal(t, AnalyzerModeMock, cfg.AnalyzerMode)
	assert.Equal(t, 1500*time.Millisecond, cfg.StepDuration)
	assert.Equal(t, time.Duration(0), cfg.AnalyzerMockDelay)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Empty(t, cfg.CSRFKey)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STEP_DURATION", "10ms")
	t.Setenv("ANALYZER_MODE", "HTTP")
	t.Setenv("ANALYZER_URL", "http://analyzer.local:8000/")
	t.Setenv("ANALYZER_MOCK_DELAY", "3s")
	t.Setenv("WORKER_COUNT", "4")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 10*time.Millisecond, cfg.StepDuration)
	assert.Equal(t, AnalyzerModeHTTP, cfg.AnalyzerMode)
	assert.Equal(t, "http://analyzer.local:8000", cfg.AnalyzerURL)
	assert.Equal(t, 3*time.Second, cfg.AnalyzerMockDelay)
	assert.Equal(t, 4, cfg.WorkerCount)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "http"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"unknown analyzer mode", map[string]string{"ANALYZER_MODE": "magic"}},
		{"http mode without url", map[string]string{"ANALYZER_MODE": "http"}},
		{"http mode with bad scheme", map[string]string{"ANALYZER_MODE": "http", "ANALYZER_URL": "ftp://x"}},
		{"short csrf key", map[string]string{"CSRF_KEY": "short"}},
		{"negative workers", map[string]string{"WORKER_COUNT": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}
