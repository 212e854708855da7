package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anime-shed/palette-inspector/pkg/validation"

	"github.com/joho/godotenv"
)

const (
	AnalyzerModeMock = "mock"
	AnalyzerModeHTTP = "http"
)

type Config struct {
	Host               string
	Port               string
	LogLevel           string
	RequestTimeout     time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Analyzer selection; the mock and the real client share one interface
	AnalyzerMode      string
	AnalyzerURL       string
	AnalyzerMockDelay time.Duration

	// Simulation pacing
	StepDuration time.Duration

	// Sessions and background work
	SessionTTL  time.Duration
	WorkerCount int

	// Forms
	CSRFKey       string
	SecureCookies bool
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 60*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 30*1024*1024), // 30MB, three selfies
		AnalyzerMode:       strings.ToLower(getEnvOrDefault("ANALYZER_MODE", AnalyzerModeMock)),
		AnalyzerURL:        strings.TrimRight(getEnvOrDefault("ANALYZER_URL", ""), "/"),
		AnalyzerMockDelay:  parseDurationAllowZero("ANALYZER_MOCK_DELAY", 0),
		StepDuration:       parseDurationOrDefault("STEP_DURATION", 1500*time.Millisecond),
		SessionTTL:         parseDurationOrDefault("SESSION_TTL", 30*time.Minute),
		WorkerCount:        int(parseIntOrDefault("WORKER_COUNT", 0)),
		CSRFKey:            getEnvOrDefault("CSRF_KEY", ""),
		SecureCookies:      getEnvOrDefault("SECURE_COOKIES", "false") == "true",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field requirements
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.AnalysisTimeout <= 0 || c.SessionTTL <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s, session=%s)",
			c.RequestTimeout, c.AnalysisTimeout, c.SessionTTL)
	}
	if c.StepDuration < 0 || c.AnalyzerMockDelay < 0 {
		return fmt.Errorf("durations must not be negative (got step=%s, mock delay=%s)",
			c.StepDuration, c.AnalyzerMockDelay)
	}
	if c.WorkerCount < 0 {
		return fmt.Errorf("WORKER_COUNT must be >= 0 (got %d)", c.WorkerCount)
	}

	switch c.AnalyzerMode {
	case AnalyzerModeMock:
	case AnalyzerModeHTTP:
		if err := validation.NewURLValidator().ValidateURL(c.AnalyzerURL); err != nil {
			return fmt.Errorf("invalid ANALYZER_URL %q: %w", c.AnalyzerURL, err)
		}
	default:
		return fmt.Errorf("unsupported ANALYZER_MODE: %q", c.AnalyzerMode)
	}

	if c.CSRFKey != "" && len(c.CSRFKey) != 32 {
		return fmt.Errorf("CSRF_KEY must be 32 bytes (got %d)", len(c.CSRFKey))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

// parseDurationAllowZero is like parseDurationOrDefault but accepts "0s"
func parseDurationAllowZero(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration >= 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
