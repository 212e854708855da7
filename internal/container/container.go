package container

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/anime-shed/palette-inspector/internal/analyzer"
	"github.com/anime-shed/palette-inspector/internal/config"
	"github.com/anime-shed/palette-inspector/internal/factory"
	"github.com/anime-shed/palette-inspector/internal/logger"
	"github.com/anime-shed/palette-inspector/internal/observer"
	"github.com/anime-shed/palette-inspector/internal/repository"
	"github.com/anime-shed/palette-inspector/internal/service"
	"github.com/anime-shed/palette-inspector/internal/simulation"
	"github.com/anime-shed/palette-inspector/internal/transport"
	"github.com/anime-shed/palette-inspector/internal/worker"
)

// sweepInterval bounds how often idle sessions are checked
const sweepInterval = time.Minute

// Container holds all application dependencies
type Container struct {
	config         *config.Config
	colorAnalyzer  analyzer.ColorAnalyzer
	publisher      *observer.EventPublisher
	metrics        *observer.MetricsObserver
	runner         *simulation.Runner
	pool           *worker.Pool
	paletteService service.PaletteService
	sessions       *repository.MemorySessions
	handler        http.Handler

	stopSweeper context.CancelFunc
	sweeperDone chan struct{}
	closeOnce   sync.Once
}

// NewContainer builds the dependency graph and starts the worker pool
func NewContainer(cfg *config.Config) (*Container, error) {
	colorAnalyzer, err := factory.NewAnalyzerFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	// Runs step on their own goroutines; only analyzer calls take a worker
	pool := worker.NewPool(cfg.WorkerCount)
	pool.Start()
	bounded := worker.NewBoundedAnalyzer(colorAnalyzer, pool)

	opts := simulation.DefaultOptions().
		WithStepDuration(cfg.StepDuration).
		WithTimeout(cfg.AnalysisTimeout)
	runner := simulation.NewRunner(bounded, publisher, opts)

	paletteService := service.NewPaletteService(bounded, runner, pool)
	sessions := repository.NewMemorySessions()

	handler := transport.NewHandler(transport.Deps{
		Service:  paletteService,
		Sessions: sessions,
		Metrics:  metrics,
		Config:   cfg,
	})

	return &Container{
		config:         cfg,
		colorAnalyzer:  colorAnalyzer,
		publisher:      publisher,
		metrics:        metrics,
		runner:         runner,
		pool:           pool,
		paletteService: paletteService,
		sessions:       sessions,
		handler:        handler,
	}, nil
}

// StartSweeper expires idle sessions in the background until Close
func (c *Container) StartSweeper() {
	if c.stopSweeper != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.stopSweeper = cancel
	c.sweeperDone = make(chan struct{})

	interval := sweepInterval
	if c.config.SessionTTL < interval {
		interval = c.config.SessionTTL
	}

	go func() {
		defer close(c.sweeperDone)
		c.sessions.RunSweeper(ctx, c.config.SessionTTL, interval)
	}()
}

// Close stops the sweeper, unmounts every session and drains the worker pool
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		if c.stopSweeper != nil {
			c.stopSweeper()
			<-c.sweeperDone
		}
		c.sessions.CloseAll()
		c.paletteService.Shutdown()

		logger.WithField("metrics", c.metrics.GetMetrics()).Info("Container closed")
	})
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Analyzer returns the configured color analyzer
func (c *Container) Analyzer() analyzer.ColorAnalyzer {
	return c.colorAnalyzer
}

// Service returns the flow service
func (c *Container) Service() service.PaletteService {
	return c.paletteService
}

// Metrics returns the analysis counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}
