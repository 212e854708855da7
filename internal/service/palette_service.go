package service

import (
	"context"
	"errors"
	"sync"

	"github.com/anime-shed/palette-inspector/internal/analyzer"
	apperrors "github.com/anime-shed/palette-inspector/internal/errors"
	"github.com/anime-shed/palette-inspector/internal/logger"
	"github.com/anime-shed/palette-inspector/internal/simulation"
	"github.com/anime-shed/palette-inspector/internal/state"
	"github.com/anime-shed/palette-inspector/internal/worker"
	"github.com/anime-shed/palette-inspector/pkg/models"
	"github.com/anime-shed/palette-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

// SaveConfirmation is shown when a user saves their results
const SaveConfirmation = "Results saved! (This is a demo)"

// PaletteService drives the upload -> analyze -> result flow for one session's
// container. Every method takes the container explicitly.
type PaletteService interface {
	// Upload stage
	AddFiles(c *state.Container, files []models.UploadedFile) []models.UploadedFile
	RemoveFile(c *state.Container, index int) []models.UploadedFile

	// Analysis stage
	StartAnalysis(c *state.Container) error
	CancelAnalysis(c *state.Container)
	Progress(c *state.Container) models.ProgressResponse

	// Result stage
	Result(c *state.Container) (*models.AnalysisResult, error)
	SaveResult(c *state.Container) (string, error)
	Reset(c *state.Container)

	// AnalyzeNow runs the configured analyzer without the progress phases
	AnalyzeNow(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error)

	// Shutdown cancels runs in flight and waits for them and the workers
	Shutdown()
}

type paletteService struct {
	analyzer analyzer.ColorAnalyzer
	runner   *simulation.Runner
	gate     *validation.UploadGate
	pool     *worker.Pool

	baseCtx context.Context
	stop    context.CancelFunc
	runs    sync.WaitGroup
}

// NewPaletteService creates the flow service. The pool must already be started
// and should be the one bounding a, so Shutdown can close it.
func NewPaletteService(a analyzer.ColorAnalyzer, runner *simulation.Runner, pool *worker.Pool) PaletteService {
	ctx, cancel := context.WithCancel(context.Background())
	return &paletteService{
		analyzer: a,
		runner:   runner,
		gate:     validation.NewUploadGate(),
		pool:     pool,
		baseCtx:  ctx,
		stop:     cancel,
	}
}

// AddFiles applies the upload gate. Changing the uploads abandons any run in
// flight and drops the result computed for the old set.
func (s *paletteService) AddFiles(c *state.Container, files []models.UploadedFile) []models.UploadedFile {
	c.CancelRun()
	c.SetResult(nil)
	accepted := s.gate.Accept(c.Files(), files)
	c.SetFiles(accepted)

	logger.WithFields(logrus.Fields{
		"offered":  len(files),
		"accepted": len(accepted),
	}).Debug("Upload intake applied")
	return accepted
}

func (s *paletteService) RemoveFile(c *state.Container, index int) []models.UploadedFile {
	c.CancelRun()
	c.SetResult(nil)
	remaining := s.gate.Remove(c.Files(), index)
	c.SetFiles(remaining)
	return remaining
}

// StartAnalysis checks the precondition and starts a run for the container's
// current files. The run owns its goroutine; only the analyzer call itself
// competes for a pool worker. Progress and the outcome are written back into
// the container.
func (s *paletteService) StartAnalysis(c *state.Container) error {
	files := c.Files()
	if !s.gate.CanAnalyze(files) {
		return apperrors.NewNavigationPreconditionError("upload at least 2 photos to analyze", nil)
	}

	runCtx, cancel := context.WithCancel(s.baseCtx)
	runID := c.BeginRun(cancel)

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		defer cancel()

		result, err := s.runner.Run(runCtx, files, func(p models.Progress) {
			c.UpdateProgress(runID, p)
		})
		if errors.Is(err, context.Canceled) {
			return
		}
		c.FinishRun(runID, result, err)
	}()
	return nil
}

func (s *paletteService) CancelAnalysis(c *state.Container) {
	c.CancelRun()
}

// Progress reports the run state and, once it settles, where the user goes next
func (s *paletteService) Progress(c *state.Container) models.ProgressResponse {
	snap := c.Snapshot()
	resp := models.ProgressResponse{
		Progress:  snap.Progress,
		Analyzing: snap.Analyzing,
	}

	switch {
	case snap.Analyzing:
	case snap.Result != nil:
		resp.Redirect = "/result"
	default:
		resp.Redirect = "/upload"
		if snap.LastErr != nil {
			resp.Error = "Failed to analyze images. Please try again."
		}
	}
	return resp
}

func (s *paletteService) Result(c *state.Container) (*models.AnalysisResult, error) {
	if r := c.Result(); r != nil {
		return r, nil
	}
	return nil, apperrors.NewNotFoundError("no analysis result", nil)
}

func (s *paletteService) SaveResult(c *state.Container) (string, error) {
	if _, err := s.Result(c); err != nil {
		return "", err
	}
	return SaveConfirmation, nil
}

func (s *paletteService) Reset(c *state.Container) {
	c.Reset()
}

func (s *paletteService) AnalyzeNow(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error) {
	if !s.gate.CanAnalyze(files) {
		return nil, apperrors.NewValidationError("at least 2 images are required", nil)
	}
	result, err := s.analyzer.Analyze(ctx, files)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeAnalysisFailure) {
			return nil, err
		}
		return nil, apperrors.NewAnalysisFailureError("failed to analyze images", err)
	}
	return result, nil
}

func (s *paletteService) Shutdown() {
	s.stop()
	s.runs.Wait()
	s.pool.Close()
}
