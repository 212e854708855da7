// Package simulation drives an analysis run through its phases.
//
// A run moves Idle -> Validating -> Stepping(0..n-1) -> ProducingResult -> Done.
// Too few files leaves Validating with a navigation precondition error; an
// analyzer error leaves ProducingResult with an analysis failure. Both send the
// caller back to upload. Cancelling the context stops the run at the next
// phase boundary.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anime-shed/palette-inspector/internal/analyzer"
	apperrors "github.com/anime-shed/palette-inspector/internal/errors"
	"github.com/anime-shed/palette-inspector/internal/logger"
	"github.com/anime-shed/palette-inspector/internal/observer"
	"github.com/anime-shed/palette-inspector/pkg/models"
	"github.com/anime-shed/palette-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

// ProgressFunc receives every state change of a run
type ProgressFunc func(models.Progress)

// Runner executes analysis runs. It is safe for concurrent use; each call to
// Run is independent.
type Runner struct {
	analyzer  analyzer.ColorAnalyzer
	gate      *validation.UploadGate
	publisher observer.Subject
	opts      Options
}

// NewRunner creates a runner. publisher may be nil.
func NewRunner(a analyzer.ColorAnalyzer, publisher observer.Subject, opts Options) *Runner {
	if len(opts.Phases) == 0 {
		opts.Phases = append([]string(nil), DefaultPhases...)
	}
	return &Runner{
		analyzer:  a,
		gate:      validation.NewUploadGate(),
		publisher: publisher,
		opts:      opts,
	}
}

// Options returns the runner's configuration
func (r *Runner) Options() Options {
	return r.opts
}

// Run validates files, steps through every phase and asks the analyzer for a
// result. report may be nil.
func (r *Runner) Run(ctx context.Context, files []models.UploadedFile, report ProgressFunc) (*models.AnalysisResult, error) {
	if report == nil {
		report = func(models.Progress) {}
	}
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	total := len(r.opts.Phases)
	start := time.Now()

	report(models.Progress{State: models.RunValidating, Total: total})
	if !r.gate.CanAnalyze(files) {
		err := apperrors.NewNavigationPreconditionError(
			fmt.Sprintf("at least %d images are required, got %d", validation.MinFiles, len(files)), nil)
		r.publish(ctx, observer.AnalysisEvent{
			EventType:    observer.AnalysisFailed,
			FileCount:    len(files),
			ErrorMessage: err.Message,
		})
		return nil, err
	}

	r.publish(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		FileCount: len(files),
		Metadata:  map[string]interface{}{"analyzer": r.analyzer.Name()},
	})

	for i, label := range r.opts.Phases {
		report(models.Progress{
			State:   models.RunStepping,
			Step:    i,
			Total:   total,
			Label:   label,
			Percent: Percent(i, total),
		})
		r.publish(ctx, observer.AnalysisEvent{
			EventType: observer.PhaseAdvanced,
			FileCount: len(files),
			Phase:     label,
		})

		if err := hold(ctx, r.opts.StepDuration); err != nil {
			return nil, r.abort(ctx, files, start, err)
		}
	}

	report(models.Progress{State: models.RunProducing, Step: total - 1, Total: total, Percent: 100})
	result, err := r.analyzer.Analyze(ctx, files)
	if err == nil && result == nil {
		err = errors.New("analyzer returned no result")
	}
	if err != nil {
		return nil, r.abort(ctx, files, start, err)
	}

	report(models.Progress{State: models.RunDone, Step: total - 1, Total: total, Percent: 100})
	r.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		FileCount:      len(files),
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"season": result.Season},
	})
	return result, nil
}

// abort classifies err. Cancellation is returned as is; anything else
// becomes an analysis failure.
func (r *Runner) abort(ctx context.Context, files []models.UploadedFile, start time.Time, err error) error {
	event := observer.AnalysisEvent{
		FileCount:      len(files),
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	}

	if errors.Is(err, context.Canceled) {
		event.EventType = observer.AnalysisCancelled
		r.publish(context.WithoutCancel(ctx), event)
		return err
	}

	event.EventType = observer.AnalysisFailed
	r.publish(context.WithoutCancel(ctx), event)
	logger.WithError(err).WithFields(logrus.Fields{
		"file_count": len(files),
		"analyzer":   r.analyzer.Name(),
	}).Error("Analysis failed")

	if apperrors.IsType(err, apperrors.ErrorTypeAnalysisFailure) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewAnalysisFailureError("analysis timed out", err)
	}
	return apperrors.NewAnalysisFailureError("failed to analyze images", err)
}

func (r *Runner) publish(ctx context.Context, event observer.AnalysisEvent) {
	if r.publisher != nil {
		r.publisher.NotifyObservers(ctx, event)
	}
}

// Percent is the progress shown while Stepping(step) of total phases
func Percent(step, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(step+1) / float64(total) * 100
}

// hold waits d or until ctx is done
func hold(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
