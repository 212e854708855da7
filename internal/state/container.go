// Package state holds the per-session upload and analysis state.
//
// A Container is owned by exactly one session. It performs no validation of
// its own: the upload gate enforces the file bounds and the flow service
// decides when a result may be read.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/anime-shed/palette-inspector/pkg/models"
)

// ErrOutsideProvider is returned by accessors when no live session owns a container
var ErrOutsideProvider = errors.New("state container used outside provider")

// Snapshot is a consistent copy of the user-visible fields and the current run
type Snapshot struct {
	Files     []models.UploadedFile
	Result    *models.AnalysisResult
	Analyzing bool
	Progress  models.Progress
	LastErr   error
}

// Container holds the uploaded files, the last analysis result and the
// in-progress flag, plus bookkeeping for the run that owns the flag.
type Container struct {
	mu        sync.RWMutex
	files     []models.UploadedFile
	result    *models.AnalysisResult
	analyzing bool

	runID    uint64
	cancel   context.CancelFunc
	progress models.Progress
	lastErr  error
}

// NewContainer returns a container in its initial state
func NewContainer() *Container {
	return &Container{
		files:    []models.UploadedFile{},
		progress: models.Progress{State: models.RunIdle},
	}
}

func (c *Container) Files() []models.UploadedFile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.CloneFiles(c.files)
}

func (c *Container) SetFiles(files []models.UploadedFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = models.CloneFiles(files)
}

// Result returns a copy of the last result, or nil
func (c *Container) Result() *models.AnalysisResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result.Clone()
}

// SetResult stores a copy of r. A nil r clears the result.
func (c *Container) SetResult(r *models.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = r.Clone()
}

func (c *Container) IsAnalyzing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.analyzing
}

func (c *Container) SetAnalyzing(analyzing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyzing = analyzing
}

// Snapshot reads files, result, flag, progress and the last error under one lock
func (c *Container) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Files:     models.CloneFiles(c.files),
		Result:    c.result.Clone(),
		Analyzing: c.analyzing,
		Progress:  c.progress,
		LastErr:   c.lastErr,
	}
}

// Reset clears files, result and flag in one step and cancels any run in flight.
// A cancelled run can no longer write into the container.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopRunLocked()
	c.files = []models.UploadedFile{}
	c.result = nil
	c.analyzing = false
	c.progress = models.Progress{State: models.RunIdle}
	c.lastErr = nil
}

// BeginRun registers a new analysis run and returns its id. Any earlier run is
// cancelled and detached. The flag is raised and the previous result cleared.
func (c *Container) BeginRun(cancel context.CancelFunc) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopRunLocked()
	c.runID++
	c.cancel = cancel
	c.analyzing = true
	c.result = nil
	c.lastErr = nil
	c.progress = models.Progress{State: models.RunValidating}
	return c.runID
}

// UpdateProgress records progress for run id. It returns false if the run has
// been superseded or cancelled.
func (c *Container) UpdateProgress(id uint64, p models.Progress) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.runID || c.cancel == nil {
		return false
	}
	c.progress = p
	return true
}

// FinishRun settles run id with either a result or an error. Stale runs are ignored.
func (c *Container) FinishRun(id uint64, result *models.AnalysisResult, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.runID || c.cancel == nil {
		return false
	}
	c.cancel()
	c.cancel = nil
	c.analyzing = false
	if err != nil {
		c.lastErr = err
		c.result = nil
		c.progress.State = models.RunFailed
		return true
	}
	c.result = result.Clone()
	c.progress.State = models.RunDone
	return true
}

// CancelRun stops the current run, if any, and lowers the flag
func (c *Container) CancelRun() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return
	}
	c.stopRunLocked()
	c.analyzing = false
	c.progress.State = models.RunCancelled
}

// Progress returns the last recorded progress
func (c *Container) Progress() models.Progress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.progress
}

// LastError returns the error of the last failed run
func (c *Container) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Container) stopRunLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.runID++
}

type ctxKey struct{}

// WithContainer attaches c to ctx
func WithContainer(ctx context.Context, c *Container) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the container attached to ctx, or ErrOutsideProvider
func FromContext(ctx context.Context) (*Container, error) {
	c, ok := ctx.Value(ctxKey{}).(*Container)
	if !ok || c == nil {
		return nil, ErrOutsideProvider
	}
	return c, nil
}
