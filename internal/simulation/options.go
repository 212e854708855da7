package simulation

import "time"

// DefaultPhases are the progress messages shown while a run is stepping
var DefaultPhases = []string{
	"Uploading images...",
	"Detecting facial features...",
	"Analyzing skin tone...",
	"Identifying hair color...",
	"Determining eye color...",
	"Calculating color harmony...",
	"Generating recommendations...",
}

// DefaultStepDuration is how long each phase holds
const DefaultStepDuration = 1500 * time.Millisecond

// Options configures a Runner
type Options struct {
	// Ordered phase labels; each one is a Stepping state
	Phases []string

	// Hold time per phase
	StepDuration time.Duration

	// Upper bound for a whole run, zero means unbounded
	Timeout time.Duration
}

// DefaultOptions returns the standard seven phases at 1.5s each
func DefaultOptions() Options {
	return Options{
		Phases:       append([]string(nil), DefaultPhases...),
		StepDuration: DefaultStepDuration,
	}
}

// InstantOptions keeps the phases but does not hold between them
func InstantOptions() Options {
	return DefaultOptions().WithStepDuration(0)
}

// WithStepDuration returns options with a different hold time
func (opts Options) WithStepDuration(d time.Duration) Options {
	opts.StepDuration = d
	return opts
}

// WithPhases returns options with a different phase list
func (opts Options) WithPhases(phases ...string) Options {
	opts.Phases = append([]string(nil), phases...)
	return opts
}

// WithTimeout bounds the whole run
func (opts Options) WithTimeout(d time.Duration) Options {
	opts.Timeout = d
	return opts
}

// TotalDuration is the time spent stepping when nothing is cancelled
func (opts Options) TotalDuration() time.Duration {
	return time.Duration(len(opts.Phases)) * opts.StepDuration
}
