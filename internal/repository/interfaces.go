package repository

import (
	"time"

	"github.com/anime-shed/palette-inspector/internal/state"
)

// SessionRepository mounts and unmounts per-session state containers.
// A container is reachable only between Open and Close.
type SessionRepository interface {
	// Open mounts a fresh container and returns its session id
	Open() (string, *state.Container)

	// Lookup returns the live container for id, or state.ErrOutsideProvider
	Lookup(id string) (*state.Container, error)

	// Close unmounts the container, cancelling any run it owns
	Close(id string) error

	// Sweep closes sessions idle since before the cutoff and reports how many
	Sweep(cutoff time.Time) int

	// Len returns the number of live sessions
	Len() int
}
