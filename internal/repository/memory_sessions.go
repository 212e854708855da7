package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anime-shed/palette-inspector/internal/logger"
	"github.com/anime-shed/palette-inspector/internal/state"

	"github.com/google/uuid"
)

type session struct {
	container *state.Container
	lastSeen  time.Time
}

// MemorySessions keeps containers in process memory. Nothing survives a restart.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// NewMemorySessions creates an empty in-memory session repository
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (m *MemorySessions) Open() (string, *state.Container) {
	id := uuid.NewString()
	c := state.NewContainer()

	m.mu.Lock()
	m.sessions[id] = &session{container: c, lastSeen: m.now()}
	m.mu.Unlock()

	return id, c
}

func (m *MemorySessions) Lookup(id string) (*state.Container, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %w", state.ErrOutsideProvider, ErrInvalidSessionID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %w", state.ErrOutsideProvider, ErrSessionNotFound)
	}
	s.lastSeen = m.now()
	return s.container, nil
}

func (m *MemorySessions) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.container.Reset()
	return nil
}

func (m *MemorySessions) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	var expired []*session
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.container.Reset()
	}
	return len(expired)
}

func (m *MemorySessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll unmounts every session; used on shutdown
func (m *MemorySessions) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*session)
	m.mu.Unlock()

	for _, s := range all {
		s.container.Reset()
	}
}

// RunSweeper closes sessions idle longer than ttl every interval until ctx is done
func (m *MemorySessions) RunSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(m.now().Add(-ttl)); n > 0 {
				logger.WithField("expired_sessions", n).Debug("Swept idle sessions")
			}
		}
	}
}
