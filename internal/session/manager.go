// Package session keeps the live network views of connected pages. Each
// session owns a line store, a mounted network and an event loop that
// serializes loads, pointer events and layout ticks.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/OFFIS-RIT/dramaturgy/internal/config"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrLimit is returned when MaxSessions sessions are open.
var ErrLimit = errors.New("too many open sessions")

type Option func(*Manager)

// WithSeed makes layouts reproducible: every load uses a PCG source seeded
// with seed and the load generation.
func WithSeed(seed uint64) Option {
	return func(m *Manager) {
		m.seed = &seed
	}
}

type Manager struct {
	source Source
	cfg    *config.Config
	seed   *uint64

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(source Source, cfg *config.Config, opts ...Option) *Manager {
	if cfg == nil {
		cfg = config.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		source:   source,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a session and starts loading playID into it.
func (m *Manager) Create(ctx context.Context, playID string) (*Session, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if limit := m.cfg.Session.MaxSessions; limit > 0 && len(m.sessions) >= limit {
		m.mu.Unlock()
		logger.Warn("[Session] Session limit reached", "max", limit)
		return nil, ErrLimit
	}
	s := newSession(m, id)
	m.sessions[id] = s
	m.mu.Unlock()

	go s.run()

	if err := s.Load(ctx, playID); err != nil {
		m.Close(id)
		return nil, err
	}
	logger.Debug("[Session] Created session", "session_id", id, "play_id", playID)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close stops a session and waits for its loop to exit.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.cancel()
	<-s.done
	logger.Debug("[Session] Closed session", "session_id", id)
	return nil
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes every session. The manager accepts no new sessions
// afterwards.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.cancel()
	m.mu.Unlock()

	for _, s := range sessions {
		<-s.done
	}
	logger.Info("[Session] All sessions closed", "count", len(sessions))
}
