// Package linestore holds the dialogue lines of the currently loaded play.
package linestore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/dramaturgy/internal/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
	"github.com/OFFIS-RIT/dramaturgy/pkg/network"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

var (
	// ErrNotReady is returned while no play has been loaded.
	ErrNotReady = errors.New("line data not loaded")
	// ErrMissingData is returned when line data never arrives within the
	// polling budget.
	ErrMissingData = errors.New("line data missing")
)

// Store is a repository for one play. The zero value is an empty store in
// the not-ready state. A Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	play    *play.Play
	version uint64
	ready   chan struct{}
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Load replaces the current play. Lines are copied; the caller keeps
// ownership of p.
func (s *Store) Load(p *play.Play) {
	if p == nil {
		s.Clear()
		return
	}

	cp := *p
	cp.Lines = append([]play.DialogueLine(nil), p.Lines...)

	s.mu.Lock()
	s.play = &cp
	s.version++
	if s.ready != nil {
		close(s.ready)
		s.ready = nil
	}
	s.mu.Unlock()

	logger.Debug("[LineStore] Loaded play", "title", cp.Title, "lines", len(cp.Lines))
}

// Get returns the loaded play.
func (s *Store) Get() (*play.Play, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.play, s.play != nil
}

// Clear drops the loaded play and returns the store to the not-ready state.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.play != nil {
		s.version++
	}
	s.play = nil
	s.mu.Unlock()
}

// Version increases every time the content changes.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Ready returns a channel that is closed once a play is loaded.
func (s *Store) Ready() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.play != nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	if s.ready == nil {
		s.ready = make(chan struct{})
	}
	return s.ready
}

// AllLines returns every line in script order.
func (s *Store) AllLines() ([]play.DialogueLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.play == nil {
		return nil, ErrNotReady
	}
	return s.play.Lines, nil
}

// LinesBySpeaker returns the lines whose trimmed speaker equals name.
func (s *Store) LinesBySpeaker(name string) ([]play.DialogueLine, error) {
	lines, err := s.AllLines()
	if err != nil {
		return nil, err
	}
	var out []play.DialogueLine
	for _, l := range lines {
		if l.SpeakerName() == name {
			out = append(out, l)
		}
	}
	return out, nil
}

// LinesByScene returns the lines of one scene, stage directions included.
func (s *Store) LinesByScene(key play.SceneKey) ([]play.DialogueLine, error) {
	lines, err := s.AllLines()
	if err != nil {
		return nil, err
	}
	var out []play.DialogueLine
	for _, l := range lines {
		if l.SceneKey() == key {
			out = append(out, l)
		}
	}
	return out, nil
}

// Scenes returns the scenes in first-appearance order.
func (s *Store) Scenes() ([]play.SceneKey, error) {
	lines, err := s.AllLines()
	if err != nil {
		return nil, err
	}
	return play.ScenesOf(lines), nil
}

// Characters aggregates the loaded lines by speaker.
func (s *Store) Characters() (map[string]*network.Character, error) {
	lines, err := s.AllLines()
	if err != nil {
		return nil, err
	}
	return network.Aggregate(lines), nil
}

// WaitForLines polls the store until a non-empty line set is available.
// It returns ErrMissingData once the policy is exhausted.
func (s *Store) WaitForLines(ctx context.Context, policy util.PollPolicy) ([]play.DialogueLine, error) {
	lines, err := util.Poll(ctx, policy, func(ctx context.Context) ([]play.DialogueLine, error) {
		lines, err := s.AllLines()
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			return nil, ErrNotReady
		}
		return lines, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("[LineStore] No line data after polling", "attempts", policy.MaxAttempts)
		return nil, fmt.Errorf("%w: %w", ErrMissingData, err)
	}
	return lines, nil
}
