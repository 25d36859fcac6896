package session

import (
	"context"
	"errors"
	"sync"

	"github.com/OFFIS-RIT/dramaturgy/pkg/metadata"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

// ErrUnknownPlay is returned by MemorySource for a play it does not hold.
var ErrUnknownPlay = errors.New("unknown play")

// Source resolves plays for sessions. *db.Catalog implements it.
type Source interface {
	Play(ctx context.Context, id string) (*play.Play, error)
	Metadata(ctx context.Context, id string) (*metadata.Feed, error)
}

// MemorySource serves plays held in memory.
type MemorySource struct {
	mu    sync.RWMutex
	plays map[string]*play.Play
	feeds map[string]*metadata.Feed
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		plays: make(map[string]*play.Play),
		feeds: make(map[string]*metadata.Feed),
	}
}

// Add stores p under p.ID. feed may be nil.
func (m *MemorySource) Add(p *play.Play, feed *metadata.Feed) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays[p.ID] = p
	m.feeds[p.ID] = feed
}

func (m *MemorySource) Play(ctx context.Context, id string) (*play.Play, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plays[id]
	if !ok {
		return nil, ErrUnknownPlay
	}
	return p, nil
}

func (m *MemorySource) Metadata(ctx context.Context, id string) (*metadata.Feed, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.feeds[id], nil
}

// Chain tries each source in turn and returns the first play found.
type Chain []Source

func (c Chain) Play(ctx context.Context, id string) (*play.Play, error) {
	var errs []error
	for _, s := range c {
		p, err := s.Play(ctx, id)
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrUnknownPlay
	}
	return nil, errors.Join(errs...)
}

func (c Chain) Metadata(ctx context.Context, id string) (*metadata.Feed, error) {
	for _, s := range c {
		if _, err := s.Play(ctx, id); err != nil {
			continue
		}
		return s.Metadata(ctx, id)
	}
	return nil, nil
}
