package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/OFFIS-RIT/dramaturgy/internal/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/interaction"
	"github.com/OFFIS-RIT/dramaturgy/pkg/linestore"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
	"github.com/OFFIS-RIT/dramaturgy/pkg/metadata"
	"github.com/OFFIS-RIT/dramaturgy/pkg/network"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session closed")
	ErrNotReady = errors.New("session has no network yet")
)

const maxRecentEvents = 32

// Session is one live network view. All view state is owned by a single
// event loop goroutine; the exported methods hand work to that loop.
type Session struct {
	ID string

	manager *Manager
	store   *linestore.Store
	cmds    chan func()
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc

	// owned by the loop
	playID     string
	title      string
	feed       *metadata.Feed
	generation uint64
	cancelLoad context.CancelFunc
	loading    bool
	loadErr    error
	view       *interaction.View
	handle     *interaction.Handle
	events     []interaction.Event
	lastActive time.Time
}

// Snapshot is a copy of the session state that is safe to serialize.
type Snapshot struct {
	ID       string              `json:"id"`
	PlayID   string              `json:"playId"`
	Title    string              `json:"title,omitempty"`
	Loading  bool                `json:"loading"`
	Error    string              `json:"error,omitempty"`
	State    string              `json:"state"`
	Selected string              `json:"selected,omitempty"`
	Alpha    float64             `json:"alpha"`
	View     interaction.View    `json:"view"`
	Events   []interaction.Event `json:"events,omitempty"`
}

func newSession(m *Manager, id string) *Session {
	ctx, cancel := context.WithCancel(m.ctx)
	return &Session{
		ID:         id,
		manager:    m,
		store:      linestore.New(),
		cmds:       make(chan func()),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		view:       interaction.NewView(),
		lastActive: time.Now(),
	}
}

func (s *Session) run() {
	defer close(s.done)
	defer s.teardown()

	cfg := s.manager.cfg.Session
	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	// a zero idle timeout keeps the session open until it is closed
	var idle <-chan time.Time
	var idleTimer *time.Timer
	if cfg.IdleTimeout > 0 {
		idleTimer = time.NewTimer(cfg.IdleTimeout)
		defer idleTimer.Stop()
		idle = idleTimer.C
	}

	for {
		select {
		case <-s.ctx.Done():
			return
		case fn := <-s.cmds:
			fn()
			s.lastActive = time.Now()
			if idleTimer != nil {
				idleTimer.Reset(cfg.IdleTimeout)
			}
		case <-ticker.C:
			if s.handle != nil {
				s.handle.Tick()
			}
		case <-idle:
			logger.Info("[Session] Closing idle session", "session_id", s.ID, "idle", time.Since(s.lastActive))
			s.manager.forget(s.ID)
			return
		}
	}
}

func (s *Session) teardown() {
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	s.store.Clear()
	s.cancel()
}

// do runs fn on the event loop and waits for its result.
func (s *Session) do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	select {
	case s.cmds <- func() { result <- fn() }:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-result:
		return err
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn on the event loop without waiting.
func (s *Session) post(fn func()) bool {
	select {
	case s.cmds <- fn:
		return true
	case <-s.done:
		return false
	}
}

// Load switches the session to another play. The previous network,
// simulation and selection are discarded immediately; events are rejected
// with ErrNotReady until the new lines arrive.
func (s *Session) Load(ctx context.Context, playID string) error {
	return s.do(ctx, func() error {
		s.startLoad(playID)
		return nil
	})
}

func (s *Session) startLoad(playID string) {
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	s.generation++
	gen := s.generation
	s.playID = playID
	s.title = ""
	s.feed = nil
	s.loading = true
	s.loadErr = nil
	s.view = interaction.NewView()
	s.events = nil
	s.store.Clear()

	loadCtx, cancel := context.WithCancel(s.ctx)
	s.cancelLoad = cancel

	go s.load(loadCtx, gen, playID, s.manager.cfg.PollPolicy())
}

// load polls the source for the play and rebuilds the view on the loop. A
// source that is still failing once the policy is exhausted leaves the
// session without line data.
func (s *Session) load(ctx context.Context, gen uint64, playID string, policy util.PollPolicy) {
	source := s.manager.source
	p, err := util.Poll(ctx, policy, func(ctx context.Context) (*play.Play, error) {
		return source.Play(ctx, playID)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Debug("[Session] Play not available", "session_id", s.ID, "play_id", playID, "attempts", policy.MaxAttempts, "err", err)
		s.post(func() {
			s.rebuild(gen, nil, fmt.Errorf("%w: %w", linestore.ErrMissingData, err))
		})
		return
	}
	feed, err := source.Metadata(ctx, playID)
	if err != nil {
		logger.Warn("[Session] Failed to load character metadata", "play_id", playID, "err", err)
	}

	s.post(func() {
		if gen != s.generation {
			return
		}
		s.title = p.Title
		s.feed = feed
		s.store.Load(p)

		lines, err := s.store.AllLines()
		if err == nil && len(lines) == 0 {
			err = fmt.Errorf("%w: play %q has no lines", linestore.ErrMissingData, playID)
		}
		s.rebuild(gen, lines, err)
	})
}

func (s *Session) rebuild(gen uint64, lines []play.DialogueLine, loadErr error) {
	if gen != s.generation {
		logger.Debug("[Session] Dropping stale load", "session_id", s.ID, "generation", gen)
		return
	}

	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	s.view = interaction.NewView()
	s.events = nil
	s.loading = false
	s.loadErr = loadErr

	var net *network.Network
	if loadErr != nil {
		logger.Warn("[Session] No line data", "session_id", s.ID, "play_id", s.playID, "err", loadErr)
	} else {
		net = network.Build(lines)
	}

	cfg := s.manager.cfg
	opts := interaction.Options{
		Layout:     cfg.Layout,
		Palette:    cfg.InteractionPalette(),
		Feed:       s.feed,
		HideLabels: cfg.Session.HideLabels,
	}
	if s.manager.seed != nil {
		opts.Rand = rand.New(rand.NewPCG(*s.manager.seed, gen))
	}

	h, err := interaction.Mount(s.view, net, opts)
	if err != nil {
		logger.Error("[Session] Failed to mount network", "session_id", s.ID, "err", err)
		s.loadErr = err
		return
	}
	for range cfg.Session.WarmupTicks {
		h.Tick()
	}
	h.Subscribe(func(e interaction.Event) {
		s.events = append(s.events, e)
		if len(s.events) > maxRecentEvents {
			s.events = s.events[len(s.events)-maxRecentEvents:]
		}
	})
	s.handle = h

	logger.Info("[Session] Network ready", "session_id", s.ID, "play_id", s.playID, "characters", len(h.Network().Nodes), "links", len(h.Network().Edges))
}

// Snapshot returns the current state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func() error {
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

// Dispatch applies e and returns the resulting state.
func (s *Session) Dispatch(ctx context.Context, e Event) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func() error {
		if s.loading || s.handle == nil {
			return ErrNotReady
		}
		if err := apply(s.handle, e); err != nil {
			return err
		}
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

// Network returns the network of the session, or nil while loading.
func (s *Session) Network(ctx context.Context) (*network.Network, error) {
	var net *network.Network
	err := s.do(ctx, func() error {
		if s.handle != nil {
			net = s.handle.Network()
		}
		return nil
	})
	return net, err
}

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:      s.ID,
		PlayID:  s.playID,
		Title:   s.title,
		Loading: s.loading,
		State:   interaction.StateIdle.String(),
		View:    copyView(s.view),
		Events:  append([]interaction.Event(nil), s.events...),
	}
	if s.loadErr != nil {
		snap.Error = s.loadErr.Error()
	}
	if s.handle != nil {
		snap.State = s.handle.State().String()
		snap.Selected, _ = s.handle.Selected()
		snap.Alpha = s.handle.Alpha()
	}
	return snap
}

// copyView copies every panel. Panel slices are replaced, never mutated, on
// render so they can be shared.
func copyView(v *interaction.View) interaction.View {
	var out interaction.View
	if v == nil {
		return out
	}
	if v.Canvas != nil {
		c := *v.Canvas
		out.Canvas = &c
	}
	if v.Sidebar != nil {
		sb := *v.Sidebar
		out.Sidebar = &sb
	}
	if v.Tooltip != nil {
		t := *v.Tooltip
		out.Tooltip = &t
	}
	if v.Status != nil {
		st := *v.Status
		out.Status = &st
	}
	return out
}
