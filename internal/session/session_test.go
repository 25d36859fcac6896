package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/OFFIS-RIT/dramaturgy/internal/config"
	"github.com/OFFIS-RIT/dramaturgy/pkg/interaction"
	"github.com/OFFIS-RIT/dramaturgy/pkg/metadata"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Poll.Interval = time.Millisecond
	cfg.Poll.MaxInterval = 5 * time.Millisecond
	cfg.Poll.MaxAttempts = 5
	cfg.Session.TickInterval = 5 * time.Millisecond
	cfg.Session.WarmupTicks = 10
	cfg.Session.IdleTimeout = 0
	return cfg
}

func line(speaker string, act, scene int) play.DialogueLine {
	return play.DialogueLine{Speaker: speaker, Act: act, Scene: scene, Text: "..."}
}

func triangle() *play.Play {
	return &play.Play{ID: "abc", Title: "Triangle", Lines: []play.DialogueLine{
		line("Alice", 1, 1), line("Bob", 1, 1),
		line("Alice", 1, 2), line("Carol", 1, 2),
		line("Alice", 2, 1), line("Bob", 2, 1),
	}}
}

func duet() *play.Play {
	return &play.Play{ID: "duet", Title: "Duet", Lines: []play.DialogueLine{
		line("Romeo", 1, 1), line("Juliet", 1, 1),
	}}
}

func newTestManager(t *testing.T, cfg *config.Config) (*Manager, *MemorySource) {
	t.Helper()
	src := NewMemorySource()
	src.Add(triangle(), metadata.NewFeed(metadata.Entry{Character: "alice", Description: "The lead"}))
	src.Add(duet(), nil)
	m := NewManager(src, cfg, WithSeed(7))
	t.Cleanup(m.Shutdown)
	return m, src
}

// flakySource fails the first failures calls to Play.
type flakySource struct {
	Source
	failures int32
	calls    atomic.Int32
}

func (f *flakySource) Play(ctx context.Context, id string) (*play.Play, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("catalog unavailable")
	}
	return f.Source.Play(ctx, id)
}

// gatedSource holds Play for one play id until release is closed.
type gatedSource struct {
	Source
	id      string
	release chan struct{}
}

func (g *gatedSource) Play(ctx context.Context, id string) (*play.Play, error) {
	if id == g.id {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.Source.Play(ctx, id)
}

func waitLoaded(t *testing.T, s *Session) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		var err error
		snap, err = s.Snapshot(context.Background())
		return err == nil && !snap.Loading
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func TestSessionLoadsNetwork(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	s, err := m.Create(ctx, "abc")
	require.NoError(t, err)

	snap := waitLoaded(t, s)
	assert.Equal(t, "abc", snap.PlayID)
	assert.Equal(t, "Triangle", snap.Title)
	assert.Empty(t, snap.Error)
	assert.Equal(t, "idle", snap.State)
	require.NotNil(t, snap.View.Canvas)
	assert.Len(t, snap.View.Canvas.Nodes, 3)
	assert.Len(t, snap.View.Canvas.Links, 2)
	require.NotNil(t, snap.View.Status)
	assert.False(t, snap.View.Status.NoData)

	net, err := s.Network(ctx)
	require.NoError(t, err)
	edge, ok := net.Edge("Alice", "Bob")
	require.True(t, ok)
	assert.Equal(t, 2, edge.Weight)
}

func TestSessionDispatchSelection(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	s, err := m.Create(ctx, "abc")
	require.NoError(t, err)
	waitLoaded(t, s)

	snap, err := s.Dispatch(ctx, Event{Type: EventClick, Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "selected", snap.State)
	assert.Equal(t, "Alice", snap.Selected)
	require.NotNil(t, snap.View.Sidebar.Detail)
	assert.Equal(t, "The lead", snap.View.Sidebar.Detail.Metadata.Description)
	assert.Equal(t, interaction.FocusScale, snap.View.Canvas.Transform.K)
	require.NotEmpty(t, snap.Events)
	assert.Equal(t, interaction.EventSelected, snap.Events[len(snap.Events)-1].Type)

	snap, err = s.Dispatch(ctx, Event{Type: EventSelect, Name: "Nobody"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", snap.Selected)

	snap, err = s.Dispatch(ctx, Event{Type: EventResetView})
	require.NoError(t, err)
	assert.Equal(t, "idle", snap.State)
	assert.Equal(t, interaction.Identity, snap.View.Canvas.Transform)

	_, err = s.Dispatch(ctx, Event{Type: "explode"})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = s.Dispatch(ctx, Event{Type: EventTransform})
	assert.Error(t, err)
}

func TestSessionDrag(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	s, err := m.Create(ctx, "abc")
	require.NoError(t, err)
	waitLoaded(t, s)

	_, err = s.Dispatch(ctx, Event{Type: EventDragStart, Name: "Carol"})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, Event{Type: EventDrag, Name: "Carol", X: 10, Y: 20})
	require.NoError(t, err)

	// the pin takes effect on the next layout tick
	require.Eventually(t, func() bool {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return false
		}
		for _, n := range snap.View.Canvas.Nodes {
			if n.Name == "Carol" {
				return n.X == 10 && n.Y == 20
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	_, err = s.Dispatch(ctx, Event{Type: EventDragEnd, Name: "Carol"})
	require.NoError(t, err)

	_, err = s.Dispatch(ctx, Event{Type: EventDragStart, Name: "Nobody"})
	assert.Error(t, err)
}

func TestSessionReloadDiscardsSelection(t *testing.T) {
	_, mem := newTestManager(t, testConfig())
	src := &gatedSource{Source: mem, id: "duet", release: make(chan struct{})}
	m := NewManager(src, testConfig(), WithSeed(7))
	t.Cleanup(m.Shutdown)
	ctx := context.Background()

	s, err := m.Create(ctx, "abc")
	require.NoError(t, err)
	waitLoaded(t, s)
	_, err = s.Dispatch(ctx, Event{Type: EventClick, Name: "Alice"})
	require.NoError(t, err)

	require.NoError(t, s.Load(ctx, "duet"))

	// the old network is gone while the new play is still loading
	_, err = s.Dispatch(ctx, Event{Type: EventClick, Name: "Bob"})
	assert.ErrorIs(t, err, ErrNotReady)
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Selected)
	assert.Empty(t, snap.Events)
	net, err := s.Network(ctx)
	require.NoError(t, err)
	assert.Nil(t, net)

	close(src.release)
	snap = waitLoaded(t, s)
	assert.Equal(t, "duet", snap.PlayID)
	assert.Empty(t, snap.Error)
	assert.Equal(t, "idle", snap.State)
	assert.Empty(t, snap.Selected)
	assert.Empty(t, snap.Events)
	assert.Len(t, snap.View.Canvas.Nodes, 2)
	assert.Equal(t, interaction.SidebarList, snap.View.Sidebar.Mode)
}

func TestSessionSourceRecoversOnLastAttempt(t *testing.T) {
	cfg := testConfig()
	_, mem := newTestManager(t, cfg)
	src := &flakySource{Source: mem, failures: int32(cfg.Poll.MaxAttempts - 1)}
	m := NewManager(src, cfg, WithSeed(7))
	t.Cleanup(m.Shutdown)

	s, err := m.Create(context.Background(), "abc")
	require.NoError(t, err)

	snap := waitLoaded(t, s)
	assert.Empty(t, snap.Error)
	assert.Equal(t, "Triangle", snap.Title)
	require.NotNil(t, snap.View.Status)
	assert.False(t, snap.View.Status.NoData)
	assert.Len(t, snap.View.Canvas.Nodes, 3)
	assert.EqualValues(t, cfg.Poll.MaxAttempts, src.calls.Load())
}

func TestSessionSourceExhaustedShowsNoData(t *testing.T) {
	cfg := testConfig()
	_, mem := newTestManager(t, cfg)
	src := &flakySource{Source: mem, failures: int32(cfg.Poll.MaxAttempts)}
	m := NewManager(src, cfg, WithSeed(7))
	t.Cleanup(m.Shutdown)

	s, err := m.Create(context.Background(), "abc")
	require.NoError(t, err)

	snap := waitLoaded(t, s)
	assert.Contains(t, snap.Error, "line data missing")
	require.NotNil(t, snap.View.Status)
	assert.True(t, snap.View.Status.NoData)
	assert.Empty(t, snap.View.Canvas.Nodes)
	assert.EqualValues(t, cfg.Poll.MaxAttempts, src.calls.Load())
}

func TestSessionMissingPlayShowsNoData(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	s, err := m.Create(ctx, "missing")
	require.NoError(t, err)

	snap := waitLoaded(t, s)
	assert.NotEmpty(t, snap.Error)
	require.NotNil(t, snap.View.Status)
	assert.True(t, snap.View.Status.NoData)
	assert.Equal(t, interaction.NoDataMessage, snap.View.Status.Message)
	assert.Empty(t, snap.View.Canvas.Nodes)
}

func TestSessionSeedReproducesLayout(t *testing.T) {
	cfg := testConfig()
	cfg.Session.TickInterval = time.Hour
	m, _ := newTestManager(t, cfg)
	ctx := context.Background()

	a, err := m.Create(ctx, "abc")
	require.NoError(t, err)
	b, err := m.Create(ctx, "abc")
	require.NoError(t, err)

	sa := waitLoaded(t, a)
	sb := waitLoaded(t, b)
	require.Len(t, sb.View.Canvas.Nodes, len(sa.View.Canvas.Nodes))
	for i := range sa.View.Canvas.Nodes {
		assert.Equal(t, sa.View.Canvas.Nodes[i].X, sb.View.Canvas.Nodes[i].X)
		assert.Equal(t, sa.View.Canvas.Nodes[i].Y, sb.View.Canvas.Nodes[i].Y)
	}
}

func TestManagerLifecycle(t *testing.T) {
	cfg := testConfig()
	cfg.Session.MaxSessions = 1
	m, _ := newTestManager(t, cfg)
	ctx := context.Background()

	s, err := m.Create(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	_, err = m.Create(ctx, "abc")
	assert.ErrorIs(t, err, ErrLimit)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Close(s.ID))
	assert.ErrorIs(t, m.Close(s.ID), ErrNotFound)
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSessionIdleTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Session.IdleTimeout = 50 * time.Millisecond
	m, _ := newTestManager(t, cfg)

	s, err := m.Create(context.Background(), "abc")
	require.NoError(t, err)

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected idle session to close")
	}
	assert.Equal(t, 0, m.Len())
}

func TestChainSource(t *testing.T) {
	first := NewMemorySource()
	second := NewMemorySource()
	second.Add(duet(), metadata.NewFeed(metadata.Entry{Character: "Romeo", Notes: "n"}))
	chain := Chain{first, second}

	p, err := chain.Play(context.Background(), "duet")
	require.NoError(t, err)
	assert.Equal(t, "Duet", p.Title)

	feed, err := chain.Metadata(context.Background(), "duet")
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Len())

	_, err = chain.Play(context.Background(), "none")
	assert.ErrorIs(t, err, ErrUnknownPlay)
}
