package linestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/dramaturgy/internal/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

func samplePlay() *play.Play {
	return &play.Play{
		Title: "Sample",
		Lines: []play.DialogueLine{
			{Speaker: "Alice", Act: 1, Scene: 1, Text: "Hello", Row: 1},
			{Speaker: play.StageDirection, Act: 1, Scene: 1, Text: "Enter Bob", Row: 2},
			{Speaker: "Bob", Act: 1, Scene: 1, Text: "Hi", Row: 3},
			{Speaker: " Alice", Act: 1, Scene: 2, Text: "Bye", Row: 4},
		},
	}
}

func TestNotReadyBeforeLoad(t *testing.T) {
	s := New()

	_, err := s.AllLines()
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = s.Characters()
	assert.ErrorIs(t, err, ErrNotReady)
	_, ok := s.Get()
	assert.False(t, ok)
}

func TestLoadQueriesAndClear(t *testing.T) {
	s := New()
	p := samplePlay()
	s.Load(p)

	// The store keeps its own copy.
	p.Lines[0].Speaker = "Mallory"

	lines, err := s.AllLines()
	require.NoError(t, err)
	assert.Len(t, lines, 4)
	assert.Equal(t, "Alice", lines[0].Speaker)

	alice, err := s.LinesBySpeaker("Alice")
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	scene, err := s.LinesByScene(play.SceneKey{Act: 1, Scene: 1})
	require.NoError(t, err)
	assert.Len(t, scene, 3)

	scenes, err := s.Scenes()
	require.NoError(t, err)
	assert.Equal(t, []play.SceneKey{{Act: 1, Scene: 1}, {Act: 1, Scene: 2}}, scenes)

	chars, err := s.Characters()
	require.NoError(t, err)
	assert.Len(t, chars, 2)
	assert.Equal(t, 2, chars["Alice"].LineCount)

	v := s.Version()
	s.Clear()
	assert.Greater(t, s.Version(), v)
	_, err = s.AllLines()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestReadyClosesOnLoad(t *testing.T) {
	s := New()
	ready := s.Ready()

	select {
	case <-ready:
		t.Fatal("expected ready channel to block before load")
	default:
	}

	s.Load(samplePlay())

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("expected ready channel to close after load")
	}

	select {
	case <-s.Ready():
	default:
		t.Fatal("expected Ready to be closed for a loaded store")
	}
}

func TestWaitForLinesEventuallyLoaded(t *testing.T) {
	s := New()
	go func() {
		time.Sleep(5 * time.Millisecond)
		s.Load(samplePlay())
	}()

	policy := util.PollPolicy{Interval: 2 * time.Millisecond, MaxAttempts: 200}
	lines, err := s.WaitForLines(context.Background(), policy)
	require.NoError(t, err)
	assert.Len(t, lines, 4)
}

func TestWaitForLinesMissingData(t *testing.T) {
	s := New()
	s.Load(&play.Play{Title: "Empty"})

	policy := util.PollPolicy{Interval: time.Millisecond, MaxAttempts: 3}
	_, err := s.WaitForLines(context.Background(), policy)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingData))
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestWaitForLinesCancelled(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.WaitForLines(ctx, util.DefaultPollPolicy)
	assert.ErrorIs(t, err, context.Canceled)
}
