package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/dramaturgy/pkg/network"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

func line(speaker string, act, scene int) play.DialogueLine {
	return play.DialogueLine{Speaker: speaker, Act: act, Scene: scene}
}

func times(l play.DialogueLine, n int) []play.DialogueLine {
	out := make([]play.DialogueLine, n)
	for i := range out {
		out[i] = l
	}
	return out
}

// aliceBobCarol: Alice has 10 of 20 lines over both scenes, Bob 8 lines in
// 1.1 and Carol 2 lines in 1.2.
func aliceBobCarol() *network.Network {
	var lines []play.DialogueLine
	lines = append(lines, times(line("Alice", 1, 1), 5)...)
	lines = append(lines, times(line("Alice", 1, 2), 5)...)
	lines = append(lines, times(line("Bob", 1, 1), 8)...)
	lines = append(lines, times(line("Carol", 1, 2), 2)...)
	return network.Build(lines)
}

func nodeIndex(t *testing.T, net *network.Network, name string) int {
	t.Helper()
	i, ok := net.NodeIndex(name)
	require.True(t, ok, name)
	return i
}

func edgeIndex(t *testing.T, net *network.Network, a, b string) int {
	t.Helper()
	for i, e := range net.Edges {
		if e.Key() == network.KeyFor(a, b) {
			return i
		}
	}
	t.Fatalf("no edge %s-%s", a, b)
	return -1
}

func TestControllerTransitions(t *testing.T) {
	c := NewController(aliceBobCarol())
	assert.Equal(t, StateIdle, c.State())

	assert.True(t, c.Hover("Bob"))
	assert.Equal(t, StateHovering, c.State())
	focus, ok := c.Focus()
	assert.True(t, ok)
	assert.Equal(t, "Bob", focus)

	assert.True(t, c.Unhover())
	assert.Equal(t, StateIdle, c.State())
	assert.False(t, c.Unhover())

	c.Hover("Bob")
	assert.True(t, c.ClickNode("Alice"))
	assert.Equal(t, StateSelected, c.State())
	selected, ok := c.Selected()
	assert.True(t, ok)
	assert.Equal(t, "Alice", selected)

	// Hover does not disturb a selection.
	assert.False(t, c.Hover("Carol"))
	assert.False(t, c.Unhover())
	selected, _ = c.Selected()
	assert.Equal(t, "Alice", selected)

	assert.True(t, c.ClickNode("Carol"))
	selected, _ = c.Selected()
	assert.Equal(t, "Carol", selected)

	assert.True(t, c.ClickBackground())
	assert.Equal(t, StateIdle, c.State())
	_, ok = c.Selected()
	assert.False(t, ok)

	c.ClickNode("Bob")
	assert.True(t, c.Back())
	assert.False(t, c.Back())

	assert.False(t, c.ClickNode("Nobody"))
	assert.False(t, c.Hover("Nobody"))
	assert.Equal(t, StateIdle, c.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "hovering", StateHovering.String())
	assert.Equal(t, "selected", StateSelected.String())
}

func TestHighlightValues(t *testing.T) {
	net := aliceBobCarol()
	c := NewController(net)
	c.Hover("Carol")
	s := c.Styles()

	alice := nodeIndex(t, net, "Alice")
	bob := nodeIndex(t, net, "Bob")
	carol := nodeIndex(t, net, "Carol")

	assert.Equal(t, NodeStyle{Opacity: 1, StrokeWidth: 3}, s.Nodes[carol])
	assert.Equal(t, NodeStyle{Opacity: 1, StrokeWidth: 3}, s.Nodes[alice])
	assert.Equal(t, NodeStyle{Opacity: 0.3, StrokeWidth: 2}, s.Nodes[bob])
	assert.Equal(t, LabelStyle{Opacity: 1, FontWeight: "bold"}, s.Labels[alice])
	assert.Equal(t, LabelStyle{Opacity: 0.3, FontWeight: "normal"}, s.Labels[bob])

	ac := edgeIndex(t, net, "Alice", "Carol")
	ab := edgeIndex(t, net, "Alice", "Bob")
	assert.Equal(t, LinkStyle{Opacity: 1, StrokeWidth: 3}, s.Links[ac])
	assert.Equal(t, LinkStyle{Opacity: 0.1, StrokeWidth: 2}, s.Links[ab])

	tiers := c.Tiers()
	require.Len(t, tiers.Weak, 1)
	assert.Equal(t, "Alice", tiers.Weak[0].Name)
}

func TestDefaultStyles(t *testing.T) {
	net := aliceBobCarol()
	s := DefaultStyles(net)
	for i := range net.Nodes {
		assert.Equal(t, NodeStyle{Opacity: 1, StrokeWidth: 2}, s.Nodes[i])
		assert.Equal(t, LabelStyle{Opacity: 1, FontWeight: "500"}, s.Labels[i])
	}
	for i := range net.Edges {
		assert.Equal(t, LinkStyle{Opacity: 0.6, StrokeWidth: 2}, s.Links[i])
	}
}

func TestHoverUnhoverIdempotent(t *testing.T) {
	net := aliceBobCarol()
	c := NewController(net)
	before := c.Styles()

	c.Hover("Alice")
	c.Unhover()
	once := c.Styles()
	assert.True(t, before.Equal(once))

	for range 25 {
		c.Hover("Bob")
		c.Unhover()
	}
	assert.True(t, once.Equal(c.Styles()))

	c.ClickNode("Carol")
	c.Back()
	assert.True(t, before.Equal(c.Styles()))
}

func TestReselectLeavesNoDoubleHighlight(t *testing.T) {
	net := aliceBobCarol()
	c := NewController(net)

	c.ClickNode("Bob")
	c.ClickNode("Carol")
	assert.True(t, HighlightStyles(net, "Carol").Equal(c.Styles()))
}

func TestStylesCopyIsIsolated(t *testing.T) {
	c := NewController(aliceBobCarol())
	s := c.Styles()
	s.Nodes[0].Opacity = 0

	assert.Equal(t, 1.0, c.Styles().Nodes[0].Opacity)
}

func TestPalette(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, "#d62728", p.Color(network.GroupMajor))
	assert.Equal(t, "#1f77b4", p.Color(network.GroupBackground))
	assert.Equal(t, "#999999", p.Color(network.Group(7)))

	var empty Palette
	assert.Equal(t, "#999999", empty.Color(network.GroupMajor))
}

func TestTransform(t *testing.T) {
	tr := FocusOn(100, 200, 800, 600)
	assert.Equal(t, Transform{X: 250, Y: 0, K: 1.5}, tr)

	x, y := tr.Apply(100, 200)
	assert.Equal(t, 400.0, x)
	assert.Equal(t, 300.0, y)

	assert.Equal(t, 3.0, Transform{K: 10}.Clamped().K)
	assert.Equal(t, 0.1, Transform{K: 0.01}.Clamped().K)
	assert.Equal(t, 1.0, Transform{}.Clamped().K)
}
