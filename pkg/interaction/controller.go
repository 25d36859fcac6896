// Package interaction turns pointer and selection events into view state
// for a mounted character network.
package interaction

import (
	"github.com/OFFIS-RIT/dramaturgy/pkg/network"
)

// State is the highlight state of a view.
type State int

const (
	StateIdle State = iota
	StateHovering
	StateSelected
)

func (s State) String() string {
	switch s {
	case StateHovering:
		return "hovering"
	case StateSelected:
		return "selected"
	default:
		return "idle"
	}
}

// Controller is the highlight state machine:
//
//	Idle --Hover(n)--> Hovering(n) --Unhover--> Idle
//	Idle/Hovering --ClickNode(n)--> Selected(n)
//	Selected(n) --ClickBackground/Back--> Idle
//	Selected(n) --ClickNode(m)--> Selected(m)
//
// Hover events are ignored while a node is selected so the selection
// highlight stays in place.
type Controller struct {
	net      *network.Network
	state    State
	focus    string
	defaults Styles
	current  Styles
	tiers    network.Tiers
}

// NewController starts in Idle with the default style snapshot applied.
func NewController(net *network.Network) *Controller {
	defaults := DefaultStyles(net)
	return &Controller{
		net:      net,
		defaults: defaults,
		current:  defaults.Clone(),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Focus returns the hovered or selected node.
func (c *Controller) Focus() (string, bool) {
	return c.focus, c.state != StateIdle
}

// Selected returns the selected node, if any.
func (c *Controller) Selected() (string, bool) {
	if c.state != StateSelected {
		return "", false
	}
	return c.focus, true
}

// Tiers returns the partitioned neighbors of the focused node.
func (c *Controller) Tiers() network.Tiers {
	return c.tiers
}

// Styles returns a copy of the current styles.
func (c *Controller) Styles() Styles {
	return c.current.Clone()
}

// Hover enters Hovering(name). It reports whether the state changed.
func (c *Controller) Hover(name string) bool {
	if c.state == StateSelected {
		return false
	}
	if _, ok := c.net.Node(name); !ok {
		return false
	}
	if c.state == StateHovering && c.focus == name {
		return false
	}
	c.enter(StateHovering, name)
	return true
}

// Unhover leaves Hovering and restores the default styles.
func (c *Controller) Unhover() bool {
	if c.state != StateHovering {
		return false
	}
	c.clear()
	return true
}

// ClickNode selects name. A previous highlight is cleared first.
func (c *Controller) ClickNode(name string) bool {
	if _, ok := c.net.Node(name); !ok {
		return false
	}
	c.clear()
	c.enter(StateSelected, name)
	return true
}

// ClickBackground drops the selection.
func (c *Controller) ClickBackground() bool {
	return c.Back()
}

// Back drops the selection.
func (c *Controller) Back() bool {
	if c.state != StateSelected {
		return false
	}
	c.clear()
	return true
}

// Reset returns to Idle from any state.
func (c *Controller) Reset() {
	c.clear()
}

func (c *Controller) enter(state State, name string) {
	c.state = state
	c.focus = name
	c.tiers = c.net.Partition(name)
	c.current = HighlightStyles(c.net, name)
}

func (c *Controller) clear() {
	c.state = StateIdle
	c.focus = ""
	c.tiers = network.Tiers{}
	c.current = c.defaults.Clone()
}
