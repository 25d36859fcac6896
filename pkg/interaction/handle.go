package interaction

import (
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/OFFIS-RIT/dramaturgy/pkg/layout"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
	"github.com/OFFIS-RIT/dramaturgy/pkg/metadata"
	"github.com/OFFIS-RIT/dramaturgy/pkg/network"
)

// ErrClosed is returned by drag operations on a discarded handle.
var ErrClosed = errors.New("view handle closed")

// Options configure Mount.
type Options struct {
	Layout     layout.Config
	Palette    Palette
	Feed       *metadata.Feed
	Rand       *rand.Rand
	HideLabels bool
}

// EventType names a selection event.
type EventType string

const (
	EventSelected   EventType = "selected"
	EventCleared    EventType = "cleared"
	EventHovered    EventType = "hovered"
	EventUnhovered  EventType = "unhovered"
	EventViewReset  EventType = "view_reset"
	EventNodeScaled EventType = "node_scaled"
)

// Event is delivered to subscribers.
type Event struct {
	Type     EventType `json:"type"`
	Name     string    `json:"name,omitempty"`
	Previous string    `json:"previous,omitempty"`
}

// Handle is a mounted network. It is owned by one goroutine.
type Handle struct {
	target  *View
	net     *network.Network
	sim     *layout.Simulation
	ctrl    *Controller
	palette Palette
	feed    *metadata.Feed

	showLabels bool
	transform  Transform
	subs       map[int]func(Event)
	nextSub    int
	closed     bool
}

// Mount builds the simulation and controller for net and renders the
// initial state into target. A nil or empty network mounts in the no-data
// state.
func Mount(target *View, net *network.Network, opts Options) (*Handle, error) {
	if net == nil {
		net = network.BuildFromCharacters(nil, 0, 0)
	}
	palette := opts.Palette
	if len(palette) == 0 {
		palette = DefaultPalette()
	}

	var simOpts []layout.Option
	if opts.Rand != nil {
		simOpts = append(simOpts, layout.WithRand(opts.Rand))
	}
	sim, err := layout.New(net.Nodes, net.Edges, opts.Layout, simOpts...)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		target:     target,
		net:        net,
		sim:        sim,
		ctrl:       NewController(net),
		palette:    palette,
		feed:       opts.Feed,
		showLabels: !opts.HideLabels,
		transform:  Identity,
		subs:       make(map[int]func(Event)),
	}

	h.renderStatus()
	h.renderCanvas()
	h.renderSidebar()
	h.hideTooltip()

	logger.Debug("[Interaction] Mounted network", "nodes", len(net.Nodes), "links", len(net.Edges))
	return h, nil
}

// Network returns the mounted network.
func (h *Handle) Network() *network.Network {
	return h.net
}

// State returns the controller state.
func (h *Handle) State() State {
	return h.ctrl.State()
}

// Selected returns the selected character.
func (h *Handle) Selected() (string, bool) {
	return h.ctrl.Selected()
}

// Styles returns the current element styles.
func (h *Handle) Styles() Styles {
	return h.ctrl.Styles()
}

// Transform returns the current pan and zoom.
func (h *Handle) Transform() Transform {
	return h.transform
}

// LabelsVisible reports whether labels are drawn.
func (h *Handle) LabelsVisible() bool {
	return h.showLabels
}

// Positions returns the node positions of the layout.
func (h *Handle) Positions() []layout.Position {
	return h.sim.Positions()
}

// Alpha returns the simulation alpha.
func (h *Handle) Alpha() float64 {
	return h.sim.Alpha()
}

// Closed reports whether the handle was discarded.
func (h *Handle) Closed() bool {
	return h.closed
}

// Subscribe registers fn for selection events and returns a function that
// removes it.
func (h *Handle) Subscribe(fn func(Event)) func() {
	if h.closed || fn == nil {
		return func() {}
	}
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	return func() {
		delete(h.subs, id)
	}
}

func (h *Handle) emit(e Event) {
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := h.subs[id]; ok {
			fn(e)
		}
	}
}

// Tick advances the layout one step and redraws positions.
func (h *Handle) Tick() bool {
	if h.closed {
		return false
	}
	moved := h.sim.Tick()
	h.renderCanvas()
	return moved
}

// Hover highlights name and shows its tooltip.
func (h *Handle) Hover(name string) {
	if h.closed {
		return
	}
	if tip, ok := NodeTooltip(h.net, name); ok && h.target != nil && h.target.Tooltip != nil {
		*h.target.Tooltip = tip
	}
	if h.ctrl.Hover(name) {
		h.renderCanvas()
		h.emit(Event{Type: EventHovered, Name: name})
	}
}

// Unhover clears a hover highlight and hides the tooltip.
func (h *Handle) Unhover() {
	if h.closed {
		return
	}
	h.hideTooltip()
	previous, _ := h.ctrl.Focus()
	if h.ctrl.Unhover() {
		h.renderCanvas()
		h.emit(Event{Type: EventUnhovered, Previous: previous})
	}
}

// HoverLink shows the tooltip of the link between a and b.
func (h *Handle) HoverLink(a, b string) {
	if h.closed || h.target == nil || h.target.Tooltip == nil {
		return
	}
	if tip, ok := LinkTooltip(h.net, a, b); ok {
		*h.target.Tooltip = tip
	}
}

// UnhoverLink hides the link tooltip.
func (h *Handle) UnhoverLink() {
	if h.closed {
		return
	}
	h.hideTooltip()
}

// Click selects name, focuses the view on it and shows its details.
func (h *Handle) Click(name string) bool {
	if h.closed {
		return false
	}
	previous, _ := h.ctrl.Selected()
	if !h.ctrl.ClickNode(name) {
		logger.Debug("[Interaction] Click on unknown node", "name", name)
		return false
	}
	if p, ok := h.sim.Position(name); ok {
		cfg := h.sim.Config()
		h.transform = FocusOn(p.X, p.Y, cfg.Width, cfg.Height)
	}
	h.renderCanvas()
	h.renderSidebar()
	h.emit(Event{Type: EventSelected, Name: name, Previous: previous})
	return true
}

// ClickBackground drops the selection and shows the list again.
func (h *Handle) ClickBackground() {
	h.Back()
}

// Back drops the selection and shows the list again.
func (h *Handle) Back() {
	if h.closed {
		return
	}
	previous, _ := h.ctrl.Selected()
	if !h.ctrl.Back() {
		return
	}
	h.renderCanvas()
	h.renderSidebar()
	h.emit(Event{Type: EventCleared, Previous: previous})
}

// SelectByName selects a character by exact name. An unknown name leaves
// the view untouched and is logged.
func (h *Handle) SelectByName(name string) bool {
	if h.closed {
		return false
	}
	if _, ok := h.net.Node(name); !ok {
		logger.Warn("[Interaction] Character not found", "name", name)
		return false
	}
	return h.Click(name)
}

// ResetView restores the identity transform and clears the selection.
func (h *Handle) ResetView() {
	if h.closed {
		return
	}
	h.transform = Identity
	previous, hadSelection := h.ctrl.Selected()
	h.ctrl.Reset()
	h.hideTooltip()
	h.renderCanvas()
	h.renderSidebar()
	if hadSelection {
		h.emit(Event{Type: EventCleared, Previous: previous})
	}
	h.emit(Event{Type: EventViewReset})
}

// SetTransform applies a user pan or zoom, clamped to the zoom extent.
func (h *Handle) SetTransform(t Transform) {
	if h.closed {
		return
	}
	h.transform = t.Clamped()
	h.renderCanvas()
}

// ToggleLabels flips label visibility and returns the new state.
func (h *Handle) ToggleLabels() bool {
	if h.closed {
		return h.showLabels
	}
	h.showLabels = !h.showLabels
	h.renderCanvas()
	return h.showLabels
}

// SetNodeScale scales node radii, clamped to [0.5, 2], and returns the
// applied scale.
func (h *Handle) SetNodeScale(scale float64) float64 {
	if h.closed {
		return h.sim.RadiusScale()
	}
	applied := h.sim.SetRadiusScale(scale)
	h.renderCanvas()
	h.emit(Event{Type: EventNodeScaled})
	return applied
}

// DragStart pins name where it is.
func (h *Handle) DragStart(name string) error {
	i, err := h.dragIndex(name)
	if err != nil {
		return err
	}
	return h.sim.DragStart(i)
}

// Drag moves the pin of name.
func (h *Handle) Drag(name string, x, y float64) error {
	i, err := h.dragIndex(name)
	if err != nil {
		return err
	}
	if err := h.sim.Drag(i, x, y); err != nil {
		return err
	}
	h.renderCanvas()
	return nil
}

// DragEnd releases name.
func (h *Handle) DragEnd(name string) error {
	i, err := h.dragIndex(name)
	if err != nil {
		return err
	}
	return h.sim.DragEnd(i)
}

func (h *Handle) dragIndex(name string) (int, error) {
	if h.closed {
		return 0, ErrClosed
	}
	i, ok := h.sim.Index(name)
	if !ok {
		return 0, layout.ErrNoSuchNode
	}
	return i, nil
}

// Close discards the handle. Later calls are no-ops and subscribers are
// dropped.
func (h *Handle) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.subs = nil
}

func (h *Handle) hideTooltip() {
	if h.target == nil || h.target.Tooltip == nil {
		return
	}
	*h.target.Tooltip = Tooltip{}
}

func (h *Handle) renderStatus() {
	if h.target == nil || h.target.Status == nil {
		return
	}
	if h.net.Empty() {
		*h.target.Status = Status{NoData: true, Message: NoDataMessage}
		return
	}
	*h.target.Status = Status{}
}

func (h *Handle) renderSidebar() {
	if h.target == nil || h.target.Sidebar == nil {
		return
	}
	sb := h.target.Sidebar
	sb.List = BuildList(h.net, h.feed, h.palette)
	selected, ok := h.ctrl.Selected()
	if !ok {
		sb.Mode = SidebarList
		sb.Detail = nil
		return
	}
	for i := range sb.List {
		sb.List[i].Active = sb.List[i].Name == selected
	}
	if detail, ok := BuildDetail(h.net, selected, h.feed, h.palette); ok {
		sb.Mode = SidebarDetail
		sb.Detail = &detail
	}
}

func (h *Handle) renderCanvas() {
	if h.target == nil || h.target.Canvas == nil {
		return
	}
	c := h.target.Canvas
	cfg := h.sim.Config()
	styles := h.ctrl.current
	positions := h.sim.Positions()

	c.Width = cfg.Width
	c.Height = cfg.Height
	c.Transform = h.transform
	c.ShowLabels = h.showLabels
	c.NodeScale = h.sim.RadiusScale()
	c.Tick = h.sim.Ticks()

	c.Nodes = make([]CanvasNode, 0, len(positions))
	for i, p := range positions {
		c.Nodes = append(c.Nodes, CanvasNode{
			Name:   p.Name,
			X:      p.X,
			Y:      p.Y,
			Radius: p.Radius,
			Fill:   h.palette.Color(h.net.Nodes[i].Group),
			Style:  styles.Nodes[i],
			Label:  styles.Labels[i],
		})
	}

	c.Links = make([]CanvasLink, 0, len(h.net.Edges))
	for i, e := range h.net.Edges {
		si, _ := h.sim.Index(e.Source)
		ti, _ := h.sim.Index(e.Target)
		c.Links = append(c.Links, CanvasLink{
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
			X1:     positions[si].X,
			Y1:     positions[si].Y,
			X2:     positions[ti].X,
			Y2:     positions[ti].Y,
			Style:  styles.Links[i],
		})
	}
}
