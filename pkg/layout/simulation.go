// Package layout runs the force-directed placement of a character network.
//
// A Simulation is owned by a single goroutine. Only Tick and the drag
// methods write positions; everything else reads copies.
package layout

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
	"github.com/OFFIS-RIT/dramaturgy/pkg/network"
)

const (
	MinRadiusScale = 0.5
	MaxRadiusScale = 2.0
)

// ErrNoSuchNode is returned by the drag methods for an out of range index.
var ErrNoSuchNode = errors.New("no such node")

type body struct {
	name   string
	radius float64

	x, y   float64
	vx, vy float64

	pinned bool
	fx, fy float64
}

type link struct {
	source, target int
	distance       float64
	strength       float64
	bias           float64
}

// Position is a read-only snapshot of one node.
type Position struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Pinned bool    `json:"pinned"`
}

// Simulation applies link, many-body, center and collide forces to the
// nodes of a network.
type Simulation struct {
	cfg    Config
	rng    *rand.Rand
	bodies []body
	links  []link
	index  map[string]int

	alpha       float64
	alphaTarget float64
	radiusScale float64
	dragging    int
	ticks       int
}

// Option customizes a Simulation.
type Option func(*Simulation)

// WithRand sets the random source used for initial placement and jiggle.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSeed seeds a PCG source. Two simulations with the same seed, nodes and
// config produce the same layout.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// New places nodes at random positions around the viewport center and
// connects them with one link per edge. Initial placement is random unless a
// seeded source is supplied.
func New(nodes []network.Node, edges []network.Edge, cfg Config, opts ...Option) (*Simulation, error) {
	s := &Simulation{
		cfg:         cfg.withDefaults(),
		index:       make(map[string]int, len(nodes)),
		alpha:       1,
		radiusScale: 1,
	}
	s.alphaTarget = s.cfg.AlphaTarget
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	cx, cy := s.cfg.Center()
	s.bodies = make([]body, len(nodes))
	for i, n := range nodes {
		if _, dup := s.index[n.Name]; dup {
			return nil, fmt.Errorf("duplicate node %q", n.Name)
		}
		s.index[n.Name] = i
		s.bodies[i] = body{
			name:   n.Name,
			radius: float64(n.Radius),
			x:      cx + (s.rng.Float64()-0.5)*s.cfg.Width/2,
			y:      cy + (s.rng.Float64()-0.5)*s.cfg.Height/2,
		}
	}

	degree := make([]int, len(nodes))
	for _, e := range edges {
		src, ok := s.index[e.Source]
		if !ok {
			return nil, fmt.Errorf("link source %q: %w", e.Source, ErrNoSuchNode)
		}
		dst, ok := s.index[e.Target]
		if !ok {
			return nil, fmt.Errorf("link target %q: %w", e.Target, ErrNoSuchNode)
		}
		degree[src]++
		degree[dst]++
		s.links = append(s.links, link{
			source:   src,
			target:   dst,
			distance: s.cfg.LinkDistanceFor(e.Weight),
			strength: s.cfg.LinkStrengthFor(e.Weight),
		})
	}
	for i := range s.links {
		l := &s.links[i]
		l.bias = float64(degree[l.source]) / float64(degree[l.source]+degree[l.target])
	}

	logger.Debug("[Layout] Simulation created", "nodes", len(s.bodies), "links", len(s.links))
	return s, nil
}

// Empty reports the no-data state of a simulation without nodes.
func (s *Simulation) Empty() bool {
	return len(s.bodies) == 0
}

// Len returns the number of nodes.
func (s *Simulation) Len() int {
	return len(s.bodies)
}

// Config returns the effective configuration.
func (s *Simulation) Config() Config {
	return s.cfg
}

// Alpha returns the current cooling parameter.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// AlphaTarget returns the value alpha decays towards.
func (s *Simulation) AlphaTarget() float64 {
	return s.alphaTarget
}

// Ticks returns the number of steps run so far.
func (s *Simulation) Ticks() int {
	return s.ticks
}

// Settled reports whether alpha dropped below the minimum. With the default
// alpha target of 0.1 this never happens and the layout keeps moving.
func (s *Simulation) Settled() bool {
	return s.alpha < s.cfg.AlphaMin
}

// Tick advances the simulation by one step. It returns false once settled.
func (s *Simulation) Tick() bool {
	if s.Settled() && s.alphaTarget < s.cfg.AlphaMin {
		return false
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay
	s.applyLinks()
	s.applyCharge()
	s.applyCenter()
	s.applyCollide()

	keep := 1 - s.cfg.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.pinned {
			b.x, b.vx = b.fx, 0
			b.y, b.vy = b.fy, 0
			continue
		}
		b.vx *= keep
		b.vy *= keep
		b.x += b.vx
		b.y += b.vy
	}
	s.ticks++
	return true
}

// Step runs n ticks.
func (s *Simulation) Step(n int) {
	for range n {
		if !s.Tick() {
			return
		}
	}
}

// Reheat sets alpha so a settled layout moves again.
func (s *Simulation) Reheat(alpha float64) {
	s.alpha = alpha
}

// Positions returns a copy of every node position in node order.
func (s *Simulation) Positions() []Position {
	out := make([]Position, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = Position{
			Name:   b.name,
			X:      b.x,
			Y:      b.y,
			Radius: b.radius * s.radiusScale,
			Pinned: b.pinned,
		}
	}
	return out
}

// Position returns the position of the named node.
func (s *Simulation) Position(name string) (Position, bool) {
	i, ok := s.index[name]
	if !ok {
		return Position{}, false
	}
	b := s.bodies[i]
	return Position{Name: b.name, X: b.x, Y: b.y, Radius: b.radius * s.radiusScale, Pinned: b.pinned}, true
}

// Index returns the node index of name.
func (s *Simulation) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// DragStart pins node i at its current position and raises the alpha
// target while at least one drag is active.
func (s *Simulation) DragStart(i int) error {
	if i < 0 || i >= len(s.bodies) {
		return ErrNoSuchNode
	}
	s.dragging++
	s.alphaTarget = s.cfg.DragAlphaTarget
	b := &s.bodies[i]
	b.pinned = true
	b.fx, b.fy = b.x, b.y
	return nil
}

// Drag moves the pin of node i.
func (s *Simulation) Drag(i int, x, y float64) error {
	if i < 0 || i >= len(s.bodies) {
		return ErrNoSuchNode
	}
	b := &s.bodies[i]
	b.pinned = true
	b.fx, b.fy = x, y
	return nil
}

// DragEnd releases node i. The alpha target drops back once the last
// active drag ends.
func (s *Simulation) DragEnd(i int) error {
	if i < 0 || i >= len(s.bodies) {
		return ErrNoSuchNode
	}
	if s.dragging > 0 {
		s.dragging--
	}
	if s.dragging == 0 {
		s.alphaTarget = s.cfg.AlphaTarget
	}
	s.bodies[i].pinned = false
	return nil
}

// Dragging returns the number of active drags.
func (s *Simulation) Dragging() int {
	return s.dragging
}

// SetRadiusScale scales every node radius, clamped to
// [MinRadiusScale, MaxRadiusScale], and reheats the layout so the collide
// force can make room. It returns the applied scale.
func (s *Simulation) SetRadiusScale(scale float64) float64 {
	if math.IsNaN(scale) {
		scale = 1
	}
	scale = math.Max(MinRadiusScale, math.Min(MaxRadiusScale, scale))
	s.radiusScale = scale
	s.alpha = math.Max(s.alpha, s.cfg.ResizeAlpha)
	return scale
}

// RadiusScale returns the applied radius scale.
func (s *Simulation) RadiusScale() float64 {
	return s.radiusScale
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}
