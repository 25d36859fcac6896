package interaction

import (
	"math"
	"slices"

	"github.com/OFFIS-RIT/dramaturgy/pkg/network"
)

const (
	defaultNodeOpacity = 1.0
	defaultNodeStroke  = 2.0
	defaultLinkOpacity = 0.6
	defaultLabelWeight = "500"

	focusNodeStroke  = 3.0
	dimNodeOpacity   = 0.3
	dimLinkOpacity   = 0.1
	dimLabelOpacity  = 0.3
	focusLabelWeight = "bold"
	dimLabelWeight   = "normal"
)

type NodeStyle struct {
	Opacity     float64 `json:"opacity"`
	StrokeWidth float64 `json:"strokeWidth"`
}

type LinkStyle struct {
	Opacity     float64 `json:"opacity"`
	StrokeWidth float64 `json:"strokeWidth"`
}

type LabelStyle struct {
	Opacity    float64 `json:"opacity"`
	FontWeight string  `json:"fontWeight"`
}

// Styles holds one entry per node, link and label, parallel to the
// network's Nodes and Edges.
type Styles struct {
	Nodes  []NodeStyle  `json:"nodes"`
	Links  []LinkStyle  `json:"links"`
	Labels []LabelStyle `json:"labels"`
}

// Clone returns a deep copy.
func (s Styles) Clone() Styles {
	return Styles{
		Nodes:  slices.Clone(s.Nodes),
		Links:  slices.Clone(s.Links),
		Labels: slices.Clone(s.Labels),
	}
}

// Equal compares two style sets value by value.
func (s Styles) Equal(o Styles) bool {
	return slices.Equal(s.Nodes, o.Nodes) &&
		slices.Equal(s.Links, o.Links) &&
		slices.Equal(s.Labels, o.Labels)
}

// DefaultStyles returns the resting style of every element.
func DefaultStyles(net *network.Network) Styles {
	var s Styles
	if net == nil {
		return s
	}
	s.Nodes = make([]NodeStyle, len(net.Nodes))
	s.Labels = make([]LabelStyle, len(net.Nodes))
	for i := range net.Nodes {
		s.Nodes[i] = NodeStyle{Opacity: defaultNodeOpacity, StrokeWidth: defaultNodeStroke}
		s.Labels[i] = LabelStyle{Opacity: 1, FontWeight: defaultLabelWeight}
	}
	s.Links = make([]LinkStyle, len(net.Edges))
	for i, e := range net.Edges {
		s.Links[i] = LinkStyle{
			Opacity:     defaultLinkOpacity,
			StrokeWidth: math.Max(1, math.Sqrt(float64(e.Weight))*2),
		}
	}
	return s
}

// HighlightStyles emphasizes focus, its neighbors and its incident links and
// dims everything else.
func HighlightStyles(net *network.Network, focus string) Styles {
	var s Styles
	if net == nil {
		return s
	}

	connected := map[string]bool{focus: true}
	for _, e := range net.Edges {
		if e.Touches(focus) {
			connected[e.Other(focus)] = true
		}
	}

	s.Nodes = make([]NodeStyle, len(net.Nodes))
	s.Labels = make([]LabelStyle, len(net.Nodes))
	for i, n := range net.Nodes {
		if connected[n.Name] {
			s.Nodes[i] = NodeStyle{Opacity: 1, StrokeWidth: focusNodeStroke}
			s.Labels[i] = LabelStyle{Opacity: 1, FontWeight: focusLabelWeight}
		} else {
			s.Nodes[i] = NodeStyle{Opacity: dimNodeOpacity, StrokeWidth: defaultNodeStroke}
			s.Labels[i] = LabelStyle{Opacity: dimLabelOpacity, FontWeight: dimLabelWeight}
		}
	}

	s.Links = make([]LinkStyle, len(net.Edges))
	for i, e := range net.Edges {
		w := math.Sqrt(float64(e.Weight))
		if e.Touches(focus) {
			s.Links[i] = LinkStyle{Opacity: 1, StrokeWidth: math.Max(2, w*3)}
		} else {
			s.Links[i] = LinkStyle{Opacity: dimLinkOpacity, StrokeWidth: w * 2}
		}
	}
	return s
}
