package network

import (
	"cmp"
	"slices"

	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

// Node is a character placed in the graph.
type Node struct {
	Character
	Group  Group   `json:"group"`
	Radius int     `json:"radius"`
	Score  float64 `json:"score"`
}

// Network is the derived character graph of a play. Nodes are ordered by
// name.
type Network struct {
	Nodes              []Node          `json:"nodes"`
	Edges              []Edge          `json:"links"`
	Scenes             []play.SceneKey `json:"scenes"`
	TotalScenes        int             `json:"totalScenes"`
	TotalSpeakingLines int             `json:"totalSpeakingLines"`

	index map[string]int
	edges map[EdgeKey]int
}

// Build derives the network from raw lines. The scene total counts every
// distinct scene, including scenes that only hold stage directions.
func Build(lines []play.DialogueLine) *Network {
	scenes := play.ScenesOf(lines)
	n := BuildFromCharacters(Aggregate(lines), len(scenes), TotalSpeakingLines(lines))
	n.Scenes = scenes
	return n
}

// BuildFromCharacters classifies and connects already aggregated characters.
func BuildFromCharacters(chars map[string]*Character, totalScenes, totalSpeakingLines int) *Network {
	n := &Network{
		TotalScenes:        totalScenes,
		TotalSpeakingLines: totalSpeakingLines,
	}

	for _, c := range SortedCharacters(chars) {
		score := Score(c, totalScenes, totalSpeakingLines)
		n.Nodes = append(n.Nodes, Node{
			Character: *c,
			Group:     GroupForScore(score),
			Radius:    Radius(c.SceneCount, c.LineCount),
			Score:     score,
		})
	}
	n.Edges = BuildEdges(chars)
	n.reindex()

	return n
}

func (n *Network) reindex() {
	n.index = make(map[string]int, len(n.Nodes))
	for i, node := range n.Nodes {
		n.index[node.Name] = i
	}
	n.edges = make(map[EdgeKey]int, len(n.Edges))
	for i, e := range n.Edges {
		n.edges[e.Key()] = i
	}
}

// Empty reports whether the network has no characters.
func (n *Network) Empty() bool {
	return n == nil || len(n.Nodes) == 0
}

// Node looks a character up by exact name.
func (n *Network) Node(name string) (Node, bool) {
	if n == nil {
		return Node{}, false
	}
	i, ok := n.index[name]
	if !ok {
		return Node{}, false
	}
	return n.Nodes[i], true
}

// NodeIndex returns the position of name in Nodes.
func (n *Network) NodeIndex(name string) (int, bool) {
	if n == nil {
		return 0, false
	}
	i, ok := n.index[name]
	return i, ok
}

// Edge returns the edge between a and b in either order.
func (n *Network) Edge(a, b string) (Edge, bool) {
	if n == nil {
		return Edge{}, false
	}
	i, ok := n.edges[KeyFor(a, b)]
	if !ok {
		return Edge{}, false
	}
	return n.Edges[i], true
}

// Connection is a neighbor of a character seen from that character.
type Connection struct {
	Name         string          `json:"name"`
	Weight       int             `json:"weight"`
	SharedScenes []play.SceneKey `json:"sharedScenes"`
}

// Neighbors lists the characters connected to name, strongest first and by
// name within equal weight.
func (n *Network) Neighbors(name string) []Connection {
	if n == nil {
		return nil
	}
	var out []Connection
	for _, e := range n.Edges {
		if !e.Touches(name) {
			continue
		}
		out = append(out, Connection{
			Name:         e.Other(name),
			Weight:       e.Weight,
			SharedScenes: e.SharedScenes,
		})
	}
	slices.SortFunc(out, func(a, b Connection) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Degree returns the number of edges incident to name.
func (n *Network) Degree(name string) int {
	if n == nil {
		return 0
	}
	count := 0
	for _, e := range n.Edges {
		if e.Touches(name) {
			count++
		}
	}
	return count
}

// LinePercent returns the share of speaking lines held by lineCount, in
// percent. It is zero when the play has no speaking lines.
func (n *Network) LinePercent(lineCount int) float64 {
	if n == nil || n.TotalSpeakingLines <= 0 {
		return 0
	}
	return float64(lineCount) / float64(n.TotalSpeakingLines) * 100
}
