package network

import (
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

// Edge connects two characters that share at least one scene. Source sorts
// before Target by name.
type Edge struct {
	Source       string          `json:"source"`
	Target       string          `json:"target"`
	Weight       int             `json:"weight"`
	SharedScenes []play.SceneKey `json:"sharedScenes"`
}

// Key returns the unordered pair key of the edge.
func (e Edge) Key() EdgeKey {
	return KeyFor(e.Source, e.Target)
}

// Touches reports whether name is an endpoint.
func (e Edge) Touches(name string) bool {
	return e.Source == name || e.Target == name
}

// Other returns the endpoint opposite to name.
func (e Edge) Other(name string) string {
	if e.Source == name {
		return e.Target
	}
	return e.Source
}

// EdgeKey identifies an unordered character pair.
type EdgeKey struct {
	A string
	B string
}

// KeyFor builds the key of the pair regardless of argument order.
func KeyFor(a, b string) EdgeKey {
	if b < a {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

// BuildEdges connects every pair of distinct characters whose scene sets
// intersect. Pairs are visited in name order so the result does not depend on
// map iteration.
//
// The pairwise scan is quadratic in the number of characters. That is fine
// for a cast of tens and stays acceptable up to a few hundred.
func BuildEdges(chars map[string]*Character) []Edge {
	sorted := SortedCharacters(chars)

	var edges []Edge
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			shared := intersectScenes(sorted[i].Scenes, sorted[j].Scenes)
			if len(shared) == 0 {
				continue
			}
			edges = append(edges, Edge{
				Source:       sorted[i].Name,
				Target:       sorted[j].Name,
				Weight:       len(shared),
				SharedScenes: shared,
			})
		}
	}
	return edges
}

// intersectScenes merges two scene lists sorted by act then scene.
func intersectScenes(a, b []play.SceneKey) []play.SceneKey {
	var out []play.SceneKey
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch a[i].Compare(b[j]) {
		case -1:
			i++
		case 1:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
