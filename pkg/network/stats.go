package network

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

// CastStats summarizes the whole network.
type CastStats struct {
	Characters       int           `json:"characters"`
	Connections      int           `json:"connections"`
	Scenes           int           `json:"scenes"`
	AvgScenesPerChar float64       `json:"avgScenesPerCharacter"`
	Groups           map[Group]int `json:"groups"`
}

// Stats computes cast statistics. Scenes counts distinct scenes with at
// least one speaking character.
func (n *Network) Stats() CastStats {
	stats := CastStats{Groups: make(map[Group]int)}
	if n == nil {
		return stats
	}

	scenes := make(map[play.SceneKey]struct{})
	sceneTotal := 0
	for _, node := range n.Nodes {
		stats.Groups[node.Group]++
		sceneTotal += node.SceneCount
		for _, s := range node.Scenes {
			scenes[s] = struct{}{}
		}
	}

	stats.Characters = len(n.Nodes)
	stats.Connections = len(n.Edges)
	stats.Scenes = len(scenes)
	if stats.Characters > 0 {
		stats.AvgScenesPerChar = float64(sceneTotal) / float64(stats.Characters)
	}
	return stats
}

// SceneAnalysis describes where a character appears.
type SceneAnalysis struct {
	Acts       []int           `json:"acts"`
	FirstScene play.SceneKey   `json:"firstScene"`
	LastScene  play.SceneKey   `json:"lastScene"`
	Range      string          `json:"range"`
	Scenes     []play.SceneKey `json:"scenes"`
}

// AnalyzeScenes returns the scene analysis of name.
func (n *Network) AnalyzeScenes(name string) (SceneAnalysis, bool) {
	node, ok := n.Node(name)
	if !ok || len(node.Scenes) == 0 {
		return SceneAnalysis{}, ok
	}

	var acts []int
	for _, s := range node.Scenes {
		if !slices.Contains(acts, s.Act) {
			acts = append(acts, s.Act)
		}
	}
	slices.Sort(acts)

	first := node.Scenes[0]
	last := node.Scenes[len(node.Scenes)-1]
	r := first.String()
	if first != last {
		r = fmt.Sprintf("%s - %s", first, last)
	}

	return SceneAnalysis{
		Acts:       acts,
		FirstScene: first,
		LastScene:  last,
		Range:      r,
		Scenes:     node.Scenes,
	}, true
}

// ActsLabel joins the acts as "1, 2, 3".
func (a SceneAnalysis) ActsLabel() string {
	out := ""
	for i, act := range a.Acts {
		if i > 0 {
			out += ", "
		}
		out += strconv.Itoa(act)
	}
	return out
}
