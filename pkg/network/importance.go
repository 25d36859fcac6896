package network

import (
	"math"
)

// Group is the importance tier of a character, 1 being the most important.
type Group int

const (
	GroupMajor      Group = 1
	GroupSupporting Group = 2
	GroupMinor      Group = 3
	GroupBackground Group = 4
)

// Score thresholds. Lower bounds are inclusive.
const (
	MajorThreshold      = 0.15
	SupportingThreshold = 0.08
	MinorThreshold      = 0.02
)

const (
	lineWeight  = 0.6
	sceneWeight = 0.4

	minRadius = 8.0
	maxRadius = 25.0
)

var groupLabels = map[Group]string{
	GroupMajor:      "Major Character",
	GroupSupporting: "Supporting Character",
	GroupMinor:      "Minor Character",
	GroupBackground: "Background Character",
}

// Label returns the display name of the group.
func (g Group) Label() string {
	if label, ok := groupLabels[g]; ok {
		return label
	}
	return "Unknown"
}

// Score weighs the share of speaking lines against the share of scenes.
// Both totals are guarded against zero.
func Score(c *Character, totalScenes, totalSpeakingLines int) float64 {
	sceneRatio := float64(c.SceneCount) / float64(max(totalScenes, 1))
	lineRatio := float64(c.LineCount) / float64(max(totalSpeakingLines, 1))
	return lineWeight*lineRatio + sceneWeight*sceneRatio
}

// GroupForScore maps a score onto the fixed thresholds.
func GroupForScore(score float64) Group {
	switch {
	case score >= MajorThreshold:
		return GroupMajor
	case score >= SupportingThreshold:
		return GroupSupporting
	case score >= MinorThreshold:
		return GroupMinor
	default:
		return GroupBackground
	}
}

// Classify scores c and returns its group.
func Classify(c *Character, totalScenes, totalSpeakingLines int) Group {
	return GroupForScore(Score(c, totalScenes, totalSpeakingLines))
}

// Radius sizes a node from its scene and line counts, in pixels.
func Radius(sceneCount, lineCount int) int {
	sceneR := clamp(minRadius+float64(sceneCount)*1.2, minRadius, maxRadius)
	lineR := clamp(minRadius+math.Sqrt(float64(lineCount))*2, minRadius, maxRadius)
	return int(math.Round(sceneR*sceneWeight + lineR*lineWeight))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
