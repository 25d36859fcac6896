// Package network derives the weighted character co-occurrence graph of a
// play. It has no rendering dependency.
package network

import (
	"slices"
	"strings"

	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

// Character aggregates the dialogue of one speaker.
type Character struct {
	Name       string          `json:"name"`
	Scenes     []play.SceneKey `json:"scenes"`
	SceneCount int             `json:"sceneCount"`
	LineCount  int             `json:"lineCount"`
}

// InScene reports whether the character speaks in scene.
func (c *Character) InScene(scene play.SceneKey) bool {
	_, found := slices.BinarySearchFunc(c.Scenes, scene, play.SceneKey.Compare)
	return found
}

// Aggregate groups dialogue lines by trimmed speaker. Stage directions and
// blank speakers are skipped. Scenes are sorted by act, then scene.
func Aggregate(lines []play.DialogueLine) map[string]*Character {
	chars := make(map[string]*Character)
	seen := make(map[string]map[play.SceneKey]struct{})

	for _, line := range lines {
		if !line.IsDialogue() {
			continue
		}
		name := line.SpeakerName()

		c, ok := chars[name]
		if !ok {
			c = &Character{Name: name}
			chars[name] = c
			seen[name] = make(map[play.SceneKey]struct{})
		}
		c.LineCount++

		key := line.SceneKey()
		if _, ok := seen[name][key]; !ok {
			seen[name][key] = struct{}{}
			c.Scenes = append(c.Scenes, key)
		}
	}

	for _, c := range chars {
		slices.SortFunc(c.Scenes, play.SceneKey.Compare)
		c.SceneCount = len(c.Scenes)
	}

	return chars
}

// SortedCharacters returns the characters ordered by name.
func SortedCharacters(chars map[string]*Character) []*Character {
	out := make([]*Character, 0, len(chars))
	for _, c := range chars {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Character) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// TotalSpeakingLines counts the lines that contribute to a character.
func TotalSpeakingLines(lines []play.DialogueLine) int {
	total := 0
	for _, line := range lines {
		if line.IsDialogue() {
			total++
		}
	}
	return total
}
