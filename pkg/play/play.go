// Package play holds the script model shared by the loaders, the line store
// and the network builder.
package play

import (
	"fmt"
	"strconv"
	"strings"
)

// StageDirection is the speaker value used for non-dialogue rows.
const StageDirection = "StageDirection"

// DialogueLine is one row of a script. Lines are immutable once loaded.
type DialogueLine struct {
	Speaker string `json:"speaker"`
	Act     int    `json:"act"`
	Scene   int    `json:"scene"`
	Text    string `json:"text"`
	Row     int    `json:"row"`
}

// SceneKey returns the scene the line belongs to.
func (l DialogueLine) SceneKey() SceneKey {
	return SceneKey{Act: l.Act, Scene: l.Scene}
}

// SpeakerName returns the trimmed speaker.
func (l DialogueLine) SpeakerName() string {
	return strings.TrimSpace(l.Speaker)
}

// IsDialogue reports whether the line counts as spoken dialogue: the trimmed
// speaker is non-empty and not the stage direction sentinel.
func (l DialogueLine) IsDialogue() bool {
	name := l.SpeakerName()
	return name != "" && name != StageDirection
}

// SceneKey identifies a scene by act and scene number. It encodes as its
// canonical string in JSON, including as a map key.
type SceneKey struct {
	Act   int
	Scene int
}

// String returns the canonical "{act}.{scene}" form.
func (k SceneKey) String() string {
	return strconv.Itoa(k.Act) + "." + strconv.Itoa(k.Scene)
}

// Anchor returns the script page anchor, e.g. "act1scene2".
func (k SceneKey) Anchor() string {
	return fmt.Sprintf("act%dscene%d", k.Act, k.Scene)
}

// Label returns the human readable form, e.g. "Act 1, Scene 2".
func (k SceneKey) Label() string {
	return fmt.Sprintf("Act %d, Scene %d", k.Act, k.Scene)
}

// Less orders scenes by act, then scene.
func (k SceneKey) Less(o SceneKey) bool {
	if k.Act != o.Act {
		return k.Act < o.Act
	}
	return k.Scene < o.Scene
}

// Compare returns -1, 0 or 1 for use with slices.SortFunc.
func (k SceneKey) Compare(o SceneKey) int {
	switch {
	case k.Less(o):
		return -1
	case o.Less(k):
		return 1
	default:
		return 0
	}
}

func (k SceneKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SceneKey) UnmarshalText(text []byte) error {
	parsed, err := ParseSceneKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseSceneKey parses "{act}.{scene}". Both parts may be integers or roman
// numerals.
func ParseSceneKey(value string) (SceneKey, error) {
	act, scene, ok := strings.Cut(strings.TrimSpace(value), ".")
	if !ok {
		return SceneKey{}, fmt.Errorf("invalid scene key %q", value)
	}
	a, err := ParseNumber(act)
	if err != nil {
		return SceneKey{}, fmt.Errorf("invalid act in scene key %q: %w", value, err)
	}
	s, err := ParseNumber(scene)
	if err != nil {
		return SceneKey{}, fmt.Errorf("invalid scene in scene key %q: %w", value, err)
	}
	return SceneKey{Act: a, Scene: s}, nil
}

// Play is a loaded script.
type Play struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Author string         `json:"author"`
	Lines  []DialogueLine `json:"lines"`
}

// Scenes returns the distinct scenes of the play in order of first
// appearance. Stage directions count.
func (p *Play) Scenes() []SceneKey {
	if p == nil {
		return nil
	}
	return ScenesOf(p.Lines)
}

// ScenesOf returns the distinct scenes of lines in order of first appearance.
func ScenesOf(lines []DialogueLine) []SceneKey {
	seen := make(map[SceneKey]struct{})
	var scenes []SceneKey
	for _, line := range lines {
		key := line.SceneKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		scenes = append(scenes, key)
	}
	return scenes
}

// SpeakingLines counts the dialogue lines.
func (p *Play) SpeakingLines() int {
	if p == nil {
		return 0
	}
	count := 0
	for _, line := range p.Lines {
		if line.IsDialogue() {
			count++
		}
	}
	return count
}
