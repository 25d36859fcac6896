package play

import (
	"encoding/json"
	"testing"
)

func TestDialogueLineIsDialogue(t *testing.T) {
	tests := []struct {
		speaker string
		want    bool
	}{
		{"HAMLET", true},
		{"  HORATIO ", true},
		{"", false},
		{"   ", false},
		{StageDirection, false},
		{" StageDirection ", false},
	}
	for _, tt := range tests {
		line := DialogueLine{Speaker: tt.speaker}
		if got := line.IsDialogue(); got != tt.want {
			t.Fatalf("IsDialogue(%q) = %v, want %v", tt.speaker, got, tt.want)
		}
	}
}

func TestSceneKeyFormatting(t *testing.T) {
	key := SceneKey{Act: 2, Scene: 3}
	if key.String() != "2.3" {
		t.Fatalf("expected 2.3, got %s", key.String())
	}
	if key.Anchor() != "act2scene3" {
		t.Fatalf("expected act2scene3, got %s", key.Anchor())
	}
	if key.Label() != "Act 2, Scene 3" {
		t.Fatalf("unexpected label %q", key.Label())
	}
}

func TestSceneKeyOrdering(t *testing.T) {
	a := SceneKey{Act: 1, Scene: 10}
	b := SceneKey{Act: 2, Scene: 1}
	if !a.Less(b) || b.Less(a) {
		t.Fatalf("expected %s < %s", a, b)
	}
	if a.Compare(a) != 0 || a.Compare(b) != -1 || b.Compare(a) != 1 {
		t.Fatal("unexpected Compare results")
	}
}

func TestParseSceneKey(t *testing.T) {
	tests := map[string]SceneKey{
		"1.2":    {Act: 1, Scene: 2},
		" 3.10 ": {Act: 3, Scene: 10},
		"IV.ii":  {Act: 4, Scene: 2},
	}
	for input, want := range tests {
		got, err := ParseSceneKey(input)
		if err != nil {
			t.Fatalf("ParseSceneKey(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseSceneKey(%q) = %v, want %v", input, got, want)
		}
	}

	for _, input := range []string{"", "1", "a.b", "1."} {
		if _, err := ParseSceneKey(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestSceneKeyJSONMapKey(t *testing.T) {
	data, err := json.Marshal(map[SceneKey]int{{Act: 1, Scene: 2}: 5})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"1.2":5}` {
		t.Fatalf("unexpected json %s", data)
	}

	var decoded map[SceneKey]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded[SceneKey{Act: 1, Scene: 2}] != 5 {
		t.Fatalf("unexpected decoded map %v", decoded)
	}
}

func TestParseRoman(t *testing.T) {
	tests := map[string]int{
		"I":    1,
		"IV":   4,
		"V":    5,
		"IX":   9,
		"XIV":  14,
		"XL":   40,
		"MCMX": 1910,
	}
	for input, want := range tests {
		got, err := ParseRoman(input)
		if err != nil {
			t.Fatalf("ParseRoman(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseRoman(%q) = %d, want %d", input, got, want)
		}
	}
	for _, input := range []string{"IQ", "x", "iv", "IIII", "IC", "VX", "XXXX", "MMMM"} {
		if _, err := ParseRoman(input); err == nil {
			t.Fatalf("expected error for invalid numeral %q", input)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := map[string]int{"3": 3, " 12 ": 12, "II.": 2, "VI": 6}
	for input, want := range tests {
		got, err := ParseNumber(input)
		if err != nil {
			t.Fatalf("ParseNumber(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseNumber(%q) = %d, want %d", input, got, want)
		}
	}
	for _, input := range []string{"", "x", "-1", "2147483648"} {
		if _, err := ParseNumber(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestPlayScenesFirstAppearance(t *testing.T) {
	p := &Play{Lines: []DialogueLine{
		{Speaker: "A", Act: 2, Scene: 1},
		{Speaker: StageDirection, Act: 1, Scene: 1},
		{Speaker: "B", Act: 2, Scene: 1},
		{Speaker: "A", Act: 1, Scene: 2},
	}}
	scenes := p.Scenes()
	want := []SceneKey{{2, 1}, {1, 1}, {1, 2}}
	if len(scenes) != len(want) {
		t.Fatalf("expected %d scenes, got %d", len(want), len(scenes))
	}
	for i := range want {
		if scenes[i] != want[i] {
			t.Fatalf("scene %d: expected %v, got %v", i, want[i], scenes[i])
		}
	}
	if p.SpeakingLines() != 3 {
		t.Fatalf("expected 3 speaking lines, got %d", p.SpeakingLines())
	}

	var nilPlay *Play
	if nilPlay.Scenes() != nil || nilPlay.SpeakingLines() != 0 {
		t.Fatal("expected nil play to be empty")
	}
}
