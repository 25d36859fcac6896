package markdown

import (
	"context"
	"testing"

	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"
)

const script = `# A Midsummer Night's Dream

Some preface that is not part of the play.

### **ACT I**

### **SCENE I. Athens. The palace of THESEUS.**

*Enter THESEUS, HIPPOLYTA, PHILOSTRATE, and Attendants*

**THESEUS**

Now, fair Hippolyta, our nuptial hour
Draws on apace;

**HIPPOLYTA**

Four days will quickly steep themselves in night;

### **SCENE II. Athens. QUINCE'S house.**

**QUINCE (PETER)**

Is all our company here?

*Exeunt*

### **ACT II**

### **SCENE I.**

**PUCK**

How now, spirit! whither wander you?
`

type staticLoader []byte

func (s staticLoader) GetFileBytes(ctx context.Context, file loader.PlayFile) ([]byte, error) {
	return s, nil
}

func TestParse(t *testing.T) {
	p, err := Parse([]byte(script))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "A Midsummer Night's Dream" {
		t.Fatalf("unexpected title %q", p.Title)
	}

	want := []play.DialogueLine{
		{Speaker: play.StageDirection, Act: 1, Scene: 1, Text: "Enter THESEUS, HIPPOLYTA, PHILOSTRATE, and Attendants", Row: 1},
		{Speaker: "THESEUS", Act: 1, Scene: 1, Text: "Now, fair Hippolyta, our nuptial hour", Row: 2},
		{Speaker: "THESEUS", Act: 1, Scene: 1, Text: "Draws on apace;", Row: 3},
		{Speaker: "HIPPOLYTA", Act: 1, Scene: 1, Text: "Four days will quickly steep themselves in night;", Row: 4},
		{Speaker: "QUINCE (PETER)", Act: 1, Scene: 2, Text: "Is all our company here?", Row: 5},
		{Speaker: play.StageDirection, Act: 1, Scene: 2, Text: "Exeunt", Row: 6},
		{Speaker: "PUCK", Act: 2, Scene: 1, Text: "How now, spirit! whither wander you?", Row: 7},
	}
	if len(p.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(p.Lines), p.Lines)
	}
	for i := range want {
		if p.Lines[i] != want[i] {
			t.Fatalf("line %d: expected %+v, got %+v", i, want[i], p.Lines[i])
		}
	}
}

func TestParseWithoutHeadings(t *testing.T) {
	p, err := Parse([]byte("**HAMLET**\n\nTo be, or not to be\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Lines) != 0 {
		t.Fatalf("expected lines outside a scene to be ignored, got %d", len(p.Lines))
	}
	if p.Title != "A Play" {
		t.Fatalf("expected default title, got %q", p.Title)
	}
}

func TestParseSpeakerCarriesAcrossHeadings(t *testing.T) {
	content := "### **ACT I**\n\n### **SCENE I.**\n\n**PUCK**\n\nOver hill, over dale,\n\n" +
		"### **SCENE II.**\n\nThorough bush, thorough brier,\n"
	p, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(p.Lines), p.Lines)
	}
	want := play.DialogueLine{Speaker: "PUCK", Act: 1, Scene: 2, Text: "Thorough bush, thorough brier,", Row: 2}
	if p.Lines[1] != want {
		t.Fatalf("expected %+v, got %+v", want, p.Lines[1])
	}
}

func TestMarkdownPlayLoader(t *testing.T) {
	base := staticLoader(script)
	l := NewMarkdownPlayLoader(base)
	file := loader.NewPlayFile("dream", "dream.md", "", base)

	p, err := l.LoadPlay(context.Background(), file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "dream" {
		t.Fatalf("expected id dream, got %q", p.ID)
	}
	again, _ := l.LoadPlay(context.Background(), file)
	if again != p {
		t.Fatal("expected cached play")
	}
}
