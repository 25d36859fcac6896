package markdown

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader/csv"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"

	"golang.org/x/sync/singleflight"
)

var (
	actPattern       = regexp.MustCompile(`###\s*\*\*ACT\s+([IVXLC]+)\*\*`)
	scenePattern     = regexp.MustCompile(`###\s*\*\*SCENE\s+([IVXLC]+)\.`)
	speakerPattern   = regexp.MustCompile(`^\*\*([A-Z][A-Z\s\(\)]+)\*\*\s*$`)
	directionPattern = regexp.MustCompile(`^\*([^*].+?)\*\s*$`)
	titlePattern     = regexp.MustCompile(`^#\s+(.+)$`)
)

// MarkdownPlayLoader loads scripts exported from a word processor as
// markdown.
type MarkdownPlayLoader struct {
	loader loader.FileLoader

	cache   map[string]*play.Play
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewMarkdownPlayLoader creates a new MarkdownPlayLoader with the given base
// loader.
func NewMarkdownPlayLoader(loader loader.FileLoader) *MarkdownPlayLoader {
	return &MarkdownPlayLoader{
		loader: loader,
		cache:  make(map[string]*play.Play),
	}
}

// LoadPlay retrieves and parses the markdown file content.
func (l *MarkdownPlayLoader) LoadPlay(ctx context.Context, file loader.PlayFile) (*play.Play, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		content, err := l.loader.GetFileBytes(ctx, file)
		if err != nil {
			return nil, err
		}

		parsed, err := Parse(content)
		if err != nil {
			return nil, err
		}
		parsed.ID = file.ID

		l.cacheMu.Lock()
		l.cache[key] = parsed
		l.cacheMu.Unlock()

		return parsed, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*play.Play), nil
}

// Parse converts a markdown script into lines.
//
//	### **ACT I**          starts an act
//	### **SCENE II.**      starts a scene
//	**LADY MACBETH**       sets the current speaker
//	*Enter a Messenger*    is a stage direction
//
// Any other plain line after a speaker is dialogue. Lines before the first
// act and scene heading are ignored. A level one heading names the play.
// The current speaker carries over act and scene headings until the next
// speaker name.
func Parse(content []byte) (*play.Play, error) {
	p := &play.Play{}
	var act, scene int
	var speaker string

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	row := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := actPattern.FindStringSubmatch(line); m != nil {
			n, err := play.ParseRoman(m[1])
			if err != nil {
				return nil, fmt.Errorf("invalid act heading %q: %w", line, err)
			}
			act, scene = n, 0
			continue
		}
		if m := scenePattern.FindStringSubmatch(line); m != nil {
			n, err := play.ParseRoman(m[1])
			if err != nil {
				return nil, fmt.Errorf("invalid scene heading %q: %w", line, err)
			}
			scene = n
			continue
		}
		if p.Title == "" {
			if m := titlePattern.FindStringSubmatch(line); m != nil {
				p.Title = strings.Trim(strings.TrimSpace(m[1]), "*")
				continue
			}
		}

		if m := directionPattern.FindStringSubmatch(line); m != nil {
			if act > 0 && scene > 0 {
				row++
				p.Lines = append(p.Lines, play.DialogueLine{
					Speaker: play.StageDirection,
					Act:     act,
					Scene:   scene,
					Text:    m[1],
					Row:     row,
				})
			}
			continue
		}
		if m := speakerPattern.FindStringSubmatch(line); m != nil {
			speaker = strings.TrimSpace(m[1])
			continue
		}

		if speaker == "" || act == 0 || scene == 0 {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "*") {
			continue
		}
		row++
		p.Lines = append(p.Lines, play.DialogueLine{
			Speaker: speaker,
			Act:     act,
			Scene:   scene,
			Text:    line,
			Row:     row,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read markdown: %w", err)
	}

	if p.Title == "" {
		p.Title = csv.DefaultTitle
	}
	return p, nil
}
