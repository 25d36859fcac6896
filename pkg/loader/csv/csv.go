package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"

	"golang.org/x/sync/singleflight"
)

// DefaultTitle is used when no row names the play.
const DefaultTitle = "A Play"

// CSVPlayLoader loads spreadsheet exports of a script.
type CSVPlayLoader struct {
	loader loader.FileLoader

	cache   map[string]*play.Play
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewCSVPlayLoader creates a new CSVPlayLoader with the given base loader.
func NewCSVPlayLoader(loader loader.FileLoader) *CSVPlayLoader {
	return &CSVPlayLoader{
		loader: loader,
		cache:  make(map[string]*play.Play),
	}
}

// LoadPlay retrieves and parses the CSV file content.
func (l *CSVPlayLoader) LoadPlay(ctx context.Context, file loader.PlayFile) (*play.Play, error) {
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

		parsed, err := ParsePlay(content)
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

type columns map[string]int

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (c columns) has(name string) bool {
	_, ok := c[name]
	return ok
}

// ParsePlay reads a script with a header row. The act, scene and player
// columns are required; text, dataline, play and author are optional. When
// a dataline column exists only rows with a non-empty dataline are kept.
// Title and author come from the first row that sets them. Act and scene
// may be integers or roman numerals.
func ParsePlay(content []byte) (*play.Play, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("CSV file is empty or contains no valid data")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(columns, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"act", "scene", "player"} {
		if !cols.has(required) {
			return nil, fmt.Errorf("CSV header is missing the %q column", required)
		}
	}

	p := &play.Play{}
	filterDataline := cols.has("dataline")
	skipped := 0
	row := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		row++

		if p.Title == "" {
			p.Title = cols.get(record, "play")
		}
		if p.Author == "" {
			p.Author = cols.get(record, "author")
		}

		if filterDataline && cols.get(record, "dataline") == "" {
			continue
		}

		actValue, sceneValue := cols.get(record, "act"), cols.get(record, "scene")
		if actValue == "" || sceneValue == "" {
			skipped++
			continue
		}
		act, err := play.ParseNumber(actValue)
		if err != nil {
			skipped++
			continue
		}
		scene, err := play.ParseNumber(sceneValue)
		if err != nil {
			skipped++
			continue
		}

		p.Lines = append(p.Lines, play.DialogueLine{
			Speaker: cols.get(record, "player"),
			Act:     act,
			Scene:   scene,
			Text:    cols.get(record, "text"),
			Row:     row,
		})
	}

	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if skipped > 0 {
		logger.Debug("[Loader] Skipped unusable CSV rows", "skipped", skipped, "kept", len(p.Lines))
	}

	return p, nil
}

// WritePlay writes the lines of p as act,scene,player,text rows. The output
// is accepted by ParsePlay.
func WritePlay(w io.Writer, p *play.Play) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"act", "scene", "player", "text"}); err != nil {
		return err
	}
	for _, line := range p.Lines {
		record := []string{
			strconv.Itoa(line.Act),
			strconv.Itoa(line.Scene),
			line.Speaker,
			line.Text,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
