// Package metadata attaches optional descriptions, images and notes to
// characters.
package metadata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Entry is the metadata of one character. Every field except Character may
// be empty.
type Entry struct {
	Character   string `json:"character"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Empty reports whether the entry carries nothing to show.
func (e Entry) Empty() bool {
	return strings.TrimSpace(e.Description) == "" &&
		strings.TrimSpace(e.Image) == "" &&
		strings.TrimSpace(e.Notes) == ""
}

// Feed is an ordered list of entries. A nil Feed is valid and empty.
type Feed struct {
	entries []Entry
}

// NewFeed builds a feed. Entries without a character name are dropped.
func NewFeed(entries ...Entry) *Feed {
	f := &Feed{}
	for _, e := range entries {
		if strings.TrimSpace(e.Character) == "" {
			continue
		}
		f.entries = append(f.entries, e)
	}
	return f
}

// Len returns the number of entries.
func (f *Feed) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Entries returns a copy of the entries in feed order.
func (f *Feed) Entries() []Entry {
	if f == nil {
		return nil
	}
	return append([]Entry(nil), f.entries...)
}

// Lookup finds the entry of a character. Names are compared trimmed and
// case-insensitive. An exact match wins; otherwise the first entry where
// either name is a prefix of the other is returned, so "Duke" finds
// "Duke of Vienna, later Friar".
func (f *Feed) Lookup(name string) (Entry, bool) {
	if f == nil {
		return Entry{}, false
	}
	want := normalize(name)
	if want == "" {
		return Entry{}, false
	}

	for _, e := range f.entries {
		if normalize(e.Character) == want {
			return e, true
		}
	}
	for _, e := range f.entries {
		got := normalize(e.Character)
		if strings.HasPrefix(got, want) || strings.HasPrefix(want, got) {
			return e, true
		}
	}
	return Entry{}, false
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseCSV reads a feed with a header row. The character column is
// required; description, image and notes are optional. Column names are
// case-insensitive.
func ParseCSV(content []byte) (*Feed, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return NewFeed(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[normalize(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	nameCol, ok := columns["character"]
	if !ok {
		return nil, fmt.Errorf("metadata csv has no character column")
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata row: %w", err)
		}
		if nameCol >= len(record) {
			continue
		}
		entries = append(entries, Entry{
			Character:   strings.TrimSpace(record[nameCol]),
			Description: field(record, "description"),
			Image:       field(record, "image"),
			Notes:       field(record, "notes"),
		})
	}

	return NewFeed(entries...), nil
}
