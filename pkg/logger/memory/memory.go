// Package memory provides a logger backend that records entries in memory.
// Tests install it to assert on diagnostics that never reach the caller.
package memory

import (
	"fmt"
	"strings"
	"sync"
)

type Entry struct {
	Level   string
	Message string
	KeyVals []any
}

// Value returns the value logged for key, if any.
func (e Entry) Value(key string) (any, bool) {
	for i := 0; i+1 < len(e.KeyVals); i += 2 {
		if k, ok := e.KeyVals[i].(string); ok && k == key {
			return e.KeyVals[i+1], true
		}
	}
	return nil, false
}

type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(level, message string, keyvals []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kv := make([]any, len(keyvals))
	copy(kv, keyvals)
	r.entries = append(r.entries, Entry{Level: level, Message: message, KeyVals: kv})
}

func (r *Recorder) Log(message string, keyvals ...any)   { r.add("log", message, keyvals) }
func (r *Recorder) Debug(message string, keyvals ...any) { r.add("debug", message, keyvals) }
func (r *Recorder) Info(message string, keyvals ...any)  { r.add("info", message, keyvals) }
func (r *Recorder) Warn(message string, keyvals ...any)  { r.add("warn", message, keyvals) }
func (r *Recorder) Error(message string, keyvals ...any) { r.add("error", message, keyvals) }

// Fatal records the entry and panics instead of exiting so tests can recover.
func (r *Recorder) Fatal(message string, keyvals ...any) {
	r.add("fatal", message, keyvals)
	panic(fmt.Sprintf("fatal: %s", message))
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Contains reports whether an entry at level has a message containing substr.
func (r *Recorder) Contains(level, substr string) bool {
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
