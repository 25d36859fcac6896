package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/OFFIS-RIT/dramaturgy/internal/db"
	"github.com/OFFIS-RIT/dramaturgy/pkg/leaselock"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"
	"github.com/OFFIS-RIT/dramaturgy/pkg/metadata"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"

	"github.com/rabbitmq/amqp091-go"
)

type memoryFiles map[string]string

func (m memoryFiles) GetFileBytes(ctx context.Context, file loader.PlayFile) ([]byte, error) {
	content, ok := m[file.FilePath]
	if !ok {
		return nil, fmt.Errorf("no such file %s", file.FilePath)
	}
	return []byte(content), nil
}

type memoryPlays struct {
	mu       sync.Mutex
	statuses map[string][]string
	plays    map[string]*play.Play
	feeds    map[string]*metadata.Feed
	causes   map[string]error

	replaceFailures int
	replaceCalls    int
}

func newMemoryPlays() *memoryPlays {
	return &memoryPlays{
		statuses: map[string][]string{},
		plays:    map[string]*play.Play{},
		feeds:    map[string]*metadata.Feed{},
		causes:   map[string]error{},
	}
}

func (m *memoryPlays) SetStatus(ctx context.Context, id, status string, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[id] = append(m.statuses[id], status)
	m.causes[id] = cause
	return nil
}

func (m *memoryPlays) ReplaceContent(ctx context.Context, id string, p *play.Play, feed *metadata.Feed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	if m.replaceFailures > 0 {
		m.replaceFailures--
		return errors.New("serialization failure")
	}
	m.plays[id] = p
	m.feeds[id] = feed
	m.statuses[id] = append(m.statuses[id], db.PlayStatusReady)
	return nil
}

func (m *memoryPlays) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.plays[id]
	delete(m.plays, id)
	return ok, nil
}

func (m *memoryPlays) last(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.statuses[id]
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

type inlineLocker struct {
	keys []string
	busy bool
}

func (l *inlineLocker) WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error {
	l.keys = append(l.keys, key)
	if l.busy {
		return leaselock.ErrBusy
	}
	return fn(ctx)
}

type deletedFolders []string

func (d *deletedFolders) DeleteFolder(ctx context.Context, prefix string) error {
	*d = append(*d, prefix)
	return nil
}

const dreamCSV = `act,scene,player,text
I,I,THESEUS,"Now, fair Hippolyta"
I,I,HIPPOLYTA,Four days
`

const dreamMarkdown = `### **ACT I**
### **SCENE I.**
**THESEUS**
Now, fair Hippolyta
`

func newTestWorker(files memoryFiles) (*Worker, *memoryPlays, *inlineLocker) {
	plays := newMemoryPlays()
	locks := &inlineLocker{}
	return &Worker{
		Plays:   plays,
		Locks:   locks,
		Loaders: map[string]loader.FileLoader{SourceS3: files},
	}, plays, locks
}

func TestProcessImportCSVWithMetadata(t *testing.T) {
	w, plays, locks := newTestWorker(memoryFiles{
		"plays/p1/a.csv":    dreamCSV,
		"plays/p1/meta.csv": "character,description\nTheseus,Duke of Athens\n",
	})

	err := w.ProcessImportMessage(context.Background(), `{"play_id":"p1","source":"s3","location":"plays/p1/a.csv","metadata_location":"plays/p1/meta.csv"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := plays.plays["p1"]
	if p == nil || len(p.Lines) != 2 {
		t.Fatalf("expected two imported lines, got %+v", p)
	}
	if entry, ok := plays.feeds["p1"].Lookup("THESEUS"); !ok || entry.Description != "Duke of Athens" {
		t.Fatalf("expected metadata for THESEUS, got %+v %v", entry, ok)
	}
	if got := plays.statuses["p1"]; len(got) != 2 || got[0] != db.PlayStatusImporting || got[1] != db.PlayStatusReady {
		t.Fatalf("unexpected status sequence %v", got)
	}
	if len(locks.keys) != 1 || locks.keys[0] != leaselock.PlayKey("p1") {
		t.Fatalf("expected the play lock to be taken, got %v", locks.keys)
	}
}

func TestProcessImportMarkdown(t *testing.T) {
	w, plays, _ := newTestWorker(memoryFiles{"plays/p2/a.md": dreamMarkdown})

	if err := w.ProcessImportMessage(context.Background(), `{"play_id":"p2","location":"plays/p2/a.md"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := plays.plays["p2"]
	if p == nil || len(p.Lines) != 1 || p.Lines[0].Speaker != "THESEUS" {
		t.Fatalf("unexpected play %+v", p)
	}
	if plays.feeds["p2"].Len() != 0 {
		t.Fatal("expected an empty metadata feed")
	}
}

func TestProcessImportRetriesReplace(t *testing.T) {
	w, plays, _ := newTestWorker(memoryFiles{"plays/p5/a.csv": dreamCSV})
	plays.replaceFailures = replaceAttempts - 1

	if err := w.ProcessImportMessage(context.Background(), `{"play_id":"p5","location":"plays/p5/a.csv"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plays.replaceCalls != replaceAttempts {
		t.Fatalf("expected %d replace calls, got %d", replaceAttempts, plays.replaceCalls)
	}
	if plays.last("p5") != db.PlayStatusReady {
		t.Fatalf("expected ready status, got %q", plays.last("p5"))
	}
}

func TestProcessImportReplaceExhausted(t *testing.T) {
	w, plays, _ := newTestWorker(memoryFiles{"plays/p6/a.csv": dreamCSV})
	plays.replaceFailures = replaceAttempts

	if err := w.ProcessImportMessage(context.Background(), `{"play_id":"p6","location":"plays/p6/a.csv"}`); err == nil {
		t.Fatal("expected an error once every replace attempt failed")
	}
	if plays.replaceCalls != replaceAttempts {
		t.Fatalf("expected %d replace calls, got %d", replaceAttempts, plays.replaceCalls)
	}
	if plays.last("p6") != db.PlayStatusFailed {
		t.Fatalf("expected failed status, got %q", plays.last("p6"))
	}
}

func TestProcessImportFailures(t *testing.T) {
	cases := []struct {
		name string
		msg  string
		want error
	}{
		{"unknown source", `{"play_id":"p3","source":"ftp","location":"a.csv"}`, loader.ErrUnsupported},
		{"unknown format", `{"play_id":"p3","location":"a.pdf"}`, loader.ErrUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, plays, _ := newTestWorker(memoryFiles{"a.pdf": "%PDF"})
			err := w.ProcessImportMessage(context.Background(), tc.msg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if plays.last("p3") != db.PlayStatusFailed {
				t.Fatalf("expected failed status, got %q", plays.last("p3"))
			}
		})
	}
}

func TestProcessImportMissingFile(t *testing.T) {
	w, plays, _ := newTestWorker(memoryFiles{})
	if err := w.ProcessImportMessage(context.Background(), `{"play_id":"p4","location":"missing.csv"}`); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if plays.last("p4") != db.PlayStatusFailed || plays.causes["p4"] == nil {
		t.Fatalf("expected failed status with cause, got %q", plays.last("p4"))
	}
}

func TestProcessImportInvalidMessage(t *testing.T) {
	w, _, _ := newTestWorker(memoryFiles{})
	for _, msg := range []string{"not json", `{"play_id":""}`} {
		if err := w.ProcessImportMessage(context.Background(), msg); !errors.Is(err, errInvalidMessage) {
			t.Fatalf("expected invalid message error for %q, got %v", msg, err)
		}
	}
}

func TestProcessImportBusyKeepsStatus(t *testing.T) {
	w, plays, locks := newTestWorker(memoryFiles{"a.csv": dreamCSV})
	locks.busy = true
	err := w.ProcessImportMessage(context.Background(), `{"play_id":"p5","location":"a.csv"}`)
	if !errors.Is(err, leaselock.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if plays.last("p5") != "" {
		t.Fatalf("expected no status change while busy, got %q", plays.last("p5"))
	}
}

func TestProcessDelete(t *testing.T) {
	w, plays, _ := newTestWorker(memoryFiles{})
	folders := &deletedFolders{}
	w.Files = folders
	plays.plays["p6"] = &play.Play{ID: "p6"}

	if err := w.Process(context.Background(), DeleteQueue, `{"play_id":"p6"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*folders) != 1 || (*folders)[0] != "plays/p6" {
		t.Fatalf("expected play folder to be deleted, got %v", *folders)
	}
	if _, ok := plays.plays["p6"]; ok {
		t.Fatal("expected play row to be deleted")
	}
	if err := w.Process(context.Background(), "other_queue", "{}"); err == nil {
		t.Fatal("expected error for unknown queue")
	}
}

type recordingChannel struct {
	declared  []string
	published map[string][]amqp091.Publishing
	fail      bool
}

func (c *recordingChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error) {
	c.declared = append(c.declared, name)
	return amqp091.Queue{Name: name}, nil
}

func (c *recordingChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if c.fail {
		return errors.New("channel closed")
	}
	if c.published == nil {
		c.published = map[string][]amqp091.Publishing{}
	}
	c.published[key] = append(c.published[key], msg)
	return nil
}

type ackRecorder struct {
	acked, nacked bool
}

func (a *ackRecorder) Ack(multiple bool) error {
	a.acked = true
	return nil
}

func (a *ackRecorder) Nack(multiple, requeue bool) error {
	a.nacked = true
	return nil
}

func TestSetupQueues(t *testing.T) {
	ch := &recordingChannel{}
	if err := SetupQueues(ch, Queues); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"import_queue", "import_queue_dlq", "import_queue_retry",
		"delete_queue", "delete_queue_dlq", "delete_queue_retry",
	}
	if fmt.Sprint(ch.declared) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, ch.declared)
	}
}

func TestHandleProcessingErrorRetries(t *testing.T) {
	ch := &recordingChannel{}
	ack := &ackRecorder{}
	handleProcessingError(ch, ack, amqp091.Table{"x-retries": int32(2)}, []byte("{}"), ImportQueue)

	retried := ch.published["import_queue_retry"]
	if len(retried) != 1 || RetryCount(retried[0].Headers) != 3 {
		t.Fatalf("expected one retry with x-retries=3, got %+v", retried)
	}
	if !ack.acked {
		t.Fatal("expected original message to be acked")
	}
}

func TestHandleProcessingErrorDeadLetter(t *testing.T) {
	ch := &recordingChannel{}
	ack := &ackRecorder{}
	handleProcessingError(ch, ack, amqp091.Table{"x-retries": int32(MaxRetries)}, []byte("{}"), ImportQueue)
	if len(ch.published["import_queue_dlq"]) != 1 {
		t.Fatalf("expected message in DLQ, got %+v", ch.published)
	}

	failing := &recordingChannel{fail: true}
	ack = &ackRecorder{}
	handleProcessingError(failing, ack, nil, []byte("{}"), ImportQueue)
	if !ack.nacked || ack.acked {
		t.Fatal("expected nack when republishing fails")
	}
}

func TestPublishImport(t *testing.T) {
	ch := &recordingChannel{}
	if err := PublishImport(ch, ImportPlayMsg{PlayID: "p1", Source: SourceWeb, Location: "https://example.org/a.csv"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msgs := ch.published[ImportQueue]
	if len(msgs) != 1 || msgs[0].DeliveryMode != amqp091.Persistent {
		t.Fatalf("expected one persistent message, got %+v", msgs)
	}
	decoded, err := decodeImport(string(msgs[0].Body))
	if err != nil || decoded.Location != "https://example.org/a.csv" {
		t.Fatalf("unexpected decoded message %+v %v", decoded, err)
	}
}
