package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/dramaturgy/internal/storage"
	"github.com/OFFIS-RIT/dramaturgy/pkg/leaselock"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
)

// ProcessDeleteMessage removes the stored files and rows of a play. It waits
// for a running import of the same play to finish first.
func (w *Worker) ProcessDeleteMessage(ctx context.Context, msg string) error {
	data := new(DeletePlayMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("%w: %w", errInvalidMessage, err)
	}
	if data.PlayID == "" {
		return fmt.Errorf("%w: play_id is required", errInvalidMessage)
	}

	opts := leaselock.ImportOptions
	opts.Wait = true
	opts.WaitInterval = 2 * time.Second

	return w.Locks.WithLease(ctx, leaselock.PlayKey(data.PlayID), opts, func(ctx context.Context) error {
		if w.Files != nil {
			if err := w.Files.DeleteFolder(ctx, storage.PlayPrefix(data.PlayID)); err != nil {
				return err
			}
		}
		existed, err := w.Plays.Delete(ctx, data.PlayID)
		if err != nil {
			return err
		}
		logger.Info("[Queue] Play deleted", "play_id", data.PlayID, "existed", existed)
		return nil
	})
}

// Process dispatches a message by queue name.
func (w *Worker) Process(ctx context.Context, queueName, msg string) error {
	switch queueName {
	case ImportQueue:
		return w.ProcessImportMessage(ctx, msg)
	case DeleteQueue:
		return w.ProcessDeleteMessage(ctx, msg)
	default:
		return fmt.Errorf("unknown queue %q", queueName)
	}
}
