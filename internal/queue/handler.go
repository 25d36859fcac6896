package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/dramaturgy/internal/db"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// MaxRetries is the number of retries before a message goes to its dead
// letter queue.
const MaxRetries = 10

// Delivery is the part of an AMQP delivery used for acknowledgement.
type Delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// HandleProcessingError sends a failed message to the retry queue, or to
// the dead letter queue once it has been retried MaxRetries times.
func HandleProcessingError(ch Channel, msg amqp091.Delivery, queueName string) {
	handleProcessingError(ch, &msg, msg.Headers, msg.Body, queueName)
}

func handleProcessingError(ch Channel, ack Delivery, headers amqp091.Table, body []byte, queueName string) {
	retries := RetryCount(headers)

	target := queueName + "_retry"
	if retries >= MaxRetries {
		target = queueName + "_dlq"
		logger.Warn("[Queue] Sending message to DLQ", "dlq", target, "retries", retries)
	}

	next := amqp091.Table{}
	for k, v := range headers {
		next[k] = v
	}
	next["x-retries"] = int32(retries + 1)

	pubErr := ch.Publish(
		"",
		target,
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Headers:     next,
		},
	)
	if pubErr != nil {
		logger.Error("[Queue] Failed to republish message", "queue", target, "err", pubErr)
		_ = ack.Nack(false, true)
		return
	}
	_ = ack.Ack(false)
}

// RetryCount reads the x-retries header.
func RetryCount(headers amqp091.Table) int {
	switch v := headers["x-retries"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// RecoverStaleImports requeues plays whose import has not finished within
// olderThan, e.g. because a worker died while holding it.
func RecoverStaleImports(ctx context.Context, ch Channel, q *db.Queries, olderThan time.Duration) error {
	stale, err := q.GetStaleImports(ctx, olderThan.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to get stale imports: %w", err)
	}

	if len(stale) == 0 {
		logger.Debug("[Queue] No stale imports found")
		return nil
	}

	logger.Info("[Queue] Found stale imports", "count", len(stale))

	for _, p := range stale {
		body, err := json.Marshal(ImportPlayMsg{
			PlayID:           p.ID,
			Source:           p.Source,
			Location:         p.Location,
			Format:           p.Format,
			MetadataLocation: p.MetadataLocation,
		})
		if err != nil {
			logger.Error("[Queue] Failed to marshal queue message", "play_id", p.ID, "err", err)
			continue
		}
		if err := PublishFIFO(ch, ImportQueue, body); err != nil {
			logger.Error("[Queue] Failed to republish import", "play_id", p.ID, "err", err)
			continue
		}
		logger.Info("[Queue] Recovered stale import", "play_id", p.ID)
	}

	return nil
}
