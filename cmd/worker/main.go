package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/dramaturgy/internal/db"
	"github.com/OFFIS-RIT/dramaturgy/internal/queue"
	"github.com/OFFIS-RIT/dramaturgy/internal/storage"
	"github.com/OFFIS-RIT/dramaturgy/internal/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/leaselock"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"
	s3loader "github.com/OFFIS-RIT/dramaturgy/pkg/loader/s3"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader/web"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger/console"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug,
		Prefix: "worker",
	})
	logger.Init(consoleLogger)

	// Init s3 client
	client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Could not create s3 client", "err", err)
	}
	bucket := util.GetEnv("AWS_BUCKET")

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	catalog := db.NewCatalog(pgConn)

	worker := &queue.Worker{
		Plays: catalog,
		Locks: leaselock.New(pgConn),
		Files: &storage.Store{Client: client, Bucket: bucket},
		Loaders: map[string]loader.FileLoader{
			queue.SourceS3:  s3loader.NewS3FileLoaderWithClient(bucket, client),
			queue.SourceWeb: web.NewWebFileLoader(),
		},
	}

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}

	go recoverStaleImports(ctx, ch, catalog.Queries())

	logger.Info("Listening for messages")

	// Create a single consumer channel with prefetch=1
	// This ensures only ONE message is delivered at a time across all queues
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}

	messageChan := make(chan queuedMessage)

	for _, queueName := range queue.Queues {
		go func(qName string) {
			consumerTag := fmt.Sprintf("%s_consumer", qName)
			msgs, err := consumerCh.Consume(
				qName,
				consumerTag,
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,   // args
			)
			if err != nil {
				logger.Fatal("Failed to start consuming", "queue", qName, "err", err)
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("Stopping consumer", "queue", qName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed", "queue", qName)
						return
					}
					messageChan <- queuedMessage{msg: msg, queueName: qName}
				}
			}
		}(queueName)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case qm := <-messageChan:
				startTime := time.Now()
				logger.Info("Received message", "queue", qm.queueName)

				processingErr := worker.Process(ctx, qm.queueName, string(qm.msg.Body))

				// If there was an error send to retry or dead-letter, otherwise ack the message
				if processingErr != nil {
					logger.Error("Error processing message", "queue", qm.queueName, "err", processingErr)
					queue.HandleProcessingError(consumerCh, qm.msg, qm.queueName)
				} else {
					if err := qm.msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", qm.queueName)
				}

				logger.Info("Processing time", "duration", time.Since(startTime).Round(time.Millisecond).String())
				logger.Info("Waiting for next message")
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func recoverStaleImports(ctx context.Context, ch queue.Channel, q *db.Queries) {
	olderThan := util.GetEnvDuration("STALE_IMPORT_AFTER", 10*time.Minute)
	if olderThan <= 0 {
		return
	}
	ticker := time.NewTicker(olderThan / 2)
	defer ticker.Stop()

	for {
		if err := queue.RecoverStaleImports(ctx, ch, q, olderThan); err != nil {
			logger.Error("Failed to recover stale imports", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
