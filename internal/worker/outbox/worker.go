package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/webstore-labs/checkout/internal/dal/interfaces/ioutboxrepo"
	"github.com/webstore-labs/checkout/internal/dal/rabbitmq"
	outboxmodel "github.com/webstore-labs/checkout/internal/service/models/outbox"
)

// Worker publishes staged domain events from the outbox table to RabbitMQ.
type Worker struct {
	outboxRepo   ioutboxrepo.IOutboxRepository
	rabbitClient *rabbitmq.Client
	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewWorker creates a new outbox worker and declares the event queues.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	rabbitClient *rabbitmq.Client,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	for _, queue := range []string{
		outboxmodel.EventOrderCreated,
		outboxmodel.EventPaymentSucceeded,
		outboxmodel.EventPaymentFailed,
	} {
		if _, err := rabbitClient.DeclareQueue(rabbitmq.DeclareQueueConfig{
			Name:    queue,
			Durable: true,
		}); err != nil {
			panic(err)
		}
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		rabbitClient: rabbitClient,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Start begins publishing staged events.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processMessages retrieves due messages and publishes them with bounded
// concurrency. Publish failures only bump the retry counter; the message
// stays in the table until it succeeds or exhausts its retries.
func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending outbox messages", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	for _, msg := range messages {
		g.Go(func() error {
			if err := w.rabbitClient.Publish(msg.QueueName, msg.ContentType, msg.Payload); err != nil {
				slog.Error("Failed to publish outbox message",
					"message_id", msg.ID,
					"queue", msg.QueueName,
					"error", err,
				)

				if markErr := w.outboxRepo.MarkFailed(gctx, msg.ID, err.Error()); markErr != nil {
					slog.Error("Failed to mark outbox message failed", "message_id", msg.ID, "error", markErr)
				}

				return nil
			}

			if err := w.outboxRepo.MarkProcessed(gctx, msg.ID); err != nil {
				slog.Error("Failed to mark outbox message processed", "message_id", msg.ID, "error", err)
			}

			return nil
		})
	}

	_ = g.Wait()
}
