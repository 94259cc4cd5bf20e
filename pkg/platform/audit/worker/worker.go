// Package worker drains the audit outbox into Kafka. It is the only writer
// side of the outbox pattern: domain transactions insert rows, this worker
// publishes them and marks them done, so Kafka sees every committed event
// exactly once per outbox row.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "taxsync/pkg/platform/audit"
)

// OutboxSource is the slice of the Postgres audit store the worker needs.
type OutboxSource interface {
	FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Worker polls the outbox and publishes pending entries to Kafka.
type Worker struct {
	source       OutboxSource
	client       *kgo.Client
	topic        string
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
}

// Option configures a Worker.
type Option func(*Worker)

// WithPollInterval overrides the default 1s outbox poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) { w.pollInterval = d }
}

// WithBatchSize overrides the default 100-row fetch batch.
func WithBatchSize(n int) Option {
	return func(w *Worker) { w.batchSize = n }
}

// New constructs a Worker and its Kafka client.
func New(source OutboxSource, brokers []string, topic string, logger *slog.Logger, opts ...Option) (*Worker, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	w := &Worker{
		source:       source,
		client:       client,
		topic:        topic,
		logger:       logger,
		pollInterval: time.Second,
		batchSize:    100,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// EnsureTopic creates the audit topic if it does not already exist.
func (w *Worker) EnsureTopic(ctx context.Context) error {
	adm := kadm.NewClient(w.client)
	resps, err := adm.CreateTopics(ctx, 3, -1, nil, w.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Run polls the outbox until the context is canceled. Publish failures are
// logged and retried on the next tick; rows are only marked published after
// Kafka acknowledges them.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.client.Close()
			return ctx.Err()
		case <-ticker.C:
			if err := w.publishBatch(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox publish batch failed", "error", err)
			}
		}
	}
}

func (w *Worker) publishBatch(ctx context.Context) error {
	entries, err := w.source.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("fetch unpublished: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		record := &kgo.Record{
			Topic: w.topic,
			Key:   []byte(entry.Key),
			Value: entry.Payload,
		}
		if err := w.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			// Stop at the first failure to preserve per-key ordering;
			// everything from here on retries next tick.
			w.logger.WarnContext(ctx, "kafka produce failed",
				"entry_id", entry.ID,
				"error", err,
			)
			break
		}
		published = append(published, entry.ID)
	}

	if len(published) == 0 {
		return nil
	}
	if err := w.source.MarkPublished(ctx, published); err != nil {
		// Rows stay unpublished and will be re-sent; consumers must
		// deduplicate by event ID.
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}
