package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	"github.com/emailam/Petzania-sub000/pkg/outbox/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OutboxRepository interface {
	SaveOutboxEvent(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error
	SaveFallback(ctx context.Context, event *domain.OutboxEvent) error
	GetUnprocessedEvents(ctx context.Context, tx pgx.Tx, batchSize int) ([]*domain.OutboxEvent, error)
	MarkEventProcessed(ctx context.Context, tx pgx.Tx, id int64) error
	MarkEventFailed(ctx context.Context, tx pgx.Tx, id int64, errMsg string) error
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type KafkaProducer interface {
	ProduceMessage(ctx context.Context, topic, key string, value []byte) error
}

// OutboxRelay drains unprocessed outbox rows to the broker on a fixed
// interval and purges delivered rows past the retention window. Several
// relay instances can run at once: the batch query takes SKIP LOCKED row
// locks and consumers dedupe on event_id, so duplicate runs are harmless.
type OutboxRelay struct {
	pool            *pgxpool.Pool
	repo            OutboxRepository
	kafkaProducer   KafkaProducer
	logger          *zap.Logger
	batchSize       int
	interval        time.Duration
	cleanupInterval time.Duration
	retention       time.Duration
	tracer          trace.Tracer
}

type RelayConfig struct {
	BatchSize       int
	Interval        time.Duration
	CleanupInterval time.Duration
	Retention       time.Duration
}

func NewOutboxRelay(
	pool *pgxpool.Pool,
	repo OutboxRepository,
	producer KafkaProducer,
	logger *zap.Logger,
	cfg RelayConfig,
) *OutboxRelay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 24 * time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}

	return &OutboxRelay{
		pool:            pool,
		repo:            repo,
		kafkaProducer:   producer,
		logger:          logger,
		batchSize:       cfg.BatchSize,
		interval:        cfg.Interval,
		cleanupInterval: cfg.CleanupInterval,
		retention:       cfg.Retention,
		tracer:          otel.Tracer("outbox-relay"),
	}
}

func (p *OutboxRelay) Start(ctx context.Context) {
	mylogger.Info(
		ctx,
		p.logger,
		"Starting outbox relay",
		zap.Duration("interval", p.interval),
		zap.Int("batch_size", p.batchSize),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(p.cleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			mylogger.Info(
				ctx,
				p.logger,
				"Outbox relay stopping",
			)

			return
		case <-ticker.C:
			if err := p.ProcessBatch(ctx); err != nil {
				mylogger.Error(
					ctx,
					p.logger,
					"Error processing outbox batch",
					zap.Error(err),
				)
			}
		case <-cleanupTicker.C:
			if _, err := p.Cleanup(ctx); err != nil {
				mylogger.Error(
					ctx,
					p.logger,
					"Error purging processed outbox rows",
					zap.Error(err),
				)
			}
		}
	}
}

// ProcessBatch republishes one batch of unprocessed rows. A single row's
// publish failure only increments its retry_count; the rest of the batch
// keeps going.
func (p *OutboxRelay) ProcessBatch(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "OutboxRelay.ProcessBatch")
	defer span.End()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(
			ctx,
			p.logger,
			"outbox relay failed to begin transaction",
			zap.Error(err),
		)

		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(cleanupCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Error(
				cleanupCtx,
				p.logger,
				"Outbox relay failed to rollback transaction",
				zap.Error(err),
				zap.String("method_name", "ProcessBatch"),
			)
		}
	}()

	outboxEvents, err := p.repo.GetUnprocessedEvents(ctx, tx, p.batchSize)
	if err != nil {
		return err
	}

	if len(outboxEvents) == 0 {
		return nil
	}

	mylogger.Info(
		ctx,
		p.logger,
		"Processing outbox events",
		zap.Int("count", len(outboxEvents)),
	)

	for _, event := range outboxEvents {
		if event.Topic == "" {
			// No route for this event type. Record it for the operator
			// instead of retrying forever.
			if dbErr := p.repo.MarkEventFailed(ctx, tx, event.Id, "no topic for event type "+event.EventType); dbErr != nil {
				mylogger.Error(
					ctx,
					p.logger,
					"outbox relay mark event failed failed",
					zap.Int64("id", event.Id),
					zap.Error(dbErr),
				)
			}
			continue
		}

		err = p.kafkaProducer.ProduceMessage(
			ctx,
			event.Topic,
			event.EntityID,
			event.Payload,
		)
		if err != nil {
			mylogger.Error(
				ctx,
				p.logger,
				"outbox relay produce message failed",
				zap.Int64("id", event.Id),
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			if dbErr := p.repo.MarkEventFailed(ctx, tx, event.Id, err.Error()); dbErr != nil {
				mylogger.Error(
					ctx,
					p.logger,
					"outbox relay mark event failed failed",
					zap.Int64("id", event.Id),
					zap.Error(dbErr),
				)
			}
		} else {
			if dbErr := p.repo.MarkEventProcessed(ctx, tx, event.Id); dbErr != nil {
				mylogger.Error(
					ctx,
					p.logger,
					"outbox relay mark event processed failed",
					zap.Int64("id", event.Id),
					zap.Error(dbErr),
				)

				return dbErr
			}

			mylogger.Debug(
				ctx,
				p.logger,
				"outbox relay event published successfully",
				zap.Int64("id", event.Id),
				zap.String("event_id", event.EventID),
			)
		}
	}

	return tx.Commit(ctx)
}

// Cleanup deletes processed rows older than the retention window.
func (p *OutboxRelay) Cleanup(ctx context.Context) (int64, error) {
	ctx, span := p.tracer.Start(ctx, "OutboxRelay.Cleanup")
	defer span.End()

	cutoff := time.Now().Add(-p.retention)

	deleted, err := p.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		mylogger.Info(
			ctx,
			p.logger,
			"Purged processed outbox rows",
			zap.Int64("count", deleted),
		)
	}

	return deleted, nil
}
