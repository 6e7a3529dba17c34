package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/emailam/Petzania-sub000/pkg/outbox/domain"
	"github.com/emailam/Petzania-sub000/pkg/outbox/worker"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type outboxRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewOutboxRepository(pool *pgxpool.Pool, logger *zap.Logger) worker.OutboxRepository {
	return &outboxRepo{
		pool:   pool,
		tracer: otel.Tracer("outbox_repo"),
		logger: logger,
	}
}

// SaveOutboxEvent writes a row inside the caller's transaction, so the event
// record commits or rolls back together with the business mutation.
func (r *outboxRepo) SaveOutboxEvent(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error {
	ctx, span := r.tracer.Start(ctx, "OutboxRepository.SaveOutboxEvent")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.EventID),
		attribute.String("event_type", event.EventType),
		attribute.String("entity_id", event.EntityID),
	)

	query := `
		INSERT INTO outbox (event_id, entity_id, entity_type, event_type, topic, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(
		ctx,
		query,
		event.EventID,
		event.EntityID,
		event.EntityType,
		event.EventType,
		event.Topic,
		event.Payload,
	)

	if err != nil {
		span.RecordError(err)
	}

	return err
}

// SaveFallback durably records an event whose direct publish was exhausted.
// It runs outside any business transaction. The unique index on event_id
// makes a repeated fallback for the same logical event a no-op, so the relay
// never sees two rows for one event_id.
func (r *outboxRepo) SaveFallback(ctx context.Context, event *domain.OutboxEvent) error {
	ctx, span := r.tracer.Start(ctx, "OutboxRepository.SaveFallback")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.EventID),
		attribute.String("event_type", event.EventType),
	)

	query := `
		INSERT INTO outbox (event_id, entity_id, entity_type, event_type, topic, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		event.EventID,
		event.EntityID,
		event.EntityType,
		event.EventType,
		event.Topic,
		event.Payload,
	)

	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to persist outbox fallback row: %w", err)
	}

	return nil
}

func (r *outboxRepo) GetUnprocessedEvents(ctx context.Context, tx pgx.Tx, batchSize int) ([]*domain.OutboxEvent, error) {
	ctx, span := r.tracer.Start(ctx, "OutboxRepository.GetUnprocessedEvents")
	defer span.End()

	span.SetAttributes(
		attribute.Int("batch_size", batchSize),
	)

	query := `
		SELECT id, event_id, entity_id, entity_type, event_type, topic, payload, created_at, retry_count
		FROM outbox
		WHERE processed = FALSE
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := tx.Query(ctx, query, batchSize)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query unprocessed events: %w", err)
	}
	defer rows.Close()

	var result []*domain.OutboxEvent
	for rows.Next() {
		var e domain.OutboxEvent
		if err := rows.Scan(
			&e.Id,
			&e.EventID,
			&e.EntityID,
			&e.EntityType,
			&e.EventType,
			&e.Topic,
			&e.Payload,
			&e.CreatedAt,
			&e.RetryCount,
		); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("error scanning event: %w", err)
		}

		result = append(result, &e)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("rows error: %w", err)
	}

	span.SetAttributes(
		attribute.Int("result_count", len(result)),
	)

	return result, nil
}

func (r *outboxRepo) MarkEventProcessed(ctx context.Context, tx pgx.Tx, id int64) error {
	ctx, span := r.tracer.Start(ctx, "OutboxRepository.MarkEventProcessed")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("outbox_id", id),
	)

	query := `
		UPDATE outbox
		SET processed = TRUE, processed_at = NOW(), error_message = NULL
		WHERE id = $1;
	`

	_, err := tx.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r *outboxRepo) MarkEventFailed(ctx context.Context, tx pgx.Tx, id int64, errMsg string) error {
	ctx, span := r.tracer.Start(ctx, "OutboxRepository.MarkEventFailed")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("outbox_id", id),
		attribute.String("outbox.error_message", errMsg),
	)

	query := `
		UPDATE outbox
		SET retry_count = retry_count + 1,
			error_message = $1
		WHERE id = $2;
	`

	_, err := tx.Exec(ctx, query, errMsg, id)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

// DeleteProcessedBefore purges rows already delivered and older than the
// retention cutoff. Unprocessed rows are never purged.
func (r *outboxRepo) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "OutboxRepository.DeleteProcessedBefore")
	defer span.End()

	query := `
		DELETE FROM outbox
		WHERE processed = TRUE AND processed_at < $1
	`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		span.RecordError(err)

		return 0, err
	}

	span.SetAttributes(
		attribute.Int64("deleted_count", tag.RowsAffected()),
	)

	return tag.RowsAffected(), nil
}
