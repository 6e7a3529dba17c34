package dedup

import (
	"context"
	"errors"

	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

// ApplyOnce runs apply at most once per event id. The processed_events
// insert and the mutation share one transaction, so a crash leaves either
// both or neither: redelivery after a crash re-applies cleanly, redelivery
// after a commit short-circuits on the primary key.
//
// Returns true when apply ran and committed, false when the event was seen
// before.
func ApplyOnce(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger *zap.Logger,
	eventID string,
	apply func(ctx context.Context, tx pgx.Tx) error,
) (bool, error) {
	span := trace.SpanFromContext(ctx)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, err
	}

	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(shutdownCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Error(
				shutdownCtx,
				logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	query := `
		INSERT INTO processed_events (event_id)
		VALUES ($1)
	`

	_, err = tx.Exec(ctx, query, eventID)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == uniqueViolation {
			mylogger.Info(
				ctx,
				logger,
				"Event already processed, skipping",
				zap.String("event_id", eventID),
			)

			return false, nil
		}

		span.RecordError(err)
		return false, err
	}

	if err := apply(ctx, tx); err != nil {
		span.RecordError(err)

		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			logger,
			"Failed to commit transaction",
			zap.String("event_id", eventID),
			zap.Error(err),
		)

		return false, err
	}

	return true, nil
}
