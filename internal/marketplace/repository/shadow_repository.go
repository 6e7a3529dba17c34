package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ShadowRepository maintains the marketplace's replicas of data owned
// elsewhere: user rows from registration and blocked pairs from the social
// service.
type ShadowRepository interface {
	SaveUserShadow(ctx context.Context, tx pgx.Tx, userID int64, username string) error
	DeleteUserShadow(ctx context.Context, tx pgx.Tx, userID int64) error

	SaveBlockedPair(ctx context.Context, tx pgx.Tx, blocker, blocked int64) error
	DeleteBlockedPair(ctx context.Context, tx pgx.Tx, blocker, blocked int64) error
	DeleteBlockedPairsForUser(ctx context.Context, tx pgx.Tx, userID int64) error
	ExistsBlockedPair(ctx context.Context, a, b int64) (bool, error)
}

type shadowRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewShadowRepository(pool *pgxpool.Pool, logger *zap.Logger) ShadowRepository {
	return &shadowRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("marketplace_shadow_repository"),
	}
}

func (r *shadowRepo) SaveUserShadow(ctx context.Context, tx pgx.Tx, userID int64, username string) error {
	query := `
		INSERT INTO users (id, username)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := tx.Exec(ctx, query, userID, username)
	return err
}

func (r *shadowRepo) DeleteUserShadow(ctx context.Context, tx pgx.Tx, userID int64) error {
	query := `
		DELETE FROM users
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, userID)
	return err
}

func (r *shadowRepo) SaveBlockedPair(ctx context.Context, tx pgx.Tx, blocker, blocked int64) error {
	ctx, span := r.tracer.Start(ctx, "ShadowRepository.SaveBlockedPair")
	defer span.End()

	query := `
		INSERT INTO blocked_pairs (blocker_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`

	_, err := tx.Exec(ctx, query, blocker, blocked)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r *shadowRepo) DeleteBlockedPair(ctx context.Context, tx pgx.Tx, blocker, blocked int64) error {
	query := `
		DELETE FROM blocked_pairs
		WHERE blocker_id = $1 AND blocked_id = $2
	`

	_, err := tx.Exec(ctx, query, blocker, blocked)
	return err
}

func (r *shadowRepo) DeleteBlockedPairsForUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	query := `
		DELETE FROM blocked_pairs
		WHERE blocker_id = $1 OR blocked_id = $1
	`

	_, err := tx.Exec(ctx, query, userID)
	return err
}

func (r *shadowRepo) ExistsBlockedPair(ctx context.Context, a, b int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blocked_pairs
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, a, b).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}
