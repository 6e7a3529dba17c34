package repository

import (
	"context"
	"errors"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserRepository interface {
	SaveShadow(ctx context.Context, tx pgx.Tx, user *domain.User) error
	DeleteShadow(ctx context.Context, tx pgx.Tx, userID int64) error
	ExistsUser(ctx context.Context, tx pgx.Tx, userID int64) (bool, error)
	LockUser(ctx context.Context, tx pgx.Tx, userID int64) (bool, error)
}

type userRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("social_user_repository"),
	}
}

// SaveShadow is idempotent on the user id, so a redelivered UserCreated is
// harmless.
func (r *userRepo) SaveShadow(ctx context.Context, tx pgx.Tx, user *domain.User) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.SaveShadow")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", user.ID))

	query := `
		INSERT INTO users (id, username)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := tx.Exec(ctx, query, user.ID, user.Username)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r *userRepo) DeleteShadow(ctx context.Context, tx pgx.Tx, userID int64) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.DeleteShadow")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	query := `
		DELETE FROM users
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r *userRepo) ExistsUser(ctx context.Context, tx pgx.Tx, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
	`

	var exists bool
	if err := tx.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// LockUser takes a row lock on the user shadow, serializing concurrent
// handlers that cascade over the same user. Returns false when no shadow
// exists yet.
func (r *userRepo) LockUser(ctx context.Context, tx pgx.Tx, userID int64) (bool, error) {
	query := `
		SELECT id FROM users WHERE id = $1 FOR UPDATE
	`

	var id int64
	err := tx.QueryRow(ctx, query, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
