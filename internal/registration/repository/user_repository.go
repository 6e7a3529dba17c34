package repository

import (
	"context"
	"errors"

	"github.com/emailam/Petzania-sub000/internal/registration/domain"
	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserRepository interface {
	CreateUser(ctx context.Context, tx pgx.Tx, user *domain.User) (int64, error)
	DeleteUser(ctx context.Context, tx pgx.Tx, id int64) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
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
		tracer: otel.Tracer("registration_user_repository"),
	}
}

func (r *userRepo) CreateUser(ctx context.Context, tx pgx.Tx, user *domain.User) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.CreateUser")
	defer span.End()

	span.SetAttributes(
		attribute.String("username", user.Username),
	)

	query := `
		INSERT INTO users (username, email)
		VALUES ($1, $2)
		RETURNING id;
	`

	var id int64
	err := tx.QueryRow(ctx, query, user.Username, user.Email).Scan(&id)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			if pgError.ConstraintName == "users_email_key" {
				return 0, ErrEmailTaken
			}
			return 0, ErrUsernameTaken
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to insert user",
			zap.Error(err),
		)

		return 0, err
	}

	return id, nil
}

func (r *userRepo) DeleteUser(ctx context.Context, tx pgx.Tx, id int64) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.DeleteUser")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", id),
	)

	query := `
		DELETE FROM users
		WHERE id = $1;
	`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)

		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepo) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetUser")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", id),
	)

	query := `
		SELECT id, username, email, created_at
		FROM users
		WHERE id = $1;
	`

	var user domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		return nil, err
	}

	return &user, nil
}
