package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/emailam/Petzania-sub000/internal/registration/domain"
	"github.com/emailam/Petzania-sub000/internal/registration/repository"
	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	outboxDomain "github.com/emailam/Petzania-sub000/pkg/outbox/domain"
	"github.com/emailam/Petzania-sub000/pkg/outbox/worker"
	"github.com/emailam/Petzania-sub000/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const sourceModule = "registration"

type RegistrationService interface {
	Register(ctx context.Context, user *domain.User) (int64, error)
	Delete(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (*domain.User, error)
}

type registrationService struct {
	pool       *pgxpool.Pool
	logger     *zap.Logger
	userRepo   repository.UserRepository
	outboxRepo worker.OutboxRepository
	validate   *validator.Validate
	tracer     trace.Tracer
}

func NewRegistrationService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	userRepo repository.UserRepository,
	outboxRepo worker.OutboxRepository,
) RegistrationService {
	return &registrationService{
		pool:       pool,
		logger:     logger,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		validate:   validator.New(),
		tracer:     otel.Tracer("registration_service"),
	}
}

func (s *registrationService) Register(ctx context.Context, user *domain.User) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "RegistrationService.Register")
	defer span.End()

	if err := s.validate.Struct(user); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			mylogger.Warn(ctx, s.logger, "Rejected user input", zap.Any("fields", utils.FormatValidationError(err)))
		}

		return 0, fmt.Errorf("invalid user: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Failed to begin transaction", zap.Error(err))

		return 0, err
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)

		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(shutdownCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
		}
	}()

	id, err := s.userRepo.CreateUser(ctx, tx, user)
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int64("user_id", id))

	err = s.emitEvent(ctx, tx, events.UserCreated, "user", id, &events.UserCreatedPayload{
		UserID:   id,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to emit event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))

		return 0, err
	}

	return id, nil
}

func (s *registrationService) Delete(ctx context.Context, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "RegistrationService.Delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Failed to begin transaction", zap.Error(err))

		return err
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)

		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(shutdownCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
		}
	}()

	err = s.userRepo.DeleteUser(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			mylogger.Warn(
				ctx,
				s.logger,
				"User not found",
				zap.Int64("user_id", userID),
			)

			return err
		}

		return fmt.Errorf("failed to delete user: %w", err)
	}

	// Downstream services cascade the whole relationship graph off this one
	// event, so the payload only needs the user id.
	err = s.emitEvent(ctx, tx, events.UserDeleted, "user", userID, &events.UserDeletedPayload{
		UserID: userID,
	})
	if err != nil {
		return fmt.Errorf("failed to emit event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))

		return err
	}

	return nil
}

func (s *registrationService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "RegistrationService.Get")
	defer span.End()

	return s.userRepo.GetUser(ctx, userID)
}

func (s *registrationService) emitEvent(ctx context.Context, tx pgx.Tx, eventType string, entityType string, entityID int64, payload any) error {
	env, err := events.NewEnvelope(eventType, entityType, strconv.FormatInt(entityID, 10), sourceModule, payload)
	if err != nil {
		return err
	}

	outboxEvent, err := outboxDomain.FromEnvelope(env)
	if err != nil {
		return err
	}

	return s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent)
}
