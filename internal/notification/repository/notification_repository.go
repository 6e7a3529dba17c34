package repository

import (
	"context"

	"github.com/emailam/Petzania-sub000/internal/notification/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type NotificationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, n *domain.Notification) (int64, error)
	DeleteByEntity(ctx context.Context, tx pgx.Tx, nType string, entityID int64) error
	DeleteByEntityAndInitiator(ctx context.Context, tx pgx.Tx, nType string, entityID, initiatorID int64) error
	DeleteForUser(ctx context.Context, tx pgx.Tx, userID int64) error
	DeleteBetweenUsers(ctx context.Context, tx pgx.Tx, nType string, a, b int64) error
}

type notificationRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewNotificationRepository(pool *pgxpool.Pool, logger *zap.Logger) NotificationRepository {
	return &notificationRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("notification_repository"),
	}
}

func (r *notificationRepo) Create(ctx context.Context, tx pgx.Tx, n *domain.Notification) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "NotificationRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("recipient_id", n.RecipientID),
		attribute.String("type", n.Type),
	)

	query := `
		INSERT INTO notifications (recipient_id, initiator_id, type, entity_id, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	status := n.Status
	if status == "" {
		status = domain.StatusUnread
	}

	var id int64
	err := tx.QueryRow(
		ctx,
		query,
		n.RecipientID,
		n.InitiatorID,
		n.Type,
		n.EntityID,
		n.Message,
		status,
	).Scan(&id)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	return id, nil
}

func (r *notificationRepo) DeleteByEntity(ctx context.Context, tx pgx.Tx, nType string, entityID int64) error {
	query := `
		DELETE FROM notifications
		WHERE type = $1 AND entity_id = $2
	`

	_, err := tx.Exec(ctx, query, nType, entityID)
	return err
}

func (r *notificationRepo) DeleteByEntityAndInitiator(ctx context.Context, tx pgx.Tx, nType string, entityID, initiatorID int64) error {
	query := `
		DELETE FROM notifications
		WHERE type = $1 AND entity_id = $2 AND initiator_id = $3
	`

	_, err := tx.Exec(ctx, query, nType, entityID, initiatorID)
	return err
}

func (r *notificationRepo) DeleteForUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	ctx, span := r.tracer.Start(ctx, "NotificationRepository.DeleteForUser")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	query := `
		DELETE FROM notifications
		WHERE recipient_id = $1 OR initiator_id = $1
	`

	_, err := tx.Exec(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r *notificationRepo) DeleteBetweenUsers(ctx context.Context, tx pgx.Tx, nType string, a, b int64) error {
	query := `
		DELETE FROM notifications
		WHERE type = $1
		  AND ((recipient_id = $2 AND initiator_id = $3)
		    OR (recipient_id = $3 AND initiator_id = $2))
	`

	_, err := tx.Exec(ctx, query, nType, a, b)
	return err
}
