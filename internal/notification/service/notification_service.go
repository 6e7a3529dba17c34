package service

import (
	"context"
	"fmt"

	"github.com/emailam/Petzania-sub000/internal/notification/domain"
	"github.com/emailam/Petzania-sub000/internal/notification/repository"
	"github.com/emailam/Petzania-sub000/pkg/dedup"
	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type NotificationService interface {
	HandleUserDeleted(ctx context.Context, env *events.Envelope) error
	HandleUserBlocked(ctx context.Context, env *events.Envelope) error
	HandleFriendRequestCreated(ctx context.Context, env *events.Envelope) error
	HandleFriendRequestCancelled(ctx context.Context, env *events.Envelope) error
	HandleFriendshipCreated(ctx context.Context, env *events.Envelope) error
	HandleFriendshipRemoved(ctx context.Context, env *events.Envelope) error
	HandleFollowCreated(ctx context.Context, env *events.Envelope) error
	HandleFollowRemoved(ctx context.Context, env *events.Envelope) error
	HandlePostLiked(ctx context.Context, env *events.Envelope) error
	HandlePostUnliked(ctx context.Context, env *events.Envelope) error
	HandlePostDeleted(ctx context.Context, env *events.Envelope) error
	HandleMessageSent(ctx context.Context, env *events.Envelope) error
}

type notificationService struct {
	pool   *pgxpool.Pool
	repo   repository.NotificationRepository
	logger *zap.Logger
	tracer trace.Tracer
}

func NewNotificationService(
	pool *pgxpool.Pool,
	repo repository.NotificationRepository,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		pool:   pool,
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("notification_service"),
	}
}

// HandleUserDeleted drops every notification the user appears in, on either
// side. Notifications are terminal state, so there is nothing to cascade
// further.
func (s *notificationService) HandleUserDeleted(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleUserDeleted")
	defer span.End()

	var payload events.UserDeletedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int64("user_id", payload.UserID))

	applied, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.repo.DeleteForUser(ctx, tx, payload.UserID)
	})
	if err != nil {
		return err
	}

	if applied {
		mylogger.Info(
			ctx,
			s.logger,
			"Notifications purged for deleted user",
			zap.Int64("user_id", payload.UserID),
		)
	}

	return nil
}

// HandleUserBlocked clears pending friend-request notifications between the
// pair. The block itself is deliberately silent: neither side gets notified.
func (s *notificationService) HandleUserBlocked(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleUserBlocked")
	defer span.End()

	var payload events.UserBlockedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.repo.DeleteBetweenUsers(ctx, tx, domain.TypeFriendRequest, payload.BlockerID, payload.BlockedID)
	})

	return err
}

func (s *notificationService) HandleFriendRequestCreated(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleFriendRequestCreated")
	defer span.End()

	var payload events.FriendRequestPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		_, err := s.repo.Create(ctx, tx, &domain.Notification{
			RecipientID: payload.ReceiverID,
			InitiatorID: payload.SenderID,
			Type:        domain.TypeFriendRequest,
			EntityID:    payload.RequestID,
			Message:     fmt.Sprintf("User %d sent you a friend request", payload.SenderID),
		})

		return err
	})

	return err
}

func (s *notificationService) HandleFriendRequestCancelled(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleFriendRequestCancelled")
	defer span.End()

	var payload events.FriendRequestPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.repo.DeleteByEntity(ctx, tx, domain.TypeFriendRequest, payload.RequestID)
	})

	return err
}

// HandleFriendshipCreated notifies both sides and retires the request
// notification the acceptance consumed.
func (s *notificationService) HandleFriendshipCreated(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleFriendshipCreated")
	defer span.End()

	var payload events.FriendshipPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.repo.DeleteBetweenUsers(ctx, tx, domain.TypeFriendRequest, payload.User1ID, payload.User2ID); err != nil {
			return err
		}

		pairs := [][2]int64{
			{payload.User1ID, payload.User2ID},
			{payload.User2ID, payload.User1ID},
		}

		for _, p := range pairs {
			_, err := s.repo.Create(ctx, tx, &domain.Notification{
				RecipientID: p[0],
				InitiatorID: p[1],
				Type:        domain.TypeFriendship,
				EntityID:    payload.FriendshipID,
				Message:     fmt.Sprintf("You are now friends with user %d", p[1]),
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	return err
}

// HandleFriendshipRemoved retires the friendship notifications on both
// sides. The removal payload carries no friendship id, so the pair is the
// key.
func (s *notificationService) HandleFriendshipRemoved(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleFriendshipRemoved")
	defer span.End()

	var payload events.FriendshipPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.repo.DeleteBetweenUsers(ctx, tx, domain.TypeFriendship, payload.User1ID, payload.User2ID)
	})

	return err
}

func (s *notificationService) HandleFollowCreated(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleFollowCreated")
	defer span.End()

	var payload events.FollowPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		_, err := s.repo.Create(ctx, tx, &domain.Notification{
			RecipientID: payload.FollowedID,
			InitiatorID: payload.FollowerID,
			Type:        domain.TypeFollow,
			EntityID:    payload.FollowID,
			Message:     fmt.Sprintf("User %d started following you", payload.FollowerID),
		})

		return err
	})

	return err
}

func (s *notificationService) HandleFollowRemoved(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleFollowRemoved")
	defer span.End()

	var payload events.FollowPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.repo.DeleteByEntity(ctx, tx, domain.TypeFollow, payload.FollowID)
	})

	return err
}

// HandlePostLiked notifies the post owner. Self-likes are dropped before the
// guard marks the event: there is nothing to apply and no row to create.
func (s *notificationService) HandlePostLiked(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandlePostLiked")
	defer span.End()

	var payload events.PostReactionPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	if payload.UserID == payload.OwnerID {
		mylogger.Debug(
			ctx,
			s.logger,
			"Skipping self-like",
			zap.Int64("post_id", payload.PostID),
			zap.Int64("user_id", payload.UserID),
		)

		return nil
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		_, err := s.repo.Create(ctx, tx, &domain.Notification{
			RecipientID: payload.OwnerID,
			InitiatorID: payload.UserID,
			Type:        domain.TypePostLike,
			EntityID:    payload.PostID,
			Message:     fmt.Sprintf("User %d liked your post", payload.UserID),
		})

		return err
	})

	return err
}

func (s *notificationService) HandlePostUnliked(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandlePostUnliked")
	defer span.End()

	var payload events.PostReactionPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.repo.DeleteByEntityAndInitiator(ctx, tx, domain.TypePostLike, payload.PostID, payload.UserID)
	})

	return err
}

func (s *notificationService) HandlePostDeleted(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandlePostDeleted")
	defer span.End()

	var payload events.PostDeletedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int64("post_id", payload.PostID))

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.repo.DeleteByEntity(ctx, tx, domain.TypePostLike, payload.PostID)
	})

	return err
}

func (s *notificationService) HandleMessageSent(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleMessageSent")
	defer span.End()

	var payload events.MessageSentPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		_, err := s.repo.Create(ctx, tx, &domain.Notification{
			RecipientID: payload.RecipientID,
			InitiatorID: payload.SenderID,
			Type:        domain.TypeMessage,
			EntityID:    payload.MessageID,
			Message:     fmt.Sprintf("New message from user %d", payload.SenderID),
		})

		return err
	})

	return err
}
