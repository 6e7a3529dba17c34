package service

import (
	"context"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/emailam/Petzania-sub000/pkg/dedup"
	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func (s *socialService) HandleUserCreated(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "SocialService.HandleUserCreated")
	defer span.End()

	var payload events.UserCreatedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int64("user_id", payload.UserID))

	applied, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.userRepo.SaveShadow(ctx, tx, &domain.User{
			ID:       payload.UserID,
			Username: payload.Username,
		})
	})
	if err != nil {
		return err
	}

	if applied {
		mylogger.Debug(
			ctx,
			s.logger,
			"User shadow created",
			zap.Int64("user_id", payload.UserID),
		)
	}

	return nil
}

// HandleUserDeleted removes every row the user appears in on either side:
// friendships, follows, blocks, pending requests, the user's chats with
// their messages and reactions, and finally the shadow itself. Reapplying
// the same event is a no-op thanks to the idempotency guard, and each
// statement is a safe no-op when nothing matches.
func (s *socialService) HandleUserDeleted(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "SocialService.HandleUserDeleted")
	defer span.End()

	var payload events.UserDeletedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	userID := payload.UserID
	span.SetAttributes(attribute.Int64("user_id", userID))

	applied, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		// Serialize against other handlers cascading over the same user. A
		// missing shadow is fine: the relationship cleanup below still runs.
		if _, err := s.userRepo.LockUser(ctx, tx, userID); err != nil {
			return err
		}

		if err := s.friendshipRepo.DeleteFriendshipsForUser(ctx, tx, userID); err != nil {
			return err
		}

		if err := s.friendshipRepo.DeleteFollowsForUser(ctx, tx, userID); err != nil {
			return err
		}

		if err := s.friendshipRepo.DeleteBlocksForUser(ctx, tx, userID); err != nil {
			return err
		}

		if err := s.friendshipRepo.DeleteFriendRequestsForUser(ctx, tx, userID); err != nil {
			return err
		}

		chatIDs, err := s.chatRepo.ChatIDsForUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		for _, chatID := range chatIDs {
			if err := s.chatRepo.DeleteChatCascade(ctx, tx, chatID); err != nil {
				return err
			}
		}

		return s.userRepo.DeleteShadow(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	if applied {
		mylogger.Info(
			ctx,
			s.logger,
			"User graph cascade applied",
			zap.Int64("user_id", userID),
			zap.String("event_id", env.EventID),
		)
	}

	return nil
}
