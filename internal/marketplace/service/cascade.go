package service

import (
	"context"

	"github.com/emailam/Petzania-sub000/pkg/dedup"
	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func (s *marketplaceService) HandleUserCreated(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "MarketplaceService.HandleUserCreated")
	defer span.End()

	var payload events.UserCreatedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.shadowRepo.SaveUserShadow(ctx, tx, payload.UserID, payload.Username)
	})

	return err
}

// HandleUserDeleted drops the user's posts with their reactions, the user's
// reactions on other posts (fixing the owners' counters), the block-pair
// shadows and the user shadow itself.
func (s *marketplaceService) HandleUserDeleted(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "MarketplaceService.HandleUserDeleted")
	defer span.End()

	var payload events.UserDeletedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	userID := payload.UserID
	span.SetAttributes(attribute.Int64("user_id", userID))

	applied, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		// The user's own reactions go first so other posts' counters are
		// decremented before the reaction rows disappear.
		if err := s.postRepo.DeleteReactionsByUser(ctx, tx, userID); err != nil {
			return err
		}

		postIDs, err := s.postRepo.PostIDsForOwner(ctx, tx, userID)
		if err != nil {
			return err
		}

		for _, postID := range postIDs {
			if err := s.postRepo.DeleteReactionsForPost(ctx, tx, postID); err != nil {
				return err
			}

			if _, err := s.postRepo.DeletePost(ctx, tx, postID); err != nil {
				return err
			}
		}

		if err := s.shadowRepo.DeleteBlockedPairsForUser(ctx, tx, userID); err != nil {
			return err
		}

		return s.shadowRepo.DeleteUserShadow(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	if applied {
		mylogger.Info(
			ctx,
			s.logger,
			"Marketplace cascade applied",
			zap.Int64("user_id", userID),
			zap.String("event_id", env.EventID),
		)
	}

	return nil
}

func (s *marketplaceService) HandleUserBlocked(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "MarketplaceService.HandleUserBlocked")
	defer span.End()

	var payload events.UserBlockedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.shadowRepo.SaveBlockedPair(ctx, tx, payload.BlockerID, payload.BlockedID)
	})

	return err
}

func (s *marketplaceService) HandleUserUnblocked(ctx context.Context, env *events.Envelope) error {
	ctx, span := s.tracer.Start(ctx, "MarketplaceService.HandleUserUnblocked")
	defer span.End()

	var payload events.UserUnblockedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := dedup.ApplyOnce(ctx, s.pool, s.logger, env.EventID, func(ctx context.Context, tx pgx.Tx) error {
		return s.shadowRepo.DeleteBlockedPair(ctx, tx, payload.BlockerID, payload.BlockedID)
	})

	return err
}
