package service

import (
	"context"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

// Block records the block and strips every standing relationship between
// the pair in the same transaction: friendship, both follow directions and
// any pending request. Other services learn about it from the UserBlocked
// event; this service owns the tables, so it applies the cleanup
// synchronously.
func (s *socialService) Block(ctx context.Context, blocker, blocked int64) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "SocialService.Block")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("blocker_id", blocker),
		attribute.Int64("blocked_id", blocked),
	)

	if blocker == blocked {
		return 0, domain.ErrSelfAction
	}

	var blockID int64
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.friendshipRepo.DeleteFriendship(ctx, tx, blocker, blocked); err != nil {
			return err
		}

		if err := s.friendshipRepo.DeleteFollowsBetween(ctx, tx, blocker, blocked); err != nil {
			return err
		}

		if err := s.friendshipRepo.DeleteFriendRequestsBetween(ctx, tx, blocker, blocked); err != nil {
			return err
		}

		id, err := s.friendshipRepo.CreateBlock(ctx, tx, blocker, blocked)
		if err != nil {
			return err
		}
		blockID = id

		return s.emitEvent(ctx, tx, events.UserBlocked, "block", id, &events.UserBlockedPayload{
			BlockID:   id,
			BlockerID: blocker,
			BlockedID: blocked,
		})
	})
	if err != nil {
		return 0, err
	}

	s.blockCheck.Invalidate(ctx, blocker, blocked)

	return blockID, nil
}

// Unblock removes the directional block row. Nothing is auto-restored.
func (s *socialService) Unblock(ctx context.Context, blocker, blocked int64) error {
	ctx, span := s.tracer.Start(ctx, "SocialService.Unblock")
	defer span.End()

	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		removed, err := s.friendshipRepo.DeleteBlock(ctx, tx, blocker, blocked)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}

		return s.emitEvent(ctx, tx, events.UserUnblocked, "block", blocker, &events.UserUnblockedPayload{
			BlockerID: blocker,
			BlockedID: blocked,
		})
	})
	if err != nil {
		return err
	}

	s.blockCheck.Invalidate(ctx, blocker, blocked)

	return nil
}
