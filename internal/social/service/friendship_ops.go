package service

import (
	"context"
	"fmt"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

func (s *socialService) SendFriendRequest(ctx context.Context, sender, receiver int64) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "SocialService.SendFriendRequest")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("sender_id", sender),
		attribute.Int64("receiver_id", receiver),
	)

	if sender == receiver {
		return 0, domain.ErrSelfAction
	}

	if err := s.ensureNotBlocked(ctx, sender, receiver); err != nil {
		return 0, err
	}

	var requestID int64
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.friendshipRepo.CreateFriendRequest(ctx, tx, sender, receiver)
		if err != nil {
			return err
		}
		requestID = id

		return s.emitEvent(ctx, tx, events.FriendRequestCreated, "friend_request", id, &events.FriendRequestPayload{
			RequestID:  id,
			SenderID:   sender,
			ReceiverID: receiver,
		})
	})
	if err != nil {
		return 0, err
	}

	return requestID, nil
}

func (s *socialService) CancelFriendRequest(ctx context.Context, sender, receiver int64) error {
	ctx, span := s.tracer.Start(ctx, "SocialService.CancelFriendRequest")
	defer span.End()

	return s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		req, err := s.friendshipRepo.GetFriendRequest(ctx, tx, sender, receiver)
		if err != nil {
			return err
		}

		if _, err := s.friendshipRepo.DeleteFriendRequest(ctx, tx, sender, receiver); err != nil {
			return err
		}

		return s.emitEvent(ctx, tx, events.FriendRequestCancelled, "friend_request", req.ID, &events.FriendRequestPayload{
			RequestID:  req.ID,
			SenderID:   sender,
			ReceiverID: receiver,
		})
	})
}

// AcceptFriendRequest turns a pending request into a friendship in the
// canonical order and emits FriendshipCreated.
func (s *socialService) AcceptFriendRequest(ctx context.Context, sender, receiver int64) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "SocialService.AcceptFriendRequest")
	defer span.End()

	if err := s.ensureNotBlocked(ctx, sender, receiver); err != nil {
		return 0, err
	}

	var friendshipID int64
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.friendshipRepo.GetFriendRequest(ctx, tx, sender, receiver); err != nil {
			return err
		}

		if _, err := s.friendshipRepo.DeleteFriendRequest(ctx, tx, sender, receiver); err != nil {
			return err
		}

		id, err := s.friendshipRepo.CreateFriendship(ctx, tx, sender, receiver)
		if err != nil {
			return err
		}
		friendshipID = id

		u1, u2 := domain.CanonicalPair(sender, receiver)

		return s.emitEvent(ctx, tx, events.FriendshipCreated, "friendship", id, &events.FriendshipPayload{
			FriendshipID: id,
			User1ID:      u1,
			User2ID:      u2,
		})
	})
	if err != nil {
		return 0, err
	}

	return friendshipID, nil
}

func (s *socialService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	ctx, span := s.tracer.Start(ctx, "SocialService.RemoveFriend")
	defer span.End()

	return s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		removed, err := s.friendshipRepo.DeleteFriendship(ctx, tx, userID, friendID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}

		u1, u2 := domain.CanonicalPair(userID, friendID)

		return s.emitEvent(ctx, tx, events.FriendshipRemoved, "friendship", u1, &events.FriendshipPayload{
			User1ID: u1,
			User2ID: u2,
		})
	})
}

func (s *socialService) Follow(ctx context.Context, follower, followed int64) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "SocialService.Follow")
	defer span.End()

	if follower == followed {
		return 0, domain.ErrSelfAction
	}

	if err := s.ensureNotBlocked(ctx, follower, followed); err != nil {
		return 0, err
	}

	var followID int64
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.friendshipRepo.CreateFollow(ctx, tx, follower, followed)
		if err != nil {
			return err
		}
		followID = id

		return s.emitEvent(ctx, tx, events.FollowCreated, "follow", id, &events.FollowPayload{
			FollowID:   id,
			FollowerID: follower,
			FollowedID: followed,
		})
	})
	if err != nil {
		return 0, err
	}

	return followID, nil
}

func (s *socialService) Unfollow(ctx context.Context, follower, followed int64) error {
	ctx, span := s.tracer.Start(ctx, "SocialService.Unfollow")
	defer span.End()

	return s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		removed, err := s.friendshipRepo.DeleteFollow(ctx, tx, follower, followed)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}

		return s.emitEvent(ctx, tx, events.FollowRemoved, "follow", follower, &events.FollowPayload{
			FollowerID: follower,
			FollowedID: followed,
		})
	})
}

func (s *socialService) NumberOfFriends(ctx context.Context, userID int64) (int64, error) {
	count, err := s.friendshipRepo.NumberOfFriends(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count friends: %w", err)
	}

	return count, nil
}
