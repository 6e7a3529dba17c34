package tests

import (
	"github.com/emailam/Petzania-sub000/internal/notification/domain"
	"github.com/emailam/Petzania-sub000/pkg/events"
)

func (s *IntegrationTestSuite) TestFriendRequestCreated() {
	env := s.envelope(events.FriendRequestCreated, &events.FriendRequestPayload{
		RequestID:  10,
		SenderID:   1,
		ReceiverID: 2,
	})

	s.Require().NoError(s.NotificationService.HandleFriendRequestCreated(s.Ctx, env))

	var recipient, initiator int64
	var nType, status string
	err := s.DbPool.QueryRow(
		s.Ctx,
		`SELECT recipient_id, initiator_id, type, status FROM notifications`,
	).Scan(&recipient, &initiator, &nType, &status)
	s.Require().NoError(err)

	s.Require().Equal(int64(2), recipient)
	s.Require().Equal(int64(1), initiator)
	s.Require().Equal(domain.TypeFriendRequest, nType)
	s.Require().Equal(domain.StatusUnread, status)
}

func (s *IntegrationTestSuite) TestFriendRequestCreated_RedeliveryIsIdempotent() {
	env := s.envelope(events.FriendRequestCreated, &events.FriendRequestPayload{
		RequestID:  10,
		SenderID:   1,
		ReceiverID: 2,
	})

	s.Require().NoError(s.NotificationService.HandleFriendRequestCreated(s.Ctx, env))
	s.Require().NoError(s.NotificationService.HandleFriendRequestCreated(s.Ctx, env))

	s.Require().Equal(1, s.countNotifications(), "redelivery must not duplicate the notification")
}

func (s *IntegrationTestSuite) TestFriendRequestCancelled() {
	created := s.envelope(events.FriendRequestCreated, &events.FriendRequestPayload{
		RequestID:  10,
		SenderID:   1,
		ReceiverID: 2,
	})
	s.Require().NoError(s.NotificationService.HandleFriendRequestCreated(s.Ctx, created))

	cancelled := s.envelope(events.FriendRequestCancelled, &events.FriendRequestPayload{
		RequestID:  10,
		SenderID:   1,
		ReceiverID: 2,
	})
	s.Require().NoError(s.NotificationService.HandleFriendRequestCancelled(s.Ctx, cancelled))

	s.Require().Zero(s.countNotifications())
}

func (s *IntegrationTestSuite) TestFriendshipCreated() {
	request := s.envelope(events.FriendRequestCreated, &events.FriendRequestPayload{
		RequestID:  10,
		SenderID:   1,
		ReceiverID: 2,
	})
	s.Require().NoError(s.NotificationService.HandleFriendRequestCreated(s.Ctx, request))

	env := s.envelope(events.FriendshipCreated, &events.FriendshipPayload{
		FriendshipID: 20,
		User1ID:      1,
		User2ID:      2,
	})
	s.Require().NoError(s.NotificationService.HandleFriendshipCreated(s.Ctx, env))

	var requestRows int
	err := s.DbPool.QueryRow(
		s.Ctx,
		`SELECT COUNT(*) FROM notifications WHERE type = $1`,
		domain.TypeFriendRequest,
	).Scan(&requestRows)
	s.Require().NoError(err)
	s.Require().Zero(requestRows, "the consumed request notification is retired")

	s.Require().Equal(1, s.countForRecipient(1))
	s.Require().Equal(1, s.countForRecipient(2))
}

func (s *IntegrationTestSuite) TestFriendshipRemovedRetiresBothSides() {
	created := s.envelope(events.FriendshipCreated, &events.FriendshipPayload{
		FriendshipID: 20,
		User1ID:      1,
		User2ID:      2,
	})
	s.Require().NoError(s.NotificationService.HandleFriendshipCreated(s.Ctx, created))

	unrelated := s.envelope(events.FriendshipCreated, &events.FriendshipPayload{
		FriendshipID: 21,
		User1ID:      3,
		User2ID:      4,
	})
	s.Require().NoError(s.NotificationService.HandleFriendshipCreated(s.Ctx, unrelated))

	removed := s.envelope(events.FriendshipRemoved, &events.FriendshipPayload{
		User1ID: 1,
		User2ID: 2,
	})
	s.Require().NoError(s.NotificationService.HandleFriendshipRemoved(s.Ctx, removed))

	s.Require().Zero(s.countForRecipient(1))
	s.Require().Zero(s.countForRecipient(2))
	s.Require().Equal(1, s.countForRecipient(3), "the 3-4 friendship notifications are untouched")
	s.Require().Equal(1, s.countForRecipient(4))
}

func (s *IntegrationTestSuite) TestUserBlockedClearsPendingRequests() {
	request := s.envelope(events.FriendRequestCreated, &events.FriendRequestPayload{
		RequestID:  10,
		SenderID:   2,
		ReceiverID: 1,
	})
	s.Require().NoError(s.NotificationService.HandleFriendRequestCreated(s.Ctx, request))

	follow := s.envelope(events.FollowCreated, &events.FollowPayload{
		FollowID:   30,
		FollowerID: 3,
		FollowedID: 1,
	})
	s.Require().NoError(s.NotificationService.HandleFollowCreated(s.Ctx, follow))

	blocked := s.envelope(events.UserBlocked, &events.UserBlockedPayload{
		BlockID:   40,
		BlockerID: 1,
		BlockedID: 2,
	})
	s.Require().NoError(s.NotificationService.HandleUserBlocked(s.Ctx, blocked))

	s.Require().Equal(1, s.countNotifications(), "only the unrelated follow notification remains")

	var nType string
	err := s.DbPool.QueryRow(s.Ctx, `SELECT type FROM notifications`).Scan(&nType)
	s.Require().NoError(err)
	s.Require().Equal(domain.TypeFollow, nType)
}

func (s *IntegrationTestSuite) TestPostLiked_SkipsSelfLike() {
	selfLike := s.envelope(events.PostLiked, &events.PostReactionPayload{
		PostID:  7,
		OwnerID: 1,
		UserID:  1,
	})
	s.Require().NoError(s.NotificationService.HandlePostLiked(s.Ctx, selfLike))
	s.Require().Zero(s.countNotifications())

	liked := s.envelope(events.PostLiked, &events.PostReactionPayload{
		PostID:  7,
		OwnerID: 1,
		UserID:  2,
	})
	s.Require().NoError(s.NotificationService.HandlePostLiked(s.Ctx, liked))
	s.Require().Equal(1, s.countForRecipient(1))
}

func (s *IntegrationTestSuite) TestPostUnlikedRetractsLikeNotification() {
	liked := s.envelope(events.PostLiked, &events.PostReactionPayload{PostID: 7, OwnerID: 1, UserID: 2})
	s.Require().NoError(s.NotificationService.HandlePostLiked(s.Ctx, liked))

	alsoLiked := s.envelope(events.PostLiked, &events.PostReactionPayload{PostID: 7, OwnerID: 1, UserID: 3})
	s.Require().NoError(s.NotificationService.HandlePostLiked(s.Ctx, alsoLiked))

	unliked := s.envelope(events.PostUnliked, &events.PostReactionPayload{PostID: 7, OwnerID: 1, UserID: 2})
	s.Require().NoError(s.NotificationService.HandlePostUnliked(s.Ctx, unliked))

	s.Require().Equal(1, s.countNotifications(), "only user 2's like notification is retracted")
}

func (s *IntegrationTestSuite) TestPostDeletedDropsReferences() {
	for _, userID := range []int64{2, 3, 4} {
		liked := s.envelope(events.PostLiked, &events.PostReactionPayload{PostID: 7, OwnerID: 1, UserID: userID})
		s.Require().NoError(s.NotificationService.HandlePostLiked(s.Ctx, liked))
	}

	otherPost := s.envelope(events.PostLiked, &events.PostReactionPayload{PostID: 8, OwnerID: 1, UserID: 2})
	s.Require().NoError(s.NotificationService.HandlePostLiked(s.Ctx, otherPost))

	deleted := s.envelope(events.PostDeleted, &events.PostDeletedPayload{PostID: 7, OwnerID: 1})
	s.Require().NoError(s.NotificationService.HandlePostDeleted(s.Ctx, deleted))

	s.Require().Equal(1, s.countNotifications(), "notifications for the other post survive")
}

func (s *IntegrationTestSuite) TestMessageSent() {
	env := s.envelope(events.MessageSent, &events.MessageSentPayload{
		MessageID:   50,
		ChatID:      5,
		SenderID:    1,
		RecipientID: 2,
	})

	s.Require().NoError(s.NotificationService.HandleMessageSent(s.Ctx, env))
	s.Require().Equal(1, s.countForRecipient(2))
	s.Require().Zero(s.countForRecipient(1))
}

func (s *IntegrationTestSuite) TestUserDeletedPurgesBothSides() {
	received := s.envelope(events.FollowCreated, &events.FollowPayload{FollowID: 1, FollowerID: 2, FollowedID: 1})
	s.Require().NoError(s.NotificationService.HandleFollowCreated(s.Ctx, received))

	initiated := s.envelope(events.FollowCreated, &events.FollowPayload{FollowID: 2, FollowerID: 1, FollowedID: 3})
	s.Require().NoError(s.NotificationService.HandleFollowCreated(s.Ctx, initiated))

	unrelated := s.envelope(events.FollowCreated, &events.FollowPayload{FollowID: 3, FollowerID: 4, FollowedID: 3})
	s.Require().NoError(s.NotificationService.HandleFollowCreated(s.Ctx, unrelated))

	env := s.envelope(events.UserDeleted, &events.UserDeletedPayload{UserID: 1})
	s.Require().NoError(s.NotificationService.HandleUserDeleted(s.Ctx, env))

	s.Require().Equal(1, s.countNotifications())
	s.Require().Equal(1, s.countForRecipient(3), "the 4-to-3 follow notification is untouched")
}
