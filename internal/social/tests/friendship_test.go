package tests

import (
	"errors"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/emailam/Petzania-sub000/pkg/events"
)

func (s *IntegrationTestSuite) TestFriendRequestAcceptance() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	requestID, err := s.SocialService.SendFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)
	s.Require().NotZero(requestID)
	s.Require().Equal(1, s.countOutbox(events.FriendRequestCreated))

	friendshipID, err := s.SocialService.AcceptFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)
	s.Require().NotZero(friendshipID)

	s.Require().Zero(s.countRows("friend_requests"), "acceptance consumes the request")
	s.Require().Equal(1, s.countOutbox(events.FriendshipCreated))

	for _, userID := range []int64{1, 2} {
		count, err := s.SocialService.NumberOfFriends(s.Ctx, userID)
		s.Require().NoError(err)
		s.Require().Equal(int64(1), count)
	}

	var u1, u2 int64
	err = s.DbPool.QueryRow(s.Ctx, `SELECT user1_id, user2_id FROM friendships`).Scan(&u1, &u2)
	s.Require().NoError(err)
	s.Require().Less(u1, u2, "friendship pair is stored in canonical order")
}

func (s *IntegrationTestSuite) TestSendFriendRequest_Self() {
	s.seedUser(1, "sakura")

	_, err := s.SocialService.SendFriendRequest(s.Ctx, 1, 1)
	s.Require().True(errors.Is(err, domain.ErrSelfAction))
}

func (s *IntegrationTestSuite) TestSendFriendRequest_AlreadyPending() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	_, err := s.SocialService.SendFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)

	_, err = s.SocialService.SendFriendRequest(s.Ctx, 1, 2)
	s.Require().True(errors.Is(err, domain.ErrRequestPending))
}

func (s *IntegrationTestSuite) TestAcceptFriendRequest_NoRequest() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	_, err := s.SocialService.AcceptFriendRequest(s.Ctx, 1, 2)
	s.Require().True(errors.Is(err, domain.ErrRequestNotFound))
}

func (s *IntegrationTestSuite) TestCancelFriendRequest() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	_, err := s.SocialService.SendFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)

	s.Require().NoError(s.SocialService.CancelFriendRequest(s.Ctx, 1, 2))

	s.Require().Zero(s.countRows("friend_requests"))
	s.Require().Equal(1, s.countOutbox(events.FriendRequestCancelled))
}

func (s *IntegrationTestSuite) TestRemoveFriend() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	_, err := s.SocialService.SendFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)
	_, err = s.SocialService.AcceptFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)

	s.Require().NoError(s.SocialService.RemoveFriend(s.Ctx, 2, 1))

	s.Require().Zero(s.countRows("friendships"))
	s.Require().Equal(1, s.countOutbox(events.FriendshipRemoved))

	count, err := s.SocialService.NumberOfFriends(s.Ctx, 1)
	s.Require().NoError(err)
	s.Require().Zero(count)
}

func (s *IntegrationTestSuite) TestRemoveFriend_NotFriends() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	s.Require().NoError(s.SocialService.RemoveFriend(s.Ctx, 1, 2), "removing a missing friendship is a no-op")
	s.Require().Zero(s.countOutbox(events.FriendshipRemoved), "no event when nothing changed")
}

func (s *IntegrationTestSuite) TestFollowAndUnfollow() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	followID, err := s.SocialService.Follow(s.Ctx, 1, 2)
	s.Require().NoError(err)
	s.Require().NotZero(followID)
	s.Require().Equal(1, s.countOutbox(events.FollowCreated))

	s.Require().NoError(s.SocialService.Unfollow(s.Ctx, 1, 2))
	s.Require().Zero(s.countRows("follows"))
	s.Require().Equal(1, s.countOutbox(events.FollowRemoved))
}
