package tests

import (
	"github.com/emailam/Petzania-sub000/pkg/events"
)

func (s *IntegrationTestSuite) buildGraph() {
	for id, name := range map[int64]string{1: "sakura", 2: "ren", 3: "aoi", 4: "yuki"} {
		s.seedUser(id, name)
	}

	// User 1's world: friends with 2, follows 3, chats with 2.
	_, err := s.SocialService.SendFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)
	_, err = s.SocialService.AcceptFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)

	_, err = s.SocialService.Follow(s.Ctx, 1, 3)
	s.Require().NoError(err)

	chatID, err := s.SocialService.CreateChat(s.Ctx, 1, 2)
	s.Require().NoError(err)

	msgID, err := s.SocialService.SendMessage(s.Ctx, chatID, 1, "hello", nil)
	s.Require().NoError(err)

	s.Require().NoError(s.SocialService.ReactToMessage(s.Ctx, msgID, chatID, 2, "heart"))

	// Unrelated pair 3-4; must survive user 1's deletion untouched.
	_, err = s.SocialService.SendFriendRequest(s.Ctx, 3, 4)
	s.Require().NoError(err)
	_, err = s.SocialService.AcceptFriendRequest(s.Ctx, 3, 4)
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) TestUserDeletedCascade() {
	s.buildGraph()

	env := s.envelope(events.UserDeleted, &events.UserDeletedPayload{UserID: 1})
	s.Require().NoError(s.SocialService.HandleUserDeleted(s.Ctx, env))

	s.Require().Equal(1, s.countRows("friendships"), "only the 3-4 friendship survives")
	s.Require().Zero(s.countRows("follows"))
	s.Require().Zero(s.countRows("chats"))
	s.Require().Zero(s.countRows("user_chats"))
	s.Require().Zero(s.countRows("messages"))
	s.Require().Zero(s.countRows("message_reactions"))
	s.Require().Equal(3, s.countRows("users"), "shadow for user 1 is gone")

	count, err := s.SocialService.NumberOfFriends(s.Ctx, 2)
	s.Require().NoError(err)
	s.Require().Zero(count)

	count, err = s.SocialService.NumberOfFriends(s.Ctx, 3)
	s.Require().NoError(err)
	s.Require().Equal(int64(1), count)
}

func (s *IntegrationTestSuite) TestUserDeletedRedeliveryIsIdempotent() {
	s.buildGraph()

	env := s.envelope(events.UserDeleted, &events.UserDeletedPayload{UserID: 1})

	s.Require().NoError(s.SocialService.HandleUserDeleted(s.Ctx, env))

	before := s.countRows("friendships")

	// Same envelope again, as after a consumer crash between apply and
	// offset commit.
	s.Require().NoError(s.SocialService.HandleUserDeleted(s.Ctx, env))

	s.Require().Equal(before, s.countRows("friendships"))
	s.Require().Equal(1, s.countRows("processed_events"), "one guard row per event id")
}

func (s *IntegrationTestSuite) TestUserDeletedUnknownUserIsNoOp() {
	s.seedUser(1, "sakura")

	env := s.envelope(events.UserDeleted, &events.UserDeletedPayload{UserID: 999})
	s.Require().NoError(s.SocialService.HandleUserDeleted(s.Ctx, env))

	s.Require().Equal(1, s.countRows("users"))
}

func (s *IntegrationTestSuite) TestUserCreatedRedeliveryIsIdempotent() {
	env := s.envelope(events.UserCreated, &events.UserCreatedPayload{UserID: 7, Username: "nana"})

	s.Require().NoError(s.SocialService.HandleUserCreated(s.Ctx, env))
	s.Require().NoError(s.SocialService.HandleUserCreated(s.Ctx, env))

	s.Require().Equal(1, s.countRows("users"))

	// A distinct event for the same user is also absorbed.
	other := s.envelope(events.UserCreated, &events.UserCreatedPayload{UserID: 7, Username: "nana"})
	s.Require().NoError(s.SocialService.HandleUserCreated(s.Ctx, other))
	s.Require().Equal(1, s.countRows("users"))
}
