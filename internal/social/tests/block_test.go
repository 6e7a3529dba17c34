package tests

import (
	"errors"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/emailam/Petzania-sub000/pkg/events"
)

func (s *IntegrationTestSuite) TestBlockStripsRelationships() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	_, err := s.SocialService.SendFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)
	_, err = s.SocialService.AcceptFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)

	_, err = s.SocialService.Follow(s.Ctx, 1, 2)
	s.Require().NoError(err)
	_, err = s.SocialService.Follow(s.Ctx, 2, 1)
	s.Require().NoError(err)

	blockID, err := s.SocialService.Block(s.Ctx, 1, 2)
	s.Require().NoError(err)
	s.Require().NotZero(blockID)

	s.Require().Zero(s.countRows("friendships"))
	s.Require().Zero(s.countRows("follows"), "both follow directions go")
	s.Require().Equal(1, s.countRows("blocks"))
	s.Require().Equal(1, s.countOutbox(events.UserBlocked))

	count, err := s.SocialService.NumberOfFriends(s.Ctx, 1)
	s.Require().NoError(err)
	s.Require().Zero(count, "friend count reflects the removed friendship")
}

func (s *IntegrationTestSuite) TestBlockedPairCannotInteract() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	_, err := s.SocialService.Block(s.Ctx, 1, 2)
	s.Require().NoError(err)

	// Both directions are barred, whoever placed the block.
	_, err = s.SocialService.SendFriendRequest(s.Ctx, 2, 1)
	s.Require().True(errors.Is(err, domain.ErrBlocked))

	_, err = s.SocialService.Follow(s.Ctx, 1, 2)
	s.Require().True(errors.Is(err, domain.ErrBlocked))

	_, err = s.SocialService.CreateChat(s.Ctx, 2, 1)
	s.Require().True(errors.Is(err, domain.ErrBlocked))
}

func (s *IntegrationTestSuite) TestBlockDropsPendingRequest() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	_, err := s.SocialService.SendFriendRequest(s.Ctx, 2, 1)
	s.Require().NoError(err)

	_, err = s.SocialService.Block(s.Ctx, 1, 2)
	s.Require().NoError(err)

	s.Require().Zero(s.countRows("friend_requests"), "pending requests between the pair are dropped")
}

func (s *IntegrationTestSuite) TestUnblockRestoresNothing() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	_, err := s.SocialService.SendFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)
	_, err = s.SocialService.AcceptFriendRequest(s.Ctx, 1, 2)
	s.Require().NoError(err)

	_, err = s.SocialService.Block(s.Ctx, 1, 2)
	s.Require().NoError(err)

	s.Require().NoError(s.SocialService.Unblock(s.Ctx, 1, 2))

	s.Require().Zero(s.countRows("blocks"))
	s.Require().Zero(s.countRows("friendships"), "unblocking does not resurrect the friendship")
	s.Require().Equal(1, s.countOutbox(events.UserUnblocked))

	// Interaction is allowed again.
	_, err = s.SocialService.SendFriendRequest(s.Ctx, 2, 1)
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) TestUnblock_NoBlock() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	s.Require().NoError(s.SocialService.Unblock(s.Ctx, 1, 2))
	s.Require().Zero(s.countOutbox(events.UserUnblocked))
}
