package tests

import (
	"github.com/emailam/Petzania-sub000/pkg/events"
)

func (s *IntegrationTestSuite) TestUserDeletedCascade() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")
	s.seedUser(3, "aoi")

	ownPost := s.createPost(1, "vintage camera")
	otherPost := s.createPost(2, "mechanical keyboard")

	// User 1 liked someone else's post; someone liked user 1's post.
	s.Require().NoError(s.MarketplaceService.Like(s.Ctx, otherPost, 1, "like"))
	s.Require().NoError(s.MarketplaceService.Like(s.Ctx, ownPost, 3, "like"))
	s.Require().NoError(s.MarketplaceService.Like(s.Ctx, otherPost, 3, "like"))

	env := s.envelope(events.UserDeleted, &events.UserDeletedPayload{UserID: 1})
	s.Require().NoError(s.MarketplaceService.HandleUserDeleted(s.Ctx, env))

	s.Require().Equal(1, s.countRows("posts"), "only user 2's post survives")
	s.Require().Equal(1, s.countRows("post_reactions"), "user 3's reaction on the surviving post stays")
	s.Require().Equal(int64(1), s.reactionCount(otherPost), "counter reflects user 1's removed reaction")
	s.Require().Equal(2, s.countRows("users"))
}

func (s *IntegrationTestSuite) TestUserDeletedRedeliveryIsIdempotent() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")
	otherPost := s.createPost(2, "mechanical keyboard")
	s.Require().NoError(s.MarketplaceService.Like(s.Ctx, otherPost, 1, "like"))

	env := s.envelope(events.UserDeleted, &events.UserDeletedPayload{UserID: 1})

	s.Require().NoError(s.MarketplaceService.HandleUserDeleted(s.Ctx, env))
	s.Require().NoError(s.MarketplaceService.HandleUserDeleted(s.Ctx, env))

	s.Require().Equal(int64(0), s.reactionCount(otherPost), "counter is decremented exactly once")
	s.Require().Equal(1, s.countRows("processed_events"))
}

func (s *IntegrationTestSuite) TestUserDeletedUnknownUserIsNoOp() {
	s.seedUser(1, "sakura")
	s.createPost(1, "vintage camera")

	env := s.envelope(events.UserDeleted, &events.UserDeletedPayload{UserID: 999})
	s.Require().NoError(s.MarketplaceService.HandleUserDeleted(s.Ctx, env))

	s.Require().Equal(1, s.countRows("posts"))
}

func (s *IntegrationTestSuite) TestUserCreatedRedeliveryIsIdempotent() {
	env := s.envelope(events.UserCreated, &events.UserCreatedPayload{UserID: 7, Username: "nana"})

	s.Require().NoError(s.MarketplaceService.HandleUserCreated(s.Ctx, env))
	s.Require().NoError(s.MarketplaceService.HandleUserCreated(s.Ctx, env))

	s.Require().Equal(1, s.countRows("users"))
}
