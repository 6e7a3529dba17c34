package tests

import (
	"errors"

	"github.com/emailam/Petzania-sub000/internal/marketplace/domain"
	"github.com/emailam/Petzania-sub000/pkg/events"
)

func (s *IntegrationTestSuite) TestLikeAndUnlike() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")
	postID := s.createPost(1, "vintage camera")

	s.Require().NoError(s.MarketplaceService.Like(s.Ctx, postID, 2, "like"))
	s.Require().Equal(int64(1), s.reactionCount(postID))

	// Same user liking again changes nothing.
	s.Require().NoError(s.MarketplaceService.Like(s.Ctx, postID, 2, "like"))
	s.Require().Equal(int64(1), s.reactionCount(postID))
	s.Require().Equal(1, s.countRows("post_reactions"))

	s.Require().NoError(s.MarketplaceService.Unlike(s.Ctx, postID, 2))
	s.Require().Zero(s.reactionCount(postID))
	s.Require().Zero(s.countRows("post_reactions"))

	// And the counter never goes negative.
	s.Require().NoError(s.MarketplaceService.Unlike(s.Ctx, postID, 2))
	s.Require().Zero(s.reactionCount(postID))
}

func (s *IntegrationTestSuite) TestLike_BlockedPair() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")
	postID := s.createPost(1, "vintage camera")

	env := s.envelope(events.UserBlocked, &events.UserBlockedPayload{
		BlockID:   1,
		BlockerID: 1,
		BlockedID: 2,
	})
	s.Require().NoError(s.MarketplaceService.HandleUserBlocked(s.Ctx, env))

	err := s.MarketplaceService.Like(s.Ctx, postID, 2, "like")
	s.Require().True(errors.Is(err, domain.ErrBlocked))
	s.Require().Zero(s.reactionCount(postID))
}

func (s *IntegrationTestSuite) TestUnblockReopensReactions() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")
	postID := s.createPost(1, "vintage camera")

	blocked := s.envelope(events.UserBlocked, &events.UserBlockedPayload{BlockID: 1, BlockerID: 1, BlockedID: 2})
	s.Require().NoError(s.MarketplaceService.HandleUserBlocked(s.Ctx, blocked))

	unblocked := s.envelope(events.UserUnblocked, &events.UserUnblockedPayload{BlockerID: 1, BlockedID: 2})
	s.Require().NoError(s.MarketplaceService.HandleUserUnblocked(s.Ctx, unblocked))

	s.Require().NoError(s.MarketplaceService.Like(s.Ctx, postID, 2, "like"))
	s.Require().Equal(int64(1), s.reactionCount(postID))
}

func (s *IntegrationTestSuite) TestDeletePost() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")
	postID := s.createPost(1, "vintage camera")

	s.Require().NoError(s.MarketplaceService.Like(s.Ctx, postID, 2, "like"))

	err := s.MarketplaceService.DeletePost(s.Ctx, postID, 2)
	s.Require().True(errors.Is(err, domain.ErrNotOwner))

	s.Require().NoError(s.MarketplaceService.DeletePost(s.Ctx, postID, 1))

	s.Require().Zero(s.countRows("posts"))
	s.Require().Zero(s.countRows("post_reactions"))

	var count int
	err = s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM outbox WHERE event_type = $1`, events.PostDeleted).Scan(&count)
	s.Require().NoError(err)
	s.Require().Equal(1, count, "deletion goes through the outbox, not the direct path")
}

func (s *IntegrationTestSuite) TestDeletePost_NotFound() {
	s.seedUser(1, "sakura")

	err := s.MarketplaceService.DeletePost(s.Ctx, 424242, 1)
	s.Require().True(errors.Is(err, domain.ErrPostNotFound))
}

func (s *IntegrationTestSuite) TestCreatePost_Invalid() {
	s.seedUser(1, "sakura")

	_, err := s.MarketplaceService.CreatePost(s.Ctx, &domain.Post{
		OwnerID: 1,
		Title:   "ab",
		Body:    "",
	})
	s.Require().Error(err)
	s.Require().Zero(s.countRows("posts"))
}
