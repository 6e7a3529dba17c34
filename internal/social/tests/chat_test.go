package tests

import (
	"errors"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/emailam/Petzania-sub000/pkg/events"
)

func (s *IntegrationTestSuite) TestSendMessage() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	chatID, err := s.SocialService.CreateChat(s.Ctx, 2, 1)
	s.Require().NoError(err)

	msgID, err := s.SocialService.SendMessage(s.Ctx, chatID, 1, "konnichiwa", nil)
	s.Require().NoError(err)
	s.Require().NotZero(msgID)

	var unread int
	err = s.DbPool.QueryRow(
		s.Ctx,
		`SELECT unread FROM user_chats WHERE chat_id = $1 AND user_id = $2`,
		chatID, int64(2),
	).Scan(&unread)
	s.Require().NoError(err)
	s.Require().Equal(1, unread, "recipient's unread counter moves")

	err = s.DbPool.QueryRow(
		s.Ctx,
		`SELECT unread FROM user_chats WHERE chat_id = $1 AND user_id = $2`,
		chatID, int64(1),
	).Scan(&unread)
	s.Require().NoError(err)
	s.Require().Zero(unread, "sender's does not")

	s.Require().Equal(1, s.countOutbox(events.MessageSent))

	var payload []byte
	err = s.DbPool.QueryRow(s.Ctx, `SELECT payload FROM outbox WHERE event_type = $1`, events.MessageSent).Scan(&payload)
	s.Require().NoError(err)

	env, err := events.Decode(payload)
	s.Require().NoError(err)

	var sent events.MessageSentPayload
	s.Require().NoError(env.DecodePayload(&sent))
	s.Require().Equal(int64(2), sent.RecipientID)
	s.Require().Equal(msgID, sent.MessageID)
}

func (s *IntegrationTestSuite) TestSendMessage_ChatNotFound() {
	s.seedUser(1, "sakura")

	_, err := s.SocialService.SendMessage(s.Ctx, 424242, 1, "anyone there?", nil)
	s.Require().True(errors.Is(err, domain.ErrChatNotFound))
}

func (s *IntegrationTestSuite) TestReactToMessage_Upsert() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	chatID, err := s.SocialService.CreateChat(s.Ctx, 1, 2)
	s.Require().NoError(err)

	msgID, err := s.SocialService.SendMessage(s.Ctx, chatID, 1, "look at this", nil)
	s.Require().NoError(err)

	s.Require().NoError(s.SocialService.ReactToMessage(s.Ctx, msgID, chatID, 2, "heart"))
	s.Require().NoError(s.SocialService.ReactToMessage(s.Ctx, msgID, chatID, 2, "laugh"))

	s.Require().Equal(1, s.countRows("message_reactions"), "one reaction per user per message")

	var reactionType string
	err = s.DbPool.QueryRow(s.Ctx, `SELECT reaction_type FROM message_reactions`).Scan(&reactionType)
	s.Require().NoError(err)
	s.Require().Equal("laugh", reactionType, "repeat reaction replaces the old one")
}

func (s *IntegrationTestSuite) TestReactToMessage_MessageFromAnotherChat() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")
	s.seedUser(3, "aoi")

	chatA, err := s.SocialService.CreateChat(s.Ctx, 1, 2)
	s.Require().NoError(err)
	chatB, err := s.SocialService.CreateChat(s.Ctx, 1, 3)
	s.Require().NoError(err)

	msgInB, err := s.SocialService.SendMessage(s.Ctx, chatB, 1, "psst", nil)
	s.Require().NoError(err)

	err = s.SocialService.ReactToMessage(s.Ctx, msgInB, chatA, 2, "heart")
	s.Require().True(errors.Is(err, domain.ErrMessageNotFound))
	s.Require().Zero(s.countRows("message_reactions"))

	err = s.SocialService.ReactToMessage(s.Ctx, 424242, chatA, 2, "heart")
	s.Require().True(errors.Is(err, domain.ErrMessageNotFound))
}

func (s *IntegrationTestSuite) TestReactToMessage_BlockedAfterChat() {
	s.seedUser(1, "sakura")
	s.seedUser(2, "ren")

	chatID, err := s.SocialService.CreateChat(s.Ctx, 1, 2)
	s.Require().NoError(err)

	msgID, err := s.SocialService.SendMessage(s.Ctx, chatID, 1, "hey", nil)
	s.Require().NoError(err)

	_, err = s.SocialService.Block(s.Ctx, 1, 2)
	s.Require().NoError(err)

	err = s.SocialService.ReactToMessage(s.Ctx, msgID, chatID, 2, "heart")
	s.Require().True(errors.Is(err, domain.ErrBlocked))
}
