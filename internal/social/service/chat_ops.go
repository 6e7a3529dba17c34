package service

import (
	"context"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

func (s *socialService) CreateChat(ctx context.Context, user1, user2 int64) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "SocialService.CreateChat")
	defer span.End()

	if user1 == user2 {
		return 0, domain.ErrSelfAction
	}

	if err := s.ensureNotBlocked(ctx, user1, user2); err != nil {
		return 0, err
	}

	var chatID int64
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.chatRepo.CreateChat(ctx, tx, user1, user2)
		if err != nil {
			return err
		}
		chatID = id

		return nil
	})
	if err != nil {
		return 0, err
	}

	return chatID, nil
}

func (s *socialService) SendMessage(ctx context.Context, chatID, senderID int64, content string, replyTo *int64) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "SocialService.SendMessage")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("chat_id", chatID),
		attribute.Int64("sender_id", senderID),
	)

	var messageID int64
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Lock the chat so concurrent sends and cascades over the same chat
		// are serialized.
		found, err := s.chatRepo.LockChat(ctx, tx, chatID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrChatNotFound
		}

		chat, err := s.chatRepo.GetChat(ctx, tx, chatID)
		if err != nil {
			return err
		}

		recipient := chat.User1ID
		if recipient == senderID {
			recipient = chat.User2ID
		}

		msg := &domain.Message{
			ChatID:   chatID,
			SenderID: senderID,
			Content:  content,
			ReplyTo:  replyTo,
			Status:   "sent",
		}

		id, err := s.chatRepo.CreateMessage(ctx, tx, msg)
		if err != nil {
			return err
		}
		messageID = id

		if err := s.chatRepo.IncrementUnread(ctx, tx, chatID, recipient); err != nil {
			return err
		}

		return s.emitEvent(ctx, tx, events.MessageSent, "message", id, &events.MessageSentPayload{
			MessageID:   id,
			ChatID:      chatID,
			SenderID:    senderID,
			RecipientID: recipient,
		})
	})
	if err != nil {
		return 0, err
	}

	return messageID, nil
}

func (s *socialService) ReactToMessage(ctx context.Context, messageID, chatID, userID int64, reactionType string) error {
	ctx, span := s.tracer.Start(ctx, "SocialService.ReactToMessage")
	defer span.End()

	return s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		found, err := s.chatRepo.LockChat(ctx, tx, chatID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrChatNotFound
		}

		chat, err := s.chatRepo.GetChat(ctx, tx, chatID)
		if err != nil {
			return err
		}

		// The chat lock only serializes this chat; a reaction aimed at a
		// message from another chat must not slip in under it.
		msgChat, err := s.chatRepo.MessageChatID(ctx, tx, messageID)
		if err != nil {
			return err
		}
		if msgChat != chatID {
			return domain.ErrMessageNotFound
		}

		other := chat.User1ID
		if other == userID {
			other = chat.User2ID
		}

		if err := s.ensureNotBlocked(ctx, userID, other); err != nil {
			return err
		}

		_, err = s.chatRepo.CreateMessageReaction(ctx, tx, &domain.MessageReaction{
			MessageID:    messageID,
			UserID:       userID,
			ReactionType: reactionType,
		})

		return err
	})
}
