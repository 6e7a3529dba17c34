package repository

import (
	"context"
	"errors"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ChatRepository interface {
	CreateChat(ctx context.Context, tx pgx.Tx, user1, user2 int64) (int64, error)
	GetChat(ctx context.Context, tx pgx.Tx, chatID int64) (*domain.Chat, error)
	LockChat(ctx context.Context, tx pgx.Tx, chatID int64) (bool, error)
	ChatIDsForUser(ctx context.Context, tx pgx.Tx, userID int64) ([]int64, error)
	DeleteChatCascade(ctx context.Context, tx pgx.Tx, chatID int64) error

	CreateMessage(ctx context.Context, tx pgx.Tx, msg *domain.Message) (int64, error)
	MessageChatID(ctx context.Context, tx pgx.Tx, messageID int64) (int64, error)
	CreateMessageReaction(ctx context.Context, tx pgx.Tx, reaction *domain.MessageReaction) (int64, error)
	IncrementUnread(ctx context.Context, tx pgx.Tx, chatID, userID int64) error
}

type chatRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewChatRepository(pool *pgxpool.Pool, logger *zap.Logger) ChatRepository {
	return &chatRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("chat_repository"),
	}
}

func (r *chatRepo) CreateChat(ctx context.Context, tx pgx.Tx, user1, user2 int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "ChatRepository.CreateChat")
	defer span.End()

	u1, u2 := domain.CanonicalPair(user1, user2)

	span.SetAttributes(
		attribute.Int64("user1_id", u1),
		attribute.Int64("user2_id", u2),
	)

	query := `
		INSERT INTO chats (user1_id, user2_id)
		VALUES ($1, $2)
		ON CONFLICT (user1_id, user2_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, query, u1, u2).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = tx.QueryRow(ctx,
				`SELECT id FROM chats WHERE user1_id = $1 AND user2_id = $2`,
				u1, u2,
			).Scan(&id)
			if err != nil {
				span.RecordError(err)
				return 0, err
			}

			return id, nil
		}

		span.RecordError(err)
		return 0, err
	}

	memberQuery := `
		INSERT INTO user_chats (chat_id, user_id)
		VALUES ($1, $2), ($1, $3)
		ON CONFLICT (chat_id, user_id) DO NOTHING
	`

	if _, err := tx.Exec(ctx, memberQuery, id, u1, u2); err != nil {
		span.RecordError(err)
		return 0, err
	}

	return id, nil
}

func (r *chatRepo) GetChat(ctx context.Context, tx pgx.Tx, chatID int64) (*domain.Chat, error) {
	query := `
		SELECT id, user1_id, user2_id
		FROM chats
		WHERE id = $1
	`

	var chat domain.Chat
	err := tx.QueryRow(ctx, query, chatID).Scan(&chat.ID, &chat.User1ID, &chat.User2ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChatNotFound
		}

		return nil, err
	}

	return &chat, nil
}

// LockChat serializes handlers mutating the same chat aggregate.
func (r *chatRepo) LockChat(ctx context.Context, tx pgx.Tx, chatID int64) (bool, error) {
	query := `
		SELECT id FROM chats WHERE id = $1 FOR UPDATE
	`

	var id int64
	err := tx.QueryRow(ctx, query, chatID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (r *chatRepo) ChatIDsForUser(ctx context.Context, tx pgx.Tx, userID int64) ([]int64, error) {
	ctx, span := r.tracer.Start(ctx, "ChatRepository.ChatIDsForUser")
	defer span.End()

	query := `
		SELECT id FROM chats
		WHERE user1_id = $1 OR user2_id = $1
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			span.RecordError(err)
			return nil, err
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return ids, nil
}

// DeleteChatCascade removes a chat with everything hanging off it:
// reactions on its messages, the messages, both membership rows, then the
// chat row itself. 1:1 chats do not outlive a participant.
func (r *chatRepo) DeleteChatCascade(ctx context.Context, tx pgx.Tx, chatID int64) error {
	ctx, span := r.tracer.Start(ctx, "ChatRepository.DeleteChatCascade")
	defer span.End()

	span.SetAttributes(attribute.Int64("chat_id", chatID))

	statements := []string{
		`DELETE FROM message_reactions WHERE message_id IN (SELECT id FROM messages WHERE chat_id = $1)`,
		`DELETE FROM messages WHERE chat_id = $1`,
		`DELETE FROM user_chats WHERE chat_id = $1`,
		`DELETE FROM chats WHERE id = $1`,
	}

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, chatID); err != nil {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Chat cascade statement failed",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)

			return err
		}
	}

	return nil
}

func (r *chatRepo) CreateMessage(ctx context.Context, tx pgx.Tx, msg *domain.Message) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "ChatRepository.CreateMessage")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("chat_id", msg.ChatID),
		attribute.Int64("sender_id", msg.SenderID),
	)

	query := `
		INSERT INTO messages (chat_id, sender_id, content, reply_to, status, is_file)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(
		ctx,
		query,
		msg.ChatID,
		msg.SenderID,
		msg.Content,
		msg.ReplyTo,
		msg.Status,
		msg.IsFile,
	).Scan(&id)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	return id, nil
}

func (r *chatRepo) MessageChatID(ctx context.Context, tx pgx.Tx, messageID int64) (int64, error) {
	query := `
		SELECT chat_id
		FROM messages
		WHERE id = $1
	`

	var chatID int64
	err := tx.QueryRow(ctx, query, messageID).Scan(&chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrMessageNotFound
		}

		return 0, err
	}

	return chatID, nil
}

func (r *chatRepo) CreateMessageReaction(ctx context.Context, tx pgx.Tx, reaction *domain.MessageReaction) (int64, error) {
	query := `
		INSERT INTO message_reactions (message_id, user_id, reaction_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, user_id) DO UPDATE SET reaction_type = EXCLUDED.reaction_type
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, query, reaction.MessageID, reaction.UserID, reaction.ReactionType).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *chatRepo) IncrementUnread(ctx context.Context, tx pgx.Tx, chatID, userID int64) error {
	query := `
		UPDATE user_chats
		SET unread = unread + 1
		WHERE chat_id = $1 AND user_id = $2
	`

	_, err := tx.Exec(ctx, query, chatID, userID)
	return err
}
