package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/emailam/Petzania-sub000/internal/social/repository"
	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	outboxDomain "github.com/emailam/Petzania-sub000/pkg/outbox/domain"
	"github.com/emailam/Petzania-sub000/pkg/outbox/worker"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const sourceModule = "social"

// BlockChecker answers "is any direction of a block present between these
// two users". Authorization checks go through it rather than the repository
// directly so a cache can sit in front.
type BlockChecker interface {
	IsBlockedPair(ctx context.Context, a, b int64) (bool, error)
	Invalidate(ctx context.Context, a, b int64)
}

type SocialService interface {
	SendFriendRequest(ctx context.Context, sender, receiver int64) (int64, error)
	CancelFriendRequest(ctx context.Context, sender, receiver int64) error
	AcceptFriendRequest(ctx context.Context, sender, receiver int64) (int64, error)
	RemoveFriend(ctx context.Context, userID, friendID int64) error
	Follow(ctx context.Context, follower, followed int64) (int64, error)
	Unfollow(ctx context.Context, follower, followed int64) error
	Block(ctx context.Context, blocker, blocked int64) (int64, error)
	Unblock(ctx context.Context, blocker, blocked int64) error
	CreateChat(ctx context.Context, user1, user2 int64) (int64, error)
	SendMessage(ctx context.Context, chatID, senderID int64, content string, replyTo *int64) (int64, error)
	ReactToMessage(ctx context.Context, messageID, chatID, userID int64, reactionType string) error
	NumberOfFriends(ctx context.Context, userID int64) (int64, error)

	HandleUserCreated(ctx context.Context, env *events.Envelope) error
	HandleUserDeleted(ctx context.Context, env *events.Envelope) error
}

type socialService struct {
	pool           *pgxpool.Pool
	logger         *zap.Logger
	userRepo       repository.UserRepository
	friendshipRepo repository.FriendshipRepository
	chatRepo       repository.ChatRepository
	outboxRepo     worker.OutboxRepository
	blockCheck     BlockChecker
	tracer         trace.Tracer
}

func NewSocialService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	userRepo repository.UserRepository,
	friendshipRepo repository.FriendshipRepository,
	chatRepo repository.ChatRepository,
	outboxRepo worker.OutboxRepository,
	blockCheck BlockChecker,
) SocialService {
	return &socialService{
		pool:           pool,
		logger:         logger,
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		chatRepo:       chatRepo,
		outboxRepo:     outboxRepo,
		blockCheck:     blockCheck,
		tracer:         otel.Tracer("social_service"),
	}
}

func (s *socialService) withTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Failed to begin transaction", zap.Error(err))

		return err
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)

		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(shutdownCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))

		return err
	}

	return nil
}

// emitEvent writes the event into the outbox inside the business
// transaction. The relay is the sole publisher for this service.
func (s *socialService) emitEvent(ctx context.Context, tx pgx.Tx, eventType, entityType string, entityID int64, payload any) error {
	env, err := events.NewEnvelope(eventType, entityType, strconv.FormatInt(entityID, 10), sourceModule, payload)
	if err != nil {
		return err
	}

	outboxEvent, err := outboxDomain.FromEnvelope(env)
	if err != nil {
		return err
	}

	return s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent)
}

func (s *socialService) ensureNotBlocked(ctx context.Context, a, b int64) error {
	blocked, err := s.blockCheck.IsBlockedPair(ctx, a, b)
	if err != nil {
		return err
	}
	if blocked {
		return domain.ErrBlocked
	}

	return nil
}
