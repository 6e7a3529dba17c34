package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/emailam/Petzania-sub000/internal/marketplace/domain"
	"github.com/emailam/Petzania-sub000/internal/marketplace/repository"
	"github.com/emailam/Petzania-sub000/pkg/events"
	"github.com/emailam/Petzania-sub000/pkg/mylogger"
	outboxDomain "github.com/emailam/Petzania-sub000/pkg/outbox/domain"
	"github.com/emailam/Petzania-sub000/pkg/outbox/publisher"
	"github.com/emailam/Petzania-sub000/pkg/outbox/worker"
	"github.com/emailam/Petzania-sub000/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const sourceModule = "marketplace"

type MarketplaceService interface {
	CreatePost(ctx context.Context, post *domain.Post) (int64, error)
	DeletePost(ctx context.Context, postID, requesterID int64) error
	Like(ctx context.Context, postID, userID int64, reactionType string) error
	Unlike(ctx context.Context, postID, userID int64) error

	HandleUserCreated(ctx context.Context, env *events.Envelope) error
	HandleUserDeleted(ctx context.Context, env *events.Envelope) error
	HandleUserBlocked(ctx context.Context, env *events.Envelope) error
	HandleUserUnblocked(ctx context.Context, env *events.Envelope) error
}

type marketplaceService struct {
	pool       *pgxpool.Pool
	logger     *zap.Logger
	postRepo   repository.PostRepository
	shadowRepo repository.ShadowRepository
	outboxRepo worker.OutboxRepository
	publisher  *publisher.Publisher
	validate   *validator.Validate
	tracer     trace.Tracer
}

func NewMarketplaceService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	postRepo repository.PostRepository,
	shadowRepo repository.ShadowRepository,
	outboxRepo worker.OutboxRepository,
	pub *publisher.Publisher,
) MarketplaceService {
	return &marketplaceService{
		pool:       pool,
		logger:     logger,
		postRepo:   postRepo,
		shadowRepo: shadowRepo,
		outboxRepo: outboxRepo,
		publisher:  pub,
		validate:   validator.New(),
		tracer:     otel.Tracer("marketplace_service"),
	}
}

func (s *marketplaceService) withTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
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

func (s *marketplaceService) emitEvent(ctx context.Context, tx pgx.Tx, eventType, entityType string, entityID int64, payload any) error {
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

// publishDirect is the low-latency path for reaction events: the business
// transaction has already committed, so delivery failure must not surface
// to the caller. The publisher falls back to the outbox when the broker is
// down; only a failure of both is logged as an error for the operator.
func (s *marketplaceService) publishDirect(ctx context.Context, eventType, entityType string, entityID int64, payload any) {
	env, err := events.NewEnvelope(eventType, entityType, strconv.FormatInt(entityID, 10), sourceModule, payload)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Failed to build envelope", zap.Error(err))
		return
	}

	if err := s.publisher.Publish(context.WithoutCancel(ctx), env); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Event lost: direct publish and outbox fallback both failed",
			zap.String("event_id", env.EventID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *marketplaceService) CreatePost(ctx context.Context, post *domain.Post) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "MarketplaceService.CreatePost")
	defer span.End()

	if err := s.validate.Struct(post); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			mylogger.Warn(ctx, s.logger, "Rejected post input", zap.Any("fields", utils.FormatValidationError(err)))
		}

		return 0, fmt.Errorf("invalid post: %w", err)
	}

	var postID int64
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.postRepo.CreatePost(ctx, tx, post)
		if err != nil {
			return err
		}
		postID = id

		return nil
	})
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int64("post_id", postID))

	return postID, nil
}

func (s *marketplaceService) DeletePost(ctx context.Context, postID, requesterID int64) error {
	ctx, span := s.tracer.Start(ctx, "MarketplaceService.DeletePost")
	defer span.End()

	span.SetAttributes(attribute.Int64("post_id", postID))

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if post.OwnerID != requesterID {
		return domain.ErrNotOwner
	}

	return s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.postRepo.DeleteReactionsForPost(ctx, tx, postID); err != nil {
			return err
		}

		if _, err := s.postRepo.DeletePost(ctx, tx, postID); err != nil {
			return err
		}

		// Notification service drops everything referencing the post off
		// this event.
		return s.emitEvent(ctx, tx, events.PostDeleted, "post", postID, &events.PostDeletedPayload{
			PostID:  postID,
			OwnerID: post.OwnerID,
		})
	})
}

func (s *marketplaceService) Like(ctx context.Context, postID, userID int64, reactionType string) error {
	ctx, span := s.tracer.Start(ctx, "MarketplaceService.Like")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("post_id", postID),
		attribute.Int64("user_id", userID),
	)

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	blocked, err := s.shadowRepo.ExistsBlockedPair(ctx, userID, post.OwnerID)
	if err != nil {
		return err
	}
	if blocked {
		return domain.ErrBlocked
	}

	var added bool
	err = s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		ok, err := s.postRepo.AddReaction(ctx, tx, &domain.PostReaction{
			PostID:       postID,
			UserID:       userID,
			ReactionType: reactionType,
		})
		if err != nil {
			return err
		}
		added = ok

		return nil
	})
	if err != nil {
		return err
	}

	if added {
		s.publishDirect(ctx, events.PostLiked, "post", postID, &events.PostReactionPayload{
			PostID:       postID,
			OwnerID:      post.OwnerID,
			UserID:       userID,
			ReactionType: reactionType,
		})
	}

	return nil
}

func (s *marketplaceService) Unlike(ctx context.Context, postID, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "MarketplaceService.Unlike")
	defer span.End()

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	var removed bool
	err = s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		ok, err := s.postRepo.RemoveReaction(ctx, tx, postID, userID)
		if err != nil {
			return err
		}
		removed = ok

		return nil
	})
	if err != nil {
		return err
	}

	if removed {
		s.publishDirect(ctx, events.PostUnliked, "post", postID, &events.PostReactionPayload{
			PostID:  postID,
			OwnerID: post.OwnerID,
			UserID:  userID,
		})
	}

	return nil
}
