package repository

import (
	"context"
	"errors"

	"github.com/emailam/Petzania-sub000/internal/marketplace/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type PostRepository interface {
	CreatePost(ctx context.Context, tx pgx.Tx, post *domain.Post) (int64, error)
	GetPost(ctx context.Context, postID int64) (*domain.Post, error)
	DeletePost(ctx context.Context, tx pgx.Tx, postID int64) (bool, error)
	PostIDsForOwner(ctx context.Context, tx pgx.Tx, ownerID int64) ([]int64, error)

	AddReaction(ctx context.Context, tx pgx.Tx, reaction *domain.PostReaction) (bool, error)
	RemoveReaction(ctx context.Context, tx pgx.Tx, postID, userID int64) (bool, error)
	DeleteReactionsForPost(ctx context.Context, tx pgx.Tx, postID int64) error
	DeleteReactionsByUser(ctx context.Context, tx pgx.Tx, userID int64) error
}

type postRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewPostRepository(pool *pgxpool.Pool, logger *zap.Logger) PostRepository {
	return &postRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("post_repository"),
	}
}

func (r *postRepo) CreatePost(ctx context.Context, tx pgx.Tx, post *domain.Post) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "PostRepository.CreatePost")
	defer span.End()

	span.SetAttributes(attribute.Int64("owner_id", post.OwnerID))

	query := `
		INSERT INTO posts (owner_id, title, body)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, query, post.OwnerID, post.Title, post.Body).Scan(&id)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	return id, nil
}

func (r *postRepo) GetPost(ctx context.Context, postID int64) (*domain.Post, error) {
	query := `
		SELECT id, owner_id, title, body, reaction_count, created_at
		FROM posts
		WHERE id = $1
	`

	var post domain.Post
	err := r.pool.QueryRow(ctx, query, postID).Scan(
		&post.ID,
		&post.OwnerID,
		&post.Title,
		&post.Body,
		&post.ReactionCount,
		&post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}

		return nil, err
	}

	return &post, nil
}

func (r *postRepo) DeletePost(ctx context.Context, tx pgx.Tx, postID int64) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "PostRepository.DeletePost")
	defer span.End()

	span.SetAttributes(attribute.Int64("post_id", postID))

	query := `
		DELETE FROM posts
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, postID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *postRepo) PostIDsForOwner(ctx context.Context, tx pgx.Tx, ownerID int64) ([]int64, error) {
	query := `
		SELECT id FROM posts
		WHERE owner_id = $1
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// AddReaction inserts the reaction and bumps the denormalized counter.
// Returns false when the user had already reacted.
func (r *postRepo) AddReaction(ctx context.Context, tx pgx.Tx, reaction *domain.PostReaction) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "PostRepository.AddReaction")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("post_id", reaction.PostID),
		attribute.Int64("user_id", reaction.UserID),
	)

	query := `
		INSERT INTO post_reactions (post_id, user_id, reaction_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, reaction.PostID, reaction.UserID, reaction.ReactionType)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}

	bump := `
		UPDATE posts SET reaction_count = reaction_count + 1 WHERE id = $1
	`

	if _, err := tx.Exec(ctx, bump, reaction.PostID); err != nil {
		span.RecordError(err)
		return false, err
	}

	return true, nil
}

func (r *postRepo) RemoveReaction(ctx context.Context, tx pgx.Tx, postID, userID int64) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "PostRepository.RemoveReaction")
	defer span.End()

	query := `
		DELETE FROM post_reactions
		WHERE post_id = $1 AND user_id = $2
	`

	tag, err := tx.Exec(ctx, query, postID, userID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}

	drop := `
		UPDATE posts SET reaction_count = GREATEST(reaction_count - 1, 0) WHERE id = $1
	`

	if _, err := tx.Exec(ctx, drop, postID); err != nil {
		span.RecordError(err)
		return false, err
	}

	return true, nil
}

func (r *postRepo) DeleteReactionsForPost(ctx context.Context, tx pgx.Tx, postID int64) error {
	query := `
		DELETE FROM post_reactions
		WHERE post_id = $1
	`

	_, err := tx.Exec(ctx, query, postID)
	return err
}

// DeleteReactionsByUser removes a user's reactions on other users' posts and
// keeps the owners' counters in step.
func (r *postRepo) DeleteReactionsByUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	ctx, span := r.tracer.Start(ctx, "PostRepository.DeleteReactionsByUser")
	defer span.End()

	decrement := `
		UPDATE posts
		SET reaction_count = GREATEST(reaction_count - 1, 0)
		WHERE id IN (SELECT post_id FROM post_reactions WHERE user_id = $1)
	`

	if _, err := tx.Exec(ctx, decrement, userID); err != nil {
		span.RecordError(err)
		return err
	}

	query := `
		DELETE FROM post_reactions
		WHERE user_id = $1
	`

	_, err := tx.Exec(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
	}

	return err
}
