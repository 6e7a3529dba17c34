package repository

import (
	"context"
	"errors"

	"github.com/emailam/Petzania-sub000/internal/social/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type FriendshipRepository interface {
	CreateFriendship(ctx context.Context, tx pgx.Tx, user1, user2 int64) (int64, error)
	DeleteFriendship(ctx context.Context, tx pgx.Tx, user1, user2 int64) (bool, error)
	DeleteFriendshipsForUser(ctx context.Context, tx pgx.Tx, userID int64) error
	NumberOfFriends(ctx context.Context, userID int64) (int64, error)

	CreateFriendRequest(ctx context.Context, tx pgx.Tx, sender, receiver int64) (int64, error)
	GetFriendRequest(ctx context.Context, tx pgx.Tx, sender, receiver int64) (*domain.FriendRequest, error)
	DeleteFriendRequest(ctx context.Context, tx pgx.Tx, sender, receiver int64) (bool, error)
	DeleteFriendRequestsBetween(ctx context.Context, tx pgx.Tx, a, b int64) error
	DeleteFriendRequestsForUser(ctx context.Context, tx pgx.Tx, userID int64) error

	CreateFollow(ctx context.Context, tx pgx.Tx, follower, followed int64) (int64, error)
	DeleteFollow(ctx context.Context, tx pgx.Tx, follower, followed int64) (bool, error)
	DeleteFollowsBetween(ctx context.Context, tx pgx.Tx, a, b int64) error
	DeleteFollowsForUser(ctx context.Context, tx pgx.Tx, userID int64) error

	CreateBlock(ctx context.Context, tx pgx.Tx, blocker, blocked int64) (int64, error)
	DeleteBlock(ctx context.Context, tx pgx.Tx, blocker, blocked int64) (bool, error)
	DeleteBlocksForUser(ctx context.Context, tx pgx.Tx, userID int64) error
	ExistsBlockBetween(ctx context.Context, a, b int64) (bool, error)
}

type friendshipRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewFriendshipRepository(pool *pgxpool.Pool, logger *zap.Logger) FriendshipRepository {
	return &friendshipRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("friendship_repository"),
	}
}

// CreateFriendship inserts the canonical pair. Idempotent: a second insert
// of the same pair returns the existing row's id.
func (r *friendshipRepo) CreateFriendship(ctx context.Context, tx pgx.Tx, user1, user2 int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "FriendshipRepository.CreateFriendship")
	defer span.End()

	u1, u2 := domain.CanonicalPair(user1, user2)

	span.SetAttributes(
		attribute.Int64("user1_id", u1),
		attribute.Int64("user2_id", u2),
	)

	query := `
		INSERT INTO friendships (user1_id, user2_id)
		VALUES ($1, $2)
		ON CONFLICT (user1_id, user2_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, query, u1, u2).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Pair already exists; fetch its id.
			err = tx.QueryRow(ctx,
				`SELECT id FROM friendships WHERE user1_id = $1 AND user2_id = $2`,
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

	return id, nil
}

func (r *friendshipRepo) DeleteFriendship(ctx context.Context, tx pgx.Tx, user1, user2 int64) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "FriendshipRepository.DeleteFriendship")
	defer span.End()

	u1, u2 := domain.CanonicalPair(user1, user2)

	query := `
		DELETE FROM friendships
		WHERE user1_id = $1 AND user2_id = $2
	`

	tag, err := tx.Exec(ctx, query, u1, u2)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *friendshipRepo) DeleteFriendshipsForUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	ctx, span := r.tracer.Start(ctx, "FriendshipRepository.DeleteFriendshipsForUser")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	query := `
		DELETE FROM friendships
		WHERE user1_id = $1 OR user2_id = $1
	`

	_, err := tx.Exec(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r *friendshipRepo) NumberOfFriends(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT COUNT(*) FROM friendships
		WHERE user1_id = $1 OR user2_id = $1
	`

	var count int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *friendshipRepo) CreateFriendRequest(ctx context.Context, tx pgx.Tx, sender, receiver int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "FriendshipRepository.CreateFriendRequest")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("sender_id", sender),
		attribute.Int64("receiver_id", receiver),
	)

	query := `
		INSERT INTO friend_requests (sender_id, receiver_id)
		VALUES ($1, $2)
		ON CONFLICT (sender_id, receiver_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, query, sender, receiver).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrRequestPending
		}

		span.RecordError(err)
		return 0, err
	}

	return id, nil
}

func (r *friendshipRepo) GetFriendRequest(ctx context.Context, tx pgx.Tx, sender, receiver int64) (*domain.FriendRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, created_at
		FROM friend_requests
		WHERE sender_id = $1 AND receiver_id = $2
	`

	var req domain.FriendRequest
	err := tx.QueryRow(ctx, query, sender, receiver).Scan(
		&req.ID,
		&req.SenderID,
		&req.ReceiverID,
		&req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}

		return nil, err
	}

	return &req, nil
}

func (r *friendshipRepo) DeleteFriendRequest(ctx context.Context, tx pgx.Tx, sender, receiver int64) (bool, error) {
	query := `
		DELETE FROM friend_requests
		WHERE sender_id = $1 AND receiver_id = $2
	`

	tag, err := tx.Exec(ctx, query, sender, receiver)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *friendshipRepo) DeleteFriendRequestsBetween(ctx context.Context, tx pgx.Tx, a, b int64) error {
	query := `
		DELETE FROM friend_requests
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
	`

	_, err := tx.Exec(ctx, query, a, b)
	return err
}

func (r *friendshipRepo) DeleteFriendRequestsForUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	ctx, span := r.tracer.Start(ctx, "FriendshipRepository.DeleteFriendRequestsForUser")
	defer span.End()

	query := `
		DELETE FROM friend_requests
		WHERE sender_id = $1 OR receiver_id = $1
	`

	_, err := tx.Exec(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r *friendshipRepo) CreateFollow(ctx context.Context, tx pgx.Tx, follower, followed int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "FriendshipRepository.CreateFollow")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("follower_id", follower),
		attribute.Int64("followed_id", followed),
	)

	query := `
		INSERT INTO follows (follower_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, query, follower, followed).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = tx.QueryRow(ctx,
				`SELECT id FROM follows WHERE follower_id = $1 AND followed_id = $2`,
				follower, followed,
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

	return id, nil
}

func (r *friendshipRepo) DeleteFollow(ctx context.Context, tx pgx.Tx, follower, followed int64) (bool, error) {
	query := `
		DELETE FROM follows
		WHERE follower_id = $1 AND followed_id = $2
	`

	tag, err := tx.Exec(ctx, query, follower, followed)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *friendshipRepo) DeleteFollowsBetween(ctx context.Context, tx pgx.Tx, a, b int64) error {
	query := `
		DELETE FROM follows
		WHERE (follower_id = $1 AND followed_id = $2)
		   OR (follower_id = $2 AND followed_id = $1)
	`

	_, err := tx.Exec(ctx, query, a, b)
	return err
}

func (r *friendshipRepo) DeleteFollowsForUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	ctx, span := r.tracer.Start(ctx, "FriendshipRepository.DeleteFollowsForUser")
	defer span.End()

	query := `
		DELETE FROM follows
		WHERE follower_id = $1 OR followed_id = $1
	`

	_, err := tx.Exec(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r *friendshipRepo) CreateBlock(ctx context.Context, tx pgx.Tx, blocker, blocked int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "FriendshipRepository.CreateBlock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("blocker_id", blocker),
		attribute.Int64("blocked_id", blocked),
	)

	query := `
		INSERT INTO blocks (blocker_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, query, blocker, blocked).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = tx.QueryRow(ctx,
				`SELECT id FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`,
				blocker, blocked,
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

	return id, nil
}

func (r *friendshipRepo) DeleteBlock(ctx context.Context, tx pgx.Tx, blocker, blocked int64) (bool, error) {
	query := `
		DELETE FROM blocks
		WHERE blocker_id = $1 AND blocked_id = $2
	`

	tag, err := tx.Exec(ctx, query, blocker, blocked)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *friendshipRepo) DeleteBlocksForUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	ctx, span := r.tracer.Start(ctx, "FriendshipRepository.DeleteBlocksForUser")
	defer span.End()

	query := `
		DELETE FROM blocks
		WHERE blocker_id = $1 OR blocked_id = $1
	`

	_, err := tx.Exec(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

// ExistsBlockBetween reports whether either direction of a block exists.
// Runs on the pool, not a transaction: it backs authorization checks on the
// hot path.
func (r *friendshipRepo) ExistsBlockBetween(ctx context.Context, a, b int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, a, b).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}
