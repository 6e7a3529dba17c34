package domain

import (
	"errors"
	"time"
)

type Post struct {
	ID            int64     `db:"id"`
	OwnerID       int64     `db:"owner_id"`
	Title         string    `db:"title" validate:"required,min=3,max=120"`
	Body          string    `db:"body" validate:"required"`
	ReactionCount int64     `db:"reaction_count"`
	CreatedAt     time.Time `db:"created_at"`
}

type PostReaction struct {
	ID           int64     `db:"id"`
	PostID       int64     `db:"post_id"`
	UserID       int64     `db:"user_id"`
	ReactionType string    `db:"reaction_type"`
	CreatedAt    time.Time `db:"created_at"`
}

// BlockedPair is the marketplace's shadow of a social-service block. Only
// the pair matters here; it gates reactions between the two users.
type BlockedPair struct {
	BlockerID int64 `db:"blocker_id"`
	BlockedID int64 `db:"blocked_id"`
}

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotOwner     = errors.New("user does not own this post")
	ErrBlocked      = errors.New("action not allowed between blocked users")
)
