package domain

import "time"

// User is the local shadow of a registration-owned user. It exists so
// relationship rows have something to hang off before any profile data is
// needed; it is created by UserCreated and removed by the UserDeleted
// cascade.
type User struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

// Friendship stores the pair in canonical order: User1ID < User2ID. That
// keeps a pair from existing in both orders.
type Friendship struct {
	ID        int64     `db:"id"`
	User1ID   int64     `db:"user1_id"`
	User2ID   int64     `db:"user2_id"`
	CreatedAt time.Time `db:"created_at"`
}

type FriendRequest struct {
	ID         int64     `db:"id"`
	SenderID   int64     `db:"sender_id"`
	ReceiverID int64     `db:"receiver_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type Follow struct {
	ID         int64     `db:"id"`
	FollowerID int64     `db:"follower_id"`
	FollowedID int64     `db:"followed_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// Block is directional. Both directions may coexist (mutual block).
type Block struct {
	ID        int64     `db:"id"`
	BlockerID int64     `db:"blocker_id"`
	BlockedID int64     `db:"blocked_id"`
	CreatedAt time.Time `db:"created_at"`
}

type Chat struct {
	ID      int64 `db:"id"`
	User1ID int64 `db:"user1_id"`
	User2ID int64 `db:"user2_id"`
}

type UserChat struct {
	ChatID int64 `db:"chat_id"`
	UserID int64 `db:"user_id"`
	Pinned bool  `db:"pinned"`
	Muted  bool  `db:"muted"`
	Unread int32 `db:"unread"`
}

type Message struct {
	ID       int64     `db:"id"`
	ChatID   int64     `db:"chat_id"`
	SenderID int64     `db:"sender_id"`
	Content  string    `db:"content"`
	ReplyTo  *int64    `db:"reply_to"`
	Status   string    `db:"status"`
	IsFile   bool      `db:"is_file"`
	IsEdited bool      `db:"is_edited"`
	SentAt   time.Time `db:"sent_at"`
}

type MessageReaction struct {
	ID           int64  `db:"id"`
	MessageID    int64  `db:"message_id"`
	UserID       int64  `db:"user_id"`
	ReactionType string `db:"reaction_type"`
}

// CanonicalPair orders two user ids so friendship keys are direction-free.
func CanonicalPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}
