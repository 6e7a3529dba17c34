package events

import "time"

// Payloads carry a snapshot sufficient to apply the event locally without
// calling back to the owning service.

type UserCreatedPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UserDeletedPayload struct {
	UserID int64 `json:"user_id"`
}

type UserBlockedPayload struct {
	BlockID   int64 `json:"block_id"`
	BlockerID int64 `json:"blocker_id"`
	BlockedID int64 `json:"blocked_id"`
}

type UserUnblockedPayload struct {
	BlockerID int64 `json:"blocker_id"`
	BlockedID int64 `json:"blocked_id"`
}

type FriendshipPayload struct {
	FriendshipID int64 `json:"friendship_id"`
	User1ID      int64 `json:"user1_id"`
	User2ID      int64 `json:"user2_id"`
}

type FollowPayload struct {
	FollowID   int64 `json:"follow_id"`
	FollowerID int64 `json:"follower_id"`
	FollowedID int64 `json:"followed_id"`
}

type FriendRequestPayload struct {
	RequestID  int64 `json:"request_id"`
	SenderID   int64 `json:"sender_id"`
	ReceiverID int64 `json:"receiver_id"`
}

type PostReactionPayload struct {
	PostID       int64  `json:"post_id"`
	OwnerID      int64  `json:"owner_id"`
	UserID       int64  `json:"user_id"`
	ReactionType string `json:"reaction_type,omitempty"`
}

type PostDeletedPayload struct {
	PostID  int64 `json:"post_id"`
	OwnerID int64 `json:"owner_id"`
}

type MessageSentPayload struct {
	MessageID   int64     `json:"message_id"`
	ChatID      int64     `json:"chat_id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	SentAt      time.Time `json:"sent_at"`
}
