package domain

import "time"

const (
	TypeFriendRequest = "friend_request"
	TypeFriendship    = "friendship"
	TypeFollow        = "follow"
	TypePostLike      = "post_like"
	TypeMessage       = "message"
)

const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

type Notification struct {
	ID          int64     `db:"id"`
	RecipientID int64     `db:"recipient_id"`
	InitiatorID int64     `db:"initiator_id"`
	Type        string    `db:"type"`
	EntityID    int64     `db:"entity_id"`
	Message     string    `db:"message"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}
