package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrChatNotFound    = errors.New("chat not found")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrMessageNotFound = errors.New("message not found in this chat")
	ErrBlocked         = errors.New("action not allowed between blocked users")
	ErrSelfAction      = errors.New("action not allowed on yourself")
	ErrAlreadyFriends  = errors.New("users are already friends")
	ErrRequestPending  = errors.New("friend request already pending")
)
