package events

// Event types. The routing key on the wire is the event type itself.
const (
	UserCreated   = "UserCreated"
	UserDeleted   = "UserDeleted"
	UserBlocked   = "UserBlocked"
	UserUnblocked = "UserUnblocked"

	FriendshipCreated      = "FriendshipCreated"
	FriendshipRemoved      = "FriendshipRemoved"
	FollowCreated          = "FollowCreated"
	FollowRemoved          = "FollowRemoved"
	FriendRequestCreated   = "FriendRequestCreated"
	FriendRequestCancelled = "FriendRequestCancelled"

	PostLiked   = "PostLiked"
	PostUnliked = "PostUnliked"
	PostDeleted = "PostDeleted"

	MessageSent = "MessageSent"
)

// Topics. One per bounded context's inbound stream.
const (
	TopicUserLifecycle    = "user.lifecycle"
	TopicSocialBlock      = "social.block"
	TopicSocialFriendship = "social.friendship"
	TopicSocialFollow     = "social.follow"
	TopicContentReaction  = "content.reaction"
	TopicChatMessage      = "chat.message"
)

var topicByEventType = map[string]string{
	UserCreated:   TopicUserLifecycle,
	UserDeleted:   TopicUserLifecycle,
	UserBlocked:   TopicSocialBlock,
	UserUnblocked: TopicSocialBlock,

	FriendshipCreated:      TopicSocialFriendship,
	FriendshipRemoved:      TopicSocialFriendship,
	FriendRequestCreated:   TopicSocialFriendship,
	FriendRequestCancelled: TopicSocialFriendship,
	FollowCreated:          TopicSocialFollow,
	FollowRemoved:          TopicSocialFollow,

	PostLiked:   TopicContentReaction,
	PostUnliked: TopicContentReaction,
	PostDeleted: TopicContentReaction,

	MessageSent: TopicChatMessage,
}

// TopicFor returns the broker topic an event type is routed to.
// Unknown types map to the empty string; callers must treat that as a bug
// on the producing side.
func TopicFor(eventType string) string {
	return topicByEventType[eventType]
}
