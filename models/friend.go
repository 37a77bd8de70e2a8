package models

// Friend is a confirmed friend of the active user
type Friend = User

// FriendRequest represents an incoming friend request
type FriendRequest struct {
	FromUserID   int64  `json:"fromUserId"`
	FromUsername string `json:"fromUsername"`
}

// FriendRequestBody asks the server to send a request to another user
type FriendRequestBody struct {
	ToUserID int64 `json:"toUserId" validate:"required"`
}

// AcceptBody accepts a pending request
type AcceptBody struct {
	FromUserID int64 `json:"fromUserId" validate:"required"`
}
