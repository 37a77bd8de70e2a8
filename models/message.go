package models

import "encoding/json"

// Message is a direct or group chat message. Exactly one of ToUserID and
// GroupID is set.
type Message struct {
	ID         int64     `json:"id,omitempty"`
	FromUserID int64     `json:"fromUserId"`
	ToUserID   int64     `json:"toUserId,omitempty"`
	GroupID    int64     `json:"groupId,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  Timestamp `json:"createdAt"`
}

// SendMessageBody posts a direct message
type SendMessageBody struct {
	ToUserID int64  `json:"toUserId" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// Push channel event names
const (
	EventConnected      = "connected"
	EventMessageNew     = "message:new"
	EventFriendRequest  = "friend:request"
	EventFriendAccepted = "friend:accepted"
	EventGroupCreated   = "group:created"
	EventGroupMessage   = "group:message"
)

// Event is the push channel frame
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrorResponse is the JSON error body used by the API
type ErrorResponse struct {
	Error string `json:"error"`
}
