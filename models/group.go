package models

// Group represents a chat group
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateGroupBody creates a group with the given members
type CreateGroupBody struct {
	Name      string  `json:"name" validate:"required,max=100"`
	MemberIDs []int64 `json:"memberIds"`
}

// SendGroupMessageBody posts a message into a group
type SendGroupMessageBody struct {
	GroupID int64  `json:"groupId" validate:"required"`
	Content string `json:"content" validate:"required"`
}
