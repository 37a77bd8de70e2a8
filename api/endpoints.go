package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"nebula/models"
)

// Register creates a user and returns its first token
func (c *Client) Register(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.Call(ctx, http.MethodPost, "/api/register", models.Credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.Call(ctx, http.MethodPost, "/api/login", models.Credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchUsers looks users up by username fragment
func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	users := []models.User{}
	err := c.Call(ctx, http.MethodGet, "/api/users/search?q="+url.QueryEscape(query), nil, &users)
	return users, err
}

// SendFriendRequest sends a request to another user
func (c *Client) SendFriendRequest(ctx context.Context, toUserID int64) error {
	return c.Call(ctx, http.MethodPost, "/api/friends/request", models.FriendRequestBody{ToUserID: toUserID}, nil)
}

// AcceptFriendRequest accepts a pending request
func (c *Client) AcceptFriendRequest(ctx context.Context, fromUserID int64) error {
	return c.Call(ctx, http.MethodPost, "/api/friends/accept", models.AcceptBody{FromUserID: fromUserID}, nil)
}

// Friends lists the current user's friends
func (c *Client) Friends(ctx context.Context) ([]models.Friend, error) {
	friends := []models.Friend{}
	err := c.Call(ctx, http.MethodGet, "/api/friends", nil, &friends)
	return friends, err
}

// FriendRequests lists pending incoming requests
func (c *Client) FriendRequests(ctx context.Context) ([]models.FriendRequest, error) {
	reqs := []models.FriendRequest{}
	err := c.Call(ctx, http.MethodGet, "/api/friends/requests", nil, &reqs)
	return reqs, err
}

// History returns the direct message history with a friend
func (c *Client) History(ctx context.Context, friendID int64) ([]models.Message, error) {
	msgs := []models.Message{}
	err := c.Call(ctx, http.MethodGet, "/api/messages/history/"+strconv.FormatInt(friendID, 10), nil, &msgs)
	return msgs, err
}

// SendMessage posts a direct message. Delivery comes back on the push channel.
func (c *Client) SendMessage(ctx context.Context, toUserID int64, content string) error {
	return c.Call(ctx, http.MethodPost, "/api/messages/send", models.SendMessageBody{ToUserID: toUserID, Content: content}, nil)
}

// CreateGroup creates a group with the given members
func (c *Client) CreateGroup(ctx context.Context, name string, memberIDs []int64) (*models.Group, error) {
	if memberIDs == nil {
		memberIDs = []int64{}
	}
	var group models.Group
	err := c.Call(ctx, http.MethodPost, "/api/groups/create", models.CreateGroupBody{Name: name, MemberIDs: memberIDs}, &group)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// Groups lists the groups the current user belongs to
func (c *Client) Groups(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}
	err := c.Call(ctx, http.MethodGet, "/api/groups", nil, &groups)
	return groups, err
}

// GroupHistory returns a group's message history
func (c *Client) GroupHistory(ctx context.Context, groupID int64) ([]models.Message, error) {
	msgs := []models.Message{}
	err := c.Call(ctx, http.MethodGet, "/api/groups/history/"+strconv.FormatInt(groupID, 10), nil, &msgs)
	return msgs, err
}

// SendGroupMessage posts a group message. Delivery comes back on the push channel.
func (c *Client) SendGroupMessage(ctx context.Context, groupID int64, content string) error {
	return c.Call(ctx, http.MethodPost, "/api/groups/send", models.SendGroupMessageBody{GroupID: groupID, Content: content}, nil)
}
