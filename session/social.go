package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nebula/models"
)

// Search runs a user search. Results of a query superseded by a newer one
// are dropped. The current user is never listed.
func (c *Controller) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	c.searchSeq++
	seq := c.searchSeq
	token := c.state.Token
	if query == "" || token == "" {
		c.state.SearchResults = nil
		c.mu.Unlock()
		c.notify(SectionSearch)
		if query != "" {
			return ErrNotAuthenticated
		}
		return nil
	}
	c.mu.Unlock()

	users, err := c.api.SearchUsers(ctx, query)

	c.mu.Lock()
	if seq != c.searchSeq {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}
	results := make([]models.User, 0, len(users))
	for _, u := range users {
		if c.state.User != nil && u.ID == c.state.User.ID {
			continue
		}
		results = append(results, u)
	}
	c.state.SearchResults = results
	c.mu.Unlock()

	c.notify(SectionSearch)
	return nil
}

// SendFriendRequest asks userID to become a friend
func (c *Controller) SendFriendRequest(ctx context.Context, userID int64) error {
	if !c.authed() {
		return ErrNotAuthenticated
	}
	if err := c.check(models.FriendRequestBody{ToUserID: userID}); err != nil {
		return err
	}
	return c.api.SendFriendRequest(ctx, userID)
}

// AcceptFriendRequest accepts a pending request and reloads both lists
func (c *Controller) AcceptFriendRequest(ctx context.Context, fromUserID int64) error {
	if !c.authed() {
		return ErrNotAuthenticated
	}
	if err := c.check(models.AcceptBody{FromUserID: fromUserID}); err != nil {
		return err
	}
	if err := c.api.AcceptFriendRequest(ctx, fromUserID); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Refresh reloads friends and pending requests
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.authed() {
		return nil
	}
	_, friendsErr := c.loadFriends(ctx)
	return errors.Join(friendsErr, c.loadRequests(ctx))
}

// CreateGroup creates a group with the named friends and opens it.
// Names that are not current friends are ignored.
func (c *Controller) CreateGroup(ctx context.Context, name string, memberUsernames []string) error {
	if !c.authed() {
		return ErrNotAuthenticated
	}
	name = strings.TrimSpace(name)
	if err := c.check(models.CreateGroupBody{Name: name}); err != nil {
		return err
	}

	friends, err := c.loadFriends(ctx)
	if err != nil {
		return err
	}
	ids := resolveMembers(friends, memberUsernames)

	group, err := c.api.CreateGroup(ctx, name, ids)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	groupsErr := c.loadGroups(ctx)
	return errors.Join(groupsErr, c.OpenGroup(ctx, models.Group{ID: group.ID, Name: group.Name}))
}

func resolveMembers(friends []models.Friend, usernames []string) []int64 {
	wanted := make(map[string]bool, len(usernames))
	for _, n := range usernames {
		if n = strings.TrimSpace(n); n != "" {
			wanted[n] = true
		}
	}
	ids := []int64{}
	for _, f := range friends {
		if wanted[f.Username] {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

func (c *Controller) authed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Token != "" && c.state.User != nil
}

// Loaders apply a response only if the session that issued it is still
// active.

func (c *Controller) loadFriends(ctx context.Context) ([]models.Friend, error) {
	token, ok := c.currentToken()
	if !ok {
		return nil, nil
	}
	friends, err := c.api.Friends(ctx)
	if err != nil {
		return nil, err
	}
	if c.apply(token, func(s *State) { s.Friends = friends }) {
		c.notify(SectionFriends)
	}
	return friends, nil
}

func (c *Controller) loadRequests(ctx context.Context) error {
	token, ok := c.currentToken()
	if !ok {
		return nil
	}
	reqs, err := c.api.FriendRequests(ctx)
	if err != nil {
		return err
	}
	if c.apply(token, func(s *State) { s.Requests = reqs }) {
		c.notify(SectionRequests)
	}
	return nil
}

func (c *Controller) loadGroups(ctx context.Context) error {
	token, ok := c.currentToken()
	if !ok {
		return nil
	}
	groups, err := c.api.Groups(ctx)
	if err != nil {
		return err
	}
	if c.apply(token, func(s *State) { s.Groups = groups }) {
		c.notify(SectionGroups)
	}
	return nil
}

func (c *Controller) currentToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Token, c.state.Token != ""
}

func (c *Controller) apply(token string, fn func(*State)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Token != token {
		return false
	}
	fn(&c.state)
	return true
}
