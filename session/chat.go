package session

import (
	"context"
	"fmt"
	"log"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"nebula/models"
)

// payloads share the envelope codec used by realtime
var payloadCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// OpenChat makes friend the active conversation and loads its history.
// A history response is dropped if another conversation was opened since.
func (c *Controller) OpenChat(ctx context.Context, friend models.Friend) error {
	c.mu.Lock()
	if c.state.Token == "" {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	f := friend
	c.state.clearConversation()
	c.state.Open = ChatDirect
	c.state.ActiveFriend = &f
	c.mu.Unlock()
	c.notify(SectionMessages, SectionGate)

	history, err := c.api.History(ctx, friend.ID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	c.mu.Lock()
	applied := c.state.Open == ChatDirect && c.state.ActiveFriend != nil && c.state.ActiveFriend.ID == friend.ID
	if applied {
		c.state.Messages = history
	}
	c.mu.Unlock()
	if applied {
		c.notify(SectionMessages)
	}
	return nil
}

// OpenGroup makes group the active conversation and loads its history
func (c *Controller) OpenGroup(ctx context.Context, group models.Group) error {
	c.mu.Lock()
	if c.state.Token == "" {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	g := group
	c.state.clearConversation()
	c.state.Open = ChatGroup
	c.state.ActiveGroup = &g
	c.mu.Unlock()
	c.notify(SectionMessages, SectionGate)

	history, err := c.api.GroupHistory(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("failed to load group history: %w", err)
	}

	c.mu.Lock()
	applied := c.state.Open == ChatGroup && c.state.ActiveGroup != nil && c.state.ActiveGroup.ID == group.ID
	if applied {
		c.state.GroupMessages = history
	}
	c.mu.Unlock()
	if applied {
		c.notify(SectionMessages)
	}
	return nil
}

// SendMessage posts content to the active friend. Blank content or no open
// chat does nothing. The message is rendered when the server echoes it.
func (c *Controller) SendMessage(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	c.mu.Lock()
	var to int64
	if c.state.Open == ChatDirect && c.state.ActiveFriend != nil {
		to = c.state.ActiveFriend.ID
	}
	c.mu.Unlock()
	if content == "" || to == 0 {
		return nil
	}

	if err := c.check(models.SendMessageBody{ToUserID: to, Content: content}); err != nil {
		return err
	}
	if err := c.api.SendMessage(ctx, to, content); err != nil {
		return fmt.Errorf("failed to send: %w", err)
	}
	return nil
}

// SendGroupMessage posts content to the open group
func (c *Controller) SendGroupMessage(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	c.mu.Lock()
	var groupID int64
	if c.state.Open == ChatGroup && c.state.ActiveGroup != nil {
		groupID = c.state.ActiveGroup.ID
	}
	c.mu.Unlock()
	if content == "" || groupID == 0 {
		return nil
	}

	if err := c.check(models.SendGroupMessageBody{GroupID: groupID, Content: content}); err != nil {
		return err
	}
	if err := c.api.SendGroupMessage(ctx, groupID, content); err != nil {
		return fmt.Errorf("failed to send: %w", err)
	}
	return nil
}

// Send routes content to whichever conversation is open
func (c *Controller) Send(ctx context.Context, content string) error {
	c.mu.Lock()
	open := c.state.Open
	c.mu.Unlock()
	if open == ChatGroup {
		return c.SendGroupMessage(ctx, content)
	}
	return c.SendMessage(ctx, content)
}

// HandleEvent applies one push event. Failures are logged.
func (c *Controller) HandleEvent(ctx context.Context, ev models.Event) {
	switch ev.Type {
	case models.EventConnected:
		log.Println("Push channel connected")
	case models.EventMessageNew:
		var msg models.Message
		if err := payloadCodec.Unmarshal(ev.Payload, &msg); err != nil {
			log.Printf("Bad %s payload: %v", ev.Type, err)
			return
		}
		c.appendDirect(msg)
	case models.EventGroupMessage:
		var msg models.Message
		if err := payloadCodec.Unmarshal(ev.Payload, &msg); err != nil {
			log.Printf("Bad %s payload: %v", ev.Type, err)
			return
		}
		c.appendGroup(msg)
	case models.EventFriendRequest:
		if err := c.loadRequests(ctx); err != nil {
			log.Printf("Failed to reload requests: %v", err)
		}
	case models.EventFriendAccepted:
		if _, err := c.loadFriends(ctx); err != nil {
			log.Printf("Failed to reload friends: %v", err)
		}
	case models.EventGroupCreated:
		if err := c.loadGroups(ctx); err != nil {
			log.Printf("Failed to reload groups: %v", err)
		}
	default:
		log.Printf("Ignoring event %q", ev.Type)
	}
}

func (c *Controller) appendDirect(msg models.Message) {
	c.mu.Lock()
	s := &c.state
	ok := s.Open == ChatDirect && s.ActiveFriend != nil && s.User != nil &&
		((msg.FromUserID == s.ActiveFriend.ID && msg.ToUserID == s.User.ID) ||
			(msg.FromUserID == s.User.ID && msg.ToUserID == s.ActiveFriend.ID))
	if ok {
		s.Messages = append(s.Messages, msg)
	}
	c.mu.Unlock()
	if ok {
		c.notify(SectionMessages)
	}
}

func (c *Controller) appendGroup(msg models.Message) {
	c.mu.Lock()
	s := &c.state
	ok := s.Open == ChatGroup && s.ActiveGroup != nil && msg.GroupID == s.ActiveGroup.ID
	if ok {
		s.GroupMessages = append(s.GroupMessages, msg)
	}
	c.mu.Unlock()
	if ok {
		c.notify(SectionMessages)
	}
}
