package view

import (
	"time"

	"nebula/models"
	"nebula/session"
)

// TimeLayout is how message times are shown
const TimeLayout = "15:04:05"

// AccountRow is one stored account in the switcher
type AccountRow struct {
	Index    int
	Username string
	Active   bool
	Owner    bool
}

// UserRow is a friend or a search hit
type UserRow struct {
	ID       int64
	Username string
	Owner    bool
	Action   string
}

// RequestRow is a pending friend request
type RequestRow struct {
	FromUserID   int64
	FromUsername string
	Action       string
}

// GroupRow is a group the user belongs to
type GroupRow struct {
	ID     int64
	Name   string
	Active bool
	Action string
}

// MessageRow is one rendered message
type MessageRow struct {
	Author  string
	Owner   bool
	Own     bool
	Time    string
	Content string
}

// Row action labels
const (
	ActionOpenChat  = "open chat"
	ActionAccept    = "accept"
	ActionOpenGroup = "open"
	ActionAdd       = "add"
)

// Accounts lists stored accounts, marking the active one
func Accounts(s session.State) []AccountRow {
	rows := make([]AccountRow, 0, len(s.Accounts))
	for i, acc := range s.Accounts {
		rows = append(rows, AccountRow{
			Index:    i,
			Username: acc.User.Username,
			Active:   i == s.ActiveIndex,
			Owner:    models.IsOwner(acc.User.Username),
		})
	}
	return rows
}

// Friends lists friends with the open-chat action
func Friends(s session.State) []UserRow {
	return userRows(s.Friends, ActionOpenChat)
}

// SearchResults lists search hits with the add action
func SearchResults(s session.State) []UserRow {
	return userRows(s.SearchResults, ActionAdd)
}

func userRows(users []models.User, action string) []UserRow {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{ID: u.ID, Username: u.Username, Owner: models.IsOwner(u.Username), Action: action})
	}
	return rows
}

// Requests lists pending friend requests
func Requests(s session.State) []RequestRow {
	rows := make([]RequestRow, 0, len(s.Requests))
	for _, r := range s.Requests {
		rows = append(rows, RequestRow{FromUserID: r.FromUserID, FromUsername: r.FromUsername, Action: ActionAccept})
	}
	return rows
}

// Groups lists groups, marking the open one
func Groups(s session.State) []GroupRow {
	rows := make([]GroupRow, 0, len(s.Groups))
	for _, g := range s.Groups {
		active := s.Open == session.ChatGroup && s.ActiveGroup != nil && s.ActiveGroup.ID == g.ID
		rows = append(rows, GroupRow{ID: g.ID, Name: g.Name, Active: active, Action: ActionOpenGroup})
	}
	return rows
}

// Messages projects the open conversation in list order. Times are shown
// in loc; a nil loc means time.Local.
func Messages(s session.State, loc *time.Location) []MessageRow {
	if loc == nil {
		loc = time.Local
	}
	switch s.Open {
	case session.ChatDirect:
		return directRows(s, loc)
	case session.ChatGroup:
		return groupRows(s, loc)
	}
	return nil
}

func directRows(s session.State, loc *time.Location) []MessageRow {
	rows := make([]MessageRow, 0, len(s.Messages))
	for _, m := range s.Messages {
		own := s.User != nil && m.FromUserID == s.User.ID
		author := "You"
		if !own {
			author = ""
			if s.ActiveFriend != nil {
				author = s.ActiveFriend.Username
			}
		}
		rows = append(rows, MessageRow{
			Author:  author,
			Owner:   models.IsOwner(author),
			Own:     own,
			Time:    m.CreatedAt.In(loc).Format(TimeLayout),
			Content: m.Content,
		})
	}
	return rows
}

func groupRows(s session.State, loc *time.Location) []MessageRow {
	names := make(map[int64]string, len(s.Friends)+len(s.Accounts))
	for _, f := range s.Friends {
		names[f.ID] = f.Username
	}
	owners := make(map[int64]bool, len(s.Accounts))
	for _, acc := range s.Accounts {
		names[acc.User.ID] = acc.User.Username
		owners[acc.User.ID] = models.IsOwner(acc.User.Username)
	}

	rows := make([]MessageRow, 0, len(s.GroupMessages))
	for _, m := range s.GroupMessages {
		own := s.User != nil && m.FromUserID == s.User.ID
		author, ok := names[m.FromUserID]
		switch {
		case own:
			author = "You"
		case !ok:
			author = "Member"
		}
		rows = append(rows, MessageRow{
			Author:  author,
			Owner:   owners[m.FromUserID],
			Own:     own,
			Time:    m.CreatedAt.In(loc).Format(TimeLayout),
			Content: m.Content,
		})
	}
	return rows
}

// ChatTitle names the open conversation, or "" when none is open
func ChatTitle(s session.State) string {
	switch {
	case s.Open == session.ChatDirect && s.ActiveFriend != nil:
		return "Chat with " + s.ActiveFriend.Username
	case s.Open == session.ChatGroup && s.ActiveGroup != nil:
		return "Group: " + s.ActiveGroup.Name
	}
	return ""
}
