package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"nebula/models"
	"nebula/session"
)

const helpText = "/register u p  /login u p  /accounts  /switch N  /add  /search q  " +
	"/request ID|name  /accept ID|name  /refresh  /chat name|ID  /group name [a,b]  /open name|ID  /quit"

// Session is what the front end drives
type Session interface {
	Start(ctx context.Context) error
	Snapshot() session.State
	SwitchAccount(ctx context.Context, index int) error
	AddAccountMode(ctx context.Context) error
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Search(ctx context.Context, query string) error
	SendFriendRequest(ctx context.Context, userID int64) error
	AcceptFriendRequest(ctx context.Context, fromUserID int64) error
	Refresh(ctx context.Context) error
	OpenChat(ctx context.Context, friend models.Friend) error
	OpenGroup(ctx context.Context, group models.Group) error
	CreateGroup(ctx context.Context, name string, memberUsernames []string) error
	Send(ctx context.Context, content string) error
}

// statusMsg reports the outcome of a command
type statusMsg struct {
	text string
	err  error
}

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

// splitCommand splits "/name a b" into ("name", "a b")
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "/"))
	name, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(rest)
}

// dispatch turns one input line into a command. Session calls always run
// inside the returned tea.Cmd, off the Update loop.
func (m Model) dispatch(line string) tea.Cmd {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return m.runDone("", func(ctx context.Context) error { return m.sess.Send(ctx, line) })
	}

	name, rest := splitCommand(line)
	args := strings.Fields(rest)
	s := m.state

	switch name {
	case "help":
		return status(helpText, nil)
	case "quit", "exit":
		return tea.Quit
	case "register", "login":
		if len(args) != 2 {
			return status("", usage("/"+name+" <username> <password>"))
		}
		if name == "register" {
			return m.run(func(ctx context.Context) (string, error) {
				if err := m.sess.Register(ctx, args[0], args[1]); err != nil {
					return "", err
				}
				return "Registered as " + m.sess.Snapshot().LastRegistered, nil
			})
		}
		return m.runDone("Logged in as "+args[0], func(ctx context.Context) error {
			return m.sess.Login(ctx, args[0], args[1])
		})
	case "accounts":
		names := make([]string, 0, len(s.Accounts))
		for i, acc := range s.Accounts {
			names = append(names, fmt.Sprintf("%d:%s", i, acc.User.Username))
		}
		if len(names) == 0 {
			return status("No stored accounts", nil)
		}
		return status(strings.Join(names, "  "), nil)
	case "switch":
		idx, err := strconv.Atoi(rest)
		if err != nil || idx < 0 || idx >= len(s.Accounts) {
			return status("", usage("/switch <account number>"))
		}
		return m.runDone("Switched to "+s.Accounts[idx].User.Username, func(ctx context.Context) error {
			return m.sess.SwitchAccount(ctx, idx)
		})
	case "add":
		return m.runDone("Ready to add an account", m.sess.AddAccountMode)
	case "search":
		return m.runDone("", func(ctx context.Context) error { return m.sess.Search(ctx, rest) })
	case "request":
		id, ok := resolveUser(rest, s.SearchResults)
		if !ok {
			return status("", usage("/request <user id or search result name>"))
		}
		return m.runDone("Friend request sent", func(ctx context.Context) error {
			return m.sess.SendFriendRequest(ctx, id)
		})
	case "accept":
		id, ok := resolveRequest(rest, s.Requests)
		if !ok {
			return status("", usage("/accept <user id or name>"))
		}
		return m.runDone("Friend request accepted", func(ctx context.Context) error {
			return m.sess.AcceptFriendRequest(ctx, id)
		})
	case "refresh":
		return m.runDone("Refreshed", m.sess.Refresh)
	case "chat":
		friend, ok := findFriend(rest, s.Friends)
		if !ok {
			return status("", usage("/chat <friend name or id>"))
		}
		return m.runDone("", func(ctx context.Context) error { return m.sess.OpenChat(ctx, friend) })
	case "open":
		group, ok := findGroup(rest, s.Groups)
		if !ok {
			return status("", usage("/open <group name or id>"))
		}
		return m.runDone("", func(ctx context.Context) error { return m.sess.OpenGroup(ctx, group) })
	case "group":
		groupName, members := parseGroupArgs(rest)
		if groupName == "" {
			return status("", usage("/group <name> [member1,member2]"))
		}
		return m.runDone("Group "+groupName+" created", func(ctx context.Context) error {
			return m.sess.CreateGroup(ctx, groupName, members)
		})
	}
	return status("", fmt.Errorf("unknown command /%s, try /help", name))
}

// run calls fn off the Update loop and reports its status text
func (m Model) run(fn func(context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		text, err := fn(ctx)
		return statusMsg{text: text, err: err}
	}
}

func (m Model) runDone(done string, fn func(context.Context) error) tea.Cmd {
	return m.run(func(ctx context.Context) (string, error) {
		if err := fn(ctx); err != nil {
			return "", err
		}
		return done, nil
	})
}

func status(text string, err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, err: err} }
}

func resolveUser(arg string, users []models.User) (int64, bool) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id > 0 {
		return id, true
	}
	for _, u := range users {
		if arg != "" && strings.EqualFold(u.Username, arg) {
			return u.ID, true
		}
	}
	return 0, false
}

func resolveRequest(arg string, reqs []models.FriendRequest) (int64, bool) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id > 0 {
		return id, true
	}
	for _, r := range reqs {
		if arg != "" && strings.EqualFold(r.FromUsername, arg) {
			return r.FromUserID, true
		}
	}
	return 0, false
}

func findFriend(arg string, friends []models.Friend) (models.Friend, bool) {
	id, _ := strconv.ParseInt(arg, 10, 64)
	for _, f := range friends {
		if (id != 0 && f.ID == id) || (arg != "" && strings.EqualFold(f.Username, arg)) {
			return f, true
		}
	}
	return models.Friend{}, false
}

func findGroup(arg string, groups []models.Group) (models.Group, bool) {
	id, _ := strconv.ParseInt(arg, 10, 64)
	for _, g := range groups {
		if (id != 0 && g.ID == id) || (arg != "" && strings.EqualFold(g.Name, arg)) {
			return g, true
		}
	}
	return models.Group{}, false
}

// parseGroupArgs reads "Team bob,carol" or "Team [bob, carol]"
func parseGroupArgs(rest string) (string, []string) {
	name, list, _ := strings.Cut(rest, " ")
	list = strings.Trim(strings.TrimSpace(list), "[]")
	var members []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			members = append(members, part)
		}
	}
	return strings.TrimSpace(name), members
}
