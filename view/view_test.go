package view

import (
	"strings"
	"testing"
	"time"

	"nebula/models"
	"nebula/session"
)

var (
	alice  = models.User{ID: 1, Username: "alice"}
	bob    = models.User{ID: 2, Username: "bob"}
	nebula = models.User{ID: 5, Username: "Nebula"}
)

func at(sec int) models.Timestamp {
	return models.At(time.Date(2024, 3, 1, 12, 30, sec, 0, time.UTC))
}

func TestAccountsMarksActiveAndOwner(t *testing.T) {
	s := session.State{
		Accounts:    []models.Account{{User: alice, Token: "a"}, {User: nebula, Token: "n"}},
		ActiveIndex: 1,
	}

	rows := Accounts(s)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Active || rows[0].Owner {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if !rows[1].Active || !rows[1].Owner || rows[1].Index != 1 {
		t.Fatalf("row 1 = %+v", rows[1])
	}
}

func TestListRowsCarryActions(t *testing.T) {
	s := session.State{
		Friends:       []models.Friend{bob},
		SearchResults: []models.User{nebula},
		Requests:      []models.FriendRequest{{FromUserID: 3, FromUsername: "carol"}},
		Groups:        []models.Group{{ID: 1, Name: "one"}, {ID: 2, Name: "two"}},
		Open:          session.ChatGroup,
		ActiveGroup:   &models.Group{ID: 2, Name: "two"},
	}

	if f := Friends(s); len(f) != 1 || f[0].Action != ActionOpenChat || f[0].Username != "bob" {
		t.Fatalf("friends = %+v", f)
	}
	if r := SearchResults(s); len(r) != 1 || r[0].Action != ActionAdd || !r[0].Owner {
		t.Fatalf("search = %+v", r)
	}
	if r := Requests(s); len(r) != 1 || r[0].Action != ActionAccept || r[0].FromUserID != 3 {
		t.Fatalf("requests = %+v", r)
	}
	g := Groups(s)
	if len(g) != 2 || g[0].Active || !g[1].Active || g[1].Action != ActionOpenGroup {
		t.Fatalf("groups = %+v", g)
	}
}

func TestDirectMessages(t *testing.T) {
	friend := nebula
	s := session.State{
		User:         &alice,
		Open:         session.ChatDirect,
		ActiveFriend: &friend,
		Messages: []models.Message{
			{FromUserID: nebula.ID, ToUserID: alice.ID, Content: "first", CreatedAt: at(1)},
			{FromUserID: alice.ID, ToUserID: nebula.ID, Content: "second", CreatedAt: at(2)},
		},
	}

	rows := Messages(s, time.UTC)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := []MessageRow{
		{Author: "Nebula", Owner: true, Own: false, Time: "12:30:01", Content: "first"},
		{Author: "You", Owner: false, Own: true, Time: "12:30:02", Content: "second"},
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
	if got := ChatTitle(s); got != "Chat with Nebula" {
		t.Fatalf("ChatTitle = %q", got)
	}
}

func TestMessageTimeUsesLocation(t *testing.T) {
	s := session.State{
		User:         &alice,
		Open:         session.ChatDirect,
		ActiveFriend: &bob,
		Messages:     []models.Message{{FromUserID: bob.ID, ToUserID: alice.ID, CreatedAt: at(0)}},
	}
	loc := time.FixedZone("UTC+3", 3*60*60)
	if got := Messages(s, loc)[0].Time; got != "15:30:00" {
		t.Fatalf("time = %q", got)
	}
}

func TestGroupMessagesResolveAuthors(t *testing.T) {
	s := session.State{
		Accounts:    []models.Account{{User: alice}, {User: nebula}},
		User:        &alice,
		Friends:     []models.Friend{bob},
		Open:        session.ChatGroup,
		ActiveGroup: &models.Group{ID: 9, Name: "Team"},
		GroupMessages: []models.Message{
			{FromUserID: bob.ID, GroupID: 9, Content: "a", CreatedAt: at(1)},
			{FromUserID: 77, GroupID: 9, Content: "b", CreatedAt: at(2)},
			{FromUserID: nebula.ID, GroupID: 9, Content: "c", CreatedAt: at(3)},
			{FromUserID: alice.ID, GroupID: 9, Content: "d", CreatedAt: at(4)},
		},
	}

	rows := Messages(s, time.UTC)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].Author != "bob" || rows[0].Owner {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[1].Author != "Member" || rows[1].Owner {
		t.Fatalf("row 1 = %+v", rows[1])
	}
	if rows[2].Author != "Nebula" || !rows[2].Owner {
		t.Fatalf("row 2 = %+v", rows[2])
	}
	if rows[3].Author != "You" || !rows[3].Own {
		t.Fatalf("row 3 = %+v", rows[3])
	}
	if got := ChatTitle(s); got != "Group: Team" {
		t.Fatalf("ChatTitle = %q", got)
	}
}

func TestNoConversation(t *testing.T) {
	s := session.State{User: &alice, Messages: []models.Message{{Content: "stale"}}}
	if rows := Messages(s, nil); len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
	if got := ChatTitle(s); got != "" {
		t.Fatalf("ChatTitle = %q", got)
	}
}

func TestMessagePaneScrollsToBottom(t *testing.T) {
	pane := NewMessagePane(40, 3)
	rows := make([]MessageRow, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, MessageRow{Author: "bob", Time: "12:00:00", Content: strings.Repeat("x", i+1)})
	}

	pane.Render("Chat with bob", rows)
	if !pane.AtBottom() {
		t.Fatal("pane should be scrolled to the bottom after render")
	}

	pane.vp.GotoTop()
	if pane.AtBottom() {
		t.Fatal("GotoTop should leave the bottom")
	}

	pane.Render("Chat with bob", append(rows, MessageRow{Author: "You", Own: true, Content: "newest"}))
	if !pane.AtBottom() {
		t.Fatal("a new render should scroll back to the bottom")
	}
	if !strings.Contains(pane.View(), "newest") {
		t.Fatal("newest message should be visible")
	}
}

func TestRenderersIncludeNames(t *testing.T) {
	s := session.State{
		Accounts:    []models.Account{{User: nebula}},
		ActiveIndex: 0,
		Friends:     []models.Friend{bob},
		Requests:    []models.FriendRequest{{FromUserID: 3, FromUsername: "carol"}},
	}

	if out := RenderAccounts(Accounts(s)); !strings.Contains(out, "Nebula") || !strings.Contains(out, ownerBadge) {
		t.Fatalf("accounts render = %q", out)
	}
	if out := RenderFriends(Friends(s)); !strings.Contains(out, "bob") || !strings.Contains(out, "#2") {
		t.Fatalf("friends render = %q", out)
	}
	if out := RenderRequests(Requests(s)); !strings.Contains(out, "carol") {
		t.Fatalf("requests render = %q", out)
	}
	if out := RenderGroups(nil); !strings.Contains(out, "no groups yet") {
		t.Fatalf("groups render = %q", out)
	}
}
