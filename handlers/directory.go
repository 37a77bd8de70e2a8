package handlers

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"nebula/models"
)

var (
	errUsernameTaken = errors.New("username taken")
	errNotFound      = errors.New("not found")
	errNotMember     = errors.New("not a member")
)

type account struct {
	models.User
	hash []byte
}

type group struct {
	models.Group
	members map[int64]bool
}

// directory is the dev server's in-memory data. Every method is safe for
// concurrent use.
type directory struct {
	mu sync.RWMutex

	nextUserID    int64
	nextMessageID int64
	nextGroupID   int64

	users    map[int64]*account
	byName   map[string]int64
	friends  map[int64]map[int64]bool
	requests map[int64][]int64 // target -> requesters, oldest first
	direct   []models.Message
	groups   map[int64]*group
	groupMsg map[int64][]models.Message
}

func newDirectory() *directory {
	return &directory{
		users:    make(map[int64]*account),
		byName:   make(map[string]int64),
		friends:  make(map[int64]map[int64]bool),
		requests: make(map[int64][]int64),
		groups:   make(map[int64]*group),
		groupMsg: make(map[int64][]models.Message),
	}
}

func (d *directory) createUser(username string, hash []byte) (models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := strings.ToLower(username)
	if _, ok := d.byName[key]; ok {
		return models.User{}, errUsernameTaken
	}
	d.nextUserID++
	u := &account{User: models.User{ID: d.nextUserID, Username: username}, hash: hash}
	d.users[u.ID] = u
	d.byName[key] = u.ID
	return u.User, nil
}

func (d *directory) userByName(username string) (models.User, []byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byName[strings.ToLower(username)]
	if !ok {
		return models.User{}, nil, false
	}
	u := d.users[id]
	return u.User, u.hash, true
}

func (d *directory) user(id int64) (models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return models.User{}, false
	}
	return u.User, true
}

func (d *directory) search(query string) []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	q := strings.ToLower(query)
	out := []models.User{}
	for _, u := range d.users {
		if strings.Contains(strings.ToLower(u.Username), q) {
			out = append(out, u.User)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// addRequest records from -> to. A request to an existing friend, or a
// duplicate, is accepted without change and reports false.
func (d *directory) addRequest(from, to int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[to]; !ok || from == to {
		return false, errNotFound
	}
	if d.friends[from][to] {
		return false, nil
	}
	for _, id := range d.requests[to] {
		if id == from {
			return false, nil
		}
	}
	d.requests[to] = append(d.requests[to], from)
	return true, nil
}

func (d *directory) accept(user, from int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.requests[user]
	idx := -1
	for i, id := range pending {
		if id == from {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errNotFound
	}
	d.requests[user] = append(pending[:idx:idx], pending[idx+1:]...)
	d.link(user, from)
	d.link(from, user)
	return nil
}

func (d *directory) link(a, b int64) {
	if d.friends[a] == nil {
		d.friends[a] = make(map[int64]bool)
	}
	d.friends[a][b] = true
}

func (d *directory) friendsOf(user int64) []models.Friend {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []models.Friend{}
	for id := range d.friends[user] {
		out = append(out, d.users[id].User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *directory) requestsFor(user int64) []models.FriendRequest {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []models.FriendRequest{}
	for _, id := range d.requests[user] {
		out = append(out, models.FriendRequest{FromUserID: id, FromUsername: d.users[id].Username})
	}
	return out
}

func (d *directory) sendDirect(from, to int64, content string) (models.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[to]; !ok {
		return models.Message{}, errNotFound
	}
	d.nextMessageID++
	msg := models.Message{
		ID:         d.nextMessageID,
		FromUserID: from,
		ToUserID:   to,
		Content:    content,
		CreatedAt:  models.At(time.Now().UTC()),
	}
	d.direct = append(d.direct, msg)
	return msg, nil
}

func (d *directory) history(a, b int64) []models.Message {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []models.Message{}
	for _, m := range d.direct {
		if (m.FromUserID == a && m.ToUserID == b) || (m.FromUserID == b && m.ToUserID == a) {
			out = append(out, m)
		}
	}
	return out
}

// createGroup makes a group owned by creator. Member ids that are not
// users are skipped.
func (d *directory) createGroup(creator int64, name string, memberIDs []int64) (models.Group, []int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextGroupID++
	g := &group{Group: models.Group{ID: d.nextGroupID, Name: name}, members: map[int64]bool{creator: true}}
	for _, id := range memberIDs {
		if _, ok := d.users[id]; ok {
			g.members[id] = true
		}
	}
	d.groups[g.ID] = g
	return g.Group, memberList(g.members)
}

func (d *directory) groupsOf(user int64) []models.Group {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []models.Group{}
	for _, g := range d.groups {
		if g.members[user] {
			out = append(out, g.Group)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *directory) groupHistory(user, groupID int64) ([]models.Message, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.groups[groupID]
	if !ok {
		return nil, errNotFound
	}
	if !g.members[user] {
		return nil, errNotMember
	}
	return append([]models.Message{}, d.groupMsg[groupID]...), nil
}

func (d *directory) sendGroup(from, groupID int64, content string) (models.Message, []int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.groups[groupID]
	if !ok {
		return models.Message{}, nil, errNotFound
	}
	if !g.members[from] {
		return models.Message{}, nil, errNotMember
	}
	d.nextMessageID++
	msg := models.Message{
		ID:         d.nextMessageID,
		FromUserID: from,
		GroupID:    groupID,
		Content:    content,
		CreatedAt:  models.At(time.Now().UTC()),
	}
	d.groupMsg[groupID] = append(d.groupMsg[groupID], msg)
	return msg, memberList(g.members), nil
}

func memberList(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
