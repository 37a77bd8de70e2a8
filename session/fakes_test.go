package session

import (
	"context"
	"strconv"
	"sync"

	"nebula/api"
	"nebula/models"
	"nebula/realtime"
)

type memStore struct {
	mu       sync.Mutex
	accounts []models.Account
	active   int
	persists int
}

func (s *memStore) Load(ctx context.Context) ([]models.Account, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Account(nil), s.accounts...), s.active, nil
}

func (s *memStore) Persist(ctx context.Context, accounts []models.Account, active int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append([]models.Account(nil), accounts...)
	s.active = active
	s.persists++
	return nil
}

// fakeChannel records connect and close calls in order
type fakeChannel struct {
	mu      sync.Mutex
	log     []string
	handler realtime.Handler
	token   string
}

func (ch *fakeChannel) Connect(ctx context.Context, token string, h realtime.Handler) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.token != "" {
		ch.log = append(ch.log, "close:"+ch.token)
	}
	ch.token = ""
	ch.handler = nil
	if token == "" {
		return nil
	}
	ch.log = append(ch.log, "connect:"+token)
	ch.token = token
	ch.handler = h
	return nil
}

func (ch *fakeChannel) Close() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.token != "" {
		ch.log = append(ch.log, "close:"+ch.token)
	}
	ch.token = ""
	ch.handler = nil
	return nil
}

func (ch *fakeChannel) calls() []string {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return append([]string(nil), ch.log...)
}

// fakeAPI serves canned data keyed by the token in use
type fakeAPI struct {
	mu    sync.Mutex
	token string
	calls []string

	friends   map[string][]models.Friend
	requests  map[string][]models.FriendRequest
	groups    map[string][]models.Group
	history   map[int64][]models.Message
	ghistory  map[int64][]models.Message
	search    func(q string) []models.User
	searchErr func(q string) error

	// gates hold a call until closed. Keys are "friends:<token>",
	// "history:<friendID>" and "group-history:<groupID>".
	gates      map[string]chan struct{}
	onSetToken func(token string)

	registerErr error
	loginErr    error
	auth        models.AuthResponse
	created     *models.Group
	createdWith []int64
	sent        []models.Message
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		friends:  map[string][]models.Friend{},
		requests: map[string][]models.FriendRequest{},
		groups:   map[string][]models.Group{},
		history:  map[int64][]models.Message{},
		ghistory: map[int64][]models.Message{},
		gates:    map[string]chan struct{}{},
	}
}

func (f *fakeAPI) gate(key string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[key] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeAPI) hold(key string) {
	f.mu.Lock()
	ch := f.gates[key]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) SetToken(token string) {
	if f.onSetToken != nil {
		f.onSetToken(token)
	}
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeAPI) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAPI) Register(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	f.record("register")
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	resp := f.auth
	return &resp, nil
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	f.record("login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	resp := f.auth
	return &resp, nil
}

func (f *fakeAPI) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	f.record("search")
	var users []models.User
	if f.search != nil {
		users = f.search(query)
	}
	if f.searchErr != nil {
		if err := f.searchErr(query); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (f *fakeAPI) SendFriendRequest(ctx context.Context, toUserID int64) error {
	f.record("request")
	return nil
}

func (f *fakeAPI) AcceptFriendRequest(ctx context.Context, fromUserID int64) error {
	f.record("accept")
	return nil
}

func (f *fakeAPI) Friends(ctx context.Context) ([]models.Friend, error) {
	f.record("friends")
	token := f.currentToken()
	f.hold("friends:" + token)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.friends[token], nil
}

func (f *fakeAPI) FriendRequests(ctx context.Context) ([]models.FriendRequest, error) {
	f.record("requests")
	return f.requests[f.currentToken()], nil
}

func (f *fakeAPI) History(ctx context.Context, friendID int64) ([]models.Message, error) {
	f.record("history")
	f.hold("history:" + strconv.FormatInt(friendID, 10))
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[friendID], nil
}

func (f *fakeAPI) SendMessage(ctx context.Context, toUserID int64, content string) error {
	f.record("send")
	f.mu.Lock()
	f.sent = append(f.sent, models.Message{ToUserID: toUserID, Content: content})
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) CreateGroup(ctx context.Context, name string, memberIDs []int64) (*models.Group, error) {
	f.record("create-group")
	f.createdWith = memberIDs
	if f.created == nil {
		return nil, &api.Error{StatusCode: 500, Message: "boom"}
	}
	g := *f.created
	return &g, nil
}

func (f *fakeAPI) Groups(ctx context.Context) ([]models.Group, error) {
	f.record("groups")
	return f.groups[f.currentToken()], nil
}

func (f *fakeAPI) GroupHistory(ctx context.Context, groupID int64) ([]models.Message, error) {
	f.record("group-history")
	f.hold("group-history:" + strconv.FormatInt(groupID, 10))
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ghistory[groupID], nil
}

func (f *fakeAPI) SendGroupMessage(ctx context.Context, groupID int64, content string) error {
	f.record("group-send")
	f.mu.Lock()
	f.sent = append(f.sent, models.Message{GroupID: groupID, Content: content})
	f.mu.Unlock()
	return nil
}

type sectionRecorder struct {
	mu   sync.Mutex
	seen map[Section]int
}

func (r *sectionRecorder) Invalidate(s Section) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen == nil {
		r.seen = map[Section]int{}
	}
	r.seen[s]++
}

func (r *sectionRecorder) count(s Section) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[s]
}
