package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"nebula/models"
	"nebula/realtime"
)

// Store persists the account list and the active index
type Store interface {
	Load(ctx context.Context) ([]models.Account, int, error)
	Persist(ctx context.Context, accounts []models.Account, active int) error
}

// API is the subset of the REST client the controller drives
type API interface {
	SetToken(token string)
	Register(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
	SendFriendRequest(ctx context.Context, toUserID int64) error
	AcceptFriendRequest(ctx context.Context, fromUserID int64) error
	Friends(ctx context.Context) ([]models.Friend, error)
	FriendRequests(ctx context.Context) ([]models.FriendRequest, error)
	History(ctx context.Context, friendID int64) ([]models.Message, error)
	SendMessage(ctx context.Context, toUserID int64, content string) error
	CreateGroup(ctx context.Context, name string, memberIDs []int64) (*models.Group, error)
	Groups(ctx context.Context) ([]models.Group, error)
	GroupHistory(ctx context.Context, groupID int64) ([]models.Message, error)
	SendGroupMessage(ctx context.Context, groupID int64, content string) error
}

// Channel is the push connection bound to the active token
type Channel interface {
	Connect(ctx context.Context, token string, h realtime.Handler) error
	Close() error
}

// Listener is told which sections to re-project
type Listener interface {
	Invalidate(Section)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(Section)

// Invalidate calls f(s)
func (f ListenerFunc) Invalidate(s Section) { f(s) }

// Controller owns the session state and keeps the store, the API client
// and the push channel in step with it. Listener calls are made without
// the state lock held, so a listener may call Snapshot.
type Controller struct {
	store    Store
	api      API
	channel  Channel
	listener Listener
	validate *validator.Validate

	// switchMu serializes account switches and channel re-establishment.
	// It is never taken by event handlers.
	switchMu sync.Mutex

	mu        sync.Mutex
	state     State
	searchSeq uint64
}

// New wires a controller. A nil listener discards invalidations.
func New(store Store, api API, channel Channel, listener Listener) *Controller {
	if listener == nil {
		listener = ListenerFunc(func(Section) {})
	}
	return &Controller{
		store:    store,
		api:      api,
		channel:  channel,
		listener: listener,
		validate: validator.New(),
		state:    State{ActiveIndex: -1},
	}
}

// Start restores persisted accounts and resumes the last active one
func (c *Controller) Start(ctx context.Context) error {
	accounts, active, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	if active < 0 || active >= len(accounts) {
		active = -1
	}

	c.mu.Lock()
	c.state.Accounts = accounts
	c.state.ActiveIndex = active
	c.mu.Unlock()

	if active >= 0 {
		return c.SwitchAccount(ctx, active)
	}
	c.notify(SectionAccounts, SectionGate)
	return nil
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SwitchAccount makes accounts[index] the active session. Index -1, or any
// index without an account, leaves no session: ready to add an account.
func (c *Controller) SwitchAccount(ctx context.Context, index int) error {
	c.switchMu.Lock()
	defer c.switchMu.Unlock()

	c.mu.Lock()
	c.state.ActiveIndex = index
	c.state.Token = ""
	c.state.User = nil
	if index >= 0 && index < len(c.state.Accounts) {
		acc := c.state.Accounts[index]
		u := acc.User
		c.state.Token = acc.Token
		c.state.User = &u
	}
	c.state.Friends = nil
	c.state.Requests = nil
	c.state.Groups = nil
	c.state.SearchResults = nil
	c.searchSeq++
	c.state.clearConversation()
	token := c.state.Token
	// Client and state tokens change together.
	c.api.SetToken(token)
	accounts := append([]models.Account(nil), c.state.Accounts...)
	c.mu.Unlock()

	if err := c.store.Persist(ctx, accounts, index); err != nil {
		log.Printf("Failed to persist accounts: %v", err)
	}
	c.notify(SectionAccounts, SectionGate, SectionFriends, SectionRequests, SectionGroups, SectionSearch, SectionMessages)

	// Connect closes the previous connection before dialing the next one.
	if err := c.channel.Connect(ctx, token, c.onEvent); err != nil {
		log.Printf("Push channel unavailable: %v", err)
	}

	if token == "" {
		return nil
	}
	_, friendsErr := c.loadFriends(ctx)
	groupsErr := c.loadGroups(ctx)
	requestsErr := c.loadRequests(ctx)
	return errors.Join(friendsErr, groupsErr, requestsErr)
}

// AddAccountMode drops the active session so a new account can be added.
// Stored accounts are kept.
func (c *Controller) AddAccountMode(ctx context.Context) error {
	return c.SwitchAccount(ctx, -1)
}

// Register creates a user, stores its account and switches to it
func (c *Controller) Register(ctx context.Context, username, password string) error {
	creds := models.Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := c.check(creds); err != nil {
		return err
	}

	resp, err := c.api.Register(ctx, creds.Username, creds.Password)
	if err != nil {
		if isUsernameTaken(err.Error()) {
			return ErrUsernameTaken
		}
		return err
	}

	c.mu.Lock()
	c.state.LastRegistered = resp.User.Username
	c.mu.Unlock()
	return c.addAccount(ctx, resp.User, resp.Token)
}

// Login stores a new account for valid credentials and switches to it.
// Every failure reads the same so the cause is not leaked.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	creds := models.Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := c.check(creds); err != nil {
		return ErrInvalidCredentials
	}

	resp, err := c.api.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		log.Printf("Login failed for %q: %v", creds.Username, err)
		return ErrInvalidCredentials
	}
	return c.addAccount(ctx, resp.User, resp.Token)
}

func (c *Controller) addAccount(ctx context.Context, user models.User, token string) error {
	c.mu.Lock()
	c.state.Accounts = append(c.state.Accounts, models.Account{User: user, Token: token})
	index := len(c.state.Accounts) - 1
	c.mu.Unlock()

	return c.SwitchAccount(ctx, index)
}

// Close shuts the push channel
func (c *Controller) Close() error {
	return c.channel.Close()
}

func (c *Controller) notify(sections ...Section) {
	for _, s := range sections {
		c.listener.Invalidate(s)
	}
}

func (c *Controller) onEvent(ev models.Event) {
	c.HandleEvent(context.Background(), ev)
}
