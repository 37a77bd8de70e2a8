package session

import "nebula/models"

// Section names a view that must be re-projected after a state change
type Section int

const (
	SectionAccounts Section = iota
	SectionFriends
	SectionRequests
	SectionGroups
	SectionSearch
	SectionMessages
	SectionGate
)

func (s Section) String() string {
	switch s {
	case SectionAccounts:
		return "accounts"
	case SectionFriends:
		return "friends"
	case SectionRequests:
		return "requests"
	case SectionGroups:
		return "groups"
	case SectionSearch:
		return "search"
	case SectionMessages:
		return "messages"
	case SectionGate:
		return "gate"
	}
	return "unknown"
}

// ChatKind says which conversation the message pane shows
type ChatKind int

const (
	ChatNone ChatKind = iota
	ChatDirect
	ChatGroup
)

// State is everything the views are derived from
type State struct {
	Accounts    []models.Account
	ActiveIndex int
	Token       string
	User        *models.User

	Friends       []models.Friend
	Requests      []models.FriendRequest
	Groups        []models.Group
	SearchResults []models.User

	Open          ChatKind
	ActiveFriend  *models.Friend
	ActiveGroup   *models.Group
	Messages      []models.Message
	GroupMessages []models.Message

	LastRegistered string
}

// Gate is the derived visibility of each section
type Gate struct {
	Authed    bool
	Auth      bool
	Sidebar   bool
	Search    bool
	Groups    bool
	Chat      bool
	GroupChat bool
}

// Gate derives section visibility. Everything but the auth form needs both
// a token and a user.
func (s State) Gate() Gate {
	authed := s.Token != "" && s.User != nil
	return Gate{
		Authed:    authed,
		Auth:      !authed,
		Sidebar:   authed,
		Search:    authed,
		Groups:    authed,
		Chat:      authed && s.ActiveFriend != nil,
		GroupChat: authed && s.Open == ChatGroup && s.ActiveGroup != nil,
	}
}

func (s State) clone() State {
	out := s
	out.Accounts = append([]models.Account(nil), s.Accounts...)
	out.Friends = append([]models.Friend(nil), s.Friends...)
	out.Requests = append([]models.FriendRequest(nil), s.Requests...)
	out.Groups = append([]models.Group(nil), s.Groups...)
	out.SearchResults = append([]models.User(nil), s.SearchResults...)
	out.Messages = append([]models.Message(nil), s.Messages...)
	out.GroupMessages = append([]models.Message(nil), s.GroupMessages...)
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.ActiveFriend != nil {
		f := *s.ActiveFriend
		out.ActiveFriend = &f
	}
	if s.ActiveGroup != nil {
		g := *s.ActiveGroup
		out.ActiveGroup = &g
	}
	return out
}

func (s *State) clearConversation() {
	s.Open = ChatNone
	s.ActiveFriend = nil
	s.ActiveGroup = nil
	s.Messages = nil
	s.GroupMessages = nil
}
