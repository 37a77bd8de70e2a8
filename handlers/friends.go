package handlers

import (
	"errors"
	"net/http"
	"strings"

	"nebula/models"
)

// GetFriends returns all friends for the current user
func (s *Server) GetFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.dir.friendsOf(userID))
}

// GetFriendRequests returns pending friend requests for the current user
func (s *Server) GetFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.dir.requestsFor(userID))
}

// SendFriendRequest sends a friend request
func (s *Server) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req models.FriendRequestBody
	if !decodeBody(w, r, &req) {
		return
	}

	if req.ToUserID == userID {
		http.Error(w, `{"error": "You cannot add yourself as a friend"}`, http.StatusBadRequest)
		return
	}

	created, err := s.dir.addRequest(userID, req.ToUserID)
	if errors.Is(err, errNotFound) {
		http.Error(w, `{"error": "User not found"}`, http.StatusNotFound)
		return
	}

	// Notify the target via WebSocket
	if created {
		me, _ := s.dir.user(userID)
		s.hub.Push(req.ToUserID, models.EventFriendRequest, models.FriendRequest{
			FromUserID:   me.ID,
			FromUsername: me.Username,
		})
	}

	ack(w)
}

// AcceptFriendRequest accepts a pending request from fromUserId
func (s *Server) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req models.AcceptBody
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.dir.accept(userID, req.FromUserID); err != nil {
		http.Error(w, `{"error": "Friend request not found"}`, http.StatusNotFound)
		return
	}

	me, _ := s.dir.user(userID)
	s.hub.Push(req.FromUserID, models.EventFriendAccepted, me)

	ack(w)
}

// SearchUsers searches for users by username
func (s *Server) SearchUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, []models.User{})
		return
	}

	users := []models.User{}
	for _, u := range s.dir.search(query) {
		if u.ID != userID {
			users = append(users, u)
		}
	}
	writeJSON(w, http.StatusOK, users)
}
