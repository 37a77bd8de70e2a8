package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"nebula/models"
)

// GetGroups lists the groups the current user belongs to
func (s *Server) GetGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.dir.groupsOf(userID))
}

// CreateGroup creates a group with the caller as a member
func (s *Server) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateGroupBody
	if !decodeBody(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, `{"error": "Group name is required"}`, http.StatusBadRequest)
		return
	}

	group, members := s.dir.createGroup(userID, req.Name, req.MemberIDs)
	for _, id := range members {
		s.hub.Push(id, models.EventGroupCreated, group)
	}

	writeJSON(w, http.StatusOK, group)
}

// GetGroupHistory returns a group's messages, oldest first
func (s *Server) GetGroupHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	groupID, err := strconv.ParseInt(mux.Vars(r)["groupId"], 10, 64)
	if err != nil {
		http.Error(w, `{"error": "Invalid group ID"}`, http.StatusBadRequest)
		return
	}

	messages, err := s.dir.groupHistory(userID, groupID)
	if !groupAllowed(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// SendGroupMessage posts into a group and pushes it to every member
func (s *Server) SendGroupMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req models.SendGroupMessageBody
	if !decodeBody(w, r, &req) {
		return
	}

	if blank(req.Content) {
		http.Error(w, `{"error": "Message content is required"}`, http.StatusBadRequest)
		return
	}

	message, members, err := s.dir.sendGroup(userID, req.GroupID, req.Content)
	if !groupAllowed(w, err) {
		return
	}
	for _, id := range members {
		s.hub.Push(id, models.EventGroupMessage, message)
	}

	ack(w)
}

func groupAllowed(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, errNotMember):
		http.Error(w, `{"error": "Not a group member"}`, http.StatusForbidden)
	default:
		http.Error(w, `{"error": "Group not found"}`, http.StatusNotFound)
	}
	return false
}
