package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"nebula/models"
)

// GetHistory returns messages between the current user and a friend
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	otherUserID, err := strconv.ParseInt(mux.Vars(r)["friendId"], 10, 64)
	if err != nil {
		http.Error(w, `{"error": "Invalid user ID"}`, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.dir.history(userID, otherUserID))
}

// SendMessage stores a direct message. It is delivered to the recipient
// and echoed to the sender over WebSocket; the HTTP reply is only an ack.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req models.SendMessageBody
	if !decodeBody(w, r, &req) {
		return
	}

	if blank(req.Content) {
		http.Error(w, `{"error": "Message content is required"}`, http.StatusBadRequest)
		return
	}

	message, err := s.dir.sendDirect(userID, req.ToUserID, req.Content)
	if errors.Is(err, errNotFound) {
		http.Error(w, `{"error": "Recipient not found"}`, http.StatusNotFound)
		return
	}

	s.hub.Push(message.ToUserID, models.EventMessageNew, message)
	if message.ToUserID != userID {
		s.hub.Push(userID, models.EventMessageNew, message)
	}

	ack(w)
}
