package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"nebula/middleware"
)

// Server is an in-memory chat backend for local development and tests
type Server struct {
	dir    *directory
	hub    *Hub
	secret []byte
}

// NewServer creates a server and starts its hub. Call Close when done.
func NewServer(secret string) *Server {
	s := &Server{
		dir:    newDirectory(),
		hub:    NewHub(),
		secret: []byte(secret),
	}
	go s.hub.Run()
	return s
}

// Close stops the hub and drops every push connection
func (s *Server) Close() {
	s.hub.Stop()
}

// Connections reports how many push connections userID holds
func (s *Server) Connections(userID int64) int {
	return s.hub.Connections(userID)
}

// Router builds the HTTP routes
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", s.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Auth(s.secret))
	protected.HandleFunc("/users/search", s.SearchUsers).Methods(http.MethodGet)
	protected.HandleFunc("/friends", s.GetFriends).Methods(http.MethodGet)
	protected.HandleFunc("/friends/requests", s.GetFriendRequests).Methods(http.MethodGet)
	protected.HandleFunc("/friends/request", s.SendFriendRequest).Methods(http.MethodPost)
	protected.HandleFunc("/friends/accept", s.AcceptFriendRequest).Methods(http.MethodPost)
	protected.HandleFunc("/messages/history/{friendId}", s.GetHistory).Methods(http.MethodGet)
	protected.HandleFunc("/messages/send", s.SendMessage).Methods(http.MethodPost)
	protected.HandleFunc("/groups", s.GetGroups).Methods(http.MethodGet)
	protected.HandleFunc("/groups/create", s.CreateGroup).Methods(http.MethodPost)
	protected.HandleFunc("/groups/history/{groupId}", s.GetGroupHistory).Methods(http.MethodGet)
	protected.HandleFunc("/groups/send", s.SendGroupMessage).Methods(http.MethodPost)

	r.Handle("/ws", middleware.Auth(s.secret)(http.HandlerFunc(s.HandleWebSocket)))

	return r
}

// currentUser resolves the authenticated caller or writes a 401
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r)
	if ok {
		_, ok = s.dir.user(id)
	}
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func ack(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
