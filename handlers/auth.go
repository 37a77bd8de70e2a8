package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"nebula/middleware"
	"nebula/models"
)

// Register creates a user and returns it with a token
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if !decodeBody(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error": "Username and password are required"}`, http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, `{"error": "Server error"}`, http.StatusInternalServerError)
		return
	}

	user, err := s.dir.createUser(req.Username, hashedPassword)
	if errors.Is(err, errUsernameTaken) {
		http.Error(w, `{"error": "username taken"}`, http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, `{"error": "Failed to create user"}`, http.StatusInternalServerError)
		return
	}

	s.issue(w, user)
}

// Login checks credentials and returns the user with a fresh token
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if !decodeBody(w, r, &req) {
		return
	}

	user, hash, ok := s.dir.userByName(strings.TrimSpace(req.Username))
	if !ok {
		http.Error(w, `{"error": "invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); err != nil {
		http.Error(w, `{"error": "invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	s.issue(w, user)
}

func (s *Server) issue(w http.ResponseWriter, user models.User) {
	token, err := middleware.IssueToken(s.secret, user.ID)
	if err != nil {
		log.Printf("Failed to sign token: %v", err)
		http.Error(w, `{"error": "Failed to create session"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{User: user, Token: token})
}
