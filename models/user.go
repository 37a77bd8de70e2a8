package models

// User is the public projection of a chat user
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Account is one stored (user, token) pair on this device
type Account struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Credentials is the register/login request body
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

// ownerNames is the cosmetic OWNER allow-list. It grants nothing.
var ownerNames = map[string]bool{
	"Nebula":     true,
	"NebulaTest": true,
}

// IsOwner reports whether username carries the OWNER badge
func IsOwner(username string) bool {
	return ownerNames[username]
}
