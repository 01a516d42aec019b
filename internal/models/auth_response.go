package models

import "time"

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID        string    `json:"id"` // UUID
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	AvatarURL *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse represents a successful authentication: the user plus a
// bearer token for subsequent requests.
type SessionResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"` // JWT token
}

// SignupResponse is returned after account creation, before the email is
// verified. No token is issued yet.
type SignupResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}
