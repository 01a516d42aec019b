package entities

import "time"

// User represents a user row in the database. PasswordHash is nil for
// accounts created through OAuth.
type User struct {
	ID            string    `json:"id"` // UUID
	Email         string    `json:"email"`
	PasswordHash  *string   `json:"-"` // Don't expose password hash in JSON
	Name          *string   `json:"name,omitempty"`
	AvatarURL     *string   `json:"avatar,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
