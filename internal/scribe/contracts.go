// Package scribe is the client-side SDK: the account and notes contracts the
// UI controllers are written against, plus an HTTP implementation speaking to
// the ScribeSnap API.
package scribe

import (
	"context"
	"time"
)

// User is the client-side view of an account.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Session is a proof of authentication plus the associated user.
type Session struct {
	User  User
	Token string
}

// Note is the client-side view of a note.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteFields is a partial note update; nil fields are left unchanged.
type NoteFields struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Color   *string `json:"color,omitempty"`
}

// OTPPurpose selects which one-time code a verify/resend call refers to.
type OTPPurpose string

const (
	PurposeSignup OTPPurpose = "signup"
	PurposeReset  OTPPurpose = "reset"
)

// AuthError is a rejection from the account service. Message carries the
// service's text, which the auth flow maps to friendlier wording.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// AccountService is the authentication contract. A successful sign-in updates
// the current session and notifies OnSessionChange subscribers.
type AccountService interface {
	SignUp(ctx context.Context, email, password, name string) error
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignInWithOAuthURL returns the URL the browser must be sent to; the
	// flow completes out-of-process and hands a token back via AdoptToken.
	SignInWithOAuthURL() string
	AdoptToken(ctx context.Context, token string) (*Session, error)
	VerifyOTP(ctx context.Context, email, code string, purpose OTPPurpose) (*Session, error)
	ResendOTP(ctx context.Context, email string, purpose OTPPurpose) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	// Session returns the current session, or nil when signed out.
	Session(ctx context.Context) (*Session, error)
	// OnSessionChange registers a handler called with the new session (nil on
	// sign-out). The returned function unsubscribes it.
	OnSessionChange(handler func(*Session)) (unsubscribe func())
	SignOut(ctx context.Context) error
}

// NotesStore is the notes persistence contract, scoped server-side to the
// session's user.
type NotesStore interface {
	// List returns the user's notes, most recently updated first.
	List(ctx context.Context) ([]Note, error)
	Insert(ctx context.Context, title, content, color string) (*Note, error)
	Update(ctx context.Context, id string, fields NoteFields) (*Note, error)
	Delete(ctx context.Context, id string) error
}
