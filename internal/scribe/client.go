package scribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Client implements AccountService and NotesStore over the ScribeSnap HTTP
// API. Every authentication path funnels through applySession, so password
// login, OTP verification, OAuth token adoption and sign-out all update the
// session and its subscribers the same way.
type Client struct {
	baseURL string
	http    *http.Client

	mu          sync.Mutex
	session     *Session
	subscribers map[int]func(*Session)
	nextSubID   int
}

// NewClient creates a client for the API at baseURL (no trailing slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		http:        &http.Client{Timeout: 15 * time.Second},
		subscribers: make(map[int]func(*Session)),
	}
}

type userPayload struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type sessionPayload struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func (p userPayload) toUser() User {
	return User{ID: p.ID, Email: p.Email, Name: p.Name, Avatar: p.Avatar}
}

// applySession is the single place the current session changes. Subscribers
// are notified outside the lock with the handlers captured under it.
func (c *Client) applySession(s *Session) {
	c.mu.Lock()
	c.session = s
	handlers := make([]func(*Session), 0, len(c.subscribers))
	for _, h := range c.subscribers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(s)
	}
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// do performs a JSON request. Non-2xx responses decode into *AuthError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, token string) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ep errorPayload
		_ = json.NewDecoder(resp.Body).Decode(&ep)
		if ep.Error == "" {
			ep.Error = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return &AuthError{Status: resp.StatusCode, Message: ep.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// SignUp creates an account; verification continues over OTP.
func (c *Client) SignUp(ctx context.Context, email, password, name string) error {
	body := map[string]string{"email": email, "password": password}
	if name != "" {
		body["name"] = name
	}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/signup", body, nil, "")
}

// SignInWithPassword authenticates and applies the resulting session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var payload sessionPayload
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &payload, ""); err != nil {
		return nil, err
	}

	session := &Session{User: payload.User.toUser(), Token: payload.Token}
	c.applySession(session)
	return session, nil
}

// SignInWithOAuthURL returns the Google consent redirect entry point.
func (c *Client) SignInWithOAuthURL() string {
	return c.baseURL + "/api/v1/auth/oauth/google"
}

// AdoptToken installs a token handed back by the OAuth redirect and resolves
// its user, applying the session like any other sign-in.
func (c *Client) AdoptToken(ctx context.Context, token string) (*Session, error) {
	var payload struct {
		User userPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &payload, token); err != nil {
		return nil, err
	}

	session := &Session{User: payload.User.toUser(), Token: token}
	c.applySession(session)
	return session, nil
}

// VerifyOTP submits a mailed code and applies the resulting session.
func (c *Client) VerifyOTP(ctx context.Context, email, code string, purpose OTPPurpose) (*Session, error) {
	var payload sessionPayload
	body := map[string]string{"email": email, "code": code, "purpose": string(purpose)}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/otp/verify", body, &payload, ""); err != nil {
		return nil, err
	}

	session := &Session{User: payload.User.toUser(), Token: payload.Token}
	c.applySession(session)
	return session, nil
}

// ResendOTP asks for a fresh code.
func (c *Client) ResendOTP(ctx context.Context, email string, purpose OTPPurpose) error {
	body := map[string]string{"email": email, "purpose": string(purpose)}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/otp/resend", body, nil, "")
}

// ResetPasswordForEmail requests a reset mail pointing at redirectTo.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email}
	if redirectTo != "" {
		body["redirect_to"] = redirectTo
	}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/password/forgot", body, nil, "")
}

// Session validates the current token against the server and returns the
// session, or nil when signed out. A rejected token clears the session.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	token := c.token()
	if token == "" {
		return nil, nil
	}

	var payload struct {
		User userPayload `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &payload, token)
	if authErr, ok := err.(*AuthError); ok && authErr.Status == http.StatusUnauthorized {
		c.applySession(nil)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session := &Session{User: payload.User.toUser(), Token: token}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return session, nil
}

// OnSessionChange subscribes to session updates.
func (c *Client) OnSessionChange(handler func(*Session)) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// SignOut revokes the token server-side and clears the session either way.
func (c *Client) SignOut(ctx context.Context) error {
	token := c.token()
	if token == "" {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, token)
	c.applySession(nil)
	return err
}

// List returns the signed-in user's notes, most recently updated first.
func (c *Client) List(ctx context.Context) ([]Note, error) {
	var payload struct {
		Notes []Note `json:"notes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/notes", nil, &payload, c.token()); err != nil {
		return nil, err
	}
	return payload.Notes, nil
}

// Insert creates a note and returns the stored record with its server-side
// id and timestamps.
func (c *Client) Insert(ctx context.Context, title, content, color string) (*Note, error) {
	var note Note
	body := map[string]string{"title": title, "content": content, "color": color}
	if err := c.do(ctx, http.MethodPost, "/api/v1/notes", body, &note, c.token()); err != nil {
		return nil, err
	}
	return &note, nil
}

// Update patches a note and returns the stored record.
func (c *Client) Update(ctx context.Context, id string, fields NoteFields) (*Note, error) {
	var note Note
	if err := c.do(ctx, http.MethodPatch, "/api/v1/notes/"+id, fields, &note, c.token()); err != nil {
		return nil, err
	}
	return &note, nil
}

// Delete removes a note by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/notes/"+id, nil, nil, c.token())
}

var (
	_ AccountService = (*Client)(nil)
	_ NotesStore     = (*Client)(nil)
)
