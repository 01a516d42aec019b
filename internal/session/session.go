// Package session bootstraps the stored session on startup and mirrors every
// session change into a local persistent slot for the life of the process.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"scribesnap/internal/scribe"
)

// Store is the local session mirror: one record, last writer wins.
type Store interface {
	// Load returns the mirrored user, or nil when no session is stored.
	Load() (*scribe.User, error)
	Save(user *scribe.User) error
	Clear() error
}

// FileStore keeps the mirror as a single JSON blob on disk. A missing or
// unreadable blob reads as "no session" rather than an error.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*scribe.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user scribe.User
	if err := json.Unmarshal(data, &user); err != nil || user.ID == "" {
		// Malformed mirror: discard silently and treat as signed out.
		return nil, nil
	}
	return &user, nil
}

func (s *FileStore) Save(user *scribe.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Manager performs the startup session check and keeps the mirror in sync
// with session changes until Close.
type Manager struct {
	accounts scribe.AccountService
	store    Store

	mu          sync.Mutex
	closed      bool
	unsubscribe func()
}

// NewManager creates a manager over the given account service and mirror.
func NewManager(accounts scribe.AccountService, store Store) *Manager {
	return &Manager{accounts: accounts, store: store}
}

// Bootstrap asks the account service for an existing session, mirrors the
// result, and subscribes to session changes. After Bootstrap the
// subscription is the only writer of the mirror. A result landing after
// Close is discarded.
func (m *Manager) Bootstrap(ctx context.Context) (*scribe.User, error) {
	session, err := m.accounts.Session(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if session != nil {
		if err := m.store.Save(&session.User); err != nil {
			return nil, err
		}
	} else {
		if err := m.store.Clear(); err != nil {
			return nil, err
		}
	}

	m.unsubscribe = m.accounts.OnSessionChange(m.apply)

	if session == nil {
		return nil, nil
	}
	return &session.User, nil
}

// apply mirrors a session change. It can fire independently of user action
// (token refresh), so it checks the closed flag.
func (m *Manager) apply(session *scribe.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if session != nil {
		_ = m.store.Save(&session.User)
	} else {
		_ = m.store.Clear()
	}
}

// Close unsubscribes from session changes; later events are ignored.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}
