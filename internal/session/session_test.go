package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribesnap/internal/scribe"
)

type fakeAccounts struct {
	session     *scribe.Session
	handlers    []func(*scribe.Session)
	unsubCalled int
}

func (f *fakeAccounts) SignUp(ctx context.Context, email, password, name string) error { return nil }

func (f *fakeAccounts) SignInWithPassword(ctx context.Context, email, password string) (*scribe.Session, error) {
	return f.session, nil
}

func (f *fakeAccounts) SignInWithOAuthURL() string { return "" }

func (f *fakeAccounts) AdoptToken(ctx context.Context, token string) (*scribe.Session, error) {
	return f.session, nil
}

func (f *fakeAccounts) VerifyOTP(ctx context.Context, email, code string, purpose scribe.OTPPurpose) (*scribe.Session, error) {
	return f.session, nil
}

func (f *fakeAccounts) ResendOTP(ctx context.Context, email string, purpose scribe.OTPPurpose) error {
	return nil
}

func (f *fakeAccounts) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return nil
}

func (f *fakeAccounts) Session(ctx context.Context) (*scribe.Session, error) {
	return f.session, nil
}

func (f *fakeAccounts) OnSessionChange(handler func(*scribe.Session)) func() {
	f.handlers = append(f.handlers, handler)
	return func() { f.unsubCalled++ }
}

func (f *fakeAccounts) SignOut(ctx context.Context) error { return nil }

func (f *fakeAccounts) fire(s *scribe.Session) {
	for _, h := range f.handlers {
		h(s)
	}
}

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := NewFileStore(storePath(t))
	user := &scribe.User{ID: "u1", Email: "user@example.com", Name: "Tester"}

	require.NoError(t, store.Save(user))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, user, got)

	require.NoError(t, store.Clear())
	got, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStore_MissingFileMeansNoSession(t *testing.T) {
	t.Parallel()

	store := NewFileStore(storePath(t))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStore_MalformedBlobDiscarded(t *testing.T) {
	t.Parallel()

	path := storePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	got, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStore_ClearIdempotent(t *testing.T) {
	t.Parallel()

	store := NewFileStore(storePath(t))
	assert.NoError(t, store.Clear())
	assert.NoError(t, store.Clear())
}

func TestBootstrap_MirrorsExistingSession(t *testing.T) {
	t.Parallel()

	user := scribe.User{ID: "u1", Email: "user@example.com"}
	accounts := &fakeAccounts{session: &scribe.Session{User: user, Token: "tok"}}
	store := NewFileStore(storePath(t))
	mgr := NewManager(accounts, store)

	got, err := mgr.Bootstrap(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user, *got)

	mirrored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, &user, mirrored)
	assert.Len(t, accounts.handlers, 1)
}

func TestBootstrap_NoSessionClearsMirror(t *testing.T) {
	t.Parallel()

	store := NewFileStore(storePath(t))
	require.NoError(t, store.Save(&scribe.User{ID: "stale"}))

	mgr := NewManager(&fakeAccounts{}, store)
	got, err := mgr.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)

	mirrored, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, mirrored)
}

func TestSessionChangeUpdatesMirror(t *testing.T) {
	t.Parallel()

	accounts := &fakeAccounts{}
	store := NewFileStore(storePath(t))
	mgr := NewManager(accounts, store)
	_, err := mgr.Bootstrap(context.Background())
	require.NoError(t, err)

	user := scribe.User{ID: "u2", Email: "other@example.com"}
	accounts.fire(&scribe.Session{User: user, Token: "tok"})

	mirrored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, &user, mirrored)

	// Sign-out clears the mirror.
	accounts.fire(nil)
	mirrored, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, mirrored)
}

func TestClose_UnsubscribesAndIgnoresLaterEvents(t *testing.T) {
	t.Parallel()

	accounts := &fakeAccounts{}
	store := NewFileStore(storePath(t))
	mgr := NewManager(accounts, store)
	_, err := mgr.Bootstrap(context.Background())
	require.NoError(t, err)

	mgr.Close()
	assert.Equal(t, 1, accounts.unsubCalled)

	// An event delivered after Close must not touch the mirror.
	accounts.fire(&scribe.Session{User: scribe.User{ID: "late"}, Token: "tok"})
	mirrored, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, mirrored)
}

func TestBootstrap_AfterCloseDiscarded(t *testing.T) {
	t.Parallel()

	accounts := &fakeAccounts{session: &scribe.Session{User: scribe.User{ID: "u1"}, Token: "tok"}}
	store := NewFileStore(storePath(t))
	mgr := NewManager(accounts, store)

	mgr.Close()
	got, err := mgr.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)

	mirrored, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, mirrored)
}
