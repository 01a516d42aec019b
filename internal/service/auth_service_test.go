package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribesnap/internal/cache"
	"scribesnap/internal/entities"
	"scribesnap/internal/jwt"
	"scribesnap/internal/models"
	"scribesnap/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*entities.User // keyed by email
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entities.User)}
}

func (f *fakeUserRepo) Create(email string, passwordHash *string, name *string, verified bool) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user := &entities.User{
		ID:            fmt.Sprintf("user-%d", f.nextID),
		Email:         email,
		PasswordHash:  passwordHash,
		Name:          name,
		EmailVerified: verified,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	f.users[email] = user
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByID(id string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) MarkVerified(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.EmailVerified = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeUserRepo) UpdatePassword(id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = &passwordHash
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeUserRepo) UpdateProfile(id string, name, avatarURL *string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			if name != nil {
				u.Name = name
			}
			if avatarURL != nil {
				u.AvatarURL = avatarURL
			}
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeCache is an in-memory Cache; TTLs are recorded but never expire.
type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	f.ttls[key] = expiration
	return nil
}

func (f *fakeCache) SetNX(ctx context.Context, key, value string, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value
	f.ttls[key] = expiration
	return true, nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	delete(f.ttls, key)
	return nil
}

func (f *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[key]
	return ok, nil
}

func (f *fakeCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ttl, ok := f.ttls[key]
	if !ok {
		return 0, cache.ErrCacheMiss
	}
	return ttl, nil
}

func (f *fakeCache) drop(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	delete(f.ttls, key)
}

type fakeMailer struct {
	mu    sync.Mutex
	otps  map[string]string // email -> last code
	links map[string]string // email -> last reset link
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{otps: make(map[string]string), links: make(map[string]string)}
}

func (f *fakeMailer) SendOTP(to, code, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otps[to] = code
	return nil
}

func (f *fakeMailer) SendResetLink(to, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[to] = link
	return nil
}

func (f *fakeMailer) lastOTP(to string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.otps[to]
}

type authFixture struct {
	svc    AuthService
	repo   *fakeUserRepo
	cache  *fakeCache
	mailer *fakeMailer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newFakeUserRepo()
	cacheClient := newFakeCache()
	mail := newFakeMailer()
	svc := NewAuthService(repo, jwt.NewJWTService("test-secret", time.Hour), cacheClient, mail, AuthConfig{
		OTPTTL:      10 * time.Minute,
		ResetTTL:    time.Hour,
		BaseURL:     "http://localhost:8080",
		FrontendURL: "http://localhost:5173",
	}, zerolog.Nop())
	return &authFixture{svc: svc, repo: repo, cache: cacheClient, mailer: mail}
}

func (fx *authFixture) signup(t *testing.T, email, password string) {
	t.Helper()
	_, err := fx.svc.SignUp(context.Background(), &models.SignupRequest{Email: email, Password: password})
	require.NoError(t, err)
}

func TestSignUp_SendsOTPAndCreatesUnverifiedUser(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	resp, err := fx.svc.SignUp(context.Background(), &models.SignupRequest{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", resp.Email)

	code := fx.mailer.lastOTP("user@example.com")
	assert.Len(t, code, 6)

	user, err := fx.repo.FindByEmail("user@example.com")
	require.NoError(t, err)
	assert.False(t, user.EmailVerified)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.signup(t, "user@example.com", "secret1")

	_, err := fx.svc.SignUp(context.Background(), &models.SignupRequest{Email: "user@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_UnverifiedAccountRejected(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.signup(t, "user@example.com", "secret1")

	_, err := fx.svc.Login(context.Background(), &models.LoginRequest{Email: "user@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.signup(t, "user@example.com", "secret1")

	_, err := fx.svc.Login(context.Background(), &models.LoginRequest{Email: "user@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	_, err := fx.svc.Login(context.Background(), &models.LoginRequest{Email: "ghost@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyOTP_FullSignupFlow(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.signup(t, "user@example.com", "secret1")
	code := fx.mailer.lastOTP("user@example.com")

	session, err := fx.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{
		Email: "user@example.com", Code: code, Purpose: PurposeSignup,
	})
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", session.User.Email)
	assert.NotEmpty(t, session.Token)

	// Now verified, password login works.
	login, err := fx.svc.Login(context.Background(), &models.LoginRequest{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.signup(t, "user@example.com", "secret1")
	code := fx.mailer.lastOTP("user@example.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err := fx.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{
		Email: "user@example.com", Code: wrong, Purpose: PurposeSignup,
	})
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestVerifyOTP_CodeIsConsumed(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.signup(t, "user@example.com", "secret1")
	code := fx.mailer.lastOTP("user@example.com")

	req := &models.VerifyOTPRequest{Email: "user@example.com", Code: code, Purpose: PurposeSignup}
	_, err := fx.svc.VerifyOTP(context.Background(), req)
	require.NoError(t, err)

	_, err = fx.svc.VerifyOTP(context.Background(), req)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestVerifyOTP_ExpiredCode(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.signup(t, "user@example.com", "secret1")

	// Simulate Redis expiring the code.
	fx.cache.drop(otpKey(PurposeSignup, "user@example.com"))

	_, err := fx.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{
		Email: "user@example.com", Code: "123456", Purpose: PurposeSignup,
	})
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestResendOTP_CooldownEnforced(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.signup(t, "user@example.com", "secret1")

	err := fx.svc.ResendOTP(context.Background(), &models.ResendOTPRequest{Email: "user@example.com", Purpose: PurposeSignup})
	assert.ErrorIs(t, err, ErrResendCooldown)

	// Cooldown elapsed.
	fx.cache.drop(cooldownKey(PurposeSignup, "user@example.com"))
	first := fx.mailer.lastOTP("user@example.com")

	err = fx.svc.ResendOTP(context.Background(), &models.ResendOTPRequest{Email: "user@example.com", Purpose: PurposeSignup})
	require.NoError(t, err)
	assert.NotEmpty(t, fx.mailer.lastOTP("user@example.com"))
	_ = first // a fresh code may rarely collide with the old one; presence is what matters
}

func TestResendOTP_UnknownEmailSilentlyIgnored(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	err := fx.svc.ResendOTP(context.Background(), &models.ResendOTPRequest{Email: "ghost@example.com", Purpose: PurposeSignup})
	assert.NoError(t, err)
	assert.Empty(t, fx.mailer.lastOTP("ghost@example.com"))
}

func TestForgotPassword_UnknownEmailDoesNotLeak(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	err := fx.svc.ForgotPassword(context.Background(), &models.ForgotPasswordRequest{Email: "ghost@example.com"})
	assert.NoError(t, err)
	assert.Empty(t, fx.mailer.links["ghost@example.com"])
}

func TestResetPassword_FullFlow(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.signup(t, "user@example.com", "secret1")
	code := fx.mailer.lastOTP("user@example.com")
	_, err := fx.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{Email: "user@example.com", Code: code, Purpose: PurposeSignup})
	require.NoError(t, err)

	require.NoError(t, fx.svc.ForgotPassword(context.Background(), &models.ForgotPasswordRequest{Email: "user@example.com"}))
	link := fx.mailer.links["user@example.com"]
	require.Contains(t, link, "token=")
	token := link[len(link)-36:] // uuid at the end of the link

	require.NoError(t, fx.svc.ResetPassword(context.Background(), &models.ResetPasswordRequest{Token: token, Password: "newsecret"}))

	// Old password no longer works, new one does.
	_, err = fx.svc.Login(context.Background(), &models.LoginRequest{Email: "user@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = fx.svc.Login(context.Background(), &models.LoginRequest{Email: "user@example.com", Password: "newsecret"})
	assert.NoError(t, err)

	// Token is single use.
	err = fx.svc.ResetPassword(context.Background(), &models.ResetPasswordRequest{Token: token, Password: "another1"})
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetPassword_BadToken(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	err := fx.svc.ResetPassword(context.Background(), &models.ResetPasswordRequest{Token: "nope", Password: "newsecret"})
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestLogoutRevokesToken(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)

	revoked, err := fx.svc.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, fx.svc.Logout(context.Background(), "jti-1", time.Hour))

	revoked, err = fx.svc.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.signup(t, "user@example.com", "secret1")
	user, err := fx.repo.FindByEmail("user@example.com")
	require.NoError(t, err)

	name := "New Name"
	updated, err := fx.svc.UpdateProfile(context.Background(), user.ID, &models.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "New Name", *updated.Name)
}
