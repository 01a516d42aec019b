package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"scribesnap/internal/cache"
	"scribesnap/internal/jwt"
	"scribesnap/internal/mailer"
	"scribesnap/internal/models"
	"scribesnap/internal/repository"
)

// Error texts mirror the wording the frontend matches on, so they are part of
// the API surface and must not be reworded casually.
var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("Email not confirmed")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeInvalid        = errors.New("invalid verification code")
	ErrResendCooldown     = errors.New("please wait before requesting another code")
	ErrResetTokenInvalid  = errors.New("reset link is invalid or expired")
	ErrOAuthStateInvalid  = errors.New("invalid oauth state")
)

// OTP purposes accepted by VerifyOTP/ResendOTP.
const (
	PurposeSignup = "signup"
	PurposeReset  = "reset"
)

const resendCooldown = 60 * time.Second

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthService defines the interface for authentication business logic.
type AuthService interface {
	SignUp(ctx context.Context, req *models.SignupRequest) (*models.SignupResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.SessionResponse, error)
	VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) (*models.SessionResponse, error)
	ResendOTP(ctx context.Context, req *models.ResendOTPRequest) error
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	GoogleAuthURL(ctx context.Context) (string, error)
	GoogleCallback(ctx context.Context, state, code string) (*models.SessionResponse, error)
	CurrentUser(ctx context.Context, userID string) (*models.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UserResponse, error)
	Logout(ctx context.Context, tokenID string, remaining time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthConfig carries the knobs the auth service needs from the environment.
type AuthConfig struct {
	OTPTTL             time.Duration
	ResetTTL           time.Duration
	BaseURL            string
	FrontendURL        string
	GoogleClientID     string
	GoogleClientSecret string
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *jwt.JWTService
	cache      cache.Cache
	mail       mailer.Mailer
	cfg        AuthConfig
	oauth      *oauth2.Config
	log        zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, jwtService *jwt.JWTService, cacheClient cache.Cache, mail mailer.Mailer, cfg AuthConfig, log zerolog.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		cache:      cacheClient,
		mail:       mail,
		cfg:        cfg,
		log:        log,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + "/api/v1/auth/oauth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleEndpoint,
		},
	}
}

func otpKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

func cooldownKey(purpose, email string) string {
	return fmt.Sprintf("otp:cooldown:%s:%s", purpose, email)
}

func resetKey(token string) string {
	return "pwreset:" + token
}

func revokedKey(tokenID string) string {
	return "session:revoked:" + tokenID
}

func stateKey(state string) string {
	return "oauth:state:" + state
}

// generateOTP returns a random 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// issueOTP stores a fresh code for the address and mails it. The cooldown key
// throttles how often a new code can be requested.
func (s *authService) issueOTP(ctx context.Context, purpose, email string) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}

	if err := s.cache.Set(ctx, otpKey(purpose, email), code, s.cfg.OTPTTL); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	if err := s.cache.Set(ctx, cooldownKey(purpose, email), "1", resendCooldown); err != nil {
		return fmt.Errorf("failed to store resend cooldown: %w", err)
	}

	if err := s.mail.SendOTP(email, code, purpose); err != nil {
		return fmt.Errorf("failed to send verification mail: %w", err)
	}

	s.log.Info().Str("email", email).Str("purpose", purpose).Msg("verification code issued")
	return nil
}

func (s *authService) session(user *models.UserResponse) (*models.SessionResponse, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.SessionResponse{User: *user, Token: token}, nil
}

// SignUp creates an unverified account and mails a 6-digit code.
func (s *authService) SignUp(ctx context.Context, req *models.SignupRequest) (*models.SignupResponse, error) {
	existing, err := s.userRepo.FindByEmail(req.Email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashed)

	user, err := s.userRepo.Create(req.Email, &hash, req.Name, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.issueOTP(ctx, PurposeSignup, user.Email); err != nil {
		return nil, err
	}

	return &models.SignupResponse{
		Message: "Verification code sent. Check your email to confirm the account.",
		Email:   user.Email,
	}, nil
}

// Login authenticates by password. Unverified accounts are rejected so the
// frontend can route the user back to OTP verification.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.SessionResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.PasswordHash == nil {
		// OAuth-only account; there is no password to check.
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotConfirmed
	}

	return s.session(toUserResponse(user))
}

// VerifyOTP checks a mailed code. On success the account is marked verified,
// the code is consumed, and a session is issued.
func (s *authService) VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) (*models.SessionResponse, error) {
	stored, err := s.cache.Get(ctx, otpKey(req.Purpose, req.Email))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrCodeExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load verification code: %w", err)
	}
	if stored != req.Code {
		return nil, ErrCodeInvalid
	}

	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, ErrCodeInvalid
	}

	if !user.EmailVerified {
		if err := s.userRepo.MarkVerified(user.ID); err != nil {
			return nil, fmt.Errorf("failed to mark user verified: %w", err)
		}
		user.EmailVerified = true
	}

	// Consume the code; a second submit of the same code must fail.
	if err := s.cache.Delete(ctx, otpKey(req.Purpose, req.Email)); err != nil {
		s.log.Warn().Err(err).Str("email", req.Email).Msg("failed to delete used verification code")
	}

	return s.session(toUserResponse(user))
}

// ResendOTP issues a new code unless the cooldown from the previous send is
// still running.
func (s *authService) ResendOTP(ctx context.Context, req *models.ResendOTPRequest) error {
	if _, err := s.userRepo.FindByEmail(req.Email); err != nil {
		// Don't leak whether the address is registered.
		return nil
	}

	ok, err := s.cache.SetNX(ctx, cooldownKey(req.Purpose, req.Email), "1", resendCooldown)
	if err != nil {
		return fmt.Errorf("failed to check resend cooldown: %w", err)
	}
	if !ok {
		if remaining, err := s.cache.TTL(ctx, cooldownKey(req.Purpose, req.Email)); err == nil {
			s.log.Debug().Str("email", req.Email).Dur("remaining", remaining).Msg("resend throttled")
		}
		return ErrResendCooldown
	}

	return s.issueOTP(ctx, req.Purpose, req.Email)
}

// ForgotPassword mails a reset link. Always succeeds from the caller's
// perspective so addresses cannot be enumerated.
func (s *authService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		s.log.Debug().Str("email", req.Email).Msg("reset requested for unknown address")
		return nil
	}

	token := uuid.NewString()
	if err := s.cache.Set(ctx, resetKey(token), user.ID, s.cfg.ResetTTL); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	target := req.RedirectTo
	if target == "" {
		target = s.cfg.FrontendURL + "/reset-password"
	}
	link := fmt.Sprintf("%s?token=%s", target, url.QueryEscape(token))

	if err := s.mail.SendResetLink(user.Email, link); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}

	s.log.Info().Str("email", req.Email).Msg("password reset link issued")
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	userID, err := s.cache.Get(ctx, resetKey(req.Token))
	if errors.Is(err, cache.ErrCacheMiss) {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("failed to load reset token: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(userID, string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.cache.Delete(ctx, resetKey(req.Token)); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete used reset token")
	}
	return nil
}

// GoogleAuthURL builds the consent-page redirect with a one-shot state nonce.
func (s *authService) GoogleAuthURL(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.cache.Set(ctx, stateKey(state), "1", 10*time.Minute); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return s.oauth.AuthCodeURL(state), nil
}

type googleUserinfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleCallback exchanges the authorization code, upserts a verified user
// and issues a session.
func (s *authService) GoogleCallback(ctx context.Context, state, code string) (*models.SessionResponse, error) {
	if _, err := s.cache.Get(ctx, stateKey(state)); err != nil {
		return nil, ErrOAuthStateInvalid
	}
	if err := s.cache.Delete(ctx, stateKey(state)); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete oauth state")
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	info, err := s.fetchGoogleUserinfo(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(info.Email)
	if errors.Is(err, repository.ErrNotFound) {
		var name, avatar *string
		if info.Name != "" {
			name = &info.Name
		}
		user, err = s.userRepo.Create(info.Email, nil, name, true)
		if err != nil {
			return nil, fmt.Errorf("failed to create oauth user: %w", err)
		}
		if info.Picture != "" {
			avatar = &info.Picture
			if user, err = s.userRepo.UpdateProfile(user.ID, nil, avatar); err != nil {
				return nil, fmt.Errorf("failed to store avatar: %w", err)
			}
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up oauth user: %w", err)
	} else if !user.EmailVerified {
		// The provider attests the address; the account no longer needs OTP.
		if err := s.userRepo.MarkVerified(user.ID); err != nil {
			return nil, fmt.Errorf("failed to mark oauth user verified: %w", err)
		}
		user.EmailVerified = true
	}

	return s.session(toUserResponse(user))
}

func (s *authService) fetchGoogleUserinfo(ctx context.Context, token *oauth2.Token) (*googleUserinfo, error) {
	resp, err := s.oauth.Client(ctx, token).Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("userinfo response missing email")
	}
	return &info, nil
}

// CurrentUser resolves the session's user for GET /me.
func (s *authService) CurrentUser(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// UpdateProfile changes the display name and/or avatar.
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	user, err := s.userRepo.UpdateProfile(userID, req.Name, req.AvatarURL)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Logout denylists the token until its natural expiry.
func (s *authService) Logout(ctx context.Context, tokenID string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, revokedKey(tokenID), "1", remaining); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token was signed out.
func (s *authService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.cache.Exists(ctx, revokedKey(tokenID))
}
