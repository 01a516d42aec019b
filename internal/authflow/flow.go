// Package authflow drives the unauthenticated screens: login, signup, OTP
// verification, forgot-password and reset-sent. It owns which view is active,
// validates input before any network call, and reports a successful sign-in
// to its parent.
package authflow

import (
	"context"
	"strings"

	"scribesnap/internal/scribe"
)

// View identifies the active auth screen. Exactly one is active at a time.
type View int

const (
	ViewLogin View = iota
	ViewSignup
	ViewOTP
	ViewForgotPassword
	ViewResetSent
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewSignup:
		return "signup"
	case ViewOTP:
		return "otp"
	case ViewForgotPassword:
		return "forgot-password"
	case ViewResetSent:
		return "reset-sent"
	default:
		return "unknown"
	}
}

// resendCooldownSeconds is the wait before another code may be requested.
const resendCooldownSeconds = 60

// Flow is the auth view state machine. Transitions happen only through its
// methods; pendingEmail exists only while the OTP or reset-sent view is
// active.
type Flow struct {
	accounts     scribe.AccountService
	onSuccess    func(scribe.User)
	view         View
	pendingEmail string
	countdown    int

	// OTP holds the six digit slots of the verification screen.
	OTP OTPInput
}

// New creates a flow starting at the login view. onSuccess receives the user
// once any path reaches a session.
func New(accounts scribe.AccountService, onSuccess func(scribe.User)) *Flow {
	return &Flow{
		accounts:  accounts,
		onSuccess: onSuccess,
		view:      ViewLogin,
	}
}

// View returns the active screen.
func (f *Flow) View() View {
	return f.view
}

// PendingEmail returns the address carried into the OTP or reset-sent view.
func (f *Flow) PendingEmail() string {
	return f.pendingEmail
}

// GoToSignup switches from login to signup.
func (f *Flow) GoToSignup() {
	f.view = ViewSignup
	f.pendingEmail = ""
}

// GoToForgotPassword switches from login to the forgot-password view.
func (f *Flow) GoToForgotPassword() {
	f.view = ViewForgotPassword
}

// BackToLogin returns to login from signup, forgot-password or reset-sent.
func (f *Flow) BackToLogin() {
	f.view = ViewLogin
	f.pendingEmail = ""
}

// BackToSignup leaves the OTP view, dropping the pending email.
func (f *Flow) BackToSignup() {
	f.view = ViewSignup
	f.pendingEmail = ""
	f.OTP.Clear()
}

// Login validates locally, then signs in. Success is terminal: the user is
// handed to the parent and the flow is done.
func (f *Flow) Login(ctx context.Context, email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	session, err := f.accounts.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}

	f.onSuccess(session.User)
	return nil
}

// Signup validates locally, creates the account and moves to OTP
// verification carrying the submitted email.
func (f *Flow) Signup(ctx context.Context, email, password, name string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	email = strings.TrimSpace(email)
	if err := f.accounts.SignUp(ctx, email, password, strings.TrimSpace(name)); err != nil {
		return err
	}

	f.view = ViewOTP
	f.pendingEmail = email
	f.countdown = resendCooldownSeconds
	f.OTP.Clear()
	return nil
}

// VerifyOTP submits the entered code for the pending email. An incomplete
// code is rejected without a network call.
func (f *Flow) VerifyOTP(ctx context.Context) error {
	if !f.OTP.Complete() {
		return ErrOTPIncomplete
	}

	session, err := f.accounts.VerifyOTP(ctx, f.pendingEmail, f.OTP.Code(), scribe.PurposeSignup)
	if err != nil {
		return err
	}

	f.onSuccess(session.User)
	return nil
}

// Tick advances the resend countdown by one second.
func (f *Flow) Tick() {
	if f.countdown > 0 {
		f.countdown--
	}
}

// Countdown returns the seconds left before resend becomes available.
func (f *Flow) Countdown() int {
	return f.countdown
}

// CanResend reports whether the resend action is enabled.
func (f *Flow) CanResend() bool {
	return f.view == ViewOTP && f.countdown == 0
}

// ResendOTP requests a fresh code, restarts the countdown and clears the
// entered digits.
func (f *Flow) ResendOTP(ctx context.Context) error {
	if !f.CanResend() {
		return nil
	}

	if err := f.accounts.ResendOTP(ctx, f.pendingEmail, scribe.PurposeSignup); err != nil {
		return err
	}

	f.countdown = resendCooldownSeconds
	f.OTP.Clear()
	return nil
}

// ForgotPassword validates the address, requests the reset mail and moves to
// the reset-sent view.
func (f *Flow) ForgotPassword(ctx context.Context, email, redirectTo string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	email = strings.TrimSpace(email)
	if err := f.accounts.ResetPasswordForEmail(ctx, email, redirectTo); err != nil {
		return err
	}

	f.view = ViewResetSent
	f.pendingEmail = email
	return nil
}

// OAuthURL returns the out-of-process Google sign-in entry point.
func (f *Flow) OAuthURL() string {
	return f.accounts.SignInWithOAuthURL()
}

// FriendlyMessage maps a service rejection to the text shown to the user.
// Matching is by substring because the upstream wording is not structured.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Email not confirmed"):
		return "Please verify your email before logging in."
	case strings.Contains(msg, "Invalid login credentials"):
		return "Incorrect email or password."
	case strings.Contains(msg, "expired"):
		return "That code has expired. Request a new one."
	case strings.Contains(msg, "invalid"):
		return "That code doesn't look right. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
