package authflow

import (
	"errors"
	"strings"
)

// Validation errors shown inline; they are raised before any network call.
var (
	ErrEmailInvalid     = errors.New("enter a valid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrOTPIncomplete    = errors.New("enter the complete 6-digit code")
)

// validEmail applies the same loose check the forms use: something before an
// @, and a dot somewhere after it.
func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return false
	}
	return strings.IndexByte(email[at+1:], '.') > 0
}

func validateEmail(email string) error {
	if !validEmail(strings.TrimSpace(email)) {
		return ErrEmailInvalid
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}
