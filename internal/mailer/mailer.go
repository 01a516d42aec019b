package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Mailer delivers transactional mail. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendOTP(to, code, purpose string) error
	SendResetLink(to, link string) error
}

type smtpMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPMailer sends mail through a plain SMTP relay. Username may be empty
// for unauthenticated relays.
func NewSMTPMailer(addr, from, username, password string) Mailer {
	m := &smtpMailer{addr: addr, from: from}
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

func (m *smtpMailer) SendOTP(to, code, purpose string) error {
	subject := "Your ScribeSnap verification code"
	if purpose == "reset" {
		subject = "Your ScribeSnap password reset code"
	}
	body := fmt.Sprintf("Your verification code is %s. It expires shortly; if you did not request it, ignore this mail.", code)
	return m.send(to, subject, body)
}

func (m *smtpMailer) SendResetLink(to, link string) error {
	body := fmt.Sprintf("Follow this link to reset your ScribeSnap password:\r\n\r\n%s\r\n\r\nIf you did not request a reset, ignore this mail.", link)
	return m.send(to, "Reset your ScribeSnap password", body)
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

type logMailer struct {
	log zerolog.Logger
}

// NewLogMailer logs mail instead of sending it. Used in development when no
// SMTP relay is configured.
func NewLogMailer(log zerolog.Logger) Mailer {
	return &logMailer{log: log}
}

func (m *logMailer) SendOTP(to, code, purpose string) error {
	m.log.Info().Str("to", to).Str("purpose", purpose).Str("code", code).Msg("otp mail (log mailer)")
	return nil
}

func (m *logMailer) SendResetLink(to, link string) error {
	m.log.Info().Str("to", to).Str("link", link).Msg("reset mail (log mailer)")
	return nil
}
