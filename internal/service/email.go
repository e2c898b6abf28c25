package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// ErrEmailSend wraps notification dispatch failures. Flows treat it as a
// warning: the state transition that triggered the email is already
// committed, so callers must offer a resend path instead of rolling back.
var ErrEmailSend = errors.New("email send failed")

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appName   string
}

func NewEmailService(apiKey, fromEmail, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appName:   appName,
	}
}

// send is fire-and-forget from the flows' point of view: delivery problems
// come back as ErrEmailSend and never abort the caller's committed state.
func (s *EmailService) send(kind, to, subject, body string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject, "body", body)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY): %w", ErrEmailSend)
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrEmailSend)
	}

	slog.Info("email sent", "type", kind, "to", to)
	return nil
}

func (s *EmailService) SendVerificationCode(email, code string) error {
	subject, body := verificationEmailTemplate(code, s.appName)
	return s.send("email_verification", email, subject, body)
}

func (s *EmailService) SendPasswordResetCode(email, code string) error {
	subject, body := passwordResetEmailTemplate(code, s.appName)
	return s.send("password_reset", email, subject, body)
}

func (s *EmailService) SendWelcomeEmail(email, username string) error {
	subject, body := welcomeEmailTemplate(username, s.appName)
	return s.send("welcome", email, subject, body)
}
