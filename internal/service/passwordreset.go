package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/visiobyte/inkwell/internal/model"
	"github.com/visiobyte/inkwell/internal/repository"
	"github.com/visiobyte/inkwell/internal/validation"
)

var ErrInvalidResetGrant = errors.New("invalid or expired reset grant")

// PasswordResetService drives the three-step forgot-password exchange:
// Request emails a code, ConfirmCode trades the code for a short-lived
// single-use grant, and Reset requires that grant to replace the credential.
// The grant is what ties step 3 to a successful step 2; the email address
// alone can never reset a password.
type PasswordResetService struct {
	userRepository repository.UserRepository
	authService    *AuthService
	tokenService   *TokenService
	emailService   *EmailService
	resetExpiry    time.Duration
	grantExpiry    time.Duration
}

func NewPasswordResetService(
	userRepository repository.UserRepository,
	authService *AuthService,
	tokenService *TokenService,
	emailService *EmailService,
	resetExpiry time.Duration,
	grantExpiry time.Duration,
) *PasswordResetService {
	return &PasswordResetService{
		userRepository: userRepository,
		authService:    authService,
		tokenService:   tokenService,
		emailService:   emailService,
		resetExpiry:    resetExpiry,
		grantExpiry:    grantExpiry,
	}
}

// Request issues a password_reset code and emails it. An unknown email
// returns ErrUserNotFound without creating anything. A failed dispatch does
// not undo the issued token; it surfaces as a wrapped ErrEmailSend.
func (s *PasswordResetService) Request(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		return err
	}

	token, err := s.tokenService.Issue(user.ID, model.TokenTypePasswordReset, s.resetExpiry)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	err = s.emailService.SendPasswordResetCode(user.Email, token.Token)
	if err != nil {
		slog.Warn("failed to send password reset email", "error", err, "email", user.Email)
		return err
	}

	return nil
}

// ConfirmCode consumes the emailed code. On success it returns the value of
// a fresh reset grant; the code itself is spent and cannot be replayed at
// the reset step.
func (s *PasswordResetService) ConfirmCode(email, code string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCode
		}
		return "", err
	}

	if !s.tokenService.Verify(user.ID, strings.TrimSpace(code), model.TokenTypePasswordReset) {
		return "", ErrInvalidCode
	}

	grant, err := s.tokenService.Issue(user.ID, model.TokenTypeResetGrant, s.grantExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to issue reset grant: %w", err)
	}

	return grant.Token, nil
}

// Reset consumes the grant from ConfirmCode and replaces the credential.
// The password is validated first so a weak one doesn't burn the grant.
func (s *PasswordResetService) Reset(email, grant, newPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidatePassword(newPassword)
	if err != nil {
		return err
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetGrant
		}
		return err
	}

	if !s.tokenService.Verify(user.ID, grant, model.TokenTypeResetGrant) {
		return ErrInvalidResetGrant
	}

	passwordHash, err := s.authService.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = passwordHash
	err = s.userRepository.Update(user)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password reset completed", "user_id", user.ID)
	return nil
}
