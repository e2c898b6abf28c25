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

var (
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrAlreadyRegistered = errors.New("email already registered, please sign in")
	ErrInvalidCode       = errors.New("invalid or expired code")
)

// RegistrationService drives account creation and the email-verification
// state machine: NEW -> PENDING_VERIFICATION -> VERIFIED.
type RegistrationService struct {
	userRepository    repository.UserRepository
	profileRepository repository.ProfileRepository
	authService       *AuthService
	tokenService      *TokenService
	emailService      *EmailService
	verifyExpiry      time.Duration
}

func NewRegistrationService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	authService *AuthService,
	tokenService *TokenService,
	emailService *EmailService,
	verifyExpiry time.Duration,
) *RegistrationService {
	return &RegistrationService{
		userRepository:    userRepository,
		profileRepository: profileRepository,
		authService:       authService,
		tokenService:      tokenService,
		emailService:      emailService,
		verifyExpiry:      verifyExpiry,
	}
}

// RegisterResult is the discriminated outcome of Register.
type RegisterResult struct {
	User *model.User

	// CodeResent is true when the email belonged to an existing unverified
	// account: no new user was created, a fresh code was issued instead.
	CodeResent bool
}

// Register creates an unverified account and emails a verification code.
//
// Input checks run before any database mutation. An existing verified email
// is rejected with ErrAlreadyRegistered; an existing unverified one gets a
// fresh code. A failed email dispatch does not undo the committed user and
// token: it surfaces as a wrapped ErrEmailSend alongside a non-nil result,
// and the caller should offer a resend.
func (s *RegistrationService) Register(username, email, password, confirmPassword string) (*RegisterResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.userRepository.ByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if existing != nil {
		if existing.IsEmailVerified {
			return nil, ErrAlreadyRegistered
		}

		// Unverified account: stay in PENDING_VERIFICATION with a fresh code.
		result := &RegisterResult{User: existing, CodeResent: true}
		err = s.issueAndSend(existing)
		if err != nil {
			return result, err
		}
		return result, nil
	}

	passwordHash, err := s.authService.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = s.profileRepository.Create(&model.Profile{UserID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "email", email)

	result := &RegisterResult{User: user}
	err = s.issueAndSend(user)
	if err != nil {
		return result, err
	}
	return result, nil
}

// ResendCode issues a new verification code for an unverified account.
func (s *RegistrationService) ResendCode(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrAlreadyRegistered
	}

	return s.issueAndSend(user)
}

// VerifyEmail consumes the submitted code and, on success, marks the account
// verified. VERIFIED is terminal: a wrong code leaves the account pending and
// never mutates anything.
func (s *RegistrationService) VerifyEmail(email, code string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	if !s.tokenService.Verify(user.ID, strings.TrimSpace(code), model.TokenTypeEmailVerification) {
		return nil, ErrInvalidCode
	}

	user.IsEmailVerified = true
	err = s.userRepository.Update(user)
	if err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}

	slog.Info("email verified", "user_id", user.ID, "email", user.Email)

	err = s.emailService.SendWelcomeEmail(user.Email, user.Username)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "email", user.Email)
	}

	return user, nil
}

func (s *RegistrationService) issueAndSend(user *model.User) error {
	token, err := s.tokenService.Issue(user.ID, model.TokenTypeEmailVerification, s.verifyExpiry)
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}

	err = s.emailService.SendVerificationCode(user.Email, token.Token)
	if err != nil {
		slog.Warn("failed to send verification email", "error", err, "email", user.Email)
		return err
	}
	return nil
}
