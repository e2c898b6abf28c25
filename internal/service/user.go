package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/visiobyte/inkwell/internal/model"
	"github.com/visiobyte/inkwell/internal/repository"
	"github.com/visiobyte/inkwell/internal/storage"
	"github.com/visiobyte/inkwell/internal/validation"
)

var ErrWrongPassword = errors.New("current password is incorrect")

type UserService struct {
	userRepository    repository.UserRepository
	profileRepository repository.ProfileRepository
	authService       *AuthService
	storage           storage.Storage
}

func NewUserService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	authService *AuthService,
	store storage.Storage,
) *UserService {
	return &UserService{
		userRepository:    userRepository,
		profileRepository: profileRepository,
		authService:       authService,
		storage:           store,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	user, err := s.userRepository.ByID(id)
	if err != nil {
		return nil, err
	}
	s.attachAvatar(user)
	return user, nil
}

func (s *UserService) ByUsername(username string) (*model.User, error) {
	user, err := s.userRepository.ByUsername(username)
	if err != nil {
		return nil, err
	}
	s.attachAvatar(user)
	return user, nil
}

func (s *UserService) attachAvatar(user *model.User) {
	profile, err := s.profileRepository.ByUserID(user.ID)
	if err != nil || profile.ProfilePicture == "" {
		return
	}
	user.AvatarURL = s.storage.URL(profile.ProfilePicture)
}

// UpdatePassword changes a signed-in user's password after re-checking the
// current one.
func (s *UserService) UpdatePassword(userID, currentPassword, newPassword string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return err
	}

	ok, err := s.authService.CheckPassword(user, currentPassword)
	if err != nil {
		return fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}

	err = validation.ValidatePassword(newPassword)
	if err != nil {
		return err
	}

	hash, err := s.authService.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	err = s.userRepository.Update(user)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password updated", "user_id", userID)
	return nil
}

// ProfileUpdate carries the editable profile fields. Nil pointers leave the
// current value untouched.
type ProfileUpdate struct {
	Username *string
	Bio      *string
	About    *string
	Website  *string
	Location *string
	Gender   *string
}

// UpdateProfile applies a partial profile edit. Username changes go through
// the users table and surface ErrDuplicateUsername on conflict.
func (s *UserService) UpdateProfile(userID string, update ProfileUpdate) (*model.Profile, error) {
	if update.Username != nil {
		user, err := s.userRepository.ByID(userID)
		if err != nil {
			return nil, err
		}
		username := strings.TrimSpace(*update.Username)
		err = validation.ValidateUsername(username)
		if err != nil {
			return nil, err
		}
		if username != user.Username {
			user.Username = username
			err = s.userRepository.Update(user)
			if err != nil {
				return nil, err
			}
		}
	}

	profile, err := s.profileRepository.ByUserID(userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		profile = &model.Profile{UserID: userID}
		err = s.profileRepository.Create(profile)
	}
	if err != nil {
		return nil, err
	}

	if update.Bio != nil {
		profile.Bio = strings.TrimSpace(*update.Bio)
	}
	if update.About != nil {
		profile.About = strings.TrimSpace(*update.About)
	}
	if update.Website != nil {
		profile.Website = strings.TrimSpace(*update.Website)
	}
	if update.Location != nil {
		profile.Location = strings.TrimSpace(*update.Location)
	}
	if update.Gender != nil {
		switch *update.Gender {
		case model.GenderMale, model.GenderFemale, model.GenderOther, model.GenderPreferNotToSay:
			profile.Gender = *update.Gender
		default:
			return nil, fmt.Errorf("invalid gender: %q", *update.Gender)
		}
	}

	err = s.profileRepository.Update(profile)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// SetProfilePicture uploads a new avatar and removes the previous object.
func (s *UserService) SetProfilePicture(userID, filename string, file io.Reader) (*model.Profile, error) {
	mediaType, err := MediaTypeForFilename(filename)
	if err != nil {
		return nil, err
	}
	if mediaType != model.MediaTypeImage {
		return nil, fmt.Errorf("%w: avatar must be an image", ErrUnsupportedMedia)
	}

	profile, err := s.profileRepository.ByUserID(userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		profile = &model.Profile{UserID: userID}
		err = s.profileRepository.Create(profile)
	}
	if err != nil {
		return nil, err
	}

	storagePath := filepath.Join("avatars", userID, uuid.New().String()+strings.ToLower(filepath.Ext(filename)))
	err = s.storage.Save(storagePath, file)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	previous := profile.ProfilePicture
	profile.ProfilePicture = storagePath
	err = s.profileRepository.Update(profile)
	if err != nil {
		return nil, err
	}

	if previous != "" {
		delErr := s.storage.Delete(previous)
		if delErr != nil {
			slog.Warn("failed to delete previous avatar", "error", delErr, "path", previous)
		}
	}

	return profile, nil
}

// Deactivate soft-disables an account; sign-in is refused until reactivated.
func (s *UserService) Deactivate(userID string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return err
	}
	user.IsActive = false
	return s.userRepository.Update(user)
}
