package validation

import (
	"errors"
	"strings"
)

// ValidateUsername validates a display username
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)

	if trimmed == "" {
		return errors.New("username is required")
	}

	if len(trimmed) < 2 {
		return errors.New("username is too short (min 2 characters)")
	}

	if len(trimmed) > 150 {
		return errors.New("username is too long (max 150 characters)")
	}

	return nil
}
