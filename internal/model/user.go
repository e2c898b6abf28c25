package model

import (
	"time"
)

type User struct {
	ID              string    `db:"id"`
	Username        string    `db:"username"`
	Email           string    `db:"email"`
	PasswordHash    string    `db:"password_hash"`
	IsEmailVerified bool      `db:"is_email_verified"`
	IsActive        bool      `db:"is_active"`
	IsAdmin         bool      `db:"is_admin"`
	CreatedAt       time.Time `db:"created_at"`

	// Computed fields (not in database)
	AvatarURL string `db:"-"`
}
