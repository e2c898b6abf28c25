package model

import (
	"time"
)

// TokenType is a closed discriminator for the purpose of an issued token.
type TokenType string

const (
	TokenTypeEmailVerification TokenType = "email_verification"
	TokenTypePasswordReset     TokenType = "password_reset"
	TokenTypeResetGrant        TokenType = "reset_grant"
	TokenTypeOTP               TokenType = "otp"
)

func (t TokenType) Valid() bool {
	switch t {
	case TokenTypeEmailVerification, TokenTypePasswordReset, TokenTypeResetGrant, TokenTypeOTP:
		return true
	}
	return false
}

type Token struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Type      TokenType  `db:"type"`
	Token     string     `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *Token) IsUsed() bool {
	return t.UsedAt != nil
}

func (t *Token) IsValid() bool {
	return !t.IsExpired() && !t.IsUsed()
}
