package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/visiobyte/inkwell/internal/model"
)

var (
	ErrTokenNotFound = errors.New("token not found")
)

type TokenRepository interface {
	Create(token *model.Token) error
	Consume(userID, value string, tokenType model.TokenType) (*model.Token, error)
	DeleteByUserAndType(userID string, tokenType model.TokenType) error
	CleanupExpired(olderThan time.Duration) (int64, error)
}

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(token *model.Token) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO auth_tokens (id, user_id, token, type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(query,
		token.ID,
		token.UserID,
		token.Token,
		token.Type,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

// Consume atomically marks the matching token as used and returns it.
// The conditional UPDATE is a single database operation, so two concurrent
// submissions of the same code yield exactly one success; the loser, like a
// wrong, expired, or already-used code, gets ErrTokenNotFound. Failure never
// mutates state.
func (r *tokenRepository) Consume(userID, value string, tokenType model.TokenType) (*model.Token, error) {
	var t model.Token
	now := time.Now()

	query := `
		UPDATE auth_tokens
		SET used_at = $1
		WHERE user_id = $2
		AND token = $3
		AND type = $4
		AND used_at IS NULL
		AND expires_at > $5
		RETURNING *
	`

	err := r.db.Get(&t, query, now, userID, value, tokenType, now)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// DeleteByUserAndType invalidates all unused tokens of the given type, so a
// reissued code is the only live one.
func (r *tokenRepository) DeleteByUserAndType(userID string, tokenType model.TokenType) error {
	query := `DELETE FROM auth_tokens WHERE user_id = $1 AND type = $2 AND used_at IS NULL`
	_, err := r.db.Exec(query, userID, tokenType)
	return err
}

// CleanupExpired removes used and expired tokens older than the given duration.
// Tokens are never required to be deleted for correctness; this is maintenance
// for long-running deployments, called from a cron job if at all.
func (r *tokenRepository) CleanupExpired(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	query := `
		DELETE FROM auth_tokens
		WHERE (used_at IS NOT NULL AND used_at < $1)
		   OR (expires_at < $1)
	`
	result, err := r.db.Exec(query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
