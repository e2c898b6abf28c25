package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/visiobyte/inkwell/internal/model"
	"github.com/visiobyte/inkwell/internal/repository"
)

var ErrInvalidTokenType = errors.New("invalid token type")

// TokenService issues and verifies short-lived, single-use typed tokens.
type TokenService struct {
	tokenRepository repository.TokenRepository
}

func NewTokenService(tokenRepository repository.TokenRepository) *TokenService {
	return &TokenService{tokenRepository: tokenRepository}
}

// generateOTP draws a 6-digit code uniformly from [100000, 999999] using the
// CSPRNG, so codes cannot be predicted or biased.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// generateOpaque returns a 32-byte hex token for values that are carried by
// the client rather than typed by the user.
func generateOpaque() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Issue creates and stores a fresh token of the given type for the user.
// Any prior unused tokens of the same type are invalidated first, so the
// newest code is the only live one.
func (s *TokenService) Issue(userID string, tokenType model.TokenType, validity time.Duration) (*model.Token, error) {
	if !tokenType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTokenType, tokenType)
	}

	err := s.tokenRepository.DeleteByUserAndType(userID, tokenType)
	if err != nil {
		slog.Warn("failed to delete old tokens", "error", err, "user_id", userID, "type", tokenType)
	}

	var value string
	switch tokenType {
	case model.TokenTypeResetGrant:
		value, err = generateOpaque()
	default:
		value, err = generateOTP()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.Token{
		UserID:    userID,
		Type:      tokenType,
		Token:     value,
		ExpiresAt: time.Now().Add(validity),
	}
	err = s.tokenRepository.Create(token)
	if err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	return token, nil
}

// Verify consumes the matching token and reports whether it was valid.
// Wrong, expired, and already-used values are indistinguishable to the
// caller, and the first successful verification is the only one: the
// underlying consume is a single conditional update.
func (s *TokenService) Verify(userID, value string, tokenType model.TokenType) bool {
	_, err := s.tokenRepository.Consume(userID, value, tokenType)
	if err != nil {
		if !errors.Is(err, repository.ErrTokenNotFound) {
			slog.Error("token verification failed", "error", err, "user_id", userID, "type", tokenType)
		}
		return false
	}
	return true
}
