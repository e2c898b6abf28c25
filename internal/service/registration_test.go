package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visiobyte/inkwell/internal/model"
	"github.com/visiobyte/inkwell/internal/repository"
)

func TestRegisterCreatesPendingAccount(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.registration.Register("dana", "dana@example.com", "pa55word-fine", "pa55word-fine")
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.False(t, result.CodeResent)
	assert.False(t, result.User.IsEmailVerified)

	// An empty profile row exists from the start
	_, err = env.profiles.ByUserID(result.User.ID)
	assert.NoError(t, err)

	// A verification code is pending
	assert.Equal(t, 1, env.countRows(t, "auth_tokens", "user_id = $1 AND used_at IS NULL", result.User.ID))
}

func TestRegisterPasswordMismatch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.registration.Register("dana", "dana@example.com", "pa55word-fine", "different")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, 0, env.countRows(t, "users", "email = $1", "dana@example.com"))
}

func TestRegisterVerifiedEmailRejected(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "dana", "dana@example.com", "pa55word-fine")

	_, err := env.registration.Register("dana2", "dana@example.com", "pa55word-fine", "pa55word-fine")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterUnverifiedEmailResendsCode(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.registration.Register("dana", "dana@example.com", "pa55word-fine", "pa55word-fine")
	require.NoError(t, err)
	firstCode := env.lastToken(t, "dana@example.com", model.TokenTypeEmailVerification)

	second, err := env.registration.Register("dana", "dana@example.com", "pa55word-fine", "pa55word-fine")
	require.NoError(t, err)
	assert.True(t, second.CodeResent)
	assert.Equal(t, first.User.ID, second.User.ID, "no second account may be created")

	// The first code is dead, the fresh one works
	_, err = env.registration.VerifyEmail("dana@example.com", firstCode)
	assert.ErrorIs(t, err, ErrInvalidCode)

	freshCode := env.lastToken(t, "dana@example.com", model.TokenTypeEmailVerification)
	user, err := env.registration.VerifyEmail("dana@example.com", freshCode)
	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)
}

func TestVerifyEmailWrongCodeLeavesAccountPending(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.registration.Register("dana", "dana@example.com", "pa55word-fine", "pa55word-fine")
	require.NoError(t, err)

	_, err = env.registration.VerifyEmail("dana@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)

	user, err := env.users.ByID(result.User.ID)
	require.NoError(t, err)
	assert.False(t, user.IsEmailVerified)

	// The real code still works afterwards
	code := env.lastToken(t, "dana@example.com", model.TokenTypeEmailVerification)
	_, err = env.registration.VerifyEmail("dana@example.com", code)
	assert.NoError(t, err)
}

func TestVerifyEmailUnknownAddress(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.registration.VerifyEmail("ghost@example.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.registration.Register("dana", "dana@example.com", "pa55word-fine", "pa55word-fine")
	require.NoError(t, err)

	_, err = env.auth.Login("dana@example.com", "pa55word-fine")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	code := env.lastToken(t, "dana@example.com", model.TokenTypeEmailVerification)
	_, err = env.registration.VerifyEmail("dana@example.com", code)
	require.NoError(t, err)

	user, err := env.auth.Login("dana@example.com", "pa55word-fine")
	require.NoError(t, err)
	assert.Equal(t, "dana", user.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "dana", "dana@example.com", "pa55word-fine")

	_, err := env.auth.Login("dana@example.com", "not-the-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login("nobody@example.com", "pa55word-fine")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown email and wrong password must be indistinguishable")
}

func TestLoginDisabledAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerVerified(t, "dana", "dana@example.com", "pa55word-fine")

	require.NoError(t, env.user.Deactivate(user.ID))

	_, err := env.auth.Login("dana@example.com", "pa55word-fine")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestResendCodeForVerifiedAccount(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "dana", "dana@example.com", "pa55word-fine")

	err := env.registration.ResendCode("dana@example.com")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestResendCodeUnknownAddress(t *testing.T) {
	env := newTestEnv(t)

	err := env.registration.ResendCode("ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
