package service

import (
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visiobyte/inkwell/internal/model"
)

func createUser(t *testing.T, env *testEnv, email string) *model.User {
	t.Helper()

	hash, err := env.auth.HashPassword("correct-horse-battery")
	require.NoError(t, err)

	user := &model.User{
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	require.NoError(t, env.users.Create(user))
	return user
}

func TestTokenIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	user := createUser(t, env, "single@example.com")

	token, err := env.token.Issue(user.ID, model.TokenTypeEmailVerification, 10*time.Minute)
	require.NoError(t, err)

	assert.True(t, env.token.Verify(user.ID, token.Token, model.TokenTypeEmailVerification))
	assert.False(t, env.token.Verify(user.ID, token.Token, model.TokenTypeEmailVerification),
		"a consumed token must not verify again")
}

func TestTokenExpiry(t *testing.T) {
	env := newTestEnv(t)
	user := createUser(t, env, "expired@example.com")

	token, err := env.token.Issue(user.ID, model.TokenTypePasswordReset, -time.Minute)
	require.NoError(t, err)

	assert.False(t, env.token.Verify(user.ID, token.Token, model.TokenTypePasswordReset))
}

func TestTokenTypeMustMatch(t *testing.T) {
	env := newTestEnv(t)
	user := createUser(t, env, "typed@example.com")

	token, err := env.token.Issue(user.ID, model.TokenTypeEmailVerification, 10*time.Minute)
	require.NoError(t, err)

	assert.False(t, env.token.Verify(user.ID, token.Token, model.TokenTypePasswordReset))
	assert.True(t, env.token.Verify(user.ID, token.Token, model.TokenTypeEmailVerification))
}

func TestTokenUserMustMatch(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env, "alice@example.com")
	bob := createUser(t, env, "bob@example.com")

	token, err := env.token.Issue(alice.ID, model.TokenTypeEmailVerification, 10*time.Minute)
	require.NoError(t, err)

	assert.False(t, env.token.Verify(bob.ID, token.Token, model.TokenTypeEmailVerification))
}

func TestIssueRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)
	user := createUser(t, env, "badtype@example.com")

	_, err := env.token.Issue(user.ID, model.TokenType("session"), 10*time.Minute)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestReissueInvalidatesPriorTokens(t *testing.T) {
	env := newTestEnv(t)
	user := createUser(t, env, "reissue@example.com")

	first, err := env.token.Issue(user.ID, model.TokenTypeEmailVerification, 10*time.Minute)
	require.NoError(t, err)
	second, err := env.token.Issue(user.ID, model.TokenTypeEmailVerification, 10*time.Minute)
	require.NoError(t, err)

	assert.False(t, env.token.Verify(user.ID, first.Token, model.TokenTypeEmailVerification),
		"reissue must invalidate the earlier code")
	assert.True(t, env.token.Verify(user.ID, second.Token, model.TokenTypeEmailVerification))
}

func TestReissueKeepsOtherTypes(t *testing.T) {
	env := newTestEnv(t)
	user := createUser(t, env, "othertype@example.com")

	reset, err := env.token.Issue(user.ID, model.TokenTypePasswordReset, 10*time.Minute)
	require.NoError(t, err)
	_, err = env.token.Issue(user.ID, model.TokenTypeEmailVerification, 10*time.Minute)
	require.NoError(t, err)

	assert.True(t, env.token.Verify(user.ID, reset.Token, model.TokenTypePasswordReset))
}

func TestOTPFormat(t *testing.T) {
	env := newTestEnv(t)
	user := createUser(t, env, "otp@example.com")

	sixDigits := regexp.MustCompile(`^[1-9][0-9]{5}$`)
	for i := 0; i < 20; i++ {
		token, err := env.token.Issue(user.ID, model.TokenTypeEmailVerification, time.Minute)
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, token.Token)
	}
}

func TestConcurrentVerifyExactlyOneWinner(t *testing.T) {
	env := newTestEnv(t)
	user := createUser(t, env, "race@example.com")

	token, err := env.token.Issue(user.ID, model.TokenTypeEmailVerification, 10*time.Minute)
	require.NoError(t, err)

	const workers = 10
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if env.token.Verify(user.ID, token.Token, model.TokenTypeEmailVerification) {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one concurrent verification may succeed")
}
