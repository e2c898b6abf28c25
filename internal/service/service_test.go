package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/visiobyte/inkwell/internal/db"
	"github.com/visiobyte/inkwell/internal/model"
	"github.com/visiobyte/inkwell/internal/repository"
	"github.com/visiobyte/inkwell/internal/storage"
)

// testEnv wires real repositories over a throwaway sqlite database. Email
// dispatch runs in dev mode so codes are logged, never sent.
type testEnv struct {
	db           *sqlx.DB
	users        repository.UserRepository
	profiles     repository.ProfileRepository
	tokens       repository.TokenRepository
	posts        repository.PostRepository
	media        repository.MediaRepository
	comments     repository.CommentRepository
	likes        repository.LikeRepository
	categories   repository.CategoryRepository
	storage      *storage.MemoryStorage
	auth         *AuthService
	token        *TokenService
	email        *EmailService
	registration *RegistrationService
	reset        *PasswordResetService
	post         *PostService
	engagement   *EngagementService
	user         *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Init("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	env := &testEnv{
		db:         database,
		users:      repository.NewUserRepository(database),
		profiles:   repository.NewProfileRepository(database),
		tokens:     repository.NewTokenRepository(database),
		posts:      repository.NewPostRepository(database),
		media:      repository.NewMediaRepository(database),
		comments:   repository.NewCommentRepository(database),
		likes:      repository.NewLikeRepository(database),
		categories: repository.NewCategoryRepository(database),
		storage:    storage.NewMemoryStorage("http://localhost/uploads"),
	}

	env.email = NewEmailService("", "noreply@example.com", "inkwell-test", true)
	env.token = NewTokenService(env.tokens)
	env.auth = NewAuthService(env.users, "test-secret", time.Hour, false)
	env.registration = NewRegistrationService(env.users, env.profiles, env.auth, env.token, env.email, 10*time.Minute)
	env.reset = NewPasswordResetService(env.users, env.auth, env.token, env.email, 15*time.Minute, 5*time.Minute)
	env.post = NewPostService(env.posts, env.media, env.comments, env.likes, env.categories, env.storage)
	env.engagement = NewEngagementService(env.posts, env.likes, env.comments, env.users, env.profiles)
	env.user = NewUserService(env.users, env.profiles, env.auth, env.storage)

	return env
}

// registerVerified pushes a user through the full two-step registration.
func (env *testEnv) registerVerified(t *testing.T, username, email, password string) *model.User {
	t.Helper()

	_, err := env.registration.Register(username, email, password, password)
	require.NoError(t, err)

	code := env.lastToken(t, email, model.TokenTypeEmailVerification)
	user, err := env.registration.VerifyEmail(email, code)
	require.NoError(t, err)
	return user
}

// lastToken reads the newest unused token value straight from the database,
// standing in for reading the code out of the email.
func (env *testEnv) lastToken(t *testing.T, email string, tokenType model.TokenType) string {
	t.Helper()

	var value string
	err := env.db.Get(&value, `SELECT t.token FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE u.email = $1 AND t.type = $2 AND t.used_at IS NULL
		ORDER BY t.created_at DESC LIMIT 1`, email, tokenType)
	require.NoError(t, err)
	return value
}

func (env *testEnv) countRows(t *testing.T, table, where string, args ...any) int {
	t.Helper()

	var n int
	err := env.db.Get(&n, "SELECT COUNT(*) FROM "+table+" WHERE "+where, args...)
	require.NoError(t, err)
	return n
}
