package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/visiobyte/inkwell/internal/config"
	"github.com/visiobyte/inkwell/internal/db"
	"github.com/visiobyte/inkwell/internal/repository"
	"github.com/visiobyte/inkwell/internal/service"
	"github.com/visiobyte/inkwell/internal/storage"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	AuthService         *service.AuthService
	RegistrationService *service.RegistrationService
	ResetService        *service.PasswordResetService
	TokenService        *service.TokenService
	EmailService        *service.EmailService
	UserService         *service.UserService
	PostService         *service.PostService
	EngagementService   *service.EngagementService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	postRepository := repository.NewPostRepository(database)
	mediaRepository := repository.NewMediaRepository(database)
	commentRepository := repository.NewCommentRepository(database)
	likeRepository := repository.NewLikeRepository(database)
	categoryRepository := repository.NewCategoryRepository(database)

	// Storage
	fileStorage, err := newStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	tokenService := service.NewTokenService(tokenRepository)
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry, cfg.IsProduction())
	registrationService := service.NewRegistrationService(
		userRepository,
		profileRepository,
		authService,
		tokenService,
		emailService,
		cfg.TokenEmailVerifyExpiry,
	)
	resetService := service.NewPasswordResetService(
		userRepository,
		authService,
		tokenService,
		emailService,
		cfg.TokenPasswordResetExpiry,
		cfg.TokenResetGrantExpiry,
	)
	userService := service.NewUserService(userRepository, profileRepository, authService, fileStorage)
	postService := service.NewPostService(
		postRepository,
		mediaRepository,
		commentRepository,
		likeRepository,
		categoryRepository,
		fileStorage,
	)
	engagementService := service.NewEngagementService(
		postRepository,
		likeRepository,
		commentRepository,
		userRepository,
		profileRepository,
	)

	// Hourly sweep of consumed and long-expired tokens
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			n, err := tokenRepository.CleanupExpired(24 * time.Hour)
			if err != nil {
				slog.Warn("token cleanup failed", "error", err)
			} else if n > 0 {
				slog.Debug("expired tokens removed", "count", n)
			}
		}
	}()

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		AuthService:         authService,
		RegistrationService: registrationService,
		ResetService:        resetService,
		TokenService:        tokenService,
		EmailService:        emailService,
		UserService:         userService,
		PostService:         postService,
		EngagementService:   engagementService,
	}, nil
}

// newStorage selects S3 when a bucket is configured, otherwise the in-memory
// store used for local development.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.S3Bucket == "" {
		return storage.NewMemoryStorage(cfg.AppURL + "/uploads"), nil
	}
	return storage.NewS3Storage(storage.S3Config{
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Endpoint:      cfg.S3Endpoint,
		PresignExpiry: cfg.S3PresignExpiryPublic,
	})
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
