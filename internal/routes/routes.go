package routes

import (
	"net/http"

	"github.com/visiobyte/inkwell/internal/app"
	"github.com/visiobyte/inkwell/internal/handler"
	"github.com/visiobyte/inkwell/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.RegistrationService, app.ResetService)
	post := handler.NewPostHandler(app.PostService, app.EngagementService)
	profile := handler.NewProfileHandler(app.UserService, app.EngagementService)

	mux := http.NewServeMux()

	// Auth flow (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /auth/register", rateLimiter(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("POST /auth/verify-email", rateLimiter(middleware.RequireGuest(auth.VerifyEmail)))
	mux.HandleFunc("POST /auth/resend-code", rateLimiter(middleware.RequireGuest(auth.ResendCode)))
	mux.HandleFunc("POST /auth/login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// Password reset: request code, confirm code for a grant, reset
	mux.HandleFunc("POST /auth/forgot-password", rateLimiter(middleware.RequireGuest(auth.ForgotPassword)))
	mux.HandleFunc("POST /auth/forgot-password/confirm", rateLimiter(middleware.RequireGuest(auth.ConfirmResetCode)))
	mux.HandleFunc("POST /auth/forgot-password/reset", rateLimiter(middleware.RequireGuest(auth.ResetPassword)))

	// Posts
	mux.HandleFunc("GET /posts", post.List)
	mux.HandleFunc("GET /posts/{slug}", post.Show)
	mux.HandleFunc("POST /posts", middleware.RequireAuth(post.Create))
	mux.HandleFunc("PUT /posts/{id}", middleware.RequireAuth(post.Update))
	mux.HandleFunc("DELETE /posts/{id}", middleware.RequireAuth(post.Delete))
	mux.HandleFunc("POST /posts/{id}/media", middleware.RequireAuth(post.AttachMedia))

	// Engagement
	mux.HandleFunc("POST /posts/{id}/comments", middleware.RequireAuth(post.Comment))
	mux.HandleFunc("POST /posts/{id}/like", middleware.RequireAuth(post.ToggleLike))

	// Profiles
	mux.HandleFunc("GET /users/{username}", profile.Show)
	mux.HandleFunc("PUT /profile", middleware.RequireAuth(profile.Update))
	mux.HandleFunc("POST /profile/avatar", middleware.RequireAuth(profile.SetAvatar))
	mux.HandleFunc("POST /profile/password", middleware.RequireAuth(profile.UpdatePassword))

	// Apply global middleware
	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
	)
}
