package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/visiobyte/inkwell/internal/repository"
	"github.com/visiobyte/inkwell/internal/service"
)

type AuthHandler struct {
	authService         *service.AuthService
	registrationService *service.RegistrationService
	resetService        *service.PasswordResetService
}

func NewAuthHandler(
	authService *service.AuthService,
	registrationService *service.RegistrationService,
	resetService *service.PasswordResetService,
) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		registrationService: registrationService,
		resetService:        resetService,
	}
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register creates an unverified account and emails a verification code.
// Registering again with an unverified email resends the code instead.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.registrationService.Register(req.Username, req.Email, req.Password, req.ConfirmPassword)
	switch {
	case errors.Is(err, service.ErrAlreadyRegistered):
		respondError(w, http.StatusConflict, "email is already registered")
		return
	case errors.Is(err, repository.ErrDuplicateUsername):
		respondError(w, http.StatusConflict, "username is taken")
		return
	case errors.Is(err, service.ErrEmailSend):
		// Account exists but the code never left; the client can retry resend
		respondError(w, http.StatusBadGateway, "failed to send verification code")
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusCreated
	message := "verification code sent"
	if result.CodeResent {
		status = http.StatusOK
		message = "account pending verification, code resent"
	}
	respondJSON(w, status, map[string]string{"message": message, "email": result.User.Email})
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyEmail consumes the emailed code and activates the account
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.registrationService.VerifyEmail(req.Email, req.Code)
	switch {
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusUnauthorized, "invalid or expired code")
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "email verified", "username": user.Username})
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendCode issues a fresh verification code, invalidating earlier ones
func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.registrationService.ResendCode(req.Email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound), errors.Is(err, service.ErrAlreadyRegistered):
		// Do not leak which emails exist or are verified
		respondJSON(w, http.StatusOK, map[string]string{"message": "if the address is pending verification, a code was sent"})
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "if the address is pending verification, a code was sent"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and sets the JWT cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	case errors.Is(err, service.ErrEmailNotVerified):
		respondError(w, http.StatusForbidden, "email not verified")
		return
	case errors.Is(err, service.ErrAccountDisabled):
		respondError(w, http.StatusForbidden, "account is disabled")
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	h.authService.SetJWTCookie(w, token, time.Now().Add(h.authService.JWTExpiry()))

	respondJSON(w, http.StatusOK, map[string]string{"message": "signed in", "username": user.Username})
}

// Logout clears the JWT cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// ForgotPassword starts the reset flow by emailing a one-time code
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.resetService.Request(req.Email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		// Same response as success so addresses cannot be probed
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "if the address is registered, a reset code was sent"})
}

type confirmResetRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ConfirmResetCode trades a valid reset code for a short-lived reset grant
func (h *AuthHandler) ConfirmResetCode(w http.ResponseWriter, r *http.Request) {
	var req confirmResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	grant, err := h.resetService.ConfirmCode(req.Email, req.Code)
	switch {
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusUnauthorized, "invalid or expired code")
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"reset_grant": grant})
}

type resetPasswordRequest struct {
	Email      string `json:"email"`
	ResetGrant string `json:"reset_grant"`
	Password   string `json:"password"`
}

// ResetPassword finishes the flow; the grant is single use
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.resetService.Reset(req.Email, req.ResetGrant, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidResetGrant), errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusUnauthorized, "invalid or expired reset grant")
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
