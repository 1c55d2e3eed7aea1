package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/ticket-metrics/internal/adapters/primary/validation"
	"github.com/lorrc/ticket-metrics/internal/auth"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
)

// bcrypt ignores input past 72 bytes
const maxPasswordLength = 72

// AuthHandler issues viewer tokens.
type AuthHandler struct {
	authService  ports.AuthService
	tokenManager *auth.TokenManager
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService ports.AuthService,
	tokenManager *auth.TokenManager,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenManager: tokenManager,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "auth"),
	}
}

// RegisterRoutes registers the auth endpoints relative to /api/v1/auth.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/token", h.HandleLogin)
}

// --- Request/Response DTOs ---

// LoginRequest defines the expected JSON body for a token request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the login request
func (r *LoginRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("username", r.Username).
		MaxLength("username", r.Username, 128).
		Required("password", r.Password).
		MaxLength("password", r.Password, maxPasswordLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// TokenResponse defines the JSON response of a successful login
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// HandleLogin exchanges viewer credentials for a JWT.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[LoginRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	viewer, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	token, expiresAt, err := h.tokenManager.GenerateToken(viewer.Username)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to sign token", "error", err)
		HandleError(w, r, err, h.errorHandler)
		return
	}

	h.logger.InfoContext(r.Context(), "viewer logged in", "viewer", viewer.Username)
	WriteJSONWithHeaders(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, map[string]string{"Cache-Control": "no-store"})
}
