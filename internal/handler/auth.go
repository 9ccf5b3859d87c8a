package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/snipstore/internal/auth"
)

// AuthHandler exchanges the configured API password for a bearer token.
// Only registered when authentication is enabled.
type AuthHandler struct {
	tokens       *auth.TokenService
	passwords    *auth.PasswordService
	passwordHash string
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. passwordHash is the bcrypt hash of
// the owner's API password.
func NewAuthHandler(tokens *auth.TokenService, passwords *auth.PasswordService, passwordHash string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		tokens:       tokens,
		passwords:    passwords,
		passwordHash: passwordHash,
		logger:       logger,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// HandleLogin serves POST /api/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	if err := h.passwords.Verify(h.passwordHash, req.Password); err != nil {
		h.logger.Warn("login rejected")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "invalid credentials",
		})
		return
	}

	token, err := h.tokens.Generate()
	if err != nil {
		h.logger.Error("failed to generate token", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
