package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/api/shared"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/config"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	cfg              config.AuthConfig
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	cfg config.AuthConfig,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
) *AuthHandler {
	return &AuthHandler{
		cfg:              cfg,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
	}
}

// IssueToken handles POST /api/auth/token. It verifies the admin
// credentials and returns a signed bearer token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// Constant-time comparison so the username check leaks no timing
	// signal; the password check is bcrypt and already constant-time.
	usernameMatch := subtle.ConstantTimeCompare(
		[]byte(req.Username), []byte(h.cfg.AdminUsername)) == 1
	passwordErr := h.passwordVerifier.Compare(h.cfg.AdminPasswordHash, req.Password)
	if !usernameMatch || passwordErr != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), req.Username)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		Token:            token,
		TokenType:        "Bearer",
		ExpiresInMinutes: h.cfg.TokenLifetimeMinutes,
	})
}
