// HTTP handler for login (public endpoint — no AuthMiddleware).
// Translates HTTP requests into domain/auth calls and maps domain errors to
// HTTP codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/matiasleandrokruk/sqlpilot/internal/domain/auth"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authService *domainauth.Service
}

// NewAuthHandler creates a new AuthHandler backed by the provided Service.
func NewAuthHandler(authService *domainauth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is the response body returned after a successful login.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Login handles POST /auth/login.
//
// Response codes:
//   - 200 OK: login successful
//   - 400 Bad Request: invalid JSON or missing required fields
//   - 401 Unauthorized: invalid credentials
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), domainauth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Token:  result.Token,
		UserID: result.UserID,
		Role:   result.Role,
	})
}
