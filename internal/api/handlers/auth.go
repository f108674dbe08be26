// auth.go - POST /api/auth: выпуск токена по email и паролю.
package handlers

import (
	"log/slog"
	"net/http"
)

// loginRequest - тело запроса входа.
type loginRequest struct {
	Email    string `json:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=5,max=255"`
}

// loginResponse - выпущенный токен.
type loginResponse struct {
	Token string `json:"token"`
}

// AuthHandler - обработчик входа.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler создаёт обработчик входа.
func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Login - POST /api/auth.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
