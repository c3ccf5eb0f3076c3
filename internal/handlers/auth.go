package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anvi-leather/api/internal/services"
)

// AuthHandlers exposes back-office authentication endpoints.
type AuthHandlers struct {
	auth services.AuthService
}

// NewAuthHandlers constructs authentication handlers.
func NewAuthHandlers(auth services.AuthService) *AuthHandlers {
	return &AuthHandlers{auth: auth}
}

// Routes registers authentication endpoints.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/login", h.login)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt string           `json:"expiresAt"`
	User      adminUserPayload `json:"user"`
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	var req loginRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	result, err := h.auth.Login(r.Context(), services.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	writeData(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: formatTimestamp(result.ExpiresAt),
		User:      newAdminUserPayload(result.User),
	})
}
