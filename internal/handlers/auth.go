package handlers

import (
	"encoding/json"
	"net/http"

	"crestmont/internal/services"
)

// AuthHandler exposes login and identity lookup
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	result, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Login successful", Data: result})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Not authenticated"})
		return
	}
	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Current user", Data: user})
}
