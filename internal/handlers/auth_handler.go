// Package handlers decodes requests, delegates to the services and writes
// the JSON envelope. No business rules live here.
package handlers

import (
	"encoding/json"
	"net/http"

	"rechnung-backend/internal/models"
	"rechnung-backend/internal/services"
	"rechnung-backend/pkg/utils"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "Ungültige Anfrage")
		return
	}

	user, token, err := h.users.Signup(r.Context(), &req)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "Ungültige Anfrage")
		return
	}

	user, token, err := h.users.Login(r.Context(), &req)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, authResponse{User: user, Token: token})
}
