package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/NguyenTrongHinh/shop-management-system/internal/account"
	"github.com/NguyenTrongHinh/shop-management-system/internal/auth"
)

// AuthHandlers handles registration, login and logout.
type AuthHandlers struct {
	accounts *account.Service
	tokens   *auth.TokenService
}

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AdminSecret string `json:"adminSecret"`
}

// LoginRequest is the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the flat body both register and login return.
type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	Token    string `json:"token"`
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password, req.AdminSecret)
	if err != nil {
		if account.IsValidation(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[API] Register failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		log.Printf("[API] Token generation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
		Token:    token,
	})
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if account.IsValidation(err) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Printf("[API] Login failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		log.Printf("[API] Token generation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
		Token:    token,
	})
}

// Logout exists for client symmetry. Tokens are stateless, so there is
// nothing to revoke server-side.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
