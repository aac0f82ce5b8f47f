package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/NguyenTrongHinh/shop-management-system/internal/account"
	"github.com/NguyenTrongHinh/shop-management-system/internal/api/middleware"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
)

// UserHandlers serves the profile routes and the admin user management
// routes.
type UserHandlers struct {
	accounts *account.Service
}

func (h *UserHandlers) GetMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var upd account.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// Self-service updates can never escalate the role.
	upd.IsAdmin = nil

	updated, err := h.accounts.Apply(r.Context(), user.ID, upd)
	if err != nil {
		h.respondAccountError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		log.Printf("[API] List users failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *UserHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondAccountError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var upd account.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.accounts.Apply(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		h.respondAccountError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *UserHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respondAccountError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (h *UserHandlers) respondAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case account.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[API] User operation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
