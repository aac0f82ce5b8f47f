package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/NguyenTrongHinh/shop-management-system/internal/api/middleware"
	"github.com/NguyenTrongHinh/shop-management-system/internal/category"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

// CategoryHandlers serves the category routes.
type CategoryHandlers struct {
	categories *category.Service
}

func (h *CategoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		log.Printf("[API] List categories failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	respondJSON(w, http.StatusOK, map[string][]*model.Category{"categories": categories})
}

func (h *CategoryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, _ := middleware.UserFromContext(r.Context())
	cat, err := h.categories.Create(r.Context(), req.Name, req.Description, user.ID)
	if err != nil {
		h.respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]*model.Category{"category": cat})
}

func (h *CategoryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var upd category.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cat, err := h.categories.Apply(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		h.respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*model.Category{"category": cat})
}

func (h *CategoryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

func (h *CategoryHandlers) respondCategoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Category not found")
	case category.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[API] Category operation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
