package api

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"

	"github.com/NguyenTrongHinh/shop-management-system/internal/api/middleware"
	"github.com/NguyenTrongHinh/shop-management-system/internal/cart"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
)

// CartHandlers serves the cart routes. The path {id} is the product held
// in the cart line, not the cart document's id.
type CartHandlers struct {
	carts *cart.Service
}

func (h *CartHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	view, err := h.carts.Get(r.Context(), user.ID)
	if err != nil {
		log.Printf("[API] Get cart failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]*cart.View{"cart": view})
}

func (h *CartHandlers) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string  `json:"productId"`
		Quantity  float64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	quantity, ok := asInt(req.Quantity)
	if !ok {
		respondError(w, http.StatusBadRequest, cart.ErrInvalidQuantity.Error())
		return
	}

	user, _ := middleware.UserFromContext(r.Context())
	view, err := h.carts.Add(r.Context(), user.ID, req.ProductID, quantity)
	if err != nil {
		h.respondCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*cart.View{"cart": view})
}

func (h *CartHandlers) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity float64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	quantity, ok := asInt(req.Quantity)
	if !ok {
		respondError(w, http.StatusBadRequest, cart.ErrInvalidQuantity.Error())
		return
	}

	user, _ := middleware.UserFromContext(r.Context())
	view, err := h.carts.SetQuantity(r.Context(), user.ID, r.PathValue("id"), quantity)
	if err != nil {
		h.respondCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*cart.View{"cart": view})
}

func (h *CartHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	view, err := h.carts.Remove(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		h.respondCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*cart.View{"cart": view})
}

// asInt rejects fractional quantities that JSON numbers would otherwise
// silently truncate.
func asInt(v float64) (int, bool) {
	if v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

func (h *CartHandlers) respondCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, cart.ErrCartNotFound):
		respondError(w, http.StatusNotFound, cart.ErrCartNotFound.Error())
	case errors.Is(err, cart.ErrNotInCart):
		respondError(w, http.StatusNotFound, cart.ErrNotInCart.Error())
	case cart.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[API] Cart operation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
