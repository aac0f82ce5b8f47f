package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/NguyenTrongHinh/shop-management-system/internal/api/middleware"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/order"
)

// OrderHandlers serves the order routes.
type OrderHandlers struct {
	orders *order.Service
}

func (h *OrderHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShippingAddress string `json:"shippingAddress"`
		PaymentMethod   string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, _ := middleware.UserFromContext(r.Context())
	o, err := h.orders.Create(r.Context(), user.ID, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

// List returns the caller's orders; admins see every order.
func (h *OrderHandlers) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var err error
	var orders any
	if user.IsAdmin {
		orders, err = h.orders.List(r.Context())
	} else {
		orders, err = h.orders.ListByUser(r.Context(), user.ID)
	}
	if err != nil {
		log.Printf("[API] List orders failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// Get returns a single order to its owner or to an admin.
func (h *OrderHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	if o.UserID != user.ID && !user.IsAdmin {
		respondError(w, http.StatusForbidden, "Not authorized to view this order")
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandlers) respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
	case order.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[API] Order operation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
