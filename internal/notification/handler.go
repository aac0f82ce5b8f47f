// Package notification turns consumed order events into customer email.
package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/NguyenTrongHinh/shop-management-system/internal/email"
	"github.com/NguyenTrongHinh/shop-management-system/internal/events"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
)

// Handler processes order events and sends confirmation mail. Lookup
// failures are logged and swallowed so one bad event cannot wedge the
// consumer group.
type Handler struct {
	emailService *email.Service
	store        store.Store
}

func NewHandler(emailSvc *email.Service, st store.Store) *Handler {
	return &Handler{
		emailService: emailSvc,
		store:        st,
	}
}

// HandleEvent processes one message from the broker.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	if env.Type != events.TypeOrderCreated {
		return nil
	}
	return h.handleOrderCreated(ctx, env)
}

func (h *Handler) handleOrderCreated(ctx context.Context, env events.Envelope) error {
	order := env.Order
	log.Printf("[Notifier] Processing OrderCreated event for order %s, user %s", order.ID, order.UserID)

	user, err := h.store.Users().Get(ctx, order.UserID)
	if err != nil {
		log.Printf("[Notifier] Error getting user %s: %v", order.UserID, err)
		return nil
	}

	emailItems := make([]email.OrderItem, len(order.Items))
	for i, item := range order.Items {
		name := item.ProductID
		price := 0.0
		if product, err := h.store.Products().Get(ctx, item.ProductID); err == nil {
			name = product.Name
			price = product.Price
		}
		emailItems[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      name,
			Quantity:  item.Quantity,
			Price:     price,
		}
	}

	if err := h.emailService.SendOrderConfirmation(user.Email, order.ID, order.Total, emailItems); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", user.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", user.Email, order.ID)
	return nil
}
