// Package order turns carts into immutable orders and serves order
// history. Order totals use the list price at checkout time; the cart is
// consumed on success.
package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/NguyenTrongHinh/shop-management-system/internal/events"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

var (
	ErrMissingFields = errors.New("shipping address and payment method are required")
	ErrEmptyCart     = errors.New("cart is empty")
)

// IsValidation reports whether err is a client-correctable input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingFields) || errors.Is(err, ErrEmptyCart)
}

type Service struct {
	orders    store.OrderStore
	carts     store.CartStore
	products  store.ProductStore
	publisher events.Publisher // nil disables event publishing
}

func NewService(orders store.OrderStore, carts store.CartStore, products store.ProductStore, publisher events.Publisher) *Service {
	return &Service{
		orders:    orders,
		carts:     carts,
		products:  products,
		publisher: publisher,
	}
}

// Create places an order from the user's current cart. Lines whose product
// has been deleted are dropped; a cart left with no resolvable lines counts
// as empty. On success the cart is gone and an OrderCreated event is
// published best-effort.
func (s *Service) Create(ctx context.Context, userID, shippingAddress, paymentMethod string) (*model.Order, error) {
	if shippingAddress == "" || paymentMethod == "" {
		return nil, ErrMissingFields
	}

	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []model.OrderItem
	var total float64
	for _, item := range c.Items {
		p, err := s.products.Get(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", item.ProductID, err)
		}
		items = append(items, model.OrderItem{ProductID: p.ID, Quantity: item.Quantity})
		total += p.Price * float64(item.Quantity)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		Total:           math.Round(total*100) / 100,
		Status:          model.OrderStatusPending,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Put(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	// The cart delete must land or the order is rolled back; a cart that
	// survives checkout would double-charge on the next order.
	if err := s.carts.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		if delErr := s.orders.Delete(ctx, order.ID); delErr != nil {
			log.Printf("[API] Failed to roll back order %s: %v", order.ID, delErr)
		}
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if s.publisher != nil {
		env := events.Envelope{
			Type:       events.TypeOrderCreated,
			OccurredAt: now,
			Order:      *order,
		}
		if err := s.publisher.Publish(ctx, order.UserID, env); err != nil {
			log.Printf("[API] Failed to publish OrderCreated for %s: %v", order.ID, err)
		}
	}

	return order, nil
}

// Get returns an order by id.
func (s *Service) Get(ctx context.Context, id string) (*model.Order, error) {
	return s.orders.Get(ctx, id)
}

// ListByUser returns a user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// List returns every order, newest first. Admin surface.
func (s *Service) List(ctx context.Context) ([]*model.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
