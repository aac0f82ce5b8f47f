// Package cart manages the per-account cart: one document per user,
// created on first add and deleted when an order consumes it.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrCartNotFound    = errors.New("cart not found")
	ErrNotInCart       = errors.New("product not in cart")
)

// IsValidation reports whether err is a client-correctable input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidQuantity)
}

// Line is a populated cart line: the live product document plus the
// quantity held.
type Line struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

// View is the cart as returned to clients, with product references
// resolved. Lines whose product no longer exists are dropped.
type View struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Items  []Line `json:"items"`
}

type Service struct {
	carts    store.CartStore
	products store.ProductStore
}

func NewService(carts store.CartStore, products store.ProductStore) *Service {
	return &Service{carts: carts, products: products}
}

// Add puts quantity units of a product into the user's cart, creating the
// cart if it does not exist yet. Adding a product already in the cart
// increments its line.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	// The product must exist at add time. Missing surfaces as 404.
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		now := time.Now()
		c = &model.Cart{
			ID:        uuid.New().String(),
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
	} else if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, model.CartItem{ProductID: productID, Quantity: quantity})
	}

	c.UpdatedAt = time.Now()
	if err := s.carts.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.populate(ctx, c)
}

// Get returns the user's cart view. A user with no cart document gets an
// empty view, not an error.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &View{UserID: userID, Items: []Line{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return s.populate(ctx, c)
}

// SetQuantity replaces a line's quantity. Zero removes the line; the line
// must already exist.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	idx := -1
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotInCart
	}

	if quantity == 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = quantity
	}

	c.UpdatedAt = time.Now()
	if err := s.carts.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.populate(ctx, c)
}

// Remove deletes a product's line from the cart.
func (s *Service) Remove(ctx context.Context, userID, productID string) (*View, error) {
	return s.SetQuantity(ctx, userID, productID, 0)
}

// populate resolves product references into a View, skipping lines whose
// product has since been deleted.
func (s *Service) populate(ctx context.Context, c *model.Cart) (*View, error) {
	view := &View{
		ID:     c.ID,
		UserID: c.UserID,
		Items:  make([]Line, 0, len(c.Items)),
	}
	for _, item := range c.Items {
		p, err := s.products.Get(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", item.ProductID, err)
		}
		view.Items = append(view.Items, Line{Product: *p, Quantity: item.Quantity})
	}
	return view, nil
}
