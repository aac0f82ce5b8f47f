package store

import (
	"context"
	"errors"

	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

// ErrNotFound is returned when a document does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// Store groups the per-collection document stores. Implementations exist for
// DynamoDB, PostgreSQL and in-memory maps.
type Store interface {
	Users() UserStore
	Products() ProductStore
	Categories() CategoryStore
	Carts() CartStore
	Orders() OrderStore
}

// UserStore persists account documents.
type UserStore interface {
	Put(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, id string) error
}

// ProductStore persists product documents.
type ProductStore interface {
	Put(ctx context.Context, p *model.Product) error
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context) ([]*model.Product, error)
	Delete(ctx context.Context, id string) error
}

// CategoryStore persists category documents.
type CategoryStore interface {
	Put(ctx context.Context, c *model.Category) error
	Get(ctx context.Context, id string) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	Delete(ctx context.Context, id string) error
}

// CartStore persists cart documents, one per user.
type CartStore interface {
	Put(ctx context.Context, c *model.Cart) error
	GetByUser(ctx context.Context, userID string) (*model.Cart, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// OrderStore persists order documents.
type OrderStore interface {
	Put(ctx context.Context, o *model.Order) error
	Get(ctx context.Context, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	List(ctx context.Context) ([]*model.Order, error)
	Delete(ctx context.Context, id string) error
}
