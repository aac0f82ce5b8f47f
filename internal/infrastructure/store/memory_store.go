package store

import (
	"context"
	"sync"

	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

// MemoryStore is a map-backed document store. It backs the test suites and
// STORE_BACKEND=memory development runs.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]model.User
	products   map[string]model.Product
	categories map[string]model.Category
	carts      map[string]model.Cart // keyed by user ID
	orders     map[string]model.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]model.User),
		products:   make(map[string]model.Product),
		categories: make(map[string]model.Category),
		carts:      make(map[string]model.Cart),
		orders:     make(map[string]model.Order),
	}
}

func (m *MemoryStore) Users() UserStore           { return (*memoryUsers)(m) }
func (m *MemoryStore) Products() ProductStore     { return (*memoryProducts)(m) }
func (m *MemoryStore) Categories() CategoryStore  { return (*memoryCategories)(m) }
func (m *MemoryStore) Carts() CartStore           { return (*memoryCarts)(m) }
func (m *MemoryStore) Orders() OrderStore         { return (*memoryOrders)(m) }

// Users

type memoryUsers MemoryStore

func (m *memoryUsers) Put(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = cloneUser(*u)
	return nil
}

func (m *memoryUsers) Get(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) List(_ context.Context) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		u := cloneUser(u)
		users = append(users, &u)
	}
	return users, nil
}

func (m *memoryUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// Products

type memoryProducts MemoryStore

func (m *memoryProducts) Put(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = cloneProduct(*p)
	return nil
}

func (m *memoryProducts) Get(_ context.Context, id string) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (m *memoryProducts) List(_ context.Context) ([]*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	products := make([]*model.Product, 0, len(m.products))
	for _, p := range m.products {
		p := cloneProduct(p)
		products = append(products, &p)
	}
	return products, nil
}

func (m *memoryProducts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// Categories

type memoryCategories MemoryStore

func (m *memoryCategories) Put(_ context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = *c
	return nil
}

func (m *memoryCategories) Get(_ context.Context, id string) (*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *memoryCategories) GetByName(_ context.Context, name string) (*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.categories {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryCategories) GetBySlug(_ context.Context, slug string) (*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.categories {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryCategories) List(_ context.Context) ([]*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	categories := make([]*model.Category, 0, len(m.categories))
	for _, c := range m.categories {
		c := c
		categories = append(categories, &c)
	}
	return categories, nil
}

func (m *memoryCategories) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

// Carts

type memoryCarts MemoryStore

func (m *memoryCarts) Put(_ context.Context, c *model.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[c.UserID] = cloneCart(*c)
	return nil
}

func (m *memoryCarts) GetByUser(_ context.Context, userID string) (*model.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c = cloneCart(c)
	return &c, nil
}

func (m *memoryCarts) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[userID]; !ok {
		return ErrNotFound
	}
	delete(m.carts, userID)
	return nil
}

// Orders

type memoryOrders MemoryStore

func (m *memoryOrders) Put(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *memoryOrders) Get(_ context.Context, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (m *memoryOrders) ListByUser(_ context.Context, userID string) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orders []*model.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			o := cloneOrder(o)
			orders = append(orders, &o)
		}
	}
	return orders, nil
}

func (m *memoryOrders) List(_ context.Context) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orders := make([]*model.Order, 0, len(m.orders))
	for _, o := range m.orders {
		o := cloneOrder(o)
		orders = append(orders, &o)
	}
	return orders, nil
}

func (m *memoryOrders) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// Clone helpers keep callers from mutating stored documents through shared
// slices.

func cloneUser(u model.User) model.User {
	return u
}

func cloneProduct(p model.Product) model.Product {
	p.Images = append([]string(nil), p.Images...)
	p.Tags = append([]string(nil), p.Tags...)
	p.RatedBy = append([]string(nil), p.RatedBy...)
	return p
}

func cloneCart(c model.Cart) model.Cart {
	c.Items = append([]model.CartItem(nil), c.Items...)
	return c
}

func cloneOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return o
}
