package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NguyenTrongHinh/shop-management-system/internal/events"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	published []events.Envelope
	fail      bool
}

func (p *capturingPublisher) Publish(ctx context.Context, key string, event any) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event.(events.Envelope))
	return nil
}

func newTestService(t *testing.T) (*Service, store.Store, *capturingPublisher) {
	t.Helper()
	st := store.NewMemoryStore()
	pub := &capturingPublisher{}
	svc := NewService(st.Orders(), st.Carts(), st.Products(), pub)
	return svc, st, pub
}

func seedProduct(t *testing.T, st store.Store, price float64) *model.Product {
	t.Helper()
	p := &model.Product{
		ID:        uuid.New().String(),
		Name:      "Product",
		Price:     price,
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.Products().Put(context.Background(), p))
	return p
}

func seedCart(t *testing.T, st store.Store, userID string, items []model.CartItem) {
	t.Helper()
	now := time.Now()
	require.NoError(t, st.Carts().Put(context.Background(), &model.Cart{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func TestService_Create_Success(t *testing.T) {
	svc, st, pub := newTestService(t)
	ctx := context.Background()

	p1 := seedProduct(t, st, 100)
	p2 := seedProduct(t, st, 50)
	seedCart(t, st, "user-1", []model.CartItem{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 1},
	})

	order, err := svc.Create(ctx, "user-1", "1 Main St", "card")
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, 250.0, order.Total)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 2)

	// The cart is consumed.
	_, err = st.Carts().GetByUser(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// An OrderCreated event went out.
	require.Len(t, pub.published, 1)
	assert.Equal(t, events.TypeOrderCreated, pub.published[0].Type)
	assert.Equal(t, order.ID, pub.published[0].Order.ID)
}

func TestService_Create_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", "", "card")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Create(ctx, "user-1", "1 Main St", "")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestService_Create_NoCart(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "user-1", "1 Main St", "card")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestService_Create_EmptyCart(t *testing.T) {
	svc, st, _ := newTestService(t)

	seedCart(t, st, "user-1", nil)

	_, err := svc.Create(context.Background(), "user-1", "1 Main St", "card")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestService_Create_AllProductsDeleted(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, st, 100)
	seedCart(t, st, "user-1", []model.CartItem{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, st.Products().Delete(ctx, p.ID))

	_, err := svc.Create(ctx, "user-1", "1 Main St", "card")
	assert.ErrorIs(t, err, ErrEmptyCart)

	// A failed checkout leaves no order behind.
	orders, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestService_Create_SkipsDeletedProducts(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	keep := seedProduct(t, st, 100)
	gone := seedProduct(t, st, 999)
	seedCart(t, st, "user-1", []model.CartItem{
		{ProductID: keep.ID, Quantity: 1},
		{ProductID: gone.ID, Quantity: 1},
	})
	require.NoError(t, st.Products().Delete(ctx, gone.ID))

	order, err := svc.Create(ctx, "user-1", "1 Main St", "card")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, keep.ID, order.Items[0].ProductID)
	assert.Equal(t, 100.0, order.Total)
}

func TestService_Create_PublishFailureDoesNotFailOrder(t *testing.T) {
	svc, st, pub := newTestService(t)
	pub.fail = true
	ctx := context.Background()

	p := seedProduct(t, st, 100)
	seedCart(t, st, "user-1", []model.CartItem{{ProductID: p.ID, Quantity: 1}})

	order, err := svc.Create(ctx, "user-1", "1 Main St", "card")
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
}

func TestService_Create_NilPublisher(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st.Orders(), st.Carts(), st.Products(), nil)
	ctx := context.Background()

	p := seedProduct(t, st, 100)
	seedCart(t, st, "user-1", []model.CartItem{{ProductID: p.ID, Quantity: 1}})

	_, err := svc.Create(ctx, "user-1", "1 Main St", "card")
	assert.NoError(t, err)
}

func TestService_ListByUser_NewestFirst(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, st, 10)
	for i := 0; i < 3; i++ {
		seedCart(t, st, "user-1", []model.CartItem{{ProductID: p.ID, Quantity: 1}})
		_, err := svc.Create(ctx, "user-1", "1 Main St", "card")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	orders, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for i := 1; i < len(orders); i++ {
		assert.True(t, !orders[i].CreatedAt.After(orders[i-1].CreatedAt))
	}
}

func TestService_Get_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
