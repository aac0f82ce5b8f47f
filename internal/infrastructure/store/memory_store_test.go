package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

func TestMemoryStore_Users_PutGetDelete(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	u := &model.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}
	require.NoError(t, st.Users().Put(ctx, u))

	got, err := st.Users().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	byEmail, err := st.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byEmail.ID)

	byUsername, err := st.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byUsername.ID)

	require.NoError(t, st.Users().Delete(ctx, "user-1"))
	_, err = st.Users().Get(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Users_NotFound(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.Users().Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.Users().GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	err = st.Users().Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Products_PutOverwrites(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Products().Put(ctx, &model.Product{ID: "prod-1", Name: "Widget"}))
	require.NoError(t, st.Products().Put(ctx, &model.Product{ID: "prod-1", Name: "Widget v2"}))

	got, err := st.Products().Get(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", got.Name)

	all, err := st.Products().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryStore_Products_CloneIsolation(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	p := &model.Product{ID: "prod-1", Tags: []string{"original"}}
	require.NoError(t, st.Products().Put(ctx, p))

	got, err := st.Products().Get(ctx, "prod-1")
	require.NoError(t, err)
	got.Tags[0] = "mutated"

	// The stored document must be untouched by caller mutation.
	fresh, err := st.Products().Get(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "original", fresh.Tags[0])
}

func TestMemoryStore_Carts_KeyedByUser(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	c := &model.Cart{ID: "cart-1", UserID: "user-1", Items: []model.CartItem{{ProductID: "prod-1", Quantity: 2}}}
	require.NoError(t, st.Carts().Put(ctx, c))

	got, err := st.Carts().GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "cart-1", got.ID)
	require.Len(t, got.Items, 1)

	require.NoError(t, st.Carts().DeleteByUser(ctx, "user-1"))
	_, err = st.Carts().GetByUser(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Orders_ListByUser(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Orders().Put(ctx, &model.Order{ID: "order-1", UserID: "user-1"}))
	require.NoError(t, st.Orders().Put(ctx, &model.Order{ID: "order-2", UserID: "user-1"}))
	require.NoError(t, st.Orders().Put(ctx, &model.Order{ID: "order-3", UserID: "user-2"}))

	mine, err := st.Orders().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := st.Orders().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStore_Categories_GetBySlug(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Categories().Put(ctx, &model.Category{ID: "cat-1", Name: "Electronics", Slug: "electronics"}))

	got, err := st.Categories().GetBySlug(ctx, "electronics")
	require.NoError(t, err)
	assert.Equal(t, "cat-1", got.ID)

	_, err = st.Categories().GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
