package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NguyenTrongHinh/shop-management-system/internal/account"
	"github.com/NguyenTrongHinh/shop-management-system/internal/auth"
	"github.com/NguyenTrongHinh/shop-management-system/internal/cart"
	"github.com/NguyenTrongHinh/shop-management-system/internal/catalog"
	"github.com/NguyenTrongHinh/shop-management-system/internal/category"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/order"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := store.NewMemoryStore()
	tokens := auth.NewTokenService("test-secret-key-that-is-long-enough", time.Hour)

	router := NewRouter(RouterConfig{
		Accounts:   account.NewService(st.Users(), "admin-secret"),
		Catalog:    catalog.NewService(st.Products()),
		Categories: category.NewService(st.Categories()),
		Carts:      cart.NewService(st.Carts(), st.Products()),
		Orders:     order.NewService(st.Orders(), st.Carts(), st.Products(), nil),
		Tokens:     tokens,
		Users:      st.Users(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// doJSON sends a JSON request and decodes the JSON response into out.
func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func registerUser(t *testing.T, srv *httptest.Server, username, adminSecret string) AuthResponse {
	t.Helper()
	var resp AuthResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username":    username,
		"email":       username + "@example.com",
		"password":    "secret123",
		"adminSecret": adminSecret,
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.Token)
	return resp
}

func createProduct(t *testing.T, srv *httptest.Server, adminToken, name string, price float64) string {
	t.Helper()
	var resp struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/api/products", adminToken, map[string]any{
		"name":        name,
		"description": "Test product",
		"price":       price,
		"category":    "Electronics",
		"brand":       "Acme",
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	return resp.Product.ID
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	reg := registerUser(t, srv, "alice", "")
	assert.False(t, reg.IsAdmin)
	assert.Equal(t, "alice@example.com", reg.Email)

	var login AuthResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	}, &login)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, reg.ID, login.ID)
	assert.NotEmpty(t, login.Token)
}

func TestAPI_RegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "alice", "")

	var errResp map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "secret123",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "email already exists", errResp["message"])
}

func TestAPI_AdminSecretGrantsAdmin(t *testing.T) {
	srv := newTestServer(t)

	admin := registerUser(t, srv, "root", "admin-secret")
	assert.True(t, admin.IsAdmin)
}

func TestAPI_ProductCRUDRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)
	user := registerUser(t, srv, "alice", "")

	status := doJSON(t, http.MethodPost, srv.URL+"/api/products", user.Token, map[string]any{
		"name": "Widget",
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_ProductListingAndFilters(t *testing.T) {
	srv := newTestServer(t)
	admin := registerUser(t, srv, "root", "admin-secret")

	createProduct(t, srv, admin.Token, "Laptop", 1200)
	createProduct(t, srv, admin.Token, "Phone", 800)

	var list struct {
		Products []struct {
			Name      string  `json:"name"`
			SalePrice float64 `json:"salePrice"`
		} `json:"products"`
		Pagination catalog.Pagination `json:"pagination"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/api/products", "", nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list.Products, 2)
	assert.Equal(t, 2, list.Pagination.TotalProducts)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/products?minPrice=1000", "", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Laptop", list.Products[0].Name)
}

func TestAPI_ProductNotFound(t *testing.T) {
	srv := newTestServer(t)

	var errResp map[string]string
	status := doJSON(t, http.MethodGet, srv.URL+"/api/products/missing-id", "", nil, &errResp)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", errResp["message"])
}

func TestAPI_CartAndOrderFlow(t *testing.T) {
	srv := newTestServer(t)
	admin := registerUser(t, srv, "root", "admin-secret")
	user := registerUser(t, srv, "alice", "")

	p1 := createProduct(t, srv, admin.Token, "Laptop", 100)
	p2 := createProduct(t, srv, admin.Token, "Mouse", 50)

	// Add two products to the cart.
	var cartResp struct {
		Cart cart.View `json:"cart"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/api/cart", user.Token, map[string]any{
		"productId": p1, "quantity": 2,
	}, &cartResp)
	require.Equal(t, http.StatusOK, status)

	status = doJSON(t, http.MethodPost, srv.URL+"/api/cart", user.Token, map[string]any{
		"productId": p2, "quantity": 1,
	}, &cartResp)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, cartResp.Cart.Items, 2)

	// Place the order.
	var placed struct {
		ID     string  `json:"id"`
		Total  float64 `json:"total"`
		Status string  `json:"status"`
	}
	status = doJSON(t, http.MethodPost, srv.URL+"/api/orders", user.Token, map[string]string{
		"shippingAddress": "1 Main St",
		"paymentMethod":   "card",
	}, &placed)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 250.0, placed.Total)
	assert.Equal(t, "pending", placed.Status)

	// The cart is empty afterwards.
	status = doJSON(t, http.MethodGet, srv.URL+"/api/cart", user.Token, nil, &cartResp)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, cartResp.Cart.Items)

	// A second order from the now-empty cart fails.
	var errResp map[string]string
	status = doJSON(t, http.MethodPost, srv.URL+"/api/orders", user.Token, map[string]string{
		"shippingAddress": "1 Main St",
		"paymentMethod":   "card",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "cart is empty", errResp["message"])
}

func TestAPI_OrderVisibility(t *testing.T) {
	srv := newTestServer(t)
	admin := registerUser(t, srv, "root", "admin-secret")
	alice := registerUser(t, srv, "alice", "")
	bob := registerUser(t, srv, "bob", "")

	p := createProduct(t, srv, admin.Token, "Widget", 10)

	status := doJSON(t, http.MethodPost, srv.URL+"/api/cart", alice.Token, map[string]any{
		"productId": p, "quantity": 1,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var placed struct {
		ID string `json:"id"`
	}
	status = doJSON(t, http.MethodPost, srv.URL+"/api/orders", alice.Token, map[string]string{
		"shippingAddress": "1 Main St",
		"paymentMethod":   "card",
	}, &placed)
	require.Equal(t, http.StatusCreated, status)

	orderURL := fmt.Sprintf("%s/api/orders/%s", srv.URL, placed.ID)

	// Owner sees it.
	status = doJSON(t, http.MethodGet, orderURL, alice.Token, nil, nil)
	assert.Equal(t, http.StatusOK, status)

	// Another user does not.
	status = doJSON(t, http.MethodGet, orderURL, bob.Token, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// An admin does.
	status = doJSON(t, http.MethodGet, orderURL, admin.Token, nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_RatingFlow(t *testing.T) {
	srv := newTestServer(t)
	admin := registerUser(t, srv, "root", "admin-secret")
	user := registerUser(t, srv, "alice", "")

	p := createProduct(t, srv, admin.Token, "Widget", 10)
	rateURL := fmt.Sprintf("%s/api/products/%s/rating", srv.URL, p)

	var rated struct {
		Product struct {
			Rating     float64 `json:"rating"`
			NumReviews int     `json:"numReviews"`
		} `json:"product"`
	}
	status := doJSON(t, http.MethodPost, rateURL, user.Token, map[string]float64{"rating": 4}, &rated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4.0, rated.Product.Rating)
	assert.Equal(t, 1, rated.Product.NumReviews)

	// Second rating from the same user is rejected.
	var errResp map[string]string
	status = doJSON(t, http.MethodPost, rateURL, user.Token, map[string]float64{"rating": 5}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "product already rated by this user", errResp["message"])
}

func TestAPI_CategoryCRUD(t *testing.T) {
	srv := newTestServer(t)
	admin := registerUser(t, srv, "root", "admin-secret")

	var created struct {
		Category struct {
			ID   string `json:"id"`
			Slug string `json:"slug"`
		} `json:"category"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/api/categories", admin.Token, map[string]string{
		"name": "Home Appliances",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "home-appliances", created.Category.Slug)

	var listed struct {
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/api/categories", "", nil, &listed)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, listed.Categories, 1)

	status = doJSON(t, http.MethodDelete, srv.URL+"/api/categories/"+created.Category.ID, admin.Token, nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_ProfileRoutes(t *testing.T) {
	srv := newTestServer(t)
	user := registerUser(t, srv, "alice", "")

	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/api/users/me", user.Token, nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, user.ID, me.ID)

	status = doJSON(t, http.MethodPut, srv.URL+"/api/users/me", user.Token, map[string]string{
		"username": "alice-renamed",
	}, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice-renamed", me.Username)

	// Unauthenticated access is rejected.
	status = doJSON(t, http.MethodGet, srv.URL+"/api/users/me", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_UserManagementRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)
	admin := registerUser(t, srv, "root", "admin-secret")
	user := registerUser(t, srv, "alice", "")

	status := doJSON(t, http.MethodGet, srv.URL+"/api/users", user.Token, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var users []struct {
		ID string `json:"id"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/api/users", admin.Token, nil, &users)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, users, 2)
}
