package api

import (
	"log"
	"net/http"

	"github.com/NguyenTrongHinh/shop-management-system/internal/account"
	"github.com/NguyenTrongHinh/shop-management-system/internal/api/middleware"
	"github.com/NguyenTrongHinh/shop-management-system/internal/auth"
	"github.com/NguyenTrongHinh/shop-management-system/internal/cart"
	"github.com/NguyenTrongHinh/shop-management-system/internal/catalog"
	"github.com/NguyenTrongHinh/shop-management-system/internal/category"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/media"
	"github.com/NguyenTrongHinh/shop-management-system/internal/order"
)

// RouterConfig wires the services into the HTTP surface.
type RouterConfig struct {
	Accounts   *account.Service
	Catalog    *catalog.Service
	Categories *category.Service
	Carts      *cart.Service
	Orders     *order.Service
	Tokens     *auth.TokenService
	Users      store.UserStore
	Uploader   media.Uploader
	UploadDir  string // served at /uploads/ when non-empty
}

// NewRouter builds the API route table. Method-and-path patterns keep the
// dispatch declarative; auth wraps per route group.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandlers := &AuthHandlers{accounts: cfg.Accounts, tokens: cfg.Tokens}
	userHandlers := &UserHandlers{accounts: cfg.Accounts}
	productHandlers := &ProductHandlers{catalog: cfg.Catalog, uploader: cfg.Uploader}
	categoryHandlers := &CategoryHandlers{categories: cfg.Categories}
	cartHandlers := &CartHandlers{carts: cfg.Carts}
	orderHandlers := &OrderHandlers{orders: cfg.Orders}

	requireUser := middleware.RequireUser(cfg.Tokens, cfg.Users)
	user := func(h http.HandlerFunc) http.Handler { return requireUser(h) }
	admin := func(h http.HandlerFunc) http.Handler {
		return requireUser(middleware.RequireAdmin(h))
	}

	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/register", authHandlers.Register)
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandlers.Logout)

	// Profile and user management
	mux.Handle("GET /api/users/me", user(userHandlers.GetMe))
	mux.Handle("PUT /api/users/me", user(userHandlers.UpdateMe))
	mux.Handle("GET /api/users", admin(userHandlers.List))
	mux.Handle("GET /api/users/{id}", admin(userHandlers.Get))
	mux.Handle("PUT /api/users/{id}", admin(userHandlers.Update))
	mux.Handle("DELETE /api/users/{id}", admin(userHandlers.Delete))

	// Catalog
	mux.HandleFunc("GET /api/products", productHandlers.List)
	mux.HandleFunc("GET /api/products/categories", productHandlers.Categories)
	mux.HandleFunc("GET /api/products/brands", productHandlers.Brands)
	mux.HandleFunc("GET /api/products/featured", productHandlers.Featured)
	mux.HandleFunc("GET /api/products/{id}", productHandlers.Get)
	mux.Handle("POST /api/products", admin(productHandlers.Create))
	mux.Handle("PUT /api/products/{id}", admin(productHandlers.Update))
	mux.Handle("DELETE /api/products/{id}", admin(productHandlers.Delete))
	mux.Handle("POST /api/products/{id}/rating", user(productHandlers.Rate))

	// Categories
	mux.HandleFunc("GET /api/categories", categoryHandlers.List)
	mux.Handle("POST /api/categories", admin(categoryHandlers.Create))
	mux.Handle("PUT /api/categories/{id}", admin(categoryHandlers.Update))
	mux.Handle("DELETE /api/categories/{id}", admin(categoryHandlers.Delete))

	// Cart. The {id} segment is the product reference inside the cart.
	mux.Handle("GET /api/cart", user(cartHandlers.Get))
	mux.Handle("POST /api/cart", user(cartHandlers.Add))
	mux.Handle("PUT /api/cart/{id}", user(cartHandlers.SetQuantity))
	mux.Handle("DELETE /api/cart/{id}", user(cartHandlers.Remove))

	// Orders
	mux.Handle("POST /api/orders", user(orderHandlers.Create))
	mux.Handle("GET /api/orders", user(orderHandlers.List))
	mux.Handle("GET /api/orders/{id}", user(orderHandlers.Get))

	// Uploaded images
	if cfg.UploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	return withLogging(mux)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
