// Package middleware carries the request authentication and authorization
// wrappers.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/NguyenTrongHinh/shop-management-system/internal/auth"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// ExtractToken pulls the bearer token from the Authorization header.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

type contextKey string

const userContextKey contextKey = "user"

// RequireUser validates the bearer token and loads the live account into
// the request context. The store lookup means a deleted account is locked
// out immediately, token or not.
func RequireUser(tokens *auth.TokenService, users store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				respondError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			user, err := users.Get(r.Context(), claims.UserID)
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusUnauthorized, "Not authorized, user not found")
				return
			}
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows only accounts whose admin flag is set. Must run
// inside RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		if !user.IsAdmin {
			respondError(w, http.StatusForbidden, "Admin required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext retrieves the authenticated account from the request
// context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}
