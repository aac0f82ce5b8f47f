package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NguyenTrongHinh/shop-management-system/internal/auth"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

func newTestAuth(t *testing.T) (*auth.TokenService, store.UserStore) {
	t.Helper()
	tokens := auth.NewTokenService("test-secret-key-that-is-long-enough", time.Hour)
	users := store.NewMemoryStore().Users()
	return tokens, users
}

func seedUser(t *testing.T, users store.UserStore, id string, isAdmin bool) *model.User {
	t.Helper()
	u := &model.User{ID: id, Username: "u-" + id, Email: id + "@example.com", IsAdmin: isAdmin}
	require.NoError(t, users.Put(context.Background(), u))
	return u
}

func TestRequireUser_ValidToken(t *testing.T) {
	tokens, users := newTestAuth(t)
	seedUser(t, users, "user-1", false)

	token, err := tokens.Generate("user-1", false)
	require.NoError(t, err)

	var captured *model.User
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	RequireUser(tokens, users)(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.ID)
}

func TestRequireUser_NoToken(t *testing.T) {
	tokens, users := newTestAuth(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	RequireUser(tokens, users)(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUser_InvalidToken(t *testing.T) {
	tokens, users := newTestAuth(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()

	RequireUser(tokens, users)(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUser_DeletedAccount(t *testing.T) {
	tokens, users := newTestAuth(t)

	// Valid token for an account that no longer exists.
	token, err := tokens.Generate("ghost", false)
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	RequireUser(tokens, users)(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	tokens, users := newTestAuth(t)
	seedUser(t, users, "admin-1", true)

	token, err := tokens.Generate("admin-1", true)
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	RequireUser(tokens, users)(RequireAdmin(handler)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_RejectsNonAdmin(t *testing.T) {
	tokens, users := newTestAuth(t)
	seedUser(t, users, "user-1", false)

	token, err := tokens.Generate("user-1", false)
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	RequireUser(tokens, users)(RequireAdmin(handler)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_StoreFlagWins(t *testing.T) {
	tokens, users := newTestAuth(t)
	// Token claims admin but the stored account does not.
	seedUser(t, users, "user-1", false)

	token, err := tokens.Generate("user-1", true)
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	RequireUser(tokens, users)(RequireAdmin(handler)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc123")
	assert.Empty(t, ExtractToken(req))
}
