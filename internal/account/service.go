// Package account owns the user collection: registration, credential
// verification, profile updates and the admin management operations.
package account

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NguyenTrongHinh/shop-management-system/internal/auth"
	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

var (
	ErrMissingFields      = errors.New("please fill in all fields")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// IsValidation reports whether err is a client-correctable input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, auth.ErrPasswordTooShort)
}

type Service struct {
	users       store.UserStore
	adminSecret string
}

// NewService creates the account service. adminSecret is the shared secret
// that grants the admin flag at registration; when empty no registration can
// ever produce an admin.
func NewService(users store.UserStore, adminSecret string) *Service {
	return &Service{
		users:       users,
		adminSecret: adminSecret,
	}
}

// Register creates an account. Username is stored trimmed, email lowercased;
// both must be unique. A submitted adminSecret matching the configured
// non-empty secret sets the admin flag.
func (s *Service) Register(ctx context.Context, username, email, password, adminSecret string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      s.adminSecret != "" && adminSecret == s.adminSecret,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Put(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns the account. A missing account and
// a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns an account by id.
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	return s.users.Get(ctx, id)
}

// List returns all accounts, newest first.
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// Update describes a partial account update. Nil fields are left untouched.
// IsAdmin is only honored on the admin management path.
type Update struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"isAdmin"`
}

// Apply updates an account, re-checking username/email uniqueness against
// other accounts.
func (s *Service) Apply(ctx context.Context, id string, upd Update) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if email == "" {
			return nil, ErrMissingFields
		}
		if other, err := s.users.GetByEmail(ctx, email); err == nil && other.ID != id {
			return nil, ErrEmailTaken
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
		user.Email = email
	}

	if upd.Username != nil {
		username := strings.TrimSpace(*upd.Username)
		if username == "" {
			return nil, ErrMissingFields
		}
		if other, err := s.users.GetByUsername(ctx, username); err == nil && other.ID != id {
			return nil, ErrUsernameTaken
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}
		user.Username = username
	}

	if upd.Password != nil {
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if upd.IsAdmin != nil {
		user.IsAdmin = *upd.IsAdmin
	}

	user.UpdatedAt = time.Now()
	if err := s.users.Put(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Delete removes an account. Administrative escape hatch only.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}
