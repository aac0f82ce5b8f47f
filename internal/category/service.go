// Package category manages the category collection. Categories carry a
// URL slug derived from their name; names and slugs are unique.
package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

var (
	ErrNameRequired       = errors.New("category name is required")
	ErrNameTooLong        = errors.New("category name must be at most 50 characters")
	ErrDescriptionTooLong = errors.New("category description must be at most 200 characters")
	ErrNameTaken          = errors.New("category already exists")
)

// IsValidation reports whether err is a client-correctable input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrNameTooLong) ||
		errors.Is(err, ErrDescriptionTooLong) ||
		errors.Is(err, ErrNameTaken)
}

const (
	maxNameLength        = 50
	maxDescriptionLength = 200
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9 -]`)
var repeatedHyphens = regexp.MustCompile(`-+`)

// Slugify derives a URL slug: lowercase, drop everything outside
// [a-z0-9 -], spaces to hyphens, runs of hyphens collapsed.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = repeatedHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

type Service struct {
	categories store.CategoryStore
}

func NewService(categories store.CategoryStore) *Service {
	return &Service{categories: categories}
}

// Create adds a category. Both the name and the derived slug must be unused.
func (s *Service) Create(ctx context.Context, name, description, createdBy string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(name) > maxNameLength {
		return nil, ErrNameTooLong
	}

	description = strings.TrimSpace(description)
	if len(description) > maxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	slug := Slugify(name)
	if err := s.checkUnused(ctx, name, slug, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	cat := &model.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Slug:        slug,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categories.Put(ctx, cat); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	return cat, nil
}

// Update describes a partial category update.
type Update struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Apply updates a category. A rename recomputes the slug and re-checks
// uniqueness against the other categories.
func (s *Service) Apply(ctx context.Context, id string, upd Update) (*model.Category, error) {
	cat, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if len(name) > maxNameLength {
			return nil, ErrNameTooLong
		}
		slug := Slugify(name)
		if err := s.checkUnused(ctx, name, slug, id); err != nil {
			return nil, err
		}
		cat.Name = name
		cat.Slug = slug
	}

	if upd.Description != nil {
		description := strings.TrimSpace(*upd.Description)
		if len(description) > maxDescriptionLength {
			return nil, ErrDescriptionTooLong
		}
		cat.Description = description
	}

	cat.UpdatedAt = time.Now()
	if err := s.categories.Put(ctx, cat); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	return cat, nil
}

// Get returns a category by id.
func (s *Service) Get(ctx context.Context, id string) (*model.Category, error) {
	return s.categories.Get(ctx, id)
}

// List returns all categories sorted by name.
func (s *Service) List(ctx context.Context) ([]*model.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

// Delete removes a category. Products keep their category string; nothing
// cascades.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

// checkUnused verifies no other category holds the name or slug. excludeID
// lets a category keep its own name on update.
func (s *Service) checkUnused(ctx context.Context, name, slug, excludeID string) error {
	if other, err := s.categories.GetByName(ctx, name); err == nil && other.ID != excludeID {
		return ErrNameTaken
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("check name: %w", err)
	}
	if other, err := s.categories.GetBySlug(ctx, slug); err == nil && other.ID != excludeID {
		return ErrNameTaken
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("check slug: %w", err)
	}
	return nil
}
