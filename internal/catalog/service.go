// Package catalog manages the product collection: the filtered and
// paginated listing, product CRUD, the featured shelf and ratings.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NguyenTrongHinh/shop-management-system/internal/infrastructure/store"
	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

var (
	ErrNameRequired        = errors.New("product name is required")
	ErrNameTooLong         = errors.New("product name must be at most 100 characters")
	ErrDescriptionRequired = errors.New("product description is required")
	ErrDescriptionTooLong  = errors.New("product description must be at most 1000 characters")
	ErrInvalidPrice        = errors.New("price must be between 0 and 100000000")
	ErrCategoryRequired    = errors.New("product category is required")
	ErrBrandRequired       = errors.New("product brand is required")
	ErrInvalidStock        = errors.New("countInStock must not be negative")
	ErrInvalidDiscount     = errors.New("discount must be between 0 and 100")
	ErrInvalidRating       = errors.New("rating must be between 0 and 5")
	ErrAlreadyRated        = errors.New("product already rated by this user")
	ErrTooManyImages       = errors.New("a product can have at most 5 images")
)

// IsValidation reports whether err is a client-correctable input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrNameTooLong) ||
		errors.Is(err, ErrDescriptionRequired) ||
		errors.Is(err, ErrDescriptionTooLong) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrCategoryRequired) ||
		errors.Is(err, ErrBrandRequired) ||
		errors.Is(err, ErrInvalidStock) ||
		errors.Is(err, ErrInvalidDiscount) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrAlreadyRated) ||
		errors.Is(err, ErrTooManyImages)
}

const (
	maxNameLength        = 100
	maxDescriptionLength = 1000
	maxPrice             = 100_000_000
	maxImages            = 5
	featuredLimit        = 8
	defaultPageLimit     = 12
)

// Filter narrows and orders the product listing. Zero values mean "no
// constraint"; the numeric bounds use pointers so zero is expressible.
type Filter struct {
	Category  string
	Brand     string
	Tag       string
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	Featured  *bool
	Sort      string // "field:asc" or "field:desc", default "createdAt:desc"
	Page      int
	Limit     int
}

// Pagination describes the listing page that was returned.
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalProducts int  `json:"totalProducts"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

type Service struct {
	products store.ProductStore
}

func NewService(products store.ProductStore) *Service {
	return &Service{products: products}
}

// List returns the filtered, sorted page of products plus the pagination
// summary. An out-of-range page returns an empty page, not an error.
func (s *Service) List(ctx context.Context, f Filter) ([]*model.Product, Pagination, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, Pagination{}, err
	}

	matched := make([]*model.Product, 0, len(all))
	for _, p := range all {
		if f.matches(p) {
			matched = append(matched, p)
		}
	}

	sortProducts(matched, f.Sort)

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}

	total := len(matched)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	pg := Pagination{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalProducts: total,
		HasNext:       page < totalPages,
		HasPrev:       page > 1 && total > 0,
	}
	return matched[start:end], pg, nil
}

func (f Filter) matches(p *model.Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range p.Tags {
			if strings.EqualFold(t, f.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hit := strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle)
		for _, tag := range p.Tags {
			if hit {
				break
			}
			hit = strings.Contains(strings.ToLower(tag), needle)
		}
		if !hit {
			return false
		}
	}
	return true
}

// sortProducts orders in place by a "field:direction" key. Unknown fields
// and directions fall back to newest-first.
func sortProducts(products []*model.Product, key string) {
	field, dir := "createdAt", "desc"
	if parts := strings.SplitN(key, ":", 2); key != "" {
		field = parts[0]
		if len(parts) == 2 {
			dir = parts[1]
		}
	}

	var less func(a, b *model.Product) bool
	switch field {
	case "price":
		less = func(a, b *model.Product) bool { return a.Price < b.Price }
	case "rating":
		less = func(a, b *model.Product) bool { return a.Rating < b.Rating }
	case "name":
		less = func(a, b *model.Product) bool { return a.Name < b.Name }
	default:
		less = func(a, b *model.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}

	asc := dir == "asc"
	sort.SliceStable(products, func(i, j int) bool {
		if asc {
			return less(products[i], products[j])
		}
		return less(products[j], products[i])
	})
}

// Get returns a product by id.
func (s *Service) Get(ctx context.Context, id string) (*model.Product, error) {
	return s.products.Get(ctx, id)
}

// NewProduct carries the writable fields of a product.
type NewProduct struct {
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Price          float64              `json:"price"`
	Category       string               `json:"category"`
	Brand          string               `json:"brand"`
	Images         []string             `json:"images"`
	CountInStock   int                  `json:"countInStock"`
	Featured       bool                 `json:"featured"`
	Discount       float64              `json:"discount"`
	Specifications model.Specifications `json:"specifications"`
	Tags           []string             `json:"tags"`
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, np NewProduct, createdBy string) (*model.Product, error) {
	if err := validateProduct(np); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Product{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(np.Name),
		Description:    strings.TrimSpace(np.Description),
		Price:          round2(np.Price),
		Category:       strings.TrimSpace(np.Category),
		Brand:          strings.TrimSpace(np.Brand),
		Images:         np.Images,
		CountInStock:   np.CountInStock,
		Featured:       np.Featured,
		Discount:       np.Discount,
		Specifications: np.Specifications,
		Tags:           np.Tags,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.products.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return p, nil
}

func validateProduct(np NewProduct) error {
	name := strings.TrimSpace(np.Name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	description := strings.TrimSpace(np.Description)
	if description == "" {
		return ErrDescriptionRequired
	}
	if len(description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if np.Price < 0 || np.Price > maxPrice {
		return ErrInvalidPrice
	}
	if strings.TrimSpace(np.Category) == "" {
		return ErrCategoryRequired
	}
	if strings.TrimSpace(np.Brand) == "" {
		return ErrBrandRequired
	}
	if np.CountInStock < 0 {
		return ErrInvalidStock
	}
	if np.Discount < 0 || np.Discount > 100 {
		return ErrInvalidDiscount
	}
	if len(np.Images) > maxImages {
		return ErrTooManyImages
	}
	return nil
}

// Update describes a partial product update. Nil fields are left untouched.
type Update struct {
	Name           *string               `json:"name"`
	Description    *string               `json:"description"`
	Price          *float64              `json:"price"`
	Category       *string               `json:"category"`
	Brand          *string               `json:"brand"`
	Images         []string              `json:"images"`
	CountInStock   *int                  `json:"countInStock"`
	Featured       *bool                 `json:"featured"`
	Discount       *float64              `json:"discount"`
	Specifications *model.Specifications `json:"specifications"`
	Tags           []string              `json:"tags"`
}

// Apply updates a product with the same validation rules as Create.
func (s *Service) Apply(ctx context.Context, id string, upd Update) (*model.Product, error) {
	p, err := s.products.Get(ctx, id)
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
		p.Name = name
	}
	if upd.Description != nil {
		description := strings.TrimSpace(*upd.Description)
		if description == "" {
			return nil, ErrDescriptionRequired
		}
		if len(description) > maxDescriptionLength {
			return nil, ErrDescriptionTooLong
		}
		p.Description = description
	}
	if upd.Price != nil {
		if *upd.Price < 0 || *upd.Price > maxPrice {
			return nil, ErrInvalidPrice
		}
		p.Price = round2(*upd.Price)
	}
	if upd.Category != nil {
		if strings.TrimSpace(*upd.Category) == "" {
			return nil, ErrCategoryRequired
		}
		p.Category = strings.TrimSpace(*upd.Category)
	}
	if upd.Brand != nil {
		if strings.TrimSpace(*upd.Brand) == "" {
			return nil, ErrBrandRequired
		}
		p.Brand = strings.TrimSpace(*upd.Brand)
	}
	if upd.Images != nil {
		if len(upd.Images) > maxImages {
			return nil, ErrTooManyImages
		}
		p.Images = upd.Images
	}
	if upd.CountInStock != nil {
		if *upd.CountInStock < 0 {
			return nil, ErrInvalidStock
		}
		p.CountInStock = *upd.CountInStock
	}
	if upd.Featured != nil {
		p.Featured = *upd.Featured
	}
	if upd.Discount != nil {
		if *upd.Discount < 0 || *upd.Discount > 100 {
			return nil, ErrInvalidDiscount
		}
		p.Discount = *upd.Discount
	}
	if upd.Specifications != nil {
		p.Specifications = *upd.Specifications
	}
	if upd.Tags != nil {
		p.Tags = upd.Tags
	}

	p.UpdatedAt = time.Now()
	if err := s.products.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return p, nil
}

// Delete removes a product. Carts and orders keep their references; cart
// reads skip lines whose product is gone.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// Categories returns the distinct category names in use, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, func(p *model.Product) string { return p.Category })
}

// Brands returns the distinct brand names in use, sorted.
func (s *Service) Brands(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, func(p *model.Product) string { return p.Brand })
}

func (s *Service) distinct(ctx context.Context, field func(*model.Product) string) ([]string, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	values := []string{}
	for _, p := range all {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// Featured returns up to 8 featured products, newest first.
func (s *Service) Featured(ctx context.Context) ([]*model.Product, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	featured := make([]*model.Product, 0, featuredLimit)
	for _, p := range all {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	sortProducts(featured, "createdAt:desc")
	if len(featured) > featuredLimit {
		featured = featured[:featuredLimit]
	}
	return featured, nil
}

// Rate records a rating from a user, folding it into the running average.
// Each user rates a product at most once.
func (s *Service) Rate(ctx context.Context, productID, userID string, rating float64) (*model.Product, error) {
	if rating < 0 || rating > 5 {
		return nil, ErrInvalidRating
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	for _, id := range p.RatedBy {
		if id == userID {
			return nil, ErrAlreadyRated
		}
	}

	p.NumReviews++
	p.Rating = ((p.Rating * float64(p.NumReviews-1)) + rating) / float64(p.NumReviews)
	p.RatedBy = append(p.RatedBy, userID)
	p.UpdatedAt = time.Now()

	if err := s.products.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return p, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
