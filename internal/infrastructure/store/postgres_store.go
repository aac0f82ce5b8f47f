package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

// PostgresStore implements Store on PostgreSQL. Each collection maps to one
// table; list-valued fields are stored as JSONB.
type PostgresStore struct {
	db *sql.DB
}

// ConnectPostgres establishes a connection to PostgreSQL.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// NewPostgresStore creates the store and bootstraps the schema.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users (username)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			category TEXT NOT NULL,
			brand TEXT NOT NULL,
			images JSONB NOT NULL DEFAULT '[]',
			count_in_stock INTEGER NOT NULL DEFAULT 0,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			num_reviews INTEGER NOT NULL DEFAULT 0,
			rated_by JSONB NOT NULL DEFAULT '[]',
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			discount DOUBLE PRECISION NOT NULL DEFAULT 0,
			specifications JSONB NOT NULL DEFAULT '{}',
			tags JSONB NOT NULL DEFAULT '[]',
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category_brand ON products (category, brand)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_slug ON categories (slug)`,
		`CREATE TABLE IF NOT EXISTS carts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			items JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			items JSONB NOT NULL DEFAULT '[]',
			total DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			shipping_address TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Users() UserStore          { return &postgresUsers{db: s.db} }
func (s *PostgresStore) Products() ProductStore    { return &postgresProducts{db: s.db} }
func (s *PostgresStore) Categories() CategoryStore { return &postgresCategories{db: s.db} }
func (s *PostgresStore) Carts() CartStore          { return &postgresCarts{db: s.db} }
func (s *PostgresStore) Orders() OrderStore        { return &postgresOrders{db: s.db} }

// Users

type postgresUsers struct {
	db *sql.DB
}

func (r *postgresUsers) Put(ctx context.Context, u *model.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			is_admin = EXCLUDED.is_admin,
			updated_at = EXCLUDED.updated_at
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (r *postgresUsers) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

const userColumns = `id, username, email, password_hash, is_admin, created_at, updated_at`

func (r *postgresUsers) Get(ctx context.Context, id string) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *postgresUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *postgresUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *postgresUsers) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *postgresUsers) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "users", id)
}

// Products

type postgresProducts struct {
	db *sql.DB
}

const productColumns = `id, name, description, price, category, brand, images, count_in_stock,
	rating, num_reviews, rated_by, featured, discount, specifications, tags,
	created_by, created_at, updated_at`

func (r *postgresProducts) Put(ctx context.Context, p *model.Product) error {
	images, _ := json.Marshal(p.Images)
	ratedBy, _ := json.Marshal(p.RatedBy)
	specs, _ := json.Marshal(p.Specifications)
	tags, _ := json.Marshal(p.Tags)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, category, brand, images, count_in_stock,
			rating, num_reviews, rated_by, featured, discount, specifications, tags,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			brand = EXCLUDED.brand,
			images = EXCLUDED.images,
			count_in_stock = EXCLUDED.count_in_stock,
			rating = EXCLUDED.rating,
			num_reviews = EXCLUDED.num_reviews,
			rated_by = EXCLUDED.rated_by,
			featured = EXCLUDED.featured,
			discount = EXCLUDED.discount,
			specifications = EXCLUDED.specifications,
			tags = EXCLUDED.tags,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.Name, p.Description, p.Price, p.Category, p.Brand, images, p.CountInStock,
		p.Rating, p.NumReviews, ratedBy, p.Featured, p.Discount, specs, tags,
		p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put product: %w", err)
	}
	return nil
}

func scanProduct(scan func(dest ...any) error) (*model.Product, error) {
	var p model.Product
	var images, ratedBy, specs, tags []byte
	err := scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Brand, &images, &p.CountInStock,
		&p.Rating, &p.NumReviews, &ratedBy, &p.Featured, &p.Discount, &specs, &tags,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	json.Unmarshal(images, &p.Images)
	json.Unmarshal(ratedBy, &p.RatedBy)
	json.Unmarshal(specs, &p.Specifications)
	json.Unmarshal(tags, &p.Tags)
	return &p, nil
}

func (r *postgresProducts) Get(ctx context.Context, id string) (*model.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row.Scan)
}

func (r *postgresProducts) List(ctx context.Context) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresProducts) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "products", id)
}

// Categories

type postgresCategories struct {
	db *sql.DB
}

const categoryColumns = `id, name, slug, description, created_by, created_at, updated_at`

func (r *postgresCategories) Put(ctx context.Context, c *model.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, slug, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.Name, c.Slug, c.Description, c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put category: %w", err)
	}
	return nil
}

func (r *postgresCategories) scanOne(row *sql.Row) (*model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &c, nil
}

func (r *postgresCategories) Get(ctx context.Context, id string) (*model.Category, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
}

func (r *postgresCategories) GetByName(ctx context.Context, name string) (*model.Category, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name))
}

func (r *postgresCategories) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug))
}

func (r *postgresCategories) List(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *postgresCategories) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "categories", id)
}

// Carts

type postgresCarts struct {
	db *sql.DB
}

func (r *postgresCarts) Put(ctx context.Context, c *model.Cart) error {
	items, _ := json.Marshal(c.Items)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			items = EXCLUDED.items,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.UserID, items, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put cart: %w", err)
	}
	return nil
}

func (r *postgresCarts) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	var c model.Cart
	var items []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, items, created_at, updated_at FROM carts WHERE user_id = $1
	`, userID).Scan(&c.ID, &c.UserID, &items, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan cart: %w", err)
	}
	json.Unmarshal(items, &c.Items)
	return &c, nil
}

func (r *postgresCarts) DeleteByUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Orders

type postgresOrders struct {
	db *sql.DB
}

const orderColumns = `id, user_id, items, total, status, shipping_address, payment_method, created_at, updated_at`

func (r *postgresOrders) Put(ctx context.Context, o *model.Order) error {
	items, _ := json.Marshal(o.Items)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, items, total, status, shipping_address, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`, o.ID, o.UserID, items, o.Total, o.Status, o.ShippingAddress, o.PaymentMethod, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

func scanOrder(scan func(dest ...any) error) (*model.Order, error) {
	var o model.Order
	var items []byte
	err := scan(&o.ID, &o.UserID, &items, &o.Total, &o.Status, &o.ShippingAddress, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	json.Unmarshal(items, &o.Items)
	return &o, nil
}

func (r *postgresOrders) Get(ctx context.Context, id string) (*model.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row.Scan)
}

func (r *postgresOrders) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *postgresOrders) List(ctx context.Context) ([]*model.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]*model.Order, error) {
	var orders []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresOrders) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "orders", id)
}

func deleteByID(ctx context.Context, db *sql.DB, table, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
