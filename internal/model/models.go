package model

import (
	"encoding/json"
	"time"
)

// User is an account document. The password hash never leaves the server.
type User struct {
	ID           string    `json:"id" dynamodbav:"id"`
	Username     string    `json:"username" dynamodbav:"username"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	IsAdmin      bool      `json:"isAdmin" dynamodbav:"is_admin"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// Specifications holds the free-form product specification fields.
type Specifications struct {
	Color      string `json:"color,omitempty" dynamodbav:"color,omitempty"`
	Weight     string `json:"weight,omitempty" dynamodbav:"weight,omitempty"`
	Dimensions string `json:"dimensions,omitempty" dynamodbav:"dimensions,omitempty"`
	Model      string `json:"model,omitempty" dynamodbav:"model,omitempty"`
	Warranty   string `json:"warranty,omitempty" dynamodbav:"warranty,omitempty"`
}

// Product is a catalog document.
type Product struct {
	ID             string         `json:"id" dynamodbav:"id"`
	Name           string         `json:"name" dynamodbav:"name"`
	Description    string         `json:"description" dynamodbav:"description"`
	Price          float64        `json:"price" dynamodbav:"price"`
	Category       string         `json:"category" dynamodbav:"category"`
	Brand          string         `json:"brand" dynamodbav:"brand"`
	Images         []string       `json:"images" dynamodbav:"images"`
	CountInStock   int            `json:"countInStock" dynamodbav:"count_in_stock"`
	Rating         float64        `json:"rating" dynamodbav:"rating"`
	NumReviews     int            `json:"numReviews" dynamodbav:"num_reviews"`
	RatedBy        []string       `json:"-" dynamodbav:"rated_by"`
	Featured       bool           `json:"featured" dynamodbav:"featured"`
	Discount       float64        `json:"discount" dynamodbav:"discount"`
	Specifications Specifications `json:"specifications" dynamodbav:"specifications"`
	Tags           []string       `json:"tags" dynamodbav:"tags"`
	CreatedBy      string         `json:"createdBy" dynamodbav:"created_by"`
	CreatedAt      time.Time      `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" dynamodbav:"updated_at"`
}

// SalePrice is the price after the discount percentage is applied.
func (p Product) SalePrice() float64 {
	return p.Price * (1 - p.Discount/100)
}

// MarshalJSON includes the derived sale price in every product response.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		SalePrice float64 `json:"salePrice"`
	}{alias(p), p.SalePrice()})
}

// Category is a category document. The slug is derived from the name.
type Category struct {
	ID          string    `json:"id" dynamodbav:"id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Slug        string    `json:"slug" dynamodbav:"slug"`
	Description string    `json:"description" dynamodbav:"description"`
	CreatedBy   string    `json:"createdBy" dynamodbav:"created_by"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// CartItem is a line item: a product reference and a positive quantity.
type CartItem struct {
	ProductID string `json:"productId" dynamodbav:"product_id"`
	Quantity  int    `json:"quantity" dynamodbav:"quantity"`
}

// Cart is the per-account cart document. One cart per user, created lazily.
type Cart struct {
	ID        string     `json:"id" dynamodbav:"id"`
	UserID    string     `json:"userId" dynamodbav:"user_id"`
	Items     []CartItem `json:"items" dynamodbav:"items"`
	CreatedAt time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

// OrderStatusPending is the fixed initial order status.
const OrderStatusPending = "pending"

// OrderItem is a snapshotted line item. It stores the product reference,
// not a copy of the product.
type OrderItem struct {
	ProductID string `json:"productId" dynamodbav:"product_id"`
	Quantity  int    `json:"quantity" dynamodbav:"quantity"`
}

// Order is an immutable order document. The total is computed once at
// creation and never recomputed.
type Order struct {
	ID              string      `json:"id" dynamodbav:"id"`
	UserID          string      `json:"userId" dynamodbav:"user_id"`
	Items           []OrderItem `json:"items" dynamodbav:"items"`
	Total           float64     `json:"total" dynamodbav:"total"`
	Status          string      `json:"status" dynamodbav:"status"`
	ShippingAddress string      `json:"shippingAddress" dynamodbav:"shipping_address"`
	PaymentMethod   string      `json:"paymentMethod" dynamodbav:"payment_method"`
	CreatedAt       time.Time   `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" dynamodbav:"updated_at"`
}
