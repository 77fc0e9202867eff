package catalog

import (
	"errors"
	"time"
)

// Product is a catalog entry. BuyPrice doubles as the cost-of-goods fallback
// the profit calculator uses when a sale line carries no precomputed cost.
type Product struct {
	ID                int64     `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	BuyPrice          float64   `json:"buy_price"`
	SellPrice         float64   `json:"sell_price"`
	Stock             float64   `json:"stock"`
	LowStockThreshold float64   `json:"low_stock_threshold"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateProductRequest carries a new product payload.
type CreateProductRequest struct {
	SKU               string  `json:"sku" validate:"required,max=64"`
	Name              string  `json:"name" validate:"required,max=200"`
	BuyPrice          float64 `json:"buy_price" validate:"gte=0"`
	SellPrice         float64 `json:"sell_price" validate:"gte=0"`
	Stock             float64 `json:"stock" validate:"gte=0"`
	LowStockThreshold float64 `json:"low_stock_threshold" validate:"gte=0"`
}

// UpdateProductRequest carries a partial product update.
type UpdateProductRequest struct {
	Name              *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	BuyPrice          *float64 `json:"buy_price,omitempty" validate:"omitempty,gte=0"`
	SellPrice         *float64 `json:"sell_price,omitempty" validate:"omitempty,gte=0"`
	LowStockThreshold *float64 `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
	IsActive          *bool    `json:"is_active,omitempty"`
}

// ListProductsRequest filters the product listing.
type ListProductsRequest struct {
	Search   string
	ActiveOnly bool
	Page     int
	PerPage  int
}

var (
	// ErrNotFound indicates the product does not exist.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrSKUTaken indicates a duplicate SKU.
	ErrSKUTaken = errors.New("catalog: sku already in use")
	// ErrInsufficientStock indicates a stock adjustment would go below zero.
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)
