package purchases

import (
	"errors"
	"time"
)

// Purchase is a received stock purchase. Recording one increments catalog
// stock in the same transaction; there is no draft state.
type Purchase struct {
	ID           int64          `json:"id"`
	Number       string         `json:"number"`
	Date         time.Time      `json:"date"`
	SupplierName string         `json:"supplier_name"`
	Total        float64        `json:"total"`
	Items        []PurchaseItem `json:"items,omitempty"`
	CreatedBy    int64          `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
}

// PurchaseItem is one received line. UnitCost becomes the product's new buy
// price so later sales capture up-to-date costs.
type PurchaseItem struct {
	ID         int64   `json:"id"`
	PurchaseID int64   `json:"purchase_id"`
	ProductID  int64   `json:"product_id"`
	Quantity   float64 `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"`
	LineTotal  float64 `json:"line_total"`
}

// CreatePurchaseRequest carries a new purchase payload.
type CreatePurchaseRequest struct {
	Date         time.Time                   `json:"date" validate:"required"`
	SupplierName string                      `json:"supplier_name" validate:"required,max=200"`
	Items        []CreatePurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreatePurchaseItemRequest is one requested line.
type CreatePurchaseItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	UnitCost  float64 `json:"unit_cost" validate:"gte=0"`
}

// ListPurchasesRequest filters the purchase listing.
type ListPurchasesRequest struct {
	From    time.Time
	To      time.Time
	Page    int
	PerPage int
}

var (
	// ErrNotFound indicates the purchase does not exist.
	ErrNotFound = errors.New("purchases: purchase not found")
	// ErrUnknownProduct indicates a purchase line referencing a missing product.
	ErrUnknownProduct = errors.New("purchases: unknown product on purchase line")
)
