package sales

import (
	"errors"
	"time"

	"github.com/kasbook/kasbook/internal/ledger"
)

// Sale is a sale document. Status uses the ledger vocabulary so snapshots can
// be handed to the calculation engine without mapping.
type Sale struct {
	ID           int64             `json:"id"`
	Number       string            `json:"number"`
	Date         time.Time         `json:"date"`
	Status       ledger.SaleStatus `json:"status"`
	CustomerName *string           `json:"customer_name,omitempty"`
	Total        float64           `json:"total"`
	Items        []SaleItem        `json:"items,omitempty"`
	CreatedBy    int64             `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// SaleItem is one line on a sale. COGS is captured from the catalog buy price
// at document creation so later catalog edits do not rewrite history.
type SaleItem struct {
	ID        int64    `json:"id"`
	SaleID    int64    `json:"sale_id"`
	ProductID int64    `json:"product_id"`
	Quantity  float64  `json:"quantity"`
	SellPrice float64  `json:"sell_price"`
	COGS      *float64 `json:"cogs,omitempty"`
	LineTotal float64  `json:"line_total"`
}

// CreateSaleRequest carries a new sale payload.
type CreateSaleRequest struct {
	Date         time.Time               `json:"date" validate:"required"`
	Status       ledger.SaleStatus       `json:"status" validate:"required,oneof=COMPLETED QUOTATION INVOICE"`
	CustomerName *string                 `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	Items        []CreateSaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateSaleItemRequest is one requested line.
type CreateSaleItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	SellPrice float64 `json:"sell_price" validate:"gte=0"`
}

// ListSalesRequest filters the sales listing.
type ListSalesRequest struct {
	Status  ledger.SaleStatus
	From    time.Time
	To      time.Time
	Page    int
	PerPage int
}

var (
	// ErrNotFound indicates the sale does not exist.
	ErrNotFound = errors.New("sales: sale not found")
	// ErrInvalidTransition indicates a disallowed document status change.
	ErrInvalidTransition = errors.New("sales: status transition not allowed")
	// ErrUnknownProduct indicates a sale line referencing a missing product.
	ErrUnknownProduct = errors.New("sales: unknown product on sale line")
)

// CanTransition reports whether a sale may move from one status to another.
// Voided documents are terminal; in particular a voided sale can never be
// marked as paid.
func CanTransition(from, to ledger.SaleStatus) bool {
	switch from {
	case ledger.SaleStatusQuotation:
		return to == ledger.SaleStatusInvoice || to == ledger.SaleStatusVoided
	case ledger.SaleStatusInvoice:
		return to == ledger.SaleStatusCompleted || to == ledger.SaleStatusVoided
	case ledger.SaleStatusCompleted:
		return to == ledger.SaleStatusVoided
	default:
		return false
	}
}

// Snapshot converts a sale into the ledger engine's value shape.
func (s Sale) Snapshot() ledger.Sale {
	items := make([]ledger.SaleItem, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, ledger.SaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			SellPrice: item.SellPrice,
			COGS:      item.COGS,
		})
	}
	return ledger.Sale{ID: s.ID, Date: s.Date, Total: s.Total, Status: s.Status, Items: items}
}
