package sales

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kasbook/kasbook/internal/ledger"
)

// CatalogGateway is the slice of the catalog the sales service needs to
// capture costs at document creation.
type CatalogGateway interface {
	BuyPrices(ctx context.Context, ids []int64) (map[int64]float64, error)
}

// ReportCache invalidates cached financial reports after document writes.
type ReportCache interface {
	Bump(ctx context.Context) error
}

// Service provides business logic for sale documents.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	catalog CatalogGateway
	cache   ReportCache
}

// NewService constructs a sales service. cache may be nil.
func NewService(logger *slog.Logger, repo Repository, catalog CatalogGateway, cache ReportCache) *Service {
	return &Service{logger: logger, repo: repo, catalog: catalog, cache: cache}
}

// CreateSale records a new sale document. Costs are captured from the current
// catalog buy prices; completed sales decrement stock in the same transaction.
func (s *Service) CreateSale(ctx context.Context, userID int64, req CreateSaleRequest) (Sale, error) {
	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	prices, err := s.catalog.BuyPrices(ctx, ids)
	if err != nil {
		return Sale{}, fmt.Errorf("capture costs: %w", err)
	}

	sale := Sale{
		Date:         req.Date,
		Status:       req.Status,
		CustomerName: req.CustomerName,
		CreatedBy:    userID,
	}
	items := make([]SaleItem, 0, len(req.Items))
	for _, line := range req.Items {
		buyPrice, ok := prices[line.ProductID]
		if !ok {
			return Sale{}, ErrUnknownProduct
		}
		cogs := buyPrice * line.Quantity
		items = append(items, SaleItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			SellPrice: line.SellPrice,
			COGS:      &cogs,
			LineTotal: line.Quantity * line.SellPrice,
		})
		sale.Total += line.Quantity * line.SellPrice
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := tx.NextNumber(ctx, sale.Date)
		if err != nil {
			return err
		}
		sale.Number = number
		created, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		sale = created
		stored, err := tx.InsertItems(ctx, sale.ID, items)
		if err != nil {
			return err
		}
		sale.Items = stored
		if sale.Status == ledger.SaleStatusCompleted {
			return adjustStock(ctx, tx, sale.Items, -1)
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	s.bumpReports(ctx)
	return sale, nil
}

// GetSale loads one sale with its lines.
func (s *Service) GetSale(ctx context.Context, id int64) (Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// ListSales returns a filtered page of sales.
func (s *Service) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	return s.repo.ListSales(ctx, req)
}

// MarkPaid moves an invoice to COMPLETED and decrements stock.
func (s *Service) MarkPaid(ctx context.Context, id int64) (Sale, error) {
	return s.transition(ctx, id, ledger.SaleStatusCompleted)
}

// ConvertToInvoice promotes a quotation into an invoice. No stock moves.
func (s *Service) ConvertToInvoice(ctx context.Context, id int64) (Sale, error) {
	return s.transition(ctx, id, ledger.SaleStatusInvoice)
}

// VoidSale cancels a document. Voiding a completed sale restores the stock it
// consumed; a voided document stays voided.
func (s *Service) VoidSale(ctx context.Context, id int64) (Sale, error) {
	return s.transition(ctx, id, ledger.SaleStatusVoided)
}

func (s *Service) transition(ctx context.Context, id int64, to ledger.SaleStatus) (Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	from := sale.Status
	if !CanTransition(from, to) {
		return Sale{}, ErrInvalidTransition
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateStatus(ctx, id, from, to); err != nil {
			return err
		}
		switch {
		case to == ledger.SaleStatusCompleted:
			return adjustStock(ctx, tx, sale.Items, -1)
		case to == ledger.SaleStatusVoided && from == ledger.SaleStatusCompleted:
			return adjustStock(ctx, tx, sale.Items, +1)
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	sale.Status = to
	s.bumpReports(ctx)
	return sale, nil
}

func adjustStock(ctx context.Context, tx TxRepository, items []SaleItem, sign float64) error {
	for _, item := range items {
		if err := tx.AdjustProductStock(ctx, item.ProductID, sign*item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) bumpReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump report cache", "error", err)
	}
}
