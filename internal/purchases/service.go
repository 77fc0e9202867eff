package purchases

import (
	"context"
	"log/slog"
)

// ReportCache invalidates cached financial reports after purchase writes.
type ReportCache interface {
	Bump(ctx context.Context) error
}

// Service provides business logic for stock purchases.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  ReportCache
}

// NewService constructs a purchases service. cache may be nil.
func NewService(logger *slog.Logger, repo Repository, cache ReportCache) *Service {
	return &Service{logger: logger, repo: repo, cache: cache}
}

// CreatePurchase records a received purchase, incrementing stock and
// refreshing buy prices inside one transaction.
func (s *Service) CreatePurchase(ctx context.Context, userID int64, req CreatePurchaseRequest) (Purchase, error) {
	purchase := Purchase{
		Date:         req.Date,
		SupplierName: req.SupplierName,
		CreatedBy:    userID,
	}
	items := make([]PurchaseItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, PurchaseItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			LineTotal: line.Quantity * line.UnitCost,
		})
		purchase.Total += line.Quantity * line.UnitCost
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := tx.NextNumber(ctx, purchase.Date)
		if err != nil {
			return err
		}
		purchase.Number = number
		created, err := tx.InsertPurchase(ctx, purchase)
		if err != nil {
			return err
		}
		purchase = created
		stored, err := tx.InsertItems(ctx, purchase.ID, items)
		if err != nil {
			return err
		}
		purchase.Items = stored
		for _, item := range purchase.Items {
			if err := tx.ReceiveStock(ctx, item.ProductID, item.Quantity, item.UnitCost); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	s.bumpReports(ctx)
	return purchase, nil
}

// GetPurchase loads one purchase with its lines.
func (s *Service) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	return s.repo.GetPurchase(ctx, id)
}

// ListPurchases returns a filtered page of purchases.
func (s *Service) ListPurchases(ctx context.Context, req ListPurchasesRequest) ([]Purchase, int, error) {
	return s.repo.ListPurchases(ctx, req)
}

func (s *Service) bumpReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump report cache", "error", err)
	}
}
