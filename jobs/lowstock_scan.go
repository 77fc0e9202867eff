package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/kasbook/kasbook/internal/catalog"
	jobmetrics "github.com/kasbook/kasbook/internal/jobs"
)

// NewLowStockScanHandler builds the handler that reports products at or
// under their restock threshold.
func NewLowStockScanHandler(service *catalog.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskLowStockScan)
		products, err := service.LowStock(ctx)
		if err != nil {
			return tracker.End(err)
		}
		for _, product := range products {
			logger.Warn("product low on stock",
				slog.String("sku", product.SKU),
				slog.String("name", product.Name),
				slog.Float64("stock", product.Stock),
				slog.Float64("threshold", product.LowStockThreshold))
		}
		logger.Info("low stock scan finished", slog.Int("flagged", len(products)))
		return tracker.End(nil)
	}
}
