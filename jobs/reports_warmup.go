package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/kasbook/kasbook/internal/finance"
	jobmetrics "github.com/kasbook/kasbook/internal/jobs"
	"github.com/kasbook/kasbook/internal/ledger"
)

// NewReportsWarmupHandler builds the handler that precomputes the cached
// financial reports so the first dashboard hit after an invalidation stays
// fast.
func NewReportsWarmupHandler(service *finance.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskReportsWarmup)
		var payload ReportsWarmupPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				return tracker.End(asynq.SkipRetry)
			}
		} else {
			payload = ReportsWarmupPayload{Dashboard: true, Monthly: true, Cashflow: true}
		}

		if payload.Dashboard {
			if _, err := service.Dashboard(ctx); err != nil {
				return tracker.End(err)
			}
		}
		if payload.Monthly {
			for _, mode := range []ledger.SaleFilterMode{ledger.RealizedOnly, ledger.AllExceptVoidAndQuote} {
				if _, err := service.MonthlyReports(ctx, mode); err != nil {
					return tracker.End(err)
				}
			}
		}
		if payload.Cashflow {
			if _, err := service.Cashflow(ctx, ledger.GranularityMonth); err != nil {
				return tracker.End(err)
			}
		}
		logger.Info("reports warmed",
			slog.Bool("dashboard", payload.Dashboard),
			slog.Bool("monthly", payload.Monthly),
			slog.Bool("cashflow", payload.Cashflow))
		return tracker.End(nil)
	}
}
