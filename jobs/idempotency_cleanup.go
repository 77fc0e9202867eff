package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/kasbook/kasbook/internal/jobs"
	"github.com/kasbook/kasbook/internal/shared"
)

// idempotencyRetention is how long processed request keys are kept. Retries
// arriving later than this are treated as fresh requests.
const idempotencyRetention = 48 * time.Hour

// NewIdempotencyCleanupHandler builds the handler that prunes expired
// idempotency keys.
func NewIdempotencyCleanupHandler(store *shared.IdempotencyStore, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskIdempotencyCleanup)
		if err := store.Cleanup(ctx, idempotencyRetention); err != nil {
			return tracker.End(err)
		}
		logger.Info("idempotency keys pruned", slog.Duration("retention", idempotencyRetention))
		return tracker.End(nil)
	}
}
