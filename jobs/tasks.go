package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup precomputes the cached financial reports.
	TaskReportsWarmup = "reports:warmup"
	// TaskLowStockScan looks for products at or under their stock threshold.
	TaskLowStockScan = "catalog:lowstock"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// ReportsWarmupPayload selects which report variants to warm.
type ReportsWarmupPayload struct {
	Dashboard bool `json:"dashboard"`
	Monthly   bool `json:"monthly"`
	Cashflow  bool `json:"cashflow"`
}

// NewReportsWarmupTask constructs a report warmup task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// NewLowStockScanTask constructs a low stock scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil)
}

// NewIdempotencyCleanupTask constructs an idempotency key cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}
