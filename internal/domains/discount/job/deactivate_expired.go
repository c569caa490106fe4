package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"repairhub-backend/internal/metrics"
	"repairhub-backend/pkg/logger"
)

// StaleDeactivator is satisfied by the admin discount service.
type StaleDeactivator interface {
	DeactivateStaleDiscounts(ctx context.Context) (int64, error)
}

// DeactivateExpiredHandler runs the scheduled expiry sweep. Pricing already
// ignores expired and exhausted discounts, so the sweep only keeps the
// is_active flag honest for the back office.
type DeactivateExpiredHandler struct {
	discounts StaleDeactivator
}

func NewDeactivateExpiredHandler(discounts StaleDeactivator) *DeactivateExpiredHandler {
	return &DeactivateExpiredHandler{discounts: discounts}
}

// ProcessTask
// EXECUTION FLOW:
// 1. Switch off discounts whose expires_at has passed or whose cap is used up
// 2. Record the count and log the run
func (h *DeactivateExpiredHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	n, err := h.discounts.DeactivateStaleDiscounts(ctx)
	if err != nil {
		logger.Error("Discount expiry sweep failed", err)
		return fmt.Errorf("deactivate stale discounts: %w", err)
	}

	metrics.DiscountsDeactivatedTotal.Add(float64(n))
	logger.Info("Discount expiry sweep finished", map[string]interface{}{
		"deactivated": n,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
