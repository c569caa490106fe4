package database

import (
	"context"
	"fmt"
	"time"

	"repairhub-backend/pkg/logger"
)

// Ping is the health check used by /health.
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// PoolStats is a snapshot of pgxpool.Stat.
type PoolStats struct {
	AcquiredConns        int32         `json:"acquired_conns"`
	IdleConns            int32         `json:"idle_conns"`
	TotalConns           int32         `json:"total_conns"`
	MaxConns             int32         `json:"max_conns"`
	AcquireCount         int64         `json:"acquire_count"`
	CanceledAcquireCount int64         `json:"canceled_acquire_count"`
	AvgAcquireDuration   time.Duration `json:"avg_acquire_duration"`
}

// Utilization is acquired/max as a percentage.
func (s *PoolStats) Utilization() float64 {
	if s.MaxConns == 0 {
		return 0
	}
	return float64(s.AcquiredConns) / float64(s.MaxConns) * 100
}

// Stats returns the current pool snapshot.
func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	raw := db.Pool.Stat()
	return &PoolStats{
		AcquiredConns:        raw.AcquiredConns(),
		IdleConns:            raw.IdleConns(),
		TotalConns:           raw.TotalConns(),
		MaxConns:             raw.MaxConns(),
		AcquireCount:         raw.AcquireCount(),
		CanceledAcquireCount: raw.CanceledAcquireCount(),
		AvgAcquireDuration:   avgDuration(raw.AcquireDuration(), raw.AcquireCount()),
	}, nil
}

func avgDuration(total time.Duration, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return total / time.Duration(count)
}

// MonitorPoolHealth logs a warning whenever the pool runs hot.
// Blocks until ctx is cancelled; run it in its own goroutine.
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := db.Stats()
			if err != nil {
				logger.Error("[MONITOR] Failed to read pool stats", err)
				continue
			}

			if stats.Utilization() > 80 {
				logger.Warn("[MONITOR] High pool utilization", map[string]interface{}{
					"acquired": stats.AcquiredConns,
					"max":      stats.MaxConns,
				})
			}
			if stats.AvgAcquireDuration > 100*time.Millisecond {
				logger.Warn("[MONITOR] High acquire latency", map[string]interface{}{
					"avg_acquire": stats.AvgAcquireDuration.String(),
				})
			}

		case <-ctx.Done():
			logger.Info("[MONITOR] Stopping pool health monitoring", map[string]interface{}{})
			return
		}
	}
}
