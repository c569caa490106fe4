package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything the health check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthCheckHandler reports 503 when Postgres is down. Redis only
// degrades the status since pricing works without the model cache.
func healthCheckHandler(db Pinger, cache Pinger, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   version,
		}

		dbStatus := pingStatus(c.Request.Context(), db)
		redisStatus := pingStatus(c.Request.Context(), cache)

		if dbStatus != "ok" || redisStatus != "ok" {
			health["status"] = "degraded"
		}
		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disconnected"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}
