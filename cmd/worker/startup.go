package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"repairhub-backend/pkg/container"
)

const healthAddr = ":9999"

// startServices checks dependencies and exposes the worker's health endpoints.
func startServices(c *container.Container) error {
	log.Info().Str("service", "repairhub-worker").Msg("Worker starting")

	checks := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"Redis", c.Cache.Ping},
		{"Postgres", c.DB.Ping},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("%s check failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("OK")
	}

	go startHealthCheckServer()
	return nil
}

func startHealthCheckServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"UP","service":"repairhub-worker"}`))
	})
	mux.Handle("/metrics", promhttp.Handler())

	log.Info().Str("addr", healthAddr).Msg("[Health] Starting health check server")
	if err := http.ListenAndServe(healthAddr, mux); err != nil {
		log.Error().Err(err).Msg("[Health] Failed to start")
	}
}
