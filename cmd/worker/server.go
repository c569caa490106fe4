package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"repairhub-backend/internal/shared"
	"repairhub-backend/pkg/container"
)

// asynqServer wraps asynq.Server with a bounded shutdown
type asynqServer struct {
	*asynq.Server
	shutdownTimeout time.Duration
}

func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	cfg := c.Config.Worker
	srv := asynq.NewServer(
		c.RedisClientOpt(),
		asynq.Config{
			Queues:          shared.QueueWeights,
			StrictPriority:  cfg.StrictPriority,
			Concurrency:     cfg.Concurrency,
			ShutdownTimeout: cfg.ShutdownTimeout,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Error().
					Err(err).
					Str("type", task.Type()).
					Int("retry", retried).
					Int("max_retry", maxRetry).
					Msg("[Asynq] Task failed")
			}),
		},
	)

	go func() {
		log.Info().Int("concurrency", cfg.Concurrency).Msg("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("[Worker] Failed")
		}
	}()

	return &asynqServer{Server: srv, shutdownTimeout: cfg.ShutdownTimeout}
}

// Shutdown stops pulling tasks and waits for in-flight ones up to the
// configured timeout (asynq enforces it).
func (s *asynqServer) Shutdown() {
	log.Info().Dur("timeout", s.shutdownTimeout).Msg("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Info().Msg("[Worker] Stopped")
}
