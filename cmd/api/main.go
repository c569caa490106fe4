package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"repairhub-backend/internal/metrics"
	"repairhub-backend/pkg/container"
	"repairhub-backend/pkg/logger"
)

func main() {
	// .env is for local runs; deployments use real environment variables
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	logger.Init(getEnv("APP_ENV", "development"))
	metrics.InitMetrics()

	appContainer, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize container")
	}
	defer appContainer.Cleanup()

	if appContainer.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go appContainer.DB.MonitorPoolHealth(monitorCtx, time.Minute)

	Serve(appContainer)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
