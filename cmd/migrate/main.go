package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"repairhub-backend/internal/config"
	"repairhub-backend/internal/infrastructure/database"
	"repairhub-backend/pkg/logger"
)

var migrateDir = flag.String("migrations", "migrations", "Directory containing migration SQL files")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

func run(ctx context.Context) error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	conn, err := pgx.Connect(ctx, database.NewPostgresDB(dbConfig).DSN())
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close(context.Background())

	log.Info().Str("dir", *migrateDir).Msg("Applying migrations")
	applied, err := database.ApplyMigrations(ctx, conn, *migrateDir)
	if err != nil {
		return err
	}

	log.Info().Strs("applied", applied).Msg("Migrations completed successfully")
	return nil
}
