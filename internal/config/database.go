package config

import (
	"fmt"
	"strconv"
	"time"

	"repairhub-backend/internal/infrastructure/database"
)

// LoadDatabaseConfig builds the pgxpool settings from DB_* variables.
// Unlike Load, malformed values are reported rather than defaulted.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	port, err := parseInt("DB_PORT", "5432")
	if err != nil {
		return nil, err
	}
	maxConns, err := parseInt("DB_MAX_CONNECTIONS", "25")
	if err != nil {
		return nil, err
	}
	minConns, err := parseInt("DB_MIN_CONNECTIONS", "5")
	if err != nil {
		return nil, err
	}
	maxRetries, err := parseInt("DB_MAX_RETRIES", "5")
	if err != nil {
		return nil, err
	}

	maxConnLifetime, err := parseDuration("DB_MAX_CONN_LIFETIME", "5m")
	if err != nil {
		return nil, err
	}
	maxConnIdleTime, err := parseDuration("DB_MAX_CONN_IDLE_TIME", "1m")
	if err != nil {
		return nil, err
	}
	healthCheckPeriod, err := parseDuration("DB_HEALTH_CHECK_PERIOD", "1m")
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("DB_RETRY_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	connectTimeout, err := parseDuration("DB_CONNECT_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	if minConns > maxConns {
		return nil, fmt.Errorf("DB_MIN_CONNECTIONS (%d) exceeds DB_MAX_CONNECTIONS (%d)", minConns, maxConns)
	}

	return &database.DBConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              port,
		Username:          getEnv("DB_USER", "repairhub"),
		Password:          getEnv("DB_PASSWORD", "secret"),
		DBName:            getEnv("DB_NAME", "repairhub_dev"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(maxConns),
		MinConns:          int32(minConns),
		MaxConnLifetime:   maxConnLifetime,
		MaxConnIdleTime:   maxConnIdleTime,
		HealthCheckPeriod: healthCheckPeriod,
		MaxRetries:        maxRetries,
		RetryDelay:        retryDelay,
		ConnectTimeout:    connectTimeout,
	}, nil
}

func parseInt(key, def string) (int, error) {
	v, err := strconv.Atoi(getEnv(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	v, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
