package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Tie-break policies understood by the pricing engine
const (
	TieBreakFirstCreated = "first_created"
	TieBreakMostSpecific = "most_specific"
)

// Config holds the whole application configuration, populated from env vars.
type Config struct {
	App     AppConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Pricing PricingConfig
	Worker  WorkerConfig
	Storage StorageConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// =====================================================
// PRICING
// =====================================================

type PricingConfig struct {
	// TieBreak picks the winner when several discounts apply
	TieBreak string
	// ModelCacheTTL bounds staleness of cached device model references
	ModelCacheTTL time.Duration
}

// =====================================================
// WORKER
// =====================================================

type WorkerConfig struct {
	Concurrency      int
	StrictPriority   bool
	DeactivateCron   string
	ShutdownTimeout  time.Duration
	ExportReportMail string
}

// =====================================================
// STORAGE (MinIO)
// =====================================================

type StorageConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// ReportURLExpiry is the lifetime of presigned report download links
	ReportURLExpiry time.Duration
}

// maxPresignExpiry is the S3 limit for presigned URLs.
const maxPresignExpiry = 7 * 24 * time.Hour

// Load reads config from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "RepairHub API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", defaultJWTSecret),
		},
		Pricing: PricingConfig{
			TieBreak:      strings.ToLower(getEnv("PRICING_TIE_BREAK", TieBreakFirstCreated)),
			ModelCacheTTL: getEnvDuration("PRICING_MODEL_CACHE_TTL", 10*time.Minute),
		},
		Worker: WorkerConfig{
			Concurrency:      getEnvInt("WORKER_CONCURRENCY", 5),
			StrictPriority:   getEnvBool("WORKER_STRICT_PRIORITY", false),
			DeactivateCron:   getEnv("WORKER_DEACTIVATE_CRON", "*/15 * * * *"),
			ShutdownTimeout:  getEnvDuration("WORKER_SHUTDOWN_TIMEOUT", 30*time.Second),
			ExportReportMail: getEnv("WORKER_EXPORT_REPORT_MAIL", "ops@repairhub.local"),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:       getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:       getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:          getEnv("MINIO_BUCKET", "repairhub"),
			UseSSL:          getEnvBool("MINIO_USE_SSL", false),
			ReportURLExpiry: getEnvDuration("MINIO_REPORT_URL_EXPIRY", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects unusable settings.
func (c *Config) Validate() error {
	switch c.Pricing.TieBreak {
	case TieBreakFirstCreated, TieBreakMostSpecific:
	default:
		return fmt.Errorf("PRICING_TIE_BREAK must be %q or %q, got %q",
			TieBreakFirstCreated, TieBreakMostSpecific, c.Pricing.TieBreak)
	}

	if c.Pricing.ModelCacheTTL < 0 {
		return fmt.Errorf("PRICING_MODEL_CACHE_TTL must not be negative")
	}

	if c.Storage.ReportURLExpiry <= 0 || c.Storage.ReportURLExpiry > maxPresignExpiry {
		return fmt.Errorf("MINIO_REPORT_URL_EXPIRY must be between 1s and %s", maxPresignExpiry)
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
