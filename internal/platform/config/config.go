package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	RedisAddr    string
	IsProduction bool

	// Decimal places used when storing exchange rates.
	RatePlaces int

	// Rate audit trail retention settings consumed by the worker.
	FxRetentionDays    int
	FxArchiveBatchSize int
	FxRetentionCron    string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("RATE_PLACES", 8)
	viper.SetDefault("FX_RETENTION_DAYS", 90)
	viper.SetDefault("FX_ARCHIVE_BATCH_SIZE", 1000)
	viper.SetDefault("FX_RETENTION_CRON", "0 3 * * *")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:        viper.GetString("PGSQL_URL"),
		RedisAddr:          viper.GetString("REDIS_ADDR"),
		IsProduction:       viper.GetBool("IS_PRODUCTION"),
		RatePlaces:         viper.GetInt("RATE_PLACES"),
		FxRetentionDays:    viper.GetInt("FX_RETENTION_DAYS"),
		FxArchiveBatchSize: viper.GetInt("FX_ARCHIVE_BATCH_SIZE"),
		FxRetentionCron:    viper.GetString("FX_RETENTION_CRON"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.RatePlaces < 0 {
		log.Printf("Warning: Invalid RATE_PLACES (%d). Defaulting to 8.\n", cfg.RatePlaces)
		cfg.RatePlaces = 8
	}

	return cfg, nil
}
