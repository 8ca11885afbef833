package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Application configuration loaded from environment variables. These are
// populated at startup by LoadConfig.
var (
	// LogLevel is the zerolog level (debug/info/warn/error).
	LogLevel string

	// WebPort is the port for the JSON status server.
	WebPort string

	// SnapshotIntervalSeconds is how often the daemon persists fund snapshots.
	SnapshotIntervalSeconds int

	// RewardsDurationSeconds is the staking-rewards funding period length.
	RewardsDurationSeconds int64

	// DBEnabled toggles the Postgres event/snapshot store. When false the
	// daemon runs fully in-memory.
	DBEnabled bool
	// DBHost, DBPort, DBUser, DBPassword, DBName, DBSSLMode are the Postgres
	// connection parameters. Required only when DBEnabled.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. Database variables are required only when HOTPOT_DB_ENABLED
// is set to true.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	LogLevel = getEnvOr("LOG_LEVEL", "info")
	WebPort = getEnvOr("WEB_PORT", "8080")

	var err error
	SnapshotIntervalSeconds, err = getEnvAsIntOr("HOTPOT_SNAPSHOT_INTERVAL", 60)
	if err != nil {
		return err
	}

	duration, err := getEnvAsIntOr("HOTPOT_REWARDS_DURATION", 60*24*3600)
	if err != nil {
		return err
	}
	RewardsDurationSeconds = int64(duration)

	DBEnabled = os.Getenv("HOTPOT_DB_ENABLED") == "true"
	if !DBEnabled {
		return nil
	}

	if DBHost, err = getEnv("DB_HOST"); err != nil {
		return err
	}
	if DBPort, err = getEnvAsIntOr("DB_PORT", 5432); err != nil {
		return err
	}
	if DBUser, err = getEnv("DB_USER"); err != nil {
		return err
	}
	if DBPassword, err = getEnv("DB_PASSWORD"); err != nil {
		return err
	}
	if DBName, err = getEnv("DB_NAME"); err != nil {
		return err
	}
	DBSSLMode = getEnvOr("DB_SSLMODE", "disable")
	return nil
}

func getEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", errors.New("required environment variable not set: " + key)
	}
	return value, nil
}

func getEnvOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsIntOr(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("environment variable " + key + " is not an integer")
	}
	return parsed, nil
}
