package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS fund_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			fund_symbol VARCHAR(16) NOT NULL,
			fund_address VARCHAR(128) NOT NULL,
			base_token VARCHAR(128) NOT NULL,

			total_supply NUMERIC(78, 0) NOT NULL,
			total_assets NUMERIC(78, 0) NOT NULL,
			total_investment NUMERIC(78, 0) NOT NULL,
			idle_balance NUMERIC(78, 0) NOT NULL,
			total_debts NUMERIC(78, 0) NOT NULL,
			mining_reward_balance NUMERIC(78, 0) NOT NULL,

			positions JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_fund_snapshots_timestamp ON fund_snapshots(snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_fund_snapshots_symbol ON fund_snapshots(fund_symbol, snapshot_timestamp DESC);

		CREATE TABLE IF NOT EXISTS ledger_events (
			event_seq BIGINT PRIMARY KEY,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			emitter VARCHAR(128) NOT NULL,
			event_name VARCHAR(64) NOT NULL,
			args JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_ledger_events_emitter ON ledger_events(emitter, event_seq DESC);
		CREATE INDEX IF NOT EXISTS idx_ledger_events_name ON ledger_events(event_name, event_seq DESC);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
