package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/HotpotFunds/HotpotFunds/internal/config"
	"github.com/HotpotFunds/HotpotFunds/internal/logger"
	"github.com/HotpotFunds/HotpotFunds/internal/sim"
	"github.com/HotpotFunds/HotpotFunds/internal/state"
	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/web"
)

// main runs the HotPot fund daemon: a fully wired in-process deployment with a
// JSON status server and an optional Postgres snapshot/event store.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(config.LogLevel)
	log.Info().Msg("HotPot Funds starting...")

	if config.DBEnabled {
		dbCfg := state.DBConfig{
			Host: config.DBHost, Port: config.DBPort,
			User: config.DBUser, Password: config.DBPassword,
			DBName: config.DBName, SSLMode: config.DBSSLMode,
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
	} else {
		log.Info().Msg("Database disabled; running fully in-memory.")
	}

	// --- 2. Deploy the World ---
	world, err := sim.NewWorld(types.SystemClock{}, config.RewardsDurationSeconds)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to deploy world")
	}
	log.Info().
		Int("funds", len(world.Funds())).
		Int64("rewards_duration", config.RewardsDurationSeconds).
		Msg("World deployed")

	// --- 3. Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, world)
	go func() {
		log.Info().Str("url", "http://localhost:"+config.WebPort).Msg("Starting HotPot status server")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
			os.Exit(1)
		}
	}()

	// --- 4. Snapshot Loop ---
	interval := time.Duration(config.SnapshotIntervalSeconds) * time.Second
	log.Info().Str("interval", interval.String()).Msg("Starting snapshot loop")

	eventCursor := 0
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if !config.DBEnabled {
			continue
		}
		for symbol, f := range world.Funds() {
			snapshot := state.CaptureFundSnapshot(symbol, f, baseTokenFor(world, symbol), world.UNI, world.Factory)
			if _, err := state.SaveFundSnapshot(snapshot); err != nil {
				log.Error().Err(err).Str("fund", symbol).Msg("Failed to save fund snapshot")
			}
		}
		next, err := state.SaveEvents(eventCursor, world.Log.Since(eventCursor))
		if err != nil {
			log.Error().Err(err).Msg("Failed to save ledger events")
		}
		eventCursor = next
	}
}

func baseTokenFor(world *sim.World, symbol string) *token.Token {
	switch symbol {
	case "DAI":
		return world.DAI
	case "USDC":
		return world.USDC
	case "USDT":
		return world.USDT
	case "ETH":
		return world.WETH.Token
	}
	return nil
}
