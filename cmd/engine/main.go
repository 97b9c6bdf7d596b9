package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/x-liquidity/engine/internal/config"
	"github.com/x-liquidity/engine/internal/engine"
	"github.com/x-liquidity/engine/internal/logger"
	"github.com/x-liquidity/engine/internal/state"
	"github.com/x-liquidity/engine/internal/web"
)

// main is the entry point for the liquidity policy engine.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Liquidity policy engine starting...")

	// Initialize Database Connection
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

	// Seed the protocol config on first boot. The stored row is authoritative
	// afterwards; SaveProtocolConfig never overwrites it.
	if _, err := state.LoadProtocolConfig(); err != nil {
		log.Warn().Err(err).Msg("No protocol config found, seeding defaults.")
		if err := state.SaveProtocolConfig(config.DefaultProtocolConfig(time.Now().UTC())); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed protocol config")
		}
	}
	log.Info().Msg("Protocol config ready.")

	// --- 2. Create Engine Instance with Dependency Injection ---
	eng, err := engine.New(engine.Config{
		Store:    &state.Store{},
		Recorder: &state.PostgresRecorder{},
		Clock:    engine.NewSystemClock(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create policy engine")
	}
	log.Info().Msg("Policy engine created successfully")

	// --- 3. Serve the HTTP API ---
	webServer := web.NewWebServer(config.WebPort, eng)
	log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting policy engine API")
	if err := webServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("Web server failed")
	}
}
