package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment
// variables. These are populated at startup by LoadConfig.
var (
	// AuthorityAddress is the protocol authority identity seeded into the
	// protocol config at bootstrap.
	AuthorityAddress string
	// FeeRecipientAddress receives the protocol's share of collected fees.
	FeeRecipientAddress string
	// FacilitatorAddress is the trusted x402 facilitator identity. May be
	// empty, in which case payment verification always fails.
	FacilitatorAddress string

	// WebPort is the port the HTTP API listens on.
	WebPort string

	// DBHost, DBPort, DBUser, DBPassword, DBName, DBSSLMode describe the
	// PostgreSQL connection.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. Identity and database variables are required.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	AuthorityAddress, err = getEnv("ENGINE_AUTHORITY")
	if err != nil {
		return err
	}

	FeeRecipientAddress, err = getEnv("ENGINE_FEE_RECIPIENT")
	if err != nil {
		return err
	}

	// Optional: no facilitator means the payment gate rejects everything.
	FacilitatorAddress = os.Getenv("ENGINE_X402_FACILITATOR")

	WebPort = os.Getenv("WEB_PORT")
	if WebPort == "" {
		WebPort = "8080"
	}

	DBHost, err = getEnv("DB_HOST")
	if err != nil {
		return err
	}
	DBPort, err = getEnvAsInt("DB_PORT")
	if err != nil {
		return err
	}
	DBUser, err = getEnv("DB_USER")
	if err != nil {
		return err
	}
	DBPassword = os.Getenv("DB_PASSWORD")
	DBName, err = getEnv("DB_NAME")
	if err != nil {
		return err
	}
	DBSSLMode = os.Getenv("DB_SSLMODE")
	if DBSSLMode == "" {
		DBSSLMode = "disable"
	}

	log.Debug().
		Str("authority", AuthorityAddress).
		Str("feeRecipient", FeeRecipientAddress).
		Str("webPort", WebPort).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsInt retrieves an environment variable as an int. Returns error if
// not set or invalid.
func getEnvAsInt(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}
