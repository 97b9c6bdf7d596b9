// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// ErrStaleState is returned when a guarded write matches zero rows: the
// entity changed between the engine's validation and the commit, so the
// transition must not be applied.
var ErrStaleState = errors.New("entity changed since validation")

// ErrDuplicate is returned when an insert collides with an existing key.
var ErrDuplicate = errors.New("entity already exists")

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
		-- Singleton protocol configuration row
		CREATE TABLE IF NOT EXISTS protocol_config (
			id INTEGER PRIMARY KEY DEFAULT 1,
			authority TEXT NOT NULL,
			performance_fee_bps INTEGER NOT NULL,
			protocol_fee_bps INTEGER NOT NULL,
			fee_recipient TEXT NOT NULL,
			x402_facilitator TEXT NOT NULL DEFAULT '',
			x402_min_payment NUMERIC(39, 0) NOT NULL,
			x402_api_base_url TEXT NOT NULL,
			min_rebalance_interval BIGINT NOT NULL,
			max_rebalance_frequency INTEGER NOT NULL,
			default_slippage_tolerance_bps INTEGER NOT NULL,
			max_position_size NUMERIC(39, 0) NOT NULL,
			max_single_trade_size NUMERIC(39, 0) NOT NULL,
			require_human_approval_threshold NUMERIC(39, 0) NOT NULL,
			default_ai_model_version TEXT NOT NULL,
			audit_log_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			compliance_mode VARCHAR(16) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		CREATE TABLE IF NOT EXISTS positions (
			position_id VARCHAR(64) PRIMARY KEY,
			owner_address TEXT NOT NULL,
			token_a TEXT NOT NULL,
			token_b TEXT NOT NULL,
			dex VARCHAR(16) NOT NULL,
			pool_address TEXT NOT NULL,
			tick_lower INTEGER NOT NULL,
			tick_upper INTEGER NOT NULL,
			price_lower NUMERIC(39, 0) NOT NULL,
			price_upper NUMERIC(39, 0) NOT NULL,
			liquidity_amount NUMERIC(39, 0) NOT NULL,
			fees_earned_a NUMERIC(39, 0) NOT NULL,
			fees_earned_b NUMERIC(39, 0) NOT NULL,
			total_value_locked NUMERIC(39, 0) NOT NULL,
			last_rebalance_slot NUMERIC(20, 0) NOT NULL DEFAULT 0,
			last_rebalance_timestamp TIMESTAMPTZ,
			rebalance_count BIGINT NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL,
			auto_rebalance_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			min_rebalance_interval BIGINT NOT NULL,
			max_position_size NUMERIC(39, 0) NOT NULL,
			max_single_trade NUMERIC(39, 0) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_positions_owner ON positions(owner_address);
		CREATE INDEX IF NOT EXISTS idx_positions_status ON positions(status);

		CREATE TABLE IF NOT EXISTS rebalance_decisions (
			decision_id VARCHAR(64) PRIMARY KEY,
			position_id VARCHAR(64) NOT NULL REFERENCES positions(position_id),
			new_tick_lower INTEGER NOT NULL,
			new_tick_upper INTEGER NOT NULL,
			new_price_lower NUMERIC(39, 0) NOT NULL,
			new_price_upper NUMERIC(39, 0) NOT NULL,
			ai_model_version TEXT NOT NULL,
			ai_model_hash TEXT NOT NULL DEFAULT '',
			prediction_confidence INTEGER NOT NULL,
			market_sentiment_score INTEGER NOT NULL,
			volatility_metric INTEGER NOT NULL,
			whale_activity_score INTEGER NOT NULL,
			decision_reason TEXT NOT NULL DEFAULT '',
			risk_assessment VARCHAR(16) NOT NULL,
			execution_status VARCHAR(16) NOT NULL,
			execution_tx_signature TEXT NOT NULL DEFAULT '',
			execution_slippage_bps INTEGER,
			requires_human_approval BOOLEAN NOT NULL,
			human_approver TEXT NOT NULL DEFAULT '',
			approval_timestamp TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			executed_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_decisions_position ON rebalance_decisions(position_id);
		CREATE INDEX IF NOT EXISTS idx_decisions_status ON rebalance_decisions(execution_status);

		CREATE TABLE IF NOT EXISTS x402_payments (
			payment_id VARCHAR(64) PRIMARY KEY,
			payer TEXT NOT NULL,
			payer_wallet TEXT NOT NULL,
			amount NUMERIC(39, 0) NOT NULL,
			currency VARCHAR(8) NOT NULL,
			status VARCHAR(16) NOT NULL,
			facilitator TEXT NOT NULL,
			facilitator_signature TEXT NOT NULL DEFAULT '',
			payment_tx_signature TEXT NOT NULL DEFAULT '',
			api_endpoint TEXT NOT NULL,
			api_version TEXT NOT NULL,
			access_granted BOOLEAN NOT NULL,
			access_expires_at TIMESTAMPTZ,
			requested_at TIMESTAMPTZ NOT NULL,
			verified_at TIMESTAMPTZ,
			settled_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_payments_payer ON x402_payments(payer);

		-- Append-only audit trail. No UPDATE or DELETE is ever issued
		-- against this table.
		CREATE TABLE IF NOT EXISTS audit_log (
			event_id VARCHAR(64) PRIMARY KEY,
			event_type VARCHAR(32) NOT NULL,
			position_id VARCHAR(64) NOT NULL DEFAULT '',
			user_address TEXT NOT NULL,
			payload JSONB,
			event_hash CHAR(64) NOT NULL,
			slot NUMERIC(20, 0) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_audit_log_position ON audit_log(position_id);
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

// scanBigInt parses a NUMERIC column value into an sdkmath.Int.
func scanBigInt(raw string) (sdkmath.Int, error) {
	v, ok := sdkmath.NewIntFromString(raw)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid big integer column value: %q", raw)
	}
	return v, nil
}

// nullTime converts an optional timestamp into its database representation.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// timePtr converts a nullable column back into an optional timestamp.
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
