// ./internal/state/config_store.go
package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/x-liquidity/engine/internal/types"
)

// SaveProtocolConfig inserts the singleton protocol config row if it does not
// exist yet. The stored row is authoritative after the first boot; this
// function never overwrites it.
func SaveProtocolConfig(cfg types.ProtocolConfig) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
		INSERT INTO protocol_config (
			id, authority, performance_fee_bps, protocol_fee_bps, fee_recipient,
			x402_facilitator, x402_min_payment, x402_api_base_url,
			min_rebalance_interval, max_rebalance_frequency, default_slippage_tolerance_bps,
			max_position_size, max_single_trade_size, require_human_approval_threshold,
			default_ai_model_version, audit_log_enabled, compliance_mode,
			created_at, updated_at
		) VALUES (
			1, $1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10,
			$11, $12, $13,
			$14, $15, $16,
			$17, $18
		) ON CONFLICT (id) DO NOTHING;`

	_, err := DB.Exec(stmt,
		cfg.Authority, cfg.PerformanceFeeBps, cfg.ProtocolFeeBps, cfg.FeeRecipient,
		cfg.X402Facilitator, cfg.X402MinPayment.String(), cfg.X402APIBaseURL,
		cfg.MinRebalanceInterval, cfg.MaxRebalanceFrequency, cfg.DefaultSlippageToleranceBps,
		cfg.MaxPositionSize.String(), cfg.MaxSingleTradeSize.String(), cfg.RequireHumanApprovalThreshold.String(),
		cfg.DefaultAIModelVersion, cfg.AuditLogEnabled, string(cfg.ComplianceMode),
		cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert protocol config: %w", err)
	}

	log.Info().Str("authority", cfg.Authority).Msg("Saved protocol config")
	return nil
}

// LoadProtocolConfig loads the singleton protocol config row.
func LoadProtocolConfig() (*types.ProtocolConfig, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT
			authority, performance_fee_bps, protocol_fee_bps, fee_recipient,
			x402_facilitator, x402_min_payment, x402_api_base_url,
			min_rebalance_interval, max_rebalance_frequency, default_slippage_tolerance_bps,
			max_position_size, max_single_trade_size, require_human_approval_threshold,
			default_ai_model_version, audit_log_enabled, compliance_mode,
			created_at, updated_at
		FROM protocol_config
		WHERE id = 1;`

	cfg := &types.ProtocolConfig{}
	var minPayment, maxPosition, maxTrade, approvalThreshold, complianceMode string

	row := DB.QueryRow(query)
	err := row.Scan(
		&cfg.Authority, &cfg.PerformanceFeeBps, &cfg.ProtocolFeeBps, &cfg.FeeRecipient,
		&cfg.X402Facilitator, &minPayment, &cfg.X402APIBaseURL,
		&cfg.MinRebalanceInterval, &cfg.MaxRebalanceFrequency, &cfg.DefaultSlippageToleranceBps,
		&maxPosition, &maxTrade, &approvalThreshold,
		&cfg.DefaultAIModelVersion, &cfg.AuditLogEnabled, &complianceMode,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("protocol config: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan protocol config: %w", err)
	}

	if cfg.X402MinPayment, err = scanBigInt(minPayment); err != nil {
		return nil, err
	}
	if cfg.MaxPositionSize, err = scanBigInt(maxPosition); err != nil {
		return nil, err
	}
	if cfg.MaxSingleTradeSize, err = scanBigInt(maxTrade); err != nil {
		return nil, err
	}
	if cfg.RequireHumanApprovalThreshold, err = scanBigInt(approvalThreshold); err != nil {
		return nil, err
	}
	cfg.ComplianceMode = types.ComplianceMode(complianceMode)

	return cfg, nil
}
