package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// ComplianceMode controls how strictly the protocol applies policy checks.
type ComplianceMode string

const (
	ComplianceBasic    ComplianceMode = "BASIC"
	ComplianceEnhanced ComplianceMode = "ENHANCED"
	ComplianceFull     ComplianceMode = "FULL"
)

// ProtocolConfig holds the protocol-wide limits and fee parameters. There is
// exactly one row; it is created at bootstrap, mutated only by the authority,
// and read-only to every engine operation.
type ProtocolConfig struct {
	Authority string `json:"authority"`

	// Fee structure
	PerformanceFeeBps uint16 `json:"performance_fee_bps"`
	ProtocolFeeBps    uint16 `json:"protocol_fee_bps"`
	FeeRecipient      string `json:"fee_recipient"`

	// x402 metered-payment configuration. An empty facilitator means none is
	// configured and every payment verification fails.
	X402Facilitator string      `json:"x402_facilitator,omitempty"`
	X402MinPayment  sdkmath.Int `json:"x402_min_payment"`
	X402APIBaseURL  string      `json:"x402_api_base_url"`

	// Rebalancing cadence and slippage limits
	MinRebalanceInterval        int64  `json:"min_rebalance_interval"`  // seconds
	MaxRebalanceFrequency       uint32 `json:"max_rebalance_frequency"` // per day
	DefaultSlippageToleranceBps uint16 `json:"default_slippage_tolerance_bps"`

	// Absolute risk limits
	MaxPositionSize               sdkmath.Int `json:"max_position_size"`
	MaxSingleTradeSize            sdkmath.Int `json:"max_single_trade_size"`
	RequireHumanApprovalThreshold sdkmath.Int `json:"require_human_approval_threshold"`

	// AI model configuration
	DefaultAIModelVersion string `json:"default_ai_model_version"`

	// Compliance
	AuditLogEnabled bool           `json:"audit_log_enabled"`
	ComplianceMode  ComplianceMode `json:"compliance_mode"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaxCallerSlippageBps is the highest slippage tolerance a caller may request
// at execution time: twice the protocol default, boundary inclusive.
func (c *ProtocolConfig) MaxCallerSlippageBps() uint32 {
	return 2 * uint32(c.DefaultSlippageToleranceBps)
}
