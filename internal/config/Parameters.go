/*

This file contains the default protocol parameters seeded into the store the
first time the engine boots against an empty database.

These values gate real capital movement. Each one is a hard limit, not a
tuning knob: loosening any of them widens what the AI strategy may do without
a human in the loop.

*/

package config

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/x-liquidity/engine/internal/types"
)

// DefaultProtocolConfig returns the baseline protocol configuration. It is
// persisted once at bootstrap; afterwards the stored row is authoritative and
// only the protocol authority may change it.
func DefaultProtocolConfig(now time.Time) types.ProtocolConfig {
	return types.ProtocolConfig{
		Authority:    AuthorityAddress,
		FeeRecipient: FeeRecipientAddress,

		PerformanceFeeBps: 1000, // 10% of realized performance.
		ProtocolFeeBps:    500,  // 5% of accrued swap fees goes to the protocol.

		X402Facilitator: FacilitatorAddress,
		X402MinPayment:  sdkmath.NewInt(1_000_000), // 1 USDC in 6-decimal units.
		X402APIBaseURL:  "https://api.x-liquidity-engine.com",

		MinRebalanceInterval: 3600, // At most one rebalance per position per hour.
		// Rationale: AI strategies that thrash ranges burn the position's
		// capital on swap fees and slippage. One hour is the floor; positions
		// may configure a longer interval, never a shorter one.

		MaxRebalanceFrequency: 24, // Hard daily ceiling per position.

		DefaultSlippageToleranceBps: 50, // 0.5% default slippage tolerance.
		// Callers may request up to twice this at execution time. Anything
		// above that bound is rejected outright.

		MaxPositionSize:    sdkmath.NewInt(1_000_000_000_000), // $1M in 6-decimal units.
		MaxSingleTradeSize: sdkmath.NewInt(100_000_000_000),   // $100K per trade.

		RequireHumanApprovalThreshold: sdkmath.NewInt(500_000_000_000), // $500K TVL.
		// Above this threshold every decision needs a human sign-off no matter
		// how confident the model is.

		DefaultAIModelVersion: "v1.0.0",

		AuditLogEnabled: true,
		ComplianceMode:  types.ComplianceEnhanced,

		CreatedAt: now,
		UpdatedAt: now,
	}
}
