package engine

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/x-liquidity/engine/internal/types"
)

const bpsDenominator = 10_000

// FeeCollection reports the outcome of collecting a position's accrued fees.
// Collected amounts are the full pre-collection accruals; the protocol cut is
// the share owed to the fee recipient. Token transfer itself happens
// downstream, triggered by the audit event for this collection.
type FeeCollection struct {
	CollectedA   sdkmath.Int `json:"collected_a"`
	CollectedB   sdkmath.Int `json:"collected_b"`
	ProtocolCutA sdkmath.Int `json:"protocol_cut_a"`
	ProtocolCutB sdkmath.Int `json:"protocol_cut_b"`
}

// CollectPositionFees zeroes both accrual counters and reports the amounts
// collected, with the protocol's cut computed at cfg.ProtocolFeeBps.
//
// Rounding policy: the cut is floor(accrued * fee_bps / 10000) per token.
// Division truncates and the remainder stays with the position's liquidity
// provider. This is a defined policy, not an approximation: the protocol
// never rounds in its own favor.
func CollectPositionFees(p *types.LiquidityPosition, cfg *types.ProtocolConfig, now time.Time) (FeeCollection, error) {
	if p.Status != types.PositionActive {
		return FeeCollection{}, ErrPositionNotActive
	}
	if p.FeesEarnedA.IsZero() && p.FeesEarnedB.IsZero() {
		return FeeCollection{}, ErrNoFeesToCollect
	}

	feeBps := sdkmath.NewInt(int64(cfg.ProtocolFeeBps))
	denom := sdkmath.NewInt(bpsDenominator)

	collection := FeeCollection{
		CollectedA:   p.FeesEarnedA,
		CollectedB:   p.FeesEarnedB,
		ProtocolCutA: p.FeesEarnedA.Mul(feeBps).Quo(denom),
		ProtocolCutB: p.FeesEarnedB.Mul(feeBps).Quo(denom),
	}

	// Zeroing the counters is part of the same transition that reports the
	// collected amounts; the caller persists both atomically.
	p.FeesEarnedA = sdkmath.ZeroInt()
	p.FeesEarnedB = sdkmath.ZeroInt()
	p.UpdatedAt = now.UTC()

	return collection, nil
}
