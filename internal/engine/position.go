package engine

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/x-liquidity/engine/internal/types"
)

// CreatePositionParams carries everything a caller supplies when opening a
// liquidity position. The owner identity is taken from the authenticated
// caller, not from the body.
type CreatePositionParams struct {
	Owner           string
	TokenA          string
	TokenB          string
	Dex             types.DexType
	PoolAddress     string
	TickLower       int32
	TickUpper       int32
	PriceLower      sdkmath.Int
	PriceUpper      sdkmath.Int
	MaxPositionSize sdkmath.Int
	MaxSingleTrade  sdkmath.Int
}

// BuildPosition validates the proposed position against the protocol limits
// and returns a fresh Active position. No state is touched; the caller
// persists the result.
func BuildPosition(params CreatePositionParams, cfg *types.ProtocolConfig, now time.Time) (*types.LiquidityPosition, error) {
	if params.TickLower >= params.TickUpper {
		return nil, ErrInvalidPriceRange
	}
	if params.PriceLower.IsNil() || params.PriceUpper.IsNil() || !params.PriceLower.LT(params.PriceUpper) {
		return nil, ErrInvalidPriceRange
	}
	if params.MaxPositionSize.GT(cfg.MaxPositionSize) {
		return nil, ErrExceedsMaxPositionSize
	}
	if params.MaxSingleTrade.GT(cfg.MaxSingleTradeSize) {
		return nil, ErrExceedsMaxTradeSize
	}

	dex := params.Dex
	if dex == "" {
		dex = types.DexRaydium
	}

	return &types.LiquidityPosition{
		ID:          uuid.New().String(),
		Owner:       params.Owner,
		TokenA:      params.TokenA,
		TokenB:      params.TokenB,
		Dex:         dex,
		PoolAddress: params.PoolAddress,

		TickLower:  params.TickLower,
		TickUpper:  params.TickUpper,
		PriceLower: params.PriceLower,
		PriceUpper: params.PriceUpper,

		LiquidityAmount:  sdkmath.ZeroInt(),
		FeesEarnedA:      sdkmath.ZeroInt(),
		FeesEarnedB:      sdkmath.ZeroInt(),
		TotalValueLocked: sdkmath.ZeroInt(),

		Status:               types.PositionActive,
		AutoRebalanceEnabled: true,
		MinRebalanceInterval: cfg.MinRebalanceInterval,

		MaxPositionSize: params.MaxPositionSize,
		MaxSingleTrade:  params.MaxSingleTrade,

		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// TransitionPositionStatus applies a lifecycle change to a position. Terminal
// statuses (Closed, Liquidated) admit no further changes.
func TransitionPositionStatus(p *types.LiquidityPosition, next types.PositionStatus, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidStatusChange
	}
	if p.Status.Terminal() || p.Status == next {
		return ErrInvalidStatusChange
	}
	p.Status = next
	p.UpdatedAt = now.UTC()
	return nil
}
