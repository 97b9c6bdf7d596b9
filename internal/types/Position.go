/*

This file contains the types for liquidity positions which hold all the state
needed for policy checks during rebalancing.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// PositionStatus is the lifecycle state of a liquidity position.
type PositionStatus string

const (
	PositionActive     PositionStatus = "ACTIVE"
	PositionPaused     PositionStatus = "PAUSED"
	PositionClosed     PositionStatus = "CLOSED"
	PositionLiquidated PositionStatus = "LIQUIDATED"
)

// Valid reports whether s is one of the known position statuses.
func (s PositionStatus) Valid() bool {
	switch s {
	case PositionActive, PositionPaused, PositionClosed, PositionLiquidated:
		return true
	}
	return false
}

// Terminal reports whether a position in this status can never become active again.
func (s PositionStatus) Terminal() bool {
	return s == PositionClosed || s == PositionLiquidated
}

// DexType identifies which DEX a position's pool lives on.
type DexType string

const (
	DexRaydium DexType = "RAYDIUM"
	DexOrca    DexType = "ORCA"
	DexMeteora DexType = "METEORA"
	DexUnknown DexType = "UNKNOWN"
)

// LiquidityPosition is a concentrated-liquidity position managed by the engine.
// The tick/price range may only be rewritten by an executed rebalance decision;
// fee counters may only be reset by fee collection.
type LiquidityPosition struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`

	// Token pair and pool reference
	TokenA      string  `json:"token_a"`
	TokenB      string  `json:"token_b"`
	Dex         DexType `json:"dex"`
	PoolAddress string  `json:"pool_address"`

	// Concentrated-liquidity range. Invariant: TickLower < TickUpper and
	// PriceLower < PriceUpper, checked at creation and at every execution.
	TickLower  int32       `json:"tick_lower"`
	TickUpper  int32       `json:"tick_upper"`
	PriceLower sdkmath.Int `json:"price_lower"`
	PriceUpper sdkmath.Int `json:"price_upper"`

	// Position metrics
	LiquidityAmount  sdkmath.Int `json:"liquidity_amount"`
	FeesEarnedA      sdkmath.Int `json:"fees_earned_a"`
	FeesEarnedB      sdkmath.Int `json:"fees_earned_b"`
	TotalValueLocked sdkmath.Int `json:"total_value_locked"`

	// Rebalancing history
	LastRebalanceSlot      uint64    `json:"last_rebalance_slot"`
	LastRebalanceTimestamp time.Time `json:"last_rebalance_timestamp"`
	RebalanceCount         uint32    `json:"rebalance_count"`

	// Status and cadence configuration
	Status               PositionStatus `json:"status"`
	AutoRebalanceEnabled bool           `json:"auto_rebalance_enabled"`
	MinRebalanceInterval int64          `json:"min_rebalance_interval"` // seconds

	// Per-position caps, bounded by protocol caps at creation time
	MaxPositionSize sdkmath.Int `json:"max_position_size"`
	MaxSingleTrade  sdkmath.Int `json:"max_single_trade"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RangeValid reports whether the stored range ordering invariant holds.
func (p *LiquidityPosition) RangeValid() bool {
	return p.TickLower < p.TickUpper && p.PriceLower.LT(p.PriceUpper)
}
