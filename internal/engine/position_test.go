package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-liquidity/engine/internal/types"
)

func TestBuildPosition(t *testing.T) {
	cfg := testProtocolConfig()

	p, err := BuildPosition(testPositionParams(), cfg, baseTime)
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, types.PositionActive, p.Status)
	require.True(t, p.RangeValid())
	require.True(t, p.FeesEarnedA.IsZero())
	require.True(t, p.FeesEarnedB.IsZero())
	require.True(t, p.AutoRebalanceEnabled)
	require.Equal(t, cfg.MinRebalanceInterval, p.MinRebalanceInterval)
	require.True(t, p.LastRebalanceTimestamp.IsZero())
}

func TestBuildPositionDefaultsDex(t *testing.T) {
	params := testPositionParams()
	params.Dex = ""

	p, err := BuildPosition(params, testProtocolConfig(), baseTime)
	require.NoError(t, err)
	require.Equal(t, types.DexRaydium, p.Dex)
}

func TestBuildPositionInvalidRange(t *testing.T) {
	ticks := testPositionParams()
	ticks.TickLower = 100
	ticks.TickUpper = -100
	_, err := BuildPosition(ticks, testProtocolConfig(), baseTime)
	require.ErrorIs(t, err, ErrInvalidPriceRange)

	prices := testPositionParams()
	prices.PriceLower = prices.PriceUpper
	_, err = BuildPosition(prices, testProtocolConfig(), baseTime)
	require.ErrorIs(t, err, ErrInvalidPriceRange)
}

func TestBuildPositionCaps(t *testing.T) {
	cfg := testProtocolConfig()

	size := testPositionParams()
	size.MaxPositionSize = cfg.MaxPositionSize.AddRaw(1)
	_, err := BuildPosition(size, cfg, baseTime)
	require.ErrorIs(t, err, ErrExceedsMaxPositionSize)

	trade := testPositionParams()
	trade.MaxSingleTrade = cfg.MaxSingleTradeSize.AddRaw(1)
	_, err = BuildPosition(trade, cfg, baseTime)
	require.ErrorIs(t, err, ErrExceedsMaxTradeSize)

	// At the cap is allowed.
	at := testPositionParams()
	at.MaxPositionSize = cfg.MaxPositionSize
	at.MaxSingleTrade = cfg.MaxSingleTradeSize
	_, err = BuildPosition(at, cfg, baseTime)
	require.NoError(t, err)
}

func TestTransitionPositionStatus(t *testing.T) {
	p := testPosition()

	require.NoError(t, TransitionPositionStatus(p, types.PositionPaused, baseTime))
	require.Equal(t, types.PositionPaused, p.Status)

	require.NoError(t, TransitionPositionStatus(p, types.PositionActive, baseTime))
	require.NoError(t, TransitionPositionStatus(p, types.PositionClosed, baseTime))

	// Closed is terminal.
	err := TransitionPositionStatus(p, types.PositionActive, baseTime)
	require.ErrorIs(t, err, ErrInvalidStatusChange)
	require.Equal(t, types.PositionClosed, p.Status)
}

func TestTransitionPositionStatusRejectsNoOpAndUnknown(t *testing.T) {
	p := testPosition()

	require.ErrorIs(t, TransitionPositionStatus(p, types.PositionActive, baseTime), ErrInvalidStatusChange)
	require.ErrorIs(t, TransitionPositionStatus(p, types.PositionStatus("FROZEN"), baseTime), ErrInvalidStatusChange)

	liquidated := testPosition()
	require.NoError(t, TransitionPositionStatus(liquidated, types.PositionLiquidated, baseTime))
	require.ErrorIs(t, TransitionPositionStatus(liquidated, types.PositionActive, baseTime), ErrInvalidStatusChange)
}
