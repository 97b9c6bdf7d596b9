package engine

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/x-liquidity/engine/internal/types"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fixedClock drives time explicitly in tests.
type fixedClock struct {
	now  time.Time
	slot uint64
}

func (c *fixedClock) Now() time.Time { return c.now }
func (c *fixedClock) Slot() uint64   { return c.slot }

func (c *fixedClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
	c.slot++
}

func testProtocolConfig() *types.ProtocolConfig {
	return &types.ProtocolConfig{
		Authority:    "authority-1",
		FeeRecipient: "fee-recipient-1",

		PerformanceFeeBps: 1000,
		ProtocolFeeBps:    500,

		X402Facilitator: "facilitator-1",
		X402MinPayment:  sdkmath.NewInt(1_000_000),
		X402APIBaseURL:  "https://api.x-liquidity-engine.com",

		MinRebalanceInterval:  3600,
		MaxRebalanceFrequency: 24,

		DefaultSlippageToleranceBps: 50,

		MaxPositionSize:    sdkmath.NewInt(1_000_000_000_000),
		MaxSingleTradeSize: sdkmath.NewInt(100_000_000_000),

		RequireHumanApprovalThreshold: sdkmath.NewInt(500_000_000_000),

		DefaultAIModelVersion: "v1.0.0",

		AuditLogEnabled: true,
		ComplianceMode:  types.ComplianceEnhanced,

		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}

func testPositionParams() CreatePositionParams {
	return CreatePositionParams{
		Owner:           "owner-1",
		TokenA:          "SOL",
		TokenB:          "USDC",
		Dex:             types.DexRaydium,
		PoolAddress:     "pool-1",
		TickLower:       -100,
		TickUpper:       100,
		PriceLower:      sdkmath.NewInt(95_000_000),
		PriceUpper:      sdkmath.NewInt(105_000_000),
		MaxPositionSize: sdkmath.NewInt(1_000_000_000),
		MaxSingleTrade:  sdkmath.NewInt(100_000_000),
	}
}

func testPosition() *types.LiquidityPosition {
	p, err := BuildPosition(testPositionParams(), testProtocolConfig(), baseTime)
	if err != nil {
		panic(err)
	}
	return p
}

func lowRiskParams() DecisionParams {
	return DecisionParams{
		NewTickLower:         -120,
		NewTickUpper:         80,
		NewPriceLower:        sdkmath.NewInt(93_000_000),
		NewPriceUpper:        sdkmath.NewInt(103_000_000),
		AIModelVersion:       "v1.2.0",
		PredictionConfidence: 9500,
		MarketSentimentScore: 1000,
		VolatilityMetric:     2000,
		WhaleActivityScore:   500,
		DecisionReason:       "price drifted below range midpoint",
	}
}

func highRiskParams() DecisionParams {
	p := lowRiskParams()
	p.PredictionConfidence = 6000
	return p
}
