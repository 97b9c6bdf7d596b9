/*

This file contains the decision factory. It turns an AI-proposed range change
into a pending RebalanceDecision, computing the risk tier and freezing the
requires_human_approval flag. The flag is decided exactly once, here; nothing
downstream may recompute or change it.

*/

package engine

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/x-liquidity/engine/internal/types"
)

// DecisionParams carries a proposed range plus the AI metadata that produced
// it.
type DecisionParams struct {
	NewTickLower  int32
	NewTickUpper  int32
	NewPriceLower sdkmath.Int
	NewPriceUpper sdkmath.Int

	AIModelVersion       string
	AIModelHash          string
	PredictionConfidence uint16
	MarketSentimentScore int16
	VolatilityMetric     uint16
	WhaleActivityScore   uint16
	DecisionReason       string
}

// BuildDecision validates the proposal against the position's cadence rules
// and returns a pending decision. The position itself is not modified; its
// range only changes if the decision is later executed.
func BuildDecision(position *types.LiquidityPosition, cfg *types.ProtocolConfig, params DecisionParams, now time.Time) (*types.RebalanceDecision, error) {
	if position.Status != types.PositionActive {
		return nil, ErrPositionNotActive
	}

	// Cadence: elapsed time since the last rebalance must reach the
	// position's configured minimum interval. A position that has never
	// rebalanced passes trivially.
	if !position.LastRebalanceTimestamp.IsZero() {
		elapsed := now.Sub(position.LastRebalanceTimestamp)
		if elapsed < time.Duration(position.MinRebalanceInterval)*time.Second {
			return nil, ErrRebalanceTooFrequent
		}
	}

	if params.NewTickLower >= params.NewTickUpper {
		return nil, ErrInvalidPriceRange
	}
	if params.NewPriceLower.IsNil() || params.NewPriceUpper.IsNil() || !params.NewPriceLower.LT(params.NewPriceUpper) {
		return nil, ErrInvalidPriceRange
	}

	risk := AssessRisk(params.PredictionConfidence, params.MarketSentimentScore, params.VolatilityMetric)

	// The approval flag is frozen at creation: high/critical risk always
	// needs a human, and so does any position at or above the value
	// threshold regardless of how the model scored.
	requiresApproval := RequiresApproval(risk) ||
		position.TotalValueLocked.GTE(cfg.RequireHumanApprovalThreshold)

	modelVersion := params.AIModelVersion
	if modelVersion == "" {
		modelVersion = cfg.DefaultAIModelVersion
	}

	return &types.RebalanceDecision{
		ID:         uuid.New().String(),
		PositionID: position.ID,

		NewTickLower:  params.NewTickLower,
		NewTickUpper:  params.NewTickUpper,
		NewPriceLower: params.NewPriceLower,
		NewPriceUpper: params.NewPriceUpper,

		AIModelVersion:       modelVersion,
		AIModelHash:          params.AIModelHash,
		PredictionConfidence: params.PredictionConfidence,
		MarketSentimentScore: params.MarketSentimentScore,
		VolatilityMetric:     params.VolatilityMetric,
		WhaleActivityScore:   params.WhaleActivityScore,
		DecisionReason:       params.DecisionReason,

		RiskAssessment:        risk,
		ExecutionStatus:       types.ExecutionPending,
		RequiresHumanApproval: requiresApproval,

		CreatedAt: now.UTC(),
	}, nil
}
