/*

This file contains the rebalance decision type and its status/risk enums.
A decision is immutable after creation except for approval and execution
fields, each of which is settable exactly once along its legal transition path.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// RiskLevel is the computed risk tier of a rebalance decision.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ExecutionStatus is the lifecycle state of a rebalance decision.
// Pending is the only non-terminal state.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "PENDING"
	ExecutionExecuted  ExecutionStatus = "EXECUTED"
	ExecutionFailed    ExecutionStatus = "FAILED"
	ExecutionRejected  ExecutionStatus = "REJECTED"
	ExecutionCancelled ExecutionStatus = "CANCELLED"
)

// Terminal reports whether the status permits no further transitions.
func (s ExecutionStatus) Terminal() bool {
	return s != ExecutionPending
}

// RebalanceDecision records an AI-proposed range change for a position,
// together with the model metadata that produced it and the approval state
// gating its execution.
type RebalanceDecision struct {
	ID         string `json:"id"`
	PositionID string `json:"position_id"`

	// Proposed new range
	NewTickLower  int32       `json:"new_tick_lower"`
	NewTickUpper  int32       `json:"new_tick_upper"`
	NewPriceLower sdkmath.Int `json:"new_price_lower"`
	NewPriceUpper sdkmath.Int `json:"new_price_upper"`

	// AI model information, kept for explainability
	AIModelVersion       string `json:"ai_model_version"`
	AIModelHash          string `json:"ai_model_hash"`         // hex sha256 of the model artifact
	PredictionConfidence uint16 `json:"prediction_confidence"` // bps, 0..10000

	// Environmental signals captured at decision time
	MarketSentimentScore int16  `json:"market_sentiment_score"` // -10000..10000
	VolatilityMetric     uint16 `json:"volatility_metric"`      // bps, 0..10000
	WhaleActivityScore   uint16 `json:"whale_activity_score"`

	DecisionReason string    `json:"decision_reason"`
	RiskAssessment RiskLevel `json:"risk_assessment"`

	// Execution details
	ExecutionStatus      ExecutionStatus `json:"execution_status"`
	ExecutionTxSignature string          `json:"execution_tx_signature,omitempty"` // set by the external executor
	ExecutionSlippageBps *uint16         `json:"execution_slippage_bps,omitempty"` // set by the external executor

	// Human oversight. RequiresHumanApproval is frozen at creation and never
	// changes afterwards.
	RequiresHumanApproval bool       `json:"requires_human_approval"`
	HumanApprover         string     `json:"human_approver,omitempty"`
	ApprovalTimestamp     *time.Time `json:"approval_timestamp,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
}

// Approved reports whether a human approver has been recorded.
func (d *RebalanceDecision) Approved() bool {
	return d.HumanApprover != ""
}
