/*

This file contains the risk classifier. It is a pure function and its
thresholds are load-bearing: historical audit records embed risk tiers
computed with exactly these cutoffs, so changing them breaks replayability.

*/

package engine

import "github.com/x-liquidity/engine/internal/types"

// Risk classification thresholds, all in basis points.
const (
	criticalConfidenceFloor = 5000
	criticalVolatilityCeil  = 8000

	highConfidenceFloor = 7000
	highVolatilityCeil  = 6000
	highSentimentFloor  = -5000

	mediumConfidenceFloor = 8500
	mediumVolatilityCeil  = 4000
)

// AssessRisk maps model-quality signals to a risk tier. Inputs are
// confidence in [0,10000], sentiment in [-10000,10000], volatility in
// [0,10000]. The rules are evaluated in order and the first match wins.
func AssessRisk(confidence uint16, sentiment int16, volatility uint16) types.RiskLevel {
	switch {
	case confidence < criticalConfidenceFloor || volatility > criticalVolatilityCeil:
		return types.RiskCritical
	case confidence < highConfidenceFloor || volatility > highVolatilityCeil || sentiment < highSentimentFloor:
		return types.RiskHigh
	case confidence < mediumConfidenceFloor || volatility > mediumVolatilityCeil:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// RequiresApproval reports whether a decision with the given risk tier needs
// a human sign-off regardless of position value.
func RequiresApproval(risk types.RiskLevel) bool {
	return risk == types.RiskHigh || risk == types.RiskCritical
}
