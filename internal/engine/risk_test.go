package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-liquidity/engine/internal/types"
)

func TestAssessRisk(t *testing.T) {
	tests := []struct {
		name       string
		confidence uint16
		sentiment  int16
		volatility uint16
		want       types.RiskLevel
	}{
		{"low confidence is critical", 4999, 0, 1000, types.RiskCritical},
		{"extreme volatility is critical", 9999, 0, 8001, types.RiskCritical},
		{"critical dominates even with calm volatility", 4000, 0, 2000, types.RiskCritical},
		{"moderate confidence is high", 6999, 0, 1000, types.RiskHigh},
		{"elevated volatility is high", 9999, 0, 6001, types.RiskHigh},
		{"strongly negative sentiment is high", 9999, -5001, 1000, types.RiskHigh},
		{"decent confidence is medium", 8499, 0, 1000, types.RiskMedium},
		{"mid volatility is medium", 9999, 0, 4001, types.RiskMedium},
		{"confident and calm is low", 8500, 0, 4000, types.RiskLow},
		{"sentiment at high boundary stays calm", 9000, -5000, 1000, types.RiskLow},
		{"best case", 10000, 10000, 0, types.RiskLow},
		{"worst case", 0, -10000, 10000, types.RiskCritical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, AssessRisk(tc.confidence, tc.sentiment, tc.volatility))
		})
	}
}

func TestAssessRiskDeterministic(t *testing.T) {
	first := AssessRisk(7200, -3000, 5500)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, AssessRisk(7200, -3000, 5500))
	}
}

func TestRequiresApproval(t *testing.T) {
	require.False(t, RequiresApproval(types.RiskLow))
	require.False(t, RequiresApproval(types.RiskMedium))
	require.True(t, RequiresApproval(types.RiskHigh))
	require.True(t, RequiresApproval(types.RiskCritical))
}
