package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/x-liquidity/engine/internal/types"
)

func executionFixture(t *testing.T, params DecisionParams) (*types.RebalanceDecision, *types.LiquidityPosition, *fixedClock) {
	t.Helper()
	position := testPosition()
	d, err := BuildDecision(position, testProtocolConfig(), params, baseTime)
	require.NoError(t, err)
	return d, position, &fixedClock{now: baseTime.Add(10 * time.Minute), slot: 42}
}

func TestExecuteDecision(t *testing.T) {
	cfg := testProtocolConfig()
	d, position, clock := executionFixture(t, lowRiskParams())

	require.NoError(t, ExecuteDecision(d, position, cfg, 50, "", clock))

	// The proposed range is copied onto the position.
	require.Equal(t, d.NewTickLower, position.TickLower)
	require.Equal(t, d.NewTickUpper, position.TickUpper)
	require.Equal(t, d.NewPriceLower, position.PriceLower)
	require.Equal(t, d.NewPriceUpper, position.PriceUpper)

	require.Equal(t, uint32(1), position.RebalanceCount)
	require.Equal(t, uint64(42), position.LastRebalanceSlot)
	require.Equal(t, clock.now, position.LastRebalanceTimestamp)

	require.Equal(t, types.ExecutionExecuted, d.ExecutionStatus)
	require.Equal(t, clock.now, *d.ExecutedAt)
	require.Equal(t, uint16(50), *d.ExecutionSlippageBps)
}

func TestExecuteDecisionNotPending(t *testing.T) {
	cfg := testProtocolConfig()
	d, position, clock := executionFixture(t, lowRiskParams())
	require.NoError(t, ExecuteDecision(d, position, cfg, 50, "", clock))

	// Executing again must fail: the decision is terminal.
	err := ExecuteDecision(d, position, cfg, 50, "", clock)
	require.ErrorIs(t, err, ErrInvalidExecutionStatus)
	require.Equal(t, uint32(1), position.RebalanceCount)
}

func TestExecuteDecisionWithoutApproval(t *testing.T) {
	cfg := testProtocolConfig()
	d, position, clock := executionFixture(t, highRiskParams())

	require.ErrorIs(t, ExecuteDecision(d, position, cfg, 50, "", clock), ErrHumanApprovalRequired)
	// Nothing moved.
	require.Equal(t, types.ExecutionPending, d.ExecutionStatus)
	require.Equal(t, uint32(0), position.RebalanceCount)
	require.Equal(t, int32(-100), position.TickLower)
}

func TestExecuteDecisionApproverMismatch(t *testing.T) {
	cfg := testProtocolConfig()
	d, position, clock := executionFixture(t, highRiskParams())
	require.NoError(t, ApproveDecision(d, "reviewer-1", baseTime))

	require.ErrorIs(t, ExecuteDecision(d, position, cfg, 50, "reviewer-2", clock), ErrInvalidApprover)

	// Matching approver, or no approver identity at all, both pass the gate.
	require.NoError(t, ExecuteDecision(d, position, cfg, 50, "reviewer-1", clock))
}

func TestExecuteDecisionSlippageBound(t *testing.T) {
	cfg := testProtocolConfig()
	limit := uint16(cfg.MaxCallerSlippageBps()) // 2x the default tolerance

	d, position, clock := executionFixture(t, lowRiskParams())
	require.NoError(t, ExecuteDecision(d, position, cfg, limit, "", clock))
	require.Equal(t, limit, *d.ExecutionSlippageBps)

	d2, position2, _ := executionFixture(t, lowRiskParams())
	require.ErrorIs(t, ExecuteDecision(d2, position2, cfg, limit+1, "", clock), ErrSlippageTooHigh)
}

func TestExecuteDecisionInactivePosition(t *testing.T) {
	cfg := testProtocolConfig()
	d, position, clock := executionFixture(t, lowRiskParams())

	// Position paused between decision creation and execution.
	position.Status = types.PositionPaused
	require.ErrorIs(t, ExecuteDecision(d, position, cfg, 50, "", clock), ErrPositionNotActive)
}

func TestExecuteDecisionStaleAfterCompetingRebalance(t *testing.T) {
	cfg := testProtocolConfig()
	d, position, clock := executionFixture(t, lowRiskParams())

	// Another decision rebalanced the position after this one was created.
	position.LastRebalanceTimestamp = d.CreatedAt.Add(time.Minute)

	require.ErrorIs(t, ExecuteDecision(d, position, cfg, 50, "", clock), ErrStaleDecision)
	require.Equal(t, types.ExecutionPending, d.ExecutionStatus)
}

func TestExecuteDecisionCounterOverflow(t *testing.T) {
	cfg := testProtocolConfig()
	d, position, clock := executionFixture(t, lowRiskParams())
	position.RebalanceCount = math.MaxUint32

	require.ErrorIs(t, ExecuteDecision(d, position, cfg, 50, "", clock), ErrRebalanceCountOverflow)
	require.Equal(t, types.ExecutionPending, d.ExecutionStatus)
	require.Equal(t, uint32(math.MaxUint32), position.RebalanceCount)
}

func TestFinalizeDecision(t *testing.T) {
	for _, status := range []types.ExecutionStatus{
		types.ExecutionRejected, types.ExecutionCancelled, types.ExecutionFailed,
	} {
		d, _, _ := executionFixture(t, lowRiskParams())
		require.NoError(t, FinalizeDecision(d, status))
		require.Equal(t, status, d.ExecutionStatus)

		// Terminal states admit no further transitions.
		require.ErrorIs(t, FinalizeDecision(d, types.ExecutionCancelled), ErrInvalidExecutionStatus)
	}
}

func TestFinalizeDecisionInvalidTarget(t *testing.T) {
	d, _, _ := executionFixture(t, lowRiskParams())
	require.ErrorIs(t, FinalizeDecision(d, types.ExecutionExecuted), ErrInvalidExecutionStatus)
	require.ErrorIs(t, FinalizeDecision(d, types.ExecutionPending), ErrInvalidExecutionStatus)
	require.Equal(t, types.ExecutionPending, d.ExecutionStatus)
}
