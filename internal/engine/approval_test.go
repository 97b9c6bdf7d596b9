package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/x-liquidity/engine/internal/types"
)

func pendingHighRiskDecision(t *testing.T) *types.RebalanceDecision {
	t.Helper()
	d, err := BuildDecision(testPosition(), testProtocolConfig(), highRiskParams(), baseTime)
	require.NoError(t, err)
	require.True(t, d.RequiresHumanApproval)
	return d
}

func TestApproveDecision(t *testing.T) {
	d := pendingHighRiskDecision(t)

	approvedAt := baseTime.Add(5 * time.Minute)
	require.NoError(t, ApproveDecision(d, "reviewer-1", approvedAt))
	require.True(t, d.Approved())
	require.Equal(t, "reviewer-1", d.HumanApprover)
	require.Equal(t, approvedAt, *d.ApprovalTimestamp)
	// Approval does not move the decision out of pending.
	require.Equal(t, types.ExecutionPending, d.ExecutionStatus)
}

func TestApproveDecisionTwiceFails(t *testing.T) {
	d := pendingHighRiskDecision(t)
	require.NoError(t, ApproveDecision(d, "reviewer-1", baseTime))

	err := ApproveDecision(d, "reviewer-2", baseTime.Add(time.Minute))
	require.ErrorIs(t, err, ErrAlreadyApproved)
	// The original approval record is untouched.
	require.Equal(t, "reviewer-1", d.HumanApprover)
	require.Equal(t, baseTime, *d.ApprovalTimestamp)

	// Even the same reviewer cannot re-approve.
	require.ErrorIs(t, ApproveDecision(d, "reviewer-1", baseTime.Add(time.Minute)), ErrAlreadyApproved)
}

func TestApproveDecisionNotRequired(t *testing.T) {
	d, err := BuildDecision(testPosition(), testProtocolConfig(), lowRiskParams(), baseTime)
	require.NoError(t, err)
	require.False(t, d.RequiresHumanApproval)

	require.ErrorIs(t, ApproveDecision(d, "reviewer-1", baseTime), ErrApprovalNotRequired)
}

func TestApproveDecisionNotPending(t *testing.T) {
	for _, status := range []types.ExecutionStatus{
		types.ExecutionExecuted, types.ExecutionFailed,
		types.ExecutionRejected, types.ExecutionCancelled,
	} {
		d := pendingHighRiskDecision(t)
		d.ExecutionStatus = status
		require.ErrorIs(t, ApproveDecision(d, "reviewer-1", baseTime), ErrInvalidExecutionStatus, "status %s", status)
	}
}

func TestApproveDecisionEmptyApprover(t *testing.T) {
	d := pendingHighRiskDecision(t)
	require.ErrorIs(t, ApproveDecision(d, "", baseTime), ErrInvalidApprover)
	require.False(t, d.Approved())
}
