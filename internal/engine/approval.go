package engine

import (
	"time"

	"github.com/x-liquidity/engine/internal/types"
)

// ApproveDecision records a human approval on a pending decision. The
// approver identity and timestamp are written exactly once; a second approval
// attempt fails rather than silently succeeding, so an audit trail can never
// show two sign-offs for one decision.
func ApproveDecision(d *types.RebalanceDecision, approver string, now time.Time) error {
	if !d.RequiresHumanApproval {
		return ErrApprovalNotRequired
	}
	if d.ExecutionStatus != types.ExecutionPending {
		return ErrInvalidExecutionStatus
	}
	if d.Approved() {
		return ErrAlreadyApproved
	}
	if approver == "" {
		return ErrInvalidApprover
	}

	ts := now.UTC()
	d.HumanApprover = approver
	d.ApprovalTimestamp = &ts
	return nil
}
