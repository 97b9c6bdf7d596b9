/*

This file contains the execution gate: the only code path allowed to rewrite
a position's tick/price range from a decision. Preconditions are re-validated
against the position's current state at execution time, not the state the
decision was created against, so a decision staled by a competing rebalance
is rejected instead of applied.

*/

package engine

import (
	"math"

	"github.com/x-liquidity/engine/internal/types"
)

// ExecuteDecision applies a pending decision's proposed range to the position
// and marks the decision executed. Both mutations belong to one state
// transition; the caller must persist position and decision in a single
// commit. Preconditions are checked in order and each failure is distinct:
//
//  1. decision must be Pending
//  2. if approval is required, an approver must be recorded, and a
//     caller-supplied approver identity must match the recorded one
//  3. the caller's slippage tolerance must not exceed twice the protocol
//     default (boundary inclusive)
func ExecuteDecision(d *types.RebalanceDecision, p *types.LiquidityPosition, cfg *types.ProtocolConfig, callerSlippageBps uint16, approver string, clock Clock) error {
	if d.ExecutionStatus != types.ExecutionPending {
		return ErrInvalidExecutionStatus
	}

	if d.RequiresHumanApproval {
		if !d.Approved() {
			return ErrHumanApprovalRequired
		}
		if approver != "" && approver != d.HumanApprover {
			return ErrInvalidApprover
		}
	}

	if uint32(callerSlippageBps) > cfg.MaxCallerSlippageBps() {
		return ErrSlippageTooHigh
	}

	// Re-validate against current position state: the decision must still
	// target an active position with a coherent proposed range, and the
	// position must not have been rebalanced by a competing decision since
	// this one was created.
	if p.Status != types.PositionActive {
		return ErrPositionNotActive
	}
	if !p.LastRebalanceTimestamp.IsZero() && !d.CreatedAt.After(p.LastRebalanceTimestamp) {
		return ErrStaleDecision
	}
	if d.NewTickLower >= d.NewTickUpper || !d.NewPriceLower.LT(d.NewPriceUpper) {
		return ErrInvalidPriceRange
	}

	if p.RebalanceCount == math.MaxUint32 {
		return ErrRebalanceCountOverflow
	}

	now := clock.Now().UTC()

	p.TickLower = d.NewTickLower
	p.TickUpper = d.NewTickUpper
	p.PriceLower = d.NewPriceLower
	p.PriceUpper = d.NewPriceUpper
	p.LastRebalanceSlot = clock.Slot()
	p.LastRebalanceTimestamp = now
	p.RebalanceCount++
	p.UpdatedAt = now

	d.ExecutionStatus = types.ExecutionExecuted
	d.ExecutedAt = &now
	slippage := callerSlippageBps
	d.ExecutionSlippageBps = &slippage

	return nil
}

// FinalizeDecision moves a pending decision into one of its terminal
// non-executed states: Rejected or Cancelled by an authorized party, or
// Failed when the external executor reports that applying the range on-chain
// did not go through.
func FinalizeDecision(d *types.RebalanceDecision, status types.ExecutionStatus) error {
	if d.ExecutionStatus != types.ExecutionPending {
		return ErrInvalidExecutionStatus
	}
	switch status {
	case types.ExecutionRejected, types.ExecutionCancelled, types.ExecutionFailed:
		d.ExecutionStatus = status
		return nil
	default:
		return ErrInvalidExecutionStatus
	}
}
