// ./internal/state/store.go
package state

import (
	sdkmath "cosmossdk.io/math"

	"github.com/x-liquidity/engine/internal/types"
)

// Store adapts the package-level persistence functions to the policy
// engine's store interface. All commit semantics live in the underlying
// functions; this type is plumbing only.
type Store struct{}

func (Store) LoadProtocolConfig() (*types.ProtocolConfig, error) {
	return LoadProtocolConfig()
}

func (Store) GetPosition(id string) (*types.LiquidityPosition, error) {
	return GetPosition(id)
}

func (Store) InsertPosition(p *types.LiquidityPosition) error {
	return InsertPosition(p)
}

func (Store) SavePositionStatus(p *types.LiquidityPosition) error {
	return SavePositionStatus(p)
}

func (Store) SaveFeeCollection(p *types.LiquidityPosition, collectedA, collectedB sdkmath.Int) error {
	return SaveFeeCollection(p, collectedA, collectedB)
}

func (Store) SaveAccrual(p *types.LiquidityPosition) error {
	return SaveAccrual(p)
}

func (Store) GetDecision(id string) (*types.RebalanceDecision, error) {
	return GetDecision(id)
}

func (Store) InsertDecision(d *types.RebalanceDecision) error {
	return InsertDecision(d)
}

func (Store) SaveApproval(d *types.RebalanceDecision) error {
	return SaveApproval(d)
}

func (Store) SaveDecisionStatus(d *types.RebalanceDecision) error {
	return SaveDecisionStatus(d)
}

func (Store) SaveExecution(p *types.LiquidityPosition, d *types.RebalanceDecision) error {
	return SaveExecution(p, d)
}

func (Store) InsertPayment(pay *types.X402Payment) error {
	return InsertPayment(pay)
}

func (Store) GetPayment(id string) (*types.X402Payment, error) {
	return GetPayment(id)
}
