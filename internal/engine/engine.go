/*

This file contains the Engine service: the orchestrator that loads entities
from the store, applies a single pure transition, commits the result in one
all-or-nothing write, and then emits the audit event and metrics for it.

The business commit is the source of truth. Audit recording happens after the
commit and is best-effort: a sink failure is logged and counted but never
fails the operation.

*/

package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/x-liquidity/engine/internal/audit"
	"github.com/x-liquidity/engine/internal/logger"
	"github.com/x-liquidity/engine/internal/metrics"
	"github.com/x-liquidity/engine/internal/types"
	"github.com/x-liquidity/engine/internal/utils"
)

// amountPrecision is the decimal precision of raw token amounts, used when
// exporting them as float gauges. All value-denominated amounts in the
// protocol are 6-decimal units.
const amountPrecision = 6

// Store is the durable keyed store the engine commits through. Every method
// is a single all-or-nothing write; SaveExecution in particular must persist
// the position and the decision in the same transaction.
type Store interface {
	LoadProtocolConfig() (*types.ProtocolConfig, error)

	GetPosition(id string) (*types.LiquidityPosition, error)
	InsertPosition(p *types.LiquidityPosition) error
	SavePositionStatus(p *types.LiquidityPosition) error
	SaveFeeCollection(p *types.LiquidityPosition, collectedA, collectedB sdkmath.Int) error
	SaveAccrual(p *types.LiquidityPosition) error

	GetDecision(id string) (*types.RebalanceDecision, error)
	InsertDecision(d *types.RebalanceDecision) error
	SaveApproval(d *types.RebalanceDecision) error
	SaveDecisionStatus(d *types.RebalanceDecision) error
	SaveExecution(p *types.LiquidityPosition, d *types.RebalanceDecision) error

	InsertPayment(pay *types.X402Payment) error
	GetPayment(id string) (*types.X402Payment, error)
}

// Engine wires the policy transitions to storage, audit, and time.
type Engine struct {
	logger   zerolog.Logger
	store    Store
	recorder audit.Recorder
	clock    Clock
}

// Config holds the dependencies for creating a new Engine instance.
type Config struct {
	Store    Store
	Recorder audit.Recorder
	Clock    Clock
}

// New creates an Engine with dependency injection.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Recorder == nil {
		return nil, fmt.Errorf("audit recorder cannot be nil")
	}
	if cfg.Clock == nil {
		cfg.Clock = NewSystemClock()
	}
	return &Engine{
		logger:   logger.GetForComponent("policy_engine"),
		store:    cfg.Store,
		recorder: cfg.Recorder,
		clock:    cfg.Clock,
	}, nil
}

// CreatePosition opens a new liquidity position for the calling owner.
func (e *Engine) CreatePosition(params CreatePositionParams) (*types.LiquidityPosition, error) {
	cfg, err := e.store.LoadProtocolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}

	position, err := BuildPosition(params, cfg, e.clock.Now())
	if err != nil {
		e.reject(cfg, "", params.Owner, err)
		return nil, err
	}
	if err := e.store.InsertPosition(position); err != nil {
		return nil, fmt.Errorf("failed to persist position: %w", err)
	}

	metrics.PositionsCreated.Inc()
	e.emit(cfg, types.AuditPositionCreated, position.ID, params.Owner, map[string]any{
		"pool_address": position.PoolAddress,
		"tick_lower":   position.TickLower,
		"tick_upper":   position.TickUpper,
	})

	e.logger.Info().
		Str("positionId", position.ID).
		Str("owner", position.Owner).
		Msg("Liquidity position created")
	return position, nil
}

// SetPositionStatus applies a lifecycle change (pause, resume, close,
// liquidate) on behalf of the position owner or the protocol authority.
func (e *Engine) SetPositionStatus(positionID, actor string, next types.PositionStatus) (*types.LiquidityPosition, error) {
	cfg, err := e.store.LoadProtocolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}
	position, err := e.store.GetPosition(positionID)
	if err != nil {
		return nil, err
	}
	if actor != position.Owner && actor != cfg.Authority {
		e.reject(cfg, position.ID, actor, ErrUnauthorized)
		return nil, ErrUnauthorized
	}

	prev := position.Status
	if err := TransitionPositionStatus(position, next, e.clock.Now()); err != nil {
		e.reject(cfg, position.ID, actor, err)
		return nil, err
	}
	if err := e.store.SavePositionStatus(position); err != nil {
		return nil, fmt.Errorf("failed to persist position status: %w", err)
	}

	eventType := types.AuditPositionStatusChanged
	if next == types.PositionClosed {
		eventType = types.AuditPositionClosed
	}
	e.emit(cfg, eventType, position.ID, actor, map[string]any{
		"from": prev,
		"to":   next,
	})

	e.logger.Info().
		Str("positionId", position.ID).
		Str("from", string(prev)).
		Str("to", string(next)).
		Msg("Position status changed")
	return position, nil
}

// CreateDecision records an AI-proposed rebalance for a position as a
// pending decision.
func (e *Engine) CreateDecision(positionID, proposer string, params DecisionParams) (*types.RebalanceDecision, error) {
	cfg, err := e.store.LoadProtocolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}
	position, err := e.store.GetPosition(positionID)
	if err != nil {
		return nil, err
	}

	decision, err := BuildDecision(position, cfg, params, e.clock.Now())
	if err != nil {
		e.reject(cfg, position.ID, proposer, err)
		return nil, err
	}
	if err := e.store.InsertDecision(decision); err != nil {
		return nil, fmt.Errorf("failed to persist decision: %w", err)
	}

	metrics.DecisionsCreated.WithLabelValues(string(decision.RiskAssessment)).Inc()
	e.emit(cfg, types.AuditDecisionCreated, position.ID, proposer, map[string]any{
		"decision_id":             decision.ID,
		"risk":                    decision.RiskAssessment,
		"requires_human_approval": decision.RequiresHumanApproval,
		"ai_model_version":        decision.AIModelVersion,
	})

	e.logger.Info().
		Str("decisionId", decision.ID).
		Str("positionId", position.ID).
		Str("risk", string(decision.RiskAssessment)).
		Bool("requiresApproval", decision.RequiresHumanApproval).
		Msg("Rebalance decision created")
	return decision, nil
}

// Approve records a human approval on a pending decision.
func (e *Engine) Approve(decisionID, approver string) (*types.RebalanceDecision, error) {
	cfg, err := e.store.LoadProtocolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}
	decision, err := e.store.GetDecision(decisionID)
	if err != nil {
		return nil, err
	}

	if err := ApproveDecision(decision, approver, e.clock.Now()); err != nil {
		e.reject(cfg, decision.PositionID, approver, err)
		return nil, err
	}
	if err := e.store.SaveApproval(decision); err != nil {
		return nil, fmt.Errorf("failed to persist approval: %w", err)
	}

	metrics.ApprovalsGranted.Inc()
	e.emit(cfg, types.AuditHumanApprovalGranted, decision.PositionID, approver, map[string]any{
		"decision_id": decision.ID,
	})

	e.logger.Info().
		Str("decisionId", decision.ID).
		Str("approver", approver).
		Msg("Rebalance decision approved")
	return decision, nil
}

// Execute applies a pending decision to its position. The position update
// and the decision status change commit together or not at all.
func (e *Engine) Execute(decisionID string, callerSlippageBps uint16, approver string) (*types.RebalanceDecision, error) {
	cfg, err := e.store.LoadProtocolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}
	decision, err := e.store.GetDecision(decisionID)
	if err != nil {
		return nil, err
	}
	position, err := e.store.GetPosition(decision.PositionID)
	if err != nil {
		return nil, err
	}

	oldTickLower, oldTickUpper := position.TickLower, position.TickUpper
	oldPriceLower, oldPriceUpper := position.PriceLower, position.PriceUpper

	if err := ExecuteDecision(decision, position, cfg, callerSlippageBps, approver, e.clock); err != nil {
		e.reject(cfg, position.ID, approver, err)
		return nil, err
	}
	if err := e.store.SaveExecution(position, decision); err != nil {
		return nil, fmt.Errorf("failed to persist execution: %w", err)
	}

	metrics.DecisionsExecuted.Inc()
	e.emit(cfg, types.AuditRebalanced, position.ID, position.Owner, map[string]any{
		"decision_id":     decision.ID,
		"old_tick_lower":  oldTickLower,
		"old_tick_upper":  oldTickUpper,
		"old_price_lower": oldPriceLower,
		"old_price_upper": oldPriceUpper,
		"new_tick_lower":  position.TickLower,
		"new_tick_upper":  position.TickUpper,
		"new_price_lower": position.PriceLower,
		"new_price_upper": position.PriceUpper,
	})

	e.logger.Info().
		Str("decisionId", decision.ID).
		Str("positionId", position.ID).
		Uint32("rebalanceCount", position.RebalanceCount).
		Msg("Rebalance executed")
	return decision, nil
}

// Finalize moves a pending decision to Rejected or Cancelled on behalf of
// the position owner or the protocol authority, or to Failed when the
// protocol authority relays an executor failure.
func (e *Engine) Finalize(decisionID, actor string, status types.ExecutionStatus, reason string) (*types.RebalanceDecision, error) {
	cfg, err := e.store.LoadProtocolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}
	decision, err := e.store.GetDecision(decisionID)
	if err != nil {
		return nil, err
	}
	position, err := e.store.GetPosition(decision.PositionID)
	if err != nil {
		return nil, err
	}

	authorized := actor == cfg.Authority
	if status != types.ExecutionFailed {
		// Owners may reject or cancel their own decisions; only the
		// authority may report an executor failure.
		authorized = authorized || actor == position.Owner
	}
	if !authorized {
		e.reject(cfg, decision.PositionID, actor, ErrUnauthorized)
		return nil, ErrUnauthorized
	}

	if err := FinalizeDecision(decision, status); err != nil {
		e.reject(cfg, decision.PositionID, actor, err)
		return nil, err
	}
	if err := e.store.SaveDecisionStatus(decision); err != nil {
		return nil, fmt.Errorf("failed to persist decision status: %w", err)
	}

	metrics.DecisionsFinalized.WithLabelValues(string(status)).Inc()
	e.emit(cfg, finalizeEventType(status), decision.PositionID, actor, map[string]any{
		"decision_id": decision.ID,
		"status":      status,
		"reason":      reason,
	})

	e.logger.Info().
		Str("decisionId", decision.ID).
		Str("status", string(status)).
		Str("actor", actor).
		Msg("Rebalance decision finalized")
	return decision, nil
}

// AccrueFees ingests fee accrual and valuation data reported by the external
// indexer. Only the protocol authority may report accruals; this is data
// ingestion, not a policy transition, so no audit event is emitted.
func (e *Engine) AccrueFees(positionID, actor string, feesA, feesB, tvl sdkmath.Int) (*types.LiquidityPosition, error) {
	cfg, err := e.store.LoadProtocolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}
	if actor != cfg.Authority {
		e.reject(cfg, positionID, actor, ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	position, err := e.store.GetPosition(positionID)
	if err != nil {
		return nil, err
	}
	if position.Status != types.PositionActive {
		e.reject(cfg, positionID, actor, ErrPositionNotActive)
		return nil, ErrPositionNotActive
	}

	if !feesA.IsNil() && feesA.IsPositive() {
		position.FeesEarnedA = position.FeesEarnedA.Add(feesA)
	}
	if !feesB.IsNil() && feesB.IsPositive() {
		position.FeesEarnedB = position.FeesEarnedB.Add(feesB)
	}
	if !tvl.IsNil() && !tvl.IsNegative() {
		position.TotalValueLocked = tvl
	}
	position.UpdatedAt = e.clock.Now().UTC()

	if err := e.store.SaveAccrual(position); err != nil {
		return nil, fmt.Errorf("failed to persist accrual: %w", err)
	}

	if tvlFloat, err := utils.AmountToFloat64(position.TotalValueLocked, amountPrecision); err == nil {
		metrics.PositionTVL.WithLabelValues(position.ID).Set(tvlFloat)
	}

	e.logger.Debug().
		Str("positionId", position.ID).
		Str("feesA", position.FeesEarnedA.String()).
		Str("feesB", position.FeesEarnedB.String()).
		Msg("Position accrual updated")
	return position, nil
}

// CollectFees collects a position's accrued fees on behalf of its owner.
func (e *Engine) CollectFees(positionID, caller string) (*FeeCollection, error) {
	cfg, err := e.store.LoadProtocolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}
	position, err := e.store.GetPosition(positionID)
	if err != nil {
		return nil, err
	}
	if caller != position.Owner {
		e.reject(cfg, positionID, caller, ErrUnauthorized)
		return nil, ErrUnauthorized
	}

	collection, err := CollectPositionFees(position, cfg, e.clock.Now())
	if err != nil {
		e.reject(cfg, positionID, caller, err)
		return nil, err
	}
	if err := e.store.SaveFeeCollection(position, collection.CollectedA, collection.CollectedB); err != nil {
		return nil, fmt.Errorf("failed to persist fee collection: %w", err)
	}

	metrics.FeeCollections.Inc()
	if amountA, err := utils.AmountToFloat64(collection.CollectedA, amountPrecision); err == nil {
		metrics.FeesCollectedAmount.WithLabelValues(position.TokenA).Add(amountA)
	}
	if amountB, err := utils.AmountToFloat64(collection.CollectedB, amountPrecision); err == nil {
		metrics.FeesCollectedAmount.WithLabelValues(position.TokenB).Add(amountB)
	}
	e.emit(cfg, types.AuditFeesCollected, position.ID, caller, map[string]any{
		"collected_a":    collection.CollectedA,
		"collected_b":    collection.CollectedB,
		"protocol_cut_a": collection.ProtocolCutA,
		"protocol_cut_b": collection.ProtocolCutB,
		"fee_recipient":  cfg.FeeRecipient,
	})

	e.logger.Info().
		Str("positionId", position.ID).
		Str("collectedA", collection.CollectedA.String()).
		Str("collectedB", collection.CollectedB.String()).
		Msg("Fees collected")
	return &collection, nil
}

// VerifyPayment verifies an x402 payment and grants time-limited API access.
func (e *Engine) VerifyPayment(params PaymentParams) (*types.X402Payment, error) {
	cfg, err := e.store.LoadProtocolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}

	payment, err := VerifyX402Payment(params, cfg, e.clock.Now())
	if err != nil {
		e.reject(cfg, "", params.Payer, err)
		return nil, err
	}
	if err := e.store.InsertPayment(payment); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	metrics.PaymentsVerified.WithLabelValues(string(payment.Currency)).Inc()
	e.emit(cfg, types.AuditPaymentReceived, "", payment.Payer, map[string]any{
		"payment_id":   payment.ID,
		"amount":       payment.Amount,
		"currency":     payment.Currency,
		"api_endpoint": payment.APIEndpoint,
	})

	e.logger.Info().
		Str("paymentId", payment.ID).
		Str("payer", payment.Payer).
		Str("endpoint", payment.APIEndpoint).
		Msg("x402 payment verified")
	return payment, nil
}

// PaymentRequirements describes what a caller must pay for metered API
// access, in the shape an x402 client expects to discover.
type PaymentRequirements struct {
	MinPayment  sdkmath.Int             `json:"min_payment"`
	Currencies  []types.PaymentCurrency `json:"currencies"`
	Facilitator string                  `json:"facilitator,omitempty"`
	APIBaseURL  string                  `json:"api_base_url"`
}

// GetPaymentRequirements exposes the configured x402 terms for API callers.
func (e *Engine) GetPaymentRequirements() (*PaymentRequirements, error) {
	cfg, err := e.store.LoadProtocolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}
	return &PaymentRequirements{
		MinPayment:  cfg.X402MinPayment,
		Currencies:  []types.PaymentCurrency{types.CurrencySOL, types.CurrencyUSDC, types.CurrencyUSDT},
		Facilitator: cfg.X402Facilitator,
		APIBaseURL:  cfg.X402APIBaseURL,
	}, nil
}

// emit records an audit event for a committed transition. Failures are
// logged and counted but never surfaced to the business operation.
func (e *Engine) emit(cfg *types.ProtocolConfig, eventType types.AuditEventType, positionID, user string, payload any) {
	if !cfg.AuditLogEnabled {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		// Payloads are engine-built maps; a marshal failure is a bug, not
		// an operational condition.
		e.logger.Error().Err(err).Str("eventType", string(eventType)).Msg("Failed to marshal audit payload")
		data = nil
	}
	event := audit.NewEvent(eventType, positionID, user, data, e.clock.Now(), e.clock.Slot())
	if err := e.recorder.Record(event); err != nil {
		metrics.AuditSinkFailures.Inc()
		e.logger.Warn().Err(err).
			Str("eventType", string(eventType)).
			Str("positionId", positionID).
			Msg("Audit record could not be written; business state is committed")
	}
}

// policyViolationErrors are the refusals that represent a policy gate denying
// an otherwise well-formed request. These are recorded to the audit log so a
// compliance monitor sees denied operations, not only committed ones.
var policyViolationErrors = []error{
	ErrPositionNotActive, ErrRebalanceTooFrequent, ErrHumanApprovalRequired,
	ErrApprovalNotRequired, ErrAlreadyApproved, ErrInvalidApprover,
	ErrSlippageTooHigh, ErrInvalidFacilitator, ErrUnauthorized,
}

// rejectionErrors are the remaining counted refusals: malformed input and
// state conflicts. They increment the rejection metric without an audit event.
var rejectionErrors = []error{
	ErrInvalidPriceRange, ErrExceedsMaxPositionSize, ErrExceedsMaxTradeSize,
	ErrPaymentTooSmall, ErrInvalidCurrency, ErrInvalidExecutionStatus,
	ErrStaleDecision, ErrNoFeesToCollect, ErrInvalidStatusChange,
	ErrRebalanceCountOverflow,
}

// reject counts a policy/validation rejection for observability and records a
// POLICY_VIOLATION audit event for policy-class refusals. Store errors are not
// policy rejections and are not counted here.
func (e *Engine) reject(cfg *types.ProtocolConfig, positionID, actor string, err error) {
	for _, sentinel := range policyViolationErrors {
		if errors.Is(err, sentinel) {
			metrics.PolicyRejections.WithLabelValues(sentinel.Error()).Inc()
			e.emit(cfg, types.AuditPolicyViolation, positionID, actor, map[string]any{
				"reason": sentinel.Error(),
			})
			return
		}
	}
	for _, sentinel := range rejectionErrors {
		if errors.Is(err, sentinel) {
			metrics.PolicyRejections.WithLabelValues(sentinel.Error()).Inc()
			return
		}
	}
}

func finalizeEventType(status types.ExecutionStatus) types.AuditEventType {
	switch status {
	case types.ExecutionRejected:
		return types.AuditDecisionRejected
	case types.ExecutionCancelled:
		return types.AuditDecisionCancelled
	default:
		return types.AuditExecutionFailed
	}
}
