// Package metrics exposes Prometheus counters for the policy engine.
//
//   - engine_positions_created_total          – positions opened
//   - engine_decisions_created_total{risk}    – decisions by computed risk tier
//   - engine_decisions_executed_total         – decisions applied to positions
//   - engine_decisions_finalized_total{status} – rejected/cancelled/failed decisions
//   - engine_approvals_granted_total          – human approvals recorded
//   - engine_fee_collections_total            – fee collections performed
//   - engine_payments_verified_total{currency} – x402 payments verified
//   - engine_policy_rejections_total{reason}  – operations blocked by policy
//   - engine_audit_sink_failures_total        – audit records that could not be written
//   - engine_position_tvl{position}           – reported TVL per position
//   - engine_fees_collected_amount{token}     – cumulative collected fees per token
//
// All collectors are registered in init() and served at /metrics by the web
// server in Prometheus text exposition format.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PositionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_positions_created_total",
			Help: "Liquidity positions created",
		},
	)

	DecisionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_decisions_created_total",
			Help: "Rebalance decisions created, by risk tier",
		},
		[]string{"risk"},
	)

	DecisionsExecuted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_decisions_executed_total",
			Help: "Rebalance decisions executed",
		},
	)

	DecisionsFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_decisions_finalized_total",
			Help: "Decisions moved to a terminal non-executed status",
		},
		[]string{"status"},
	)

	ApprovalsGranted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_approvals_granted_total",
			Help: "Human approvals recorded",
		},
	)

	FeeCollections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_fee_collections_total",
			Help: "Fee collections performed",
		},
	)

	PaymentsVerified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_payments_verified_total",
			Help: "x402 payments verified, by currency",
		},
		[]string{"currency"},
	)

	PolicyRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_policy_rejections_total",
			Help: "Operations blocked before any state change, by reason",
		},
		[]string{"reason"},
	)

	// Audit sink failures never roll back business state; this counter is
	// what a compliance monitor should alert on.
	AuditSinkFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_audit_sink_failures_total",
			Help: "Audit records that could not be written",
		},
	)

	PositionTVL = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_position_tvl",
			Help: "Reported total value locked per position, in whole token units",
		},
		[]string{"position"},
	)

	FeesCollectedAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_fees_collected_amount",
			Help: "Cumulative fees collected, in whole token units, by token",
		},
		[]string{"token"},
	)
)

func init() {
	prometheus.MustRegister(
		PositionsCreated,
		DecisionsCreated,
		DecisionsExecuted,
		DecisionsFinalized,
		ApprovalsGranted,
		FeeCollections,
		PaymentsVerified,
		PolicyRejections,
		AuditSinkFailures,
		PositionTVL,
		FeesCollectedAmount,
	)
}
