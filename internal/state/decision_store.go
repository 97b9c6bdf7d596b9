// ./internal/state/decision_store.go
package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/x-liquidity/engine/internal/types"
)

const decisionColumns = `
	decision_id, position_id,
	new_tick_lower, new_tick_upper, new_price_lower, new_price_upper,
	ai_model_version, ai_model_hash, prediction_confidence,
	market_sentiment_score, volatility_metric, whale_activity_score,
	decision_reason, risk_assessment, execution_status,
	execution_tx_signature, execution_slippage_bps,
	requires_human_approval, human_approver, approval_timestamp,
	created_at, executed_at`

// InsertDecision persists a newly created pending decision.
func InsertDecision(d *types.RebalanceDecision) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
		INSERT INTO rebalance_decisions (` + decisionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22);`

	_, err := DB.Exec(stmt,
		d.ID, d.PositionID,
		d.NewTickLower, d.NewTickUpper, d.NewPriceLower.String(), d.NewPriceUpper.String(),
		d.AIModelVersion, d.AIModelHash, d.PredictionConfidence,
		d.MarketSentimentScore, d.VolatilityMetric, d.WhaleActivityScore,
		d.DecisionReason, string(d.RiskAssessment), string(d.ExecutionStatus),
		d.ExecutionTxSignature, nullableSlippage(d.ExecutionSlippageBps),
		d.RequiresHumanApproval, d.HumanApprover, nullTime(d.ApprovalTimestamp),
		d.CreatedAt, nullTime(d.ExecutedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision %s: %w", d.ID, err)
	}

	log.Info().Str("decisionId", d.ID).Str("positionId", d.PositionID).Msg("Inserted rebalance decision")
	return nil
}

// GetDecision loads a decision by ID.
func GetDecision(id string) (*types.RebalanceDecision, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	row := DB.QueryRow(`SELECT `+decisionColumns+` FROM rebalance_decisions WHERE decision_id = $1;`, id)
	return scanDecision(row)
}

// SaveApproval persists a recorded human approval. The WHERE guard keeps a
// concurrent second approval from landing even if it raced past the engine's
// own check.
func SaveApproval(d *types.RebalanceDecision) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	result, err := DB.Exec(`
		UPDATE rebalance_decisions
		SET human_approver = $1, approval_timestamp = $2
		WHERE decision_id = $3 AND execution_status = 'PENDING' AND human_approver = '';`,
		d.HumanApprover, nullTime(d.ApprovalTimestamp), d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to persist approval for %s: %w", d.ID, err)
	}
	return requireDecisionRow(result, d.ID)
}

// SaveDecisionStatus persists a terminal status change (rejected, cancelled,
// failed). Only pending decisions may transition.
func SaveDecisionStatus(d *types.RebalanceDecision) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	result, err := DB.Exec(`
		UPDATE rebalance_decisions
		SET execution_status = $1
		WHERE decision_id = $2 AND execution_status = 'PENDING';`,
		string(d.ExecutionStatus), d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to persist decision status for %s: %w", d.ID, err)
	}
	return requireDecisionRow(result, d.ID)
}

// SaveExecution persists an executed decision together with the position it
// mutated, in a single transaction. Either both rows commit or neither does.
func SaveExecution(p *types.LiquidityPosition, d *types.RebalanceDecision) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	// The rebalance_count guard re-asserts the engine's staleness check at the
	// database: two decisions validated against the same position state can
	// only commit once, because the second no longer matches the prior count.
	var result sql.Result
	result, err = tx.Exec(`
		UPDATE positions
		SET tick_lower = $1, tick_upper = $2, price_lower = $3, price_upper = $4,
		    last_rebalance_slot = $5, last_rebalance_timestamp = $6,
		    rebalance_count = $7, updated_at = $8
		WHERE position_id = $9 AND status = 'ACTIVE' AND rebalance_count = $10;`,
		p.TickLower, p.TickUpper, p.PriceLower.String(), p.PriceUpper.String(),
		fmt.Sprintf("%d", p.LastRebalanceSlot), p.LastRebalanceTimestamp,
		p.RebalanceCount, p.UpdatedAt, p.ID, p.RebalanceCount-1,
	)
	if err != nil {
		return fmt.Errorf("failed to apply rebalance to position %s: %w", p.ID, err)
	}
	if err = requireDecisionRow(result, p.ID); err != nil {
		return err
	}

	result, err = tx.Exec(`
		UPDATE rebalance_decisions
		SET execution_status = $1, executed_at = $2, execution_slippage_bps = $3
		WHERE decision_id = $4 AND execution_status = 'PENDING';`,
		string(d.ExecutionStatus), nullTime(d.ExecutedAt), nullableSlippage(d.ExecutionSlippageBps), d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark decision %s executed: %w", d.ID, err)
	}
	if err = requireDecisionRow(result, d.ID); err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit execution transaction: %w", err)
	}

	log.Info().
		Str("decisionId", d.ID).
		Str("positionId", p.ID).
		Msg("Committed rebalance execution")
	return nil
}

func requireDecisionRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("decision or position %s changed since validation: %w", id, ErrStaleState)
	}
	return nil
}

func nullableSlippage(v *uint16) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func scanDecision(row rowScanner) (*types.RebalanceDecision, error) {
	d := &types.RebalanceDecision{}
	var (
		priceLower, priceUpper, risk, status string
		slippage                             sql.NullInt32
		approvalTs, executedAt               sql.NullTime
	)

	err := row.Scan(
		&d.ID, &d.PositionID,
		&d.NewTickLower, &d.NewTickUpper, &priceLower, &priceUpper,
		&d.AIModelVersion, &d.AIModelHash, &d.PredictionConfidence,
		&d.MarketSentimentScore, &d.VolatilityMetric, &d.WhaleActivityScore,
		&d.DecisionReason, &risk, &status,
		&d.ExecutionTxSignature, &slippage,
		&d.RequiresHumanApproval, &d.HumanApprover, &approvalTs,
		&d.CreatedAt, &executedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("decision: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan decision: %w", err)
	}

	d.RiskAssessment = types.RiskLevel(risk)
	d.ExecutionStatus = types.ExecutionStatus(status)
	d.ApprovalTimestamp = timePtr(approvalTs)
	d.ExecutedAt = timePtr(executedAt)
	if slippage.Valid {
		v := uint16(slippage.Int32)
		d.ExecutionSlippageBps = &v
	}
	if d.NewPriceLower, err = scanBigInt(priceLower); err != nil {
		return nil, err
	}
	if d.NewPriceUpper, err = scanBigInt(priceUpper); err != nil {
		return nil, err
	}

	return d, nil
}
