// ./internal/state/position_store.go
package state

import (
	"database/sql"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/x-liquidity/engine/internal/types"
)

const positionColumns = `
	position_id, owner_address, token_a, token_b, dex, pool_address,
	tick_lower, tick_upper, price_lower, price_upper,
	liquidity_amount, fees_earned_a, fees_earned_b, total_value_locked,
	last_rebalance_slot, last_rebalance_timestamp, rebalance_count,
	status, auto_rebalance_enabled, min_rebalance_interval,
	max_position_size, max_single_trade, created_at, updated_at`

// InsertPosition persists a newly created position.
func InsertPosition(p *types.LiquidityPosition) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
		INSERT INTO positions (` + positionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);`

	var lastRebalance sql.NullTime
	if !p.LastRebalanceTimestamp.IsZero() {
		lastRebalance = sql.NullTime{Time: p.LastRebalanceTimestamp, Valid: true}
	}

	_, err := DB.Exec(stmt,
		p.ID, p.Owner, p.TokenA, p.TokenB, string(p.Dex), p.PoolAddress,
		p.TickLower, p.TickUpper, p.PriceLower.String(), p.PriceUpper.String(),
		p.LiquidityAmount.String(), p.FeesEarnedA.String(), p.FeesEarnedB.String(), p.TotalValueLocked.String(),
		fmt.Sprintf("%d", p.LastRebalanceSlot), lastRebalance, p.RebalanceCount,
		string(p.Status), p.AutoRebalanceEnabled, p.MinRebalanceInterval,
		p.MaxPositionSize.String(), p.MaxSingleTrade.String(), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert position %s: %w", p.ID, err)
	}

	log.Info().Str("positionId", p.ID).Str("owner", p.Owner).Msg("Inserted position")
	return nil
}

// GetPosition loads a position by ID.
func GetPosition(id string) (*types.LiquidityPosition, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	row := DB.QueryRow(`SELECT `+positionColumns+` FROM positions WHERE position_id = $1;`, id)
	return scanPosition(row)
}

// SavePositionStatus persists a lifecycle transition.
func SavePositionStatus(p *types.LiquidityPosition) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	result, err := DB.Exec(
		`UPDATE positions SET status = $1, updated_at = $2 WHERE position_id = $3;`,
		string(p.Status), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position status for %s: %w", p.ID, err)
	}
	return requireRow(result, p.ID)
}

// SaveFeeCollection persists the zeroed fee counters after a collection. The
// WHERE guard only zeroes the exact amounts that were collected: if an accrual
// landed after the engine read the position, the counters no longer match and
// the write is refused instead of silently dropping the new accrual.
func SaveFeeCollection(p *types.LiquidityPosition, collectedA, collectedB sdkmath.Int) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	result, err := DB.Exec(
		`UPDATE positions SET fees_earned_a = $1, fees_earned_b = $2, updated_at = $3
		 WHERE position_id = $4 AND fees_earned_a = $5 AND fees_earned_b = $6;`,
		p.FeesEarnedA.String(), p.FeesEarnedB.String(), p.UpdatedAt,
		p.ID, collectedA.String(), collectedB.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to persist fee collection for %s: %w", p.ID, err)
	}
	return requireGuardedRow(result, p.ID)
}

// SaveAccrual persists newly earned swap fees and the current valuation
// reported by the external indexer.
func SaveAccrual(p *types.LiquidityPosition) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	result, err := DB.Exec(
		`UPDATE positions SET fees_earned_a = $1, fees_earned_b = $2, total_value_locked = $3,
		 liquidity_amount = $4, updated_at = $5 WHERE position_id = $6;`,
		p.FeesEarnedA.String(), p.FeesEarnedB.String(), p.TotalValueLocked.String(),
		p.LiquidityAmount.String(), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to accrue fees for %s: %w", p.ID, err)
	}
	return requireRow(result, p.ID)
}

// requireRow turns a zero-row UPDATE into ErrNotFound.
func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("position %s: %w", id, ErrNotFound)
	}
	return nil
}

// requireGuardedRow turns a zero-row guarded UPDATE into ErrStaleState: the
// row exists but no longer satisfies the precondition the engine validated.
func requireGuardedRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("position %s changed since validation: %w", id, ErrStaleState)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (*types.LiquidityPosition, error) {
	p := &types.LiquidityPosition{}
	var (
		dex, status                                       string
		priceLower, priceUpper, liquidity                 string
		feesA, feesB, tvl, maxPosition, maxTrade, rawSlot string
		lastRebalance                                     sql.NullTime
	)

	err := row.Scan(
		&p.ID, &p.Owner, &p.TokenA, &p.TokenB, &dex, &p.PoolAddress,
		&p.TickLower, &p.TickUpper, &priceLower, &priceUpper,
		&liquidity, &feesA, &feesB, &tvl,
		&rawSlot, &lastRebalance, &p.RebalanceCount,
		&status, &p.AutoRebalanceEnabled, &p.MinRebalanceInterval,
		&maxPosition, &maxTrade, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("position: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan position: %w", err)
	}

	p.Dex = types.DexType(dex)
	p.Status = types.PositionStatus(status)
	if lastRebalance.Valid {
		p.LastRebalanceTimestamp = lastRebalance.Time
	}
	if _, err := fmt.Sscanf(rawSlot, "%d", &p.LastRebalanceSlot); err != nil {
		return nil, fmt.Errorf("invalid last_rebalance_slot %q: %w", rawSlot, err)
	}
	if p.PriceLower, err = scanBigInt(priceLower); err != nil {
		return nil, err
	}
	if p.PriceUpper, err = scanBigInt(priceUpper); err != nil {
		return nil, err
	}
	if p.LiquidityAmount, err = scanBigInt(liquidity); err != nil {
		return nil, err
	}
	if p.FeesEarnedA, err = scanBigInt(feesA); err != nil {
		return nil, err
	}
	if p.FeesEarnedB, err = scanBigInt(feesB); err != nil {
		return nil, err
	}
	if p.TotalValueLocked, err = scanBigInt(tvl); err != nil {
		return nil, err
	}
	if p.MaxPositionSize, err = scanBigInt(maxPosition); err != nil {
		return nil, err
	}
	if p.MaxSingleTrade, err = scanBigInt(maxTrade); err != nil {
		return nil, err
	}

	return p, nil
}
