package state

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// staticResult is a canned sql.Result for exercising the row-count guards
// without a live database.
type staticResult struct {
	rows int64
	err  error
}

func (r staticResult) LastInsertId() (int64, error) { return 0, nil }
func (r staticResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestRequireRow(t *testing.T) {
	require.NoError(t, requireRow(staticResult{rows: 1}, "pos-1"))

	err := requireRow(staticResult{rows: 0}, "pos-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRequireGuardedRowRefusesStaleWrite(t *testing.T) {
	require.NoError(t, requireGuardedRow(staticResult{rows: 1}, "pos-1"))

	// Zero rows matched means the guarded UPDATE found the row in a state
	// other than the one the engine validated against. The write must be
	// refused as a conflict, not reported as a missing entity.
	err := requireGuardedRow(staticResult{rows: 0}, "pos-1")
	require.ErrorIs(t, err, ErrStaleState)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestRequireDecisionRowRefusesStaleWrite(t *testing.T) {
	require.NoError(t, requireDecisionRow(staticResult{rows: 1}, "dec-1"))

	err := requireDecisionRow(staticResult{rows: 0}, "dec-1")
	require.ErrorIs(t, err, ErrStaleState)
}

func TestRequireRowPropagatesDriverError(t *testing.T) {
	driverErr := errors.New("driver: rows affected unsupported")
	err := requireRow(staticResult{err: driverErr}, "pos-1")
	require.ErrorIs(t, err, driverErr)
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	require.True(t, isUniqueViolation(fmt.Errorf("insert failed: %w", &pq.Error{Code: "23505"})))

	require.False(t, isUniqueViolation(&pq.Error{Code: "23503"})) // foreign_key_violation
	require.False(t, isUniqueViolation(errors.New("connection reset")))
	require.False(t, isUniqueViolation(nil))
}
