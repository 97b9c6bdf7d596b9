package engine

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/x-liquidity/engine/internal/types"
)

func TestCollectPositionFees(t *testing.T) {
	cfg := testProtocolConfig() // protocol fee 500 bps = 5%
	position := testPosition()
	position.FeesEarnedA = sdkmath.NewInt(1_000_000)
	position.FeesEarnedB = sdkmath.NewInt(400_000)

	collection, err := CollectPositionFees(position, cfg, baseTime)
	require.NoError(t, err)

	require.Equal(t, sdkmath.NewInt(1_000_000), collection.CollectedA)
	require.Equal(t, sdkmath.NewInt(400_000), collection.CollectedB)
	require.Equal(t, sdkmath.NewInt(50_000), collection.ProtocolCutA)
	require.Equal(t, sdkmath.NewInt(20_000), collection.ProtocolCutB)

	// Counters are reset by the same transition.
	require.True(t, position.FeesEarnedA.IsZero())
	require.True(t, position.FeesEarnedB.IsZero())
}

func TestCollectPositionFeesFloorsProtocolCut(t *testing.T) {
	cfg := testProtocolConfig()
	position := testPosition()
	// 19 * 500 / 10000 = 0.95, which floors to 0: the remainder stays with
	// the liquidity provider.
	position.FeesEarnedA = sdkmath.NewInt(19)
	position.FeesEarnedB = sdkmath.NewInt(39)

	collection, err := CollectPositionFees(position, cfg, baseTime)
	require.NoError(t, err)
	require.True(t, collection.ProtocolCutA.IsZero())
	require.Equal(t, sdkmath.NewInt(1), collection.ProtocolCutB) // floor(1.95)
	require.Equal(t, sdkmath.NewInt(19), collection.CollectedA)
}

func TestCollectPositionFeesNothingAccrued(t *testing.T) {
	position := testPosition()

	_, err := CollectPositionFees(position, testProtocolConfig(), baseTime)
	require.ErrorIs(t, err, ErrNoFeesToCollect)
}

func TestCollectPositionFeesTwice(t *testing.T) {
	cfg := testProtocolConfig()
	position := testPosition()
	position.FeesEarnedA = sdkmath.NewInt(500_000)
	position.FeesEarnedB = sdkmath.NewInt(500_000)

	_, err := CollectPositionFees(position, cfg, baseTime)
	require.NoError(t, err)

	// A second collection finds nothing: the counters were zeroed.
	_, err = CollectPositionFees(position, cfg, baseTime)
	require.ErrorIs(t, err, ErrNoFeesToCollect)
}

func TestCollectPositionFeesOneSidedAccrual(t *testing.T) {
	cfg := testProtocolConfig()
	position := testPosition()
	position.FeesEarnedB = sdkmath.NewInt(100_000)

	collection, err := CollectPositionFees(position, cfg, baseTime)
	require.NoError(t, err)
	require.True(t, collection.CollectedA.IsZero())
	require.Equal(t, sdkmath.NewInt(100_000), collection.CollectedB)
	require.Equal(t, sdkmath.NewInt(5_000), collection.ProtocolCutB)
}

func TestCollectPositionFeesInactivePosition(t *testing.T) {
	position := testPosition()
	position.FeesEarnedA = sdkmath.NewInt(100)
	position.Status = types.PositionClosed

	_, err := CollectPositionFees(position, testProtocolConfig(), baseTime)
	require.ErrorIs(t, err, ErrPositionNotActive)
	// Accruals are untouched on rejection.
	require.Equal(t, sdkmath.NewInt(100), position.FeesEarnedA)
}
