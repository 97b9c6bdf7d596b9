package utils

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestAmountToFloat64(t *testing.T) {
	v, err := AmountToFloat64(sdkmath.NewInt(1_500_000), 6)
	require.NoError(t, err)
	require.InDelta(t, 1.5, v, 1e-9)

	v, err = AmountToFloat64(sdkmath.ZeroInt(), 6)
	require.NoError(t, err)
	require.Zero(t, v)

	// Zero precision passes the amount through.
	v, err = AmountToFloat64(sdkmath.NewInt(42), 0)
	require.NoError(t, err)
	require.InDelta(t, 42.0, v, 1e-9)
}

func TestAmountToFloat64Rejects(t *testing.T) {
	_, err := AmountToFloat64(sdkmath.NewInt(1), -1)
	require.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = AmountToFloat64(sdkmath.NewInt(1), 19)
	require.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = AmountToFloat64(sdkmath.Int{}, 6)
	require.ErrorIs(t, err, ErrAmountNil)

	_, err = AmountToFloat64(sdkmath.NewInt(-1), 6)
	require.ErrorIs(t, err, ErrAmountNegative)
}
