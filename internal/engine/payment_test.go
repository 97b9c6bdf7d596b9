package engine

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/x-liquidity/engine/internal/types"
)

func testPaymentParams() PaymentParams {
	return PaymentParams{
		PaymentID:   "payment-1",
		Payer:       "payer-1",
		PayerWallet: "wallet-1",
		Amount:      sdkmath.NewInt(1_000_000),
		Currency:    types.CurrencyUSDC,
		Facilitator: "facilitator-1",
		APIEndpoint: "/api/v1/positions",
		APIVersion:  "v1",
	}
}

func TestVerifyX402Payment(t *testing.T) {
	cfg := testProtocolConfig()

	payment, err := VerifyX402Payment(testPaymentParams(), cfg, baseTime)
	require.NoError(t, err)
	require.Equal(t, types.PaymentVerified, payment.Status)
	require.True(t, payment.AccessGranted)
	require.Equal(t, baseTime, *payment.VerifiedAt)
	// Access expires exactly one hour after verification.
	require.Equal(t, baseTime.Add(time.Hour), *payment.AccessExpiresAt)
}

func TestVerifyX402PaymentAmountBoundary(t *testing.T) {
	cfg := testProtocolConfig()

	// One unit below the minimum fails.
	params := testPaymentParams()
	params.Amount = cfg.X402MinPayment.SubRaw(1)
	_, err := VerifyX402Payment(params, cfg, baseTime)
	require.ErrorIs(t, err, ErrPaymentTooSmall)

	// Exactly the minimum passes.
	params.Amount = cfg.X402MinPayment
	_, err = VerifyX402Payment(params, cfg, baseTime)
	require.NoError(t, err)
}

func TestVerifyX402PaymentFacilitator(t *testing.T) {
	cfg := testProtocolConfig()

	params := testPaymentParams()
	params.Facilitator = "someone-else"
	_, err := VerifyX402Payment(params, cfg, baseTime)
	require.ErrorIs(t, err, ErrInvalidFacilitator)

	// With no facilitator configured, every payment is rejected.
	cfg.X402Facilitator = ""
	_, err = VerifyX402Payment(testPaymentParams(), cfg, baseTime)
	require.ErrorIs(t, err, ErrInvalidFacilitator)
}

func TestVerifyX402PaymentCurrency(t *testing.T) {
	cfg := testProtocolConfig()

	for _, currency := range []types.PaymentCurrency{types.CurrencySOL, types.CurrencyUSDC, types.CurrencyUSDT} {
		params := testPaymentParams()
		params.Currency = currency
		_, err := VerifyX402Payment(params, cfg, baseTime)
		require.NoError(t, err, "currency %s", currency)
	}

	params := testPaymentParams()
	params.Currency = "DOGE"
	_, err := VerifyX402Payment(params, cfg, baseTime)
	require.ErrorIs(t, err, ErrInvalidCurrency)
}
