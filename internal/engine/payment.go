package engine

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/x-liquidity/engine/internal/types"
)

// accessDuration is how long API access lasts after a payment is verified.
const accessDuration = time.Hour

// PaymentParams carries a caller-presented x402 payment for verification.
type PaymentParams struct {
	PaymentID   string
	Payer       string
	PayerWallet string
	Amount      sdkmath.Int
	Currency    types.PaymentCurrency
	Facilitator string
	APIEndpoint string
	APIVersion  string
}

// VerifyX402Payment checks the payment against the protocol's minimum and
// the configured facilitator, and on success returns a Verified payment with
// access granted until exactly one hour after verification. Settlement and
// signature attachment are deferred to the facilitator.
func VerifyX402Payment(params PaymentParams, cfg *types.ProtocolConfig, now time.Time) (*types.X402Payment, error) {
	if !params.Currency.Valid() {
		return nil, ErrInvalidCurrency
	}
	if params.Amount.IsNil() || params.Amount.LT(cfg.X402MinPayment) {
		return nil, ErrPaymentTooSmall
	}
	// No configured facilitator means nobody can attest settlement, so every
	// payment is rejected.
	if cfg.X402Facilitator == "" || params.Facilitator != cfg.X402Facilitator {
		return nil, ErrInvalidFacilitator
	}

	verifiedAt := now.UTC()
	expiresAt := verifiedAt.Add(accessDuration)

	id := params.PaymentID
	if id == "" {
		id = uuid.New().String()
	}

	return &types.X402Payment{
		ID:          id,
		Payer:       params.Payer,
		PayerWallet: params.PayerWallet,
		Amount:      params.Amount,
		Currency:    params.Currency,
		Status:      types.PaymentVerified,
		Facilitator: params.Facilitator,
		APIEndpoint: params.APIEndpoint,
		APIVersion:  params.APIVersion,

		AccessGranted:   true,
		AccessExpiresAt: &expiresAt,

		RequestedAt: verifiedAt,
		VerifiedAt:  &verifiedAt,
	}, nil
}
