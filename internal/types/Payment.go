/*

This file contains the x402 metered-payment type. Payments have a lifecycle
independent from positions and decisions; the only shared state is the
protocol config they are validated against.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// PaymentStatus is the verification lifecycle of an x402 payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentVerified PaymentStatus = "VERIFIED"
	PaymentSettled  PaymentStatus = "SETTLED"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentCurrency is the settlement currency of an x402 payment.
type PaymentCurrency string

const (
	CurrencySOL  PaymentCurrency = "SOL"
	CurrencyUSDC PaymentCurrency = "USDC"
	CurrencyUSDT PaymentCurrency = "USDT"
)

// Valid reports whether c is a supported payment currency.
func (c PaymentCurrency) Valid() bool {
	switch c {
	case CurrencySOL, CurrencyUSDC, CurrencyUSDT:
		return true
	}
	return false
}

// X402Payment records a metered payment granting time-limited API access.
// Settlement and facilitator signature attachment happen downstream; the
// engine only verifies amount and facilitator identity.
type X402Payment struct {
	ID          string `json:"id"`
	Payer       string `json:"payer"`
	PayerWallet string `json:"payer_wallet"`

	Amount   sdkmath.Int     `json:"amount"`
	Currency PaymentCurrency `json:"currency"`
	Status   PaymentStatus   `json:"status"`

	Facilitator          string `json:"facilitator"`
	FacilitatorSignature string `json:"facilitator_signature,omitempty"` // attached by the facilitator, not here
	PaymentTxSignature   string `json:"payment_tx_signature,omitempty"`  // attached after settlement, not here

	APIEndpoint string `json:"api_endpoint"`
	APIVersion  string `json:"api_version"`

	AccessGranted   bool       `json:"access_granted"`
	AccessExpiresAt *time.Time `json:"access_expires_at,omitempty"`

	RequestedAt time.Time  `json:"requested_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
}
