// ./internal/state/payment_store.go
package state

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/x-liquidity/engine/internal/types"
)

const paymentColumns = `
	payment_id, payer, payer_wallet, amount, currency, status,
	facilitator, facilitator_signature, payment_tx_signature,
	api_endpoint, api_version, access_granted, access_expires_at,
	requested_at, verified_at, settled_at`

// InsertPayment persists a verified x402 payment.
func InsertPayment(pay *types.X402Payment) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
		INSERT INTO x402_payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`

	_, err := DB.Exec(stmt,
		pay.ID, pay.Payer, pay.PayerWallet, pay.Amount.String(), string(pay.Currency), string(pay.Status),
		pay.Facilitator, pay.FacilitatorSignature, pay.PaymentTxSignature,
		pay.APIEndpoint, pay.APIVersion, pay.AccessGranted, nullTime(pay.AccessExpiresAt),
		pay.RequestedAt, nullTime(pay.VerifiedAt), nullTime(pay.SettledAt),
	)
	if err != nil {
		// Payment IDs are caller-supplied, so a re-submitted receipt is an
		// expected conflict, not a server fault.
		if isUniqueViolation(err) {
			return fmt.Errorf("payment %s: %w", pay.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert payment %s: %w", pay.ID, err)
	}

	log.Info().Str("paymentId", pay.ID).Str("payer", pay.Payer).Msg("Inserted x402 payment")
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// GetPayment loads a payment by ID.
func GetPayment(id string) (*types.X402Payment, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	pay := &types.X402Payment{}
	var (
		amount, currency, status         string
		expiresAt, verifiedAt, settledAt sql.NullTime
	)

	row := DB.QueryRow(`SELECT `+paymentColumns+` FROM x402_payments WHERE payment_id = $1;`, id)
	err := row.Scan(
		&pay.ID, &pay.Payer, &pay.PayerWallet, &amount, &currency, &status,
		&pay.Facilitator, &pay.FacilitatorSignature, &pay.PaymentTxSignature,
		&pay.APIEndpoint, &pay.APIVersion, &pay.AccessGranted, &expiresAt,
		&pay.RequestedAt, &verifiedAt, &settledAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("payment: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	pay.Currency = types.PaymentCurrency(currency)
	pay.Status = types.PaymentStatus(status)
	pay.AccessExpiresAt = timePtr(expiresAt)
	pay.VerifiedAt = timePtr(verifiedAt)
	pay.SettledAt = timePtr(settledAt)
	if pay.Amount, err = scanBigInt(amount); err != nil {
		return nil, err
	}

	return pay, nil
}
