package engine

import "errors"

// Error definitions for the policy engine. Each operation rejects with one of
// these before any state is touched; callers can match on the category to
// decide whether to retry, wait, or abandon.
var (
	// Validation errors: the request itself is malformed. Recoverable by
	// retrying with corrected input.
	ErrInvalidPriceRange      = errors.New("invalid price range")
	ErrExceedsMaxPositionSize = errors.New("position exceeds maximum size")
	ErrExceedsMaxTradeSize    = errors.New("trade exceeds maximum size")
	ErrPaymentTooSmall        = errors.New("payment amount too small")
	ErrInvalidCurrency        = errors.New("unsupported payment currency")

	// Policy errors: the request is well-formed but forbidden right now.
	// Caller must wait or obtain proper authorization.
	ErrPositionNotActive     = errors.New("position is not active")
	ErrRebalanceTooFrequent  = errors.New("rebalance too frequent")
	ErrHumanApprovalRequired = errors.New("human approval required")
	ErrApprovalNotRequired   = errors.New("approval not required")
	ErrAlreadyApproved       = errors.New("decision already approved")
	ErrInvalidApprover       = errors.New("invalid approver")
	ErrSlippageTooHigh       = errors.New("slippage tolerance too high")
	ErrInvalidFacilitator    = errors.New("invalid facilitator")
	ErrUnauthorized          = errors.New("caller is not authorized")

	// State errors: the request targets an entity in the wrong state,
	// usually a stale or duplicate request.
	ErrInvalidExecutionStatus = errors.New("invalid execution status")
	ErrStaleDecision          = errors.New("decision is stale")
	ErrNoFeesToCollect        = errors.New("no fees to collect")
	ErrInvalidStatusChange    = errors.New("invalid position status change")

	// Arithmetic errors are fatal for the operation and never wrap silently.
	ErrRebalanceCountOverflow = errors.New("rebalance counter overflow")
)
