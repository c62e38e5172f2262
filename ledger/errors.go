/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All validation errors in one place. Domain packages and the API layer
  match on the sentinels with errors.Is and surface the structured types
  as user-facing rejection messages.

ERROR CATEGORIES:
  1. Payment errors    - a payment recording violated the balance bound
  2. Total errors      - a charge set produced an unacceptable total
  3. Identifier errors - internal only; triggers the count-based fallback
                         in sequence.go instead of propagating

All of these are recoverable at the caller boundary; none are fatal.
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPayment is returned when a payment is non-positive or
	// exceeds the outstanding balance of the record.
	ErrInvalidPayment = errors.New("invalid payment")

	// ErrInvalidBillTotal is returned when a computed total is not
	// positive, or when an initial payment exceeds the total at creation.
	ErrInvalidBillTotal = errors.New("invalid bill total")

	// ErrInvalidCharge is returned when a charge component, discount, or
	// tax is negative.
	ErrInvalidCharge = errors.New("invalid charge")

	// ErrMalformedIdentifier marks a last-issued identifier that does not
	// parse. The sequencer never returns it; it only drives the
	// count-based fallback path.
	ErrMalformedIdentifier = errors.New("malformed identifier")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the amounts that caused the rejection
// =============================================================================

// InvalidPaymentError reports a rejected payment recording.
type InvalidPaymentError struct {
	Requested decimal.Decimal
	Balance   decimal.Decimal
}

func (e *InvalidPaymentError) Error() string {
	if !e.Requested.IsPositive() {
		return fmt.Sprintf("payment amount must be greater than zero (got %s)", e.Requested)
	}
	return fmt.Sprintf("payment %s exceeds balance due of %s", e.Requested, e.Balance)
}

func (e *InvalidPaymentError) Unwrap() error { return ErrInvalidPayment }

// InvalidTotalError reports a rejected creation: either the total itself
// is not positive, or the supplied initial payment exceeds it.
type InvalidTotalError struct {
	Total decimal.Decimal
	Paid  decimal.Decimal
}

func (e *InvalidTotalError) Error() string {
	if !e.Total.IsPositive() {
		return fmt.Sprintf("total must be greater than zero (got %s)", e.Total)
	}
	return fmt.Sprintf("amount paid %s cannot exceed total %s", e.Paid, e.Total)
}

func (e *InvalidTotalError) Unwrap() error { return ErrInvalidBillTotal }

// InvalidChargeError reports a negative charge component.
type InvalidChargeError struct {
	Name   string
	Amount decimal.Decimal
}

func (e *InvalidChargeError) Error() string {
	return fmt.Sprintf("charge %q must not be negative (got %s)", e.Name, e.Amount)
}

func (e *InvalidChargeError) Unwrap() error { return ErrInvalidCharge }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is a validation failure the API
// layer should map to a 400 rather than a 500.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPayment) ||
		errors.Is(err, ErrInvalidBillTotal) ||
		errors.Is(err, ErrInvalidCharge)
}
