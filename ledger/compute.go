/*
compute.go - Totals, status derivation, and payment recording

PURPOSE:
  The arithmetic heart of the back office. The same three operations are
  applied to patient bills, monthly salaries, and account transactions:

    ComputeTotals:  charge set        -> subtotal, total
    DeriveStatus:   (total, paid)     -> status, balance
    RecordPayment:  (record, payment) -> record'

TWO OVERPAYMENT RULES (intentionally different):
  - DeriveStatus clamps: paid >= total means PAID with balance 0, even when
    paid overshoots. The recorded amount_paid is preserved as-is.
  - RecordPayment rejects: a single recording may never exceed the current
    outstanding balance. Reaching exactly zero is fine; going past it is an
    InvalidPayment.
  - NewRecord rejects an initial payment above the total outright. The
    system this replaces silently clamped such records to PAID; impossible
    payments are treated as input errors here instead.

Every function is pure. The caller persists whatever comes back.
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TOTALS
// =============================================================================

// ComputeTotals sums the charge components and applies discount and tax:
//
//	subtotal = sum(components)
//	total    = subtotal - discount + tax
//
// The charge set is validated first; a negative component, discount, or
// tax yields an InvalidChargeError.
func ComputeTotals(cs *ChargeSet) (Totals, error) {
	if err := cs.Validate(); err != nil {
		return Totals{}, err
	}

	subtotal := decimal.Zero
	for _, c := range cs.Components {
		subtotal = subtotal.Add(c.Amount)
	}

	return Totals{
		Subtotal: subtotal,
		Total:    subtotal.Sub(cs.Discount).Add(cs.Tax),
	}, nil
}

// =============================================================================
// STATUS DERIVATION
// =============================================================================

// DeriveStatus computes payment status and outstanding balance from the
// total and the cumulative amount paid.
//
//	paid <= 0      -> UNPAID, balance = total
//	paid >= total  -> PAID,   balance = 0 (overpayment clamped here only)
//	otherwise      -> PARTIAL, balance = total - paid
func DeriveStatus(total, paid decimal.Decimal) (Status, decimal.Decimal) {
	switch {
	case !paid.IsPositive():
		return StatusUnpaid, total
	case paid.GreaterThanOrEqual(total):
		return StatusPaid, decimal.Zero
	default:
		return StatusPartial, total.Sub(paid)
	}
}

// =============================================================================
// CREATION
// =============================================================================

// NewRecord builds a record from a charge set and an optional initial
// payment. The identifier is left empty; callers mint one via Next at
// first save.
//
// Rejections (all ErrInvalidBillTotal unless noted):
//   - total <= 0
//   - initialPaid < 0 (ErrInvalidPayment)
//   - initialPaid > total
func NewRecord(cs *ChargeSet, initialPaid decimal.Decimal) (Record, error) {
	totals, err := ComputeTotals(cs)
	if err != nil {
		return Record{}, err
	}

	if !totals.Total.IsPositive() {
		return Record{}, &InvalidTotalError{Total: totals.Total, Paid: initialPaid}
	}
	if initialPaid.IsNegative() {
		return Record{}, &InvalidPaymentError{Requested: initialPaid, Balance: totals.Total}
	}
	if initialPaid.GreaterThan(totals.Total) {
		return Record{}, &InvalidTotalError{Total: totals.Total, Paid: initialPaid}
	}

	status, balance := DeriveStatus(totals.Total, initialPaid)
	return Record{
		Charges:    *cs,
		Subtotal:   totals.Subtotal,
		Total:      totals.Total,
		AmountPaid: initialPaid,
		Balance:    balance,
		Status:     status,
	}, nil
}

// Recompute rebuilds the derived fields after the charges of an existing
// record changed (a bill update). The amount already paid is carried over
// unchanged; the new total must still be positive. Unlike NewRecord, a
// paid amount above the new total is allowed and clamps to PAID - charges
// shrinking below money already collected is a real situation an update
// must tolerate.
func Recompute(rec Record, cs *ChargeSet) (Record, error) {
	totals, err := ComputeTotals(cs)
	if err != nil {
		return Record{}, err
	}
	if !totals.Total.IsPositive() {
		return Record{}, &InvalidTotalError{Total: totals.Total, Paid: rec.AmountPaid}
	}

	rec.Charges = *cs
	rec.Subtotal = totals.Subtotal
	rec.Total = totals.Total
	rec.Status, rec.Balance = DeriveStatus(rec.Total, rec.AmountPaid)
	return rec, nil
}

// =============================================================================
// PAYMENT RECORDING
// =============================================================================

// RecordPayment applies an incremental payment to a record and returns the
// updated copy. The payment must be positive and must not exceed the
// outstanding balance; a fully paid record therefore accepts no further
// payments.
func RecordPayment(rec Record, payment decimal.Decimal) (Record, error) {
	if !payment.IsPositive() {
		return Record{}, &InvalidPaymentError{Requested: payment, Balance: rec.Balance}
	}
	if payment.GreaterThan(rec.Balance) {
		return Record{}, &InvalidPaymentError{Requested: payment, Balance: rec.Balance}
	}

	rec.AmountPaid = rec.AmountPaid.Add(payment)
	rec.Status, rec.Balance = DeriveStatus(rec.Total, rec.AmountPaid)
	return rec, nil
}
