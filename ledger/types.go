/*
Package ledger provides the billing/ledger computation core.

PURPOSE:
  This package contains the domain-agnostic arithmetic shared by patient
  bills, employee salaries, and financial-account transactions: summing a
  charge set into a total, deriving payment status and outstanding balance,
  validating payment recordings, and minting sequential human-readable
  identifiers (BILL-00001, DOC-001, ...).

KEY CONCEPTS IN THIS FILE (types.go):
  - ChargeSet: ordered named monetary components plus discount and tax
  - Totals: subtotal/total pair computed from a ChargeSet
  - Record: any entity whose balance and status derive from payments
  - Status: UNPAID / PARTIAL / PAID, always a pure function of (paid, total)

DESIGN PRINCIPLES:
  1. Purity: every operation is a function of its explicit arguments.
     Persistence, locking, and identifier uniqueness live with the caller.
  2. Precision: uses decimal.Decimal everywhere. Monetary totals are
     compared for equality against payment thresholds, so floating point
     is never acceptable.
  3. Two overpayment rules: creation clamps status at PAID but rejects an
     initial payment above the total; incremental payments are bounded by
     the outstanding balance. See compute.go.

USAGE:
  cs := ledger.NewChargeSet()
  cs.Add("consultation_fee", ledger.MustParseAmount("500.00"))
  rec, err := ledger.NewRecord(cs, decimal.Zero)

SEE ALSO:
  - compute.go: totals, status derivation, payment recording
  - sequence.go: sequential identifier generation
  - errors.go: validation error taxonomy
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS - Payment state of a ledger record
// =============================================================================

type Status string

const (
	StatusUnpaid  Status = "UNPAID"
	StatusPartial Status = "PARTIAL"
	StatusPaid    Status = "PAID"
)

// =============================================================================
// CHARGE SET - Named monetary components plus discount and tax
// =============================================================================

// Component is a single named line item. Amounts are always non-negative;
// reductions go through the Discount slot, never through a negative component.
type Component struct {
	Name   string
	Amount decimal.Decimal
}

// ChargeSet is the raw input to a total computation. Components keep their
// insertion order so bills render line items in the order they were entered.
type ChargeSet struct {
	Components []Component
	Discount   decimal.Decimal
	Tax        decimal.Decimal
}

func NewChargeSet() *ChargeSet {
	return &ChargeSet{}
}

// Add appends a named component. Existing names are not merged: a charge
// set is an ordered list, not a map.
func (cs *ChargeSet) Add(name string, amount decimal.Decimal) *ChargeSet {
	cs.Components = append(cs.Components, Component{Name: name, Amount: amount})
	return cs
}

// Component returns the amount for a named component, or zero if absent.
func (cs *ChargeSet) Component(name string) decimal.Decimal {
	for _, c := range cs.Components {
		if c.Name == name {
			return c.Amount
		}
	}
	return decimal.Zero
}

// Validate checks the charge-set invariant: every component, the discount,
// and the tax are all >= 0.
func (cs *ChargeSet) Validate() error {
	for _, c := range cs.Components {
		if c.Amount.IsNegative() {
			return &InvalidChargeError{Name: c.Name, Amount: c.Amount}
		}
	}
	if cs.Discount.IsNegative() {
		return &InvalidChargeError{Name: "discount", Amount: cs.Discount}
	}
	if cs.Tax.IsNegative() {
		return &InvalidChargeError{Name: "tax", Amount: cs.Tax}
	}
	return nil
}

// Totals is the result of ComputeTotals.
type Totals struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}

// =============================================================================
// RECORD - Derived payment state over a charge set
// =============================================================================

// Record holds the derived fields the persistence layer stores alongside a
// bill, salary, or transaction. The record is owned by its caller; this
// package only computes new values, it never mutates shared state.
type Record struct {
	Identifier string
	Charges    ChargeSet
	Subtotal   decimal.Decimal
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	Balance    decimal.Decimal
	Status     Status
}

// =============================================================================
// BOUNDARY PARSING - Amounts travel as decimal strings
// =============================================================================

// ParseAmount parses a monetary amount from its wire form (a decimal
// string) and normalizes it to two decimal places. Empty strings parse
// as zero so optional form fields need no special casing upstream.
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d.Round(2), nil
}

// MustParseAmount is ParseAmount for literals in tests and fixtures.
func MustParseAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}
