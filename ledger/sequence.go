/*
sequence.go - Sequential human-readable identifier generation

PURPOSE:
  Every record class in the back office carries a reference code a human
  can read over the phone: BILL-00001, DOC-001, PO-00007. This file mints
  the next code in a per-domain sequence.

DESIGN:
  Next is a pure function. Instead of reading "the last bill" itself, it
  takes the last issued identifier and the current record count as explicit
  arguments, so the sequencer is testable without a persistence fixture and
  the store decides how those inputs are loaded and serialized.

FALLBACK:
  Legacy data contains identifiers that do not parse. Rather than failing
  the creation of a new record over an old corrupt one, Next falls back to
  count+1. That can collide with an existing code, so creation paths
  re-check uniqueness and retry with an incremented count (see the store's
  identifier retry loop).

SEE ALSO:
  - store/sqlite: LastIdentifier/CountRecords supply the inputs
*/
package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// DOMAINS - Prefix and width per record class
// =============================================================================

// Domain names a record class that owns an identifier sequence.
type Domain struct {
	Prefix string
	Width  int
}

// Identifier domains. Widths follow the legacy data: bills and the other
// high-volume classes use five digits, staff codes use three.
var (
	DomainBill          = Domain{Prefix: "BILL", Width: 5}
	DomainPatient       = Domain{Prefix: "PAT", Width: 5}
	DomainDoctor        = Domain{Prefix: "DOC", Width: 3}
	DomainEmployee      = Domain{Prefix: "EMP", Width: 3}
	DomainSalary        = Domain{Prefix: "SAL", Width: 5}
	DomainAppointment   = Domain{Prefix: "APT", Width: 5}
	DomainMedicine      = Domain{Prefix: "MED", Width: 5}
	DomainSupplier      = Domain{Prefix: "SUP", Width: 5}
	DomainPurchaseOrder = Domain{Prefix: "PO", Width: 5}
	DomainTransaction   = Domain{Prefix: "TXN", Width: 5}
	DomainAttendance    = Domain{Prefix: "ATT", Width: 5}
	DomainLeave         = Domain{Prefix: "LVE", Width: 5}
)

// Next mints the identifier for d given the store's state.
func (d Domain) Next(lastIssued string, existingCount int) string {
	return Next(d.Prefix, d.Width, lastIssued, existingCount)
}

// =============================================================================
// SEQUENCER
// =============================================================================

// Next returns the next identifier in the sequence PREFIX-N, zero-padded
// to width digits.
//
//	lastIssued == ""      -> PREFIX-000...1
//	lastIssued parseable  -> its number + 1
//	lastIssued malformed  -> existingCount + 1 (degraded, possibly
//	                         non-monotonic; caller re-checks uniqueness)
//
// Next never fails; the malformed case only degrades.
func Next(prefix string, width int, lastIssued string, existingCount int) string {
	if lastIssued == "" {
		return format(prefix, width, 1)
	}

	n, err := parseSuffix(prefix, lastIssued)
	if err != nil {
		return format(prefix, width, existingCount+1)
	}
	return format(prefix, width, n+1)
}

func format(prefix string, width, n int) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, n)
}

// parseSuffix extracts the numeric suffix of an identifier of the form
// PREFIX-N. Anything else yields ErrMalformedIdentifier.
func parseSuffix(prefix, id string) (int, error) {
	rest, ok := strings.CutPrefix(id, prefix+"-")
	if !ok {
		return 0, fmt.Errorf("%w: %q does not start with %q", ErrMalformedIdentifier, id, prefix+"-")
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q has a non-numeric suffix", ErrMalformedIdentifier, id)
	}
	return n, nil
}
