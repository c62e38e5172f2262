/*
Package billing implements patient bills on top of the ledger core.

PURPOSE:
  A bill is a ChargeSet with the four charge slots the hospital front desk
  fills in (consultation, medicine, lab, other) plus discount and tax, tied
  to a patient and paid down over time. All arithmetic and validation comes
  from the ledger package; this package only names the fields and carries
  the bill-specific bookkeeping (notes, payment audit trail, timestamps).

SEE ALSO:
  - ledger: totals, status derivation, payment rules
  - stats.go: dashboard aggregates over bills
*/
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborview/backoffice/ledger"
)

// =============================================================================
// CHARGES - The bill-shaped ChargeSet
// =============================================================================

// Charges holds the raw billable amounts for one bill.
type Charges struct {
	ConsultationFee decimal.Decimal
	MedicineCharges decimal.Decimal
	LabCharges      decimal.Decimal
	OtherCharges    decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
}

// ChargeSet maps the named slots onto the ledger's ordered charge set.
func (c Charges) ChargeSet() *ledger.ChargeSet {
	cs := ledger.NewChargeSet().
		Add("consultation_fee", c.ConsultationFee).
		Add("medicine_charges", c.MedicineCharges).
		Add("lab_charges", c.LabCharges).
		Add("other_charges", c.OtherCharges)
	cs.Discount = c.Discount
	cs.Tax = c.Tax
	return cs
}

// =============================================================================
// BILL
// =============================================================================

// Bill is one patient bill. BillNumber is empty until the store mints it
// at first save.
type Bill struct {
	BillNumber string
	PatientID  string
	Charges    Charges

	Subtotal   decimal.Decimal
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	Balance    decimal.Decimal
	Status     ledger.Status

	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New validates the charges and optional initial payment and returns a
// bill with all derived fields set. When an initial payment is taken, the
// payment method is appended to the notes the way the front desk expects
// to see it on the printed bill.
func New(patientID string, charges Charges, initialPaid decimal.Decimal, paymentMethod, notes string) (Bill, error) {
	rec, err := ledger.NewRecord(charges.ChargeSet(), initialPaid)
	if err != nil {
		return Bill{}, err
	}

	if paymentMethod != "" && initialPaid.IsPositive() {
		note := fmt.Sprintf("Initial payment: %s via %s", initialPaid.StringFixed(2), paymentMethod)
		if notes != "" {
			notes += "\n"
		}
		notes += note
	}

	return Bill{
		PatientID:  patientID,
		Charges:    charges,
		Subtotal:   rec.Subtotal,
		Total:      rec.Total,
		AmountPaid: rec.AmountPaid,
		Balance:    rec.Balance,
		Status:     rec.Status,
		Notes:      notes,
	}, nil
}

// WithCharges returns a copy of the bill with replaced charges and
// recomputed derived fields. The amount already paid carries over.
func (b Bill) WithCharges(charges Charges) (Bill, error) {
	rec, err := ledger.Recompute(b.record(), charges.ChargeSet())
	if err != nil {
		return Bill{}, err
	}
	b.Charges = charges
	return b.apply(rec), nil
}

// WithPayment returns a copy of the bill with one more payment applied.
// Rejections come straight from ledger.RecordPayment.
func (b Bill) WithPayment(amount decimal.Decimal) (Bill, error) {
	rec, err := ledger.RecordPayment(b.record(), amount)
	if err != nil {
		return Bill{}, err
	}
	return b.apply(rec), nil
}

func (b Bill) record() ledger.Record {
	return ledger.Record{
		Identifier: b.BillNumber,
		Charges:    *b.Charges.ChargeSet(),
		Subtotal:   b.Subtotal,
		Total:      b.Total,
		AmountPaid: b.AmountPaid,
		Balance:    b.Balance,
		Status:     b.Status,
	}
}

func (b Bill) apply(rec ledger.Record) Bill {
	b.Subtotal = rec.Subtotal
	b.Total = rec.Total
	b.AmountPaid = rec.AmountPaid
	b.Balance = rec.Balance
	b.Status = rec.Status
	return b
}

// =============================================================================
// PAYMENT - Audit row for every recorded payment
// =============================================================================

// Payment is one recorded payment against a bill. ID is a uuid assigned
// by the store; the bill itself only carries the cumulative AmountPaid.
type Payment struct {
	ID         string
	BillNumber string
	Amount     decimal.Decimal
	Method     string
	RecordedAt time.Time
}
