package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborview/backoffice/billing"
	"github.com/harborview/backoffice/ledger"
)

// ErrNotFound is returned by update and payment paths when the target
// record does not exist. Read paths return (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

// =============================================================================
// BILLS
// =============================================================================

const billColumns = `bill_number, patient_id, consultation_fee, medicine_charges,
	lab_charges, other_charges, discount, tax, subtotal, total_amount,
	amount_paid, balance, status, notes, created_at, updated_at`

// CreateBill persists a freshly built bill, minting its BILL number. When
// the bill carries an initial payment, an audit row is written with the
// given payment method.
func (s *Store) CreateBill(ctx context.Context, b billing.Bill, paymentMethod string) (billing.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	number, err := s.createWithIdentifier(ctx, ledger.DomainBill, "bills", "bill_number", func(id string) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO bills (`+billColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, b.PatientID,
			b.Charges.ConsultationFee.String(), b.Charges.MedicineCharges.String(),
			b.Charges.LabCharges.String(), b.Charges.OtherCharges.String(),
			b.Charges.Discount.String(), b.Charges.Tax.String(),
			b.Subtotal.String(), b.Total.String(),
			b.AmountPaid.String(), b.Balance.String(),
			string(b.Status), nullString(b.Notes),
			fmtTime(b.CreatedAt), fmtTime(b.UpdatedAt),
		)
		if err != nil {
			return err
		}

		if b.AmountPaid.IsPositive() {
			if err := insertBillPayment(ctx, tx, id, b.AmountPaid, paymentMethod, now); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return billing.Bill{}, err
	}

	b.BillNumber = number
	return b, nil
}

// GetBill returns a bill by number, or nil if it does not exist.
func (s *Store) GetBill(ctx context.Context, billNumber string) (*billing.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE bill_number = ?", billNumber)

	b, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBills returns bills newest first, optionally filtered by status.
func (s *Store) ListBills(ctx context.Context, status string) ([]billing.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + billColumns + " FROM bills"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []billing.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// UpdateBillCharges replaces a bill's charges and recomputes its derived
// fields, carrying the paid amount forward.
func (s *Store) UpdateBillCharges(ctx context.Context, billNumber string, charges billing.Charges) (billing.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.loadBill(ctx, billNumber)
	if err != nil {
		return billing.Bill{}, err
	}

	updated, err := b.WithCharges(charges)
	if err != nil {
		return billing.Bill{}, err
	}
	updated.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE bills SET consultation_fee = ?, medicine_charges = ?, lab_charges = ?,
			other_charges = ?, discount = ?, tax = ?, subtotal = ?, total_amount = ?,
			balance = ?, status = ?, updated_at = ?
		WHERE bill_number = ?`,
		updated.Charges.ConsultationFee.String(), updated.Charges.MedicineCharges.String(),
		updated.Charges.LabCharges.String(), updated.Charges.OtherCharges.String(),
		updated.Charges.Discount.String(), updated.Charges.Tax.String(),
		updated.Subtotal.String(), updated.Total.String(),
		updated.Balance.String(), string(updated.Status),
		fmtTime(updated.UpdatedAt), billNumber,
	)
	if err != nil {
		return billing.Bill{}, err
	}
	return updated, nil
}

// DeleteBill removes a bill and its payment audit rows.
func (s *Store) DeleteBill(ctx context.Context, billNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM bill_payments WHERE bill_number = ?", billNumber); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM bills WHERE bill_number = ?", billNumber)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// RecordBillPayment applies one payment to a bill under a SQL
// transaction: bill row update and audit row land together or not at all.
// Validation rejections come from the ledger core untouched.
func (s *Store) RecordBillPayment(ctx context.Context, billNumber string, amount decimal.Decimal, method string) (billing.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.loadBill(ctx, billNumber)
	if err != nil {
		return billing.Bill{}, err
	}

	updated, err := b.WithPayment(amount)
	if err != nil {
		return billing.Bill{}, err
	}
	now := time.Now().UTC()
	updated.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return billing.Bill{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE bills SET amount_paid = ?, balance = ?, status = ?, updated_at = ?
		WHERE bill_number = ?`,
		updated.AmountPaid.String(), updated.Balance.String(),
		string(updated.Status), fmtTime(now), billNumber,
	)
	if err != nil {
		return billing.Bill{}, err
	}

	if err := insertBillPayment(ctx, tx, billNumber, amount, method, now); err != nil {
		return billing.Bill{}, err
	}
	if err := tx.Commit(); err != nil {
		return billing.Bill{}, err
	}
	return updated, nil
}

// ListBillPayments returns the audit trail for one bill, oldest first.
func (s *Store) ListBillPayments(ctx context.Context, billNumber string) ([]billing.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bill_number, amount, method, recorded_at
		FROM bill_payments WHERE bill_number = ? ORDER BY recorded_at ASC`, billNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []billing.Payment
	for rows.Next() {
		var p billing.Payment
		var amount string
		var method sql.NullString
		var recordedAt string
		if err := rows.Scan(&p.ID, &p.BillNumber, &amount, &method, &recordedAt); err != nil {
			return nil, err
		}
		if p.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		p.Method = method.String
		p.RecordedAt = parseTime(recordedAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// =============================================================================
// INTERNAL
// =============================================================================

func (s *Store) loadBill(ctx context.Context, billNumber string) (billing.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE bill_number = ?", billNumber)

	b, err := scanBill(row)
	if err == sql.ErrNoRows {
		return billing.Bill{}, ErrNotFound
	}
	return b, err
}

func insertBillPayment(ctx context.Context, tx *sql.Tx, billNumber string, amount decimal.Decimal, method string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bill_payments (id, bill_number, amount, method, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), billNumber, amount.String(), nullString(method), fmtTime(at),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (billing.Bill, error) {
	var b billing.Bill
	var consultation, medicine, lab, other, discount, tax string
	var subtotal, total, paid, balance, status string
	var notes sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&b.BillNumber, &b.PatientID,
		&consultation, &medicine, &lab, &other, &discount, &tax,
		&subtotal, &total, &paid, &balance, &status, &notes,
		&createdAt, &updatedAt)
	if err != nil {
		return billing.Bill{}, err
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&b.Charges.ConsultationFee, consultation},
		{&b.Charges.MedicineCharges, medicine},
		{&b.Charges.LabCharges, lab},
		{&b.Charges.OtherCharges, other},
		{&b.Charges.Discount, discount},
		{&b.Charges.Tax, tax},
		{&b.Subtotal, subtotal},
		{&b.Total, total},
		{&b.AmountPaid, paid},
		{&b.Balance, balance},
	}
	for _, f := range fields {
		if *f.dst, err = parseDecimal(f.src); err != nil {
			return billing.Bill{}, err
		}
	}

	b.Status = ledger.Status(status)
	b.Notes = notes.String
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}
