package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborview/backoffice/ledger"
	"github.com/harborview/backoffice/payroll"
)

// =============================================================================
// SALARIES
// =============================================================================

const salaryColumns = `salary_number, employee_id, month, basic_salary, bonus,
	deductions, total_amount, amount_paid, balance, status, payment_date,
	notes, created_at`

// ErrDuplicateSalaryMonth is returned when a salary already exists for
// the employee and month.
var ErrDuplicateSalaryMonth = fmt.Errorf("salary already exists for this employee and month")

// CreateSalary persists a salary record, minting its SAL number. The
// employee+month uniqueness constraint surfaces as ErrDuplicateSalaryMonth.
func (s *Store) CreateSalary(ctx context.Context, sal payroll.Salary) (payroll.Salary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sal.CreatedAt = time.Now().UTC()

	// Check the employee+month constraint up front so the identifier
	// retry loop only ever sees salary_number collisions.
	var existing int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM salaries WHERE employee_id = ? AND month = ?",
		sal.EmployeeID, fmtTime(sal.Month),
	).Scan(&existing)
	if err != nil {
		return payroll.Salary{}, err
	}
	if existing > 0 {
		return payroll.Salary{}, ErrDuplicateSalaryMonth
	}

	number, err := s.createWithIdentifier(ctx, ledger.DomainSalary, "salaries", "salary_number", func(id string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO salaries (`+salaryColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, sal.EmployeeID, fmtTime(sal.Month),
			sal.BasicSalary.String(), sal.Bonus.String(), sal.Deductions.String(),
			sal.Total.String(), sal.AmountPaid.String(), sal.Balance.String(),
			string(sal.Status), nullTime(sal.PaymentDate), nullString(sal.Notes),
			fmtTime(sal.CreatedAt),
		)
		return err
	})
	if err != nil {
		return payroll.Salary{}, err
	}

	sal.SalaryNumber = number
	return sal, nil
}

// GetSalary returns a salary by number, or nil if absent.
func (s *Store) GetSalary(ctx context.Context, salaryNumber string) (*payroll.Salary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+salaryColumns+" FROM salaries WHERE salary_number = ?", salaryNumber)

	sal, err := scanSalary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sal, nil
}

// ListSalaries returns salaries newest month first. A zero month lists
// everything; otherwise only that month's run.
func (s *Store) ListSalaries(ctx context.Context, month time.Time) ([]payroll.Salary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + salaryColumns + " FROM salaries"
	var args []any
	if !month.IsZero() {
		first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
		query += " WHERE month = ?"
		args = append(args, fmtTime(first))
	}
	query += " ORDER BY month DESC, salary_number ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query salaries: %w", err)
	}
	defer rows.Close()

	var sals []payroll.Salary
	for rows.Next() {
		sal, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		sals = append(sals, sal)
	}
	return sals, rows.Err()
}

// PaySalary applies one pay-out to a salary record.
func (s *Store) PaySalary(ctx context.Context, salaryNumber string, amount decimal.Decimal) (payroll.Salary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+salaryColumns+" FROM salaries WHERE salary_number = ?", salaryNumber)
	sal, err := scanSalary(row)
	if err == sql.ErrNoRows {
		return payroll.Salary{}, ErrNotFound
	}
	if err != nil {
		return payroll.Salary{}, err
	}

	updated, err := sal.WithPayment(amount, time.Now().UTC())
	if err != nil {
		return payroll.Salary{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE salaries SET amount_paid = ?, balance = ?, status = ?, payment_date = ?
		WHERE salary_number = ?`,
		updated.AmountPaid.String(), updated.Balance.String(),
		string(updated.Status), nullTime(updated.PaymentDate), salaryNumber,
	)
	if err != nil {
		return payroll.Salary{}, err
	}
	return updated, nil
}

func scanSalary(row rowScanner) (payroll.Salary, error) {
	var sal payroll.Salary
	var month, basic, bonus, deductions, total, paid, balance, status string
	var paymentDate, notes sql.NullString
	var createdAt string

	err := row.Scan(&sal.SalaryNumber, &sal.EmployeeID, &month,
		&basic, &bonus, &deductions, &total, &paid, &balance,
		&status, &paymentDate, &notes, &createdAt)
	if err != nil {
		return payroll.Salary{}, err
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&sal.BasicSalary, basic},
		{&sal.Bonus, bonus},
		{&sal.Deductions, deductions},
		{&sal.Total, total},
		{&sal.AmountPaid, paid},
		{&sal.Balance, balance},
	}
	for _, f := range fields {
		if *f.dst, err = parseDecimal(f.src); err != nil {
			return payroll.Salary{}, err
		}
	}

	sal.Month = parseTime(month)
	sal.Status = ledger.Status(status)
	if paymentDate.Valid {
		t := parseTime(paymentDate.String)
		sal.PaymentDate = &t
	}
	sal.Notes = notes.String
	sal.CreatedAt = parseTime(createdAt)
	return sal, nil
}
