/*
Package payroll implements monthly employee salaries on top of the ledger
core. A salary is the same ledger record shape as a bill: basic pay and
bonus are the charge components, deductions take the discount slot, and
the pay-out path is an incremental payment bounded by the balance due.
One salary exists per employee per month; the store enforces that.
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborview/backoffice/ledger"
)

// Salary is one employee's pay record for one month. Month is normalized
// to the first day of the month.
type Salary struct {
	SalaryNumber string
	EmployeeID   string
	Month        time.Time

	BasicSalary decimal.Decimal
	Bonus       decimal.Decimal
	Deductions  decimal.Decimal

	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	Balance    decimal.Decimal
	Status     ledger.Status

	// PaymentDate is set when the salary reaches PAID.
	PaymentDate *time.Time
	Notes       string
	CreatedAt   time.Time
}

func (s Salary) chargeSet() *ledger.ChargeSet {
	cs := ledger.NewChargeSet().
		Add("basic_salary", s.BasicSalary).
		Add("bonus", s.Bonus)
	cs.Discount = s.Deductions
	return cs
}

// New builds a salary for an employee and month. Deductions at or above
// basic+bonus produce a non-positive total and are rejected, as is a
// negative component.
func New(employeeID string, month time.Time, basic, bonus, deductions decimal.Decimal) (Salary, error) {
	s := Salary{
		EmployeeID:  employeeID,
		Month:       time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location()),
		BasicSalary: basic,
		Bonus:       bonus,
		Deductions:  deductions,
	}

	rec, err := ledger.NewRecord(s.chargeSet(), decimal.Zero)
	if err != nil {
		return Salary{}, err
	}

	s.Total = rec.Total
	s.AmountPaid = rec.AmountPaid
	s.Balance = rec.Balance
	s.Status = rec.Status
	return s, nil
}

// WithPayment applies one pay-out and returns the updated copy. When the
// salary reaches PAID the payment date is stamped.
func (s Salary) WithPayment(amount decimal.Decimal, paidOn time.Time) (Salary, error) {
	rec := ledger.Record{
		Identifier: s.SalaryNumber,
		Total:      s.Total,
		AmountPaid: s.AmountPaid,
		Balance:    s.Balance,
		Status:     s.Status,
	}

	rec, err := ledger.RecordPayment(rec, amount)
	if err != nil {
		return Salary{}, err
	}

	s.AmountPaid = rec.AmountPaid
	s.Balance = rec.Balance
	s.Status = rec.Status
	if s.Status == ledger.StatusPaid {
		d := paidOn
		s.PaymentDate = &d
	}
	return s, nil
}

// Stats summarizes a payroll run (typically one month's salaries).
type Stats struct {
	TotalSalaries int
	Paid          int
	Unpaid        int
	Partial       int

	TotalPayroll decimal.Decimal
	TotalPaidOut decimal.Decimal
	Outstanding  decimal.Decimal
}

func Summarize(salaries []Salary) Stats {
	st := Stats{
		TotalPayroll: decimal.Zero,
		TotalPaidOut: decimal.Zero,
		Outstanding:  decimal.Zero,
	}
	for _, s := range salaries {
		st.TotalSalaries++
		switch s.Status {
		case ledger.StatusPaid:
			st.Paid++
		case ledger.StatusPartial:
			st.Partial++
		default:
			st.Unpaid++
		}
		st.TotalPayroll = st.TotalPayroll.Add(s.Total)
		st.TotalPaidOut = st.TotalPaidOut.Add(s.AmountPaid)
		st.Outstanding = st.Outstanding.Add(s.Balance)
	}
	return st
}
