package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborview/backoffice/ledger"
)

// Stats is the dashboard summary computed over a set of bills.
type Stats struct {
	TotalBills   int
	PaidBills    int
	UnpaidBills  int
	PartialBills int

	TotalBilled    decimal.Decimal
	TotalCollected decimal.Decimal
	Outstanding    decimal.Decimal

	// Per-component revenue breakdown across all bills.
	ConsultationTotal decimal.Decimal
	MedicineTotal     decimal.Decimal
	LabTotal          decimal.Decimal
	OtherTotal        decimal.Decimal
}

// Summarize computes Stats over bills. Outstanding sums balances rather
// than subtracting collected from billed, so overpaid legacy records do
// not drive the number negative.
func Summarize(bills []Bill) Stats {
	s := Stats{
		TotalBilled:       decimal.Zero,
		TotalCollected:    decimal.Zero,
		Outstanding:       decimal.Zero,
		ConsultationTotal: decimal.Zero,
		MedicineTotal:     decimal.Zero,
		LabTotal:          decimal.Zero,
		OtherTotal:        decimal.Zero,
	}

	for _, b := range bills {
		s.TotalBills++
		switch b.Status {
		case ledger.StatusPaid:
			s.PaidBills++
		case ledger.StatusPartial:
			s.PartialBills++
		default:
			s.UnpaidBills++
		}

		s.TotalBilled = s.TotalBilled.Add(b.Total)
		s.TotalCollected = s.TotalCollected.Add(b.AmountPaid)
		s.Outstanding = s.Outstanding.Add(b.Balance)

		s.ConsultationTotal = s.ConsultationTotal.Add(b.Charges.ConsultationFee)
		s.MedicineTotal = s.MedicineTotal.Add(b.Charges.MedicineCharges)
		s.LabTotal = s.LabTotal.Add(b.Charges.LabCharges)
		s.OtherTotal = s.OtherTotal.Add(b.Charges.OtherCharges)
	}
	return s
}

// DailySummary is the per-day billing report.
type DailySummary struct {
	Date  time.Time
	Stats Stats
}

// SummarizeDay filters bills created on the given calendar day (in day's
// location) and summarizes them.
func SummarizeDay(bills []Bill, day time.Time) DailySummary {
	y, m, d := day.Date()
	var dayBills []Bill
	for _, b := range bills {
		by, bm, bd := b.CreatedAt.In(day.Location()).Date()
		if by == y && bm == m && bd == d {
			dayBills = append(dayBills, b)
		}
	}
	return DailySummary{Date: time.Date(y, m, d, 0, 0, 0, 0, day.Location()), Stats: Summarize(dayBills)}
}
