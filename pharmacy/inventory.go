/*
Package pharmacy tracks the medicine inventory: stock levels, reorder
flags, expiry, and the purchase/selling price spread. Stock moves through
two paths only - receiving a purchase and dispensing against a bill - and
can never go below zero.
*/
package pharmacy

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientStock is returned when a dispense exceeds what is on hand.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNonPositiveQuantity is returned for zero or negative stock movements.
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
)

// Medicine is one inventory line. MedicineID is a sequential MED-NNNNN
// code minted by the store.
type Medicine struct {
	MedicineID    string
	Name          string
	Category      string
	Manufacturer  string
	Description   string
	StockQuantity int
	Unit          string
	ExpiryDate    time.Time
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	ReorderLevel  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock reports whether the medicine is at or below its reorder level.
func (m Medicine) IsLowStock() bool {
	return m.StockQuantity <= m.ReorderLevel
}

// IsExpired reports whether the medicine is past its expiry date as of asOf.
func (m Medicine) IsExpired(asOf time.Time) bool {
	return m.ExpiryDate.Before(asOf)
}

// ProfitMargin returns the selling margin as a percentage of the purchase
// price, or zero when the purchase price is zero.
func (m Medicine) ProfitMargin() decimal.Decimal {
	if !m.PurchasePrice.IsPositive() {
		return decimal.Zero
	}
	return m.SellingPrice.Sub(m.PurchasePrice).
		Div(m.PurchasePrice).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// StockValue returns the on-hand inventory value at purchase price.
func (m Medicine) StockValue() decimal.Decimal {
	return m.PurchasePrice.Mul(decimal.NewFromInt(int64(m.StockQuantity)))
}

// Receive adds delivered stock and returns the updated copy.
func (m Medicine) Receive(qty int) (Medicine, error) {
	if qty <= 0 {
		return Medicine{}, ErrNonPositiveQuantity
	}
	m.StockQuantity += qty
	return m, nil
}

// Dispense removes stock and returns the updated copy. Stock never goes
// negative; a dispense beyond what is on hand is rejected whole, not
// partially filled.
func (m Medicine) Dispense(qty int) (Medicine, error) {
	if qty <= 0 {
		return Medicine{}, ErrNonPositiveQuantity
	}
	if qty > m.StockQuantity {
		return Medicine{}, ErrInsufficientStock
	}
	m.StockQuantity -= qty
	return m, nil
}

// Stats is the inventory dashboard summary.
type Stats struct {
	TotalMedicines int
	LowStock       int
	Expired        int
	StockValuation decimal.Decimal
}

func Summarize(meds []Medicine, asOf time.Time) Stats {
	s := Stats{StockValuation: decimal.Zero}
	for _, m := range meds {
		s.TotalMedicines++
		if m.IsLowStock() {
			s.LowStock++
		}
		if m.IsExpired(asOf) {
			s.Expired++
		}
		s.StockValuation = s.StockValuation.Add(m.StockValue())
	}
	return s
}
