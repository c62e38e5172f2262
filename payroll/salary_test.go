package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/backoffice/ledger"
	"github.com/harborview/backoffice/payroll"
)

func amt(s string) decimal.Decimal { return ledger.MustParseAmount(s) }

var march = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func TestNew_TotalIsBasicPlusBonusMinusDeductions(t *testing.T) {
	s, err := payroll.New("EMP-001", march, amt("45000.00"), amt("5000.00"), amt("2500.00"))
	require.NoError(t, err)

	assert.True(t, s.Total.Equal(amt("47500.00")))
	assert.Equal(t, ledger.StatusUnpaid, s.Status)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), s.Month,
		"month normalizes to the first day")
}

func TestNew_DeductionsSwallowSalary_Rejected(t *testing.T) {
	_, err := payroll.New("EMP-001", march, amt("1000.00"), decimal.Zero, amt("1000.00"))
	assert.ErrorIs(t, err, ledger.ErrInvalidBillTotal)
}

func TestNew_NegativeBonus_Rejected(t *testing.T) {
	_, err := payroll.New("EMP-001", march, amt("1000.00"), amt("-100.00"), decimal.Zero)
	assert.ErrorIs(t, err, ledger.ErrInvalidCharge)
}

func TestWithPayment_FullPayStampsPaymentDate(t *testing.T) {
	s, err := payroll.New("EMP-001", march, amt("45000.00"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	payday := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	s, err = s.WithPayment(amt("45000.00"), payday)
	require.NoError(t, err)

	assert.Equal(t, ledger.StatusPaid, s.Status)
	require.NotNil(t, s.PaymentDate)
	assert.Equal(t, payday, *s.PaymentDate)
}

func TestWithPayment_PartialLeavesPaymentDateUnset(t *testing.T) {
	s, err := payroll.New("EMP-001", march, amt("45000.00"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	s, err = s.WithPayment(amt("20000.00"), march)
	require.NoError(t, err)

	assert.Equal(t, ledger.StatusPartial, s.Status)
	assert.Nil(t, s.PaymentDate)
	assert.True(t, s.Balance.Equal(amt("25000.00")))
}

func TestWithPayment_ExceedsBalance_Rejected(t *testing.T) {
	s, err := payroll.New("EMP-001", march, amt("45000.00"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	_, err = s.WithPayment(amt("45000.01"), march)
	assert.ErrorIs(t, err, ledger.ErrInvalidPayment)
}

func TestSummarize(t *testing.T) {
	a, err := payroll.New("EMP-001", march, amt("40000.00"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	b, err := payroll.New("EMP-002", march, amt("30000.00"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	b, err = b.WithPayment(amt("30000.00"), march)
	require.NoError(t, err)

	st := payroll.Summarize([]payroll.Salary{a, b})

	assert.Equal(t, 2, st.TotalSalaries)
	assert.Equal(t, 1, st.Paid)
	assert.Equal(t, 1, st.Unpaid)
	assert.True(t, st.TotalPayroll.Equal(amt("70000.00")))
	assert.True(t, st.Outstanding.Equal(amt("40000.00")))
}
