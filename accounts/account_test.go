package accounts_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/backoffice/accounts"
	"github.com/harborview/backoffice/ledger"
)

func amt(s string) decimal.Decimal { return ledger.MustParseAmount(s) }

func TestPost_IncomeAdds(t *testing.T) {
	balance, err := accounts.Post(amt("1000.00"), accounts.Transaction{
		Type:     accounts.TxIncome,
		Category: "CONSULTATION",
		Amount:   amt("250.00"),
	})
	require.NoError(t, err)
	assert.True(t, balance.Equal(amt("1250.00")))
}

func TestPost_ExpenseSubtracts(t *testing.T) {
	balance, err := accounts.Post(amt("1000.00"), accounts.Transaction{
		Type:     accounts.TxExpense,
		Category: "UTILITY",
		Amount:   amt("250.00"),
	})
	require.NoError(t, err)
	assert.True(t, balance.Equal(amt("750.00")))
}

func TestPost_AllowsNegativeBalance(t *testing.T) {
	balance, err := accounts.Post(amt("100.00"), accounts.Transaction{
		Type:     accounts.TxExpense,
		Category: "RENT",
		Amount:   amt("250.00"),
	})
	require.NoError(t, err)
	assert.True(t, balance.Equal(amt("-150.00")))
}

func TestPost_NonPositiveAmount_Rejected(t *testing.T) {
	_, err := accounts.Post(decimal.Zero, accounts.Transaction{
		Type:   accounts.TxIncome,
		Amount: decimal.Zero,
	})
	assert.ErrorIs(t, err, accounts.ErrNonPositiveAmount)
}

func TestPost_UnknownType_Rejected(t *testing.T) {
	_, err := accounts.Post(decimal.Zero, accounts.Transaction{
		Type:     "REFUND",
		Category: "OTHER_INCOME",
		Amount:   amt("10.00"),
	})
	assert.ErrorIs(t, err, accounts.ErrUnknownTransactionType)
}

func TestPost_UnknownCategory_Rejected(t *testing.T) {
	_, err := accounts.Post(decimal.Zero, accounts.Transaction{
		Type:     accounts.TxIncome,
		Category: "LOTTERY",
		Amount:   amt("10.00"),
	})
	assert.ErrorIs(t, err, accounts.ErrUnknownCategory)
}

func TestValidCategory(t *testing.T) {
	assert.True(t, accounts.ValidCategory("SALARY"))
	assert.True(t, accounts.ValidCategory(accounts.CategoryTransfer))
	assert.False(t, accounts.ValidCategory("LOTTERY"))
	assert.False(t, accounts.ValidCategory(""))
}

func TestTransferLegs(t *testing.T) {
	out, in, err := accounts.TransferLegs(accounts.Transaction{
		TransactionID:  "TXN-00042",
		AccountNumber:  "CASH-01",
		CounterAccount: "BANK-01",
		Type:           accounts.TxTransfer,
		Amount:         amt("5000.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, accounts.TxExpense, out.Type)
	assert.Equal(t, "CASH-01", out.AccountNumber)
	assert.Equal(t, "TXN-00042-OUT", out.TransactionID)

	assert.Equal(t, accounts.TxIncome, in.Type)
	assert.Equal(t, "BANK-01", in.AccountNumber)
	assert.Equal(t, "CASH-01", in.CounterAccount)
	assert.Equal(t, "TXN-00042-IN", in.TransactionID)
}

func TestTransferLegs_NonTransfer_Rejected(t *testing.T) {
	_, _, err := accounts.TransferLegs(accounts.Transaction{
		Type:   accounts.TxIncome,
		Amount: amt("10.00"),
	})
	assert.ErrorIs(t, err, accounts.ErrUnknownTransactionType)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)
	accts := []accounts.Account{
		{AccountNumber: "BANK-01", Balance: amt("100000.00"), Status: accounts.AccountActive},
		{AccountNumber: "CASH-01", Balance: amt("2500.00"), Status: accounts.AccountActive},
		{AccountNumber: "OLD-01", Balance: amt("9999.00"), Status: accounts.AccountClosed},
	}
	txs := []accounts.Transaction{
		{Type: accounts.TxIncome, Amount: amt("1200.00"), Date: now},
		{Type: accounts.TxExpense, Amount: amt("300.00"), Date: now.AddDate(0, 0, -5)},
		{Type: accounts.TxIncome, Amount: amt("9000.00"), Date: now.AddDate(0, -1, 0)}, // last month
	}

	s := accounts.Summarize(accts, txs, now)

	assert.Equal(t, 2, s.ActiveAccounts)
	assert.True(t, s.TotalBalance.Equal(amt("102500.00")), "closed accounts excluded")
	assert.True(t, s.MonthlyIncome.Equal(amt("1200.00")))
	assert.True(t, s.MonthlyExpense.Equal(amt("300.00")))
}

func TestSummarize_IgnoresTransferLegs(t *testing.T) {
	now := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)
	accts := []accounts.Account{
		{AccountNumber: "BANK-01", Balance: amt("10000.00"), Status: accounts.AccountActive},
	}
	txs := []accounts.Transaction{
		{Type: accounts.TxIncome, Category: "ADMISSION", Amount: amt("700.00"), Date: now},
		// Both legs of a transfer between our own accounts.
		{Type: accounts.TxExpense, Category: accounts.CategoryTransfer, Amount: amt("5000.00"), Date: now},
		{Type: accounts.TxIncome, Category: accounts.CategoryTransfer, Amount: amt("5000.00"), Date: now},
	}

	s := accounts.Summarize(accts, txs, now)

	assert.True(t, s.MonthlyIncome.Equal(amt("700.00")), "transfer leg must not count as income")
	assert.True(t, s.MonthlyExpense.Equal(amt("0.00")), "transfer leg must not count as expense")
}
