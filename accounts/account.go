/*
Package accounts implements the hospital's financial accounts and the
transaction-to-balance posting rule: INCOME adds to an account balance,
EXPENSE subtracts, TRANSFER moves between two accounts. Transactions are
append-only; the store applies postings and persists both sides of a
transfer atomically.

Negative balances are allowed. The cash drawer being overdrawn on paper
is an accounting fact to surface, not an input to reject.
*/
package accounts

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT
// =============================================================================

type AccountType string

const (
	TypeBank          AccountType = "BANK"
	TypeCash          AccountType = "CASH"
	TypeMobileBanking AccountType = "MOBILE_BANKING"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
	AccountClosed   AccountStatus = "CLOSED"
)

// Account is one place money sits. AccountNumber is supplied by the bank
// or the administrator, not minted by the sequencer.
type Account struct {
	AccountNumber string
	AccountName   string
	Type          AccountType
	BankName      string
	Branch        string
	Balance       decimal.Decimal
	Status        AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// =============================================================================
// TRANSACTION
// =============================================================================

type TransactionType string

const (
	TxIncome   TransactionType = "INCOME"
	TxExpense  TransactionType = "EXPENSE"
	TxTransfer TransactionType = "TRANSFER"
)

// CategoryTransfer marks the two legs of an internal transfer. Legs are
// bookkeeping rows, not revenue or spending, and the dashboard skips them.
const CategoryTransfer = "INTERNAL_TRANSFER"

// Categories follow the hospital's chart: income from care delivered,
// expenses from running the place.
var Categories = []string{
	"CONSULTATION", "MEDICINE_SALE", "LAB_TEST", "ADMISSION", "OTHER_INCOME",
	"SALARY", "PURCHASE", "UTILITY", "RENT", "MAINTENANCE",
	"MEDICINE_PURCHASE", "EQUIPMENT", "OTHER_EXPENSE",
	CategoryTransfer,
}

// ValidCategory reports whether c is in the chart of categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Transaction is one posting against an account. TransactionID is a
// sequential TXN-NNNNN code minted by the store at creation. For a
// TRANSFER, CounterAccount names the receiving account.
type Transaction struct {
	TransactionID  string
	AccountNumber  string
	CounterAccount string
	Type           TransactionType
	Category       string
	Amount         decimal.Decimal
	PaymentMethod  string
	Reference      string
	Description    string
	Date           time.Time
	CreatedAt      time.Time
}

// =============================================================================
// POSTING RULE
// =============================================================================

var (
	// ErrNonPositiveAmount is returned for a zero or negative transaction amount.
	ErrNonPositiveAmount = errors.New("transaction amount must be positive")

	// ErrUnknownTransactionType is returned for a type outside the enum.
	ErrUnknownTransactionType = errors.New("unknown transaction type")

	// ErrAccountNotActive is returned when posting to a closed or inactive account.
	ErrAccountNotActive = errors.New("account is not active")

	// ErrUnknownCategory is returned for a category outside the chart.
	ErrUnknownCategory = errors.New("unknown transaction category")
)

// Post applies a transaction to an account balance and returns the new
// balance. Pure; the store persists the result.
func Post(balance decimal.Decimal, tx Transaction) (decimal.Decimal, error) {
	if !tx.Amount.IsPositive() {
		return balance, ErrNonPositiveAmount
	}
	if !ValidCategory(tx.Category) {
		return balance, fmt.Errorf("%w: %q", ErrUnknownCategory, tx.Category)
	}
	switch tx.Type {
	case TxIncome:
		return balance.Add(tx.Amount), nil
	case TxExpense:
		return balance.Sub(tx.Amount), nil
	default:
		return balance, fmt.Errorf("%w: %q", ErrUnknownTransactionType, tx.Type)
	}
}

// TransferLegs splits a transfer into its expense and income legs so the
// store can post both sides under one database transaction. The legs
// share the transfer's TXN id with a suffix each.
func TransferLegs(tx Transaction) (out, in Transaction, err error) {
	if !tx.Amount.IsPositive() {
		return Transaction{}, Transaction{}, ErrNonPositiveAmount
	}
	if tx.Type != TxTransfer {
		return Transaction{}, Transaction{}, fmt.Errorf("%w: %q is not a transfer", ErrUnknownTransactionType, tx.Type)
	}

	out = tx
	out.Type = TxExpense
	out.TransactionID = tx.TransactionID + "-OUT"

	in = tx
	in.Type = TxIncome
	in.TransactionID = tx.TransactionID + "-IN"
	in.AccountNumber = tx.CounterAccount
	in.CounterAccount = tx.AccountNumber

	return out, in, nil
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Stats is the financial dashboard summary.
type Stats struct {
	TotalBalance   decimal.Decimal // across ACTIVE accounts only
	ActiveAccounts int
	MonthlyIncome  decimal.Decimal
	MonthlyExpense decimal.Decimal
}

// Summarize computes the dashboard numbers. Monthly sums cover
// transactions dated in the same calendar month as asOf.
func Summarize(accts []Account, txs []Transaction, asOf time.Time) Stats {
	s := Stats{
		TotalBalance:   decimal.Zero,
		MonthlyIncome:  decimal.Zero,
		MonthlyExpense: decimal.Zero,
	}

	for _, a := range accts {
		if a.Status == AccountActive {
			s.ActiveAccounts++
			s.TotalBalance = s.TotalBalance.Add(a.Balance)
		}
	}

	y, m, _ := asOf.Date()
	for _, tx := range txs {
		ty, tm, _ := tx.Date.Date()
		if ty != y || tm != m {
			continue
		}
		// Transfer legs shuffle money between our own accounts and
		// would count the same taka as both income and expense.
		if tx.Category == CategoryTransfer {
			continue
		}
		switch tx.Type {
		case TxIncome:
			s.MonthlyIncome = s.MonthlyIncome.Add(tx.Amount)
		case TxExpense:
			s.MonthlyExpense = s.MonthlyExpense.Add(tx.Amount)
		}
	}
	return s
}
