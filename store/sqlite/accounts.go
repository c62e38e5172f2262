package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborview/backoffice/accounts"
	"github.com/harborview/backoffice/ledger"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

const accountColumns = `account_number, account_name, account_type, bank_name,
	branch, balance, status, created_at, updated_at`

// ErrDuplicateAccount is returned when the account number is already taken.
var ErrDuplicateAccount = fmt.Errorf("account number already exists")

// CreateAccount persists a new account. Account numbers come from the
// bank or the administrator, so no sequencer here - just the uniqueness
// constraint.
func (s *Store) CreateAccount(ctx context.Context, a accounts.Account) (accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = accounts.AccountActive
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.AccountNumber, a.AccountName, string(a.Type),
		nullString(a.BankName), nullString(a.Branch),
		a.Balance.String(), string(a.Status),
		fmtTime(a.CreatedAt), fmtTime(a.UpdatedAt),
	)
	if isUniqueConstraintError(err) {
		return accounts.Account{}, ErrDuplicateAccount
	}
	if err != nil {
		return accounts.Account{}, err
	}
	return a, nil
}

// GetAccount returns an account by number, or nil if absent.
func (s *Store) GetAccount(ctx context.Context, accountNumber string) (*accounts.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE account_number = ?", accountNumber)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAccounts returns all accounts, newest first.
func (s *Store) ListAccounts(ctx context.Context) ([]accounts.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accts []accounts.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accts = append(accts, a)
	}
	return accts, rows.Err()
}

// =============================================================================
// TRANSACTIONS - Posting and transfers
// =============================================================================

const txColumns = `transaction_id, account_number, counter_account, tx_type,
	category, amount, payment_method, reference, description, tx_date, created_at`

// PostTransaction mints a TXN id, applies the posting rule to the account
// balance, and persists both under one SQL transaction. Only INCOME and
// EXPENSE go through here; use Transfer for transfers.
func (s *Store) PostTransaction(ctx context.Context, tx accounts.Transaction) (accounts.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, err := s.loadAccount(ctx, tx.AccountNumber)
	if err != nil {
		return accounts.Transaction{}, err
	}
	if acct.Status != accounts.AccountActive {
		return accounts.Transaction{}, accounts.ErrAccountNotActive
	}

	newBalance, err := accounts.Post(acct.Balance, tx)
	if err != nil {
		return accounts.Transaction{}, err
	}

	now := time.Now().UTC()
	tx.CreatedAt = now
	if tx.Date.IsZero() {
		tx.Date = now
	}

	id, err := s.createWithIdentifier(ctx, ledger.DomainTransaction, "transactions", "transaction_id", func(id string) error {
		sqlTx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer sqlTx.Rollback()

		if err := insertTransaction(ctx, sqlTx, id, tx); err != nil {
			return err
		}
		if err := updateBalance(ctx, sqlTx, tx.AccountNumber, newBalance, now); err != nil {
			return err
		}
		return sqlTx.Commit()
	})
	if err != nil {
		return accounts.Transaction{}, err
	}

	tx.TransactionID = id
	return tx, nil
}

// Transfer moves money between two accounts: one TXN id, two legs, both
// balance updates in a single SQL transaction.
func (s *Store) Transfer(ctx context.Context, tx accounts.Transaction) (accounts.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, err := s.loadAccount(ctx, tx.AccountNumber)
	if err != nil {
		return accounts.Transaction{}, err
	}
	to, err := s.loadAccount(ctx, tx.CounterAccount)
	if err != nil {
		return accounts.Transaction{}, err
	}
	if from.Status != accounts.AccountActive || to.Status != accounts.AccountActive {
		return accounts.Transaction{}, accounts.ErrAccountNotActive
	}

	now := time.Now().UTC()
	tx.CreatedAt = now
	if tx.Date.IsZero() {
		tx.Date = now
	}

	id, err := s.createWithIdentifier(ctx, ledger.DomainTransaction, "transactions", "transaction_id", func(id string) error {
		legTx := tx
		legTx.TransactionID = id
		out, in, err := accounts.TransferLegs(legTx)
		if err != nil {
			return err
		}

		fromBalance, err := accounts.Post(from.Balance, out)
		if err != nil {
			return err
		}
		toBalance, err := accounts.Post(to.Balance, in)
		if err != nil {
			return err
		}

		sqlTx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer sqlTx.Rollback()

		if err := insertTransaction(ctx, sqlTx, out.TransactionID, out); err != nil {
			return err
		}
		if err := insertTransaction(ctx, sqlTx, in.TransactionID, in); err != nil {
			return err
		}
		if err := updateBalance(ctx, sqlTx, out.AccountNumber, fromBalance, now); err != nil {
			return err
		}
		if err := updateBalance(ctx, sqlTx, in.AccountNumber, toBalance, now); err != nil {
			return err
		}
		return sqlTx.Commit()
	})
	if err != nil {
		return accounts.Transaction{}, err
	}

	tx.TransactionID = id
	return tx, nil
}

// ListTransactions returns transactions newest first, optionally scoped
// to one account.
func (s *Store) ListTransactions(ctx context.Context, accountNumber string) ([]accounts.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + txColumns + " FROM transactions"
	var args []any
	if accountNumber != "" {
		query += " WHERE account_number = ?"
		args = append(args, accountNumber)
	}
	query += " ORDER BY tx_date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []accounts.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// AccountStats computes the financial dashboard as of now.
func (s *Store) AccountStats(ctx context.Context, asOf time.Time) (accounts.Stats, error) {
	accts, err := s.ListAccounts(ctx)
	if err != nil {
		return accounts.Stats{}, err
	}
	txs, err := s.ListTransactions(ctx, "")
	if err != nil {
		return accounts.Stats{}, err
	}
	return accounts.Summarize(accts, txs, asOf), nil
}

// =============================================================================
// INTERNAL
// =============================================================================

func (s *Store) loadAccount(ctx context.Context, accountNumber string) (accounts.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE account_number = ?", accountNumber)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return accounts.Account{}, ErrNotFound
	}
	return a, err
}

func insertTransaction(ctx context.Context, sqlTx *sql.Tx, id string, tx accounts.Transaction) error {
	_, err := sqlTx.ExecContext(ctx, `
		INSERT INTO transactions (`+txColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, tx.AccountNumber, nullString(tx.CounterAccount), string(tx.Type),
		tx.Category, tx.Amount.String(), nullString(tx.PaymentMethod),
		nullString(tx.Reference), nullString(tx.Description),
		fmtTime(tx.Date), fmtTime(tx.CreatedAt),
	)
	return err
}

func updateBalance(ctx context.Context, sqlTx *sql.Tx, accountNumber string, balance decimal.Decimal, at time.Time) error {
	_, err := sqlTx.ExecContext(ctx, `
		UPDATE accounts SET balance = ?, updated_at = ? WHERE account_number = ?`,
		balance.String(), fmtTime(at), accountNumber,
	)
	return err
}

func scanAccount(row rowScanner) (accounts.Account, error) {
	var a accounts.Account
	var accountType, balance, status string
	var bankName, branch sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&a.AccountNumber, &a.AccountName, &accountType,
		&bankName, &branch, &balance, &status, &createdAt, &updatedAt)
	if err != nil {
		return accounts.Account{}, err
	}

	if a.Balance, err = parseDecimal(balance); err != nil {
		return accounts.Account{}, err
	}
	a.Type = accounts.AccountType(accountType)
	a.BankName = bankName.String
	a.Branch = branch.String
	a.Status = accounts.AccountStatus(status)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return a, nil
}

func scanTransaction(row rowScanner) (accounts.Transaction, error) {
	var tx accounts.Transaction
	var counter, method, reference, description sql.NullString
	var txType, amount, txDate, createdAt string

	err := row.Scan(&tx.TransactionID, &tx.AccountNumber, &counter, &txType,
		&tx.Category, &amount, &method, &reference, &description,
		&txDate, &createdAt)
	if err != nil {
		return accounts.Transaction{}, err
	}

	if tx.Amount, err = parseDecimal(amount); err != nil {
		return accounts.Transaction{}, err
	}
	tx.CounterAccount = counter.String
	tx.Type = accounts.TransactionType(txType)
	tx.PaymentMethod = method.String
	tx.Reference = reference.String
	tx.Description = description.String
	tx.Date = parseTime(txDate)
	tx.CreatedAt = parseTime(createdAt)
	return tx, nil
}
