/*
Package sqlite provides the SQLite-backed persistence for the back office.

PURPOSE:
  One Store owns every table: bills and their payment audit trail,
  salaries, attendance and leave records, financial accounts and
  transactions, the medicine inventory, and the registry records
  (patients, doctors, employees, suppliers, purchase orders,
  appointments). The same patterns carry to PostgreSQL -
  only minor SQL dialect differences.

IDENTIFIER ISSUANCE:
  Creation paths mint sequential codes through ledger.Next, fed by the two
  inputs the sequencer asks for: the last issued identifier in the table
  and the current row count. Every identifier column carries a UNIQUE
  constraint; on a uniqueness violation (concurrent creator, or the
  count-based fallback landing on an existing code) the creation reloads
  both inputs and retries with an incremented count.

CONCURRENCY:
  sync.RWMutex serializes writers, so identifier issuance and balance
  updates for a record never interleave within one process. Payments,
  postings, and transfers additionally run inside SQL transactions so a
  crash never leaves half a transfer behind.

WAL MODE:
  SQLite is opened with WAL and foreign keys on. Readers don't block, one
  writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/backoffice.db")   // or ":memory:"
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/harborview/backoffice/ledger"
)

// Store implements persistence for every back-office domain.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema. Monetary columns are TEXT holding exact
// decimal strings; REAL would reintroduce the float drift the ledger
// core exists to avoid.
func (s *Store) migrate() error {
	schema := `
	-- Registry
	CREATE TABLE IF NOT EXISTS patients (
		patient_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		address TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS doctors (
		doctor_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		specialization TEXT,
		consultation_fee TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		employee_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT,
		designation TEXT,
		monthly_salary TEXT NOT NULL,
		status TEXT NOT NULL,
		join_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS suppliers (
		supplier_id TEXT PRIMARY KEY,
		company_name TEXT NOT NULL,
		contact_person TEXT,
		category TEXT,
		phone TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS purchase_orders (
		order_number TEXT PRIMARY KEY,
		supplier_id TEXT NOT NULL REFERENCES suppliers(supplier_id),
		order_date TEXT NOT NULL,
		expected_delivery TEXT,
		total_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS appointments (
		appointment_id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(patient_id),
		doctor_id TEXT NOT NULL REFERENCES doctors(doctor_id),
		appointment_date TEXT NOT NULL,
		appointment_time TEXT,
		appointment_type TEXT,
		symptoms TEXT,
		status TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	-- Patient bills
	CREATE TABLE IF NOT EXISTS bills (
		bill_number TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(patient_id),
		consultation_fee TEXT NOT NULL,
		medicine_charges TEXT NOT NULL,
		lab_charges TEXT NOT NULL,
		other_charges TEXT NOT NULL,
		discount TEXT NOT NULL,
		tax TEXT NOT NULL,
		subtotal TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		amount_paid TEXT NOT NULL,
		balance TEXT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bills_patient ON bills(patient_id);
	CREATE INDEX IF NOT EXISTS idx_bills_status ON bills(status);
	CREATE INDEX IF NOT EXISTS idx_bills_created ON bills(created_at);

	-- Append-only payment audit trail
	CREATE TABLE IF NOT EXISTS bill_payments (
		id TEXT PRIMARY KEY,
		bill_number TEXT NOT NULL REFERENCES bills(bill_number),
		amount TEXT NOT NULL,
		method TEXT,
		recorded_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bill_payments_bill ON bill_payments(bill_number);

	-- Monthly salaries, one per employee per month
	CREATE TABLE IF NOT EXISTS salaries (
		salary_number TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(employee_id),
		month TEXT NOT NULL,
		basic_salary TEXT NOT NULL,
		bonus TEXT NOT NULL,
		deductions TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		amount_paid TEXT NOT NULL,
		balance TEXT NOT NULL,
		status TEXT NOT NULL,
		payment_date TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, month)
	);

	-- Financial accounts and transactions
	CREATE TABLE IF NOT EXISTS accounts (
		account_number TEXT PRIMARY KEY,
		account_name TEXT NOT NULL,
		account_type TEXT NOT NULL,
		bank_name TEXT,
		branch TEXT,
		balance TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		transaction_id TEXT PRIMARY KEY,
		account_number TEXT NOT NULL REFERENCES accounts(account_number),
		counter_account TEXT,
		tx_type TEXT NOT NULL,
		category TEXT NOT NULL,
		amount TEXT NOT NULL,
		payment_method TEXT,
		reference TEXT,
		description TEXT,
		tx_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_number);
	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(tx_date);

	-- Attendance, one row per employee per date
	CREATE TABLE IF NOT EXISTS attendance (
		attendance_id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(employee_id),
		att_date TEXT NOT NULL,
		check_in TEXT,
		check_out TEXT,
		status TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, att_date)
	);
	CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(att_date);

	-- Leave requests
	CREATE TABLE IF NOT EXISTS leaves (
		leave_id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(employee_id),
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL,
		approved_by TEXT,
		remarks TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leaves_employee ON leaves(employee_id);

	-- Pharmacy inventory
	CREATE TABLE IF NOT EXISTS medicines (
		medicine_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT,
		manufacturer TEXT,
		description TEXT,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		unit TEXT,
		expiry_date TEXT NOT NULL,
		purchase_price TEXT NOT NULL,
		selling_price TEXT NOT NULL,
		reorder_level INTEGER NOT NULL DEFAULT 10,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// IDENTIFIER ISSUANCE
// =============================================================================

// maxIdentifierRetries bounds the uniqueness-collision retry loop. The
// fallback path walks one code per attempt, so a handful is plenty.
const maxIdentifierRetries = 5

// ErrIdentifierExhausted is returned when every retry collided. Seeing it
// means the table is in a state the fallback cannot walk out of.
var ErrIdentifierExhausted = fmt.Errorf("could not issue a unique identifier")

// lastIdentifier returns the most recently inserted identifier in a
// table, mirroring the legacy "last row by id" lookup. Empty string when
// the table has no rows yet.
func (s *Store) lastIdentifier(ctx context.Context, table, column string) (string, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s != '' ORDER BY rowid DESC LIMIT 1", column, table, column)

	var id string
	err := s.db.QueryRowContext(ctx, query).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return id, err
}

func (s *Store) countRows(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

// createWithIdentifier runs the mint-insert-retry loop: generate the next
// code for the domain, attempt the insert, and on a uniqueness collision
// reload the sequencer inputs with a bumped count and try again. The
// caller's insert closure must be safe to run more than once.
func (s *Store) createWithIdentifier(ctx context.Context, d ledger.Domain, table, column string, insert func(id string) error) (string, error) {
	for attempt := 0; attempt < maxIdentifierRetries; attempt++ {
		last, err := s.lastIdentifier(ctx, table, column)
		if err != nil {
			return "", err
		}
		count, err := s.countRows(ctx, table)
		if err != nil {
			return "", err
		}

		id := d.Next(last, count+attempt)
		err = insert(id)
		if err == nil {
			return id, nil
		}
		if !isUniqueConstraintError(err) {
			return "", err
		}
	}
	return "", ErrIdentifierExhausted
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

// parseDecimal reads an exact decimal out of a TEXT column. A corrupt
// cell is a storage bug worth failing loudly on.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt decimal column value %q: %w", s, err)
	}
	return d, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
