package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harborview/backoffice/ledger"
	"github.com/harborview/backoffice/pharmacy"
)

// =============================================================================
// MEDICINES
// =============================================================================

const medicineColumns = `medicine_id, name, category, manufacturer, description,
	stock_quantity, unit, expiry_date, purchase_price, selling_price,
	reorder_level, created_at, updated_at`

// CreateMedicine persists a medicine, minting its MED code.
func (s *Store) CreateMedicine(ctx context.Context, m pharmacy.Medicine) (pharmacy.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	id, err := s.createWithIdentifier(ctx, ledger.DomainMedicine, "medicines", "medicine_id", func(id string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO medicines (`+medicineColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, m.Name, nullString(m.Category), nullString(m.Manufacturer),
			nullString(m.Description), m.StockQuantity, nullString(m.Unit),
			fmtTime(m.ExpiryDate), m.PurchasePrice.String(), m.SellingPrice.String(),
			m.ReorderLevel, fmtTime(m.CreatedAt), fmtTime(m.UpdatedAt),
		)
		return err
	})
	if err != nil {
		return pharmacy.Medicine{}, err
	}

	m.MedicineID = id
	return m, nil
}

// GetMedicine returns a medicine by id, or nil if absent.
func (s *Store) GetMedicine(ctx context.Context, medicineID string) (*pharmacy.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+medicineColumns+" FROM medicines WHERE medicine_id = ?", medicineID)

	m, err := scanMedicine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMedicines returns the inventory, optionally only low-stock lines.
func (s *Store) ListMedicines(ctx context.Context, lowStockOnly bool) ([]pharmacy.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + medicineColumns + " FROM medicines"
	if lowStockOnly {
		query += " WHERE stock_quantity <= reorder_level"
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query medicines: %w", err)
	}
	defer rows.Close()

	var meds []pharmacy.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

// ReceiveStock adds delivered quantity to a medicine.
func (s *Store) ReceiveStock(ctx context.Context, medicineID string, qty int) (pharmacy.Medicine, error) {
	return s.moveStock(ctx, medicineID, func(m pharmacy.Medicine) (pharmacy.Medicine, error) {
		return m.Receive(qty)
	})
}

// DispenseStock removes dispensed quantity; stock never goes negative.
func (s *Store) DispenseStock(ctx context.Context, medicineID string, qty int) (pharmacy.Medicine, error) {
	return s.moveStock(ctx, medicineID, func(m pharmacy.Medicine) (pharmacy.Medicine, error) {
		return m.Dispense(qty)
	})
}

func (s *Store) moveStock(ctx context.Context, medicineID string, move func(pharmacy.Medicine) (pharmacy.Medicine, error)) (pharmacy.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+medicineColumns+" FROM medicines WHERE medicine_id = ?", medicineID)
	m, err := scanMedicine(row)
	if err == sql.ErrNoRows {
		return pharmacy.Medicine{}, ErrNotFound
	}
	if err != nil {
		return pharmacy.Medicine{}, err
	}

	updated, err := move(m)
	if err != nil {
		return pharmacy.Medicine{}, err
	}
	updated.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE medicines SET stock_quantity = ?, updated_at = ? WHERE medicine_id = ?`,
		updated.StockQuantity, fmtTime(updated.UpdatedAt), medicineID,
	)
	if err != nil {
		return pharmacy.Medicine{}, err
	}
	return updated, nil
}

// MedicineStats summarizes the inventory as of now.
func (s *Store) MedicineStats(ctx context.Context, asOf time.Time) (pharmacy.Stats, error) {
	meds, err := s.ListMedicines(ctx, false)
	if err != nil {
		return pharmacy.Stats{}, err
	}
	return pharmacy.Summarize(meds, asOf), nil
}

func scanMedicine(row rowScanner) (pharmacy.Medicine, error) {
	var m pharmacy.Medicine
	var category, manufacturer, description, unit sql.NullString
	var expiry, purchase, selling, createdAt, updatedAt string

	err := row.Scan(&m.MedicineID, &m.Name, &category, &manufacturer,
		&description, &m.StockQuantity, &unit, &expiry, &purchase, &selling,
		&m.ReorderLevel, &createdAt, &updatedAt)
	if err != nil {
		return pharmacy.Medicine{}, err
	}

	if m.PurchasePrice, err = parseDecimal(purchase); err != nil {
		return pharmacy.Medicine{}, err
	}
	if m.SellingPrice, err = parseDecimal(selling); err != nil {
		return pharmacy.Medicine{}, err
	}
	m.Category = category.String
	m.Manufacturer = manufacturer.String
	m.Description = description.String
	m.Unit = unit.String
	m.ExpiryDate = parseTime(expiry)
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return m, nil
}
