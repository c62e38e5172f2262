package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harborview/backoffice/attendance"
	"github.com/harborview/backoffice/ledger"
)

// =============================================================================
// ATTENDANCE
// =============================================================================

const attendanceColumns = `attendance_id, employee_id, att_date, check_in,
	check_out, status, notes, created_at`

// ErrDuplicateAttendance is returned when the employee already has an
// attendance row for the date.
var ErrDuplicateAttendance = fmt.Errorf("attendance already recorded for this employee and date")

// CreateAttendance persists one employee's record for one date, minting
// its ATT code. The date is normalized to midnight UTC so the
// one-row-per-day constraint works on calendar days, not timestamps.
func (s *Store) CreateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := a.Validate(); err != nil {
		return attendance.Attendance{}, err
	}
	if a.Status == "" {
		a.Status = attendance.StatusPresent
	}
	y, m, d := a.Date.Date()
	a.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	a.CreatedAt = time.Now().UTC()

	// Check the employee+date constraint up front so the identifier
	// retry loop only ever sees attendance_id collisions.
	var existing int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE employee_id = ? AND att_date = ?",
		a.EmployeeID, fmtTime(a.Date),
	).Scan(&existing)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if existing > 0 {
		return attendance.Attendance{}, ErrDuplicateAttendance
	}

	id, err := s.createWithIdentifier(ctx, ledger.DomainAttendance, "attendance", "attendance_id", func(id string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO attendance (`+attendanceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, a.EmployeeID, fmtTime(a.Date),
			nullTime(a.CheckIn), nullTime(a.CheckOut),
			string(a.Status), nullString(a.Notes), fmtTime(a.CreatedAt))
		return err
	})
	if err != nil {
		return attendance.Attendance{}, err
	}
	a.AttendanceID = id
	return a, nil
}

// ListAttendance returns attendance rows newest date first. A zero date
// lists everything; otherwise only that calendar day.
func (s *Store) ListAttendance(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + attendanceColumns + " FROM attendance"
	var args []any
	if !date.IsZero() {
		y, m, d := date.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		query += " WHERE att_date = ?"
		args = append(args, fmtTime(day))
	}
	query += " ORDER BY att_date DESC, attendance_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var out []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttendance(row rowScanner) (attendance.Attendance, error) {
	var a attendance.Attendance
	var date, createdAt string
	var checkIn, checkOut, notes sql.NullString
	err := row.Scan(&a.AttendanceID, &a.EmployeeID, &date,
		&checkIn, &checkOut, (*string)(&a.Status), &notes, &createdAt)
	if err != nil {
		return attendance.Attendance{}, err
	}
	a.Date = parseTime(date)
	if checkIn.Valid {
		t := parseTime(checkIn.String)
		a.CheckIn = &t
	}
	if checkOut.Valid {
		t := parseTime(checkOut.String)
		a.CheckOut = &t
	}
	a.Notes = notes.String
	a.CreatedAt = parseTime(createdAt)
	return a, nil
}

// =============================================================================
// LEAVES
// =============================================================================

const leaveColumns = `leave_id, employee_id, leave_type, start_date, end_date,
	reason, status, approved_by, remarks, created_at, updated_at`

// CreateLeave persists a leave request in PENDING, minting its LVE code.
func (s *Store) CreateLeave(ctx context.Context, l attendance.Leave) (attendance.Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := l.Validate(); err != nil {
		return attendance.Leave{}, err
	}
	if l.Status == "" {
		l.Status = attendance.LeavePending
	}
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = l.CreatedAt

	id, err := s.createWithIdentifier(ctx, ledger.DomainLeave, "leaves", "leave_id", func(id string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO leaves (`+leaveColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, l.EmployeeID, string(l.Type),
			fmtTime(l.StartDate), fmtTime(l.EndDate),
			nullString(l.Reason), string(l.Status),
			nullString(l.ApprovedBy), nullString(l.Remarks),
			fmtTime(l.CreatedAt), fmtTime(l.UpdatedAt))
		return err
	})
	if err != nil {
		return attendance.Leave{}, err
	}
	l.LeaveID = id
	return l, nil
}

// GetLeave returns a leave by id, or nil if absent.
func (s *Store) GetLeave(ctx context.Context, leaveID string) (*attendance.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+leaveColumns+" FROM leaves WHERE leave_id = ?", leaveID)
	l, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLeaves returns leave requests newest start date first, optionally
// filtered to one employee.
func (s *Store) ListLeaves(ctx context.Context, employeeID string) ([]attendance.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + leaveColumns + " FROM leaves"
	var args []any
	if employeeID != "" {
		query += " WHERE employee_id = ?"
		args = append(args, employeeID)
	}
	query += " ORDER BY start_date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	var out []attendance.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateLeaveStatus walks the leave through its status machine, stamping
// who decided and any remarks.
func (s *Store) UpdateLeaveStatus(ctx context.Context, leaveID string, next attendance.LeaveStatus, approvedBy, remarks string) (attendance.Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+leaveColumns+" FROM leaves WHERE leave_id = ?", leaveID)
	l, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return attendance.Leave{}, ErrNotFound
	}
	if err != nil {
		return attendance.Leave{}, err
	}

	updated, err := l.WithStatus(next)
	if err != nil {
		return attendance.Leave{}, err
	}
	updated.ApprovedBy = approvedBy
	updated.Remarks = remarks
	updated.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE leaves SET status = ?, approved_by = ?, remarks = ?, updated_at = ?
		WHERE leave_id = ?`,
		string(updated.Status), nullString(updated.ApprovedBy),
		nullString(updated.Remarks), fmtTime(updated.UpdatedAt), leaveID)
	if err != nil {
		return attendance.Leave{}, err
	}
	return updated, nil
}

func scanLeave(row rowScanner) (attendance.Leave, error) {
	var l attendance.Leave
	var start, end, createdAt, updatedAt string
	var reason, approvedBy, remarks sql.NullString
	err := row.Scan(&l.LeaveID, &l.EmployeeID, (*string)(&l.Type),
		&start, &end, &reason, (*string)(&l.Status),
		&approvedBy, &remarks, &createdAt, &updatedAt)
	if err != nil {
		return attendance.Leave{}, err
	}
	l.StartDate = parseTime(start)
	l.EndDate = parseTime(end)
	l.Reason = reason.String
	l.ApprovedBy = approvedBy.String
	l.Remarks = remarks.String
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)
	return l, nil
}
