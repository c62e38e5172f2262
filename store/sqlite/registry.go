package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harborview/backoffice/ledger"
	"github.com/harborview/backoffice/registry"
)

// =============================================================================
// PATIENTS
// =============================================================================

func (s *Store) CreatePatient(ctx context.Context, p registry.Patient) (registry.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.CreatedAt = time.Now().UTC()
	id, err := s.createWithIdentifier(ctx, ledger.DomainPatient, "patients", "patient_id", func(id string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO patients (patient_id, name, phone, address, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			id, p.Name, nullString(p.Phone), nullString(p.Address), fmtTime(p.CreatedAt))
		return err
	})
	if err != nil {
		return registry.Patient{}, err
	}
	p.PatientID = id
	return p, nil
}

func (s *Store) GetPatient(ctx context.Context, patientID string) (*registry.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p registry.Patient
	var phone, address sql.NullString
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT patient_id, name, phone, address, created_at
		FROM patients WHERE patient_id = ?`, patientID,
	).Scan(&p.PatientID, &p.Name, &phone, &address, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Phone = phone.String
	p.Address = address.String
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

func (s *Store) ListPatients(ctx context.Context) ([]registry.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT patient_id, name, phone, address, created_at
		FROM patients ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var patients []registry.Patient
	for rows.Next() {
		var p registry.Patient
		var phone, address sql.NullString
		var createdAt string
		if err := rows.Scan(&p.PatientID, &p.Name, &phone, &address, &createdAt); err != nil {
			return nil, err
		}
		p.Phone = phone.String
		p.Address = address.String
		p.CreatedAt = parseTime(createdAt)
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// =============================================================================
// DOCTORS
// =============================================================================

func (s *Store) CreateDoctor(ctx context.Context, d registry.Doctor) (registry.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.CreatedAt = time.Now().UTC()
	id, err := s.createWithIdentifier(ctx, ledger.DomainDoctor, "doctors", "doctor_id", func(id string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO doctors (doctor_id, name, specialization, consultation_fee, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			id, d.Name, nullString(d.Specialization),
			d.ConsultationFee.String(), fmtTime(d.CreatedAt))
		return err
	})
	if err != nil {
		return registry.Doctor{}, err
	}
	d.DoctorID = id
	return d, nil
}

func (s *Store) GetDoctor(ctx context.Context, doctorID string) (*registry.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var d registry.Doctor
	var specialization sql.NullString
	var fee, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT doctor_id, name, specialization, consultation_fee, created_at
		FROM doctors WHERE doctor_id = ?`, doctorID,
	).Scan(&d.DoctorID, &d.Name, &specialization, &fee, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if d.ConsultationFee, err = parseDecimal(fee); err != nil {
		return nil, err
	}
	d.Specialization = specialization.String
	d.CreatedAt = parseTime(createdAt)
	return &d, nil
}

func (s *Store) ListDoctors(ctx context.Context) ([]registry.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT doctor_id, name, specialization, consultation_fee, created_at
		FROM doctors ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query doctors: %w", err)
	}
	defer rows.Close()

	var doctors []registry.Doctor
	for rows.Next() {
		var d registry.Doctor
		var specialization sql.NullString
		var fee, createdAt string
		if err := rows.Scan(&d.DoctorID, &d.Name, &specialization, &fee, &createdAt); err != nil {
			return nil, err
		}
		if d.ConsultationFee, err = parseDecimal(fee); err != nil {
			return nil, err
		}
		d.Specialization = specialization.String
		d.CreatedAt = parseTime(createdAt)
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) CreateEmployee(ctx context.Context, e registry.Employee) (registry.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.CreatedAt = time.Now().UTC()
	if e.Status == "" {
		e.Status = "ACTIVE"
	}
	id, err := s.createWithIdentifier(ctx, ledger.DomainEmployee, "employees", "employee_id", func(id string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO employees (employee_id, name, department, designation,
				monthly_salary, status, join_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Name, nullString(e.Department), nullString(e.Designation),
			e.MonthlySalary.String(), e.Status, fmtTime(e.JoinDate), fmtTime(e.CreatedAt))
		return err
	})
	if err != nil {
		return registry.Employee{}, err
	}
	e.EmployeeID = id
	return e, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (*registry.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e registry.Employee
	var department, designation sql.NullString
	var salary, joinDate, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, name, department, designation, monthly_salary, status, join_date, created_at
		FROM employees WHERE employee_id = ?`, employeeID,
	).Scan(&e.EmployeeID, &e.Name, &department, &designation, &salary, &e.Status, &joinDate, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if e.MonthlySalary, err = parseDecimal(salary); err != nil {
		return nil, err
	}
	e.Department = department.String
	e.Designation = designation.String
	e.JoinDate = parseTime(joinDate)
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]registry.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, name, department, designation, monthly_salary, status, join_date, created_at
		FROM employees ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []registry.Employee
	for rows.Next() {
		var e registry.Employee
		var department, designation sql.NullString
		var salary, joinDate, createdAt string
		if err := rows.Scan(&e.EmployeeID, &e.Name, &department, &designation,
			&salary, &e.Status, &joinDate, &createdAt); err != nil {
			return nil, err
		}
		if e.MonthlySalary, err = parseDecimal(salary); err != nil {
			return nil, err
		}
		e.Department = department.String
		e.Designation = designation.String
		e.JoinDate = parseTime(joinDate)
		e.CreatedAt = parseTime(createdAt)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// =============================================================================
// SUPPLIERS AND PURCHASE ORDERS
// =============================================================================

func (s *Store) CreateSupplier(ctx context.Context, sup registry.Supplier) (registry.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sup.CreatedAt = time.Now().UTC()
	if sup.Status == "" {
		sup.Status = "ACTIVE"
	}
	id, err := s.createWithIdentifier(ctx, ledger.DomainSupplier, "suppliers", "supplier_id", func(id string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO suppliers (supplier_id, company_name, contact_person, category, phone, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, sup.CompanyName, nullString(sup.ContactPerson),
			nullString(sup.Category), nullString(sup.Phone), sup.Status, fmtTime(sup.CreatedAt))
		return err
	})
	if err != nil {
		return registry.Supplier{}, err
	}
	sup.SupplierID = id
	return sup, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]registry.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT supplier_id, company_name, contact_person, category, phone, status, created_at
		FROM suppliers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []registry.Supplier
	for rows.Next() {
		var sup registry.Supplier
		var contactPerson, category, phone sql.NullString
		var createdAt string
		if err := rows.Scan(&sup.SupplierID, &sup.CompanyName, &contactPerson,
			&category, &phone, &sup.Status, &createdAt); err != nil {
			return nil, err
		}
		sup.ContactPerson = contactPerson.String
		sup.Category = category.String
		sup.Phone = phone.String
		sup.CreatedAt = parseTime(createdAt)
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

const purchaseOrderColumns = `order_number, supplier_id, order_date, expected_delivery,
	total_amount, status, notes, created_at, updated_at`

func (s *Store) CreatePurchaseOrder(ctx context.Context, po registry.PurchaseOrder) (registry.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	po.CreatedAt = now
	po.UpdatedAt = now
	if po.Status == "" {
		po.Status = registry.OrderPending
	}

	id, err := s.createWithIdentifier(ctx, ledger.DomainPurchaseOrder, "purchase_orders", "order_number", func(id string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, po.SupplierID, fmtTime(po.OrderDate), nullTime(po.ExpectedDelivery),
			po.TotalAmount.String(), string(po.Status), nullString(po.Notes),
			fmtTime(po.CreatedAt), fmtTime(po.UpdatedAt))
		return err
	})
	if err != nil {
		return registry.PurchaseOrder{}, err
	}
	po.OrderNumber = id
	return po, nil
}

func (s *Store) GetPurchaseOrder(ctx context.Context, orderNumber string) (*registry.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+purchaseOrderColumns+" FROM purchase_orders WHERE order_number = ?", orderNumber)
	po, err := scanPurchaseOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (s *Store) ListPurchaseOrders(ctx context.Context) ([]registry.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+purchaseOrderColumns+" FROM purchase_orders ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []registry.PurchaseOrder
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

// UpdatePurchaseOrderStatus walks the order through its status machine.
func (s *Store) UpdatePurchaseOrderStatus(ctx context.Context, orderNumber string, next registry.OrderStatus) (registry.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+purchaseOrderColumns+" FROM purchase_orders WHERE order_number = ?", orderNumber)
	po, err := scanPurchaseOrder(row)
	if err == sql.ErrNoRows {
		return registry.PurchaseOrder{}, ErrNotFound
	}
	if err != nil {
		return registry.PurchaseOrder{}, err
	}

	updated, err := po.WithStatus(next)
	if err != nil {
		return registry.PurchaseOrder{}, err
	}
	updated.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE purchase_orders SET status = ?, updated_at = ? WHERE order_number = ?`,
		string(updated.Status), fmtTime(updated.UpdatedAt), orderNumber)
	if err != nil {
		return registry.PurchaseOrder{}, err
	}
	return updated, nil
}

func scanPurchaseOrder(row rowScanner) (registry.PurchaseOrder, error) {
	var po registry.PurchaseOrder
	var orderDate, total, status, createdAt, updatedAt string
	var expectedDelivery, notes sql.NullString

	err := row.Scan(&po.OrderNumber, &po.SupplierID, &orderDate, &expectedDelivery,
		&total, &status, &notes, &createdAt, &updatedAt)
	if err != nil {
		return registry.PurchaseOrder{}, err
	}

	if po.TotalAmount, err = parseDecimal(total); err != nil {
		return registry.PurchaseOrder{}, err
	}
	po.OrderDate = parseTime(orderDate)
	if expectedDelivery.Valid {
		t := parseTime(expectedDelivery.String)
		po.ExpectedDelivery = &t
	}
	po.Status = registry.OrderStatus(status)
	po.Notes = notes.String
	po.CreatedAt = parseTime(createdAt)
	po.UpdatedAt = parseTime(updatedAt)
	return po, nil
}

// =============================================================================
// APPOINTMENTS
// =============================================================================

const appointmentColumns = `appointment_id, patient_id, doctor_id, appointment_date,
	appointment_time, appointment_type, symptoms, status, notes, created_at`

func (s *Store) CreateAppointment(ctx context.Context, a registry.Appointment) (registry.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.CreatedAt = time.Now().UTC()
	if a.Status == "" {
		a.Status = registry.AppointmentPending
	}

	id, err := s.createWithIdentifier(ctx, ledger.DomainAppointment, "appointments", "appointment_id", func(id string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO appointments (`+appointmentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, a.PatientID, a.DoctorID, fmtTime(a.Date), nullString(a.Time),
			nullString(a.Type), nullString(a.Symptoms), string(a.Status),
			nullString(a.Notes), fmtTime(a.CreatedAt))
		return err
	})
	if err != nil {
		return registry.Appointment{}, err
	}
	a.AppointmentID = id
	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context) ([]registry.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+appointmentColumns+" FROM appointments ORDER BY appointment_date DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var appts []registry.Appointment
	for rows.Next() {
		var a registry.Appointment
		var date, status, createdAt string
		var tme, typ, symptoms, notes sql.NullString
		if err := rows.Scan(&a.AppointmentID, &a.PatientID, &a.DoctorID, &date,
			&tme, &typ, &symptoms, &status, &notes, &createdAt); err != nil {
			return nil, err
		}
		a.Date = parseTime(date)
		a.Time = tme.String
		a.Type = typ.String
		a.Symptoms = symptoms.String
		a.Status = registry.AppointmentStatus(status)
		a.Notes = notes.String
		a.CreatedAt = parseTime(createdAt)
		appts = append(appts, a)
	}
	return appts, rows.Err()
}
