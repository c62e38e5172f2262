/*
Package registry holds the thin back-office records the ledger domains
reference: patients, doctors, employees, suppliers, purchase orders, and
appointments. These carry no computation beyond field copy - their one
interesting behavior is that creation mints a sequential identifier
(PAT-00001, DOC-001, ...) through the ledger sequencer, and purchase
orders walk a small status machine.
*/
package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PEOPLE
// =============================================================================

// Patient is the owning entity of bills.
type Patient struct {
	PatientID string
	Name      string
	Phone     string
	Address   string
	CreatedAt time.Time
}

// Doctor carries the consultation fee pre-filled into a bill's charge set.
type Doctor struct {
	DoctorID        string
	Name            string
	Specialization  string
	ConsultationFee decimal.Decimal
	CreatedAt       time.Time
}

// Employee is the owning entity of salaries. MonthlySalary seeds the
// basic_salary component of each month's payroll record.
type Employee struct {
	EmployeeID    string
	Name          string
	Department    string
	Designation   string
	MonthlySalary decimal.Decimal
	Status        string
	JoinDate      time.Time
	CreatedAt     time.Time
}

// =============================================================================
// APPOINTMENTS
// =============================================================================

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

type Appointment struct {
	AppointmentID string
	PatientID     string
	DoctorID      string
	Date          time.Time
	Time          string
	Type          string
	Symptoms      string
	Status        AppointmentStatus
	Notes         string
	CreatedAt     time.Time
}

// =============================================================================
// SUPPLIERS AND PURCHASE ORDERS
// =============================================================================

type Supplier struct {
	SupplierID    string
	CompanyName   string
	ContactPerson string
	Category      string
	Phone         string
	Status        string
	CreatedAt     time.Time
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderApproved  OrderStatus = "APPROVED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// ErrInvalidStatusChange is returned for a purchase-order transition
// outside the allowed machine.
var ErrInvalidStatusChange = errors.New("invalid status change")

// orderTransitions: pending orders can be approved or cancelled, approved
// orders delivered or cancelled. Delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderApproved, OrderCancelled},
	OrderApproved: {OrderDelivered, OrderCancelled},
}

type PurchaseOrder struct {
	OrderNumber      string
	SupplierID       string
	OrderDate        time.Time
	ExpectedDelivery *time.Time
	TotalAmount      decimal.Decimal
	Status           OrderStatus
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WithStatus returns a copy in the new status, or rejects transitions the
// machine does not allow.
func (po PurchaseOrder) WithStatus(next OrderStatus) (PurchaseOrder, error) {
	for _, allowed := range orderTransitions[po.Status] {
		if next == allowed {
			po.Status = next
			return po, nil
		}
	}
	return PurchaseOrder{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusChange, po.Status, next)
}
