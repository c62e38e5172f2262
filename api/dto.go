/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Every monetary amount crosses the wire as a decimal string ("835.75"),
  never as a JSON number. Floats are how billing totals drift.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup and middleware
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborview/backoffice/accounts"
	"github.com/harborview/backoffice/attendance"
	"github.com/harborview/backoffice/billing"
	"github.com/harborview/backoffice/ledger"
	"github.com/harborview/backoffice/payroll"
	"github.com/harborview/backoffice/pharmacy"
	"github.com/harborview/backoffice/registry"
)

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// BILLS
// =============================================================================

// BillDTO represents a bill in API responses.
type BillDTO struct {
	BillNumber      string `json:"bill_number"`
	PatientID       string `json:"patient_id"`
	ConsultationFee string `json:"consultation_fee"`
	MedicineCharges string `json:"medicine_charges"`
	LabCharges      string `json:"lab_charges"`
	OtherCharges    string `json:"other_charges"`
	Discount        string `json:"discount"`
	Tax             string `json:"tax"`
	Subtotal        string `json:"subtotal"`
	TotalAmount     string `json:"total_amount"`
	AmountPaid      string `json:"amount_paid"`
	Balance         string `json:"balance"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// ChargesRequest carries a bill's charge components. Amounts are decimal
// strings; absent fields default to zero.
type ChargesRequest struct {
	ConsultationFee string `json:"consultation_fee"`
	MedicineCharges string `json:"medicine_charges"`
	LabCharges      string `json:"lab_charges"`
	OtherCharges    string `json:"other_charges"`
	Discount        string `json:"discount"`
	Tax             string `json:"tax"`
}

// CreateBillRequest is the request to create a bill.
type CreateBillRequest struct {
	PatientID     string `json:"patient_id"`
	AmountPaid    string `json:"amount_paid"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
	ChargesRequest
}

// PaymentRequest records a payment against a bill or salary.
type PaymentRequest struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
}

// PaymentDTO is one row of the payment audit trail.
type PaymentDTO struct {
	ID         string `json:"id"`
	BillNumber string `json:"bill_number"`
	Amount     string `json:"amount"`
	Method     string `json:"method,omitempty"`
	RecordedAt string `json:"recorded_at"`
}

// BillStatsDTO summarizes the billing book.
type BillStatsDTO struct {
	TotalBills        int    `json:"total_bills"`
	PaidBills         int    `json:"paid_bills"`
	UnpaidBills       int    `json:"unpaid_bills"`
	PartialBills      int    `json:"partial_bills"`
	TotalBilled       string `json:"total_billed"`
	TotalCollected    string `json:"total_collected"`
	Outstanding       string `json:"outstanding"`
	ConsultationTotal string `json:"consultation_total"`
	MedicineTotal     string `json:"medicine_total"`
	LabTotal          string `json:"lab_total"`
	OtherTotal        string `json:"other_total"`
}

// DailyBillingDTO is the per-day report.
type DailyBillingDTO struct {
	Date  string       `json:"date"`
	Stats BillStatsDTO `json:"stats"`
}

// =============================================================================
// SALARIES
// =============================================================================

type SalaryDTO struct {
	SalaryNumber string `json:"salary_number"`
	EmployeeID   string `json:"employee_id"`
	Month        string `json:"month"`
	BasicSalary  string `json:"basic_salary"`
	Bonus        string `json:"bonus"`
	Deductions   string `json:"deductions"`
	TotalAmount  string `json:"total_amount"`
	AmountPaid   string `json:"amount_paid"`
	Balance      string `json:"balance"`
	Status       string `json:"status"`
	PaymentDate  string `json:"payment_date,omitempty"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

type CreateSalaryRequest struct {
	EmployeeID  string `json:"employee_id"`
	Month       string `json:"month"` // YYYY-MM-DD, any day of the month
	BasicSalary string `json:"basic_salary"`
	Bonus       string `json:"bonus"`
	Deductions  string `json:"deductions"`
}

type SalaryStatsDTO struct {
	TotalSalaries int    `json:"total_salaries"`
	Paid          int    `json:"paid"`
	Unpaid        int    `json:"unpaid"`
	Partial       int    `json:"partial"`
	TotalPayroll  string `json:"total_payroll"`
	TotalPaidOut  string `json:"total_paid_out"`
	Outstanding   string `json:"outstanding"`
}

// =============================================================================
// ACCOUNTS AND TRANSACTIONS
// =============================================================================

type AccountDTO struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	AccountType   string `json:"account_type"`
	BankName      string `json:"bank_name,omitempty"`
	Branch        string `json:"branch,omitempty"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type CreateAccountRequest struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	AccountType   string `json:"account_type"`
	BankName      string `json:"bank_name"`
	Branch        string `json:"branch"`
	OpeningBalance string `json:"opening_balance"`
}

type TransactionDTO struct {
	TransactionID  string `json:"transaction_id"`
	AccountNumber  string `json:"account_number"`
	CounterAccount string `json:"counter_account,omitempty"`
	Type           string `json:"type"`
	Category       string `json:"category"`
	Amount         string `json:"amount"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	Reference      string `json:"reference,omitempty"`
	Description    string `json:"description,omitempty"`
	Date           string `json:"date"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type CreateTransactionRequest struct {
	AccountNumber string `json:"account_number"`
	Type          string `json:"type"` // INCOME or EXPENSE
	Category      string `json:"category"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Reference     string `json:"reference"`
	Description   string `json:"description"`
	Date          string `json:"date"` // YYYY-MM-DD, defaults to today
}

type TransferRequest struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type AccountStatsDTO struct {
	TotalBalance   string `json:"total_balance"`
	ActiveAccounts int    `json:"active_accounts"`
	MonthlyIncome  string `json:"monthly_income"`
	MonthlyExpense string `json:"monthly_expense"`
}

// =============================================================================
// PHARMACY
// =============================================================================

type MedicineDTO struct {
	MedicineID    string `json:"medicine_id"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	Manufacturer  string `json:"manufacturer,omitempty"`
	Description   string `json:"description,omitempty"`
	StockQuantity int    `json:"stock_quantity"`
	Unit          string `json:"unit,omitempty"`
	ExpiryDate    string `json:"expiry_date"`
	PurchasePrice string `json:"purchase_price"`
	SellingPrice  string `json:"selling_price"`
	ReorderLevel  int    `json:"reorder_level"`
	LowStock      bool   `json:"low_stock"`
	ProfitMargin  string `json:"profit_margin"`
}

type CreateMedicineRequest struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	Manufacturer  string `json:"manufacturer"`
	Description   string `json:"description"`
	StockQuantity int    `json:"stock_quantity"`
	Unit          string `json:"unit"`
	ExpiryDate    string `json:"expiry_date"` // YYYY-MM-DD
	PurchasePrice string `json:"purchase_price"`
	SellingPrice  string `json:"selling_price"`
	ReorderLevel  int    `json:"reorder_level"`
}

type StockMovementRequest struct {
	Quantity int `json:"quantity"`
}

type MedicineStatsDTO struct {
	TotalMedicines int    `json:"total_medicines"`
	LowStock       int    `json:"low_stock"`
	Expired        int    `json:"expired"`
	StockValuation string `json:"stock_valuation"`
}

// =============================================================================
// REGISTRY
// =============================================================================

type PatientDTO struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreatePatientRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type DoctorDTO struct {
	DoctorID        string `json:"doctor_id"`
	Name            string `json:"name"`
	Specialization  string `json:"specialization,omitempty"`
	ConsultationFee string `json:"consultation_fee"`
	CreatedAt       string `json:"created_at,omitempty"`
}

type CreateDoctorRequest struct {
	Name            string `json:"name"`
	Specialization  string `json:"specialization"`
	ConsultationFee string `json:"consultation_fee"`
}

type EmployeeDTO struct {
	EmployeeID    string `json:"employee_id"`
	Name          string `json:"name"`
	Department    string `json:"department,omitempty"`
	Designation   string `json:"designation,omitempty"`
	MonthlySalary string `json:"monthly_salary"`
	Status        string `json:"status"`
	JoinDate      string `json:"join_date"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type CreateEmployeeRequest struct {
	Name          string `json:"name"`
	Department    string `json:"department"`
	Designation   string `json:"designation"`
	MonthlySalary string `json:"monthly_salary"`
	JoinDate      string `json:"join_date"` // YYYY-MM-DD
}

type SupplierDTO struct {
	SupplierID    string `json:"supplier_id"`
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person,omitempty"`
	Category      string `json:"category,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type CreateSupplierRequest struct {
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	Category      string `json:"category"`
	Phone         string `json:"phone"`
}

type PurchaseOrderDTO struct {
	OrderNumber      string `json:"order_number"`
	SupplierID       string `json:"supplier_id"`
	OrderDate        string `json:"order_date"`
	ExpectedDelivery string `json:"expected_delivery,omitempty"`
	TotalAmount      string `json:"total_amount"`
	Status           string `json:"status"`
	Notes            string `json:"notes,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID       string `json:"supplier_id"`
	OrderDate        string `json:"order_date"`
	ExpectedDelivery string `json:"expected_delivery"`
	TotalAmount      string `json:"total_amount"`
	Notes            string `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentDTO struct {
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	DoctorID      string `json:"doctor_id"`
	Date          string `json:"date"`
	Time          string `json:"time,omitempty"`
	Type          string `json:"type,omitempty"`
	Symptoms      string `json:"symptoms,omitempty"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"`
	Type      string `json:"type"`
	Symptoms  string `json:"symptoms"`
	Notes     string `json:"notes"`
}

type AttendanceDTO struct {
	AttendanceID string  `json:"attendance_id"`
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`
	CheckIn      string  `json:"check_in,omitempty"`
	CheckOut     string  `json:"check_out,omitempty"`
	WorkingHours float64 `json:"working_hours"`
	Status       string  `json:"status"`
	Notes        string  `json:"notes,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

type CreateAttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"` // YYYY-MM-DD
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"` // HH:MM, as on the punch clock
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

type LeaveDTO struct {
	LeaveID    string `json:"leave_id"`
	EmployeeID string `json:"employee_id"`
	Type       string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	TotalDays  int    `json:"total_days"`
	Reason     string `json:"reason,omitempty"`
	Status     string `json:"status"`
	ApprovedBy string `json:"approved_by,omitempty"`
	Remarks    string `json:"remarks,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id"`
	Type       string `json:"leave_type"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD
	EndDate    string `json:"end_date"`   // YYYY-MM-DD
	Reason     string `json:"reason"`
}

type UpdateLeaveStatusRequest struct {
	Status     string `json:"status"`
	ApprovedBy string `json:"approved_by"`
	Remarks    string `json:"remarks"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

const dateLayout = "2006-01-02"

func toBillDTO(b billing.Bill) BillDTO {
	return BillDTO{
		BillNumber:      b.BillNumber,
		PatientID:       b.PatientID,
		ConsultationFee: b.Charges.ConsultationFee.String(),
		MedicineCharges: b.Charges.MedicineCharges.String(),
		LabCharges:      b.Charges.LabCharges.String(),
		OtherCharges:    b.Charges.OtherCharges.String(),
		Discount:        b.Charges.Discount.String(),
		Tax:             b.Charges.Tax.String(),
		Subtotal:        b.Subtotal.String(),
		TotalAmount:     b.Total.String(),
		AmountPaid:      b.AmountPaid.String(),
		Balance:         b.Balance.String(),
		Status:          string(b.Status),
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
}

func toBillDTOs(bills []billing.Bill) []BillDTO {
	dtos := make([]BillDTO, len(bills))
	for i, b := range bills {
		dtos[i] = toBillDTO(b)
	}
	return dtos
}

func toPaymentDTO(p billing.Payment) PaymentDTO {
	return PaymentDTO{
		ID:         p.ID,
		BillNumber: p.BillNumber,
		Amount:     p.Amount.String(),
		Method:     p.Method,
		RecordedAt: p.RecordedAt.Format(time.RFC3339),
	}
}

func toBillStatsDTO(s billing.Stats) BillStatsDTO {
	return BillStatsDTO{
		TotalBills:        s.TotalBills,
		PaidBills:         s.PaidBills,
		UnpaidBills:       s.UnpaidBills,
		PartialBills:      s.PartialBills,
		TotalBilled:       s.TotalBilled.String(),
		TotalCollected:    s.TotalCollected.String(),
		Outstanding:       s.Outstanding.String(),
		ConsultationTotal: s.ConsultationTotal.String(),
		MedicineTotal:     s.MedicineTotal.String(),
		LabTotal:          s.LabTotal.String(),
		OtherTotal:        s.OtherTotal.String(),
	}
}

func toSalaryDTO(s payroll.Salary) SalaryDTO {
	dto := SalaryDTO{
		SalaryNumber: s.SalaryNumber,
		EmployeeID:   s.EmployeeID,
		Month:        s.Month.Format(dateLayout),
		BasicSalary:  s.BasicSalary.String(),
		Bonus:        s.Bonus.String(),
		Deductions:   s.Deductions.String(),
		TotalAmount:  s.Total.String(),
		AmountPaid:   s.AmountPaid.String(),
		Balance:      s.Balance.String(),
		Status:       string(s.Status),
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
	}
	if s.PaymentDate != nil {
		dto.PaymentDate = s.PaymentDate.Format(time.RFC3339)
	}
	return dto
}

func toAccountDTO(a accounts.Account) AccountDTO {
	return AccountDTO{
		AccountNumber: a.AccountNumber,
		AccountName:   a.AccountName,
		AccountType:   string(a.Type),
		BankName:      a.BankName,
		Branch:        a.Branch,
		Balance:       a.Balance.String(),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTO(tx accounts.Transaction) TransactionDTO {
	return TransactionDTO{
		TransactionID:  tx.TransactionID,
		AccountNumber:  tx.AccountNumber,
		CounterAccount: tx.CounterAccount,
		Type:           string(tx.Type),
		Category:       tx.Category,
		Amount:         tx.Amount.String(),
		PaymentMethod:  tx.PaymentMethod,
		Reference:      tx.Reference,
		Description:    tx.Description,
		Date:           tx.Date.Format(dateLayout),
		CreatedAt:      tx.CreatedAt.Format(time.RFC3339),
	}
}

func toMedicineDTO(m pharmacy.Medicine) MedicineDTO {
	return MedicineDTO{
		MedicineID:    m.MedicineID,
		Name:          m.Name,
		Category:      m.Category,
		Manufacturer:  m.Manufacturer,
		Description:   m.Description,
		StockQuantity: m.StockQuantity,
		Unit:          m.Unit,
		ExpiryDate:    m.ExpiryDate.Format(dateLayout),
		PurchasePrice: m.PurchasePrice.String(),
		SellingPrice:  m.SellingPrice.String(),
		ReorderLevel:  m.ReorderLevel,
		LowStock:      m.IsLowStock(),
		ProfitMargin:  m.ProfitMargin().String(),
	}
}

func toPatientDTO(p registry.Patient) PatientDTO {
	return PatientDTO{
		PatientID: p.PatientID,
		Name:      p.Name,
		Phone:     p.Phone,
		Address:   p.Address,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func toDoctorDTO(d registry.Doctor) DoctorDTO {
	return DoctorDTO{
		DoctorID:        d.DoctorID,
		Name:            d.Name,
		Specialization:  d.Specialization,
		ConsultationFee: d.ConsultationFee.String(),
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
	}
}

func toEmployeeDTO(e registry.Employee) EmployeeDTO {
	return EmployeeDTO{
		EmployeeID:    e.EmployeeID,
		Name:          e.Name,
		Department:    e.Department,
		Designation:   e.Designation,
		MonthlySalary: e.MonthlySalary.String(),
		Status:        e.Status,
		JoinDate:      e.JoinDate.Format(dateLayout),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

func toSupplierDTO(s registry.Supplier) SupplierDTO {
	return SupplierDTO{
		SupplierID:    s.SupplierID,
		CompanyName:   s.CompanyName,
		ContactPerson: s.ContactPerson,
		Category:      s.Category,
		Phone:         s.Phone,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
}

func toPurchaseOrderDTO(po registry.PurchaseOrder) PurchaseOrderDTO {
	dto := PurchaseOrderDTO{
		OrderNumber: po.OrderNumber,
		SupplierID:  po.SupplierID,
		OrderDate:   po.OrderDate.Format(dateLayout),
		TotalAmount: po.TotalAmount.String(),
		Status:      string(po.Status),
		Notes:       po.Notes,
		CreatedAt:   po.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   po.UpdatedAt.Format(time.RFC3339),
	}
	if po.ExpectedDelivery != nil {
		dto.ExpectedDelivery = po.ExpectedDelivery.Format(dateLayout)
	}
	return dto
}

func toAppointmentDTO(a registry.Appointment) AppointmentDTO {
	return AppointmentDTO{
		AppointmentID: a.AppointmentID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Date:          a.Date.Format(dateLayout),
		Time:          a.Time,
		Type:          a.Type,
		Symptoms:      a.Symptoms,
		Status:        string(a.Status),
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

func toAttendanceDTO(a attendance.Attendance) AttendanceDTO {
	dto := AttendanceDTO{
		AttendanceID: a.AttendanceID,
		EmployeeID:   a.EmployeeID,
		Date:         a.Date.Format(dateLayout),
		WorkingHours: a.WorkingHours(),
		Status:       string(a.Status),
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
	if a.CheckIn != nil {
		dto.CheckIn = a.CheckIn.Format("15:04")
	}
	if a.CheckOut != nil {
		dto.CheckOut = a.CheckOut.Format("15:04")
	}
	return dto
}

func toLeaveDTO(l attendance.Leave) LeaveDTO {
	return LeaveDTO{
		LeaveID:    l.LeaveID,
		EmployeeID: l.EmployeeID,
		Type:       string(l.Type),
		StartDate:  l.StartDate.Format(dateLayout),
		EndDate:    l.EndDate.Format(dateLayout),
		TotalDays:  l.TotalDays(),
		Reason:     l.Reason,
		Status:     string(l.Status),
		ApprovedBy: l.ApprovedBy,
		Remarks:    l.Remarks,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  l.UpdatedAt.Format(time.RFC3339),
	}
}

// parseOptionalDecimal returns zero for an empty string so clients may
// omit charge fields entirely. Values are normalized to two decimal
// places before they reach the ledger.
func parseOptionalDecimal(s string) (decimal.Decimal, error) {
	return ledger.ParseAmount(s)
}
