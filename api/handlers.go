/*
handlers.go - HTTP API handlers for the hospital back office

PURPOSE:
  Exposes the billing, payroll, attendance, accounts, pharmacy, and
  registry domains via REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic.

ENDPOINTS:
  Bills:
    GET    /api/bills                    List bills (?status=PAID|UNPAID|PARTIAL)
    POST   /api/bills                    Create bill (mints BILL-xxxxx)
    GET    /api/bills/stats              Billing summary
    GET    /api/bills/{id}               Get bill
    PUT    /api/bills/{id}/charges       Replace charge components
    DELETE /api/bills/{id}               Delete bill and its payment trail
    GET    /api/bills/{id}/payments      Payment audit trail
    POST   /api/bills/{id}/payments      Record a payment

  Salaries:
    GET    /api/salaries                 List (?month=YYYY-MM-DD)
    POST   /api/salaries                 Create (one per employee per month)
    GET    /api/salaries/stats           Payroll summary
    GET    /api/salaries/{id}            Get salary
    POST   /api/salaries/{id}/payments   Pay toward a salary

  Accounts:
    GET/POST /api/accounts, GET /api/accounts/stats, GET /api/accounts/{id}
    GET/POST /api/transactions (?account=), POST /api/transactions/transfer

  Pharmacy:
    GET/POST /api/medicines (?low_stock=true), GET /api/medicines/stats
    GET /api/medicines/{id}, POST /api/medicines/{id}/receive|dispense

  Attendance:
    GET/POST /api/attendance (?date=YYYY-MM-DD)
    GET/POST /api/leaves (?employee_id=), GET /api/leaves/{id},
    PUT /api/leaves/{id}/status

  Registry:
    /api/patients, /api/doctors, /api/employees, /api/suppliers,
    /api/purchase-orders (+ PUT {id}/status), /api/appointments

  Reports:
    GET /api/reports/daily-billing?date=YYYY-MM-DD

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate salary month)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/harborview/backoffice/accounts"
	"github.com/harborview/backoffice/attendance"
	"github.com/harborview/backoffice/billing"
	"github.com/harborview/backoffice/ledger"
	"github.com/harborview/backoffice/payroll"
	"github.com/harborview/backoffice/pharmacy"
	"github.com/harborview/backoffice/registry"
	"github.com/harborview/backoffice/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// BILL HANDLERS
// =============================================================================

// ListBills returns all bills, optionally filtered by status.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Store.ListBills(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTOs(bills))
}

// CreateBill validates the charge set, derives totals and status, and
// persists the bill under a freshly minted bill number.
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PatientID == "" {
		writeError(w, http.StatusBadRequest, "patient_id is required", nil)
		return
	}

	charges, err := parseCharges(req.ChargesRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid charge amount", err)
		return
	}
	paid, err := parseOptionalDecimal(req.AmountPaid)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount_paid", err)
		return
	}

	bill, err := billing.New(req.PatientID, charges, paid, req.PaymentMethod, req.Notes)
	if err != nil {
		writeDomainError(w, "Failed to create bill", err)
		return
	}

	created, err := h.Store.CreateBill(r.Context(), bill, req.PaymentMethod)
	if err != nil {
		writeDomainError(w, "Failed to create bill", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBillDTO(created))
}

// GetBill returns a single bill.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.Store.GetBill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bill", err)
		return
	}
	if bill == nil {
		writeError(w, http.StatusNotFound, "Bill not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(*bill))
}

// UpdateBillCharges replaces the charge components and recomputes totals.
// The amount already paid carries forward.
func (h *Handler) UpdateBillCharges(w http.ResponseWriter, r *http.Request) {
	var req ChargesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	charges, err := parseCharges(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid charge amount", err)
		return
	}

	updated, err := h.Store.UpdateBillCharges(r.Context(), chi.URLParam(r, "id"), charges)
	if err != nil {
		writeDomainError(w, "Failed to update bill", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(updated))
}

// DeleteBill removes a bill and its payment audit trail.
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteBill(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete bill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordBillPayment applies a payment against the bill's balance.
func (h *Handler) RecordBillPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	bill, err := h.Store.RecordBillPayment(r.Context(), chi.URLParam(r, "id"), amount, req.Method)
	if err != nil {
		writeDomainError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(bill))
}

// ListBillPayments returns the payment audit trail for a bill.
func (h *Handler) ListBillPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Store.ListBillPayments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBillStats summarizes the whole billing book.
func (h *Handler) GetBillStats(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Store.ListBills(r.Context(), "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillStatsDTO(billing.Summarize(bills)))
}

// GetDailyBillingReport summarizes bills created on one calendar day.
// GET /api/reports/daily-billing?date=YYYY-MM-DD (defaults to today)
func (h *Handler) GetDailyBillingReport(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		day = parsed
	}

	bills, err := h.Store.ListBills(r.Context(), "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute report", err)
		return
	}
	summary := billing.SummarizeDay(bills, day)
	writeJSON(w, http.StatusOK, DailyBillingDTO{
		Date:  summary.Date.Format(dateLayout),
		Stats: toBillStatsDTO(summary.Stats),
	})
}

// =============================================================================
// SALARY HANDLERS
// =============================================================================

// ListSalaries returns salary records, optionally for one month.
func (h *Handler) ListSalaries(w http.ResponseWriter, r *http.Request) {
	var month time.Time
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM-DD)", err)
			return
		}
		month = parsed
	}

	salaries, err := h.Store.ListSalaries(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list salaries", err)
		return
	}
	dtos := make([]SalaryDTO, len(salaries))
	for i, s := range salaries {
		dtos[i] = toSalaryDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSalary creates one employee's salary record for one month.
func (h *Handler) CreateSalary(w http.ResponseWriter, r *http.Request) {
	var req CreateSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	month, err := time.Parse(dateLayout, req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM-DD)", err)
		return
	}
	basic, err := parseOptionalDecimal(req.BasicSalary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid basic_salary", err)
		return
	}
	bonus, err := parseOptionalDecimal(req.Bonus)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bonus", err)
		return
	}
	deductions, err := parseOptionalDecimal(req.Deductions)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid deductions", err)
		return
	}

	sal, err := payroll.New(req.EmployeeID, month, basic, bonus, deductions)
	if err != nil {
		writeDomainError(w, "Failed to create salary", err)
		return
	}
	created, err := h.Store.CreateSalary(r.Context(), sal)
	if err != nil {
		writeDomainError(w, "Failed to create salary", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSalaryDTO(created))
}

// GetSalary returns a single salary record.
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	sal, err := h.Store.GetSalary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get salary", err)
		return
	}
	if sal == nil {
		writeError(w, http.StatusNotFound, "Salary not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryDTO(*sal))
}

// PaySalary applies a payment toward a salary's balance.
func (h *Handler) PaySalary(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	sal, err := h.Store.PaySalary(r.Context(), chi.URLParam(r, "id"), amount)
	if err != nil {
		writeDomainError(w, "Failed to pay salary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryDTO(sal))
}

// GetSalaryStats summarizes the payroll book.
func (h *Handler) GetSalaryStats(w http.ResponseWriter, r *http.Request) {
	salaries, err := h.Store.ListSalaries(r.Context(), time.Time{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}
	s := payroll.Summarize(salaries)
	writeJSON(w, http.StatusOK, SalaryStatsDTO{
		TotalSalaries: s.TotalSalaries,
		Paid:          s.Paid,
		Unpaid:        s.Unpaid,
		Partial:       s.Partial,
		TotalPayroll:  s.TotalPayroll.String(),
		TotalPaidOut:  s.TotalPaidOut.String(),
		Outstanding:   s.Outstanding.String(),
	})
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}
	dtos := make([]AccountDTO, len(accts))
	for i, a := range accts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.AccountNumber == "" || req.AccountName == "" {
		writeError(w, http.StatusBadRequest, "account_number and account_name are required", nil)
		return
	}
	balance, err := parseOptionalDecimal(req.OpeningBalance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid opening_balance", err)
		return
	}

	created, err := h.Store.CreateAccount(r.Context(), accounts.Account{
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		Type:          accounts.AccountType(req.AccountType),
		BankName:      req.BankName,
		Branch:        req.Branch,
		Balance:       balance,
	})
	if err != nil {
		writeDomainError(w, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(created))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Store.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if acct == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(*acct))
}

func (h *Handler) GetAccountStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.AccountStats(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, AccountStatsDTO{
		TotalBalance:   stats.TotalBalance.String(),
		ActiveAccounts: stats.ActiveAccounts,
		MonthlyIncome:  stats.MonthlyIncome.String(),
		MonthlyExpense: stats.MonthlyExpense.String(),
	})
}

// ListTransactions returns transactions, optionally for one account.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Store.ListTransactions(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransaction posts an INCOME or EXPENSE against an account.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	posted, err := h.Store.PostTransaction(r.Context(), accounts.Transaction{
		AccountNumber: req.AccountNumber,
		Type:          accounts.TransactionType(req.Type),
		Category:      req.Category,
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Description:   req.Description,
		Date:          date,
	})
	if err != nil {
		writeDomainError(w, "Failed to post transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(posted))
}

// Transfer moves money between two accounts atomically.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	tx, err := h.Store.Transfer(r.Context(), accounts.Transaction{
		AccountNumber:  req.FromAccount,
		CounterAccount: req.ToAccount,
		Type:           accounts.TxTransfer,
		Category:       accounts.CategoryTransfer,
		Amount:         amount,
		Description:    req.Description,
		Date:           date,
	})
	if err != nil {
		writeDomainError(w, "Failed to transfer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// =============================================================================
// PHARMACY HANDLERS
// =============================================================================

func (h *Handler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	lowOnly := r.URL.Query().Get("low_stock") == "true"
	meds, err := h.Store.ListMedicines(r.Context(), lowOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list medicines", err)
		return
	}
	dtos := make([]MedicineDTO, len(meds))
	for i, m := range meds {
		dtos[i] = toMedicineDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	var req CreateMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	expiry, err := time.Parse(dateLayout, req.ExpiryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expiry_date (use YYYY-MM-DD)", err)
		return
	}
	purchase, err := parseOptionalDecimal(req.PurchasePrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid purchase_price", err)
		return
	}
	selling, err := parseOptionalDecimal(req.SellingPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid selling_price", err)
		return
	}

	created, err := h.Store.CreateMedicine(r.Context(), pharmacy.Medicine{
		Name:          req.Name,
		Category:      req.Category,
		Manufacturer:  req.Manufacturer,
		Description:   req.Description,
		StockQuantity: req.StockQuantity,
		Unit:          req.Unit,
		ExpiryDate:    expiry,
		PurchasePrice: purchase,
		SellingPrice:  selling,
		ReorderLevel:  req.ReorderLevel,
	})
	if err != nil {
		writeDomainError(w, "Failed to create medicine", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMedicineDTO(created))
}

func (h *Handler) GetMedicine(w http.ResponseWriter, r *http.Request) {
	med, err := h.Store.GetMedicine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get medicine", err)
		return
	}
	if med == nil {
		writeError(w, http.StatusNotFound, "Medicine not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toMedicineDTO(*med))
}

// ReceiveStock adds delivered units to a medicine's stock.
func (h *Handler) ReceiveStock(w http.ResponseWriter, r *http.Request) {
	h.moveStock(w, r, h.Store.ReceiveStock)
}

// DispenseStock removes dispensed units. The whole request is rejected
// when stock is short.
func (h *Handler) DispenseStock(w http.ResponseWriter, r *http.Request) {
	h.moveStock(w, r, h.Store.DispenseStock)
}

func (h *Handler) moveStock(w http.ResponseWriter, r *http.Request,
	move func(ctx context.Context, id string, qty int) (pharmacy.Medicine, error)) {
	var req StockMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	med, err := move(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeDomainError(w, "Failed to move stock", err)
		return
	}
	writeJSON(w, http.StatusOK, toMedicineDTO(med))
}

func (h *Handler) GetMedicineStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.MedicineStats(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, MedicineStatsDTO{
		TotalMedicines: stats.TotalMedicines,
		LowStock:       stats.LowStock,
		Expired:        stats.Expired,
		StockValuation: stats.StockValuation.String(),
	})
}

// =============================================================================
// REGISTRY HANDLERS
// =============================================================================

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.Store.ListPatients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list patients", err)
		return
	}
	dtos := make([]PatientDTO, len(patients))
	for i, p := range patients {
		dtos[i] = toPatientDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	created, err := h.Store.CreatePatient(r.Context(), registry.Patient{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		writeDomainError(w, "Failed to create patient", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPatientDTO(created))
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPatient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get patient", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Patient not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPatientDTO(*p))
}

func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.Store.ListDoctors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list doctors", err)
		return
	}
	dtos := make([]DoctorDTO, len(doctors))
	for i, d := range doctors {
		dtos[i] = toDoctorDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	fee, err := parseOptionalDecimal(req.ConsultationFee)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid consultation_fee", err)
		return
	}
	created, err := h.Store.CreateDoctor(r.Context(), registry.Doctor{
		Name:            req.Name,
		Specialization:  req.Specialization,
		ConsultationFee: fee,
	})
	if err != nil {
		writeDomainError(w, "Failed to create doctor", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDoctorDTO(created))
}

func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	d, err := h.Store.GetDoctor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get doctor", err)
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "Doctor not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toDoctorDTO(*d))
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	salary, err := parseOptionalDecimal(req.MonthlySalary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid monthly_salary", err)
		return
	}
	joinDate, err := parseDateOrToday(req.JoinDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid join_date (use YYYY-MM-DD)", err)
		return
	}
	created, err := h.Store.CreateEmployee(r.Context(), registry.Employee{
		Name:          req.Name,
		Department:    req.Department,
		Designation:   req.Designation,
		MonthlySalary: salary,
		JoinDate:      joinDate,
	})
	if err != nil {
		writeDomainError(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(created))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*e))
}

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Store.ListSuppliers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list suppliers", err)
		return
	}
	dtos := make([]SupplierDTO, len(suppliers))
	for i, s := range suppliers {
		dtos[i] = toSupplierDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req CreateSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "company_name is required", nil)
		return
	}
	created, err := h.Store.CreateSupplier(r.Context(), registry.Supplier{
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Category:      req.Category,
		Phone:         req.Phone,
	})
	if err != nil {
		writeDomainError(w, "Failed to create supplier", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSupplierDTO(created))
}

func (h *Handler) ListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Store.ListPurchaseOrders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list purchase orders", err)
		return
	}
	dtos := make([]PurchaseOrderDTO, len(orders))
	for i, po := range orders {
		dtos[i] = toPurchaseOrderDTO(po)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req CreatePurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.SupplierID == "" {
		writeError(w, http.StatusBadRequest, "supplier_id is required", nil)
		return
	}
	orderDate, err := parseDateOrToday(req.OrderDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order_date (use YYYY-MM-DD)", err)
		return
	}
	total, err := parseOptionalDecimal(req.TotalAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total_amount", err)
		return
	}

	po := registry.PurchaseOrder{
		SupplierID:  req.SupplierID,
		OrderDate:   orderDate,
		TotalAmount: total,
		Notes:       req.Notes,
	}
	if req.ExpectedDelivery != "" {
		expected, err := time.Parse(dateLayout, req.ExpectedDelivery)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid expected_delivery (use YYYY-MM-DD)", err)
			return
		}
		po.ExpectedDelivery = &expected
	}

	created, err := h.Store.CreatePurchaseOrder(r.Context(), po)
	if err != nil {
		writeDomainError(w, "Failed to create purchase order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPurchaseOrderDTO(created))
}

func (h *Handler) GetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.Store.GetPurchaseOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get purchase order", err)
		return
	}
	if po == nil {
		writeError(w, http.StatusNotFound, "Purchase order not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseOrderDTO(*po))
}

// UpdatePurchaseOrderStatus walks an order through its status machine.
func (h *Handler) UpdatePurchaseOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	updated, err := h.Store.UpdatePurchaseOrderStatus(r.Context(),
		chi.URLParam(r, "id"), registry.OrderStatus(req.Status))
	if err != nil {
		writeDomainError(w, "Failed to update status", err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseOrderDTO(updated))
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.Store.ListAppointments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list appointments", err)
		return
	}
	dtos := make([]AppointmentDTO, len(appts))
	for i, a := range appts {
		dtos[i] = toAppointmentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PatientID == "" || req.DoctorID == "" {
		writeError(w, http.StatusBadRequest, "patient_id and doctor_id are required", nil)
		return
	}
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.Store.CreateAppointment(r.Context(), registry.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      date,
		Time:      req.Time,
		Type:      req.Type,
		Symptoms:  req.Symptoms,
		Notes:     req.Notes,
	})
	if err != nil {
		writeDomainError(w, "Failed to create appointment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentDTO(created))
}

// =============================================================================
// ATTENDANCE AND LEAVES
// =============================================================================

// ListAttendance lists attendance rows, or one day's with ?date=YYYY-MM-DD.
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	var day time.Time
	if s := r.URL.Query().Get("date"); s != "" {
		var err error
		if day, err = time.Parse(dateLayout, s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date filter (use YYYY-MM-DD)", err)
			return
		}
	}
	records, err := h.Store.ListAttendance(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
		return
	}
	dtos := make([]AttendanceDTO, len(records))
	for i, a := range records {
		dtos[i] = toAttendanceDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	var req CreateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	checkIn, err := parseClockTime(date, req.CheckIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_in (use HH:MM)", err)
		return
	}
	checkOut, err := parseClockTime(date, req.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_out (use HH:MM)", err)
		return
	}

	created, err := h.Store.CreateAttendance(r.Context(), attendance.Attendance{
		EmployeeID: req.EmployeeID,
		Date:       date,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     attendance.Status(req.Status),
		Notes:      req.Notes,
	})
	if err != nil {
		writeDomainError(w, "Failed to record attendance", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttendanceDTO(created))
}

// ListLeaves lists leave requests, or one employee's with ?employee_id=.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.Store.ListLeaves(r.Context(), r.URL.Query().Get("employee_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}
	dtos := make([]LeaveDTO, len(leaves))
	for i, l := range leaves {
		dtos[i] = toLeaveDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.Store.CreateLeave(r.Context(), attendance.Leave{
		EmployeeID: req.EmployeeID,
		Type:       attendance.LeaveType(req.Type),
		StartDate:  start,
		EndDate:    end,
		Reason:     req.Reason,
	})
	if err != nil {
		writeDomainError(w, "Failed to create leave request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(created))
}

func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	l, err := h.Store.GetLeave(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get leave", err)
		return
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "Leave not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(*l))
}

// UpdateLeaveStatus walks a leave request through its status machine.
func (h *Handler) UpdateLeaveStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeaveStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	updated, err := h.Store.UpdateLeaveStatus(r.Context(), chi.URLParam(r, "id"),
		attendance.LeaveStatus(req.Status), req.ApprovedBy, req.Remarks)
	if err != nil {
		writeDomainError(w, "Failed to update leave status", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(updated))
}

// =============================================================================
// HELPERS
// =============================================================================

func parseCharges(req ChargesRequest) (billing.Charges, error) {
	var charges billing.Charges
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&charges.ConsultationFee, req.ConsultationFee},
		{&charges.MedicineCharges, req.MedicineCharges},
		{&charges.LabCharges, req.LabCharges},
		{&charges.OtherCharges, req.OtherCharges},
		{&charges.Discount, req.Discount},
		{&charges.Tax, req.Tax},
	}
	for _, f := range fields {
		d, err := parseOptionalDecimal(f.src)
		if err != nil {
			return billing.Charges{}, err
		}
		*f.dst = d
	}
	return charges, nil
}

func parseDateOrToday(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	return time.Parse(dateLayout, s)
}

// parseClockTime combines a wall-clock HH:MM with the attendance date.
// Empty means not clocked yet and yields nil.
func parseClockTime(date time.Time, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	clock, err := time.Parse("15:04", s)
	if err != nil {
		return nil, err
	}
	t := time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain and store errors onto HTTP statuses:
// validation failures are the client's fault (400), missing records 404,
// duplicate salary months 409, everything else 500.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case ledger.IsClientError(err),
		errors.Is(err, registry.ErrInvalidStatusChange),
		errors.Is(err, attendance.ErrInvalidStatusChange),
		errors.Is(err, attendance.ErrCheckOutBeforeCheckIn),
		errors.Is(err, attendance.ErrInvalidLeaveRange),
		errors.Is(err, accounts.ErrNonPositiveAmount),
		errors.Is(err, accounts.ErrUnknownTransactionType),
		errors.Is(err, accounts.ErrAccountNotActive),
		errors.Is(err, accounts.ErrUnknownCategory),
		errors.Is(err, pharmacy.ErrInsufficientStock),
		errors.Is(err, pharmacy.ErrNonPositiveQuantity):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, sqlite.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, sqlite.ErrDuplicateSalaryMonth),
		errors.Is(err, sqlite.ErrDuplicateAttendance),
		errors.Is(err, sqlite.ErrDuplicateAccount):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
