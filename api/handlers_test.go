/*
handlers_test.go - HTTP handler tests over an in-memory store

Tests for:
- Bill creation, payment recording, and validation status codes
- Salary month conflicts
- Attendance and leave approval flows
- Transfers moving both balances
- Stock dispensing rejections
- Purchase order status transitions
- The daily billing report
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/backoffice/store/sqlite"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewRouter(NewHandler(store))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func createPatient(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/patients", CreatePatientRequest{Name: "Asha Rahman"})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[PatientDTO](t, rec).PatientID
}

// =============================================================================
// BILLS
// =============================================================================

func TestCreateBill_ReturnsDerivedFields(t *testing.T) {
	router := newTestRouter(t)
	patientID := createPatient(t, router)

	rec := doJSON(t, router, "POST", "/api/bills", CreateBillRequest{
		PatientID:     patientID,
		AmountPaid:    "300",
		PaymentMethod: "CASH",
		ChargesRequest: ChargesRequest{
			ConsultationFee: "500",
			MedicineCharges: "235.75",
			LabCharges:      "150",
			Discount:        "50",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	bill := decode[BillDTO](t, rec)
	assert.Equal(t, "BILL-00001", bill.BillNumber)
	assert.Equal(t, "885.75", bill.Subtotal)
	assert.Equal(t, "835.75", bill.TotalAmount)
	assert.Equal(t, "535.75", bill.Balance)
	assert.Equal(t, "PARTIAL", bill.Status)
}

func TestCreateBill_RoundsAmountsToTwoDecimalPlaces(t *testing.T) {
	router := newTestRouter(t)
	patientID := createPatient(t, router)

	rec := doJSON(t, router, "POST", "/api/bills", CreateBillRequest{
		PatientID:  patientID,
		AmountPaid: "5.0049",
		ChargesRequest: ChargesRequest{
			ConsultationFee: "10.005",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	bill := decode[BillDTO](t, rec)
	assert.Equal(t, "10.01", bill.TotalAmount)
	assert.Equal(t, "5", bill.AmountPaid)
	assert.Equal(t, "5.01", bill.Balance)
}

func TestCreateBill_RejectsNonPositiveTotal(t *testing.T) {
	router := newTestRouter(t)
	patientID := createPatient(t, router)

	rec := doJSON(t, router, "POST", "/api/bills", CreateBillRequest{
		PatientID: patientID,
		ChargesRequest: ChargesRequest{
			ConsultationFee: "100",
			Discount:        "100",
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBill_RejectsInitialPaymentAboveTotal(t *testing.T) {
	router := newTestRouter(t)
	patientID := createPatient(t, router)

	rec := doJSON(t, router, "POST", "/api/bills", CreateBillRequest{
		PatientID:  patientID,
		AmountPaid: "940.00",
		ChargesRequest: ChargesRequest{
			ConsultationFee: "16.00",
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordBillPayment_FlowToPaid(t *testing.T) {
	router := newTestRouter(t)
	patientID := createPatient(t, router)

	rec := doJSON(t, router, "POST", "/api/bills", CreateBillRequest{
		PatientID:      patientID,
		ChargesRequest: ChargesRequest{ConsultationFee: "1000"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	billNumber := decode[BillDTO](t, rec).BillNumber

	rec = doJSON(t, router, "POST", "/api/bills/"+billNumber+"/payments",
		PaymentRequest{Amount: "400", Method: "CARD"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PARTIAL", decode[BillDTO](t, rec).Status)

	// Paying more than the balance is a client error.
	rec = doJSON(t, router, "POST", "/api/bills/"+billNumber+"/payments",
		PaymentRequest{Amount: "600.01", Method: "CASH"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, "POST", "/api/bills/"+billNumber+"/payments",
		PaymentRequest{Amount: "600", Method: "CASH"})
	require.Equal(t, http.StatusOK, rec.Code)
	paid := decode[BillDTO](t, rec)
	assert.Equal(t, "PAID", paid.Status)
	assert.Equal(t, "0", paid.Balance)

	// Both payments are on the audit trail.
	rec = doJSON(t, router, "GET", "/api/bills/"+billNumber+"/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]PaymentDTO](t, rec), 2)
}

func TestGetBill_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, "GET", "/api/bills/BILL-99999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDailyBillingReport(t *testing.T) {
	router := newTestRouter(t)
	patientID := createPatient(t, router)

	rec := doJSON(t, router, "POST", "/api/bills", CreateBillRequest{
		PatientID:      patientID,
		ChargesRequest: ChargesRequest{ConsultationFee: "500"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	today := time.Now().UTC().Format("2006-01-02")
	rec = doJSON(t, router, "GET", "/api/reports/daily-billing?date="+today, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[DailyBillingDTO](t, rec)
	assert.Equal(t, today, report.Date)
	assert.Equal(t, 1, report.Stats.TotalBills)
	assert.Equal(t, "500", report.Stats.TotalBilled)

	// A day with no bills reports zeros.
	rec = doJSON(t, router, "GET", "/api/reports/daily-billing?date=2020-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[DailyBillingDTO](t, rec).Stats.TotalBills)
}

// =============================================================================
// SALARIES
// =============================================================================

func TestCreateSalary_ConflictOnDuplicateMonth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/employees", CreateEmployeeRequest{
		Name:          "Farid Khan",
		MonthlySalary: "45000",
		JoinDate:      "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	employeeID := decode[EmployeeDTO](t, rec).EmployeeID

	req := CreateSalaryRequest{
		EmployeeID:  employeeID,
		Month:       "2026-03-15",
		BasicSalary: "45000",
		Bonus:       "5000",
		Deductions:  "2500",
	}
	rec = doJSON(t, router, "POST", "/api/salaries", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	sal := decode[SalaryDTO](t, rec)
	assert.Equal(t, "SAL-00001", sal.SalaryNumber)
	assert.Equal(t, "2026-03-01", sal.Month) // normalized to the first
	assert.Equal(t, "47500", sal.TotalAmount)

	// Same employee, same month: conflict.
	rec = doJSON(t, router, "POST", "/api/salaries", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func TestTransfer_MovesBothBalances(t *testing.T) {
	router := newTestRouter(t)

	for i, balance := range []string{"5000", "1000"} {
		rec := doJSON(t, router, "POST", "/api/accounts", CreateAccountRequest{
			AccountNumber:  fmt.Sprintf("ACC-%d", i+1),
			AccountName:    "Operating",
			AccountType:    "BANK",
			OpeningBalance: balance,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, "POST", "/api/transactions/transfer", TransferRequest{
		FromAccount: "ACC-1",
		ToAccount:   "ACC-2",
		Amount:      "750",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, "GET", "/api/accounts/ACC-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4250", decode[AccountDTO](t, rec).Balance)

	rec = doJSON(t, router, "GET", "/api/accounts/ACC-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1750", decode[AccountDTO](t, rec).Balance)
}

func TestCreateTransaction_RejectsUnknownType(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/accounts", CreateAccountRequest{
		AccountNumber: "ACC-1",
		AccountName:   "Operating",
		AccountType:   "CASH",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, "POST", "/api/transactions", CreateTransactionRequest{
		AccountNumber: "ACC-1",
		Type:          "SIDEWAYS",
		Category:      "OTHER_INCOME",
		Amount:        "100",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTransaction_RejectsCategoryOutsideChart(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/accounts", CreateAccountRequest{
		AccountNumber: "ACC-1",
		AccountName:   "Operating",
		AccountType:   "CASH",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, "POST", "/api/transactions", CreateTransactionRequest{
		AccountNumber: "ACC-1",
		Type:          "INCOME",
		Category:      "LOTTERY",
		Amount:        "100",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PHARMACY
// =============================================================================

func TestDispenseStock_RejectsWholeRequestWhenShort(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/medicines", CreateMedicineRequest{
		Name:          "Amoxicillin 500mg",
		StockQuantity: 10,
		ExpiryDate:    "2027-12-31",
		PurchasePrice: "40",
		SellingPrice:  "60",
		ReorderLevel:  5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	medicineID := decode[MedicineDTO](t, rec).MedicineID

	rec = doJSON(t, router, "POST", "/api/medicines/"+medicineID+"/dispense",
		StockMovementRequest{Quantity: 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Stock unchanged after the rejection.
	rec = doJSON(t, router, "GET", "/api/medicines/"+medicineID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, decode[MedicineDTO](t, rec).StockQuantity)

	rec = doJSON(t, router, "POST", "/api/medicines/"+medicineID+"/receive",
		StockMovementRequest{Quantity: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15, decode[MedicineDTO](t, rec).StockQuantity)
}

// =============================================================================
// PURCHASE ORDERS
// =============================================================================

func TestPurchaseOrderStatus_OverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/suppliers", CreateSupplierRequest{
		CompanyName: "MediSupply Ltd",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	supplierID := decode[SupplierDTO](t, rec).SupplierID

	rec = doJSON(t, router, "POST", "/api/purchase-orders", CreatePurchaseOrderRequest{
		SupplierID:  supplierID,
		TotalAmount: "12000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	po := decode[PurchaseOrderDTO](t, rec)
	assert.Equal(t, "PENDING", po.Status)

	// Skipping approval is a client error.
	rec = doJSON(t, router, "PUT", "/api/purchase-orders/"+po.OrderNumber+"/status",
		UpdateOrderStatusRequest{Status: "DELIVERED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, "PUT", "/api/purchase-orders/"+po.OrderNumber+"/status",
		UpdateOrderStatusRequest{Status: "APPROVED"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "APPROVED", decode[PurchaseOrderDTO](t, rec).Status)
}

// =============================================================================
// ATTENDANCE AND LEAVES
// =============================================================================

func createEmployee(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/employees", CreateEmployeeRequest{
		Name:          "Farid Khan",
		MonthlySalary: "45000",
		JoinDate:      "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[EmployeeDTO](t, rec).EmployeeID
}

func TestCreateAttendance_ComputesWorkingHours(t *testing.T) {
	router := newTestRouter(t)
	employeeID := createEmployee(t, router)

	rec := doJSON(t, router, "POST", "/api/attendance", CreateAttendanceRequest{
		EmployeeID: employeeID,
		Date:       "2026-08-10",
		CheckIn:    "09:00",
		CheckOut:   "17:30",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	att := decode[AttendanceDTO](t, rec)
	assert.Equal(t, "ATT-00001", att.AttendanceID)
	assert.Equal(t, "PRESENT", att.Status)
	assert.InDelta(t, 8.5, att.WorkingHours, 0.001)

	// A second row for the same employee and day conflicts.
	rec = doJSON(t, router, "POST", "/api/attendance", CreateAttendanceRequest{
		EmployeeID: employeeID,
		Date:       "2026-08-10",
		Status:     "HALF_DAY",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLeaveApproval_OverHTTP(t *testing.T) {
	router := newTestRouter(t)
	employeeID := createEmployee(t, router)

	rec := doJSON(t, router, "POST", "/api/leaves", CreateLeaveRequest{
		EmployeeID: employeeID,
		Type:       "SICK",
		StartDate:  "2026-09-01",
		EndDate:    "2026-09-03",
		Reason:     "flu",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	leave := decode[LeaveDTO](t, rec)
	assert.Equal(t, "PENDING", leave.Status)
	assert.Equal(t, 3, leave.TotalDays)

	rec = doJSON(t, router, "PUT", "/api/leaves/"+leave.LeaveID+"/status",
		UpdateLeaveStatusRequest{Status: "APPROVED", ApprovedBy: "Dr. Noor"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "APPROVED", decode[LeaveDTO](t, rec).Status)

	// Approved is terminal.
	rec = doJSON(t, router, "PUT", "/api/leaves/"+leave.LeaveID+"/status",
		UpdateLeaveStatusRequest{Status: "CANCELLED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLeave_RejectsBackwardsRange(t *testing.T) {
	router := newTestRouter(t)
	employeeID := createEmployee(t, router)

	rec := doJSON(t, router, "POST", "/api/leaves", CreateLeaveRequest{
		EmployeeID: employeeID,
		Type:       "CASUAL",
		StartDate:  "2026-09-10",
		EndDate:    "2026-09-05",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
