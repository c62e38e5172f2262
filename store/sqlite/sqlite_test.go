/*
sqlite_test.go - Store tests against an in-memory database

Tests for:
- Identifier issuance (sequential codes, fallback, retry)
- Bill lifecycle (create, pay, recharge, delete) and the payment audit trail
- Salary uniqueness per employee-month
- Account posting and atomic transfers
- Medicine stock movements
- Purchase order status machine
*/
package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/backoffice/accounts"
	"github.com/harborview/backoffice/attendance"
	"github.com/harborview/backoffice/billing"
	"github.com/harborview/backoffice/ledger"
	"github.com/harborview/backoffice/payroll"
	"github.com/harborview/backoffice/pharmacy"
	"github.com/harborview/backoffice/registry"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func amt(s string) decimal.Decimal {
	return ledger.MustParseAmount(s)
}

func seedPatient(t *testing.T, store *Store) registry.Patient {
	t.Helper()
	p, err := store.CreatePatient(context.Background(), registry.Patient{Name: "Asha Rahman"})
	require.NoError(t, err)
	return p
}

func seedEmployee(t *testing.T, store *Store) registry.Employee {
	t.Helper()
	e, err := store.CreateEmployee(context.Background(), registry.Employee{
		Name:          "Farid Khan",
		Department:    "Nursing",
		MonthlySalary: amt("45000"),
		JoinDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return e
}

func mustBill(t *testing.T, patientID string, charges billing.Charges, paid string) billing.Bill {
	t.Helper()
	b, err := billing.New(patientID, charges, amt(paid), "CASH", "")
	require.NoError(t, err)
	return b
}

// =============================================================================
// IDENTIFIER ISSUANCE
// =============================================================================

func TestIdentifiers_SequentialPerTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p1 := seedPatient(t, store)
	p2, err := store.CreatePatient(ctx, registry.Patient{Name: "Second Patient"})
	require.NoError(t, err)
	assert.Equal(t, "PAT-00001", p1.PatientID)
	assert.Equal(t, "PAT-00002", p2.PatientID)

	// Doctors use a 3-digit pad.
	d, err := store.CreateDoctor(ctx, registry.Doctor{Name: "Dr. Noor", ConsultationFee: amt("500")})
	require.NoError(t, err)
	assert.Equal(t, "DOC-001", d.DoctorID)

	e := seedEmployee(t, store)
	assert.Equal(t, "EMP-001", e.EmployeeID)
}

func TestIdentifiers_ContinueAfterLastRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.CreatePatient(ctx, registry.Patient{Name: "P"})
		require.NoError(t, err)
	}
	p, err := store.CreatePatient(ctx, registry.Patient{Name: "P"})
	require.NoError(t, err)
	assert.Equal(t, "PAT-00004", p.PatientID)
}

// =============================================================================
// BILLS
// =============================================================================

func TestCreateBill_MintsNumberAndAuditRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	patient := seedPatient(t, store)

	charges := billing.Charges{
		ConsultationFee: amt("500"),
		MedicineCharges: amt("235.75"),
		LabCharges:      amt("150"),
		Discount:        amt("50"),
		Tax:             amt("0"),
	}
	bill := mustBill(t, patient.PatientID, charges, "300")

	created, err := store.CreateBill(ctx, bill, "CASH")
	require.NoError(t, err)
	assert.Equal(t, "BILL-00001", created.BillNumber)
	assert.Equal(t, ledger.StatusPartial, created.Status)
	assert.True(t, created.Balance.Equal(amt("535.75")))

	// The initial payment must leave an audit row.
	payments, err := store.ListBillPayments(ctx, created.BillNumber)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(amt("300")))
	assert.Equal(t, "CASH", payments[0].Method)
	assert.NotEmpty(t, payments[0].ID)

	second, err := store.CreateBill(ctx, mustBill(t, patient.PatientID, charges, "0"), "")
	require.NoError(t, err)
	assert.Equal(t, "BILL-00002", second.BillNumber)

	// No payment, no audit row.
	payments, err = store.ListBillPayments(ctx, second.BillNumber)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestRecordBillPayment_UpdatesStatusAndTrail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	patient := seedPatient(t, store)

	charges := billing.Charges{ConsultationFee: amt("1000")}
	created, err := store.CreateBill(ctx, mustBill(t, patient.PatientID, charges, "0"), "")
	require.NoError(t, err)

	after, err := store.RecordBillPayment(ctx, created.BillNumber, amt("400"), "CARD")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPartial, after.Status)
	assert.True(t, after.Balance.Equal(amt("600")))

	after, err = store.RecordBillPayment(ctx, created.BillNumber, amt("600"), "CASH")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, after.Status)
	assert.True(t, after.Balance.IsZero())

	payments, err := store.ListBillPayments(ctx, created.BillNumber)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestRecordBillPayment_RejectsOverpaymentWithoutPersisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	patient := seedPatient(t, store)

	created, err := store.CreateBill(ctx,
		mustBill(t, patient.PatientID, billing.Charges{ConsultationFee: amt("500")}, "0"), "")
	require.NoError(t, err)

	_, err = store.RecordBillPayment(ctx, created.BillNumber, amt("500.01"), "CASH")
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInvalidPayment)

	// Nothing should have changed.
	reloaded, err := store.GetBill(ctx, created.BillNumber)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.True(t, reloaded.AmountPaid.IsZero())

	payments, err := store.ListBillPayments(ctx, created.BillNumber)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestUpdateBillCharges_PreservesAmountPaid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	patient := seedPatient(t, store)

	created, err := store.CreateBill(ctx,
		mustBill(t, patient.PatientID, billing.Charges{ConsultationFee: amt("500")}, "200"), "CASH")
	require.NoError(t, err)

	updated, err := store.UpdateBillCharges(ctx, created.BillNumber, billing.Charges{
		ConsultationFee: amt("500"),
		LabCharges:      amt("300"),
	})
	require.NoError(t, err)
	assert.True(t, updated.Total.Equal(amt("800")))
	assert.True(t, updated.AmountPaid.Equal(amt("200")))
	assert.True(t, updated.Balance.Equal(amt("600")))
	assert.Equal(t, ledger.StatusPartial, updated.Status)
}

func TestGetBill_MissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	bill, err := store.GetBill(context.Background(), "BILL-99999")
	require.NoError(t, err)
	assert.Nil(t, bill)
}

func TestDeleteBill_RemovesBillAndPayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	patient := seedPatient(t, store)

	created, err := store.CreateBill(ctx,
		mustBill(t, patient.PatientID, billing.Charges{ConsultationFee: amt("500")}, "100"), "CASH")
	require.NoError(t, err)

	require.NoError(t, store.DeleteBill(ctx, created.BillNumber))

	gone, err := store.GetBill(ctx, created.BillNumber)
	require.NoError(t, err)
	assert.Nil(t, gone)

	payments, err := store.ListBillPayments(ctx, created.BillNumber)
	require.NoError(t, err)
	assert.Empty(t, payments)

	assert.ErrorIs(t, store.DeleteBill(ctx, created.BillNumber), ErrNotFound)
}

func TestListBills_StatusFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	patient := seedPatient(t, store)

	_, err := store.CreateBill(ctx,
		mustBill(t, patient.PatientID, billing.Charges{ConsultationFee: amt("500")}, "500"), "CASH")
	require.NoError(t, err)
	_, err = store.CreateBill(ctx,
		mustBill(t, patient.PatientID, billing.Charges{ConsultationFee: amt("800")}, "0"), "")
	require.NoError(t, err)

	all, err := store.ListBills(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	paid, err := store.ListBills(ctx, string(ledger.StatusPaid))
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, ledger.StatusPaid, paid[0].Status)
}

// =============================================================================
// SALARIES
// =============================================================================

func TestCreateSalary_RejectsDuplicateMonth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := seedEmployee(t, store)
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	sal, err := payroll.New(emp.EmployeeID, march, amt("45000"), amt("5000"), amt("2500"))
	require.NoError(t, err)

	created, err := store.CreateSalary(ctx, sal)
	require.NoError(t, err)
	assert.Equal(t, "SAL-00001", created.SalaryNumber)

	_, err = store.CreateSalary(ctx, sal)
	assert.ErrorIs(t, err, ErrDuplicateSalaryMonth)

	// Another month for the same employee is fine.
	april, err := payroll.New(emp.EmployeeID,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), amt("45000"), amt("0"), amt("0"))
	require.NoError(t, err)
	_, err = store.CreateSalary(ctx, april)
	assert.NoError(t, err)
}

func TestPaySalary_FullPaymentStampsDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := seedEmployee(t, store)

	sal, err := payroll.New(emp.EmployeeID,
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), amt("45000"), amt("0"), amt("0"))
	require.NoError(t, err)
	created, err := store.CreateSalary(ctx, sal)
	require.NoError(t, err)

	partial, err := store.PaySalary(ctx, created.SalaryNumber, amt("20000"))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPartial, partial.Status)
	assert.Nil(t, partial.PaymentDate)

	full, err := store.PaySalary(ctx, created.SalaryNumber, amt("25000"))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, full.Status)
	require.NotNil(t, full.PaymentDate)

	// Reload to confirm the stamp survived the round trip.
	reloaded, err := store.GetSalary(ctx, created.SalaryNumber)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.NotNil(t, reloaded.PaymentDate)
}

func TestListSalaries_MonthFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := seedEmployee(t, store)
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	for _, m := range []time.Time{march, april} {
		sal, err := payroll.New(emp.EmployeeID, m, amt("45000"), amt("0"), amt("0"))
		require.NoError(t, err)
		_, err = store.CreateSalary(ctx, sal)
		require.NoError(t, err)
	}

	all, err := store.ListSalaries(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A mid-month timestamp still matches its month's records.
	marchOnly, err := store.ListSalaries(ctx, time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, marchOnly, 1)
	assert.Equal(t, march, marchOnly[0].Month)
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func seedAccount(t *testing.T, store *Store, number, balance string) accounts.Account {
	t.Helper()
	a, err := store.CreateAccount(context.Background(), accounts.Account{
		AccountNumber: number,
		AccountName:   "Operating",
		Type:          accounts.TypeBank,
		Balance:       amt(balance),
	})
	require.NoError(t, err)
	return a
}

func TestPostTransaction_MovesBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, store, "ACC-MAIN", "10000")

	posted, err := store.PostTransaction(ctx, accounts.Transaction{
		AccountNumber: "ACC-MAIN",
		Type:          accounts.TxIncome,
		Category:      "CONSULTATION",
		Amount:        amt("1500"),
		Date:          time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "TXN-00001", posted.TransactionID)

	acct, err := store.GetAccount(ctx, "ACC-MAIN")
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.True(t, acct.Balance.Equal(amt("11500")))

	// An expense can push the balance negative.
	_, err = store.PostTransaction(ctx, accounts.Transaction{
		AccountNumber: "ACC-MAIN",
		Type:          accounts.TxExpense,
		Category:      "EQUIPMENT",
		Amount:        amt("20000"),
		Date:          time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	acct, err = store.GetAccount(ctx, "ACC-MAIN")
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(amt("-8500")))
}

func TestPostTransaction_RejectsInactiveAccount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateAccount(ctx, accounts.Account{
		AccountNumber: "ACC-CLOSED",
		AccountName:   "Old",
		Type:          accounts.TypeCash,
		Status:        accounts.AccountClosed,
	})
	require.NoError(t, err)

	_, err = store.PostTransaction(ctx, accounts.Transaction{
		AccountNumber: "ACC-CLOSED",
		Type:          accounts.TxIncome,
		Category:      "OTHER_INCOME",
		Amount:        amt("100"),
		Date:          time.Now().UTC(),
	})
	assert.ErrorIs(t, err, accounts.ErrAccountNotActive)
}

func TestTransfer_MovesBothBalancesAndWritesTwoLegs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, store, "ACC-A", "5000")
	seedAccount(t, store, "ACC-B", "1000")

	_, err := store.Transfer(ctx, accounts.Transaction{
		AccountNumber:  "ACC-A",
		CounterAccount: "ACC-B",
		Type:           accounts.TxTransfer,
		Category:       "INTERNAL_TRANSFER",
		Amount:         amt("750"),
		Date:           time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	a, err := store.GetAccount(ctx, "ACC-A")
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(amt("4250")))

	b, err := store.GetAccount(ctx, "ACC-B")
	require.NoError(t, err)
	assert.True(t, b.Balance.Equal(amt("1750")))

	aTxs, err := store.ListTransactions(ctx, "ACC-A")
	require.NoError(t, err)
	require.Len(t, aTxs, 1)
	assert.Equal(t, accounts.TxExpense, aTxs[0].Type)

	bTxs, err := store.ListTransactions(ctx, "ACC-B")
	require.NoError(t, err)
	require.Len(t, bTxs, 1)
	assert.Equal(t, accounts.TxIncome, bTxs[0].Type)
}

func TestPostTransaction_AfterTransferLegsStillIssuesUniqueIDs(t *testing.T) {
	// Transfer legs carry -OUT/-IN suffixes the sequencer cannot parse, so
	// the next posting walks the count-based fallback until a free code.
	store := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, store, "ACC-A", "5000")
	seedAccount(t, store, "ACC-B", "1000")

	_, err := store.Transfer(ctx, accounts.Transaction{
		AccountNumber:  "ACC-A",
		CounterAccount: "ACC-B",
		Type:           accounts.TxTransfer,
		Category:       "INTERNAL_TRANSFER",
		Amount:         amt("100"),
		Date:           time.Now().UTC(),
	})
	require.NoError(t, err)

	posted, err := store.PostTransaction(ctx, accounts.Transaction{
		AccountNumber: "ACC-A",
		Type:          accounts.TxIncome,
		Category:      "OTHER_INCOME",
		Amount:        amt("50"),
		Date:          time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, posted.TransactionID)

	again, err := store.PostTransaction(ctx, accounts.Transaction{
		AccountNumber: "ACC-A",
		Type:          accounts.TxIncome,
		Category:      "OTHER_INCOME",
		Amount:        amt("50"),
		Date:          time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NotEqual(t, posted.TransactionID, again.TransactionID)
}

// =============================================================================
// PHARMACY
// =============================================================================

func seedMedicine(t *testing.T, store *Store, stock int) pharmacy.Medicine {
	t.Helper()
	m, err := store.CreateMedicine(context.Background(), pharmacy.Medicine{
		Name:          "Amoxicillin 500mg",
		Category:      "Antibiotic",
		StockQuantity: stock,
		Unit:          "strip",
		ExpiryDate:    time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC),
		PurchasePrice: amt("40"),
		SellingPrice:  amt("60"),
		ReorderLevel:  10,
	})
	require.NoError(t, err)
	return m
}

func TestMedicine_ReceiveAndDispense(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	med := seedMedicine(t, store, 20)
	assert.Equal(t, "MED-00001", med.MedicineID)

	received, err := store.ReceiveStock(ctx, med.MedicineID, 30)
	require.NoError(t, err)
	assert.Equal(t, 50, received.StockQuantity)

	dispensed, err := store.DispenseStock(ctx, med.MedicineID, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, dispensed.StockQuantity)

	// No partial fills: the whole request is rejected.
	_, err = store.DispenseStock(ctx, med.MedicineID, 1)
	assert.ErrorIs(t, err, pharmacy.ErrInsufficientStock)

	reloaded, err := store.GetMedicine(ctx, med.MedicineID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, 0, reloaded.StockQuantity)
}

func TestListMedicines_LowStockOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedMedicine(t, store, 5)  // at or below reorder level 10
	seedMedicine(t, store, 50) // healthy

	low, err := store.ListMedicines(ctx, true)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, 5, low[0].StockQuantity)

	all, err := store.ListMedicines(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// PURCHASE ORDERS
// =============================================================================

func TestPurchaseOrder_StatusMachine(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sup, err := store.CreateSupplier(ctx, registry.Supplier{CompanyName: "MediSupply Ltd"})
	require.NoError(t, err)
	assert.Equal(t, "SUP-00001", sup.SupplierID)

	po, err := store.CreatePurchaseOrder(ctx, registry.PurchaseOrder{
		SupplierID:  sup.SupplierID,
		OrderDate:   time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: amt("12000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-00001", po.OrderNumber)
	assert.Equal(t, registry.OrderPending, po.Status)

	// Cannot skip approval.
	_, err = store.UpdatePurchaseOrderStatus(ctx, po.OrderNumber, registry.OrderDelivered)
	assert.ErrorIs(t, err, registry.ErrInvalidStatusChange)

	approved, err := store.UpdatePurchaseOrderStatus(ctx, po.OrderNumber, registry.OrderApproved)
	require.NoError(t, err)
	assert.Equal(t, registry.OrderApproved, approved.Status)

	delivered, err := store.UpdatePurchaseOrderStatus(ctx, po.OrderNumber, registry.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, registry.OrderDelivered, delivered.Status)

	// Delivered is terminal.
	_, err = store.UpdatePurchaseOrderStatus(ctx, po.OrderNumber, registry.OrderCancelled)
	assert.ErrorIs(t, err, registry.ErrInvalidStatusChange)
}

func TestUpdatePurchaseOrderStatus_MissingOrder(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdatePurchaseOrderStatus(context.Background(), "PO-00042", registry.OrderApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

// =============================================================================
// APPOINTMENTS
// =============================================================================

func TestCreateAppointment_DefaultsPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	patient := seedPatient(t, store)
	doctor, err := store.CreateDoctor(ctx, registry.Doctor{Name: "Dr. Noor", ConsultationFee: amt("500")})
	require.NoError(t, err)

	appt, err := store.CreateAppointment(ctx, registry.Appointment{
		PatientID: patient.PatientID,
		DoctorID:  doctor.DoctorID,
		Date:      time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Time:      "10:30",
		Type:      "CONSULTATION",
	})
	require.NoError(t, err)
	assert.Equal(t, "APT-00001", appt.AppointmentID)
	assert.Equal(t, registry.AppointmentPending, appt.Status)

	appts, err := store.ListAppointments(ctx)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

// =============================================================================
// ATTENDANCE AND LEAVES
// =============================================================================

func TestCreateAttendance_OneRowPerEmployeePerDay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := seedEmployee(t, store)

	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	in := day.Add(9 * time.Hour)
	out := day.Add(17*time.Hour + 30*time.Minute)

	rec, err := store.CreateAttendance(ctx, attendance.Attendance{
		EmployeeID: emp.EmployeeID,
		Date:       day,
		CheckIn:    &in,
		CheckOut:   &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "ATT-00001", rec.AttendanceID)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.InDelta(t, 8.5, rec.WorkingHours(), 0.001)

	// Same employee, same day, different timestamp within the day.
	_, err = store.CreateAttendance(ctx, attendance.Attendance{
		EmployeeID: emp.EmployeeID,
		Date:       day.Add(14 * time.Hour),
		Status:     attendance.StatusHalfDay,
	})
	assert.ErrorIs(t, err, ErrDuplicateAttendance)
}

func TestListAttendance_FiltersByDay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := seedEmployee(t, store)

	monday := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	for _, day := range []time.Time{monday, tuesday} {
		_, err := store.CreateAttendance(ctx, attendance.Attendance{
			EmployeeID: emp.EmployeeID,
			Date:       day,
		})
		require.NoError(t, err)
	}

	all, err := store.ListAttendance(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mondayOnly, err := store.ListAttendance(ctx, monday)
	require.NoError(t, err)
	require.Len(t, mondayOnly, 1)
	assert.True(t, mondayOnly[0].Date.Equal(monday))
}

func TestCreateAttendance_RejectsBackwardsTimes(t *testing.T) {
	store := newTestStore(t)
	emp := seedEmployee(t, store)

	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	in := day.Add(17 * time.Hour)
	out := day.Add(9 * time.Hour)

	_, err := store.CreateAttendance(context.Background(), attendance.Attendance{
		EmployeeID: emp.EmployeeID,
		Date:       day,
		CheckIn:    &in,
		CheckOut:   &out,
	})
	assert.ErrorIs(t, err, attendance.ErrCheckOutBeforeCheckIn)
}

func TestLeave_ApprovalFlow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := seedEmployee(t, store)

	leave, err := store.CreateLeave(ctx, attendance.Leave{
		EmployeeID: emp.EmployeeID,
		Type:       attendance.LeaveSick,
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		Reason:     "flu",
	})
	require.NoError(t, err)
	assert.Equal(t, "LVE-00001", leave.LeaveID)
	assert.Equal(t, attendance.LeavePending, leave.Status)
	assert.Equal(t, 3, leave.TotalDays())

	approved, err := store.UpdateLeaveStatus(ctx, leave.LeaveID, attendance.LeaveApproved, "Dr. Noor", "rest well")
	require.NoError(t, err)
	assert.Equal(t, attendance.LeaveApproved, approved.Status)
	assert.Equal(t, "Dr. Noor", approved.ApprovedBy)

	// Terminal: an approved leave cannot be cancelled.
	_, err = store.UpdateLeaveStatus(ctx, leave.LeaveID, attendance.LeaveCancelled, "", "")
	assert.ErrorIs(t, err, attendance.ErrInvalidStatusChange)

	got, err := store.GetLeave(ctx, leave.LeaveID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attendance.LeaveApproved, got.Status)
}

func TestListLeaves_EmployeeFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	first := seedEmployee(t, store)
	second, err := store.CreateEmployee(ctx, registry.Employee{
		Name:          "Rumi Akter",
		Department:    "Pharmacy",
		MonthlySalary: amt("38000"),
		JoinDate:      time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	for _, empID := range []string{first.EmployeeID, second.EmployeeID} {
		_, err := store.CreateLeave(ctx, attendance.Leave{
			EmployeeID: empID,
			Type:       attendance.LeaveCasual,
			StartDate:  time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	mine, err := store.ListLeaves(ctx, first.EmployeeID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.EmployeeID, mine[0].EmployeeID)

	all, err := store.ListLeaves(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateLeaveStatus_MissingLeave(t *testing.T) {
	store := newTestStore(t)
	_, err := store.UpdateLeaveStatus(context.Background(), "LVE-00042", attendance.LeaveApproved, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
