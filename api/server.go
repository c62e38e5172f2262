/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/bills/*            Patient billing and payments
  /api/salaries/*         Monthly payroll
  /api/accounts/*         Financial accounts
  /api/transactions/*     Income/expense postings and transfers
  /api/medicines/*        Pharmacy inventory
  /api/attendance/*       Daily attendance records
  /api/leaves/*           Leave requests and approvals
  /api/patients/* etc.    Registry records
  /api/reports/*          Read-only summaries

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Billing routes
		r.Route("/bills", func(r chi.Router) {
			r.Get("/", h.ListBills)
			r.Post("/", h.CreateBill)
			r.Get("/stats", h.GetBillStats)
			r.Get("/{id}", h.GetBill)
			r.Delete("/{id}", h.DeleteBill)
			r.Put("/{id}/charges", h.UpdateBillCharges)
			r.Get("/{id}/payments", h.ListBillPayments)
			r.Post("/{id}/payments", h.RecordBillPayment)
		})

		// Payroll routes
		r.Route("/salaries", func(r chi.Router) {
			r.Get("/", h.ListSalaries)
			r.Post("/", h.CreateSalary)
			r.Get("/stats", h.GetSalaryStats)
			r.Get("/{id}", h.GetSalary)
			r.Post("/{id}/payments", h.PaySalary)
		})

		// Financial accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/stats", h.GetAccountStats)
			r.Get("/{id}", h.GetAccount)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
			r.Post("/transfer", h.Transfer)
		})

		// Pharmacy inventory
		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.ListMedicines)
			r.Post("/", h.CreateMedicine)
			r.Get("/stats", h.GetMedicineStats)
			r.Get("/{id}", h.GetMedicine)
			r.Post("/{id}/receive", h.ReceiveStock)
			r.Post("/{id}/dispense", h.DispenseStock)
		})

		// Registry routes
		r.Route("/patients", func(r chi.Router) {
			r.Get("/", h.ListPatients)
			r.Post("/", h.CreatePatient)
			r.Get("/{id}", h.GetPatient)
		})
		r.Route("/doctors", func(r chi.Router) {
			r.Get("/", h.ListDoctors)
			r.Post("/", h.CreateDoctor)
			r.Get("/{id}", h.GetDoctor)
		})
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
		})
		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.ListSuppliers)
			r.Post("/", h.CreateSupplier)
		})
		r.Route("/purchase-orders", func(r chi.Router) {
			r.Get("/", h.ListPurchaseOrders)
			r.Post("/", h.CreatePurchaseOrder)
			r.Get("/{id}", h.GetPurchaseOrder)
			r.Put("/{id}/status", h.UpdatePurchaseOrderStatus)
		})
		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", h.ListAppointments)
			r.Post("/", h.CreateAppointment)
		})
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", h.ListAttendance)
			r.Post("/", h.CreateAttendance)
		})
		r.Route("/leaves", func(r chi.Router) {
			r.Get("/", h.ListLeaves)
			r.Post("/", h.CreateLeave)
			r.Get("/{id}", h.GetLeave)
			r.Put("/{id}/status", h.UpdateLeaveStatus)
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/daily-billing", h.GetDailyBillingReport)
		})
	})

	return r
}
