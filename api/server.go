/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for admin frontends

ROUTE GROUPS:
  /api/periods/*    Period lifecycle, payslips, summaries
  /api/advances/*   Salary advance lifecycle
  /api/employees/*  Per-employee advance queries

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

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Period routes
		r.Route("/periods", func(r chi.Router) {
			r.Get("/", h.ListPeriods)

			r.Route("/{year}/{month}", func(r chi.Router) {
				r.Get("/", h.GetPeriod)
				r.Post("/open", h.OpenPeriod)
				r.Post("/process", h.ProcessPeriod)
				r.Post("/complete", h.CompletePeriod)
				r.Post("/approve", h.ApprovePeriod)
				r.Post("/pay", h.PayPeriod)
				r.Post("/cancel", h.CancelPeriod)

				// Payslip routes within a period
				r.Route("/payslips", func(r chi.Router) {
					r.Get("/", h.ListPayslips)
					r.Post("/calculate", h.BulkCalculate)
					r.Get("/{employee}", h.GetPayslip)
					r.Post("/{employee}/calculate", h.CalculatePayslip)
					r.Post("/{employee}/approve", h.ApprovePayslip)
					r.Post("/{employee}/invalidate", h.InvalidatePayslip)
				})
			})
		})

		// Advance routes
		r.Route("/advances", func(r chi.Router) {
			r.Post("/", h.RequestAdvance)
			r.Get("/overdue", h.ListOverdueAdvances)
			r.Get("/{ref}", h.GetAdvance)
			r.Post("/{ref}/approve", h.ApproveAdvance)
			r.Post("/{ref}/activate", h.ActivateAdvance)
			r.Post("/{ref}/cancel", h.CancelAdvance)
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/{id}/advances", h.ListEmployeeAdvances)
			r.Get("/{id}/advances/availability", h.GetAdvanceAvailability)
		})
	})

	return r
}
