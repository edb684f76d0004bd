/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic. No payroll rules
  live here.

ENDPOINTS:
  Payslips:
    GET    /api/periods/{year}/{month}/payslips              List payslips
    POST   /api/periods/{year}/{month}/payslips/calculate    Bulk calculate
    GET    /api/periods/{year}/{month}/payslips/{employee}   Get payslip
    POST   /api/periods/{year}/{month}/payslips/{employee}/calculate
    POST   /api/periods/{year}/{month}/payslips/{employee}/approve
    POST   /api/periods/{year}/{month}/payslips/{employee}/invalidate

  Periods:
    GET    /api/periods                   List periods
    POST   /api/periods/{year}/{month}/open
    POST   /api/periods/{year}/{month}/process
    POST   /api/periods/{year}/{month}/complete
    POST   /api/periods/{year}/{month}/approve
    POST   /api/periods/{year}/{month}/pay
    GET    /api/periods/{year}/{month}    Period with summaries

  Advances:
    POST   /api/advances                  Request an advance
    GET    /api/advances/overdue          List overdue advances
    GET    /api/advances/{ref}            Get advance
    POST   /api/advances/{ref}/approve
    POST   /api/advances/{ref}/activate
    POST   /api/advances/{ref}/cancel
    GET    /api/employees/{id}/advances   Employee's advances
    GET    /api/employees/{id}/advances/availability

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid state transitions
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/payroll-engine/advance"
	"github.com/warp/payroll-engine/payperiod"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine     *payroll.Engine
	Advances   *advance.Ledger
	Aggregator *payperiod.Aggregator
	Payslips   payroll.PayslipStore
}

// NewHandler creates a new handler.
func NewHandler(engine *payroll.Engine, advances *advance.Ledger, aggregator *payperiod.Aggregator, payslips payroll.PayslipStore) *Handler {
	return &Handler{
		Engine:     engine,
		Advances:   advances,
		Aggregator: aggregator,
		Payslips:   payslips,
	}
}

// periodParam parses {year}/{month} URL params.
func periodParam(r *http.Request) (payroll.PeriodKey, bool) {
	year, err1 := strconv.Atoi(chi.URLParam(r, "year"))
	month, err2 := strconv.Atoi(chi.URLParam(r, "month"))
	period := payroll.PeriodKey{Year: year, Month: month}
	return period, err1 == nil && err2 == nil && period.Valid()
}

// =============================================================================
// PAYSLIP HANDLERS
// =============================================================================

// ListPayslips returns all payslips for a period.
func (h *Handler) ListPayslips(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid period", nil)
		return
	}

	slips, err := h.Payslips.ListByPeriod(r.Context(), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payslips", err)
		return
	}

	dtos := make([]PayslipDTO, 0, len(slips))
	for _, s := range slips {
		dtos = append(dtos, toPayslipDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayslip returns one payslip.
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid period", nil)
		return
	}
	id := payroll.EmployeeID(chi.URLParam(r, "employee"))

	slip, err := h.Payslips.Get(r.Context(), id, period)
	if err != nil {
		writeDomainError(w, "Failed to get payslip", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(slip))
}

// CalculatePayslip runs the calculation pipeline for one employee.
func (h *Handler) CalculatePayslip(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid period", nil)
		return
	}
	id := payroll.EmployeeID(chi.URLParam(r, "employee"))

	slip, err := h.Engine.Calculate(r.Context(), id, period)
	if err != nil {
		writeDomainError(w, "Calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(slip))
}

// ApprovePayslip approves a calculated payslip.
func (h *Handler) ApprovePayslip(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid period", nil)
		return
	}
	id := payroll.EmployeeID(chi.URLParam(r, "employee"))

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Approver == "" {
		writeError(w, http.StatusBadRequest, "Approver is required", err)
		return
	}

	slip, err := h.Engine.Approve(r.Context(), id, period, req.Approver)
	if err != nil {
		writeDomainError(w, "Approval failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(slip))
}

// InvalidatePayslip reverts a calculated payslip to draft.
func (h *Handler) InvalidatePayslip(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid period", nil)
		return
	}
	id := payroll.EmployeeID(chi.URLParam(r, "employee"))

	if err := h.Engine.Invalidate(r.Context(), id, period); err != nil {
		writeDomainError(w, "Invalidation failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkCalculate runs the pipeline for a set of employees in parallel.
func (h *Handler) BulkCalculate(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid period", nil)
		return
	}

	var req BulkCalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.EmployeeIDs) == 0 {
		writeError(w, http.StatusBadRequest, "employee_ids is required", err)
		return
	}

	ids := make([]payroll.EmployeeID, len(req.EmployeeIDs))
	for i, s := range req.EmployeeIDs {
		ids[i] = payroll.EmployeeID(s)
	}

	slips, failures := h.Engine.CalculateAll(r.Context(), period, ids)

	resp := BulkCalculateResponse{
		Calculated: make([]PayslipDTO, 0, len(slips)),
		Failures:   make([]FailureDTO, 0, len(failures)),
	}
	for _, s := range slips {
		resp.Calculated = append(resp.Calculated, toPayslipDTO(s))
	}
	for _, f := range failures {
		resp.Failures = append(resp.Failures, FailureDTO{
			EmployeeID: string(f.EmployeeID),
			Error:      f.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns all pay periods.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Aggregator.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periods", err)
		return
	}
	dtos := make([]PeriodDTO, 0, len(periods))
	for _, p := range periods {
		dtos = append(dtos, toPeriodDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPeriod returns a period with its summaries.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid period", nil)
		return
	}
	p, err := h.Aggregator.Open(r.Context(), period)
	if err != nil {
		writeDomainError(w, "Failed to get period", err)
		return
	}
	dto := toPeriodDTO(p)
	sort.Slice(dto.Departments, func(i, j int) bool { return dto.Departments[i].Name < dto.Departments[j].Name })
	sort.Slice(dto.Roles, func(i, j int) bool { return dto.Roles[i].Name < dto.Roles[j].Name })
	writeJSON(w, http.StatusOK, dto)
}

// periodTransition wraps the shared transition handler plumbing.
func (h *Handler) periodTransition(w http.ResponseWriter, r *http.Request, fn func(payroll.PeriodKey) (*payperiod.PayPeriod, error)) {
	period, ok := periodParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid period", nil)
		return
	}
	p, err := fn(period)
	if err != nil {
		writeDomainError(w, "Period transition failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p))
}

func (h *Handler) OpenPeriod(w http.ResponseWriter, r *http.Request) {
	h.periodTransition(w, r, func(k payroll.PeriodKey) (*payperiod.PayPeriod, error) {
		return h.Aggregator.Open(r.Context(), k)
	})
}

func (h *Handler) ProcessPeriod(w http.ResponseWriter, r *http.Request) {
	h.periodTransition(w, r, func(k payroll.PeriodKey) (*payperiod.PayPeriod, error) {
		return h.Aggregator.StartProcessing(r.Context(), k)
	})
}

func (h *Handler) CompletePeriod(w http.ResponseWriter, r *http.Request) {
	h.periodTransition(w, r, func(k payroll.PeriodKey) (*payperiod.PayPeriod, error) {
		return h.Aggregator.Complete(r.Context(), k)
	})
}

func (h *Handler) ApprovePeriod(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Approver == "" {
		writeError(w, http.StatusBadRequest, "Approver is required", err)
		return
	}
	h.periodTransition(w, r, func(k payroll.PeriodKey) (*payperiod.PayPeriod, error) {
		return h.Aggregator.Approve(r.Context(), k, req.Approver)
	})
}

func (h *Handler) PayPeriod(w http.ResponseWriter, r *http.Request) {
	h.periodTransition(w, r, func(k payroll.PeriodKey) (*payperiod.PayPeriod, error) {
		return h.Aggregator.MarkPaid(r.Context(), k)
	})
}

func (h *Handler) CancelPeriod(w http.ResponseWriter, r *http.Request) {
	h.periodTransition(w, r, func(k payroll.PeriodKey) (*payperiod.PayPeriod, error) {
		return h.Aggregator.Cancel(r.Context(), k)
	})
}

// =============================================================================
// ADVANCE HANDLERS
// =============================================================================

// RequestAdvance creates a pending advance.
func (h *Handler) RequestAdvance(w http.ResponseWriter, r *http.Request) {
	var req RequestAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := payroll.ParseMoney(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	adv, err := h.Advances.Request(r.Context(),
		payroll.EmployeeID(req.EmployeeID),
		advance.AdvanceType(req.Type),
		amount, req.Installments, req.Reason,
	)
	if err != nil {
		writeDomainError(w, "Advance request failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAdvanceDTO(adv))
}

// GetAdvance returns one advance.
func (h *Handler) GetAdvance(w http.ResponseWriter, r *http.Request) {
	adv, err := h.Advances.Get(chi.URLParam(r, "ref"))
	if err != nil {
		writeDomainError(w, "Failed to get advance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAdvanceDTO(adv))
}

// ApproveAdvance approves a pending advance.
func (h *Handler) ApproveAdvance(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Approver == "" {
		writeError(w, http.StatusBadRequest, "Approver is required", err)
		return
	}
	adv, err := h.Advances.Approve(chi.URLParam(r, "ref"), req.Approver)
	if err != nil {
		writeDomainError(w, "Advance approval failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toAdvanceDTO(adv))
}

// ActivateAdvance marks an approved advance as disbursed.
func (h *Handler) ActivateAdvance(w http.ResponseWriter, r *http.Request) {
	adv, err := h.Advances.Activate(chi.URLParam(r, "ref"))
	if err != nil {
		writeDomainError(w, "Advance activation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toAdvanceDTO(adv))
}

// CancelAdvance cancels an advance before disbursement.
func (h *Handler) CancelAdvance(w http.ResponseWriter, r *http.Request) {
	adv, err := h.Advances.Cancel(chi.URLParam(r, "ref"))
	if err != nil {
		writeDomainError(w, "Advance cancellation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toAdvanceDTO(adv))
}

// ListEmployeeAdvances returns an employee's advances.
func (h *Handler) ListEmployeeAdvances(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))
	advs := h.Advances.ListByEmployee(id)
	dtos := make([]AdvanceDTO, 0, len(advs))
	for _, a := range advs {
		dtos = append(dtos, toAdvanceDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAdvanceAvailability reports remaining advance headroom.
func (h *Handler) GetAdvanceAvailability(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))
	available, count, err := h.Advances.Available(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to compute availability", err)
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityDTO{
		EmployeeID: string(id),
		Available:  available.String(),
		UsedCount:  count,
	})
}

// ListOverdueAdvances returns active advances past their plan.
func (h *Handler) ListOverdueAdvances(w http.ResponseWriter, r *http.Request) {
	advs := h.Advances.ListOverdue()
	dtos := make([]AdvanceDTO, 0, len(advs))
	for _, a := range advs {
		dtos = append(dtos, toAdvanceDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

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

// writeDomainError maps domain errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
