/*
Package advance manages salary advances and their amortization.

PURPOSE:
  Employees may draw part of their salary ahead of payday. This package
  owns the advance lifecycle (request, approval, disbursement,
  completion), the eligibility rules, and the monthly amortization that
  the payroll engine deducts from payslips.

LIFECYCLE:
  PENDING -> APPROVED -> ACTIVE -> COMPLETED
  CANCELLED is reachable from PENDING and APPROVED only. Once an advance
  is ACTIVE (money disbursed) it can only amortize to completion.

ELIGIBILITY:
  - available = SALARY_ADVANCE_MAX_PERCENTAGE of basic salary, minus the
    outstanding balance of this year's approved and active advances
  - at most MAX_ADVANCES_PER_YEAR requests per calendar year

AMORTIZATION:
  - monthly installment = amount / installments, rounded half-up
  - each month deducts min(installment, outstanding) per active advance
  - outstanding never exceeds the original amount and never goes below
    zero; reaching zero completes the advance
  - applications are recorded per employee-period, so reapplying the
    same period changes nothing

SEE ALSO:
  - payroll/engine.go: Consumes this ledger during calculation
*/
package advance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TYPES
// =============================================================================

type AdvanceType string

const (
	TypeSalary    AdvanceType = "SALARY"
	TypeEmergency AdvanceType = "EMERGENCY"
	TypePurchase  AdvanceType = "PURCHASE"
	TypeMedical   AdvanceType = "MEDICAL"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

type Advance struct {
	Reference  string
	EmployeeID payroll.EmployeeID
	Type       AdvanceType
	Reason     string

	Amount             payroll.Money
	Outstanding        payroll.Money
	MonthlyInstallment payroll.Money
	Installments       int

	Status      Status
	RequestedAt time.Time
	ApprovedAt  time.Time
	DisbursedAt time.Time
	CompletedAt time.Time
	ApprovedBy  string
}

// Overdue reports whether an active advance has been amortizing longer
// than its installment plan allows.
func (a *Advance) Overdue(asOf time.Time) bool {
	if a.Status != StatusActive || a.DisbursedAt.IsZero() {
		return false
	}
	months := (asOf.Year()-a.DisbursedAt.Year())*12 + int(asOf.Month()-a.DisbursedAt.Month())
	return months > a.Installments
}

func (a *Advance) transitionErr(to Status) error {
	return &payroll.InvalidTransitionError{Entity: "advance", From: string(a.Status), To: string(to)}
}

// =============================================================================
// LEDGER
// =============================================================================

const maxInstallments = 12

// Ledger holds every advance and the per-period applications already
// deducted through payroll. It satisfies payroll.AdvanceLedger.
type Ledger struct {
	mu sync.Mutex

	cfg          *payroll.ConfigSnapshot
	compensation payroll.CompensationProvider
	now          func() time.Time

	advances map[string]*Advance                   // by reference
	byEmp    map[payroll.EmployeeID][]string       // references in request order
	applied  map[string]payroll.AdvanceApplication // employee|period -> application
	seq      int
}

func NewLedger(cfg *payroll.ConfigSnapshot, compensation payroll.CompensationProvider, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		cfg:          cfg,
		compensation: compensation,
		now:          now,
		advances:     map[string]*Advance{},
		byEmp:        map[payroll.EmployeeID][]string{},
		applied:      map[string]payroll.AdvanceApplication{},
	}
}

func appliedKey(id payroll.EmployeeID, period payroll.PeriodKey) string {
	return string(id) + "|" + period.String()
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

// Available returns the amount the employee may still draw and how many
// requests they have made this calendar year.
func (l *Ledger) Available(ctx context.Context, id payroll.EmployeeID) (payroll.Money, int, error) {
	contract, err := l.compensation.ActiveContract(ctx, id)
	if err != nil {
		return payroll.Zero, 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.availableLocked(id, contract.BasicSalary)
}

func (l *Ledger) availableLocked(id payroll.EmployeeID, basic payroll.Money) (payroll.Money, int, error) {
	maxPct := payroll.Percent(l.cfg.Decimal(payroll.KeyAdvanceMaxPercentage))
	ceiling := basic.Mul(maxPct).Round()

	year := l.now().Year()
	outstanding := payroll.Zero
	count := 0
	for _, ref := range l.byEmp[id] {
		adv := l.advances[ref]
		if adv.RequestedAt.Year() == year && adv.Status != StatusCancelled {
			count++
		}
		if adv.Status == StatusApproved || adv.Status == StatusActive {
			outstanding = outstanding.Add(adv.Outstanding)
		}
	}

	available := ceiling.Sub(outstanding).Max(payroll.Zero)
	return available, count, nil
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// Request creates a PENDING advance after the eligibility checks pass.
func (l *Ledger) Request(ctx context.Context, id payroll.EmployeeID, typ AdvanceType, amount payroll.Money, installments int, reason string) (*Advance, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("advance amount must be positive: %w", payroll.ErrInvalidInput)
	}
	if installments < 1 || installments > maxInstallments {
		return nil, fmt.Errorf("installments must be 1..%d: %w", maxInstallments, payroll.ErrInvalidInput)
	}

	contract, err := l.compensation.ActiveContract(ctx, id)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	available, count, err := l.availableLocked(id, contract.BasicSalary)
	if err != nil {
		return nil, err
	}
	if count >= l.cfg.Int(payroll.KeyMaxAdvancesPerYear) {
		return nil, &payroll.LimitExceededError{EmployeeID: id, Kind: "advance_count", Requested: amount, Available: available}
	}
	if amount.GreaterThan(available) {
		return nil, &payroll.LimitExceededError{EmployeeID: id, Kind: "advance_amount", Requested: amount, Available: available}
	}

	l.seq++
	adv := &Advance{
		Reference:          fmt.Sprintf("ADV%s%04d", contract.EmployeeCode, l.seq),
		EmployeeID:         id,
		Type:               typ,
		Reason:             reason,
		Amount:             amount,
		MonthlyInstallment: amount.Div(decimal.NewFromInt(int64(installments))).Round(),
		Installments:       installments,
		Status:             StatusPending,
		RequestedAt:        l.now(),
	}
	l.advances[adv.Reference] = adv
	l.byEmp[id] = append(l.byEmp[id], adv.Reference)
	return adv, nil
}

// Approve moves PENDING -> APPROVED and opens the outstanding balance.
func (l *Ledger) Approve(ref, approver string) (*Advance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	adv, ok := l.advances[ref]
	if !ok {
		return nil, payroll.ErrNotFound
	}
	if adv.Status != StatusPending {
		return nil, adv.transitionErr(StatusApproved)
	}
	adv.Status = StatusApproved
	adv.Outstanding = adv.Amount
	adv.ApprovedAt = l.now()
	adv.ApprovedBy = approver
	return adv, nil
}

// Activate moves APPROVED -> ACTIVE, recording the disbursement date the
// amortization clock runs from.
func (l *Ledger) Activate(ref string) (*Advance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	adv, ok := l.advances[ref]
	if !ok {
		return nil, payroll.ErrNotFound
	}
	if adv.Status != StatusApproved {
		return nil, adv.transitionErr(StatusActive)
	}
	adv.Status = StatusActive
	adv.DisbursedAt = l.now()
	return adv, nil
}

// Cancel is allowed before disbursement only.
func (l *Ledger) Cancel(ref string) (*Advance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	adv, ok := l.advances[ref]
	if !ok {
		return nil, payroll.ErrNotFound
	}
	if adv.Status != StatusPending && adv.Status != StatusApproved {
		return nil, adv.transitionErr(StatusCancelled)
	}
	adv.Status = StatusCancelled
	adv.Outstanding = payroll.Zero
	return adv, nil
}

// Get returns one advance by reference.
func (l *Ledger) Get(ref string) (*Advance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	adv, ok := l.advances[ref]
	if !ok {
		return nil, payroll.ErrNotFound
	}
	return adv, nil
}

// ListByEmployee returns the employee's advances in request order.
func (l *Ledger) ListByEmployee(id payroll.EmployeeID) []*Advance {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Advance, 0, len(l.byEmp[id]))
	for _, ref := range l.byEmp[id] {
		out = append(out, l.advances[ref])
	}
	return out
}

// ListOverdue returns every active advance past its installment plan.
func (l *Ledger) ListOverdue() []*Advance {
	l.mu.Lock()
	defer l.mu.Unlock()
	asOf := l.now()
	var out []*Advance
	for _, refs := range l.byEmp {
		for _, ref := range refs {
			if adv := l.advances[ref]; adv.Overdue(asOf) {
				out = append(out, adv)
			}
		}
	}
	return out
}

// =============================================================================
// AMORTIZATION (payroll.AdvanceLedger)
// =============================================================================

// PreviewDeduction computes the month's total deduction without touching
// any balance. If the period was already applied, the recorded
// application is returned so a recalculated payslip reproduces the same
// figures.
func (l *Ledger) PreviewDeduction(ctx context.Context, id payroll.EmployeeID, period payroll.PeriodKey) (payroll.AdvanceApplication, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if app, ok := l.applied[appliedKey(id, period)]; ok {
		return app, nil
	}
	return l.computeApplicationLocked(id), nil
}

// ApplyDeduction records the month's deduction, decrementing outstanding
// balances and completing advances that reach zero. Reapplying the same
// employee-period returns the recorded application without deducting
// again.
func (l *Ledger) ApplyDeduction(ctx context.Context, id payroll.EmployeeID, period payroll.PeriodKey) (payroll.AdvanceApplication, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := appliedKey(id, period)
	if app, ok := l.applied[key]; ok {
		return app, nil
	}

	app := l.computeApplicationLocked(id)
	for _, inst := range app.Installments {
		adv := l.advances[inst.Reference]
		adv.Outstanding = adv.Outstanding.Sub(inst.Amount)
		if !adv.Outstanding.IsPositive() {
			adv.Outstanding = payroll.Zero
			adv.Status = StatusCompleted
			adv.CompletedAt = l.now()
		}
	}
	l.applied[key] = app
	return app, nil
}

func (l *Ledger) computeApplicationLocked(id payroll.EmployeeID) payroll.AdvanceApplication {
	app := payroll.AdvanceApplication{}
	for _, ref := range l.byEmp[id] {
		adv := l.advances[ref]
		if adv.Status != StatusActive || !adv.Outstanding.IsPositive() {
			continue
		}
		amount := adv.MonthlyInstallment.Min(adv.Outstanding)
		app.Installments = append(app.Installments, payroll.AdvanceInstallment{
			Reference: ref,
			Amount:    amount,
		})
		app.Total = app.Total.Add(amount)
	}
	return app
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// State is the ledger's persistent form, used by durable stores to
// save and restore it across restarts.
type State struct {
	Advances []Advance                             `json:"advances"`
	Applied  map[string]payroll.AdvanceApplication `json:"applied"`
	Seq      int                                   `json:"seq"`
}

// ExportState copies the full ledger state.
func (l *Ledger) ExportState() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := State{
		Applied: make(map[string]payroll.AdvanceApplication, len(l.applied)),
		Seq:     l.seq,
	}
	for _, refs := range l.byEmp {
		for _, ref := range refs {
			st.Advances = append(st.Advances, *l.advances[ref])
		}
	}
	for k, v := range l.applied {
		st.Applied[k] = v
	}
	return st
}

// ImportState replaces the ledger contents with a previously exported
// state.
func (l *Ledger) ImportState(st State) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advances = map[string]*Advance{}
	l.byEmp = map[payroll.EmployeeID][]string{}
	l.applied = map[string]payroll.AdvanceApplication{}
	l.seq = st.Seq
	for i := range st.Advances {
		adv := st.Advances[i]
		l.advances[adv.Reference] = &adv
		l.byEmp[adv.EmployeeID] = append(l.byEmp[adv.EmployeeID], adv.Reference)
	}
	for k, v := range st.Applied {
		l.applied[k] = v
	}
}

var _ payroll.AdvanceLedger = (*Ledger)(nil)
