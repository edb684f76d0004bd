/*
Package payperiod aggregates payslips into pay-period totals.

PURPOSE:
  A PayPeriod collects every payslip for one month, tracks the period's
  processing lifecycle, and derives the totals and department/role
  summaries that management reviews before approving a payroll run.

LIFECYCLE:
  DRAFT -> PROCESSING -> COMPLETED -> APPROVED -> PAID
  CANCELLED is reachable from DRAFT only. Once a period is PAID its
  totals are frozen.

AGGREGATION RULES:
  - totals and summaries are recomputed from scratch on every Complete;
    nothing is incrementally adjusted
  - only CALCULATED and APPROVED payslips contribute; cancelled slips
    are ignored entirely
  - Complete refuses to run while any non-cancelled slip is still DRAFT

SEE ALSO:
  - summary.go: Department and role rollups with scores
  - payroll/payslip.go: The aggregated unit
*/
package payperiod

import (
	"context"
	"sync"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusApproved   Status = "APPROVED"
	StatusPaid       Status = "PAID"
	StatusCancelled  Status = "CANCELLED"
)

// =============================================================================
// PAY PERIOD
// =============================================================================

type Totals struct {
	Employees       int
	Gross           payroll.Money
	TotalDeductions payroll.Money
	Net             payroll.Money
	EmployeeEPF     payroll.Money
	EmployerEPF     payroll.Money
	ETF             payroll.Money
	AdvanceRecovery payroll.Money
	Overtime        payroll.Money
}

type PayPeriod struct {
	Period payroll.PeriodKey
	Status Status

	Totals      Totals
	Departments map[string]*DepartmentSummary
	Roles       map[payroll.Role]*RoleSummary

	ApprovedBy  string
	ProcessedAt time.Time
	CompletedAt time.Time
	ApprovedAt  time.Time
	PaidAt      time.Time
}

func NewPayPeriod(period payroll.PeriodKey) *PayPeriod {
	return &PayPeriod{
		Period:      period,
		Status:      StatusDraft,
		Departments: map[string]*DepartmentSummary{},
		Roles:       map[payroll.Role]*RoleSummary{},
	}
}

func (p *PayPeriod) transitionErr(to Status) error {
	return &payroll.InvalidTransitionError{Entity: "pay_period", From: string(p.Status), To: string(to)}
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// PeriodStore persists pay periods.
type PeriodStore interface {
	Get(ctx context.Context, period payroll.PeriodKey) (*PayPeriod, error)
	Put(ctx context.Context, p *PayPeriod) error
	List(ctx context.Context) ([]*PayPeriod, error)
}

// Aggregator drives the pay-period lifecycle against the payslip store.
// Transitions for the same period serialize on a per-period lock.
type Aggregator struct {
	periods  PeriodStore
	payslips payroll.PayslipStore
	cfg      *payroll.ConfigSnapshot
	now      func() time.Time

	mu    sync.Mutex
	locks map[payroll.PeriodKey]*sync.Mutex
}

func NewAggregator(periods PeriodStore, payslips payroll.PayslipStore, cfg *payroll.ConfigSnapshot, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if cfg == nil {
		cfg = payroll.DefaultSnapshot()
	}
	return &Aggregator{
		periods:  periods,
		payslips: payslips,
		cfg:      cfg,
		now:      now,
		locks:    map[payroll.PeriodKey]*sync.Mutex{},
	}
}

func (a *Aggregator) lockFor(period payroll.PeriodKey) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[period]
	if !ok {
		l = &sync.Mutex{}
		a.locks[period] = l
	}
	return l
}

// Open returns the period, creating a DRAFT one if none exists.
func (a *Aggregator) Open(ctx context.Context, period payroll.PeriodKey) (*PayPeriod, error) {
	if !period.Valid() {
		return nil, payroll.ErrInvalidInput
	}
	lock := a.lockFor(period)
	lock.Lock()
	defer lock.Unlock()

	p, err := a.periods.Get(ctx, period)
	if err == nil {
		return p, nil
	}
	if !payroll.IsNotFound(err) {
		return nil, err
	}
	p = NewPayPeriod(period)
	if err := a.periods.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns every known pay period.
func (a *Aggregator) List(ctx context.Context) ([]*PayPeriod, error) {
	return a.periods.List(ctx)
}

// StartProcessing moves DRAFT -> PROCESSING. The period must have at
// least one non-cancelled payslip to process.
func (a *Aggregator) StartProcessing(ctx context.Context, period payroll.PeriodKey) (*PayPeriod, error) {
	lock := a.lockFor(period)
	lock.Lock()
	defer lock.Unlock()

	p, err := a.periods.Get(ctx, period)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusDraft {
		return nil, p.transitionErr(StatusProcessing)
	}

	slips, err := a.contributing(ctx, period)
	if err != nil {
		return nil, err
	}
	if len(slips) == 0 {
		return nil, payroll.ErrInvalidInput
	}

	p.Status = StatusProcessing
	p.ProcessedAt = a.now()
	if err := a.periods.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Complete moves PROCESSING -> COMPLETED after verifying every
// non-cancelled payslip is CALCULATED or APPROVED, then rebuilds the
// totals and summaries from scratch.
func (a *Aggregator) Complete(ctx context.Context, period payroll.PeriodKey) (*PayPeriod, error) {
	lock := a.lockFor(period)
	lock.Lock()
	defer lock.Unlock()

	p, err := a.periods.Get(ctx, period)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusProcessing {
		return nil, p.transitionErr(StatusCompleted)
	}

	all, err := a.payslips.ListByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	var contributing []*payroll.Payslip
	for _, s := range all {
		switch s.Status {
		case payroll.PayslipCancelled:
			continue
		case payroll.PayslipCalculated, payroll.PayslipApproved:
			contributing = append(contributing, s)
		default:
			return nil, p.transitionErr(StatusCompleted)
		}
	}

	p.Totals = sumTotals(contributing)
	p.Departments, p.Roles = buildSummaries(contributing, a.cfg)
	p.Status = StatusCompleted
	p.CompletedAt = a.now()
	if err := a.periods.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Approve moves COMPLETED -> APPROVED once every contributing payslip
// is itself APPROVED.
func (a *Aggregator) Approve(ctx context.Context, period payroll.PeriodKey, approver string) (*PayPeriod, error) {
	lock := a.lockFor(period)
	lock.Lock()
	defer lock.Unlock()

	p, err := a.periods.Get(ctx, period)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusCompleted {
		return nil, p.transitionErr(StatusApproved)
	}

	all, err := a.payslips.ListByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.Status != payroll.PayslipApproved && s.Status != payroll.PayslipCancelled {
			return nil, p.transitionErr(StatusApproved)
		}
	}

	p.Status = StatusApproved
	p.ApprovedBy = approver
	p.ApprovedAt = a.now()
	if err := a.periods.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkPaid moves APPROVED -> PAID. Totals freeze here.
func (a *Aggregator) MarkPaid(ctx context.Context, period payroll.PeriodKey) (*PayPeriod, error) {
	lock := a.lockFor(period)
	lock.Lock()
	defer lock.Unlock()

	p, err := a.periods.Get(ctx, period)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusApproved {
		return nil, p.transitionErr(StatusPaid)
	}
	p.Status = StatusPaid
	p.PaidAt = a.now()
	if err := a.periods.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Cancel is allowed from DRAFT only. A period with processed slips must
// run its lifecycle forward, not disappear.
func (a *Aggregator) Cancel(ctx context.Context, period payroll.PeriodKey) (*PayPeriod, error) {
	lock := a.lockFor(period)
	lock.Lock()
	defer lock.Unlock()

	p, err := a.periods.Get(ctx, period)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusDraft {
		return nil, p.transitionErr(StatusCancelled)
	}
	p.Status = StatusCancelled
	if err := a.periods.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *Aggregator) contributing(ctx context.Context, period payroll.PeriodKey) ([]*payroll.Payslip, error) {
	all, err := a.payslips.ListByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, s := range all {
		if s.Status != payroll.PayslipCancelled {
			out = append(out, s)
		}
	}
	return out, nil
}

func sumTotals(slips []*payroll.Payslip) Totals {
	t := Totals{Employees: len(slips)}
	for _, s := range slips {
		t.Gross = t.Gross.Add(s.Gross)
		t.TotalDeductions = t.TotalDeductions.Add(s.TotalDeductions)
		t.Net = t.Net.Add(s.Net)
		t.EmployeeEPF = t.EmployeeEPF.Add(s.EmployeeEPF)
		t.EmployerEPF = t.EmployerEPF.Add(s.EmployerEPF)
		t.ETF = t.ETF.Add(s.ETF)
		t.AdvanceRecovery = t.AdvanceRecovery.Add(s.AdvanceDeduction)
		t.Overtime = t.Overtime.Add(s.RegularOvertime).Add(s.WeekendOvertime)
	}
	return t
}
