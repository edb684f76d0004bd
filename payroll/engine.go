/*
engine.go - Payslip calculation orchestration

PURPOSE:
  The Engine runs the calculation pipeline for one employee-period:
  basic components, overtime, allowances, attendance deductions, the
  advance installment, then statutory contributions against the true
  gross. It owns per-payslip locking, the explicit invalidation
  operation, and the bounded-parallel bulk run.

CALCULATION ORDER (fixed):
  1. basic components (rates, ratio)
  2. overtime
  3. allowances and bonuses
  4. attendance deductions
  5. advance installment
  6. gross, then statutory (EPF/ETF/tax) against that gross
  7. net, negative-net check, commit

DESIGN PRINCIPLES:
  1. All computation goes into a scratch result committed only on
     success; a failed calculation leaves the stored slip untouched
  2. One employee's failure never blocks another in a bulk run
  3. The advance ledger is previewed before the negative-net check and
     applied only when the slip is certain to commit

SEE ALSO:
  - payslip.go: Lifecycle rules
  - advance: AdvanceLedger implementation
*/
package payroll

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// COLLABORATOR PORTS
// =============================================================================

// PayslipStore persists payslips. Implementations must return ErrNotFound
// (or a wrapper) for absent slips.
type PayslipStore interface {
	Get(ctx context.Context, id EmployeeID, period PeriodKey) (*Payslip, error)
	Put(ctx context.Context, slip *Payslip) error
	ListByPeriod(ctx context.Context, period PeriodKey) ([]*Payslip, error)
}

// AdvanceInstallment is one advance's contribution to a month's deduction.
type AdvanceInstallment struct {
	Reference string
	Amount    Money
}

// AdvanceApplication is the month's total advance deduction for one
// employee.
type AdvanceApplication struct {
	Total        Money
	Installments []AdvanceInstallment
}

// AdvanceLedger exposes the salary-advance amortization to the engine.
// Preview computes the month's deduction without mutating the ledger;
// Apply records it. Apply is idempotent per employee-period: a second
// call for the same period returns a zero application.
type AdvanceLedger interface {
	PreviewDeduction(ctx context.Context, id EmployeeID, period PeriodKey) (AdvanceApplication, error)
	ApplyDeduction(ctx context.Context, id EmployeeID, period PeriodKey) (AdvanceApplication, error)
}

// ExtraEarnings are ad-hoc earning lines granted outside the attendance
// pipeline, carried onto the payslip as pass-through line items.
type ExtraEarnings struct {
	ReligiousPay Money
	FridaySalary Money
}

// ExtraEarningsProvider is optional; a nil provider means zero extras.
type ExtraEarningsProvider interface {
	ExtraEarnings(ctx context.Context, id EmployeeID, period PeriodKey) (ExtraEarnings, error)
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	attendance   AttendanceProvider
	compensation CompensationProvider
	extras       ExtraEarningsProvider
	advances     AdvanceLedger
	store        PayslipStore
	cfg          *ConfigSnapshot

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time

	// BulkWorkers bounds the goroutines used by CalculateAll.
	BulkWorkers int
}

type EngineOptions struct {
	Attendance   AttendanceProvider
	Compensation CompensationProvider
	Extras       ExtraEarningsProvider // optional
	Advances     AdvanceLedger         // optional
	Store        PayslipStore
	Config       *ConfigSnapshot
	Now          func() time.Time // optional, defaults to time.Now
}

func NewEngine(opts EngineOptions) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultSnapshot()
	}
	return &Engine{
		attendance:   opts.Attendance,
		compensation: opts.Compensation,
		extras:       opts.Extras,
		advances:     opts.Advances,
		store:        opts.Store,
		cfg:          cfg,
		locks:        map[string]*sync.Mutex{},
		now:          now,
		BulkWorkers:  8,
	}
}

func (e *Engine) Config() *ConfigSnapshot { return e.cfg }

// lockFor returns the mutex guarding one employee-period. Calculation,
// invalidation, and approval for the same slip serialize on it.
func (e *Engine) lockFor(id EmployeeID, period PeriodKey) *sync.Mutex {
	key := string(id) + "|" + period.String()
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	return l
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Open returns the payslip for the employee-period, creating a DRAFT
// slip if none exists.
func (e *Engine) Open(ctx context.Context, id EmployeeID, period PeriodKey) (*Payslip, error) {
	if !period.Valid() {
		return nil, ErrInvalidInput
	}
	lock := e.lockFor(id, period)
	lock.Lock()
	defer lock.Unlock()

	slip, err := e.store.Get(ctx, id, period)
	if err == nil {
		return slip, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	contract, err := e.compensation.ActiveContract(ctx, id)
	if err != nil {
		return nil, err
	}
	slip = NewPayslip(id, contract.EmployeeCode, period)
	if err := e.store.Put(ctx, slip); err != nil {
		return nil, err
	}
	return slip, nil
}

// Calculate runs the full pipeline for one employee-period. A
// CALCULATED slip is invalidated and recomputed; APPROVED, PAID, and
// CANCELLED slips are rejected.
func (e *Engine) Calculate(ctx context.Context, id EmployeeID, period PeriodKey) (*Payslip, error) {
	if !period.Valid() {
		return nil, ErrInvalidInput
	}
	lock := e.lockFor(id, period)
	lock.Lock()
	defer lock.Unlock()

	slip, err := e.store.Get(ctx, id, period)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		contract, cerr := e.compensation.ActiveContract(ctx, id)
		if cerr != nil {
			return nil, cerr
		}
		slip = NewPayslip(id, contract.EmployeeCode, period)
	}

	// A CALCULATED slip is implicitly invalidated by recomputing from
	// scratch. Anything further along the lifecycle is rejected.
	if slip.Status != PayslipDraft && slip.Status != PayslipCalculated {
		return nil, &InvalidTransitionError{Entity: "payslip", From: string(slip.Status), To: string(PayslipCalculated)}
	}

	result, err := e.compute(ctx, id, period, slip.Reference)
	if err != nil {
		return nil, err
	}

	// The preview passed the negative-net check; record the installments
	// before committing the slip they appear on. ApplyDeduction is
	// idempotent per period, so a recalculation does not double-deduct.
	if e.advances != nil && result.AdvanceDeduction.IsPositive() {
		if _, err := e.advances.ApplyDeduction(ctx, id, period); err != nil {
			return nil, err
		}
	}

	if err := result.MarkCalculated(e.now()); err != nil {
		return nil, err
	}
	if err := e.store.Put(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// compute builds the full payslip into a scratch value. Nothing is
// persisted and no ledger is mutated here.
func (e *Engine) compute(ctx context.Context, id EmployeeID, period PeriodKey, reference string) (*Payslip, error) {
	contract, err := e.compensation.ActiveContract(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := e.attendance.MonthlySummary(ctx, id, period)
	if err != nil {
		return nil, err
	}
	days, err := e.attendance.DailyRecords(ctx, id, period)
	if err != nil {
		return nil, err
	}

	extras := ExtraEarnings{}
	if e.extras != nil {
		extras, err = e.extras.ExtraEarnings(ctx, id, period)
		if err != nil {
			return nil, err
		}
	}

	basic := NewBasicCalculator(e.cfg).Calculate(contract, summary)
	overtime := NewOvertimeCalculator(e.cfg).Calculate(basic.HourlyRate, summary, days)
	allowances := NewAllowanceCalculator(e.cfg).Calculate(contract.Role, summary)
	deductions := NewDeductionCalculator(e.cfg).Calculate(contract.Role, basic.DailyRate, summary, days)

	advanceApp := AdvanceApplication{}
	if e.advances != nil {
		advanceApp, err = e.advances.PreviewDeduction(ctx, id, period)
		if err != nil {
			return nil, err
		}
	}

	bonus1 := e.cfg.Money(KeyDefaultBonus1).Round()
	bonus2 := e.cfg.Money(KeyDefaultBonus2).Round()

	gross := basic.BasicSalary.
		Add(bonus1).
		Add(bonus2).
		Add(allowances.Total).
		Add(overtime.TotalPay).
		Add(extras.ReligiousPay).
		Add(extras.FridaySalary)

	tax := NewTaxCalculator(e.cfg).Calculate(contract, basic.BasicSalary, bonus1, bonus2, gross)

	totalDeductions := deductions.Total.
		Add(advanceApp.Total).
		Add(tax.EmployeeEPF).
		Add(tax.IncomeTax)

	net := gross.Sub(totalDeductions)
	if net.IsNegative() {
		return nil, &NegativeNetError{EmployeeID: id, Gross: gross, Deductions: totalDeductions}
	}

	slip := &Payslip{
		Reference:  reference,
		EmployeeID: id,
		Period:     period,
		Status:     PayslipDraft,

		Role:       contract.Role,
		Department: contract.Department,

		WorkingDays:          summary.WorkingDays,
		AttendedDays:         summary.AttendedDays,
		AbsentDays:           summary.AbsentDays,
		HalfDays:             summary.HalfDays,
		OvertimeHours:        summary.TotalOvertimeHours.Add(overtime.WeekendHours),
		AttendancePercentage: summary.AttendancePercentage,
		PunctualityScore:     summary.PunctualityScore,
		LunchViolations:      deductions.LunchViolations,

		DailyRate:   basic.DailyRate,
		HourlyRate:  basic.HourlyRate,
		SalaryRatio: basic.SalaryRatio,

		BasicSalary:        basic.BasicSalary,
		Bonus1:             bonus1,
		Bonus2:             bonus2,
		TransportAllowance: allowances.Set.Transport,
		MealAllowance:      allowances.Set.Meal,
		TelephoneAllowance: allowances.Set.Telephone,
		FuelAllowance:      allowances.Set.Fuel,
		AttendanceBonus:    allowances.AttendanceBonus,
		PerformanceBonus:   allowances.PerformanceBonus,
		ReligiousPay:       extras.ReligiousPay,
		FridaySalary:       extras.FridaySalary,
		RegularOvertime:    overtime.RegularPay,
		WeekendOvertime:    overtime.WeekendPay,
		Gross:              gross,

		AbsenceDeduction: deductions.Absence,
		HalfDayDeduction: deductions.HalfDay,
		LatePenalty:      deductions.LatePenalty,
		LunchPenalty:     deductions.LunchPenalty,
		AdvanceDeduction: advanceApp.Total,
		EmployeeEPF:      tax.EmployeeEPF,
		IncomeTax:        tax.IncomeTax,
		TotalDeductions:  totalDeductions,
		Net:              net,

		EPFBase:     tax.EPFBase,
		EmployerEPF: tax.EmployerEPF,
		ETF:         tax.ETF,
	}

	slip.Details = append(slip.Details, overtime.Details...)
	slip.Details = append(slip.Details, deductions.Details...)
	for _, inst := range advanceApp.Installments {
		slip.Details = append(slip.Details, Detail{
			Kind:       DetailAdvance,
			Amount:     inst.Amount,
			AdvanceRef: inst.Reference,
		})
	}
	return slip, nil
}

// Invalidate reverts a CALCULATED slip to DRAFT so it can be
// recalculated. APPROVED and PAID slips are never reverted.
func (e *Engine) Invalidate(ctx context.Context, id EmployeeID, period PeriodKey) error {
	lock := e.lockFor(id, period)
	lock.Lock()
	defer lock.Unlock()

	slip, err := e.store.Get(ctx, id, period)
	if err != nil {
		return err
	}
	if err := slip.Invalidate(); err != nil {
		return err
	}
	return e.store.Put(ctx, slip)
}

// Approve moves a CALCULATED slip to APPROVED.
func (e *Engine) Approve(ctx context.Context, id EmployeeID, period PeriodKey, approver string) (*Payslip, error) {
	lock := e.lockFor(id, period)
	lock.Lock()
	defer lock.Unlock()

	slip, err := e.store.Get(ctx, id, period)
	if err != nil {
		return nil, err
	}
	if err := slip.Approve(approver, e.now()); err != nil {
		return nil, err
	}
	if err := e.store.Put(ctx, slip); err != nil {
		return nil, err
	}
	return slip, nil
}

// =============================================================================
// BULK CALCULATION
// =============================================================================

// Failure pairs an employee with the error that stopped their slip.
type Failure struct {
	EmployeeID EmployeeID
	Err        error
}

// CalculateAll runs Calculate for every employee in parallel, bounded by
// BulkWorkers. Failures are collected per employee; one failure never
// blocks the rest.
func (e *Engine) CalculateAll(ctx context.Context, period PeriodKey, ids []EmployeeID) ([]*Payslip, []Failure) {
	workers := e.BulkWorkers
	if workers < 1 {
		workers = 1
	}

	type outcome struct {
		slip *Payslip
		fail *Failure
	}
	results := make([]outcome, len(ids))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, id EmployeeID) {
			defer wg.Done()
			defer func() { <-sem }()
			slip, err := e.Calculate(ctx, id, period)
			if err != nil {
				results[i] = outcome{fail: &Failure{EmployeeID: id, Err: err}}
				return
			}
			results[i] = outcome{slip: slip}
		}(i, id)
	}
	wg.Wait()

	var (
		slips    []*Payslip
		failures []Failure
	)
	for _, r := range results {
		if r.fail != nil {
			failures = append(failures, *r.fail)
			continue
		}
		slips = append(slips, r.slip)
	}
	return slips, failures
}
