/*
payslip.go - Payslip line items and lifecycle

PURPOSE:
  The Payslip is the unit of output: every earning and deduction line for
  one employee in one pay period, plus the lifecycle state that controls
  what may still happen to it.

LIFECYCLE:
  DRAFT -> CALCULATED -> APPROVED -> PAID (terminal)
  CANCELLED is reachable from any state except PAID.
  Calculation only runs from DRAFT; re-running requires an explicit
  invalidation back to DRAFT first. APPROVED and PAID slips are never
  invalidated.

INVARIANTS:
  - Gross = basic + bonus1 + bonus2 + allowances + bonuses + overtime
    + religious pay + friday salary
  - TotalDeductions = absence + half day + late + lunch + advance
    + employee EPF + income tax
  - Net = Gross - TotalDeductions, and is never negative on a
    CALCULATED slip

SEE ALSO:
  - engine.go: Populates the computed block
  - payperiod: Aggregates payslips into period totals
*/
package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS
// =============================================================================

type PayslipStatus string

const (
	PayslipDraft      PayslipStatus = "DRAFT"
	PayslipCalculated PayslipStatus = "CALCULATED"
	PayslipApproved   PayslipStatus = "APPROVED"
	PayslipPaid       PayslipStatus = "PAID"
	PayslipCancelled  PayslipStatus = "CANCELLED"
)

// =============================================================================
// PAYSLIP
// =============================================================================

type Payslip struct {
	Reference  string
	EmployeeID EmployeeID
	Period     PeriodKey
	Status     PayslipStatus

	// Snapshot of the contract at calculation time, carried so period
	// summaries group without re-reading contracts
	Role       Role
	Department string

	// Attendance counters carried for reporting
	WorkingDays          int
	AttendedDays         int
	AbsentDays           int
	HalfDays             int
	OvertimeHours        decimal.Decimal
	AttendancePercentage decimal.Decimal
	PunctualityScore     decimal.Decimal
	LunchViolations      int

	// Rates
	DailyRate   Money
	HourlyRate  Money
	SalaryRatio decimal.Decimal

	// Earnings
	BasicSalary        Money
	Bonus1             Money
	Bonus2             Money
	TransportAllowance Money
	MealAllowance      Money
	TelephoneAllowance Money
	FuelAllowance      Money
	AttendanceBonus    Money
	PerformanceBonus   Money
	ReligiousPay       Money // pass-through line item
	FridaySalary       Money // pass-through line item
	RegularOvertime    Money
	WeekendOvertime    Money
	Gross              Money

	// Deductions
	AbsenceDeduction  Money
	HalfDayDeduction  Money
	LatePenalty       Money
	LunchPenalty      Money
	AdvanceDeduction  Money
	EmployeeEPF       Money
	IncomeTax         Money
	TotalDeductions   Money
	Net               Money

	// Employer statutory costs (not deducted from the employee)
	EPFBase     Money
	EmployerEPF Money
	ETF         Money

	Details []Detail

	ApprovedBy   string
	CalculatedAt time.Time
	ApprovedAt   time.Time
	PaidAt       time.Time
}

// NewPayslip creates a DRAFT slip with its reference number assigned.
func NewPayslip(id EmployeeID, code string, period PeriodKey) *Payslip {
	return &Payslip{
		Reference:  PayslipReference(period, code),
		EmployeeID: id,
		Period:     period,
		Status:     PayslipDraft,
	}
}

// PayslipReference builds the canonical reference: PAY{year}{month}{code}.
func PayslipReference(period PeriodKey, employeeCode string) string {
	return fmt.Sprintf("PAY%04d%02d%s", period.Year, period.Month, employeeCode)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

func (p *Payslip) transitionErr(to PayslipStatus) error {
	return &InvalidTransitionError{Entity: "payslip", From: string(p.Status), To: string(to)}
}

// MarkCalculated moves DRAFT -> CALCULATED. The engine calls this after
// the computed block is fully populated.
func (p *Payslip) MarkCalculated(now time.Time) error {
	if p.Status != PayslipDraft {
		return p.transitionErr(PayslipCalculated)
	}
	p.Status = PayslipCalculated
	p.CalculatedAt = now
	return nil
}

// Approve moves CALCULATED -> APPROVED, recording the approver.
func (p *Payslip) Approve(approver string, now time.Time) error {
	if p.Status != PayslipCalculated {
		return p.transitionErr(PayslipApproved)
	}
	p.Status = PayslipApproved
	p.ApprovedBy = approver
	p.ApprovedAt = now
	return nil
}

// MarkPaid moves APPROVED -> PAID. PAID is terminal.
func (p *Payslip) MarkPaid(now time.Time) error {
	if p.Status != PayslipApproved {
		return p.transitionErr(PayslipPaid)
	}
	p.Status = PayslipPaid
	p.PaidAt = now
	return nil
}

// Cancel is allowed from any state except PAID.
func (p *Payslip) Cancel() error {
	if p.Status == PayslipPaid {
		return p.transitionErr(PayslipCancelled)
	}
	p.Status = PayslipCancelled
	return nil
}

// Invalidate reverts CALCULATED -> DRAFT and clears the computed block
// so a recalculation starts clean. APPROVED and PAID slips are never
// reverted; invalidating a DRAFT slip is a no-op.
func (p *Payslip) Invalidate() error {
	switch p.Status {
	case PayslipDraft:
		return nil
	case PayslipCalculated:
		p.clearComputed()
		p.Status = PayslipDraft
		return nil
	default:
		return p.transitionErr(PayslipDraft)
	}
}

func (p *Payslip) clearComputed() {
	reference, id, period := p.Reference, p.EmployeeID, p.Period
	*p = Payslip{Reference: reference, EmployeeID: id, Period: period, Status: p.Status}
}
