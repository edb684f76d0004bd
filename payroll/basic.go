/*
basic.go - Basic salary components

PURPOSE:
  Derives the per-day and per-hour rates and the worked-hours salary
  ratio from an employee's basic salary and monthly attendance. These
  feed every downstream calculator: overtime pay uses the hourly rate,
  absence deductions use the daily rate, proration uses the ratio.

CALCULATION RULES:
  - daily rate   = basic / 30 (fixed divisor, independent of the month)
  - hourly rate  = basic / (workingDays * netWorkingHours)
  - salary ratio = min(actualHours / (workingDays * netWorkingHours), 1)
    kept at 4 decimal places
  - zero working days yields a zero hourly rate and zero ratio, never a
    division error

SEE ALSO:
  - overtime.go: Consumes HourlyRate
  - deduction.go: Consumes DailyRate
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// BasicComponents is the rate foundation for one employee-period.
type BasicComponents struct {
	BasicSalary   Money
	DailyRate     Money
	HourlyRate    Money
	SalaryRatio   decimal.Decimal // 0..1 at 4 decimal places
	ProratedBasic Money
	ExpectedHours decimal.Decimal // workingDays * netWorkingHours
}

// BasicCalculator derives BasicComponents from contract and attendance.
type BasicCalculator struct {
	cfg *ConfigSnapshot
}

func NewBasicCalculator(cfg *ConfigSnapshot) *BasicCalculator {
	return &BasicCalculator{cfg: cfg}
}

var thirty = decimal.NewFromInt(30)

func (c *BasicCalculator) Calculate(contract *Contract, summary MonthlySummary) BasicComponents {
	basic := contract.BasicSalary
	netHours := c.cfg.Decimal(KeyNetWorkingHours)

	daily := basic.Div(thirty).Round()

	expected := decimal.NewFromInt(int64(summary.WorkingDays)).Mul(netHours)

	hourly := Zero
	ratio := decimal.Zero
	if expected.IsPositive() {
		hourly = basic.Div(expected).Round()
		ratio = ClampRatio(Ratio(summary.TotalWorkHours, expected))
	}

	return BasicComponents{
		BasicSalary:   basic,
		DailyRate:     daily,
		HourlyRate:    hourly,
		SalaryRatio:   ratio,
		ProratedBasic: basic.Mul(ratio).Round(),
		ExpectedHours: expected,
	}
}
