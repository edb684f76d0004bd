package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/payroll"
)

func stdContract(basic string) *payroll.Contract {
	return &payroll.Contract{
		EmployeeID:   "emp-1",
		EmployeeCode: "E001",
		Role:         payroll.RoleOtherStaff,
		Department:   "Production",
		BasicSalary:  payroll.MoneyFromString(basic),
	}
}

// =============================================================================
// RATE DERIVATION
// =============================================================================

func TestBasicCalculator_DailyRate_FixedThirtyDivisor(t *testing.T) {
	// GIVEN: Basic salary of 45000
	// WHEN: Deriving the daily rate
	// THEN: The divisor is 30 regardless of the month's working days

	calc := payroll.NewBasicCalculator(payroll.DefaultSnapshot())
	summary := payroll.MonthlySummary{WorkingDays: 22}

	res := calc.Calculate(stdContract("45000.00"), summary)
	assert.Equal(t, "1500.00", res.DailyRate.String())
}

func TestBasicCalculator_HourlyRate(t *testing.T) {
	// GIVEN: Basic 45000, 22 working days, 9.75 net hours per day
	// WHEN: Deriving the hourly rate
	// THEN: 45000 / 214.5 = 209.79 after rounding

	calc := payroll.NewBasicCalculator(payroll.DefaultSnapshot())
	summary := payroll.MonthlySummary{WorkingDays: 22}

	res := calc.Calculate(stdContract("45000.00"), summary)
	assert.Equal(t, "209.79", res.HourlyRate.String())
	assert.Equal(t, "214.5", res.ExpectedHours.String())
}

func TestBasicCalculator_SalaryRatio_FullAttendance(t *testing.T) {
	// GIVEN: Actual hours equal to expected hours
	// WHEN: Computing the salary ratio
	// THEN: Ratio is exactly 1 and prorated basic equals the basic salary

	calc := payroll.NewBasicCalculator(payroll.DefaultSnapshot())
	summary := payroll.MonthlySummary{
		WorkingDays:    22,
		TotalWorkHours: decimal.NewFromFloat(214.5),
	}

	res := calc.Calculate(stdContract("45000.00"), summary)
	assert.Equal(t, "1", res.SalaryRatio.String())
	assert.Equal(t, "45000.00", res.ProratedBasic.String())
}

func TestBasicCalculator_SalaryRatio_PartialAttendance(t *testing.T) {
	calc := payroll.NewBasicCalculator(payroll.DefaultSnapshot())
	summary := payroll.MonthlySummary{
		WorkingDays:    22,
		TotalWorkHours: decimal.NewFromInt(200),
	}

	res := calc.Calculate(stdContract("45000.00"), summary)
	assert.Equal(t, "0.9324", res.SalaryRatio.String())
}

func TestBasicCalculator_SalaryRatio_ClampedAtOne(t *testing.T) {
	// Months with heavy overtime report more actual hours than expected;
	// the ratio is still capped at 1.
	calc := payroll.NewBasicCalculator(payroll.DefaultSnapshot())
	summary := payroll.MonthlySummary{
		WorkingDays:    22,
		TotalWorkHours: decimal.NewFromInt(240),
	}

	res := calc.Calculate(stdContract("45000.00"), summary)
	assert.Equal(t, "1", res.SalaryRatio.String())
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestBasicCalculator_ZeroWorkingDays(t *testing.T) {
	// GIVEN: A month with no expected working days
	// WHEN: Calculating
	// THEN: Hourly rate and ratio are zero, never a division error

	calc := payroll.NewBasicCalculator(payroll.DefaultSnapshot())
	summary := payroll.MonthlySummary{WorkingDays: 0}

	res := calc.Calculate(stdContract("45000.00"), summary)
	assert.True(t, res.HourlyRate.IsZero())
	assert.True(t, res.SalaryRatio.IsZero())
	assert.True(t, res.ProratedBasic.IsZero())
	// Daily rate is salary-derived and survives
	assert.Equal(t, "1500.00", res.DailyRate.String())
}
