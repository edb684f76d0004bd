package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/payroll"
)

func newTaxCalc() *payroll.TaxCalculator {
	return payroll.NewTaxCalculator(payroll.DefaultSnapshot())
}

// =============================================================================
// PROVIDENT AND TRUST FUNDS
// =============================================================================

func TestTax_EPFBase_ExcludesAllowancesAndOvertime(t *testing.T) {
	// GIVEN: Basic 45000 with the two standard bonuses, gross 55000
	// WHEN: Computing statutory contributions
	// THEN: The EPF base is basic + bonus1 + bonus2 only; the gross
	//       (carrying allowances and overtime) feeds ETF alone

	contract := &payroll.Contract{EmployeeID: "emp-1"}
	res := newTaxCalc().Calculate(contract,
		payroll.MoneyFromString("45000.00"),
		payroll.MoneyFromString("1500.00"),
		payroll.MoneyFromString("1000.00"),
		payroll.MoneyFromString("55000.00"))

	assert.Equal(t, "47500.00", res.EPFBase.String())
	assert.Equal(t, "3800.00", res.EmployeeEPF.String()) // 8%
	assert.Equal(t, "5700.00", res.EmployerEPF.String()) // 12%
	assert.Equal(t, "1650.00", res.ETF.String())         // 3% of gross
}

func TestTax_NotLiable_NoIncomeTax(t *testing.T) {
	contract := &payroll.Contract{EmployeeID: "emp-1", TaxLiable: false}
	res := newTaxCalc().Calculate(contract,
		payroll.MoneyFromString("500000.00"),
		payroll.Zero, payroll.Zero,
		payroll.MoneyFromString("500000.00"))
	assert.True(t, res.IncomeTax.IsZero())
}

// =============================================================================
// INCOME TAX
// =============================================================================

func TestTax_BelowAnnualThreshold_Zero(t *testing.T) {
	// GIVEN: Gross 90000/month, annualized to 1,080,000
	// WHEN: Computing tax against the 1,200,000 threshold
	// THEN: Nothing is taxable

	contract := &payroll.Contract{EmployeeID: "emp-1", TaxLiable: true}
	res := newTaxCalc().Calculate(contract,
		payroll.MoneyFromString("80000.00"),
		payroll.Zero, payroll.Zero,
		payroll.MoneyFromString("90000.00"))
	assert.True(t, res.IncomeTax.IsZero())
}

func TestTax_MarriedWithChild_ReliefsApplied(t *testing.T) {
	// GIVEN: Gross 120000/month (annual 1,440,000), married, one child
	// WHEN: Computing monthly income tax
	// THEN: taxable = 1,440,000 - 1,200,000 - 100,000 - 75,000 = 65,000
	//       monthly = 65,000 * 6% / 12 = 325.00

	contract := &payroll.Contract{
		EmployeeID: "emp-1",
		TaxLiable:  true,
		IsMarried:  true,
		Children:   1,
	}
	res := newTaxCalc().Calculate(contract,
		payroll.MoneyFromString("110000.00"),
		payroll.Zero, payroll.Zero,
		payroll.MoneyFromString("120000.00"))
	assert.Equal(t, "325.00", res.IncomeTax.String())
}

func TestTax_ChildReliefCappedAtThree(t *testing.T) {
	// GIVEN: Five children against a cap of three
	// WHEN: Computing reliefs
	// THEN: Only 3 * 75,000 = 225,000 in child relief counts

	contract := &payroll.Contract{EmployeeID: "emp-1", TaxLiable: true, Children: 5}
	// annual 1,800,000; taxable = 1,800,000 - 1,200,000 - 225,000 = 375,000
	// monthly = 375,000 * 6% / 12 = 1875.00
	res := newTaxCalc().Calculate(contract,
		payroll.MoneyFromString("140000.00"),
		payroll.Zero, payroll.Zero,
		payroll.MoneyFromString("150000.00"))
	assert.Equal(t, "1875.00", res.IncomeTax.String())
}

func TestTax_ReliefsCannotGoNegative(t *testing.T) {
	// Reliefs larger than the excess over the threshold floor the tax at
	// zero, never a refund.
	contract := &payroll.Contract{
		EmployeeID: "emp-1",
		TaxLiable:  true,
		IsMarried:  true,
		Children:   3,
	}
	// annual 1,212,000; threshold + reliefs = 1,525,000 > annual
	res := newTaxCalc().Calculate(contract,
		payroll.MoneyFromString("95000.00"),
		payroll.Zero, payroll.Zero,
		payroll.MoneyFromString("101000.00"))
	assert.True(t, res.IncomeTax.IsZero())
}
