/*
tax.go - Statutory contributions and income tax

PURPOSE:
  Computes the provident fund contributions (employee and employer), the
  trust fund contribution, and the optional monthly income tax.

CALCULATION RULES:
  - EPF base = basic + bonus1 + bonus2. Allowances, overtime, and other
    earnings are excluded from the base.
  - employee EPF = EPF base * EPF_EMPLOYEE_RATE
  - employer EPF = EPF base * EPF_EMPLOYER_RATE (employer cost, not a
    deduction from the employee)
  - ETF = gross * ETF_RATE (employer cost)
  - income tax, only for tax-liable employees:
      annual        = gross * 12
      reliefs       = SPOUSE_RELIEF (if married)
                      + CHILD_RELIEF_PER_CHILD * min(children, cap)
      taxable       = max(annual - TAX_FREE_THRESHOLD - reliefs, 0)
      monthly tax   = taxable * BASIC_TAX_RATE / 12

SEE ALSO:
  - engine.go: Supplies the true gross (computed before this step)
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// TaxResult is the statutory block for one employee-period.
type TaxResult struct {
	EPFBase     Money // basic + bonus1 + bonus2
	EmployeeEPF Money
	EmployerEPF Money
	ETF         Money
	IncomeTax   Money
}

type TaxCalculator struct {
	cfg *ConfigSnapshot
}

func NewTaxCalculator(cfg *ConfigSnapshot) *TaxCalculator {
	return &TaxCalculator{cfg: cfg}
}

var twelve = decimal.NewFromInt(12)

func (c *TaxCalculator) Calculate(contract *Contract, basic, bonus1, bonus2, gross Money) TaxResult {
	base := basic.Add(bonus1).Add(bonus2)

	res := TaxResult{
		EPFBase:     base,
		EmployeeEPF: base.Mul(Percent(c.cfg.Decimal(KeyEPFEmployeeRate))).Round(),
		EmployerEPF: base.Mul(Percent(c.cfg.Decimal(KeyEPFEmployerRate))).Round(),
		ETF:         gross.Mul(Percent(c.cfg.Decimal(KeyETFRate))).Round(),
	}

	if contract.TaxLiable {
		res.IncomeTax = c.monthlyIncomeTax(contract, gross)
	}
	return res
}

func (c *TaxCalculator) monthlyIncomeTax(contract *Contract, gross Money) Money {
	annual := gross.Mul(twelve)

	reliefs := Zero
	if contract.IsMarried {
		reliefs = reliefs.Add(c.cfg.Money(KeySpouseRelief))
	}
	if contract.Children > 0 {
		capped := contract.Children
		if max := c.cfg.Int(KeyMaxChildrenForRelief); capped > max {
			capped = max
		}
		perChild := c.cfg.Money(KeyChildReliefPerChild)
		reliefs = reliefs.Add(perChild.Mul(decimal.NewFromInt(int64(capped))))
	}

	taxable := annual.Sub(c.cfg.Money(KeyTaxFreeThreshold)).Sub(reliefs)
	if !taxable.IsPositive() {
		return Zero
	}

	annualTax := taxable.Mul(Percent(c.cfg.Decimal(KeyBasicTaxRate)))
	return annualTax.Div(twelve).Round()
}
