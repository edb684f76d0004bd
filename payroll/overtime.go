/*
overtime.go - Regular and weekend overtime pay

PURPOSE:
  Values overtime hours against the hourly rate. Regular overtime comes
  from the monthly summary; weekend overtime is summed from weekend day
  records and paid at its own multiplier, gated by configuration.

CALCULATION RULES:
  - regular pay = regularHours * hourly * OVERTIME_RATE_MULTIPLIER
  - weekend pay = weekendHours * hourly * WEEKEND_OVERTIME_MULTIPLIER
  - each component is rounded independently, then summed
  - ALLOW_WEEKEND_OVERTIME=false zeroes the weekend component entirely

SEE ALSO:
  - basic.go: Source of the hourly rate
  - audit.go: Overtime detail records
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// OvertimeResult is the valued overtime for one employee-period.
type OvertimeResult struct {
	RegularHours decimal.Decimal
	WeekendHours decimal.Decimal
	RegularPay   Money
	WeekendPay   Money
	TotalPay     Money
	Details      []Detail
}

type OvertimeCalculator struct {
	cfg *ConfigSnapshot
}

func NewOvertimeCalculator(cfg *ConfigSnapshot) *OvertimeCalculator {
	return &OvertimeCalculator{cfg: cfg}
}

func (c *OvertimeCalculator) Calculate(hourly Money, summary MonthlySummary, days []DayRecord) OvertimeResult {
	regularMult := c.cfg.Decimal(KeyOvertimeRateMultiplier)
	weekendMult := c.cfg.Decimal(KeyWeekendOvertimeMultiplier)
	allowWeekend := c.cfg.Bool(KeyAllowWeekendOvertime)

	res := OvertimeResult{
		RegularHours: summary.TotalOvertimeHours,
	}

	if res.RegularHours.IsPositive() {
		res.RegularPay = hourly.Mul(res.RegularHours).Mul(regularMult).Round()
		res.Details = append(res.Details, Detail{
			Kind:       DetailOvertime,
			Amount:     res.RegularPay,
			Hours:      res.RegularHours.String(),
			Multiplier: regularMult.String(),
		})
	}

	if allowWeekend {
		for _, day := range days {
			if !day.IsWeekend || !day.OvertimeHours.IsPositive() {
				continue
			}
			res.WeekendHours = res.WeekendHours.Add(day.OvertimeHours)
			pay := hourly.Mul(day.OvertimeHours).Mul(weekendMult).Round()
			res.WeekendPay = res.WeekendPay.Add(pay)
			res.Details = append(res.Details, Detail{
				Kind:       DetailOvertime,
				Date:       day.Date,
				Amount:     pay,
				Hours:      day.OvertimeHours.String(),
				Multiplier: weekendMult.String(),
				Weekend:    true,
			})
		}
	}

	res.TotalPay = res.RegularPay.Add(res.WeekendPay)
	return res
}
