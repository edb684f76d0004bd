/*
allowance.go - Role allowances and attendance-driven bonuses

PURPOSE:
  Resolves the fixed monthly allowance set for an employee's role and
  grants the attendance and performance bonuses when the month's scores
  clear their thresholds.

CALCULATION RULES:
  - allowance set comes from the RoleAllowanceTable; unknown roles get
    the default entry
  - attendance bonus: AttendancePercentage >= ATTENDANCE_BONUS_THRESHOLD
  - performance bonus: PunctualityScore >= PUNCTUALITY_BONUS_THRESHOLD,
    granted once per month
  - TotalAllowances is purely additive

SEE ALSO:
  - config.go: RoleAllowanceTable
*/
package payroll

// AllowanceResult is the valued allowances and bonuses for one
// employee-period.
type AllowanceResult struct {
	Set              AllowanceSet
	AttendanceBonus  Money
	PerformanceBonus Money
	Total            Money
}

type AllowanceCalculator struct {
	cfg *ConfigSnapshot
}

func NewAllowanceCalculator(cfg *ConfigSnapshot) *AllowanceCalculator {
	return &AllowanceCalculator{cfg: cfg}
}

func (c *AllowanceCalculator) Calculate(role Role, summary MonthlySummary) AllowanceResult {
	res := AllowanceResult{
		Set: c.cfg.Allowances().For(role),
	}

	if summary.AttendancePercentage.GreaterThanOrEqual(c.cfg.Decimal(KeyAttendanceBonusThreshold)) {
		res.AttendanceBonus = c.cfg.Money(KeyAttendanceBonusAmount).Round()
	}
	if summary.PunctualityScore.GreaterThanOrEqual(c.cfg.Decimal(KeyPunctualityBonusThreshold)) {
		res.PerformanceBonus = c.cfg.Money(KeyPunctualityBonusAmount).Round()
	}

	res.Total = res.Set.Total().Add(res.AttendanceBonus).Add(res.PerformanceBonus)
	return res
}
