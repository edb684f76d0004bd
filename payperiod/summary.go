/*
summary.go - Department and role rollups

PURPOSE:
  Builds the per-department and per-role summaries management reads:
  headcounts, money totals, average salary, and the derived efficiency
  and policy-compliance scores.

SCORING RULES:
  - efficiency = avgAttendance * wA + avgPunctuality * wP
                 + productivity * (1 - wA - wP)
    where productivity = 100 - (% of employees carrying any penalty)
  - compliance = max(0, 100 - 0.6 * penalty% - 0.4 * lunchViolation%)
  - scores are derived values: summaries are rebuilt whole on every
    period completion, never incremented

SEE ALSO:
  - period.go: Calls buildSummaries from Complete
*/
package payperiod

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// Rollup is the shared rollup body for departments and roles.
type Rollup struct {
	Employees       int
	TotalBasic      payroll.Money
	TotalAllowances payroll.Money
	TotalOvertime   payroll.Money
	TotalGross      payroll.Money
	TotalDeductions payroll.Money
	TotalNet        payroll.Money
	TotalEPF        payroll.Money // employee + employer
	TotalETF        payroll.Money

	AverageGross payroll.Money

	EfficiencyScore decimal.Decimal // 0..100
	ComplianceScore decimal.Decimal // 0..100

	attendanceSum  decimal.Decimal
	punctualitySum decimal.Decimal
	penalized      int
	lunchOffenders int
}

type DepartmentSummary struct {
	Department string
	Rollup
}

type RoleSummary struct {
	Role payroll.Role
	Rollup
}

func (s *Rollup) add(slip *payroll.Payslip) {
	s.Employees++
	s.TotalBasic = s.TotalBasic.Add(slip.BasicSalary)
	allowances := slip.TransportAllowance.
		Add(slip.MealAllowance).
		Add(slip.TelephoneAllowance).
		Add(slip.FuelAllowance).
		Add(slip.AttendanceBonus).
		Add(slip.PerformanceBonus)
	s.TotalAllowances = s.TotalAllowances.Add(allowances)
	s.TotalOvertime = s.TotalOvertime.Add(slip.RegularOvertime).Add(slip.WeekendOvertime)
	s.TotalGross = s.TotalGross.Add(slip.Gross)
	s.TotalDeductions = s.TotalDeductions.Add(slip.TotalDeductions)
	s.TotalNet = s.TotalNet.Add(slip.Net)
	s.TotalEPF = s.TotalEPF.Add(slip.EmployeeEPF).Add(slip.EmployerEPF)
	s.TotalETF = s.TotalETF.Add(slip.ETF)

	s.attendanceSum = s.attendanceSum.Add(slip.AttendancePercentage)
	s.punctualitySum = s.punctualitySum.Add(slip.PunctualityScore)
	if slip.LatePenalty.IsPositive() || slip.LunchPenalty.IsPositive() {
		s.penalized++
	}
	if slip.LunchViolations > 0 {
		s.lunchOffenders++
	}
}

var hundred = decimal.NewFromInt(100)

func (s *Rollup) finalize(cfg *payroll.ConfigSnapshot) {
	if s.Employees == 0 {
		return
	}
	n := decimal.NewFromInt(int64(s.Employees))

	s.AverageGross = s.TotalGross.Div(n).Round()

	avgAttendance := s.attendanceSum.Div(n)
	avgPunctuality := s.punctualitySum.Div(n)
	penaltyPct := decimal.NewFromInt(int64(s.penalized)).Mul(hundred).Div(n)
	lunchPct := decimal.NewFromInt(int64(s.lunchOffenders)).Mul(hundred).Div(n)
	productivity := hundred.Sub(penaltyPct)

	wA := cfg.Decimal(payroll.KeyAttendanceWeight)
	wP := cfg.Decimal(payroll.KeyPunctualityWeight)
	wProd := decimal.NewFromInt(1).Sub(wA).Sub(wP)

	s.EfficiencyScore = avgAttendance.Mul(wA).
		Add(avgPunctuality.Mul(wP)).
		Add(productivity.Mul(wProd)).
		Round(2)

	compliance := hundred.
		Sub(penaltyPct.Mul(decimal.NewFromFloat(0.6))).
		Sub(lunchPct.Mul(decimal.NewFromFloat(0.4)))
	if compliance.IsNegative() {
		compliance = decimal.Zero
	}
	s.ComplianceScore = compliance.Round(2)
}

// buildSummaries rolls the contributing payslips into fresh department
// and role summaries.
func buildSummaries(slips []*payroll.Payslip, cfg *payroll.ConfigSnapshot) (map[string]*DepartmentSummary, map[payroll.Role]*RoleSummary) {
	departments := map[string]*DepartmentSummary{}
	roles := map[payroll.Role]*RoleSummary{}

	for _, slip := range slips {
		dept, ok := departments[slip.Department]
		if !ok {
			dept = &DepartmentSummary{Department: slip.Department}
			departments[slip.Department] = dept
		}
		dept.add(slip)

		role, ok := roles[slip.Role]
		if !ok {
			role = &RoleSummary{Role: slip.Role}
			roles[slip.Role] = role
		}
		role.add(slip)
	}

	for _, d := range departments {
		d.finalize(cfg)
	}
	for _, r := range roles {
		r.finalize(cfg)
	}
	return departments, roles
}
