/*
deduction.go - Attendance-driven deductions

PURPOSE:
  Values the deductions that come out of attendance behaviour: absences,
  half days, late arrivals (with role-tiered penalty rules), and lunch
  break violations. Statutory deductions (EPF, tax) live in tax.go;
  advance installments are applied by the engine.

CALCULATION RULES:
  - absence     = absentDays * dailyRate
  - half day    = halfDays * dailyRate * (1 - HALF_DAY_SALARY_PERCENTAGE)
  - late arrivals are valued per occurrence, independently, then summed:
      OTHER_STAFF   minutes >= HALF_DAY_THRESHOLD -> half a daily rate;
                    minutes >  grace -> full daily rate when the day's
                    clocks sit inside the fixed 08:15/08:30 window,
                    otherwise the flat OTHER_STAFF rate
      OFFICE_WORKER minutes >= HALF_DAY_THRESHOLD -> half a daily rate;
                    otherwise the flat OFFICE_WORKER rate
      other roles   LATE_PENALTY_PER_MINUTE * minutes
  - lunch: count days whose break exceeds MAX_LUNCH_DURATION_MINUTES;
    reaching the monthly limit costs LUNCH_VIOLATION_PENALTY_DAYS daily
    rates, flat, regardless of how far past the limit the count goes

EDGE CASES:
  - OTHER_STAFF occurrences inside the grace period cost nothing
  - the 08:15/08:30 window test is a fixed rule, not configuration
  - every occurrence produces an audit detail record

SEE ALSO:
  - audit.go: Detail record variants
  - tax.go: Statutory deductions
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// DeductionResult is the attendance deduction block for one
// employee-period.
type DeductionResult struct {
	Absence      Money
	HalfDay      Money
	LatePenalty  Money
	LunchPenalty Money
	Total        Money

	LunchViolations int
	Details         []Detail
}

type DeductionCalculator struct {
	cfg *ConfigSnapshot
}

func NewDeductionCalculator(cfg *ConfigSnapshot) *DeductionCalculator {
	return &DeductionCalculator{cfg: cfg}
}

// Clock bounds for the OTHER_STAFF full-day late rule. An arrival after
// 08:15 paired with a departure before 08:30 forfeits the whole day.
var (
	fullDayWindowIn  = ClockMinutes(8, 15)
	fullDayWindowOut = ClockMinutes(8, 30)
)

var half = decimal.NewFromFloat(0.5)

func (c *DeductionCalculator) Calculate(role Role, daily Money, summary MonthlySummary, days []DayRecord) DeductionResult {
	var res DeductionResult

	if summary.AbsentDays > 0 {
		res.Absence = daily.Mul(decimal.NewFromInt(int64(summary.AbsentDays))).Round()
	}

	if summary.HalfDays > 0 {
		paidFraction := Percent(c.cfg.Decimal(KeyHalfDaySalaryPercentage))
		unpaid := decimal.NewFromInt(1).Sub(paidFraction)
		res.HalfDay = daily.Mul(decimal.NewFromInt(int64(summary.HalfDays))).Mul(unpaid).Round()
	}

	c.lateOccurrences(role, daily, days, &res)
	c.lunchViolations(daily, days, &res)

	res.Total = res.Absence.Add(res.HalfDay).Add(res.LatePenalty).Add(res.LunchPenalty)
	return res
}

func (c *DeductionCalculator) lateOccurrences(role Role, daily Money, days []DayRecord, res *DeductionResult) {
	grace := c.cfg.Int(KeyOtherStaffGraceMinutes)
	halfDayThreshold := c.cfg.Int(KeyHalfDayThresholdMinutes)

	for _, day := range days {
		if day.LateMinutes <= 0 {
			continue
		}
		var (
			amount Money
			kind   DetailKind
		)
		switch role {
		case RoleOtherStaff:
			switch {
			case day.LateMinutes >= halfDayThreshold:
				amount = daily.Mul(half).Round()
				kind = DetailLateHalfDay
			case day.LateMinutes > grace:
				if day.FirstIn >= fullDayWindowIn && day.LastOut >= 0 && day.LastOut <= fullDayWindowOut {
					amount = daily.Round()
					kind = DetailLateFullDay
				} else {
					amount = c.cfg.Money(KeyOtherStaffLatePenalty).Round()
					kind = DetailLateFlat
				}
			default:
				continue // within grace
			}
		case RoleOfficeWorker:
			if day.LateMinutes >= halfDayThreshold {
				amount = daily.Mul(half).Round()
				kind = DetailLateHalfDay
			} else {
				amount = c.cfg.Money(KeyOfficeWorkerLatePenalty).Round()
				kind = DetailLateFlat
			}
		default:
			perMinute := c.cfg.Money(KeyLatePenaltyPerMinute)
			amount = perMinute.Mul(decimal.NewFromInt(int64(day.LateMinutes))).Round()
			kind = DetailLatePerMinute
		}

		res.LatePenalty = res.LatePenalty.Add(amount)
		res.Details = append(res.Details, Detail{
			Kind:        kind,
			Date:        day.Date,
			Amount:      amount,
			LateMinutes: day.LateMinutes,
		})
	}
}

// lunchViolations counts the calendar month's over-limit breaks. The
// penalty is flat once the limit is reached; extra violations beyond the
// limit do not scale it.
func (c *DeductionCalculator) lunchViolations(daily Money, days []DayRecord, res *DeductionResult) {
	maxBreak := c.cfg.Int(KeyMaxLunchDurationMinutes)
	limit := c.cfg.Int(KeyLunchViolationLimit)
	penaltyDays := c.cfg.Int(KeyLunchViolationPenaltyDay)

	for _, day := range days {
		if day.BreakMinutes > maxBreak {
			res.LunchViolations++
		}
	}
	if limit > 0 && res.LunchViolations >= limit {
		res.LunchPenalty = daily.Mul(decimal.NewFromInt(int64(penaltyDays))).Round()
		res.Details = append(res.Details, Detail{
			Kind:       DetailLunchPenalty,
			Amount:     res.LunchPenalty,
			Violations: res.LunchViolations,
			Limit:      limit,
		})
	}
}
