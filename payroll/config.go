/*
config.go - Immutable configuration snapshot and role allowance table

PURPOSE:
  All tunable payroll parameters live behind a ConfigSnapshot: a frozen
  view of configuration taken once before a calculation run. Every
  calculator reads the same snapshot, so a configuration edit mid-run
  can never produce a payslip mixing old and new rules.

KEY CONCEPTS IN THIS FILE:
  - ConfigSnapshot: Frozen key/value view with typed getters and defaults
  - RoleAllowanceTable: Role -> AllowanceSet mapping with a default entry,
    resolved at snapshot construction (no runtime key synthesis)

DESIGN PRINCIPLES:
  1. Missing or malformed optional values fall back to a documented
     default with a warning log; a calculation run never aborts on a
     bad config value
  2. Snapshots are immutable after construction

SEE ALSO:
  - factory/config.go: Builds snapshots from JSON policy documents
  - allowance.go: RoleAllowanceTable consumption
*/
package payroll

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFIG KEYS - Known settings and their defaults
// =============================================================================

const (
	KeyNetWorkingHours           = "NET_WORKING_HOURS"
	KeyOvertimeRateMultiplier    = "OVERTIME_RATE_MULTIPLIER"
	KeyWeekendOvertimeMultiplier = "WEEKEND_OVERTIME_MULTIPLIER"
	KeyAllowWeekendOvertime      = "ALLOW_WEEKEND_OVERTIME"

	KeyAttendanceBonusThreshold  = "ATTENDANCE_BONUS_THRESHOLD"
	KeyAttendanceBonusAmount     = "ATTENDANCE_BONUS_AMOUNT"
	KeyPunctualityBonusThreshold = "PUNCTUALITY_BONUS_THRESHOLD"
	KeyPunctualityBonusAmount    = "PUNCTUALITY_BONUS_AMOUNT"

	KeyHalfDaySalaryPercentage = "HALF_DAY_SALARY_PERCENTAGE"

	KeyOtherStaffGraceMinutes   = "OTHER_STAFF_GRACE_PERIOD_MINUTES"
	KeyHalfDayThresholdMinutes  = "HALF_DAY_THRESHOLD_MINUTES"
	KeyOtherStaffLatePenalty    = "OTHER_STAFF_LATE_PENALTY_RATE"
	KeyOfficeWorkerLatePenalty  = "OFFICE_WORKER_LATE_PENALTY_RATE"
	KeyLatePenaltyPerMinute     = "LATE_PENALTY_PER_MINUTE"
	KeyLunchViolationLimit      = "LUNCH_VIOLATION_LIMIT_PER_MONTH"
	KeyLunchViolationPenaltyDay = "LUNCH_VIOLATION_PENALTY_DAYS"
	KeyMaxLunchDurationMinutes  = "MAX_LUNCH_DURATION_MINUTES"

	KeyDefaultBonus1 = "DEFAULT_BONUS_1"
	KeyDefaultBonus2 = "DEFAULT_BONUS_2"

	KeyEPFEmployeeRate = "EPF_EMPLOYEE_RATE"
	KeyEPFEmployerRate = "EPF_EMPLOYER_RATE"
	KeyETFRate         = "ETF_RATE"

	KeyTaxFreeThreshold     = "TAX_FREE_THRESHOLD"
	KeyBasicTaxRate         = "BASIC_TAX_RATE"
	KeySpouseRelief         = "SPOUSE_RELIEF"
	KeyChildReliefPerChild  = "CHILD_RELIEF_PER_CHILD"
	KeyMaxChildrenForRelief = "MAX_CHILDREN_FOR_RELIEF"

	KeyAdvanceMaxPercentage = "SALARY_ADVANCE_MAX_PERCENTAGE"
	KeyMaxAdvancesPerYear   = "MAX_ADVANCES_PER_YEAR"

	KeyAttendanceWeight  = "ATTENDANCE_WEIGHT"
	KeyPunctualityWeight = "PUNCTUALITY_WEIGHT"
)

// defaults holds the documented fallback for every known key.
var defaults = map[string]string{
	KeyNetWorkingHours:           "9.75",
	KeyOvertimeRateMultiplier:    "1.5",
	KeyWeekendOvertimeMultiplier: "2.0",
	KeyAllowWeekendOvertime:      "true",

	KeyAttendanceBonusThreshold:  "95.0",
	KeyAttendanceBonusAmount:     "1000.00",
	KeyPunctualityBonusThreshold: "98.0",
	KeyPunctualityBonusAmount:    "500.00",

	KeyHalfDaySalaryPercentage: "50.0",

	KeyOtherStaffGraceMinutes:   "15",
	KeyHalfDayThresholdMinutes:  "35",
	KeyOtherStaffLatePenalty:    "50.00",
	KeyOfficeWorkerLatePenalty:  "25.00",
	KeyLatePenaltyPerMinute:     "10.00",
	KeyLunchViolationLimit:      "3",
	KeyLunchViolationPenaltyDay: "1",
	KeyMaxLunchDurationMinutes:  "75",

	KeyDefaultBonus1: "1500.00",
	KeyDefaultBonus2: "1000.00",

	KeyEPFEmployeeRate: "8.0",
	KeyEPFEmployerRate: "12.0",
	KeyETFRate:         "3.0",

	KeyTaxFreeThreshold:     "1200000.00",
	KeyBasicTaxRate:         "6.0",
	KeySpouseRelief:         "100000.00",
	KeyChildReliefPerChild:  "75000.00",
	KeyMaxChildrenForRelief: "3",

	KeyAdvanceMaxPercentage: "50.0",
	KeyMaxAdvancesPerYear:   "10",

	KeyAttendanceWeight:  "0.4",
	KeyPunctualityWeight: "0.3",
}

// =============================================================================
// ALLOWANCE TABLE
// =============================================================================

// AllowanceSet is the fixed monthly allowances for a role.
type AllowanceSet struct {
	Transport Money
	Meal      Money
	Telephone Money
	Fuel      Money
}

func (a AllowanceSet) Total() Money {
	return a.Transport.Add(a.Meal).Add(a.Telephone).Add(a.Fuel)
}

// DefaultAllowances is the fallback set for roles with no table entry.
var DefaultAllowances = AllowanceSet{
	Transport: MoneyFromString("2000.00"),
	Meal:      MoneyFromString("1500.00"),
	Telephone: MoneyFromString("500.00"),
	Fuel:      Zero,
}

// RoleAllowanceTable maps roles to allowance sets. Lookup never fails:
// unknown roles receive the Default entry.
type RoleAllowanceTable struct {
	Default AllowanceSet
	Roles   map[Role]AllowanceSet
}

func (t RoleAllowanceTable) For(role Role) AllowanceSet {
	if set, ok := t.Roles[role]; ok {
		return set
	}
	return t.Default
}

// =============================================================================
// CONFIG SNAPSHOT
// =============================================================================

// ConfigSnapshot is an immutable view of payroll configuration. Build one
// per calculation run and thread it through every calculator.
type ConfigSnapshot struct {
	values     map[string]string
	allowances RoleAllowanceTable
}

// NewSnapshot freezes the given values. The map is copied; later edits to
// the caller's map do not leak into the snapshot.
func NewSnapshot(values map[string]string, allowances RoleAllowanceTable) *ConfigSnapshot {
	frozen := make(map[string]string, len(values))
	for k, v := range values {
		frozen[k] = v
	}
	if allowances.Roles == nil {
		allowances.Roles = map[Role]AllowanceSet{}
	}
	if allowances.Default == (AllowanceSet{}) {
		allowances.Default = DefaultAllowances
	}
	return &ConfigSnapshot{values: frozen, allowances: allowances}
}

// SnapshotFrom reads a ConfigSource once and freezes the result.
func SnapshotFrom(ctx context.Context, src ConfigSource, allowances RoleAllowanceTable) (*ConfigSnapshot, error) {
	values, err := src.Values(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(values, allowances), nil
}

// DefaultSnapshot returns a snapshot carrying only the documented defaults.
func DefaultSnapshot() *ConfigSnapshot {
	return NewSnapshot(nil, RoleAllowanceTable{})
}

func (c *ConfigSnapshot) Allowances() RoleAllowanceTable { return c.allowances }

func (c *ConfigSnapshot) raw(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok || strings.TrimSpace(v) == "" {
		v, ok = defaults[key]
	}
	return v, ok
}

// Decimal returns the value for key as a decimal, or the documented
// default when the key is missing or malformed.
func (c *ConfigSnapshot) Decimal(key string) decimal.Decimal {
	v, ok := c.raw(key)
	if !ok {
		log.Printf("config: unknown key %q, using zero", key)
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		def := defaults[key]
		log.Printf("config: malformed value %q for %s, using default %s", v, key, def)
		d, _ = decimal.NewFromString(def)
	}
	return d
}

// Money returns the value for key as a monetary amount.
func (c *ConfigSnapshot) Money(key string) Money {
	return NewMoney(c.Decimal(key))
}

// Int returns the value for key as an int, or the documented default.
func (c *ConfigSnapshot) Int(key string) int {
	v, ok := c.raw(key)
	if !ok {
		log.Printf("config: unknown key %q, using zero", key)
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		def := defaults[key]
		log.Printf("config: malformed value %q for %s, using default %s", v, key, def)
		n, _ = strconv.Atoi(def)
	}
	return n
}

// Bool returns the value for key as a bool. Accepts true/false/1/0/yes/no.
func (c *ConfigSnapshot) Bool(key string) bool {
	v, ok := c.raw(key)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		def := defaults[key]
		log.Printf("config: malformed value %q for %s, using default %s", v, key, def)
		return def == "true"
	}
}
