/*
types.go - Identifiers, roles, and input provider contracts

PURPOSE:
  Defines the typed identifiers the engine keys on, the employee role
  taxonomy that drives tiered penalties and allowances, and the provider
  interfaces through which attendance and contract data enter the engine.
  The engine never reads a database directly; everything arrives through
  these interfaces.

KEY CONCEPTS IN THIS FILE:
  - EmployeeID / PeriodKey: Type-safe identifiers
  - Role: Employee category (drives late-penalty tiers and allowances)
  - MonthlySummary / DayRecord: Attendance inputs
  - AttendanceProvider / CompensationProvider / ConfigSource: Input ports

SEE ALSO:
  - providers/memory.go: In-memory implementations for tests and demos
  - config.go: ConfigSource consumption
  - engine.go: Provider orchestration
*/
package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string

// PeriodKey identifies a monthly pay period.
type PeriodKey struct {
	Year  int
	Month int // 1..12
}

func (p PeriodKey) String() string { return fmt.Sprintf("%04d-%02d", p.Year, p.Month) }

func (p PeriodKey) Valid() bool {
	return p.Year >= 2000 && p.Year <= 2200 && p.Month >= 1 && p.Month <= 12
}

// =============================================================================
// ROLES - Employee categories
// =============================================================================

// Role categorizes an employee for penalty tiers and allowance lookup.
// Unknown roles fall through to the per-minute penalty tier and the
// default allowance set.
type Role string

const (
	RoleOtherStaff   Role = "OTHER_STAFF"
	RoleOfficeWorker Role = "OFFICE_WORKER"
	RoleManager      Role = "MANAGER"
	RoleExecutive    Role = "EXECUTIVE"
)

// =============================================================================
// ATTENDANCE INPUTS
// =============================================================================

// MonthlySummary is the pre-aggregated attendance picture for one
// employee in one calendar month.
type MonthlySummary struct {
	EmployeeID EmployeeID
	Period     PeriodKey

	WorkingDays  int // expected working days in the month
	AttendedDays int
	AbsentDays   int
	HalfDays     int
	LateDays     int

	TotalWorkHours     decimal.Decimal
	TotalOvertimeHours decimal.Decimal // regular (non-weekend) overtime

	AttendancePercentage decimal.Decimal // 0..100
	PunctualityScore     decimal.Decimal // 0..100
}

// MinutesOfDay is a clock time expressed as minutes since midnight.
// Negative means "not recorded".
type MinutesOfDay int

const MinuteUnset MinutesOfDay = -1

func ClockMinutes(hour, minute int) MinutesOfDay {
	return MinutesOfDay(hour*60 + minute)
}

// DayRecord is a single day's attendance detail, used for weekend
// overtime, per-occurrence late penalties, and lunch violations.
type DayRecord struct {
	Date          string // YYYY-MM-DD
	IsWeekend     bool
	OvertimeHours decimal.Decimal
	LateMinutes   int
	FirstIn       MinutesOfDay
	LastOut       MinutesOfDay
	BreakMinutes  int
}

// =============================================================================
// CONTRACT
// =============================================================================

// Contract is the compensation agreement active for the pay period.
type Contract struct {
	EmployeeID   EmployeeID
	EmployeeCode string // short code used in payslip references
	Role         Role
	Department   string
	BasicSalary  Money
	IsMarried    bool
	Children     int
	TaxLiable    bool // income tax computed only when true
}

// =============================================================================
// INPUT PORTS
// =============================================================================

// AttendanceProvider supplies attendance data. MonthlySummary returns a
// DataMissingError when no summary exists for the employee and period.
type AttendanceProvider interface {
	MonthlySummary(ctx context.Context, id EmployeeID, period PeriodKey) (MonthlySummary, error)
	DailyRecords(ctx context.Context, id EmployeeID, period PeriodKey) ([]DayRecord, error)
}

// CompensationProvider supplies contract data. ActiveContract returns a
// DataMissingError when the employee has no active contract.
type CompensationProvider interface {
	ActiveContract(ctx context.Context, id EmployeeID) (*Contract, error)
}

// ConfigSource supplies the raw configuration values a ConfigSnapshot is
// built from. It is read once per snapshot, never during calculation.
type ConfigSource interface {
	Values(ctx context.Context) (map[string]string, error)
}
