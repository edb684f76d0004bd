/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/payroll-engine/advance"
	"github.com/warp/payroll-engine/payperiod"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// PAYSLIP TYPES
// =============================================================================

// PayslipDTO represents a payslip in API responses. Monetary values are
// decimal strings with 2 places.
type PayslipDTO struct {
	Reference  string `json:"reference"`
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Status     string `json:"status"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role,omitempty"`

	WorkingDays   int    `json:"working_days"`
	AttendedDays  int    `json:"attended_days"`
	AbsentDays    int    `json:"absent_days"`
	HalfDays      int    `json:"half_days"`
	OvertimeHours string `json:"overtime_hours"`

	DailyRate  string `json:"daily_rate"`
	HourlyRate string `json:"hourly_rate"`

	BasicSalary        string `json:"basic_salary"`
	Bonus1             string `json:"bonus_1"`
	Bonus2             string `json:"bonus_2"`
	TransportAllowance string `json:"transport_allowance"`
	MealAllowance      string `json:"meal_allowance"`
	TelephoneAllowance string `json:"telephone_allowance"`
	FuelAllowance      string `json:"fuel_allowance"`
	AttendanceBonus    string `json:"attendance_bonus"`
	PerformanceBonus   string `json:"performance_bonus"`
	ReligiousPay       string `json:"religious_pay"`
	FridaySalary       string `json:"friday_salary"`
	RegularOvertime    string `json:"regular_overtime"`
	WeekendOvertime    string `json:"weekend_overtime"`
	Gross              string `json:"gross"`

	AbsenceDeduction string `json:"absence_deduction"`
	HalfDayDeduction string `json:"half_day_deduction"`
	LatePenalty      string `json:"late_penalty"`
	LunchPenalty     string `json:"lunch_penalty"`
	AdvanceDeduction string `json:"advance_deduction"`
	EmployeeEPF      string `json:"employee_epf"`
	IncomeTax        string `json:"income_tax"`
	TotalDeductions  string `json:"total_deductions"`
	Net              string `json:"net"`

	EmployerEPF string `json:"employer_epf"`
	ETF         string `json:"etf"`

	Details []DetailDTO `json:"details,omitempty"`

	ApprovedBy   string `json:"approved_by,omitempty"`
	CalculatedAt string `json:"calculated_at,omitempty"`
	ApprovedAt   string `json:"approved_at,omitempty"`
}

// DetailDTO is one audit detail record.
type DetailDTO struct {
	Kind        string `json:"kind"`
	Date        string `json:"date,omitempty"`
	Amount      string `json:"amount"`
	LateMinutes int    `json:"late_minutes,omitempty"`
	Violations  int    `json:"violations,omitempty"`
	Hours       string `json:"hours,omitempty"`
	Multiplier  string `json:"multiplier,omitempty"`
	Weekend     bool   `json:"weekend,omitempty"`
	AdvanceRef  string `json:"advance_ref,omitempty"`
}

// ApproveRequest carries the approver identity.
type ApproveRequest struct {
	Approver string `json:"approver"`
}

// BulkCalculateRequest selects the employees to calculate.
type BulkCalculateRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
}

// BulkCalculateResponse reports per-employee outcomes.
type BulkCalculateResponse struct {
	Calculated []PayslipDTO `json:"calculated"`
	Failures   []FailureDTO `json:"failures"`
}

// FailureDTO is one employee's bulk-calculation failure.
type FailureDTO struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// =============================================================================
// ADVANCE TYPES
// =============================================================================

// AdvanceDTO represents a salary advance in API responses.
type AdvanceDTO struct {
	Reference          string `json:"reference"`
	EmployeeID         string `json:"employee_id"`
	Type               string `json:"type"`
	Reason             string `json:"reason,omitempty"`
	Amount             string `json:"amount"`
	Outstanding        string `json:"outstanding"`
	MonthlyInstallment string `json:"monthly_installment"`
	Installments       int    `json:"installments"`
	Status             string `json:"status"`
	RequestedAt        string `json:"requested_at,omitempty"`
	DisbursedAt        string `json:"disbursed_at,omitempty"`
}

// RequestAdvanceRequest is the request to draw an advance.
type RequestAdvanceRequest struct {
	EmployeeID   string `json:"employee_id"`
	Type         string `json:"type"`
	Amount       string `json:"amount"`
	Installments int    `json:"installments"`
	Reason       string `json:"reason"`
}

// AvailabilityDTO reports advance headroom.
type AvailabilityDTO struct {
	EmployeeID string `json:"employee_id"`
	Available  string `json:"available"`
	UsedCount  int    `json:"used_count_this_year"`
}

// =============================================================================
// PERIOD TYPES
// =============================================================================

// PeriodDTO represents a pay period in API responses.
type PeriodDTO struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Status string `json:"status"`

	Employees       int    `json:"employees"`
	Gross           string `json:"gross"`
	TotalDeductions string `json:"total_deductions"`
	Net             string `json:"net"`
	EmployeeEPF     string `json:"employee_epf"`
	EmployerEPF     string `json:"employer_epf"`
	ETF             string `json:"etf"`
	AdvanceRecovery string `json:"advance_recovery"`
	Overtime        string `json:"overtime"`

	Departments []SummaryDTO `json:"departments,omitempty"`
	Roles       []SummaryDTO `json:"roles,omitempty"`

	ApprovedBy string `json:"approved_by,omitempty"`
}

// SummaryDTO is one department or role rollup.
type SummaryDTO struct {
	Name            string `json:"name"`
	Employees       int    `json:"employees"`
	TotalGross      string `json:"total_gross"`
	TotalDeductions string `json:"total_deductions"`
	TotalNet        string `json:"total_net"`
	AverageGross    string `json:"average_gross"`
	EfficiencyScore string `json:"efficiency_score"`
	ComplianceScore string `json:"compliance_score"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toPayslipDTO(s *payroll.Payslip) PayslipDTO {
	dto := PayslipDTO{
		Reference:  s.Reference,
		EmployeeID: string(s.EmployeeID),
		Year:       s.Period.Year,
		Month:      s.Period.Month,
		Status:     string(s.Status),
		Department: s.Department,
		Role:       string(s.Role),

		WorkingDays:   s.WorkingDays,
		AttendedDays:  s.AttendedDays,
		AbsentDays:    s.AbsentDays,
		HalfDays:      s.HalfDays,
		OvertimeHours: s.OvertimeHours.String(),

		DailyRate:  s.DailyRate.String(),
		HourlyRate: s.HourlyRate.String(),

		BasicSalary:        s.BasicSalary.String(),
		Bonus1:             s.Bonus1.String(),
		Bonus2:             s.Bonus2.String(),
		TransportAllowance: s.TransportAllowance.String(),
		MealAllowance:      s.MealAllowance.String(),
		TelephoneAllowance: s.TelephoneAllowance.String(),
		FuelAllowance:      s.FuelAllowance.String(),
		AttendanceBonus:    s.AttendanceBonus.String(),
		PerformanceBonus:   s.PerformanceBonus.String(),
		ReligiousPay:       s.ReligiousPay.String(),
		FridaySalary:       s.FridaySalary.String(),
		RegularOvertime:    s.RegularOvertime.String(),
		WeekendOvertime:    s.WeekendOvertime.String(),
		Gross:              s.Gross.String(),

		AbsenceDeduction: s.AbsenceDeduction.String(),
		HalfDayDeduction: s.HalfDayDeduction.String(),
		LatePenalty:      s.LatePenalty.String(),
		LunchPenalty:     s.LunchPenalty.String(),
		AdvanceDeduction: s.AdvanceDeduction.String(),
		EmployeeEPF:      s.EmployeeEPF.String(),
		IncomeTax:        s.IncomeTax.String(),
		TotalDeductions:  s.TotalDeductions.String(),
		Net:              s.Net.String(),

		EmployerEPF: s.EmployerEPF.String(),
		ETF:         s.ETF.String(),

		ApprovedBy: s.ApprovedBy,
	}
	if !s.CalculatedAt.IsZero() {
		dto.CalculatedAt = s.CalculatedAt.Format(time.RFC3339)
	}
	if !s.ApprovedAt.IsZero() {
		dto.ApprovedAt = s.ApprovedAt.Format(time.RFC3339)
	}
	for _, d := range s.Details {
		dto.Details = append(dto.Details, DetailDTO{
			Kind:        string(d.Kind),
			Date:        d.Date,
			Amount:      d.Amount.String(),
			LateMinutes: d.LateMinutes,
			Violations:  d.Violations,
			Hours:       d.Hours,
			Multiplier:  d.Multiplier,
			Weekend:     d.Weekend,
			AdvanceRef:  d.AdvanceRef,
		})
	}
	return dto
}

func toAdvanceDTO(a *advance.Advance) AdvanceDTO {
	dto := AdvanceDTO{
		Reference:          a.Reference,
		EmployeeID:         string(a.EmployeeID),
		Type:               string(a.Type),
		Reason:             a.Reason,
		Amount:             a.Amount.String(),
		Outstanding:        a.Outstanding.String(),
		MonthlyInstallment: a.MonthlyInstallment.String(),
		Installments:       a.Installments,
		Status:             string(a.Status),
	}
	if !a.RequestedAt.IsZero() {
		dto.RequestedAt = a.RequestedAt.Format(time.RFC3339)
	}
	if !a.DisbursedAt.IsZero() {
		dto.DisbursedAt = a.DisbursedAt.Format(time.RFC3339)
	}
	return dto
}

func toPeriodDTO(p *payperiod.PayPeriod) PeriodDTO {
	dto := PeriodDTO{
		Year:   p.Period.Year,
		Month:  p.Period.Month,
		Status: string(p.Status),

		Employees:       p.Totals.Employees,
		Gross:           p.Totals.Gross.String(),
		TotalDeductions: p.Totals.TotalDeductions.String(),
		Net:             p.Totals.Net.String(),
		EmployeeEPF:     p.Totals.EmployeeEPF.String(),
		EmployerEPF:     p.Totals.EmployerEPF.String(),
		ETF:             p.Totals.ETF.String(),
		AdvanceRecovery: p.Totals.AdvanceRecovery.String(),
		Overtime:        p.Totals.Overtime.String(),

		ApprovedBy: p.ApprovedBy,
	}
	for name, d := range p.Departments {
		dto.Departments = append(dto.Departments, toSummaryDTO(name, d.Rollup))
	}
	for role, r := range p.Roles {
		dto.Roles = append(dto.Roles, toSummaryDTO(string(role), r.Rollup))
	}
	return dto
}

func toSummaryDTO(name string, r payperiod.Rollup) SummaryDTO {
	return SummaryDTO{
		Name:            name,
		Employees:       r.Employees,
		TotalGross:      r.TotalGross.String(),
		TotalDeductions: r.TotalDeductions.String(),
		TotalNet:        r.TotalNet.String(),
		AverageGross:    r.AverageGross.String(),
		EfficiencyScore: r.EfficiencyScore.String(),
		ComplianceScore: r.ComplianceScore.String(),
	}
}
