/*
audit.go - Tagged detail records attached to payslips

PURPOSE:
  Every penalty, overtime line, and advance installment applied during a
  calculation is recorded as a typed detail record on the payslip, in the
  order it was applied. Reviewers can reconstruct any line item from its
  details without re-running the calculation.

KEY CONCEPTS IN THIS FILE:
  - DetailKind: Closed set of record variants
  - Detail: One audit record with the fields its kind uses

SEE ALSO:
  - deduction.go: Emits late and lunch details
  - overtime.go: Emits overtime details
  - engine.go: Emits advance details
*/
package payroll

// DetailKind tags the variant of an audit Detail.
type DetailKind string

const (
	DetailLateHalfDay   DetailKind = "late_half_day"
	DetailLateFullDay   DetailKind = "late_full_day"
	DetailLateFlat      DetailKind = "late_flat"
	DetailLatePerMinute DetailKind = "late_per_minute"
	DetailLunchPenalty  DetailKind = "lunch_penalty"
	DetailOvertime      DetailKind = "overtime"
	DetailAdvance       DetailKind = "advance_installment"
)

// Detail is one audit record. Only the fields relevant to its Kind are
// populated; the rest stay zero.
type Detail struct {
	Kind   DetailKind
	Date   string // YYYY-MM-DD when the record is day-scoped
	Amount Money

	// Late penalty fields
	LateMinutes int

	// Lunch penalty fields
	Violations int
	Limit      int

	// Overtime fields
	Hours      string // decimal text
	Multiplier string
	Weekend    bool

	// Advance fields
	AdvanceRef string
}
