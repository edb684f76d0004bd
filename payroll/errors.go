/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Sibling packages (advance, payperiod) wrap these errors with
  additional context.

ERROR CATEGORIES:
  1. Data errors - Required attendance/contract data absent
  2. Transition errors - Illegal state machine moves
  3. Calculation errors - Results violating invariants

USAGE:
  if errors.Is(err, payroll.ErrDataMissing) {
      // skip this employee, report in the bulk failure list
  }

SEE ALSO:
  - payslip.go: Uses transition errors
  - engine.go: Produces calculation and data errors
  - advance/advance.go: Wraps limit errors with advance context
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDataMissing is returned when a required input (attendance summary,
	// basic salary, active contract) does not exist for an employee.
	ErrDataMissing = errors.New("required payroll data missing")

	// ErrInvalidTransition is returned on an illegal state machine move,
	// e.g. approving a payslip that was never calculated.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNegativeNet is returned when deductions exceed gross pay. The
	// calculation is aborted and reported; the net is never clamped.
	ErrNegativeNet = errors.New("net salary is negative")

	// ErrLimitExceeded is returned when an operation would breach a
	// configured cap (advance eligibility, yearly advance count).
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrNotFound is returned when a referenced payslip, period, or
	// advance does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed caller input
	// (non-positive amounts, zero installments, bad period).
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DataMissingError identifies exactly which input was absent so bulk
// failure reports are actionable.
type DataMissingError struct {
	EmployeeID EmployeeID
	What       string // "attendance_summary", "basic_salary", "contract"
	Year       int
	Month      int
}

func (e *DataMissingError) Error() string {
	return fmt.Sprintf("missing %s for employee %s (%04d-%02d)", e.What, e.EmployeeID, e.Year, e.Month)
}

func (e *DataMissingError) Unwrap() error { return ErrDataMissing }

// InvalidTransitionError records the attempted move.
type InvalidTransitionError struct {
	Entity string // "payslip", "pay_period", "advance"
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot transition from %s to %s", e.Entity, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// NegativeNetError reports a payslip whose deductions exceed gross.
type NegativeNetError struct {
	EmployeeID EmployeeID
	Gross      Money
	Deductions Money
}

func (e *NegativeNetError) Error() string {
	return fmt.Sprintf("negative net for employee %s: gross %s, deductions %s",
		e.EmployeeID, e.Gross, e.Deductions)
}

func (e *NegativeNetError) Unwrap() error { return ErrNegativeNet }

// LimitExceededError reports a breached cap with the figures involved.
type LimitExceededError struct {
	EmployeeID EmployeeID
	Kind       string // "advance_amount", "advance_count"
	Requested  Money
	Available  Money
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit exceeded for employee %s: requested %s, available %s",
		e.Kind, e.EmployeeID, e.Requested, e.Available)
}

func (e *LimitExceededError) Unwrap() error { return ErrLimitExceeded }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrLimitExceeded) ||
		errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDataMissing)
}
