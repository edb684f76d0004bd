package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

var aug2026 = payroll.PeriodKey{Year: 2026, Month: 8}

func calculatedSlip(t *testing.T) *payroll.Payslip {
	t.Helper()
	slip := payroll.NewPayslip("emp-1", "E001", aug2026)
	require.NoError(t, slip.MarkCalculated(time.Now()))
	return slip
}

// =============================================================================
// REFERENCES
// =============================================================================

func TestPayslipReference_Format(t *testing.T) {
	assert.Equal(t, "PAY202608E001", payroll.PayslipReference(aug2026, "E001"))
	assert.Equal(t, "PAY202601E042",
		payroll.PayslipReference(payroll.PeriodKey{Year: 2026, Month: 1}, "E042"))
}

// =============================================================================
// LIFECYCLE - HAPPY PATH
// =============================================================================

func TestPayslip_Lifecycle_DraftToPaid(t *testing.T) {
	// GIVEN: A fresh DRAFT payslip
	// WHEN: Walking the full lifecycle
	// THEN: DRAFT -> CALCULATED -> APPROVED -> PAID succeeds in order

	slip := payroll.NewPayslip("emp-1", "E001", aug2026)
	assert.Equal(t, payroll.PayslipDraft, slip.Status)

	now := time.Now()
	require.NoError(t, slip.MarkCalculated(now))
	assert.Equal(t, payroll.PayslipCalculated, slip.Status)

	require.NoError(t, slip.Approve("hr-manager", now))
	assert.Equal(t, payroll.PayslipApproved, slip.Status)
	assert.Equal(t, "hr-manager", slip.ApprovedBy)

	require.NoError(t, slip.MarkPaid(now))
	assert.Equal(t, payroll.PayslipPaid, slip.Status)
}

// =============================================================================
// LIFECYCLE - REJECTED TRANSITIONS
// =============================================================================

func TestPayslip_ApproveFromDraft_Rejected(t *testing.T) {
	slip := payroll.NewPayslip("emp-1", "E001", aug2026)
	err := slip.Approve("hr-manager", time.Now())

	require.Error(t, err)
	var transErr *payroll.InvalidTransitionError
	assert.ErrorAs(t, err, &transErr)
	assert.Equal(t, "DRAFT", transErr.From)
	assert.Equal(t, payroll.PayslipDraft, slip.Status, "failed transition must not change state")
}

func TestPayslip_PayFromCalculated_Rejected(t *testing.T) {
	slip := calculatedSlip(t)
	assert.Error(t, slip.MarkPaid(time.Now()), "payment requires prior approval")
}

func TestPayslip_CancelPaid_Rejected(t *testing.T) {
	// GIVEN: A PAID payslip (terminal)
	// WHEN: Attempting to cancel
	// THEN: The transition is rejected; money already moved

	slip := calculatedSlip(t)
	now := time.Now()
	require.NoError(t, slip.Approve("hr", now))
	require.NoError(t, slip.MarkPaid(now))

	assert.Error(t, slip.Cancel())
	assert.Equal(t, payroll.PayslipPaid, slip.Status)
}

func TestPayslip_CancelFromEarlierStates_Allowed(t *testing.T) {
	draft := payroll.NewPayslip("emp-1", "E001", aug2026)
	require.NoError(t, draft.Cancel())
	assert.Equal(t, payroll.PayslipCancelled, draft.Status)

	calc := calculatedSlip(t)
	require.NoError(t, calc.Cancel())
	assert.Equal(t, payroll.PayslipCancelled, calc.Status)
}

// =============================================================================
// INVALIDATION
// =============================================================================

func TestPayslip_Invalidate_CalculatedRevertsToDraft(t *testing.T) {
	// GIVEN: A CALCULATED slip carrying computed figures
	// WHEN: Invalidating
	// THEN: Status reverts to DRAFT and the computed block is cleared,
	//       keeping only the identity fields

	slip := calculatedSlip(t)
	slip.Gross = payroll.MoneyFromString("53000.00")
	slip.Net = payroll.MoneyFromString("49200.00")

	require.NoError(t, slip.Invalidate())
	assert.Equal(t, payroll.PayslipDraft, slip.Status)
	assert.True(t, slip.Gross.IsZero())
	assert.True(t, slip.Net.IsZero())
	assert.Equal(t, "PAY202608E001", slip.Reference, "identity survives invalidation")
	assert.Equal(t, payroll.EmployeeID("emp-1"), slip.EmployeeID)
}

func TestPayslip_Invalidate_DraftIsNoOp(t *testing.T) {
	slip := payroll.NewPayslip("emp-1", "E001", aug2026)
	assert.NoError(t, slip.Invalidate())
	assert.Equal(t, payroll.PayslipDraft, slip.Status)
}

func TestPayslip_Invalidate_ApprovedRejected(t *testing.T) {
	slip := calculatedSlip(t)
	require.NoError(t, slip.Approve("hr", time.Now()))

	err := slip.Invalidate()
	require.Error(t, err)
	assert.Equal(t, payroll.PayslipApproved, slip.Status)
}
