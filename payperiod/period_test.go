package payperiod_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payperiod"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/providers"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var aug2026 = payroll.PeriodKey{Year: 2026, Month: 8}

func newTestAggregator() (*payperiod.Aggregator, *providers.MemoryPayslips) {
	slips := providers.NewMemoryPayslips()
	agg := payperiod.NewAggregator(providers.NewMemoryPeriods(), slips,
		payroll.DefaultSnapshot(),
		func() time.Time { return time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC) })
	return agg, slips
}

// slipFor builds a CALCULATED payslip with the given rollup-relevant
// figures already in place.
func slipFor(id, code, dept string, role payroll.Role, gross, deductions string) *payroll.Payslip {
	g := payroll.MoneyFromString(gross)
	d := payroll.MoneyFromString(deductions)
	return &payroll.Payslip{
		Reference:       payroll.PayslipReference(aug2026, code),
		EmployeeID:      payroll.EmployeeID(id),
		Period:          aug2026,
		Status:          payroll.PayslipCalculated,
		Role:            role,
		Department:      dept,
		Gross:           g,
		TotalDeductions: d,
		Net:             g.Sub(d),
	}
}

func seedSlips(t *testing.T, store *providers.MemoryPayslips, slips ...*payroll.Payslip) {
	t.Helper()
	for _, s := range slips {
		require.NoError(t, store.Put(context.Background(), s))
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestAggregator_Lifecycle_DraftToPaid(t *testing.T) {
	// GIVEN: A period with one approved payslip
	// WHEN: Walking DRAFT -> PROCESSING -> COMPLETED -> APPROVED -> PAID
	// THEN: Each transition succeeds in order

	agg, slips := newTestAggregator()
	ctx := context.Background()

	slip := slipFor("emp-1", "E001", "Production", payroll.RoleOtherStaff, "53000.00", "3800.00")
	seedSlips(t, slips, slip)

	p, err := agg.Open(ctx, aug2026)
	require.NoError(t, err)
	assert.Equal(t, payperiod.StatusDraft, p.Status)

	p, err = agg.StartProcessing(ctx, aug2026)
	require.NoError(t, err)
	assert.Equal(t, payperiod.StatusProcessing, p.Status)

	p, err = agg.Complete(ctx, aug2026)
	require.NoError(t, err)
	assert.Equal(t, payperiod.StatusCompleted, p.Status)
	assert.Equal(t, 1, p.Totals.Employees)

	// Period approval requires every slip approved first
	slip.Status = payroll.PayslipApproved
	seedSlips(t, slips, slip)

	p, err = agg.Approve(ctx, aug2026, "finance-director")
	require.NoError(t, err)
	assert.Equal(t, payperiod.StatusApproved, p.Status)
	assert.Equal(t, "finance-director", p.ApprovedBy)

	p, err = agg.MarkPaid(ctx, aug2026)
	require.NoError(t, err)
	assert.Equal(t, payperiod.StatusPaid, p.Status)
}

func TestAggregator_StartProcessing_EmptyPeriodRejected(t *testing.T) {
	agg, _ := newTestAggregator()
	ctx := context.Background()

	_, err := agg.Open(ctx, aug2026)
	require.NoError(t, err)

	_, err = agg.StartProcessing(ctx, aug2026)
	assert.ErrorIs(t, err, payroll.ErrInvalidInput, "a period with no payslips has nothing to process")
}

func TestAggregator_Complete_DraftSlipBlocks(t *testing.T) {
	// GIVEN: A processing period where one slip is still DRAFT
	// WHEN: Completing
	// THEN: The transition is refused until every slip is calculated

	agg, slips := newTestAggregator()
	ctx := context.Background()

	calculated := slipFor("emp-1", "E001", "Production", payroll.RoleOtherStaff, "53000.00", "3800.00")
	draft := payroll.NewPayslip("emp-2", "E002", aug2026)
	seedSlips(t, slips, calculated, draft)

	_, err := agg.Open(ctx, aug2026)
	require.NoError(t, err)
	_, err = agg.StartProcessing(ctx, aug2026)
	require.NoError(t, err)

	_, err = agg.Complete(ctx, aug2026)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestAggregator_Complete_CancelledSlipsIgnored(t *testing.T) {
	agg, slips := newTestAggregator()
	ctx := context.Background()

	keep := slipFor("emp-1", "E001", "Production", payroll.RoleOtherStaff, "53000.00", "3800.00")
	gone := slipFor("emp-2", "E002", "Production", payroll.RoleOtherStaff, "40000.00", "5000.00")
	gone.Status = payroll.PayslipCancelled
	seedSlips(t, slips, keep, gone)

	_, err := agg.Open(ctx, aug2026)
	require.NoError(t, err)
	_, err = agg.StartProcessing(ctx, aug2026)
	require.NoError(t, err)

	p, err := agg.Complete(ctx, aug2026)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Totals.Employees)
	assert.Equal(t, "53000.00", p.Totals.Gross.String())
}

func TestAggregator_Cancel_DraftOnly(t *testing.T) {
	agg, slips := newTestAggregator()
	ctx := context.Background()

	seedSlips(t, slips, slipFor("emp-1", "E001", "Production", payroll.RoleOtherStaff, "53000.00", "3800.00"))

	_, err := agg.Open(ctx, aug2026)
	require.NoError(t, err)
	_, err = agg.StartProcessing(ctx, aug2026)
	require.NoError(t, err)

	_, err = agg.Cancel(ctx, aug2026)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition,
		"a period with processed slips must run forward, not disappear")

	sep := payroll.PeriodKey{Year: 2026, Month: 9}
	_, err = agg.Open(ctx, sep)
	require.NoError(t, err)
	p, err := agg.Cancel(ctx, sep)
	require.NoError(t, err)
	assert.Equal(t, payperiod.StatusCancelled, p.Status)
}

// =============================================================================
// TOTALS AND SUMMARIES
// =============================================================================

func completeWith(t *testing.T, agg *payperiod.Aggregator, ctx context.Context) *payperiod.PayPeriod {
	t.Helper()
	_, err := agg.Open(ctx, aug2026)
	require.NoError(t, err)
	_, err = agg.StartProcessing(ctx, aug2026)
	require.NoError(t, err)
	p, err := agg.Complete(ctx, aug2026)
	require.NoError(t, err)
	return p
}

func TestAggregator_Complete_SumsTotals(t *testing.T) {
	agg, slips := newTestAggregator()
	ctx := context.Background()

	a := slipFor("emp-1", "E001", "Production", payroll.RoleOtherStaff, "53000.00", "3800.00")
	a.EmployeeEPF = payroll.MoneyFromString("3800.00")
	a.EmployerEPF = payroll.MoneyFromString("5700.00")
	a.ETF = payroll.MoneyFromString("1590.00")
	a.RegularOvertime = payroll.MoneyFromString("1573.43")

	b := slipFor("emp-2", "E002", "Accounts", payroll.RoleOfficeWorker, "40000.00", "5000.00")
	b.AdvanceDeduction = payroll.MoneyFromString("1000.00")

	seedSlips(t, slips, a, b)
	p := completeWith(t, agg, ctx)

	assert.Equal(t, 2, p.Totals.Employees)
	assert.Equal(t, "93000.00", p.Totals.Gross.String())
	assert.Equal(t, "8800.00", p.Totals.TotalDeductions.String())
	assert.Equal(t, "84200.00", p.Totals.Net.String())
	assert.Equal(t, "1000.00", p.Totals.AdvanceRecovery.String())
	assert.Equal(t, "1573.43", p.Totals.Overtime.String())
}

func TestAggregator_Complete_BuildsDepartmentAndRoleSummaries(t *testing.T) {
	// GIVEN: Two payslips in the same department, one clean and one
	//        penalized with a lunch violation
	// WHEN: Completing the period
	// THEN: The rollup's efficiency and compliance scores derive from the
	//       average attendance/punctuality and the penalized share

	agg, slips := newTestAggregator()
	ctx := context.Background()

	clean := slipFor("emp-1", "E001", "Production", payroll.RoleOtherStaff, "53000.00", "3800.00")
	clean.AttendancePercentage = decimal.NewFromInt(100)
	clean.PunctualityScore = decimal.NewFromInt(98)

	messy := slipFor("emp-2", "E002", "Production", payroll.RoleOfficeWorker, "40000.00", "5000.00")
	messy.AttendancePercentage = decimal.NewFromInt(90)
	messy.PunctualityScore = decimal.NewFromInt(80)
	messy.LatePenalty = payroll.MoneyFromString("750.00")
	messy.LunchViolations = 1

	seedSlips(t, slips, clean, messy)
	p := completeWith(t, agg, ctx)

	require.Contains(t, p.Departments, "Production")
	dept := p.Departments["Production"]
	assert.Equal(t, 2, dept.Employees)
	assert.Equal(t, "93000.00", dept.TotalGross.String())
	assert.Equal(t, "46500.00", dept.AverageGross.String())

	// avgAttendance 95, avgPunctuality 89, productivity 50 (1 of 2 penalized)
	// efficiency = 95*0.4 + 89*0.3 + 50*0.3 = 79.7
	assert.Equal(t, "79.7", dept.EfficiencyScore.String())
	// compliance = 100 - 0.6*50 - 0.4*50 = 50
	assert.Equal(t, "50", dept.ComplianceScore.String())

	// Role summaries split the same slips the other way
	require.Contains(t, p.Roles, payroll.RoleOtherStaff)
	require.Contains(t, p.Roles, payroll.RoleOfficeWorker)
	assert.Equal(t, 1, p.Roles[payroll.RoleOtherStaff].Employees)
	assert.Equal(t, 1, p.Roles[payroll.RoleOfficeWorker].Employees)
}

func TestAggregator_Complete_SecondCompletionRejected(t *testing.T) {
	// Totals freeze once COMPLETED; recomputing them requires the period
	// to walk its lifecycle, not a repeated Complete call.
	agg, slips := newTestAggregator()
	ctx := context.Background()

	seedSlips(t, slips, slipFor("emp-1", "E001", "Production", payroll.RoleOtherStaff, "53000.00", "3800.00"))
	p := completeWith(t, agg, ctx)
	assert.Equal(t, "53000.00", p.Totals.Gross.String())

	_, err := agg.Complete(ctx, aug2026)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestAggregator_Approve_UnapprovedSlipBlocks(t *testing.T) {
	// A period cannot be approved while any contributing slip is still
	// only CALCULATED.
	agg, slips := newTestAggregator()
	ctx := context.Background()

	seedSlips(t, slips, slipFor("emp-1", "E001", "Production", payroll.RoleOtherStaff, "53000.00", "3800.00"))
	completeWith(t, agg, ctx)

	_, err := agg.Approve(ctx, aug2026, "finance-director")
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}
