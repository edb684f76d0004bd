/*
Package providers contains in-memory implementations of the engine's
input ports and stores.

PURPOSE:
  These back the test suites and the demo server. Production deployments
  implement the same interfaces against their HR systems; the sqlite
  store covers payslip and period persistence.

CONCURRENCY:
  Every type here is safe for concurrent use. Payslips are copied on the
  way in and out so callers never share mutable state with the store.

SEE ALSO:
  - payroll/types.go: The interfaces implemented here
  - store/sqlite: The durable counterpart
*/
package providers

import (
	"context"
	"sync"

	"github.com/warp/payroll-engine/payperiod"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// ATTENDANCE
// =============================================================================

type attendanceKey struct {
	ID     payroll.EmployeeID
	Period payroll.PeriodKey
}

// MemoryAttendance holds monthly summaries and day records keyed by
// employee-period.
type MemoryAttendance struct {
	mu        sync.RWMutex
	summaries map[attendanceKey]payroll.MonthlySummary
	days      map[attendanceKey][]payroll.DayRecord
}

func NewMemoryAttendance() *MemoryAttendance {
	return &MemoryAttendance{
		summaries: map[attendanceKey]payroll.MonthlySummary{},
		days:      map[attendanceKey][]payroll.DayRecord{},
	}
}

func (m *MemoryAttendance) SetSummary(s payroll.MonthlySummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[attendanceKey{s.EmployeeID, s.Period}] = s
}

func (m *MemoryAttendance) SetDays(id payroll.EmployeeID, period payroll.PeriodKey, days []payroll.DayRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[attendanceKey{id, period}] = append([]payroll.DayRecord(nil), days...)
}

func (m *MemoryAttendance) MonthlySummary(ctx context.Context, id payroll.EmployeeID, period payroll.PeriodKey) (payroll.MonthlySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.summaries[attendanceKey{id, period}]
	if !ok {
		return payroll.MonthlySummary{}, &payroll.DataMissingError{
			EmployeeID: id, What: "attendance_summary", Year: period.Year, Month: period.Month,
		}
	}
	return s, nil
}

func (m *MemoryAttendance) DailyRecords(ctx context.Context, id payroll.EmployeeID, period payroll.PeriodKey) ([]payroll.DayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]payroll.DayRecord(nil), m.days[attendanceKey{id, period}]...), nil
}

// =============================================================================
// COMPENSATION
// =============================================================================

// MemoryCompensation holds active contracts by employee.
type MemoryCompensation struct {
	mu        sync.RWMutex
	contracts map[payroll.EmployeeID]payroll.Contract
}

func NewMemoryCompensation() *MemoryCompensation {
	return &MemoryCompensation{contracts: map[payroll.EmployeeID]payroll.Contract{}}
}

func (m *MemoryCompensation) SetContract(c payroll.Contract) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[c.EmployeeID] = c
}

func (m *MemoryCompensation) ActiveContract(ctx context.Context, id payroll.EmployeeID) (*payroll.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contracts[id]
	if !ok {
		return nil, &payroll.DataMissingError{EmployeeID: id, What: "contract"}
	}
	copied := c
	return &copied, nil
}

// =============================================================================
// CONFIG SOURCE
// =============================================================================

// MemoryConfig is a static ConfigSource.
type MemoryConfig struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryConfig(values map[string]string) *MemoryConfig {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MemoryConfig{values: copied}
}

func (m *MemoryConfig) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryConfig) Values(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	copied := make(map[string]string, len(m.values))
	for k, v := range m.values {
		copied[k] = v
	}
	return copied, nil
}

// =============================================================================
// EXTRA EARNINGS
// =============================================================================

// MemoryExtras holds pass-through earning lines by employee-period.
type MemoryExtras struct {
	mu     sync.RWMutex
	extras map[attendanceKey]payroll.ExtraEarnings
}

func NewMemoryExtras() *MemoryExtras {
	return &MemoryExtras{extras: map[attendanceKey]payroll.ExtraEarnings{}}
}

func (m *MemoryExtras) Set(id payroll.EmployeeID, period payroll.PeriodKey, e payroll.ExtraEarnings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extras[attendanceKey{id, period}] = e
}

func (m *MemoryExtras) ExtraEarnings(ctx context.Context, id payroll.EmployeeID, period payroll.PeriodKey) (payroll.ExtraEarnings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.extras[attendanceKey{id, period}], nil
}

// =============================================================================
// PAYSLIP STORE
// =============================================================================

// MemoryPayslips is the in-memory payroll.PayslipStore.
type MemoryPayslips struct {
	mu    sync.RWMutex
	slips map[attendanceKey]*payroll.Payslip
	order []attendanceKey
}

func NewMemoryPayslips() *MemoryPayslips {
	return &MemoryPayslips{slips: map[attendanceKey]*payroll.Payslip{}}
}

func copySlip(s *payroll.Payslip) *payroll.Payslip {
	copied := *s
	copied.Details = append([]payroll.Detail(nil), s.Details...)
	return &copied
}

func (m *MemoryPayslips) Get(ctx context.Context, id payroll.EmployeeID, period payroll.PeriodKey) (*payroll.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.slips[attendanceKey{id, period}]
	if !ok {
		return nil, payroll.ErrNotFound
	}
	return copySlip(s), nil
}

func (m *MemoryPayslips) Put(ctx context.Context, slip *payroll.Payslip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := attendanceKey{slip.EmployeeID, slip.Period}
	if _, ok := m.slips[key]; !ok {
		m.order = append(m.order, key)
	}
	m.slips[key] = copySlip(slip)
	return nil
}

func (m *MemoryPayslips) ListByPeriod(ctx context.Context, period payroll.PeriodKey) ([]*payroll.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*payroll.Payslip
	for _, key := range m.order {
		if key.Period == period {
			out = append(out, copySlip(m.slips[key]))
		}
	}
	return out, nil
}

// =============================================================================
// PERIOD STORE
// =============================================================================

// MemoryPeriods is the in-memory payperiod.PeriodStore.
type MemoryPeriods struct {
	mu      sync.RWMutex
	periods map[payroll.PeriodKey]*payperiod.PayPeriod
	order   []payroll.PeriodKey
}

func NewMemoryPeriods() *MemoryPeriods {
	return &MemoryPeriods{periods: map[payroll.PeriodKey]*payperiod.PayPeriod{}}
}

func (m *MemoryPeriods) Get(ctx context.Context, period payroll.PeriodKey) (*payperiod.PayPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.periods[period]
	if !ok {
		return nil, payroll.ErrNotFound
	}
	return p, nil
}

func (m *MemoryPeriods) Put(ctx context.Context, p *payperiod.PayPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.periods[p.Period]; !ok {
		m.order = append(m.order, p.Period)
	}
	m.periods[p.Period] = p
	return nil
}

func (m *MemoryPeriods) List(ctx context.Context) ([]*payperiod.PayPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*payperiod.PayPeriod, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.periods[key])
	}
	return out, nil
}

// Interface conformance
var (
	_ payroll.AttendanceProvider    = (*MemoryAttendance)(nil)
	_ payroll.CompensationProvider  = (*MemoryCompensation)(nil)
	_ payroll.ConfigSource          = (*MemoryConfig)(nil)
	_ payroll.ExtraEarningsProvider = (*MemoryExtras)(nil)
	_ payroll.PayslipStore          = (*MemoryPayslips)(nil)
	_ payperiod.PeriodStore         = (*MemoryPeriods)(nil)
)
