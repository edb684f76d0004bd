package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/advance"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/payperiod"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/providers"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type apiFixture struct {
	server       *httptest.Server
	attendance   *providers.MemoryAttendance
	compensation *providers.MemoryCompensation
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{
		attendance:   providers.NewMemoryAttendance(),
		compensation: providers.NewMemoryCompensation(),
	}
	cfg := payroll.DefaultSnapshot()
	slips := providers.NewMemoryPayslips()
	clock := func() time.Time { return time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC) }

	advances := advance.NewLedger(cfg, f.compensation, clock)
	engine := payroll.NewEngine(payroll.EngineOptions{
		Attendance:   f.attendance,
		Compensation: f.compensation,
		Advances:     advances,
		Store:        slips,
		Config:       cfg,
		Now:          clock,
	})
	aggregator := payperiod.NewAggregator(providers.NewMemoryPeriods(), slips, cfg, clock)

	handler := api.NewHandler(engine, advances, aggregator, slips)
	f.server = httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(f.server.Close)
	return f
}

func (f *apiFixture) seedEmployee(id, code string) {
	f.compensation.SetContract(payroll.Contract{
		EmployeeID:   payroll.EmployeeID(id),
		EmployeeCode: code,
		Role:         payroll.RoleOtherStaff,
		Department:   "Production",
		BasicSalary:  payroll.MoneyFromString("45000.00"),
	})
	f.attendance.SetSummary(payroll.MonthlySummary{
		EmployeeID:           payroll.EmployeeID(id),
		Period:               payroll.PeriodKey{Year: 2026, Month: 8},
		WorkingDays:          22,
		AttendedDays:         22,
		TotalWorkHours:       decimal.NewFromFloat(214.5),
		AttendancePercentage: decimal.NewFromInt(100),
		PunctualityScore:     decimal.NewFromInt(99),
	})
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// =============================================================================
// PAYSLIP ENDPOINTS
// =============================================================================

func TestAPI_CalculatePayslip(t *testing.T) {
	// GIVEN: A seeded employee with full attendance
	// WHEN: POSTing a calculation for 2026-08
	// THEN: The payslip comes back CALCULATED with the expected figures

	f := newAPIFixture(t)
	f.seedEmployee("emp-1", "E001")

	resp := f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/calculate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Gross     string `json:"gross"`
		Net       string `json:"net"`
	}
	decodeInto(t, resp, &dto)
	assert.Equal(t, "PAY202608E001", dto.Reference)
	assert.Equal(t, "CALCULATED", dto.Status)
	assert.Equal(t, "53000.00", dto.Gross)
	assert.Equal(t, "49200.00", dto.Net)
}

func TestAPI_GetPayslip_NotFound(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodGet, "/api/periods/2026/8/payslips/nobody", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CalculatePayslip_MissingData(t *testing.T) {
	// Missing attendance maps to 404 (the input data does not exist),
	// not a 500.
	f := newAPIFixture(t)
	f.compensation.SetContract(payroll.Contract{
		EmployeeID: "emp-1", EmployeeCode: "E001",
		Role: payroll.RoleOtherStaff, BasicSalary: payroll.MoneyFromString("45000.00"),
	})

	resp := f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/calculate", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ApprovePayslip_RequiresApprover(t *testing.T) {
	f := newAPIFixture(t)
	f.seedEmployee("emp-1", "E001")
	f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/calculate", nil)

	resp := f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/approve",
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/approve",
		map[string]string{"approver": "hr-manager"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto struct {
		Status     string `json:"status"`
		ApprovedBy string `json:"approved_by"`
	}
	decodeInto(t, resp, &dto)
	assert.Equal(t, "APPROVED", dto.Status)
	assert.Equal(t, "hr-manager", dto.ApprovedBy)
}

func TestAPI_ApprovePayslip_FromDraft_BadRequest(t *testing.T) {
	// Approving a slip that was never calculated is a client error, not
	// a server failure.
	f := newAPIFixture(t)
	f.seedEmployee("emp-1", "E001")
	f.do(t, http.MethodPost, "/api/periods/2026/8/open", nil)

	// Open a draft slip without calculating
	resp := f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/invalidate", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "nothing exists yet")

	f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/calculate", nil)
	resp = f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/invalidate", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/approve",
		map[string]string{"approver": "hr-manager"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_BulkCalculate(t *testing.T) {
	f := newAPIFixture(t)
	f.seedEmployee("emp-1", "E001")
	f.seedEmployee("emp-2", "E002")

	resp := f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/calculate",
		map[string]any{"employee_ids": []string{"emp-1", "emp-2", "emp-missing"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Calculated []json.RawMessage `json:"calculated"`
		Failures   []struct {
			EmployeeID string `json:"employee_id"`
		} `json:"failures"`
	}
	decodeInto(t, resp, &out)
	assert.Len(t, out.Calculated, 2)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, "emp-missing", out.Failures[0].EmployeeID)
}

func TestAPI_InvalidPeriod_BadRequest(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodGet, "/api/periods/2026/13/payslips", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// PERIOD ENDPOINTS
// =============================================================================

func TestAPI_PeriodLifecycle(t *testing.T) {
	// GIVEN: One calculated and approved payslip in 2026-08
	// WHEN: Driving the period through open/process/complete/approve/pay
	// THEN: Each step returns the advancing status and the final totals

	f := newAPIFixture(t)
	f.seedEmployee("emp-1", "E001")

	f.do(t, http.MethodPost, "/api/periods/2026/8/open", nil)
	f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/calculate", nil)

	resp := f.do(t, http.MethodPost, "/api/periods/2026/8/process", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/periods/2026/8/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var period struct {
		Status    string `json:"status"`
		Employees int    `json:"employees"`
		Gross     string `json:"gross"`
	}
	decodeInto(t, resp, &period)
	assert.Equal(t, "COMPLETED", period.Status)
	assert.Equal(t, 1, period.Employees)
	assert.Equal(t, "53000.00", period.Gross)

	// Period approval requires slip approval first
	resp = f.do(t, http.MethodPost, "/api/periods/2026/8/approve",
		map[string]string{"approver": "finance"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/approve",
		map[string]string{"approver": "hr-manager"})

	resp = f.do(t, http.MethodPost, "/api/periods/2026/8/approve",
		map[string]string{"approver": "finance"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/periods/2026/8/pay", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &period)
	assert.Equal(t, "PAID", period.Status)
}

func TestAPI_GetPeriod_SortedSummaries(t *testing.T) {
	f := newAPIFixture(t)
	f.seedEmployee("emp-1", "E001")

	f.do(t, http.MethodPost, "/api/periods/2026/8/open", nil)
	f.do(t, http.MethodPost, "/api/periods/2026/8/payslips/emp-1/calculate", nil)
	f.do(t, http.MethodPost, "/api/periods/2026/8/process", nil)
	f.do(t, http.MethodPost, "/api/periods/2026/8/complete", nil)

	resp := f.do(t, http.MethodGet, "/api/periods/2026/8", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var period struct {
		Departments []struct {
			Name       string `json:"name"`
			Employees  int    `json:"employees"`
			TotalGross string `json:"total_gross"`
		} `json:"departments"`
	}
	decodeInto(t, resp, &period)
	require.Len(t, period.Departments, 1)
	assert.Equal(t, "Production", period.Departments[0].Name)
	assert.Equal(t, "53000.00", period.Departments[0].TotalGross)
}

// =============================================================================
// ADVANCE ENDPOINTS
// =============================================================================

func TestAPI_AdvanceLifecycle(t *testing.T) {
	// GIVEN: An employee with headroom
	// WHEN: Requesting, approving, and activating an advance over HTTP
	// THEN: Statuses advance and the availability endpoint reflects the
	//       outstanding balance

	f := newAPIFixture(t)
	f.seedEmployee("emp-1", "E001")

	resp := f.do(t, http.MethodPost, "/api/advances", map[string]any{
		"employee_id":  "emp-1",
		"type":         "SALARY",
		"amount":       "6000.00",
		"installments": 6,
		"reason":       "school fees",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var adv struct {
		Reference          string `json:"reference"`
		Status             string `json:"status"`
		MonthlyInstallment string `json:"monthly_installment"`
	}
	decodeInto(t, resp, &adv)
	assert.Equal(t, "PENDING", adv.Status)
	assert.Equal(t, "1000.00", adv.MonthlyInstallment)

	resp = f.do(t, http.MethodPost, "/api/advances/"+adv.Reference+"/approve",
		map[string]string{"approver": "hr-manager"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/advances/"+adv.Reference+"/activate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var availability struct {
		Available string `json:"available"`
		UsedCount int    `json:"used_count_this_year"`
	}
	resp = f.do(t, http.MethodGet, "/api/employees/emp-1/advances/availability", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &availability)
	assert.Equal(t, "16500.00", availability.Available)
	assert.Equal(t, 1, availability.UsedCount)
}

func TestAPI_RequestAdvance_OverLimit_BadRequest(t *testing.T) {
	f := newAPIFixture(t)
	f.seedEmployee("emp-1", "E001")

	resp := f.do(t, http.MethodPost, "/api/advances", map[string]any{
		"employee_id":  "emp-1",
		"type":         "SALARY",
		"amount":       "30000.00",
		"installments": 6,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	decodeInto(t, resp, &errResp)
	assert.Contains(t, errResp.Details, "limit exceeded")
}

func TestAPI_GetAdvance_NotFound(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodGet, "/api/advances/ADVMISSING", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ListEmployeeAdvances(t *testing.T) {
	f := newAPIFixture(t)
	f.seedEmployee("emp-1", "E001")

	for i := 0; i < 2; i++ {
		resp := f.do(t, http.MethodPost, "/api/advances", map[string]any{
			"employee_id":  "emp-1",
			"type":         "SALARY",
			"amount":       "2000.00",
			"installments": 2,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := f.do(t, http.MethodGet, "/api/employees/emp-1/advances", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var advs []struct {
		Reference string `json:"reference"`
	}
	decodeInto(t, resp, &advs)
	assert.Len(t, advs, 2)
}
