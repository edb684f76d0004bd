package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// PARSING
// =============================================================================

func TestParseConfig_SettingsAndAllowances(t *testing.T) {
	// GIVEN: A rule document overriding a setting and the manager allowances
	// WHEN: Parsing
	// THEN: The snapshot serves the override and the role-specific set

	doc := `{
		"settings": {
			"OVERTIME_RATE_MULTIPLIER": "2.0",
			"ATTENDANCE_BONUS_AMOUNT": "2000.00"
		},
		"allowances": {
			"roles": {
				"MANAGER": {
					"transport": "5000.00",
					"meal": "2500.00",
					"telephone": "1500.00",
					"fuel": "3000.00"
				}
			}
		}
	}`

	cfg, err := factory.ParseConfig(doc)
	require.NoError(t, err)

	assert.Equal(t, "2", cfg.Decimal(payroll.KeyOvertimeRateMultiplier).String())
	assert.Equal(t, "2000.00", cfg.Money(payroll.KeyAttendanceBonusAmount).String())

	set := cfg.Allowances().For(payroll.RoleManager)
	assert.Equal(t, "12000.00", set.Total().String())

	// Roles without an entry still resolve to the default set
	def := cfg.Allowances().For(payroll.RoleOtherStaff)
	assert.Equal(t, "4000.00", def.Total().String())
}

func TestParseConfig_UnknownSettingsCarriedThrough(t *testing.T) {
	// Unknown keys ride along untouched; the snapshot's typed getters
	// decide validity at read time.
	cfg, err := factory.ParseConfig(`{"settings": {"SOME_FUTURE_KNOB": "42"}}`)
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.Decimal("SOME_FUTURE_KNOB").String())
}

func TestParseConfig_MissingSections_UseDefaults(t *testing.T) {
	cfg, err := factory.ParseConfig(`{}`)
	require.NoError(t, err)
	assert.Equal(t, "1.5", cfg.Decimal(payroll.KeyOvertimeRateMultiplier).String())
	assert.Equal(t, "2000.00", cfg.Allowances().For(payroll.RoleOtherStaff).Transport.String())
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestParseConfig_MalformedJSON(t *testing.T) {
	_, err := factory.ParseConfig(`{not json`)
	assert.Error(t, err)
}

func TestParseConfig_InvalidAllowanceAmount(t *testing.T) {
	doc := `{"allowances": {"default": {"transport": "lots"}}}`
	_, err := factory.ParseConfig(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport")
}

func TestParseConfig_NegativeAllowanceRejected(t *testing.T) {
	doc := `{"allowances": {"roles": {"MANAGER": {"fuel": "-100.00"}}}}`
	_, err := factory.ParseConfig(doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrInvalidInput)
}

func TestParseConfig_PartialSetInheritsFromDefault(t *testing.T) {
	// A role entry overriding only transport keeps the default meal,
	// telephone, and fuel amounts.
	doc := `{"allowances": {"roles": {"EXECUTIVE": {"transport": "8000.00"}}}}`
	cfg, err := factory.ParseConfig(doc)
	require.NoError(t, err)

	set := cfg.Allowances().For(payroll.RoleExecutive)
	assert.Equal(t, "8000.00", set.Transport.String())
	assert.Equal(t, "1500.00", set.Meal.String())
	assert.Equal(t, "500.00", set.Telephone.String())
}

// =============================================================================
// ROUND-TRIPS AND PRESETS
// =============================================================================

func TestToJSON_ReproducesTable(t *testing.T) {
	table := payroll.RoleAllowanceTable{
		Default: payroll.DefaultAllowances,
		Roles: map[payroll.Role]payroll.AllowanceSet{
			payroll.RoleManager: {
				Transport: payroll.MoneyFromString("5000.00"),
				Meal:      payroll.MoneyFromString("2500.00"),
				Telephone: payroll.MoneyFromString("1500.00"),
				Fuel:      payroll.MoneyFromString("3000.00"),
			},
		},
	}

	cj := factory.ToJSON(table)
	require.NotNil(t, cj.Allowances)
	assert.Equal(t, "2000.00", cj.Allowances.Default.Transport)
	assert.Equal(t, "5000.00", cj.Allowances.Roles["MANAGER"].Transport)
}

func TestStandardConfigJSON_ParsesBack(t *testing.T) {
	cfg, err := factory.ParseConfig(factory.StandardConfigJSON())
	require.NoError(t, err)
	assert.Equal(t, "9.75", cfg.Decimal(payroll.KeyNetWorkingHours).String())
	assert.Equal(t, "1000.00", cfg.Money(payroll.KeyAttendanceBonusAmount).String())
}
