/*
Package factory provides JSON to Go payroll configuration conversion.

PURPOSE:
  Converts JSON payroll policy documents into payroll.ConfigSnapshot and
  RoleAllowanceTable values. This enables rule configuration without code
  changes - HR can adjust rates, thresholds, and allowances in JSON, and
  the factory produces the frozen snapshot the engine runs on.

WHY JSON?
  - Non-developers can modify payroll rules
  - Easy integration with admin UI
  - Version control for rule definitions
  - Database storage of rule documents

JSON SCHEMA:
  {
    "settings": {
      "NET_WORKING_HOURS": "9.75",
      "OVERTIME_RATE_MULTIPLIER": "1.5",
      "EPF_EMPLOYEE_RATE": "8.0"
    },
    "allowances": {
      "default": {"transport": "2000.00", "meal": "1500.00",
                  "telephone": "500.00", "fuel": "0.00"},
      "roles": {
        "MANAGER": {"transport": "5000.00", "meal": "2500.00",
                    "telephone": "1500.00", "fuel": "3000.00"}
      }
    }
  }

KEY FEATURES:
  - Unknown settings keys are carried through untouched; the snapshot's
    typed getters decide validity at read time
  - Allowance amounts are validated as decimals at parse time
  - Missing sections fall back to the documented defaults

USAGE:
  cfg, err := factory.ParseConfig(jsonDoc)
  engine := payroll.NewEngine(payroll.EngineOptions{Config: cfg, ...})

SEE ALSO:
  - payroll/config.go: ConfigSnapshot and RoleAllowanceTable
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the JSON representation of a payroll rule document.
type ConfigJSON struct {
	Settings   map[string]string `json:"settings,omitempty"`
	Allowances *AllowancesJSON   `json:"allowances,omitempty"`
}

// AllowancesJSON is the role allowance table section.
type AllowancesJSON struct {
	Default *AllowanceSetJSON           `json:"default,omitempty"`
	Roles   map[string]AllowanceSetJSON `json:"roles,omitempty"`
}

// AllowanceSetJSON is one role's allowance amounts as decimal strings.
type AllowanceSetJSON struct {
	Transport string `json:"transport,omitempty"`
	Meal      string `json:"meal,omitempty"`
	Telephone string `json:"telephone,omitempty"`
	Fuel      string `json:"fuel,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseConfig parses a JSON rule document into a frozen ConfigSnapshot.
func ParseConfig(jsonStr string) (*payroll.ConfigSnapshot, error) {
	var cj ConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return FromJSON(cj)
}

// FromJSON converts ConfigJSON into a ConfigSnapshot.
func FromJSON(cj ConfigJSON) (*payroll.ConfigSnapshot, error) {
	table := payroll.RoleAllowanceTable{
		Default: payroll.DefaultAllowances,
		Roles:   map[payroll.Role]payroll.AllowanceSet{},
	}

	if cj.Allowances != nil {
		if cj.Allowances.Default != nil {
			set, err := parseAllowanceSet(*cj.Allowances.Default, payroll.DefaultAllowances)
			if err != nil {
				return nil, fmt.Errorf("default allowances: %w", err)
			}
			table.Default = set
		}
		for role, sj := range cj.Allowances.Roles {
			set, err := parseAllowanceSet(sj, table.Default)
			if err != nil {
				return nil, fmt.Errorf("allowances for role %s: %w", role, err)
			}
			table.Roles[payroll.Role(role)] = set
		}
	}

	return payroll.NewSnapshot(cj.Settings, table), nil
}

// parseAllowanceSet validates the amounts, inheriting from base for
// omitted fields.
func parseAllowanceSet(sj AllowanceSetJSON, base payroll.AllowanceSet) (payroll.AllowanceSet, error) {
	set := base
	fields := []struct {
		raw  string
		dest *payroll.Money
		name string
	}{
		{sj.Transport, &set.Transport, "transport"},
		{sj.Meal, &set.Meal, "meal"},
		{sj.Telephone, &set.Telephone, "telephone"},
		{sj.Fuel, &set.Fuel, "fuel"},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		m, err := payroll.ParseMoney(f.raw)
		if err != nil {
			return set, fmt.Errorf("invalid %s amount %q: %w", f.name, f.raw, err)
		}
		if m.IsNegative() {
			return set, fmt.Errorf("negative %s amount %q: %w", f.name, f.raw, payroll.ErrInvalidInput)
		}
		*f.dest = m
	}
	return set, nil
}

// ToJSON converts a snapshot's allowance table back to its JSON form,
// for admin round-trips. Settings are not reproduced: the snapshot only
// exposes typed reads.
func ToJSON(table payroll.RoleAllowanceTable) ConfigJSON {
	cj := ConfigJSON{
		Allowances: &AllowancesJSON{
			Default: allowanceSetJSON(table.Default),
			Roles:   map[string]AllowanceSetJSON{},
		},
	}
	for role, set := range table.Roles {
		cj.Allowances.Roles[string(role)] = *allowanceSetJSON(set)
	}
	return cj
}

func allowanceSetJSON(set payroll.AllowanceSet) *AllowanceSetJSON {
	return &AllowanceSetJSON{
		Transport: set.Transport.String(),
		Meal:      set.Meal.String(),
		Telephone: set.Telephone.String(),
		Fuel:      set.Fuel.String(),
	}
}

// =============================================================================
// PRESET DOCUMENTS
// =============================================================================

// StandardConfigJSON returns a complete rule document carrying the
// standard defaults, as a starting point for admin edits.
func StandardConfigJSON() string {
	doc := ConfigJSON{
		Settings: map[string]string{
			payroll.KeyNetWorkingHours:           "9.75",
			payroll.KeyOvertimeRateMultiplier:    "1.5",
			payroll.KeyWeekendOvertimeMultiplier: "2.0",
			payroll.KeyAllowWeekendOvertime:      "true",
			payroll.KeyAttendanceBonusThreshold:  "95.0",
			payroll.KeyAttendanceBonusAmount:     "1000.00",
			payroll.KeyPunctualityBonusThreshold: "98.0",
			payroll.KeyPunctualityBonusAmount:    "500.00",
		},
		Allowances: &AllowancesJSON{
			Default: allowanceSetJSON(payroll.DefaultAllowances),
		},
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return string(out)
}
