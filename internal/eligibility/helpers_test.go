package eligibility

import (
	"os"
	"strings"
	"testing"

	"mortgage-workers/internal/policy"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func defaultConstants(t *testing.T) *policy.Constants {
	t.Helper()
	c, err := policy.Default()
	require.NoError(t, err)
	return c
}

// constantsWith loads the default policy with one textual substitution.
func constantsWith(t *testing.T, old, replacement string) *policy.Constants {
	t.Helper()
	data, err := os.ReadFile("../policy/default_policy.json")
	require.NoError(t, err)
	require.Contains(t, string(data), old)

	c, err := policy.Load([]byte(strings.Replace(string(data), old, replacement, 1)))
	require.NoError(t, err)
	return c
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func income(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func single(price string, propertyType policy.PropertyType, existing, age int) Scenario {
	return Scenario{
		PropertyPrice:      amount(price),
		PropertyType:       propertyType,
		ExistingProperties: existing,
		Applicants:         []Applicant{{Age: age}},
	}
}

func withIncome(s Scenario, monthly string, incomeType policy.IncomeType) Scenario {
	s.Applicants[0].MonthlyIncome = income(monthly)
	s.Applicants[0].IncomeType = incomeType
	return s
}
