package eligibility

import (
	"encoding/json"
	"errors"
	"testing"

	"mortgage-workers/internal/policy"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePartialLimit(t *testing.T) {
	c := defaultConstants(t)

	tests := []struct {
		name           string
		scenario       Scenario
		maxLoan        string
		downPayment    string
		minimumCash    string
		alternateFunds string
		tenure         int
		source         TenureCapSource
		reduced        bool
		codes          []string
		refs           []string
	}{
		{
			name:           "subsidized first property",
			scenario:       single("1000000", policy.ResidentialSubsidized, 0, 35),
			maxLoan:        "750000",
			downPayment:    "250000",
			minimumCash:    "50000",
			alternateFunds: "200000",
			tenure:         25,
			source:         CappedByRegulation,
			codes:          []string{"first_property_75_ltv", "tenure_capped_by_property_type", "min_cash_5_percent"},
			refs:           []string{"MAS Notice 645", "MAS Notice 632", "mas_tenure_cap_hdb"},
		},
		{
			name:           "private first property with tenure tie",
			scenario:       single("1500000", policy.PrivateResidential, 0, 35),
			maxLoan:        "1125000",
			downPayment:    "375000",
			minimumCash:    "75000",
			alternateFunds: "300000",
			tenure:         30,
			source:         CappedByAge,
			codes:          []string{"first_property_75_ltv", "tenure_capped_by_age", "min_cash_5_percent"},
			refs:           []string{"MAS Notice 645", "mas_tenure_cap_private"},
		},
		{
			name:           "private second property",
			scenario:       single("1500000", policy.PrivateResidential, 1, 35),
			maxLoan:        "675000",
			downPayment:    "825000",
			minimumCash:    "375000",
			alternateFunds: "450000",
			tenure:         30,
			source:         CappedByAge,
			codes:          []string{"second_property_45_ltv", "tenure_capped_by_age", "min_cash_25_percent"},
			refs:           []string{"MAS Notice 645", "mas_tenure_cap_private"},
		},
		{
			name:           "private third property",
			scenario:       single("2000000", policy.PrivateResidential, 2, 30),
			maxLoan:        "700000",
			downPayment:    "1300000",
			minimumCash:    "500000",
			alternateFunds: "800000",
			tenure:         30,
			source:         CappedByRegulation,
			codes:          []string{"third_property_35_ltv", "tenure_capped_by_property_type", "min_cash_25_percent"},
			refs:           []string{"MAS Notice 645", "mas_tenure_cap_private"},
		},
		{
			name:           "more than two properties share the lowest tier",
			scenario:       single("2000000", policy.PrivateResidential, 4, 30),
			maxLoan:        "700000",
			downPayment:    "1300000",
			minimumCash:    "500000",
			alternateFunds: "800000",
			tenure:         30,
			source:         CappedByRegulation,
			codes:          []string{"third_property_35_ltv", "tenure_capped_by_property_type", "min_cash_25_percent"},
			refs:           []string{"MAS Notice 645", "mas_tenure_cap_private"},
		},
		{
			name:           "subsidized reduced by age",
			scenario:       single("800000", policy.ResidentialSubsidized, 0, 55),
			maxLoan:        "440000",
			downPayment:    "360000",
			minimumCash:    "80000",
			alternateFunds: "280000",
			tenure:         10,
			source:         CappedByAge,
			reduced:        true,
			codes:          []string{"first_property_75_ltv", "reduced_ltv_age_exceeds_65", "tenure_capped_by_age", "min_cash_10_percent"},
			refs:           []string{"MAS Notice 645", "MAS Notice 632", "mas_tenure_cap_hdb"},
		},
		{
			name:           "private reduced by age",
			scenario:       single("1000000", policy.PrivateResidential, 0, 50),
			maxLoan:        "550000",
			downPayment:    "450000",
			minimumCash:    "100000",
			alternateFunds: "350000",
			tenure:         15,
			source:         CappedByAge,
			reduced:        true,
			codes:          []string{"first_property_75_ltv", "reduced_ltv_age_exceeds_65", "tenure_capped_by_age", "min_cash_10_percent"},
			refs:           []string{"MAS Notice 645", "mas_tenure_cap_private"},
		},
		{
			name:           "past the age ceiling",
			scenario:       single("1000000", policy.PrivateResidential, 0, 70),
			maxLoan:        "0",
			downPayment:    "1000000",
			minimumCash:    "100000",
			alternateFunds: "900000",
			tenure:         0,
			source:         CappedByAge,
			reduced:        true,
			codes:          []string{"first_property_75_ltv", "reduced_ltv_age_exceeds_65", "tenure_exhausted", "min_cash_10_percent"},
			refs:           []string{"MAS Notice 645", "mas_tenure_cap_private"},
		},
		{
			name:           "at the age ceiling",
			scenario:       single("1000000", policy.PrivateResidential, 0, 65),
			maxLoan:        "0",
			downPayment:    "1000000",
			minimumCash:    "100000",
			alternateFunds: "900000",
			tenure:         0,
			source:         CappedByAge,
			reduced:        true,
			codes:          []string{"first_property_75_ltv", "reduced_ltv_age_exceeds_65", "tenure_exhausted", "min_cash_10_percent"},
			refs:           []string{"MAS Notice 645", "mas_tenure_cap_private"},
		},
		{
			name:           "rounding of an uneven price",
			scenario:       single("999999", policy.ResidentialSubsidized, 0, 35),
			maxLoan:        "749000",
			downPayment:    "251000",
			minimumCash:    "50000",
			alternateFunds: "201000",
			tenure:         25,
			source:         CappedByRegulation,
			codes:          []string{"first_property_75_ltv", "tenure_capped_by_property_type", "min_cash_5_percent"},
			refs:           []string{"MAS Notice 645", "MAS Notice 632", "mas_tenure_cap_hdb"},
		},
		{
			name:           "executive condominium reduced by age",
			scenario:       single("1200000", policy.ExecutiveCondominium, 0, 40),
			maxLoan:        "660000",
			downPayment:    "540000",
			minimumCash:    "120000",
			alternateFunds: "420000",
			tenure:         25,
			source:         CappedByAge,
			reduced:        true,
			codes:          []string{"first_property_75_ltv", "reduced_ltv_age_exceeds_65", "tenure_capped_by_age", "min_cash_10_percent"},
			refs:           []string{"MAS Notice 645", "MAS Notice 632", "mas_tenure_cap_hdb"},
		},
		{
			name:           "commercial is all cash",
			scenario:       single("2000000", policy.Commercial, 0, 30),
			maxLoan:        "1500000",
			downPayment:    "500000",
			minimumCash:    "500000",
			alternateFunds: "0",
			tenure:         30,
			source:         CappedByRegulation,
			codes:          []string{"first_property_75_ltv", "tenure_capped_by_property_type", "commercial_100_percent_cash"},
			refs:           []string{"MAS Notice 645", "mas_tenure_cap_commercial", "MAS Bank Policy"},
		},
		{
			name:           "commercial reduced by age",
			scenario:       single("2000000", policy.Commercial, 0, 40),
			maxLoan:        "1100000",
			downPayment:    "900000",
			minimumCash:    "900000",
			alternateFunds: "0",
			tenure:         25,
			source:         CappedByAge,
			reduced:        true,
			codes:          []string{"first_property_75_ltv", "reduced_ltv_age_exceeds_65", "tenure_capped_by_age", "commercial_100_percent_cash"},
			refs:           []string{"MAS Notice 645", "mas_tenure_cap_commercial", "MAS Bank Policy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputePartialLimit(c, tt.scenario)
			require.NoError(t, err)

			assert.Equal(t, tt.maxLoan, result.MaxLoan.String())
			assert.Equal(t, tt.downPayment, result.DownPayment.String())
			assert.Equal(t, tt.minimumCash, result.MinimumCash.String())
			assert.Equal(t, tt.alternateFunds, result.AlternateFunds.String())
			assert.Equal(t, tt.tenure, result.EffectiveTenure)
			assert.Equal(t, tt.source, result.TenureCapSource)
			assert.Equal(t, tt.reduced, result.ReducedTier)
			assert.Equal(t, tt.codes, result.ReasonCodes)
			assert.Equal(t, tt.refs, result.PolicyReferences)
			assert.True(t, result.MinimumCash.Add(result.AlternateFunds).Equal(result.DownPayment))
		})
	}
}

func TestComputePartialLimit_IgnoresIncomeAndJointApplicant(t *testing.T) {
	c := defaultConstants(t)

	s := withIncome(single("1500000", policy.PrivateResidential, 0, 35), "1000", policy.IncomeFixed)
	s.Applicants = append(s.Applicants, Applicant{Age: 60})

	result, err := ComputePartialLimit(c, s)
	require.NoError(t, err)
	assert.Equal(t, "1125000", result.MaxLoan.String())
	assert.Equal(t, 30, result.EffectiveTenure)
}

func TestComputePartialLimit_Validation(t *testing.T) {
	c := defaultConstants(t)

	tests := []struct {
		name   string
		modify func(s *Scenario)
		field  string
	}{
		{"zero price", func(s *Scenario) { s.PropertyPrice = decimal.Zero }, "propertyPrice"},
		{"negative price", func(s *Scenario) { s.PropertyPrice = amount("-1") }, "propertyPrice"},
		{"unknown property type", func(s *Scenario) { s.PropertyType = "houseboat" }, "propertyType"},
		{"negative existing properties", func(s *Scenario) { s.ExistingProperties = -1 }, "existingProperties"},
		{"no applicants", func(s *Scenario) { s.Applicants = nil }, "applicants"},
		{"too many applicants", func(s *Scenario) {
			s.Applicants = []Applicant{{Age: 30}, {Age: 31}, {Age: 32}}
		}, "applicants"},
		{"under age", func(s *Scenario) { s.Applicants[0].Age = 17 }, "applicants[0].age"},
		{"over age", func(s *Scenario) { s.Applicants[0].Age = 76 }, "applicants[0].age"},
		{"second applicant age", func(s *Scenario) {
			s.Applicants = append(s.Applicants, Applicant{Age: 12})
		}, "applicants[1].age"},
		{"negative income", func(s *Scenario) {
			s.Applicants[0].MonthlyIncome = income("-5")
			s.Applicants[0].IncomeType = policy.IncomeFixed
		}, "applicants[0].monthlyIncome"},
		{"income without type", func(s *Scenario) { s.Applicants[0].MonthlyIncome = income("5000") }, "applicants[0].incomeType"},
		{"unknown income type", func(s *Scenario) {
			s.Applicants[0].MonthlyIncome = income("5000")
			s.Applicants[0].IncomeType = "lottery"
		}, "applicants[0].incomeType"},
		{"negative card balance", func(s *Scenario) {
			s.Applicants[0].Commitments.CreditCardBalances = []decimal.Decimal{amount("-10")}
		}, "applicants[0].commitments.creditCardBalances[0]"},
		{"negative monthly debt", func(s *Scenario) {
			s.Applicants[0].Commitments.MonthlyDebt = amount("-10")
		}, "applicants[0].commitments.monthlyDebt"},
		{"quoted rate above 100", func(s *Scenario) { s.QuotedRate = income("120") }, "quotedRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := single("1000000", policy.PrivateResidential, 0, 35)
			tt.modify(&s)

			result, err := ComputePartialLimit(c, s)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestComputePartialLimit_NonIncreasingWithAge(t *testing.T) {
	c := defaultConstants(t)

	for _, pt := range policy.PropertyTypes {
		for existing := 0; existing <= 2; existing++ {
			previous := decimal.Zero
			for age := MaxApplicantAge; age >= MinApplicantAge; age-- {
				result, err := ComputePartialLimit(c, single("1234567", pt, existing, age))
				require.NoError(t, err)
				assert.True(t, result.MaxLoan.GreaterThanOrEqual(previous),
					"%s with %d properties: loan at age %d is below loan at age %d", pt, existing, age, age+1)
				previous = result.MaxLoan
			}
		}
	}
}

func TestComputePartialLimit_Idempotent(t *testing.T) {
	c := defaultConstants(t)
	s := single("1500000", policy.PrivateResidential, 1, 42)

	first, err := ComputePartialLimit(c, s)
	require.NoError(t, err)
	second, err := ComputePartialLimit(c, s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPartialLimit_JSON(t *testing.T) {
	c := defaultConstants(t)

	result, err := ComputePartialLimit(c, single("1000000", policy.ResidentialSubsidized, 0, 35))
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"calculationType":"partial_limit"`)
	assert.Contains(t, string(data), `"maxLoan":"750000"`)
	assert.Contains(t, string(data), `"tenureCapSource":"regulation"`)

	var decoded PartialLimit
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.MaxLoan.Equal(result.MaxLoan))
	assert.Equal(t, result.ReasonCodes, decoded.ReasonCodes)
}

// Older tooling capped non-subsidized residential loans at 35 years. The
// current policy caps them at 30, so a 30-year-old never reaches a 35-year
// tenure.
func TestPrivateTenureIgnoresLegacyThirtyFiveYearCap(t *testing.T) {
	c := defaultConstants(t)
	const legacyPrivateTenureCap = 35

	result, err := ComputePartialLimit(c, single("1000000", policy.PrivateResidential, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, 30, result.EffectiveTenure)
	assert.NotEqual(t, legacyPrivateTenureCap, result.EffectiveTenure)
	assert.Equal(t, CappedByRegulation, result.TenureCapSource)
}
