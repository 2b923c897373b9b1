package eligibility

import (
	"testing"

	"mortgage-workers/internal/policy"

	"github.com/stretchr/testify/assert"
)

func TestTenureCapRule(t *testing.T) {
	c := defaultConstants(t)

	tests := []struct {
		name         string
		propertyType policy.PropertyType
		tenure       tenureAssessment
		code         string
		ref          string
	}{
		{
			name:         "capped by regulation",
			propertyType: policy.ResidentialSubsidized,
			tenure:       tenureAssessment{effective: 25, source: CappedByRegulation},
			code:         "tenure_capped_by_property_type",
			ref:          "mas_tenure_cap_hdb",
		},
		{
			name:         "capped by age",
			propertyType: policy.PrivateResidential,
			tenure:       tenureAssessment{effective: 20, source: CappedByAge},
			code:         "tenure_capped_by_age",
			ref:          "mas_tenure_cap_private",
		},
		{
			name:         "executive condominium shares the subsidized citation",
			propertyType: policy.ExecutiveCondominium,
			tenure:       tenureAssessment{effective: 30, source: CappedByRegulation},
			code:         "tenure_capped_by_property_type",
			ref:          "mas_tenure_cap_hdb",
		},
		{
			name:         "exhausted tenure keeps the citation only",
			propertyType: policy.Commercial,
			tenure:       tenureAssessment{effective: 0, source: CappedByAge},
			code:         "",
			ref:          "mas_tenure_cap_commercial",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := c.Property(tt.propertyType)
			assert.True(t, ok)

			code, ref := tenureCapRule.apply(&ruleInput{
				constants: c,
				limit:     &limitAssessment{rule: rule, tenure: tt.tenure},
			})
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.ref, ref)
		})
	}
}

func TestEvaluateRules_DeduplicatesReferences(t *testing.T) {
	c := defaultConstants(t)
	rule, _ := c.Property(policy.PrivateResidential)

	codes, refs := evaluateRules([]reasonRule{allDebtFrameworkRule, tenureCapRule, allDebtFrameworkRule}, &ruleInput{
		constants: c,
		scenario:  Scenario{PropertyType: policy.PrivateResidential},
		limit:     &limitAssessment{rule: rule, tenure: tenureAssessment{effective: 30, source: CappedByAge}},
	})

	assert.Equal(t, []string{"tenure_capped_by_age"}, codes)
	assert.Equal(t, []string{"MAS Notice 645", "mas_tenure_cap_private"}, refs)
}
