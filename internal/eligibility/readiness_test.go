package eligibility

import (
	"testing"

	"mortgage-workers/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateReadiness(t *testing.T) {
	c := defaultConstants(t)

	tests := []struct {
		name             string
		scenario         Scenario
		loan             string
		payment          string
		allDebtRatio     string
		compliant        bool
		allDebtOK        bool
		paymentOnlyOK    bool
		paymentOnlyRatio string
		codes            []string
		refs             []string
	}{
		{
			name:         "private within all-debt cap",
			scenario:     withIncome(single("1000000", policy.PrivateResidential, 0, 35), "5000", policy.IncomeFixed),
			loan:         "400000",
			payment:      "1910",
			allDebtRatio: "38.2",
			compliant:    true,
			allDebtOK:    true,
			codes:        []string{"tdsr_within_limit"},
			refs:         []string{"MAS Notice 645"},
		},
		{
			name:             "subsidized breaches payment-only cap",
			scenario:         withIncome(single("1000000", policy.ResidentialSubsidized, 0, 35), "5000", policy.IncomeFixed),
			loan:             "400000",
			payment:          "2112",
			allDebtRatio:     "42.24",
			compliant:        false,
			allDebtOK:        true,
			paymentOnlyOK:    false,
			paymentOnlyRatio: "42.24",
			codes:            []string{"tdsr_within_limit", "msr_exceeded"},
			refs:             []string{"MAS Notice 645", "MAS Notice 632"},
		},
		{
			name:         "zero loan without income",
			scenario:     single("1000000", policy.PrivateResidential, 0, 35),
			loan:         "0",
			payment:      "0",
			allDebtRatio: "0",
			compliant:    true,
			allDebtOK:    true,
			codes:        []string{"no_income", "tdsr_within_limit"},
			refs:         []string{"MAS Notice 645"},
		},
		{
			name:         "positive loan without income",
			scenario:     single("1000000", policy.PrivateResidential, 0, 35),
			loan:         "100000",
			payment:      "478",
			allDebtRatio: "0",
			compliant:    false,
			allDebtOK:    false,
			codes:        []string{"no_income", "tdsr_exceeded"},
			refs:         []string{"MAS Notice 645"},
		},
		{
			name:         "no tenure left",
			scenario:     withIncome(single("1000000", policy.PrivateResidential, 0, 70), "20000", policy.IncomeFixed),
			loan:         "100000",
			payment:      "100000",
			allDebtRatio: "500",
			compliant:    false,
			allDebtOK:    false,
			codes:        []string{"tenure_exhausted", "tdsr_exceeded"},
			refs:         []string{"MAS Notice 645"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := EvaluateReadiness(c, tt.scenario, amount(tt.loan))
			require.NoError(t, err)

			assert.Equal(t, tt.payment, r.MonthlyPayment.String())
			assert.Equal(t, tt.allDebtRatio, r.AllDebtRatioPercent.String())
			assert.Equal(t, "55", r.AllDebtCapPercent.String())
			assert.Equal(t, tt.compliant, r.Compliant)
			assert.Equal(t, tt.allDebtOK, r.AllDebtCompliant)
			assert.Equal(t, tt.codes, r.ReasonCodes)
			assert.Equal(t, tt.refs, r.PolicyReferences)

			if tt.paymentOnlyRatio == "" {
				assert.False(t, r.PaymentOnlyApplies)
				assert.Nil(t, r.PaymentOnlyRatioPercent)
				assert.True(t, r.PaymentOnlyCompliant)
				return
			}
			assert.True(t, r.PaymentOnlyApplies)
			require.NotNil(t, r.PaymentOnlyRatioPercent)
			assert.Equal(t, tt.paymentOnlyRatio, r.PaymentOnlyRatioPercent.String())
			assert.Equal(t, "30", r.PaymentOnlyCapPercent.String())
			assert.Equal(t, tt.paymentOnlyOK, r.PaymentOnlyCompliant)
		})
	}
}

func TestEvaluateReadiness_RejectsNegativeLoan(t *testing.T) {
	c := defaultConstants(t)

	_, err := EvaluateReadiness(c, single("1000000", policy.PrivateResidential, 0, 35), amount("-1"))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "proposedLoan", validationErr.Field)
}

// The maximum loan of a full calculation is always compliant, and one loan
// unit more breaches the binding ratio.
func TestEvaluateReadiness_AgreesWithFullEligibility(t *testing.T) {
	c := defaultConstants(t)
	unit := c.LoanRounding().Unit

	incomes := []string{"2500", "4800", "7777", "12000", "30000"}
	debts := []string{"0", "350", "1200"}

	for _, pt := range policy.PropertyTypes {
		for _, age := range []int{25, 35, 45, 55} {
			for _, monthly := range incomes {
				for _, debt := range debts {
					s := withIncome(single("1800000", pt, 0, age), monthly, policy.IncomeFixed)
					s.Applicants[0].Commitments.MonthlyDebt = amount(debt)

					full, err := ComputeFullEligibility(c, s)
					require.NoError(t, err)

					at, err := EvaluateReadiness(c, s, full.MaxLoan)
					require.NoError(t, err)
					assert.True(t, at.Compliant, "%s age=%d income=%s debt=%s loan=%s", pt, age, monthly, debt, full.MaxLoan)

					if full.BindingConstraint == BindingLimit {
						continue
					}
					above, err := EvaluateReadiness(c, s, full.MaxLoan.Add(unit))
					require.NoError(t, err)
					assert.False(t, above.Compliant, "%s age=%d income=%s debt=%s loan=%s", pt, age, monthly, debt, full.MaxLoan)
				}
			}
		}
	}
}

func TestMonthlyPayment(t *testing.T) {
	c := defaultConstants(t)

	tests := []struct {
		name      string
		principal string
		rate      string
		years     int
		want      string
	}{
		{"thirty years at four percent", "100000", "4", 30, "478"},
		{"twenty-five years at four percent", "100000", "4", 25, "528"},
		{"thirty years at five percent", "100000", "5", 30, "537"},
		{"zero rate", "120000", "0", 10, "1000"},
		{"zero principal", "0", "4", 30, "0"},
		{"no tenure", "5000", "4", 0, "5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := monthlyPayment(c, amount(tt.principal), amount(tt.rate), tt.years)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAnnuityFactor(t *testing.T) {
	assert.InDelta(t, 209.46, annuityFactor(amount("4"), 30).InexactFloat64(), 0.01)
	assert.InDelta(t, 189.45, annuityFactor(amount("4"), 25).InexactFloat64(), 0.01)
	assert.True(t, annuityFactor(amount("4"), 0).IsZero())
}

func TestMaxLoanForPayment(t *testing.T) {
	c := defaultConstants(t)

	loan := maxLoanForPayment(c, amount("2750"), amount("4"), 30)
	assert.Equal(t, "576000", loan.String())
	assert.True(t, monthlyPayment(c, loan, amount("4"), 30).LessThanOrEqual(amount("2750")))
	assert.True(t, monthlyPayment(c, loan.Add(amount("1000")), amount("4"), 30).GreaterThan(amount("2750")))

	assert.True(t, maxLoanForPayment(c, amount("-10"), amount("4"), 30).IsZero())
	assert.True(t, maxLoanForPayment(c, amount("2750"), amount("4"), 0).IsZero())
}
