package eligibility

import (
	"errors"
	"testing"

	"mortgage-workers/internal/policy"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rate(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func years(n int) *int {
	return &n
}

func refinance(value string, propertyType policy.PropertyType, balance string, lockIn int) RefinanceScenario {
	return RefinanceScenario{
		PropertyValue:         amount(value),
		PropertyType:          propertyType,
		OutstandingBalance:    amount(balance),
		LockInMonthsRemaining: lockIn,
	}
}

func TestComputeRefinanceOutlook(t *testing.T) {
	c := defaultConstants(t)

	tests := []struct {
		name      string
		scenario  func() RefinanceScenario
		limit     string
		allowable string
		cashOut   string
		window    TimingWindow
		codes     []string
		refs      []string
		recs      []string
	}{
		{
			name:      "private with estimated current rate",
			scenario:  func() RefinanceScenario { return refinance("1000000", policy.PrivateResidential, "500000", 2) },
			limit:     "75",
			allowable: "750000",
			cashOut:   "250000",
			window:    WindowImmediate,
			codes:     []string{"current_rate_estimated", "rate_differential_savings", "equity_cash_out_allowed", "timing_immediate_window"},
			refs:      []string{"MAS Notice 645", "charges_priority"},
			recs:      []string{"lower_payment_strategy", "urgent_referral"},
		},
		{
			name: "commercial rate certainty",
			scenario: func() RefinanceScenario {
				s := refinance("1000000", policy.Commercial, "400000", 12)
				s.CurrentRate = rate("4")
				s.Objective = ObjectiveRateCertainty
				return s
			},
			limit:     "60",
			allowable: "600000",
			cashOut:   "0",
			window:    WindowPlanning,
			codes:     []string{"rate_differential_savings", "rate_certainty_analysis", "alternate_funds_not_allowed", "cash_out_not_allowed", "timing_planning_window"},
			refs:      []string{"MAS Notice 645"},
			recs:      []string{"rate_certainty_benefits", "monitor_rates"},
		},
		{
			name: "subsidized cash-out request",
			scenario: func() RefinanceScenario {
				s := refinance("600000", policy.ResidentialSubsidized, "200000", 5)
				s.CurrentRate = rate("2.6")
				s.Objective = ObjectiveCashOut
				return s
			},
			limit:     "0",
			allowable: "0",
			cashOut:   "0",
			window:    WindowCritical,
			codes:     []string{"cash_out_not_allowed", "timing_critical_window"},
			refs:      []string{"MAS Notice 645", "MAS Notice 632"},
			recs:      []string{"review_recommended"},
		},
		{
			name: "negative equity",
			scenario: func() RefinanceScenario {
				s := refinance("1000000", policy.PrivateResidential, "1200000", 24)
				s.CurrentRate = rate("3")
				return s
			},
			limit:     "75",
			allowable: "750000",
			cashOut:   "0",
			window:    WindowLong,
			codes:     []string{"rate_differential_savings", "negative_equity_no_refinance", "timing_long_window"},
			refs:      []string{"MAS Notice 645"},
			recs:      []string{"lower_payment_strategy", "monitor_rates"},
		},
		{
			name: "fully paid property",
			scenario: func() RefinanceScenario {
				s := refinance("800000", policy.PrivateResidential, "0", 0)
				s.Objective = ObjectiveCashOut
				return s
			},
			limit:     "75",
			allowable: "600000",
			cashOut:   "600000",
			window:    WindowImmediate,
			codes:     []string{"fully_paid_property", "timing_immediate_window"},
			refs:      []string{"MAS Notice 645", "charges_priority"},
			recs:      []string{"urgent_referral", "cash_out_equity_utilization"},
		},
		{
			name: "balance above the refinance limit",
			scenario: func() RefinanceScenario {
				s := refinance("1000000", policy.PrivateResidential, "760000", 2)
				s.CurrentRate = rate("3.5")
				return s
			},
			limit:     "75",
			allowable: "750000",
			cashOut:   "0",
			window:    WindowImmediate,
			codes:     []string{"rate_differential_savings", "high_ltv_no_cash_out", "timing_immediate_window"},
			refs:      []string{"MAS Notice 645"},
			recs:      []string{"lower_payment_strategy", "urgent_referral"},
		},
		{
			name: "investment property with rental income",
			scenario: func() RefinanceScenario {
				s := refinance("1000000", policy.PrivateResidential, "500000", 4)
				s.CurrentRate = rate("3.5")
				s.Investment = true
				s.RentalIncome = amount("3000")
				return s
			},
			limit:     "70",
			allowable: "700000",
			cashOut:   "200000",
			window:    WindowCritical,
			codes:     []string{"rate_differential_savings", "equity_cash_out_allowed", "investment_property_rules", "rental_income_recognised", "timing_critical_window"},
			refs:      []string{"MAS Notice 645", "charges_priority"},
			recs:      []string{"lower_payment_strategy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ComputeRefinanceOutlook(c, tt.scenario())
			require.NoError(t, err)

			assert.Equal(t, tt.limit, out.RefinanceLimitPercent.String())
			assert.Equal(t, tt.allowable, out.AllowableLoan.String())
			assert.Equal(t, tt.cashOut, out.MaxCashOut.String())
			assert.Equal(t, tt.window, out.TimingWindow)
			assert.Equal(t, tt.codes, out.ReasonCodes)
			assert.Equal(t, tt.refs, out.PolicyReferences)
			assert.Equal(t, tt.recs, out.Recommendations)
		})
	}
}

func TestComputeRefinanceOutlook_Payments(t *testing.T) {
	c := defaultConstants(t)

	out, err := ComputeRefinanceOutlook(c, refinance("1000000", policy.PrivateResidential, "500000", 2))
	require.NoError(t, err)

	assert.True(t, out.CurrentRateEstimated)
	assert.Equal(t, "3.5", out.CurrentRate.String())
	assert.Equal(t, "2.8", out.TargetRate.String())
	assert.Equal(t, 300, out.RemainingTenureMonths)
	assert.Equal(t, 300, out.TargetTenureMonths)
	assert.InDelta(t, 2504, out.CurrentMonthlyPayment.InexactFloat64(), 1)
	assert.InDelta(t, 2320, out.TargetMonthlyPayment.InexactFloat64(), 1)
	assert.True(t, out.ProjectedMonthlySavings.Equal(out.CurrentMonthlyPayment.Sub(out.TargetMonthlyPayment)))
	assert.True(t, out.ProjectedMonthlySavings.IsPositive())
}

func TestComputeRefinanceOutlook_SameRateHasNoSavings(t *testing.T) {
	c := defaultConstants(t)

	s := refinance("1000000", policy.PrivateResidential, "500000", 2)
	s.CurrentRate = rate("3")
	s.TargetRate = rate("3")

	out, err := ComputeRefinanceOutlook(c, s)
	require.NoError(t, err)

	assert.False(t, out.CurrentRateEstimated)
	assert.True(t, out.ProjectedMonthlySavings.IsZero())
	assert.NotContains(t, out.ReasonCodes, "rate_differential_savings")
}

func TestComputeRefinanceOutlook_ShortenTenure(t *testing.T) {
	c := defaultConstants(t)

	s := refinance("1000000", policy.PrivateResidential, "500000", 10)
	s.CurrentRate = rate("3.5")
	s.RemainingTenureMonths = 120
	s.Objective = ObjectiveShortenTenure

	out, err := ComputeRefinanceOutlook(c, s)
	require.NoError(t, err)

	assert.Equal(t, 120, out.RemainingTenureMonths)
	assert.Equal(t, 60, out.TargetTenureMonths)
	assert.True(t, out.TargetMonthlyPayment.GreaterThan(out.CurrentMonthlyPayment))
	assert.True(t, out.ProjectedMonthlySavings.IsNegative())
	assert.Contains(t, out.ReasonCodes, "rate_differential_savings")
	assert.Equal(t, []string{"tenure_reduction_strategy", "higher_payment_shorter_tenure", "monitor_rates"}, out.Recommendations)
}

func TestShortenedTenure(t *testing.T) {
	terms := defaultConstants(t).Refinance()

	assert.Equal(t, 240, shortenedTenure(terms, 300))
	assert.Equal(t, 12, shortenedTenure(terms, 40))
	assert.Equal(t, 6, shortenedTenure(terms, 6))
}

func TestComputeRefinanceOutlook_AlternateFunds(t *testing.T) {
	c := defaultConstants(t)

	tests := []struct {
		name      string
		yearsHeld *int
		interest  float64
		cashOut   string
		refs      []string
	}{
		{
			name:     "default holding period",
			interest: 13300,
			cashOut:  "136000",
			refs:     []string{"MAS Notice 645", "cpf_accrued_interest", "charges_priority"},
		},
		{
			name:      "held under a year",
			yearsHeld: years(0),
			interest:  2529,
			cashOut:   "147000",
			refs:      []string{"MAS Notice 645", "cpf_accrued_interest", "sale_proceeds_order", "charges_priority"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := refinance("1000000", policy.PrivateResidential, "500000", 2)
			s.CurrentRate = rate("3.5")
			s.AlternateFundsUsed = amount("100000")
			s.YearsHeld = tt.yearsHeld

			out, err := ComputeRefinanceOutlook(c, s)
			require.NoError(t, err)

			assert.InDelta(t, tt.interest, out.AccruedInterest.InexactFloat64(), 5)
			assert.True(t, out.AccruedInterest.Equal(out.AccruedInterest.Round(0)))
			assert.True(t, out.RedemptionAmount.Equal(amount("100000").Add(out.AccruedInterest)))
			assert.Equal(t, tt.cashOut, out.MaxCashOut.String())
			assert.Contains(t, out.ReasonCodes, "alternate_funds_accrued_interest_considered")
			assert.Equal(t, tt.refs, out.PolicyReferences)
		})
	}
}

func TestTimingWindow(t *testing.T) {
	windows := defaultConstants(t).Refinance().Windows

	tests := []struct {
		lockIn int
		want   TimingWindow
	}{
		{0, WindowImmediate},
		{3, WindowImmediate},
		{4, WindowCritical},
		{6, WindowCritical},
		{7, WindowPlanning},
		{18, WindowPlanning},
		{19, WindowLong},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, timingWindow(windows, tt.lockIn), "lock-in %d", tt.lockIn)
	}
}

func TestComputeRefinanceOutlook_InvalidInput(t *testing.T) {
	c := defaultConstants(t)

	tests := []struct {
		name   string
		mutate func(s *RefinanceScenario)
		field  string
	}{
		{"zero property value", func(s *RefinanceScenario) { s.PropertyValue = decimal.Zero }, "propertyValue"},
		{"unknown property type", func(s *RefinanceScenario) { s.PropertyType = "warehouse" }, "propertyType"},
		{"negative balance", func(s *RefinanceScenario) { s.OutstandingBalance = amount("-1") }, "outstandingBalance"},
		{"zero current rate", func(s *RefinanceScenario) { s.CurrentRate = rate("0") }, "currentRate"},
		{"target rate above 100", func(s *RefinanceScenario) { s.TargetRate = rate("120") }, "targetRate"},
		{"negative remaining tenure", func(s *RefinanceScenario) { s.RemainingTenureMonths = -12 }, "remainingTenureMonths"},
		{"negative lock-in", func(s *RefinanceScenario) { s.LockInMonthsRemaining = -1 }, "lockInMonthsRemaining"},
		{"negative years held", func(s *RefinanceScenario) { s.YearsHeld = years(-2) }, "yearsHeld"},
		{"unknown objective", func(s *RefinanceScenario) { s.Objective = "maximise_loan" }, "objective"},
		{"negative alternate funds", func(s *RefinanceScenario) { s.AlternateFundsUsed = amount("-5") }, "alternateFundsUsed"},
		{"negative rental income", func(s *RefinanceScenario) { s.RentalIncome = amount("-5") }, "rentalIncome"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := refinance("1000000", policy.PrivateResidential, "500000", 2)
			tt.mutate(&s)

			out, err := ComputeRefinanceOutlook(c, s)
			assert.Nil(t, out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}
