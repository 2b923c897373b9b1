// internal/eligibility/limit.go
package eligibility

import (
	"mortgage-workers/internal/policy"

	"github.com/shopspring/decimal"
)

type tenureAssessment struct {
	age             int
	effective       int
	source          TenureCapSource
	reducedByTenure bool
	reducedByAge    bool
}

func (t tenureAssessment) reduced() bool { return t.reducedByTenure || t.reducedByAge }

// assessTenure caps the tenure by the years left before the age ceiling and
// by the property type. On a tie the age is reported as the cap.
func assessTenure(c *policy.Constants, rule policy.PropertyRule, age int) tenureAssessment {
	ageTenure := c.AgeCeiling() - age
	if ageTenure < 0 {
		ageTenure = 0
	}

	t := tenureAssessment{
		age:             age,
		effective:       ageTenure,
		source:          CappedByAge,
		reducedByTenure: rule.StandardTenureYears > rule.ReductionThresholdYears,
		reducedByAge:    age+rule.StandardTenureYears > c.AgeCeiling(),
	}
	if rule.StandardTenureYears < ageTenure {
		t.effective = rule.StandardTenureYears
		t.source = CappedByRegulation
	}
	return t
}

type limitAssessment struct {
	rank      policy.TierRank
	tier      policy.Tier
	rule      policy.PropertyRule
	tenure    tenureAssessment
	breakdown LimitBreakdown
}

// assessLimit selects the tier, applies the reduction and splits the down
// payment for the given borrower age.
func assessLimit(c *policy.Constants, s Scenario, age int) limitAssessment {
	rule, _ := c.Property(s.PropertyType)
	tier, rank := c.Tier(s.ExistingProperties)
	tenure := assessTenure(c, rule, age)

	limitPercent, cashPercent := tier.LimitPercent, tier.MinCashPercent
	if tenure.reduced() {
		limitPercent, cashPercent = tier.ReducedLimitPercent, tier.ReducedMinCashPercent
	}

	maxLoan := decimal.Zero
	if tenure.effective > 0 {
		maxLoan = c.LoanRounding().Apply(percentOf(s.PropertyPrice, limitPercent))
	}

	b := LimitBreakdown{
		LimitPercent:          limitPercent,
		MinCashPercent:        cashPercent,
		AlternateFundsAllowed: rule.AlternateFundsAllowed,
		EffectiveTenure:       tenure.effective,
		TenureCapSource:       tenure.source,
		ReducedTier:           tenure.reduced(),
	}
	splitDownPayment(c, &b, s.PropertyPrice, maxLoan)

	return limitAssessment{
		rank:      rank,
		tier:      tier,
		rule:      rule,
		tenure:    tenure,
		breakdown: b,
	}
}

// splitDownPayment fills the loan, the down payment and its cash and
// alternate-funds portions. Without alternate funds the whole down payment
// is cash.
func splitDownPayment(c *policy.Constants, b *LimitBreakdown, price, maxLoan decimal.Decimal) {
	b.MaxLoan = maxLoan
	b.DownPayment = c.FundsRounding().Apply(price.Sub(maxLoan))

	if !b.AlternateFundsAllowed {
		b.MinimumCash = b.DownPayment
		b.CashPortion = b.DownPayment
		b.AlternateFunds = decimal.Zero
		return
	}

	b.MinimumCash = c.FundsRounding().Apply(percentOf(price, b.MinCashPercent))
	if b.MinimumCash.GreaterThan(b.DownPayment) {
		b.MinimumCash = b.DownPayment
	}
	b.CashPortion = b.MinimumCash
	b.AlternateFunds = b.DownPayment.Sub(b.MinimumCash)
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}
