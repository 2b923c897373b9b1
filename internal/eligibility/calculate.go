// internal/eligibility/calculate.go
package eligibility

import (
	"mortgage-workers/internal/policy"

	"github.com/shopspring/decimal"
)

// ComputePartialLimit computes the borrowing limit from property data and the
// primary applicant's age alone.
func ComputePartialLimit(c *policy.Constants, s Scenario) (*PartialLimit, error) {
	if err := validateScenario(c, s, false); err != nil {
		return nil, err
	}

	limit := assessLimit(c, s, s.Applicants[0].Age)
	codes, refs := evaluateRules(partialRules, &ruleInput{
		constants: c,
		scenario:  s,
		limit:     &limit,
	})

	return &PartialLimit{
		LimitBreakdown:   limit.breakdown,
		ReasonCodes:      codes,
		PolicyReferences: refs,
	}, nil
}

// ComputeFullEligibility caps the borrowing limit by the all-debt and, where
// it applies, the payment-only servicing ratio at the stress rate.
func ComputeFullEligibility(c *policy.Constants, s Scenario) (*FullEligibility, error) {
	if err := validateScenario(c, s, true); err != nil {
		return nil, err
	}

	afford := assessAffordability(c, s)
	limit := assessLimit(c, s, afford.age)
	limitLoan := limit.breakdown.MaxLoan
	years := afford.tenure.effective

	allDebtLoan := maxLoanForPayment(c, afford.allDebtCap(c).Sub(afford.commitments), afford.stressRate, years)

	maxLoan, binding := limitLoan, BindingLimit
	if allDebtLoan.LessThan(maxLoan) {
		maxLoan, binding = allDebtLoan, BindingAllDebt
	}

	var paymentOnlyLoan *decimal.Decimal
	if afford.rule.PaymentOnlyRatioApplies {
		loan := maxLoanForPayment(c, afford.paymentOnlyCap(c), afford.stressRate, years)
		paymentOnlyLoan = &loan
		if loan.LessThan(maxLoan) {
			maxLoan, binding = loan, BindingPaymentOnly
		}
	}

	breakdown := limit.breakdown
	splitDownPayment(c, &breakdown, s.PropertyPrice, maxLoan)

	codes, refs := evaluateRules(fullRules, &ruleInput{
		constants: c,
		scenario:  s,
		limit:     &limit,
		afford:    &afford,
		binding:   binding,
	})

	return &FullEligibility{
		LimitBreakdown:        breakdown,
		RecognizedIncome:      afford.recognizedIncome,
		TotalCommitments:      afford.commitments,
		EffectiveAge:          afford.age,
		StressRate:            afford.stressRate,
		LimitCappedLoan:       limitLoan,
		AllDebtCappedLoan:     allDebtLoan,
		PaymentOnlyCappedLoan: paymentOnlyLoan,
		BindingConstraint:     binding,
		ReasonCodes:           codes,
		PolicyReferences:      refs,
	}, nil
}

// EvaluateReadiness checks whether proposedLoan keeps the applicants within
// the servicing ratios. Amounts exactly at a cap are compliant.
func EvaluateReadiness(c *policy.Constants, s Scenario, proposedLoan decimal.Decimal) (*Readiness, error) {
	if err := validateScenario(c, s, false); err != nil {
		return nil, err
	}
	if proposedLoan.IsNegative() {
		return nil, invalid("proposedLoan", "must not be negative")
	}

	afford := assessAffordability(c, s)
	payment := monthlyPayment(c, proposedLoan, afford.stressRate, afford.tenure.effective)
	servicing := payment.Add(afford.commitments)

	r := &Readiness{
		ProposedLoan:         proposedLoan,
		MonthlyPayment:       payment,
		RecognizedIncome:     afford.recognizedIncome,
		TotalCommitments:     afford.commitments,
		StressRate:           afford.stressRate,
		Tenure:               afford.tenure.effective,
		AllDebtRatioPercent:  ratioPercent(servicing, afford.recognizedIncome),
		AllDebtCapPercent:    c.AllDebtCapPercent(),
		AllDebtCompliant:     servicing.LessThanOrEqual(afford.allDebtCap(c)),
		PaymentOnlyApplies:   afford.rule.PaymentOnlyRatioApplies,
		PaymentOnlyCompliant: true,
	}

	if r.PaymentOnlyApplies {
		ratio := ratioPercent(payment, afford.recognizedIncome)
		capPercent := c.PaymentOnlyCapPercent()
		r.PaymentOnlyRatioPercent = &ratio
		r.PaymentOnlyCapPercent = &capPercent
		r.PaymentOnlyCompliant = payment.LessThanOrEqual(afford.paymentOnlyCap(c))
	}
	r.Compliant = r.AllDebtCompliant && r.PaymentOnlyCompliant

	r.ReasonCodes, r.PolicyReferences = evaluateRules(readinessRules, &ruleInput{
		constants: c,
		scenario:  s,
		afford:    &afford,
		readiness: r,
	})
	return r, nil
}

// Compute runs the full calculation when any applicant declared income and
// the partial one otherwise.
func Compute(c *policy.Constants, s Scenario) (Result, error) {
	if s.HasIncome() {
		full, err := ComputeFullEligibility(c, s)
		if err != nil {
			return nil, err
		}
		return full, nil
	}

	partial, err := ComputePartialLimit(c, s)
	if err != nil {
		return nil, err
	}
	return partial, nil
}

// ratioPercent is amount as a percentage of income, to two decimal places.
// It is zero when there is no income.
func ratioPercent(amount, income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(hundred).Div(income).Round(2)
}
