// internal/eligibility/refinance.go
package eligibility

import (
	"fmt"

	"mortgage-workers/internal/policy"

	"github.com/shopspring/decimal"
)

type RefinanceObjective string

const (
	ObjectiveLowerPayment  RefinanceObjective = "lower_payment"
	ObjectiveShortenTenure RefinanceObjective = "shorten_tenure"
	ObjectiveRateCertainty RefinanceObjective = "rate_certainty"
	ObjectiveCashOut       RefinanceObjective = "cash_out"
)

// TimingWindow buckets the lock-in months left on the existing loan.
type TimingWindow string

const (
	WindowImmediate TimingWindow = "immediate"
	WindowCritical  TimingWindow = "critical"
	WindowPlanning  TimingWindow = "planning"
	WindowLong      TimingWindow = "long"
)

// RefinanceScenario describes an existing loan being considered for
// refinancing. Unset rates fall back to the policy's assumed and target
// rates, and a zero RemainingTenureMonths to the policy default.
type RefinanceScenario struct {
	PropertyValue         decimal.Decimal     `json:"propertyValue"`
	PropertyType          policy.PropertyType `json:"propertyType"`
	OutstandingBalance    decimal.Decimal     `json:"outstandingBalance"`
	CurrentRate           *decimal.Decimal    `json:"currentRate,omitempty"`
	TargetRate            *decimal.Decimal    `json:"targetRate,omitempty"`
	RemainingTenureMonths int                 `json:"remainingTenureMonths,omitempty"`
	LockInMonthsRemaining int                 `json:"lockInMonthsRemaining"`
	Investment            bool                `json:"investment"`
	Objective             RefinanceObjective  `json:"objective,omitempty"`
	AlternateFundsUsed    decimal.Decimal     `json:"alternateFundsUsed"`
	YearsHeld             *int                `json:"yearsHeld,omitempty"`
	RentalIncome          decimal.Decimal     `json:"rentalIncome"`
}

// RefinanceOutlook compares the existing loan with a refinance at the
// target rate and sizes the equity that could be released.
// ProjectedMonthlySavings is negative when the refinance costs more a month.
type RefinanceOutlook struct {
	CurrentRate             decimal.Decimal `json:"currentRate"`
	CurrentRateEstimated    bool            `json:"currentRateEstimated"`
	TargetRate              decimal.Decimal `json:"targetRate"`
	RemainingTenureMonths   int             `json:"remainingTenureMonths"`
	TargetTenureMonths      int             `json:"targetTenureMonths"`
	CurrentMonthlyPayment   decimal.Decimal `json:"currentMonthlyPayment"`
	TargetMonthlyPayment    decimal.Decimal `json:"targetMonthlyPayment"`
	ProjectedMonthlySavings decimal.Decimal `json:"projectedMonthlySavings"`
	RefinanceLimitPercent   decimal.Decimal `json:"refinanceLimitPercent"`
	AllowableLoan           decimal.Decimal `json:"allowableLoan"`
	MaxCashOut              decimal.Decimal `json:"maxCashOut"`
	AccruedInterest         decimal.Decimal `json:"accruedInterest"`
	RedemptionAmount        decimal.Decimal `json:"redemptionAmount"`
	TimingWindow            TimingWindow    `json:"timingWindow"`
	Recommendations         []string        `json:"recommendations"`
	ReasonCodes             []string        `json:"reasonCodes"`
	PolicyReferences        []string        `json:"policyReferences"`
}

type refinanceAssessment struct {
	scenario        RefinanceScenario
	rule            policy.PropertyRule
	objective       RefinanceObjective
	outlook         *RefinanceOutlook
	sameTermSavings decimal.Decimal
	cashOutCode     string
}

// ComputeRefinanceOutlook prices the existing loan and a refinance of the
// outstanding balance at the target rate, then caps any cash-out by the
// property type's refinancing limit less the balance and the alternate
// funds that must be returned with accrued interest.
func ComputeRefinanceOutlook(c *policy.Constants, s RefinanceScenario) (*RefinanceOutlook, error) {
	if err := validateRefinance(c, s); err != nil {
		return nil, err
	}

	rule, _ := c.Property(s.PropertyType)
	terms := c.Refinance()
	a := &refinanceAssessment{
		scenario:  s,
		rule:      rule,
		objective: s.Objective,
		outlook:   &RefinanceOutlook{},
	}
	if a.objective == "" {
		a.objective = ObjectiveLowerPayment
	}
	out := a.outlook

	out.CurrentRate = c.AssumedCurrentRate(s.PropertyType)
	out.CurrentRateEstimated = true
	if s.CurrentRate != nil {
		out.CurrentRate = *s.CurrentRate
		out.CurrentRateEstimated = false
	}
	out.TargetRate = c.TargetRate(s.PropertyType)
	if s.TargetRate != nil {
		out.TargetRate = *s.TargetRate
	}

	out.RemainingTenureMonths = s.RemainingTenureMonths
	if out.RemainingTenureMonths == 0 {
		out.RemainingTenureMonths = terms.DefaultRemainingMonths
	}
	out.TargetTenureMonths = out.RemainingTenureMonths

	balance := s.OutstandingBalance
	out.CurrentMonthlyPayment = paymentOverMonths(c, balance, out.CurrentRate, out.RemainingTenureMonths)
	out.TargetMonthlyPayment = paymentOverMonths(c, balance, out.TargetRate, out.TargetTenureMonths)
	a.sameTermSavings = out.CurrentMonthlyPayment.Sub(out.TargetMonthlyPayment)

	if a.objective == ObjectiveShortenTenure && balance.IsPositive() {
		out.TargetTenureMonths = shortenedTenure(terms, out.RemainingTenureMonths)
		out.TargetMonthlyPayment = paymentOverMonths(c, balance, out.TargetRate, out.TargetTenureMonths)
	}
	out.ProjectedMonthlySavings = out.CurrentMonthlyPayment.Sub(out.TargetMonthlyPayment)

	out.RefinanceLimitPercent = rule.Refinance.Limit(s.Investment)
	out.AllowableLoan = c.LoanRounding().Apply(s.PropertyValue.Mul(out.RefinanceLimitPercent).Div(hundred))

	out.AccruedInterest = accruedInterest(terms, s)
	out.RedemptionAmount = decimal.Zero
	if s.AlternateFundsUsed.IsPositive() {
		out.RedemptionAmount = s.AlternateFundsUsed.Add(out.AccruedInterest)
	}
	out.MaxCashOut, a.cashOutCode = assessCashOut(c, s, rule, out.AllowableLoan, out.RedemptionAmount)
	out.TimingWindow = timingWindow(terms.Windows, s.LockInMonthsRemaining)

	out.ReasonCodes, out.PolicyReferences = evaluateRules(refinanceRules, &ruleInput{
		constants: c,
		scenario:  Scenario{PropertyType: s.PropertyType},
		refinance: a,
	})
	out.Recommendations = refinanceRecommendations(a)
	return out, nil
}

// shortenedTenure cuts the remaining tenure by the policy reduction without
// going below the minimum or above the tenure already left.
func shortenedTenure(terms policy.RefinanceTerms, remaining int) int {
	months := remaining - terms.TenureReductionMonths
	if months < terms.MinimumTenureMonths {
		months = terms.MinimumTenureMonths
	}
	if months > remaining {
		months = remaining
	}
	return months
}

// accruedInterest is the interest owed on alternate funds used for the
// purchase, compounded monthly over at least one year of ownership.
func accruedInterest(terms policy.RefinanceTerms, s RefinanceScenario) decimal.Decimal {
	if !s.AlternateFundsUsed.IsPositive() {
		return decimal.Zero
	}
	years := terms.DefaultYearsHeld
	if s.YearsHeld != nil {
		years = *s.YearsHeld
	}
	if years < 1 {
		years = 1
	}
	growth := compoundGrowth(terms.AccruedInterestPercent, years*12)
	return s.AlternateFundsUsed.Mul(growth.Sub(decimal.NewFromInt(1))).Round(0)
}

// assessCashOut returns the releasable equity, rounded down to the loan
// unit, and the reason code explaining it.
func assessCashOut(c *policy.Constants, s RefinanceScenario, rule policy.PropertyRule, allowable, redemption decimal.Decimal) (decimal.Decimal, string) {
	balance := s.OutstandingBalance
	switch {
	case balance.GreaterThan(s.PropertyValue):
		return decimal.Zero, "negative_equity_no_refinance"
	case !rule.Refinance.CashOutAllowed:
		return decimal.Zero, "cash_out_not_allowed"
	case balance.IsZero():
		return nonNegative(c.LoanRounding().Apply(allowable.Sub(redemption))), "fully_paid_property"
	}

	cash := c.LoanRounding().Apply(allowable.Sub(balance).Sub(redemption))
	if !cash.IsPositive() {
		return decimal.Zero, "high_ltv_no_cash_out"
	}
	return cash, "equity_cash_out_allowed"
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func timingWindow(w policy.TimingWindows, lockInMonths int) TimingWindow {
	switch {
	case lockInMonths <= w.ImmediateMonths:
		return WindowImmediate
	case lockInMonths <= w.CriticalMonths:
		return WindowCritical
	case lockInMonths <= w.PlanningMonths:
		return WindowPlanning
	default:
		return WindowLong
	}
}

func refinanceRecommendations(a *refinanceAssessment) []string {
	out := a.outlook
	recs := []string{}

	switch a.objective {
	case ObjectiveLowerPayment:
		recs = append(recs, "lower_payment_strategy")
	case ObjectiveShortenTenure:
		recs = append(recs, "tenure_reduction_strategy")
		if out.ProjectedMonthlySavings.IsNegative() {
			recs = append(recs, "higher_payment_shorter_tenure")
		}
	case ObjectiveRateCertainty:
		recs = append(recs, "rate_certainty_benefits")
	}

	switch out.TimingWindow {
	case WindowImmediate:
		recs = append(recs, "urgent_referral")
	case WindowPlanning, WindowLong:
		recs = append(recs, "monitor_rates")
	}

	if a.objective == ObjectiveCashOut && out.MaxCashOut.IsPositive() {
		recs = append(recs, "cash_out_equity_utilization")
	}
	if len(recs) == 0 {
		recs = append(recs, "review_recommended")
	}
	return recs
}

func validateRefinance(c *policy.Constants, s RefinanceScenario) error {
	if !s.PropertyValue.IsPositive() {
		return invalid("propertyValue", "must be greater than zero")
	}
	if _, ok := c.Property(s.PropertyType); !ok {
		return invalid("propertyType", "unknown property type %q", s.PropertyType)
	}
	if s.OutstandingBalance.IsNegative() {
		return invalid("outstandingBalance", "must not be negative")
	}

	rates := []struct {
		name string
		rate *decimal.Decimal
	}{
		{"currentRate", s.CurrentRate},
		{"targetRate", s.TargetRate},
	}
	for _, r := range rates {
		if r.rate != nil && (!r.rate.IsPositive() || r.rate.GreaterThan(hundred)) {
			return invalid(r.name, "must be greater than 0 and at most 100 percent")
		}
	}

	months := []struct {
		name  string
		value int
	}{
		{"remainingTenureMonths", s.RemainingTenureMonths},
		{"lockInMonthsRemaining", s.LockInMonthsRemaining},
	}
	for _, m := range months {
		if m.value < 0 {
			return invalid(m.name, "must not be negative")
		}
	}
	if s.YearsHeld != nil && *s.YearsHeld < 0 {
		return invalid("yearsHeld", "must not be negative")
	}

	switch s.Objective {
	case "", ObjectiveLowerPayment, ObjectiveShortenTenure, ObjectiveRateCertainty, ObjectiveCashOut:
	default:
		return invalid("objective", "unknown refinance objective %q", s.Objective)
	}

	if s.AlternateFundsUsed.IsNegative() {
		return invalid("alternateFundsUsed", "must not be negative")
	}
	if s.RentalIncome.IsNegative() {
		return invalid("rentalIncome", "must not be negative")
	}
	return nil
}

var (
	currentRateEstimatedRule = reasonRule{
		name: "current_rate_estimated",
		apply: func(in *ruleInput) (string, string) {
			a := in.refinance
			if !a.outlook.CurrentRateEstimated || !a.scenario.OutstandingBalance.IsPositive() {
				return "", ""
			}
			return "current_rate_estimated", ""
		},
	}

	rateDifferentialRule = reasonRule{
		name: "rate_differential",
		apply: func(in *ruleInput) (string, string) {
			if !in.refinance.sameTermSavings.IsPositive() {
				return "", ""
			}
			return "rate_differential_savings", ""
		},
	}

	rateCertaintyRule = reasonRule{
		name: "rate_certainty",
		apply: func(in *ruleInput) (string, string) {
			if in.refinance.objective != ObjectiveRateCertainty {
				return "", ""
			}
			return "rate_certainty_analysis", ""
		},
	}

	alternateFundsRule = reasonRule{
		name: "alternate_funds",
		apply: func(in *ruleInput) (string, string) {
			a := in.refinance
			if !a.rule.AlternateFundsAllowed {
				return "alternate_funds_not_allowed", ""
			}
			if !a.scenario.AlternateFundsUsed.IsPositive() {
				return "", ""
			}
			return "alternate_funds_accrued_interest_considered", in.constants.References().AccruedInterest
		},
	}

	saleProceedsRule = reasonRule{
		name: "sale_proceeds_order",
		apply: func(in *ruleInput) (string, string) {
			if in.refinance.scenario.YearsHeld == nil {
				return "", ""
			}
			return "sale_proceeds_order_applied", in.constants.References().SaleProceedsOrder
		},
	}

	cashOutRule = reasonRule{
		name: "cash_out",
		apply: func(in *ruleInput) (string, string) {
			a := in.refinance
			if a.outlook.MaxCashOut.IsPositive() {
				return a.cashOutCode, in.constants.References().ChargesPriority
			}
			return a.cashOutCode, ""
		},
	}

	investmentRule = reasonRule{
		name: "investment",
		apply: func(in *ruleInput) (string, string) {
			if !in.refinance.scenario.Investment {
				return "", ""
			}
			return "investment_property_rules", ""
		},
	}

	rentalIncomeRule = reasonRule{
		name: "rental_income",
		apply: func(in *ruleInput) (string, string) {
			s := in.refinance.scenario
			if !s.Investment || !s.RentalIncome.IsPositive() {
				return "", ""
			}
			return "rental_income_recognised", ""
		},
	}

	timingRule = reasonRule{
		name: "timing_window",
		apply: func(in *ruleInput) (string, string) {
			return fmt.Sprintf("timing_%s_window", in.refinance.outlook.TimingWindow), ""
		},
	}
)

var refinanceRules = []reasonRule{
	allDebtFrameworkRule,
	paymentOnlyFrameworkRule,
	currentRateEstimatedRule,
	rateDifferentialRule,
	rateCertaintyRule,
	alternateFundsRule,
	saleProceedsRule,
	cashOutRule,
	investmentRule,
	rentalIncomeRule,
	timingRule,
}
