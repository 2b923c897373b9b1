// internal/eligibility/income.go
package eligibility

import (
	"mortgage-workers/internal/policy"

	"github.com/shopspring/decimal"
)

// affordability is everything the servicing-ratio checks need that does not
// depend on the loan amount.
type affordability struct {
	recognizedIncome decimal.Decimal
	variableIncome   bool
	commitments      decimal.Decimal
	age              int
	rule             policy.PropertyRule
	tenure           tenureAssessment
	stressRate       decimal.Decimal
	quotedRate       bool
}

func assessAffordability(c *policy.Constants, s Scenario) affordability {
	rule, _ := c.Property(s.PropertyType)
	income, variable := recognizeIncome(c, s.Applicants)
	age := adjustedAge(c, s.Applicants)
	rate, quoted := stressRate(c, s)

	return affordability{
		recognizedIncome: income,
		variableIncome:   variable,
		commitments:      totalCommitments(c, s.Applicants),
		age:              age,
		rule:             rule,
		tenure:           assessTenure(c, rule, age),
		stressRate:       rate,
		quotedRate:       quoted,
	}
}

func (a affordability) noIncome() bool { return !a.recognizedIncome.IsPositive() }

// allDebtCap is the monthly amount all debt servicing may not exceed.
func (a affordability) allDebtCap(c *policy.Constants) decimal.Decimal {
	return percentOf(a.recognizedIncome, c.AllDebtCapPercent())
}

func (a affordability) paymentOnlyCap(c *policy.Constants) decimal.Decimal {
	return percentOf(a.recognizedIncome, c.PaymentOnlyCapPercent())
}

// recognizeIncome applies the recognition rate of each applicant's income
// type and floors each recognized amount to a whole unit.
func recognizeIncome(c *policy.Constants, applicants []Applicant) (decimal.Decimal, bool) {
	total := decimal.Zero
	variable := false
	for _, a := range applicants {
		if a.MonthlyIncome == nil {
			continue
		}
		rate, _ := c.RecognitionPercent(a.IncomeType)
		recognized := percentOf(*a.MonthlyIncome, rate).Floor()
		total = total.Add(recognized)
		if recognized.IsPositive() && rate.LessThan(hundred) {
			variable = true
		}
	}
	return total, variable
}

// totalCommitments adds declared monthly debt to the monthly amounts
// estimated from card balances, overdraft limits and guarantees.
func totalCommitments(c *policy.Constants, applicants []Applicant) decimal.Decimal {
	est := c.Commitments()
	total := decimal.Zero
	for _, a := range applicants {
		total = total.Add(a.Commitments.MonthlyDebt)
		for _, balance := range a.Commitments.CreditCardBalances {
			if !balance.IsPositive() {
				continue
			}
			total = total.Add(decimal.Max(percentOf(balance, est.CreditCardRatePercent), est.CreditCardMinimum))
		}
		for _, limit := range a.Commitments.OverdraftLimits {
			total = total.Add(percentOf(limit, est.OverdraftRatePercent))
		}
		for _, instalment := range a.Commitments.GuarantorInstalments {
			total = total.Add(percentOf(instalment, est.GuarantorRatePercent))
		}
	}
	return total
}

// adjustedAge is the age used for tenure in servicing calculations. Joint
// applicants are combined by the policy's weighting, rounded up, and the
// result never drops below the primary applicant's age.
func adjustedAge(c *policy.Constants, applicants []Applicant) int {
	primary := applicants[0].Age
	if len(applicants) == 1 {
		return primary
	}

	weighted := evenSplitAge(applicants)
	if c.AgeWeighting() == policy.WeightByIncome {
		if age, ok := incomeWeightedAge(applicants); ok {
			weighted = age
		}
	}

	age := int(weighted.Ceil().IntPart())
	if age < primary {
		return primary
	}
	return age
}

func evenSplitAge(applicants []Applicant) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range applicants {
		sum = sum.Add(decimal.NewFromInt(int64(a.Age)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(applicants))))
}

// incomeWeightedAge weights ages by declared gross income. It reports false
// when there is no income to weight by.
func incomeWeightedAge(applicants []Applicant) (decimal.Decimal, bool) {
	totalIncome := decimal.Zero
	weighted := decimal.Zero
	for _, a := range applicants {
		if a.MonthlyIncome == nil {
			continue
		}
		totalIncome = totalIncome.Add(*a.MonthlyIncome)
		weighted = weighted.Add(a.MonthlyIncome.Mul(decimal.NewFromInt(int64(a.Age))))
	}
	if !totalIncome.IsPositive() {
		return decimal.Zero, false
	}
	return weighted.Div(totalIncome), true
}

// stressRate is the higher of the property class floor and any quoted rate.
func stressRate(c *policy.Constants, s Scenario) (decimal.Decimal, bool) {
	floor := c.StressRate(s.PropertyType)
	if s.QuotedRate != nil && s.QuotedRate.GreaterThan(floor) {
		return *s.QuotedRate, true
	}
	return floor, false
}
