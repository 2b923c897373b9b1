// internal/eligibility/types.go
package eligibility

import (
	"encoding/json"

	"mortgage-workers/internal/policy"

	"github.com/shopspring/decimal"
)

// Commitments are an applicant's existing obligations. Facility balances and
// limits are converted to monthly amounts with the policy's estimation rates.
type Commitments struct {
	MonthlyDebt          decimal.Decimal   `json:"monthlyDebt"`
	CreditCardBalances   []decimal.Decimal `json:"creditCardBalances,omitempty"`
	OverdraftLimits      []decimal.Decimal `json:"overdraftLimits,omitempty"`
	GuarantorInstalments []decimal.Decimal `json:"guarantorInstalments,omitempty"`
}

type Applicant struct {
	Age           int               `json:"age"`
	MonthlyIncome *decimal.Decimal  `json:"monthlyIncome,omitempty"`
	IncomeType    policy.IncomeType `json:"incomeType,omitempty"`
	Commitments   Commitments       `json:"commitments"`
}

// Scenario is one financing request. The first applicant is the primary
// borrower.
type Scenario struct {
	PropertyPrice      decimal.Decimal     `json:"propertyPrice"`
	PropertyType       policy.PropertyType `json:"propertyType"`
	ExistingProperties int                 `json:"existingProperties"`
	Applicants         []Applicant         `json:"applicants"`
	QuotedRate         *decimal.Decimal    `json:"quotedRate,omitempty"`
}

// HasIncome reports whether any applicant declared an income figure.
func (s Scenario) HasIncome() bool {
	for _, a := range s.Applicants {
		if a.MonthlyIncome != nil {
			return true
		}
	}
	return false
}

type TenureCapSource string

const (
	CappedByAge        TenureCapSource = "age"
	CappedByRegulation TenureCapSource = "regulation"
)

type BindingConstraint string

const (
	BindingLimit       BindingConstraint = "limit"
	BindingAllDebt     BindingConstraint = "all_debt_ratio"
	BindingPaymentOnly BindingConstraint = "payment_only_ratio"
)

type CalculationType string

const (
	CalculationPartialLimit    CalculationType = "partial_limit"
	CalculationFullEligibility CalculationType = "full_eligibility"
)

// Result is either a *PartialLimit or a *FullEligibility.
type Result interface {
	CalculationType() CalculationType
	isResult()
}

// LimitBreakdown is the borrowing limit and the split of the down payment.
type LimitBreakdown struct {
	MaxLoan               decimal.Decimal `json:"maxLoan"`
	LimitPercent          decimal.Decimal `json:"limitPercent"`
	MinCashPercent        decimal.Decimal `json:"minCashPercent"`
	DownPayment           decimal.Decimal `json:"downPayment"`
	MinimumCash           decimal.Decimal `json:"minimumCash"`
	CashPortion           decimal.Decimal `json:"cashPortion"`
	AlternateFunds        decimal.Decimal `json:"alternateFunds"`
	AlternateFundsAllowed bool            `json:"alternateFundsAllowed"`
	EffectiveTenure       int             `json:"effectiveTenure"`
	TenureCapSource       TenureCapSource `json:"tenureCapSource"`
	ReducedTier           bool            `json:"reducedTier"`
}

// PartialLimit is the outcome of a calculation without income data.
type PartialLimit struct {
	LimitBreakdown
	ReasonCodes      []string `json:"reasonCodes"`
	PolicyReferences []string `json:"policyReferences"`
}

func (*PartialLimit) CalculationType() CalculationType { return CalculationPartialLimit }
func (*PartialLimit) isResult()                        {}

func (p PartialLimit) MarshalJSON() ([]byte, error) {
	type alias PartialLimit
	return json.Marshal(struct {
		CalculationType CalculationType `json:"calculationType"`
		alias
	}{CalculationPartialLimit, alias(p)})
}

// FullEligibility is the outcome of a calculation with income data. MaxLoan
// is the smallest of the limit-capped and ratio-capped loans.
type FullEligibility struct {
	LimitBreakdown
	RecognizedIncome      decimal.Decimal   `json:"recognizedIncome"`
	TotalCommitments      decimal.Decimal   `json:"totalCommitments"`
	EffectiveAge          int               `json:"effectiveAge"`
	StressRate            decimal.Decimal   `json:"stressRate"`
	LimitCappedLoan       decimal.Decimal   `json:"limitCappedLoan"`
	AllDebtCappedLoan     decimal.Decimal   `json:"allDebtCappedLoan"`
	PaymentOnlyCappedLoan *decimal.Decimal  `json:"paymentOnlyCappedLoan,omitempty"`
	BindingConstraint     BindingConstraint `json:"bindingConstraint"`
	ReasonCodes           []string          `json:"reasonCodes"`
	PolicyReferences      []string          `json:"policyReferences"`
}

func (*FullEligibility) CalculationType() CalculationType { return CalculationFullEligibility }
func (*FullEligibility) isResult()                        {}

func (f FullEligibility) MarshalJSON() ([]byte, error) {
	type alias FullEligibility
	return json.Marshal(struct {
		CalculationType CalculationType `json:"calculationType"`
		alias
	}{CalculationFullEligibility, alias(f)})
}

// Readiness is the compliance check of a proposed loan amount.
type Readiness struct {
	Compliant               bool             `json:"compliant"`
	ProposedLoan            decimal.Decimal  `json:"proposedLoan"`
	MonthlyPayment          decimal.Decimal  `json:"monthlyPayment"`
	RecognizedIncome        decimal.Decimal  `json:"recognizedIncome"`
	TotalCommitments        decimal.Decimal  `json:"totalCommitments"`
	StressRate              decimal.Decimal  `json:"stressRate"`
	Tenure                  int              `json:"tenure"`
	AllDebtRatioPercent     decimal.Decimal  `json:"allDebtRatioPercent"`
	AllDebtCapPercent       decimal.Decimal  `json:"allDebtCapPercent"`
	AllDebtCompliant        bool             `json:"allDebtCompliant"`
	PaymentOnlyApplies      bool             `json:"paymentOnlyApplies"`
	PaymentOnlyRatioPercent *decimal.Decimal `json:"paymentOnlyRatioPercent,omitempty"`
	PaymentOnlyCapPercent   *decimal.Decimal `json:"paymentOnlyCapPercent,omitempty"`
	PaymentOnlyCompliant    bool             `json:"paymentOnlyCompliant"`
	ReasonCodes             []string         `json:"reasonCodes"`
	PolicyReferences        []string         `json:"policyReferences"`
}
