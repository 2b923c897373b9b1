// internal/policy/policy.go
package policy

import (
	"github.com/shopspring/decimal"
)

// PropertyType identifies the regulatory class of the property being financed.
type PropertyType string

const (
	ResidentialSubsidized PropertyType = "residential_subsidized"
	PrivateResidential    PropertyType = "private_residential"
	ExecutiveCondominium  PropertyType = "executive_condominium"
	Commercial            PropertyType = "commercial"
)

// PropertyTypes lists every property type a policy document must describe.
var PropertyTypes = []PropertyType{
	ResidentialSubsidized,
	PrivateResidential,
	ExecutiveCondominium,
	Commercial,
}

// IncomeType is the source category of an applicant's income.
type IncomeType string

const (
	IncomeFixed        IncomeType = "fixed"
	IncomeVariable     IncomeType = "variable"
	IncomeSelfEmployed IncomeType = "self_employed"
	IncomeRental       IncomeType = "rental"
	IncomeNone         IncomeType = "none"
)

// IncomeTypes lists every income type a policy document must recognise.
var IncomeTypes = []IncomeType{
	IncomeFixed,
	IncomeVariable,
	IncomeSelfEmployed,
	IncomeRental,
	IncomeNone,
}

type StressClass string

const (
	StressResidential    StressClass = "residential"
	StressNonResidential StressClass = "non_residential"
)

// AgeWeighting selects how the ages of joint applicants are combined.
type AgeWeighting string

const (
	WeightByIncome AgeWeighting = "income_weighted"
	WeightEvenly   AgeWeighting = "even_split"
)

type RoundingMode string

const (
	RoundDown RoundingMode = "down"
	RoundUp   RoundingMode = "up"
)

// TierRank is the borrowing tier selected by the number of properties
// the applicant already owns.
type TierRank int

const (
	FirstProperty TierRank = iota
	SecondProperty
	ThirdPlusProperty
)

func (r TierRank) String() string {
	switch r {
	case FirstProperty:
		return "first"
	case SecondProperty:
		return "second"
	default:
		return "third"
	}
}

// RankFor maps an existing-property count to its tier. Counts of two or more
// share the lowest tier.
func RankFor(existingProperties int) TierRank {
	switch {
	case existingProperties <= 0:
		return FirstProperty
	case existingProperties == 1:
		return SecondProperty
	default:
		return ThirdPlusProperty
	}
}

// Tier holds the borrowing limit and minimum cash percentages of one tier.
type Tier struct {
	LimitPercent          decimal.Decimal
	ReducedLimitPercent   decimal.Decimal
	MinCashPercent        decimal.Decimal
	ReducedMinCashPercent decimal.Decimal
}

// PropertyRule holds the per-type tenure caps and servicing rules.
type PropertyRule struct {
	StandardTenureYears     int
	ReductionThresholdYears int
	StressClass             StressClass
	PaymentOnlyRatioApplies bool
	AlternateFundsAllowed   bool
	// TenureReference cites the regulation behind the tenure cap.
	TenureReference string
	Refinance       RefinanceRule
}

// RefinanceRule caps a refinancing loan as a percentage of property value.
type RefinanceRule struct {
	LimitPercent           decimal.Decimal
	InvestmentLimitPercent decimal.Decimal
	CashOutAllowed         bool
}

// Limit returns the refinancing limit for owner-occupied or investment use.
func (r RefinanceRule) Limit(investment bool) decimal.Decimal {
	if investment {
		return r.InvestmentLimitPercent
	}
	return r.LimitPercent
}

// TimingWindows are the lock-in thresholds, in months, that bucket the
// time left before a refinance can happen without penalty.
type TimingWindows struct {
	ImmediateMonths int
	CriticalMonths  int
	PlanningMonths  int
}

// RefinanceTerms holds the defaults used by the refinance outlook.
type RefinanceTerms struct {
	DefaultRemainingMonths int
	TenureReductionMonths  int
	MinimumTenureMonths    int
	AccruedInterestPercent decimal.Decimal
	DefaultYearsHeld       int
	Windows                TimingWindows
}

// Rounding is a single rounding directive: a unit and a direction.
type Rounding struct {
	Unit decimal.Decimal
	Mode RoundingMode
}

// Apply rounds amount to a multiple of the unit in the directive's direction.
func (r Rounding) Apply(amount decimal.Decimal) decimal.Decimal {
	units := amount.Div(r.Unit)
	if r.Mode == RoundUp {
		units = units.Ceil()
	} else {
		units = units.Floor()
	}
	return units.Mul(r.Unit)
}

// CommitmentEstimation holds the rates used to turn facility balances and
// limits into monthly commitments.
type CommitmentEstimation struct {
	CreditCardRatePercent decimal.Decimal
	CreditCardMinimum     decimal.Decimal
	OverdraftRatePercent  decimal.Decimal
	GuarantorRatePercent  decimal.Decimal
}

// References are the citation tokens attached to results.
type References struct {
	AllDebt           string
	PaymentOnly       string
	CommercialCash    string
	IncomeRecognition string
	AccruedInterest   string
	SaleProceedsOrder string
	ChargesPriority   string
}

// Constants is a loaded, validated policy table. It is never mutated after
// Load returns and is safe for concurrent use.
type Constants struct {
	version         string
	ageCeiling      int
	tiers           [3]Tier
	properties      map[PropertyType]PropertyRule
	stressRates     map[StressClass]decimal.Decimal
	allDebtCap      decimal.Decimal
	paymentOnlyCap  decimal.Decimal
	recognition     map[IncomeType]decimal.Decimal
	commitments     CommitmentEstimation
	weighting       AgeWeighting
	loanRounding    Rounding
	fundsRounding   Rounding
	paymentRounding Rounding
	references      References
	refinance       RefinanceTerms
	assumedRates    map[StressClass]decimal.Decimal
	targetRates     map[StressClass]decimal.Decimal
}

func (c *Constants) Version() string { return c.version }

func (c *Constants) AgeCeiling() int { return c.ageCeiling }

// Tier returns the tier and its rank for the given existing-property count.
func (c *Constants) Tier(existingProperties int) (Tier, TierRank) {
	rank := RankFor(existingProperties)
	return c.tiers[rank], rank
}

// Property returns the rule for a property type and whether it is known.
func (c *Constants) Property(t PropertyType) (PropertyRule, bool) {
	rule, ok := c.properties[t]
	return rule, ok
}

// StressRate returns the floor annual rate, in percent, for the property type.
func (c *Constants) StressRate(t PropertyType) decimal.Decimal {
	rule, ok := c.properties[t]
	if !ok {
		return decimal.Zero
	}
	return c.stressRates[rule.StressClass]
}

func (c *Constants) AllDebtCapPercent() decimal.Decimal { return c.allDebtCap }

func (c *Constants) PaymentOnlyCapPercent() decimal.Decimal { return c.paymentOnlyCap }

// RecognitionPercent returns the share of declared income that counts
// towards servicing, and whether the income type is known.
func (c *Constants) RecognitionPercent(t IncomeType) (decimal.Decimal, bool) {
	rate, ok := c.recognition[t]
	return rate, ok
}

func (c *Constants) Commitments() CommitmentEstimation { return c.commitments }

func (c *Constants) AgeWeighting() AgeWeighting { return c.weighting }

func (c *Constants) LoanRounding() Rounding { return c.loanRounding }

func (c *Constants) FundsRounding() Rounding { return c.fundsRounding }

func (c *Constants) PaymentRounding() Rounding { return c.paymentRounding }

func (c *Constants) References() References { return c.references }

func (c *Constants) Refinance() RefinanceTerms { return c.refinance }

// AssumedCurrentRate is the rate used for an existing loan whose rate was
// not supplied.
func (c *Constants) AssumedCurrentRate(t PropertyType) decimal.Decimal {
	return c.classRate(c.assumedRates, t)
}

// TargetRate is the package rate a refinance is quoted against.
func (c *Constants) TargetRate(t PropertyType) decimal.Decimal {
	return c.classRate(c.targetRates, t)
}

func (c *Constants) classRate(rates map[StressClass]decimal.Decimal, t PropertyType) decimal.Decimal {
	rule, ok := c.properties[t]
	if !ok {
		return decimal.Zero
	}
	return rates[rule.StressClass]
}
