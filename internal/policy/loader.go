// internal/policy/loader.go
package policy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaDocument string

//go:embed default_policy.json
var defaultDocument []byte

// LoadError lists every problem found in a policy document.
type LoadError struct {
	Issues []string
	Err    error
}

func (e *LoadError) Error() string {
	if len(e.Issues) == 0 && e.Err != nil {
		return fmt.Sprintf("policy load failed: %v", e.Err)
	}
	return fmt.Sprintf("policy load failed: %s", strings.Join(e.Issues, "; "))
}

func (e *LoadError) Unwrap() error { return e.Err }

type tierDocument struct {
	LimitPercent          decimal.Decimal `json:"limit_percent"`
	ReducedLimitPercent   decimal.Decimal `json:"reduced_limit_percent"`
	MinCashPercent        decimal.Decimal `json:"min_cash_percent"`
	ReducedMinCashPercent decimal.Decimal `json:"reduced_min_cash_percent"`
}

type propertyDocument struct {
	StandardTenureYears     int    `json:"standard_tenure_years"`
	ReductionThresholdYears int    `json:"reduction_threshold_years"`
	StressClass             string `json:"stress_class"`
	PaymentOnlyRatioApplies bool   `json:"payment_only_ratio_applies"`
	AlternateFundsAllowed   bool   `json:"alternate_funds_allowed"`
	TenureReference         string `json:"tenure_reference"`
	Refinance               struct {
		LimitPercent           decimal.Decimal `json:"limit_percent"`
		InvestmentLimitPercent decimal.Decimal `json:"investment_limit_percent"`
		CashOutAllowed         bool            `json:"cash_out_allowed"`
	} `json:"refinance"`
}

type refinanceDocument struct {
	AssumedCurrentRates          map[string]decimal.Decimal `json:"assumed_current_rates"`
	TargetRates                  map[string]decimal.Decimal `json:"target_rates"`
	DefaultRemainingTenureMonths int                        `json:"default_remaining_tenure_months"`
	TenureReductionMonths        int                        `json:"tenure_reduction_months"`
	MinimumTenureMonths          int                        `json:"minimum_tenure_months"`
	AccruedInterestPercent       decimal.Decimal            `json:"accrued_interest_percent"`
	DefaultYearsHeld             int                        `json:"default_years_held"`
	TimingWindowsMonths          struct {
		Immediate int `json:"immediate"`
		Critical  int `json:"critical"`
		Planning  int `json:"planning"`
	} `json:"timing_windows_months"`
}

type roundingDocument struct {
	Unit decimal.Decimal `json:"unit"`
	Mode string          `json:"mode"`
}

type document struct {
	Version        string `json:"version"`
	AgeCeiling     int    `json:"age_ceiling"`
	BorrowingTiers struct {
		First     tierDocument `json:"first"`
		Second    tierDocument `json:"second"`
		ThirdPlus tierDocument `json:"third_plus"`
	} `json:"borrowing_tiers"`
	PropertyTypes   map[string]propertyDocument `json:"property_types"`
	StressTestRates map[string]decimal.Decimal  `json:"stress_test_rates"`
	DebtRatios      struct {
		AllDebtCapPercent     decimal.Decimal `json:"all_debt_cap_percent"`
		PaymentOnlyCapPercent decimal.Decimal `json:"payment_only_cap_percent"`
	} `json:"debt_ratios"`
	IncomeRecognition    map[string]decimal.Decimal `json:"income_recognition"`
	CommitmentEstimation struct {
		CreditCardRatePercent decimal.Decimal `json:"credit_card_rate_percent"`
		CreditCardMinimum     decimal.Decimal `json:"credit_card_minimum"`
		OverdraftRatePercent  decimal.Decimal `json:"overdraft_rate_percent"`
		GuarantorRatePercent  decimal.Decimal `json:"guarantor_rate_percent"`
	} `json:"commitment_estimation"`
	JointAgeWeighting string `json:"joint_age_weighting"`
	Rounding          struct {
		LoanAmount     roundingDocument `json:"loan_amount"`
		FundsRequired  roundingDocument `json:"funds_required"`
		MonthlyPayment roundingDocument `json:"monthly_payment"`
	} `json:"rounding"`
	Refinance        refinanceDocument `json:"refinance"`
	PolicyReferences struct {
		AllDebt           string `json:"all_debt"`
		PaymentOnly       string `json:"payment_only"`
		CommercialCash    string `json:"commercial_cash"`
		IncomeRecognition string `json:"income_recognition"`
		AccruedInterest   string `json:"accrued_interest"`
		SaleProceedsOrder string `json:"sale_proceeds_order"`
		ChargesPriority   string `json:"charges_priority"`
	} `json:"policy_references"`
}

// Load validates a policy document against the embedded schema, runs the
// cross-field checks the schema cannot express and returns the constants.
func Load(data []byte) (*Constants, error) {
	schemaLoader := gojsonschema.NewStringLoader(schemaDocument)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("failed to read policy document: %w", err)}
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := strings.TrimPrefix(desc.Context().String(), "(root).")
			issues = append(issues, fmt.Sprintf("%s: %s", field, desc.Description()))
		}
		return nil, &LoadError{Issues: issues}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("failed to decode policy document: %w", err)}
	}

	constants := build(&doc)
	if issues := checkConsistency(constants); len(issues) > 0 {
		return nil, &LoadError{Issues: issues}
	}
	return constants, nil
}

// LoadFile reads and loads a policy document from disk.
func LoadFile(path string) (*Constants, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("failed to read policy file %s: %w", path, err)}
	}
	return Load(data)
}

// Default loads the policy document compiled into the binary.
func Default() (*Constants, error) {
	return Load(defaultDocument)
}

func build(doc *document) *Constants {
	c := &Constants{
		version:    doc.Version,
		ageCeiling: doc.AgeCeiling,
		tiers: [3]Tier{
			buildTier(doc.BorrowingTiers.First),
			buildTier(doc.BorrowingTiers.Second),
			buildTier(doc.BorrowingTiers.ThirdPlus),
		},
		properties:     make(map[PropertyType]PropertyRule, len(doc.PropertyTypes)),
		stressRates:    make(map[StressClass]decimal.Decimal, len(doc.StressTestRates)),
		allDebtCap:     doc.DebtRatios.AllDebtCapPercent,
		paymentOnlyCap: doc.DebtRatios.PaymentOnlyCapPercent,
		recognition:    make(map[IncomeType]decimal.Decimal, len(doc.IncomeRecognition)),
		commitments: CommitmentEstimation{
			CreditCardRatePercent: doc.CommitmentEstimation.CreditCardRatePercent,
			CreditCardMinimum:     doc.CommitmentEstimation.CreditCardMinimum,
			OverdraftRatePercent:  doc.CommitmentEstimation.OverdraftRatePercent,
			GuarantorRatePercent:  doc.CommitmentEstimation.GuarantorRatePercent,
		},
		weighting:       AgeWeighting(doc.JointAgeWeighting),
		loanRounding:    buildRounding(doc.Rounding.LoanAmount),
		fundsRounding:   buildRounding(doc.Rounding.FundsRequired),
		paymentRounding: buildRounding(doc.Rounding.MonthlyPayment),
		references: References{
			AllDebt:           doc.PolicyReferences.AllDebt,
			PaymentOnly:       doc.PolicyReferences.PaymentOnly,
			CommercialCash:    doc.PolicyReferences.CommercialCash,
			IncomeRecognition: doc.PolicyReferences.IncomeRecognition,
			AccruedInterest:   doc.PolicyReferences.AccruedInterest,
			SaleProceedsOrder: doc.PolicyReferences.SaleProceedsOrder,
			ChargesPriority:   doc.PolicyReferences.ChargesPriority,
		},
		refinance: RefinanceTerms{
			DefaultRemainingMonths: doc.Refinance.DefaultRemainingTenureMonths,
			TenureReductionMonths:  doc.Refinance.TenureReductionMonths,
			MinimumTenureMonths:    doc.Refinance.MinimumTenureMonths,
			AccruedInterestPercent: doc.Refinance.AccruedInterestPercent,
			DefaultYearsHeld:       doc.Refinance.DefaultYearsHeld,
			Windows: TimingWindows{
				ImmediateMonths: doc.Refinance.TimingWindowsMonths.Immediate,
				CriticalMonths:  doc.Refinance.TimingWindowsMonths.Critical,
				PlanningMonths:  doc.Refinance.TimingWindowsMonths.Planning,
			},
		},
		assumedRates: make(map[StressClass]decimal.Decimal, len(doc.Refinance.AssumedCurrentRates)),
		targetRates:  make(map[StressClass]decimal.Decimal, len(doc.Refinance.TargetRates)),
	}

	for name, p := range doc.PropertyTypes {
		c.properties[PropertyType(name)] = PropertyRule{
			StandardTenureYears:     p.StandardTenureYears,
			ReductionThresholdYears: p.ReductionThresholdYears,
			StressClass:             StressClass(p.StressClass),
			PaymentOnlyRatioApplies: p.PaymentOnlyRatioApplies,
			AlternateFundsAllowed:   p.AlternateFundsAllowed,
			TenureReference:         p.TenureReference,
			Refinance: RefinanceRule{
				LimitPercent:           p.Refinance.LimitPercent,
				InvestmentLimitPercent: p.Refinance.InvestmentLimitPercent,
				CashOutAllowed:         p.Refinance.CashOutAllowed,
			},
		}
	}
	for name, rate := range doc.StressTestRates {
		c.stressRates[StressClass(name)] = rate
	}
	for name, rate := range doc.IncomeRecognition {
		c.recognition[IncomeType(name)] = rate
	}
	for name, rate := range doc.Refinance.AssumedCurrentRates {
		c.assumedRates[StressClass(name)] = rate
	}
	for name, rate := range doc.Refinance.TargetRates {
		c.targetRates[StressClass(name)] = rate
	}
	return c
}

func buildTier(t tierDocument) Tier {
	return Tier{
		LimitPercent:          t.LimitPercent,
		ReducedLimitPercent:   t.ReducedLimitPercent,
		MinCashPercent:        t.MinCashPercent,
		ReducedMinCashPercent: t.ReducedMinCashPercent,
	}
}

func buildRounding(r roundingDocument) Rounding {
	return Rounding{Unit: r.Unit, Mode: RoundingMode(r.Mode)}
}

// checkConsistency covers the relations between fields: a reduced tier may
// never lend more or demand less cash than its base tier, and the limit and
// minimum cash of a tier together may not exceed the price. Investment
// refinancing never lends more than owner-occupied refinancing, and the
// refinance timing windows must widen in order.
func checkConsistency(c *Constants) []string {
	var issues []string
	hundred := decimal.NewFromInt(100)

	for rank, tier := range c.tiers {
		name := TierRank(rank).String()
		if tier.ReducedLimitPercent.GreaterThan(tier.LimitPercent) {
			issues = append(issues, fmt.Sprintf("borrowing_tiers.%s: reduced_limit_percent exceeds limit_percent", name))
		}
		if tier.ReducedMinCashPercent.LessThan(tier.MinCashPercent) {
			issues = append(issues, fmt.Sprintf("borrowing_tiers.%s: reduced_min_cash_percent is below min_cash_percent", name))
		}
		if tier.LimitPercent.Add(tier.MinCashPercent).GreaterThan(hundred) {
			issues = append(issues, fmt.Sprintf("borrowing_tiers.%s: limit_percent plus min_cash_percent exceeds 100", name))
		}
		if tier.ReducedLimitPercent.Add(tier.ReducedMinCashPercent).GreaterThan(hundred) {
			issues = append(issues, fmt.Sprintf("borrowing_tiers.%s: reduced limit plus reduced min cash exceeds 100", name))
		}
	}

	for i := 1; i < len(c.tiers); i++ {
		if c.tiers[i].LimitPercent.GreaterThan(c.tiers[i-1].LimitPercent) {
			issues = append(issues, fmt.Sprintf("borrowing_tiers.%s: limit_percent exceeds the %s tier", TierRank(i), TierRank(i-1)))
		}
	}

	for _, t := range PropertyTypes {
		rule := c.properties[t]
		if _, ok := c.stressRates[rule.StressClass]; !ok {
			issues = append(issues, fmt.Sprintf("property_types.%s: no stress_test_rates entry for %q", t, rule.StressClass))
		}
		if rule.Refinance.InvestmentLimitPercent.GreaterThan(rule.Refinance.LimitPercent) {
			issues = append(issues, fmt.Sprintf("property_types.%s: refinance investment_limit_percent exceeds limit_percent", t))
		}
	}

	for _, t := range IncomeTypes {
		if _, ok := c.recognition[t]; !ok {
			issues = append(issues, fmt.Sprintf("income_recognition: no entry for %q", t))
		}
	}

	terms := c.refinance
	if terms.MinimumTenureMonths > terms.DefaultRemainingMonths {
		issues = append(issues, "refinance: minimum_tenure_months exceeds default_remaining_tenure_months")
	}
	w := terms.Windows
	if w.ImmediateMonths > w.CriticalMonths || w.CriticalMonths > w.PlanningMonths {
		issues = append(issues, "refinance.timing_windows_months: windows must be in ascending order")
	}

	if c.paymentOnlyCap.GreaterThan(c.allDebtCap) {
		issues = append(issues, "debt_ratios: payment_only_cap_percent exceeds all_debt_cap_percent")
	}
	return issues
}
