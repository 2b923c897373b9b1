// internal/eligibility/rules.go
package eligibility

import (
	"fmt"

	"mortgage-workers/internal/policy"
)

// ruleInput is what the reason rules read. afford, readiness and refinance
// are nil for calculations that do not produce them.
type ruleInput struct {
	constants *policy.Constants
	scenario  Scenario
	limit     *limitAssessment
	afford    *affordability
	binding   BindingConstraint
	readiness *Readiness
	refinance *refinanceAssessment
}

// reasonRule contributes at most one reason code and one policy reference.
type reasonRule struct {
	name  string
	apply func(in *ruleInput) (code, reference string)
}

func evaluateRules(rules []reasonRule, in *ruleInput) ([]string, []string) {
	codes := []string{}
	refs := []string{}
	seen := make(map[string]bool)

	for _, rule := range rules {
		code, ref := rule.apply(in)
		if code != "" {
			codes = append(codes, code)
		}
		if ref != "" && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return codes, refs
}

var (
	allDebtFrameworkRule = reasonRule{
		name: "all_debt_framework",
		apply: func(in *ruleInput) (string, string) {
			return "", in.constants.References().AllDebt
		},
	}

	paymentOnlyFrameworkRule = reasonRule{
		name: "payment_only_framework",
		apply: func(in *ruleInput) (string, string) {
			rule, _ := in.constants.Property(in.scenario.PropertyType)
			if !rule.PaymentOnlyRatioApplies {
				return "", ""
			}
			return "", in.constants.References().PaymentOnly
		},
	}

	tierRule = reasonRule{
		name: "tier",
		apply: func(in *ruleInput) (string, string) {
			return fmt.Sprintf("%s_property_%s_ltv", in.limit.rank, in.limit.tier.LimitPercent), ""
		},
	}

	tenureReductionRule = reasonRule{
		name: "tenure_reduction",
		apply: func(in *ruleInput) (string, string) {
			if !in.limit.tenure.reducedByTenure {
				return "", ""
			}
			return "reduced_ltv_tenure_exceeds", ""
		},
	}

	ageReductionRule = reasonRule{
		name: "age_reduction",
		apply: func(in *ruleInput) (string, string) {
			if !in.limit.tenure.reducedByAge {
				return "", ""
			}
			return fmt.Sprintf("reduced_ltv_age_exceeds_%d", in.constants.AgeCeiling()), ""
		},
	}

	// tenureCapRule always cites the tenure regulation; the cap code is
	// left to tenureExhaustedRule once no tenure remains.
	tenureCapRule = reasonRule{
		name: "tenure_cap",
		apply: func(in *ruleInput) (string, string) {
			ref := in.limit.rule.TenureReference
			if in.limit.tenure.effective <= 0 {
				return "", ref
			}
			if in.limit.tenure.source == CappedByAge {
				return "tenure_capped_by_age", ref
			}
			return "tenure_capped_by_property_type", ref
		},
	}

	tenureExhaustedRule = reasonRule{
		name: "tenure_exhausted",
		apply: func(in *ruleInput) (string, string) {
			var tenure tenureAssessment
			if in.limit != nil {
				tenure = in.limit.tenure
			} else {
				tenure = in.afford.tenure
			}
			if tenure.effective > 0 {
				return "", ""
			}
			return "tenure_exhausted", ""
		},
	}

	cashRule = reasonRule{
		name: "cash",
		apply: func(in *ruleInput) (string, string) {
			if !in.limit.rule.AlternateFundsAllowed {
				return "commercial_100_percent_cash", in.constants.References().CommercialCash
			}
			return fmt.Sprintf("min_cash_%s_percent", in.limit.breakdown.MinCashPercent), ""
		},
	}

	noIncomeRule = reasonRule{
		name: "no_income",
		apply: func(in *ruleInput) (string, string) {
			if !in.afford.noIncome() {
				return "", ""
			}
			return "no_income", ""
		},
	}

	incomeRecognitionRule = reasonRule{
		name: "income_recognition",
		apply: func(in *ruleInput) (string, string) {
			if !in.afford.variableIncome {
				return "", ""
			}
			return "variable_income_recognition", in.constants.References().IncomeRecognition
		},
	}

	quotedRateRule = reasonRule{
		name: "quoted_rate",
		apply: func(in *ruleInput) (string, string) {
			if !in.afford.quotedRate {
				return "", ""
			}
			return "stress_rate_quoted_applied", ""
		},
	}

	headroomRule = reasonRule{
		name: "all_debt_headroom",
		apply: func(in *ruleInput) (string, string) {
			if in.afford.noIncome() {
				return "", ""
			}
			if in.afford.allDebtCap(in.constants).GreaterThan(in.afford.commitments) {
				return "", ""
			}
			return "tdsr_headroom_exhausted", ""
		},
	}

	bindingRule = reasonRule{
		name: "binding_constraint",
		apply: func(in *ruleInput) (string, string) {
			switch in.binding {
			case BindingAllDebt:
				return "tdsr_binding", ""
			case BindingPaymentOnly:
				return "msr_binding", ""
			default:
				return "ltv_binding", ""
			}
		},
	}

	allDebtOutcomeRule = reasonRule{
		name: "all_debt_outcome",
		apply: func(in *ruleInput) (string, string) {
			if in.readiness.AllDebtCompliant {
				return "tdsr_within_limit", ""
			}
			return "tdsr_exceeded", ""
		},
	}

	paymentOnlyOutcomeRule = reasonRule{
		name: "payment_only_outcome",
		apply: func(in *ruleInput) (string, string) {
			if !in.readiness.PaymentOnlyApplies {
				return "", ""
			}
			if in.readiness.PaymentOnlyCompliant {
				return "msr_within_limit", ""
			}
			return "msr_exceeded", ""
		},
	}
)

var partialRules = []reasonRule{
	allDebtFrameworkRule,
	paymentOnlyFrameworkRule,
	tierRule,
	tenureReductionRule,
	ageReductionRule,
	tenureCapRule,
	tenureExhaustedRule,
	cashRule,
}

var fullRules = append(append([]reasonRule{}, partialRules...),
	noIncomeRule,
	incomeRecognitionRule,
	quotedRateRule,
	headroomRule,
	bindingRule,
)

var readinessRules = []reasonRule{
	allDebtFrameworkRule,
	paymentOnlyFrameworkRule,
	noIncomeRule,
	incomeRecognitionRule,
	quotedRateRule,
	tenureExhaustedRule,
	allDebtOutcomeRule,
	paymentOnlyOutcomeRule,
}
