// internal/eligibility/amortization.go
package eligibility

import (
	"math"

	"mortgage-workers/internal/policy"

	"github.com/shopspring/decimal"
)

// annuityFactor is the present value of one unit paid monthly for the given
// number of years at the annual percentage rate.
func annuityFactor(annualPercent decimal.Decimal, years int) decimal.Decimal {
	return annuityFactorMonths(annualPercent, years*12)
}

// annuityFactorMonths is annuityFactor over a tenure counted in months. The
// power term is computed in float64, the rest stays in decimal.
func annuityFactorMonths(annualPercent decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}

	monthlyRate := annualPercent.Div(hundred).Div(decimal.NewFromInt(12))
	if monthlyRate.IsZero() {
		return decimal.NewFromInt(int64(months))
	}

	r := monthlyRate.InexactFloat64()
	discount := decimal.NewFromFloat(math.Pow(1+r, -float64(months)))
	return decimal.NewFromInt(1).Sub(discount).Div(monthlyRate)
}

// monthlyPayment is the rounded level payment that repays principal over the
// tenure. A loan with no tenure left is due in full.
func monthlyPayment(c *policy.Constants, principal, annualPercent decimal.Decimal, years int) decimal.Decimal {
	return paymentOverMonths(c, principal, annualPercent, years*12)
}

func paymentOverMonths(c *policy.Constants, principal, annualPercent decimal.Decimal, months int) decimal.Decimal {
	if !principal.IsPositive() {
		return decimal.Zero
	}
	factor := annuityFactorMonths(annualPercent, months)
	if !factor.IsPositive() {
		return c.PaymentRounding().Apply(principal)
	}
	return c.PaymentRounding().Apply(principal.Div(factor))
}

// maxLoanForPayment back-solves the largest rounded loan whose payment,
// computed by monthlyPayment, stays within budget.
func maxLoanForPayment(c *policy.Constants, budget, annualPercent decimal.Decimal, years int) decimal.Decimal {
	if !budget.IsPositive() || years <= 0 {
		return decimal.Zero
	}

	loan := c.LoanRounding().Apply(budget.Mul(annuityFactor(annualPercent, years)))
	unit := c.LoanRounding().Unit
	for loan.IsPositive() && monthlyPayment(c, loan, annualPercent, years).GreaterThan(budget) {
		loan = loan.Sub(unit)
	}
	if loan.IsNegative() {
		return decimal.Zero
	}
	return loan
}

// compoundGrowth is the growth of one unit compounded monthly for the given
// number of months.
func compoundGrowth(annualPercent decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.NewFromInt(1)
	}
	r := annualPercent.Div(hundred).Div(decimal.NewFromInt(12)).InexactFloat64()
	return decimal.NewFromFloat(math.Pow(1+r, float64(months)))
}
