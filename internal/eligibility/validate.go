// internal/eligibility/validate.go
package eligibility

import (
	"errors"
	"fmt"

	"mortgage-workers/internal/policy"

	"github.com/shopspring/decimal"
)

const (
	MinApplicantAge = 18
	MaxApplicantAge = 75
	MaxApplicants   = 2
)

// ErrInvalidInput is wrapped by every ValidationError.
var ErrInvalidInput = errors.New("invalid calculation input")

// ValidationError names the offending input field by its JSON path.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var hundred = decimal.NewFromInt(100)

func validateScenario(c *policy.Constants, s Scenario, requireIncome bool) error {
	if !s.PropertyPrice.IsPositive() {
		return invalid("propertyPrice", "must be greater than zero")
	}
	if _, ok := c.Property(s.PropertyType); !ok {
		return invalid("propertyType", "unknown property type %q", s.PropertyType)
	}
	if s.ExistingProperties < 0 {
		return invalid("existingProperties", "must not be negative")
	}
	if s.QuotedRate != nil && (s.QuotedRate.IsNegative() || s.QuotedRate.GreaterThan(hundred)) {
		return invalid("quotedRate", "must be between 0 and 100 percent")
	}

	switch n := len(s.Applicants); {
	case n == 0:
		return invalid("applicants", "at least one applicant is required")
	case n > MaxApplicants:
		return invalid("applicants", "at most %d applicants are supported", MaxApplicants)
	}

	for i, a := range s.Applicants {
		if err := validateApplicant(c, a, fmt.Sprintf("applicants[%d]", i)); err != nil {
			return err
		}
	}

	if requireIncome && !s.HasIncome() {
		return invalid("applicants[0].monthlyIncome", "income is required for a full eligibility calculation")
	}
	return nil
}

func validateApplicant(c *policy.Constants, a Applicant, path string) error {
	if a.Age < MinApplicantAge || a.Age > MaxApplicantAge {
		return invalid(path+".age", "must be between %d and %d", MinApplicantAge, MaxApplicantAge)
	}

	if a.MonthlyIncome != nil {
		if a.MonthlyIncome.IsNegative() {
			return invalid(path+".monthlyIncome", "must not be negative")
		}
		if a.IncomeType == "" {
			return invalid(path+".incomeType", "is required when monthlyIncome is given")
		}
	}
	if a.IncomeType != "" {
		if _, ok := c.RecognitionPercent(a.IncomeType); !ok {
			return invalid(path+".incomeType", "unknown income type %q", a.IncomeType)
		}
	}

	if a.Commitments.MonthlyDebt.IsNegative() {
		return invalid(path+".commitments.monthlyDebt", "must not be negative")
	}
	lists := []struct {
		name   string
		values []decimal.Decimal
	}{
		{"creditCardBalances", a.Commitments.CreditCardBalances},
		{"overdraftLimits", a.Commitments.OverdraftLimits},
		{"guarantorInstalments", a.Commitments.GuarantorInstalments},
	}
	for _, l := range lists {
		for j, v := range l.values {
			if v.IsNegative() {
				return invalid(fmt.Sprintf("%s.commitments.%s[%d]", path, l.name, j), "must not be negative")
			}
		}
	}
	return nil
}
