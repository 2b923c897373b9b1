// internal/workers/eligibility/evaluate-readiness/models.go
package evaluatereadiness

import (
	"mortgage-workers/internal/eligibility"

	"github.com/shopspring/decimal"
)

type Input struct {
	RequestID    string               `json:"requestId,omitempty"`
	Scenario     eligibility.Scenario `json:"scenario"`
	ProposedLoan decimal.Decimal      `json:"proposedLoan"`
}

// cacheKey excludes the request ID so repeated checks share an entry.
type cacheKey struct {
	Scenario     eligibility.Scenario `json:"scenario"`
	ProposedLoan decimal.Decimal      `json:"proposedLoan"`
}

type Output struct {
	CalculationID string                 `json:"calculationId"`
	RequestID     string                 `json:"requestId,omitempty"`
	PolicyVersion string                 `json:"policyVersion"`
	Result        *eligibility.Readiness `json:"result"`
	Cached        bool                   `json:"cached"`
}
