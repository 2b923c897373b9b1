// internal/workers/eligibility/evaluate-refinance-outlook/models.go
package evaluaterefinanceoutlook

import (
	"mortgage-workers/internal/eligibility"
)

type Input struct {
	RequestID string                        `json:"requestId,omitempty"`
	Scenario  eligibility.RefinanceScenario `json:"scenario"`
}

type Output struct {
	CalculationID string                        `json:"calculationId"`
	RequestID     string                        `json:"requestId,omitempty"`
	PolicyVersion string                        `json:"policyVersion"`
	Result        *eligibility.RefinanceOutlook `json:"result"`
	Cached        bool                          `json:"cached"`
}
