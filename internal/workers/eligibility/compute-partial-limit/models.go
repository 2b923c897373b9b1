// internal/workers/eligibility/compute-partial-limit/models.go
package computepartiallimit

import "mortgage-workers/internal/eligibility"

type Input struct {
	RequestID string               `json:"requestId,omitempty"`
	Scenario  eligibility.Scenario `json:"scenario"`
}

type Output struct {
	CalculationID string                    `json:"calculationId"`
	RequestID     string                    `json:"requestId,omitempty"`
	PolicyVersion string                    `json:"policyVersion"`
	Result        *eligibility.PartialLimit `json:"result"`
	Cached        bool                      `json:"cached"`
}
