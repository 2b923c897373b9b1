// internal/workers/eligibility/compute-full-eligibility/models.go
package computefulleligibility

import "mortgage-workers/internal/eligibility"

type Input struct {
	RequestID string               `json:"requestId,omitempty"`
	Scenario  eligibility.Scenario `json:"scenario"`
}

type Output struct {
	CalculationID string                       `json:"calculationId"`
	RequestID     string                       `json:"requestId,omitempty"`
	PolicyVersion string                       `json:"policyVersion"`
	Result        *eligibility.FullEligibility `json:"result"`
	Cached        bool                         `json:"cached"`
}
