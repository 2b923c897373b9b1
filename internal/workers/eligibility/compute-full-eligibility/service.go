// internal/workers/eligibility/compute-full-eligibility/service.go
package computefulleligibility

import (
	"context"

	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/eligibility"
	"mortgage-workers/internal/workers/eligibility/support"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type Service struct {
	config *Config
	deps   support.Dependencies
}

func NewService(deps support.Dependencies, config *Config) *Service {
	return &Service{config: config, deps: deps}
}

// Execute computes the income-bounded loan ceiling for the scenario. A
// cached result for the same scenario and policy version is returned as is,
// flagged Cached.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := s.deps.Observability.StartSpan(ctx, TaskType,
		attribute.String("property.type", string(input.Scenario.PropertyType)),
		attribute.Int("applicants", len(input.Scenario.Applicants)))
	defer span.End()

	key := ""
	if s.config.CacheTTL > 0 {
		key = s.deps.CacheKey(TaskType, input.Scenario)
		var cached Output
		if s.deps.LookupCached(ctx, TaskType, key, &cached) && cached.Result != nil {
			cached.Cached = true
			cached.RequestID = input.RequestID
			s.deps.Logger.Info("full eligibility served from cache", map[string]interface{}{
				"requestId":         input.RequestID,
				"calculationId":     cached.CalculationID,
				"bindingConstraint": string(cached.Result.BindingConstraint),
			})
			s.deps.Observability.RecordCalculation(ctx, TaskType, string(cached.Result.BindingConstraint), true)
			return &cached, nil
		}
	}

	result, err := eligibility.ComputeFullEligibility(s.deps.Policy, input.Scenario)
	if err != nil {
		span.RecordError(err)
		return nil, support.CalculationError(TaskType, err)
	}

	output := &Output{
		CalculationID: uuid.NewString(),
		RequestID:     input.RequestID,
		PolicyVersion: s.deps.Policy.Version(),
		Result:        result,
	}

	binding := string(result.BindingConstraint)
	span.SetAttributes(attribute.String("binding.constraint", binding))
	metrics.EligibilityOutcomes.WithLabelValues(TaskType, binding).Inc()
	s.deps.Observability.RecordCalculation(ctx, TaskType, binding, false)

	s.deps.Logger.Info("full eligibility computed", map[string]interface{}{
		"requestId":         input.RequestID,
		"calculationId":     output.CalculationID,
		"maxLoan":           result.MaxLoan.String(),
		"bindingConstraint": binding,
		"recognizedIncome":  result.RecognizedIncome.String(),
		"effectiveAge":      result.EffectiveAge,
		"reasonCodes":       result.ReasonCodes,
	})

	s.deps.StoreCached(ctx, TaskType, key, output, s.config.CacheTTL)
	return output, nil
}
