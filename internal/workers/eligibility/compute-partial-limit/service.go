// internal/workers/eligibility/compute-partial-limit/service.go
package computepartiallimit

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

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := s.deps.Observability.StartSpan(ctx, TaskType,
		attribute.String("property.type", string(input.Scenario.PropertyType)))
	defer span.End()

	key := ""
	if s.config.CacheTTL > 0 {
		key = s.deps.CacheKey(TaskType, input.Scenario)
		var cached Output
		if s.deps.LookupCached(ctx, TaskType, key, &cached) {
			cached.Cached = true
			cached.RequestID = input.RequestID
			s.deps.Logger.Info("partial limit served from cache", map[string]interface{}{
				"requestId":     input.RequestID,
				"calculationId": cached.CalculationID,
			})
			s.deps.Observability.RecordCalculation(ctx, TaskType, string(eligibility.BindingLimit), true)
			return &cached, nil
		}
	}

	result, err := eligibility.ComputePartialLimit(s.deps.Policy, input.Scenario)
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

	metrics.EligibilityOutcomes.WithLabelValues(TaskType, string(eligibility.BindingLimit)).Inc()
	s.deps.Observability.RecordCalculation(ctx, TaskType, string(eligibility.BindingLimit), false)

	s.deps.Logger.Info("partial limit computed", map[string]interface{}{
		"requestId":       input.RequestID,
		"calculationId":   output.CalculationID,
		"maxLoan":         result.MaxLoan.String(),
		"limitPercent":    result.LimitPercent.String(),
		"effectiveTenure": result.EffectiveTenure,
		"reasonCodes":     result.ReasonCodes,
	})

	s.deps.StoreCached(ctx, TaskType, key, output, s.config.CacheTTL)
	return output, nil
}
