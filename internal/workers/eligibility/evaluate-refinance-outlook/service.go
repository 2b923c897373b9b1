// internal/workers/eligibility/evaluate-refinance-outlook/service.go
package evaluaterefinanceoutlook

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

// outcome labels a result by whether equity can be released.
func outcome(r *eligibility.RefinanceOutlook) string {
	if r.MaxCashOut.IsPositive() {
		return "cash_out"
	}
	return "no_cash_out"
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := s.deps.Observability.StartSpan(ctx, TaskType,
		attribute.String("property.type", string(input.Scenario.PropertyType)),
		attribute.String("refinance.objective", string(input.Scenario.Objective)))
	defer span.End()

	key := ""
	if s.config.CacheTTL > 0 {
		key = s.deps.CacheKey(TaskType, input.Scenario)
		var cached Output
		if s.deps.LookupCached(ctx, TaskType, key, &cached) && cached.Result != nil {
			cached.Cached = true
			cached.RequestID = input.RequestID
			s.deps.Observability.RecordCalculation(ctx, TaskType, outcome(cached.Result), true)
			return &cached, nil
		}
	}

	result, err := eligibility.ComputeRefinanceOutlook(s.deps.Policy, input.Scenario)
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

	metrics.EligibilityOutcomes.WithLabelValues(TaskType, outcome(result)).Inc()
	s.deps.Observability.RecordCalculation(ctx, TaskType, outcome(result), false)

	s.deps.Logger.Info("refinance outlook computed", map[string]interface{}{
		"requestId":               input.RequestID,
		"calculationId":           output.CalculationID,
		"projectedMonthlySavings": result.ProjectedMonthlySavings.String(),
		"maxCashOut":              result.MaxCashOut.String(),
		"timingWindow":            string(result.TimingWindow),
	})

	s.deps.StoreCached(ctx, TaskType, key, output, s.config.CacheTTL)
	return output, nil
}
