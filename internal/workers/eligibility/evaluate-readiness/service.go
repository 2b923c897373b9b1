// internal/workers/eligibility/evaluate-readiness/service.go
package evaluatereadiness

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

func outcome(r *eligibility.Readiness) string {
	if r.Compliant {
		return "compliant"
	}
	return "non_compliant"
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := s.deps.Observability.StartSpan(ctx, TaskType,
		attribute.String("property.type", string(input.Scenario.PropertyType)))
	defer span.End()

	key := ""
	if s.config.CacheTTL > 0 {
		key = s.deps.CacheKey(TaskType, cacheKey{Scenario: input.Scenario, ProposedLoan: input.ProposedLoan})
		var cached Output
		if s.deps.LookupCached(ctx, TaskType, key, &cached) && cached.Result != nil {
			cached.Cached = true
			cached.RequestID = input.RequestID
			s.deps.Observability.RecordCalculation(ctx, TaskType, outcome(cached.Result), true)
			return &cached, nil
		}
	}

	result, err := eligibility.EvaluateReadiness(s.deps.Policy, input.Scenario, input.ProposedLoan)
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

	fields := map[string]interface{}{
		"requestId":           input.RequestID,
		"calculationId":       output.CalculationID,
		"proposedLoan":        result.ProposedLoan.String(),
		"monthlyPayment":      result.MonthlyPayment.String(),
		"allDebtRatioPercent": result.AllDebtRatioPercent.String(),
		"compliant":           result.Compliant,
	}
	if result.PaymentOnlyRatioPercent != nil {
		fields["paymentOnlyRatioPercent"] = result.PaymentOnlyRatioPercent.String()
	}
	s.deps.Logger.Info("readiness evaluated", fields)

	s.deps.StoreCached(ctx, TaskType, key, output, s.config.CacheTTL)
	return output, nil
}
