// Package support holds the plumbing shared by the eligibility job workers:
// decoding job variables, mapping calculation errors and the result cache.
package support

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"mortgage-workers/internal/common/cache"
	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/common/observability"
	"mortgage-workers/internal/common/validation"
	"mortgage-workers/internal/eligibility"
	"mortgage-workers/internal/policy"
)

// Dependencies are shared by every eligibility worker. Results, Validator
// and Observability may be nil.
type Dependencies struct {
	Policy        *policy.Constants
	Results       *cache.ResultCache
	Validator     *validation.Validator
	Observability *observability.Observability
	Logger        logger.Logger
}

func (d Dependencies) Validate() error {
	if d.Policy == nil {
		return fmt.Errorf("policy constants are required")
	}
	if d.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// DecodeVariables checks raw job variables against the task's input schema
// and decodes them into dst.
func DecodeVariables(v *validation.Validator, taskType, raw string, dst interface{}) error {
	result, err := v.ValidateInput(taskType, []byte(raw))
	if err != nil {
		return errors.NewParseError(err)
	}
	if first, ok := result.FirstError(); ok {
		metrics.InputValidationFailures.WithLabelValues(taskType, first.Field).Inc()
		return errors.NewInputValidationError(first.Field, first.Message)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return errors.NewParseError(err)
	}
	return nil
}

// CalculationError converts an engine error into a StandardError. Scenario
// field paths are reported relative to the job variables.
func CalculationError(taskType string, err error) error {
	var verr *eligibility.ValidationError
	if !stderrors.As(err, &verr) {
		return errors.NewCalculationFailedError(err)
	}

	field := verr.Field
	if !strings.HasPrefix(field, "proposedLoan") {
		field = "scenario." + field
	}
	metrics.InputValidationFailures.WithLabelValues(taskType, field).Inc()
	return errors.NewInputValidationError(field, verr.Reason)
}

// CacheKey returns the result cache key for input, or "" when the input
// cannot be keyed.
func (d Dependencies) CacheKey(taskType string, input interface{}) string {
	key, err := d.Results.Key(taskType, d.Policy.Version(), input)
	if err != nil {
		d.Logger.Warn("failed to derive cache key", map[string]interface{}{
			"taskType": taskType,
			"error":    err,
		})
		return ""
	}
	return key
}

// LookupCached reports whether dst was filled from the cache. Cache errors
// are logged and treated as misses.
func (d Dependencies) LookupCached(ctx context.Context, taskType, key string, dst interface{}) bool {
	if d.Results == nil || key == "" {
		return false
	}

	hit, err := d.Results.Get(ctx, key, dst)
	switch {
	case err != nil:
		metrics.ResultCacheLookups.WithLabelValues(taskType, "error").Inc()
		stdErr := errors.NewCacheUnavailableError(err)
		d.Logger.Warn("result cache lookup failed", map[string]interface{}{
			"taskType":  taskType,
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Details,
		})
		return false
	case hit:
		metrics.ResultCacheLookups.WithLabelValues(taskType, "hit").Inc()
		return true
	default:
		metrics.ResultCacheLookups.WithLabelValues(taskType, "miss").Inc()
		return false
	}
}

// StoreCached writes value with ttl. Failures are logged only.
func (d Dependencies) StoreCached(ctx context.Context, taskType, key string, value interface{}, ttl time.Duration) {
	if d.Results == nil || key == "" {
		return
	}
	if err := d.Results.Set(ctx, key, value, ttl); err != nil {
		stdErr := errors.NewCacheUnavailableError(err)
		d.Logger.Warn("result cache store failed", map[string]interface{}{
			"taskType":  taskType,
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Details,
		})
	}
}
