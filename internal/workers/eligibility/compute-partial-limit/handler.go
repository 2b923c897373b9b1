// internal/workers/eligibility/compute-partial-limit/handler.go
package computepartiallimit

import (
	"context"
	"fmt"
	"time"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/workers/eligibility/support"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "compute-partial-limit"

type Handler struct {
	config  *Config
	deps    support.Dependencies
	service *Service
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

type HandlerOptions struct {
	Config       *Config
	Dependencies support.Dependencies
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if err := opts.Dependencies.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for %s: %w", TaskType, err)
	}

	deps := opts.Dependencies
	deps.Logger = deps.Logger.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:  cfg,
		deps:    deps,
		service: NewService(deps, cfg),
		errors:  errors.NewErrorHandler(deps.Logger),
		logger:  deps.Logger,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err, startTime)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err, startTime)
		return
	}

	h.completeJob(ctx, client, job, output, startTime)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := support.DecodeVariables(h.deps.Validator, TaskType, job.GetVariables(), &input); err != nil {
		return nil, err
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, startTime time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.failJob(ctx, client, job, errors.NewCalculationFailedError(err), startTime)
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.deps.Observability.RecordJobProcessed(ctx, TaskType, "completed")
	h.deps.Observability.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.deps.Observability.RecordJobProcessed(ctx, TaskType, "failed")
	h.deps.Observability.RecordJobDuration(ctx, TaskType, time.Since(startTime), "failed")
	h.errors.HandleJobError(ctx, client, job, stdErr)
}
