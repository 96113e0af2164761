package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/metrics"
	"cuidly-workers/internal/common/observability"
	"cuidly-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ReportTimeout bounds the complete, fail and throw commands. They run on
// their own context so a job that used up its deadline is still reported.
const ReportTimeout = 10 * time.Second

// JobFunc executes one job and returns the variables to complete it with.
type JobFunc func(ctx context.Context, job entities.Job) (interface{}, error)

// Runner wraps a JobFunc with the plumbing every worker shares: input schema
// validation, a deadline, tracing, metrics, and completion or error routing.
type Runner struct {
	TaskType string
	Timeout  time.Duration
	Schema   *validation.Schema
	Errors   *errors.ErrorHandler
	Obs      *observability.Observability
	Logger   logger.Logger
}

func NewRunner(taskType string, timeout time.Duration, schema *validation.Schema, obs *observability.Observability, log logger.Logger) *Runner {
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Runner{
		TaskType: taskType,
		Timeout:  timeout,
		Schema:   schema,
		Errors:   errors.NewErrorHandler(log),
		Obs:      obs,
		Logger:   log,
	}
}

func (r *Runner) Run(client worker.JobClient, job entities.Job, fn JobFunc) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	ctx, span := r.Obs.StartSpan(ctx, r.TaskType,
		attribute.Int64("job.key", job.Key),
		attribute.Int64("process.instance.key", job.ProcessInstanceKey),
	)
	defer span.End()

	r.Logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
		"retries":            job.Retries,
	})

	output, err := r.execute(ctx, job, fn)
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(r.TaskType).Observe(elapsed.Seconds())

	reportCtx, reportCancel := context.WithTimeout(context.Background(), ReportTimeout)
	defer reportCancel()
	reportCtx = trace.ContextWithSpan(reportCtx, span)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		bpmnErr := r.Errors.HandleJobError(reportCtx, client, job, err)
		metrics.WorkerJobsFailed.WithLabelValues(r.TaskType, bpmnErr.Code).Inc()
		r.Obs.RecordJob(reportCtx, r.TaskType, "failed", elapsed)
		return
	}

	// The broker re-activates the job after its timeout if completion fails.
	if err := r.complete(reportCtx, client, job, output); err != nil {
		span.RecordError(err)
		r.Logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(r.TaskType).Inc()
	r.Obs.RecordJob(reportCtx, r.TaskType, "completed", elapsed)
	r.Logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"durationMs": elapsed.Milliseconds(),
	})
}

func (r *Runner) execute(ctx context.Context, job entities.Job, fn JobFunc) (interface{}, error) {
	if err := r.Validate(job.Variables); err != nil {
		return nil, err
	}
	return fn(ctx, job)
}

// Decode unmarshals the job variables into v. A malformed payload is a
// contract violation.
func Decode(job entities.Job, v interface{}) error {
	if err := json.Unmarshal([]byte(job.Variables), v); err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return nil
}

// Validate checks raw job variables against the runner's schema.
func (r *Runner) Validate(variables string) error {
	if r.Schema == nil {
		return nil
	}
	res, err := r.Schema.Validate(variables)
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	if !res.Valid {
		return errors.NewInvalidInputError(res.Error()).
			WithMetadata("validationErrors", res.GetErrorMessages())
	}
	return nil
}

func (r *Runner) complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("build complete command: %w", err)
	}

	return WithRetry(ctx, DefaultRetryConfig, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}
