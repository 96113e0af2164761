// internal/workers/subscription/check-job-expiration/handler.go
package checkjobexpiration

import (
	"context"
	"time"

	"cuidly-workers/internal/common/camunda"
	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/metrics"
	"cuidly-workers/internal/common/observability"
	"cuidly-workers/internal/store"
	"cuidly-workers/internal/subscription"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "check-job-expiration"

type Store interface {
	GetJob(ctx context.Context, id int64) (store.Job, error)
	ResolvePlan(ctx context.Context, l subscription.Lookup, now time.Time) (subscription.Plan, subscription.Subscription, error)
}

type Handler struct {
	config *Config
	store  Store
	runner *camunda.Runner
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, st Store, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  st,
		runner: camunda.NewRunner(TaskType, config.Timeout, inputSchema, obs, log),
		logger: log,
		now:    time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, func(ctx context.Context, job entities.Job) (interface{}, error) {
		var input Input
		if err := camunda.Decode(job, &input); err != nil {
			return nil, err
		}
		return h.execute(ctx, &input)
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	job, err := h.store.GetJob(ctx, input.JobID)
	if err != nil {
		return nil, store.Classify("get job", err, errors.NewJobNotFoundError(input.JobID))
	}

	now := h.now()
	ownerPlan, _, err := h.store.ResolvePlan(ctx, subscription.FamilyLookup(job.FamilyID), now)
	if err != nil {
		return nil, store.Classify("resolve owner plan", err, nil)
	}

	st := subscription.IsJobExpired(ownerPlan, job.CreatedAt, now)
	metrics.RecordDecision("job_expiration", !st.IsExpired, string(st.Code))

	return &Output{
		ExpirationStatus: st,
		JobID:            job.ID,
		JobStatus:        job.Status,
		OwnerPlan:        ownerPlan,
	}, nil
}
