// internal/workers/subscription/get-plan-limits/handler.go
package getplanlimits

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

const TaskType = "get-plan-limits"

type Store interface {
	ResolvePlan(ctx context.Context, l subscription.Lookup, now time.Time) (subscription.Plan, subscription.Subscription, error)
	CountActiveJobs(ctx context.Context, familyID int64) (int, error)
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
	lookup, err := subscription.LookupFromIDs(input.NannyID, input.FamilyID)
	if err != nil {
		return nil, errors.NewInvalidLookupError(err)
	}

	plan, sub, err := h.store.ResolvePlan(ctx, lookup, h.now())
	if err != nil {
		return nil, store.Classify("resolve plan", err, nil)
	}

	features := subscription.FeaturesFor(plan)
	out := &Output{
		Plan:     plan,
		Status:   sub.Status,
		IsPaid:   features.Paid,
		Features: features,
	}
	if plan == sub.Plan {
		out.CurrentPeriodEnd = sub.CurrentPeriodEnd
	}

	if lookup.IsFamily() {
		active, err := h.store.CountActiveJobs(ctx, lookup.ID())
		if err != nil {
			return nil, store.Classify("count active jobs", err, nil)
		}
		d := subscription.CanCreateJob(plan, active)
		metrics.RecordDecision("can_create_job", d.CanCreate, string(d.Code))
		out.JobCreation = &d
	}

	h.logger.Info("plan limits resolved", map[string]interface{}{
		"lookup":     lookup.String(),
		"plan":       plan.String(),
		"isPaid":     out.IsPaid,
		"storedPlan": sub.Plan.String(),
	})
	return out, nil
}
