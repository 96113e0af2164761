// internal/workers/subscription/check-boost-eligibility/handler.go
package checkboosteligibility

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

const TaskType = "check-boost-eligibility"

type Store interface {
	ResolvePlan(ctx context.Context, l subscription.Lookup, now time.Time) (subscription.Plan, subscription.Subscription, error)
	CountFamilyBoosts(ctx context.Context, familyID int64, start, end time.Time) (int, error)
	LastNannyBoost(ctx context.Context, nannyID int64) (*time.Time, error)
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

	now := h.now()
	plan, sub, err := h.store.ResolvePlan(ctx, lookup, now)
	if err != nil {
		return nil, store.Classify("resolve plan", err, nil)
	}

	check := subscription.BoostCheck{Plan: plan, Now: now}
	switch subscription.FeaturesFor(plan).BoostWindow {
	case subscription.BoostPerBillingCycle:
		// A plan that fell back to free has no cycle of its own.
		if sub.Plan != plan || sub.CurrentPeriodStart == nil || sub.CurrentPeriodEnd == nil {
			break
		}
		check.CurrentPeriodStart, check.CurrentPeriodEnd = sub.CurrentPeriodStart, sub.CurrentPeriodEnd
		used, err := h.store.CountFamilyBoosts(ctx, lookup.ID(), *sub.CurrentPeriodStart, *sub.CurrentPeriodEnd)
		if err != nil {
			return nil, store.Classify("count family boosts", err, nil)
		}
		check.BoostsInPeriod = used
	case subscription.BoostRollingWeek:
		last, err := h.store.LastNannyBoost(ctx, lookup.ID())
		if err != nil {
			return nil, store.Classify("last nanny boost", err, nil)
		}
		check.LastBoostAt = last
	}

	d := subscription.CanUseBoost(check)
	metrics.RecordDecision("can_use_boost", d.CanUse, string(d.Code))

	h.logger.Info("boost eligibility checked", map[string]interface{}{
		"lookup": lookup.String(),
		"plan":   plan.String(),
		"canUse": d.CanUse,
		"code":   d.Code,
	})
	return &Output{BoostDecision: d, Plan: plan}, nil
}
