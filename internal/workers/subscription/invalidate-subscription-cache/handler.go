// internal/workers/subscription/invalidate-subscription-cache/handler.go
package invalidatesubscriptioncache

import (
	"context"
	"time"

	"cuidly-workers/internal/common/camunda"
	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/observability"
	"cuidly-workers/internal/store"
	"cuidly-workers/internal/subscription"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "invalidate-subscription-cache"

type Store interface {
	InvalidateSubscription(ctx context.Context, l subscription.Lookup) (bool, error)
	ResolvePlan(ctx context.Context, l subscription.Lookup, now time.Time) (subscription.Plan, subscription.Subscription, error)
}

// Handler runs after a plan change is persisted, so entitlement checks stop
// answering from the previous plan before the cache TTL runs out.
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

	dropped, err := h.store.InvalidateSubscription(ctx, lookup)
	if err != nil {
		return nil, errors.NewCacheInvalidationFailedError(lookup.String(), err)
	}
	out := &Output{Invalidated: dropped}

	if h.config.Warm {
		plan, sub, err := h.store.ResolvePlan(ctx, lookup, h.now())
		if err != nil {
			return nil, store.Classify("resolve plan", err, nil)
		}
		paid := subscription.FeaturesFor(plan).Paid
		out.Plan, out.Status, out.IsPaid = &plan, &sub.Status, &paid
	}

	h.logger.Info("subscription cache invalidated", map[string]interface{}{
		"lookup":  lookup.String(),
		"dropped": dropped,
		"warmed":  h.config.Warm,
	})
	return out, nil
}
