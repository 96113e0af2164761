// internal/workers/subscription/check-conversation-limit/handler.go
package checkconversationlimit

import (
	"context"
	"fmt"
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

const TaskType = "check-conversation-limit"

type Store interface {
	GetJob(ctx context.Context, id int64) (store.Job, error)
	ResolvePlan(ctx context.Context, l subscription.Lookup, now time.Time) (subscription.Plan, subscription.Subscription, error)
	CountJobConversations(ctx context.Context, jobID int64) (int, error)
	ConversationExists(ctx context.Context, jobID, nannyID int64) (bool, error)
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

	job, err := h.store.GetJob(ctx, input.JobID)
	if err != nil {
		return nil, store.Classify("get job", err, errors.NewJobNotFoundError(input.JobID))
	}

	nannyID, err := counterpart(lookup, job, input.RecipientID)
	if err != nil {
		return nil, err
	}

	// The job owner's plan governs the cap, whoever opens the conversation.
	now := h.now()
	ownerPlan, _, err := h.store.ResolvePlan(ctx, subscription.FamilyLookup(job.FamilyID), now)
	if err != nil {
		return nil, store.Classify("resolve owner plan", err, nil)
	}

	existing, err := h.store.CountJobConversations(ctx, job.ID)
	if err != nil {
		return nil, store.Classify("count job conversations", err, nil)
	}
	connected, err := h.store.ConversationExists(ctx, job.ID, nannyID)
	if err != nil {
		return nil, store.Classify("conversation exists", err, nil)
	}

	d := subscription.CanStartConversationForJob(subscription.ConversationCheck{
		OwnerPlan:             ownerPlan,
		JobCreatedAt:          job.CreatedAt,
		ExistingConversations: existing,
		AlreadyConnected:      connected,
		Now:                   now,
	})
	metrics.RecordDecision("can_start_conversation", d.CanStart, string(d.Code))

	h.logger.Info("conversation limit checked", map[string]interface{}{
		"jobId":     job.ID,
		"requester": lookup.String(),
		"ownerPlan": ownerPlan.String(),
		"canStart":  d.CanStart,
		"code":      d.Code,
	})

	return &Output{
		ConversationDecision: d,
		JobID:                job.ID,
		OwnerPlan:            ownerPlan,
		AlreadyConnected:     connected,
	}, nil
}

// counterpart returns the nanny on the other end of the prospective
// conversation.
func counterpart(lookup subscription.Lookup, job store.Job, recipientID *int64) (int64, error) {
	if lookup.IsNanny() {
		return lookup.ID(), nil
	}
	if job.FamilyID != lookup.ID() {
		return 0, errors.NewInvalidInputError(fmt.Sprintf("job %d does not belong to family %d", job.ID, lookup.ID()))
	}
	if recipientID == nil || *recipientID <= 0 {
		return 0, errors.NewInvalidInputError("recipientId is required when a family opens the conversation")
	}
	return *recipientID, nil
}
