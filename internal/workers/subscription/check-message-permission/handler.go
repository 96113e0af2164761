// internal/workers/subscription/check-message-permission/handler.go
package checkmessagepermission

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

const TaskType = "check-message-permission"

type Store interface {
	GetConversation(ctx context.Context, id int64) (store.Conversation, error)
	ResolvePlan(ctx context.Context, l subscription.Lookup, now time.Time) (subscription.Plan, subscription.Subscription, error)
	CountMessages(ctx context.Context, conversationID int64) (store.MessageCounts, error)
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
	sender, err := subscription.LookupFromIDs(input.NannyID, input.FamilyID)
	if err != nil {
		return nil, errors.NewInvalidLookupError(err)
	}

	conv, err := h.store.GetConversation(ctx, input.ConversationID)
	if err != nil {
		return nil, store.Classify("get conversation", err, errors.NewConversationNotFoundError(input.ConversationID))
	}
	if !participates(sender, conv) {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("%s is not part of conversation %d", sender, conv.ID))
	}

	plan, _, err := h.store.ResolvePlan(ctx, sender, h.now())
	if err != nil {
		return nil, store.Classify("resolve plan", err, nil)
	}

	check := subscription.MessageCheck{SenderPlan: plan}
	if gated(plan) {
		counts, err := h.store.CountMessages(ctx, conv.ID)
		if err != nil {
			return nil, store.Classify("count messages", err, nil)
		}
		check.NannyMessageCount = counts.Nanny
		check.FamilyResponseCount = counts.Family
	}

	d := subscription.CanNannySendMessage(check)
	metrics.RecordDecision("can_send_message", d.CanSend, string(d.Code))

	h.logger.Debug("message permission checked", map[string]interface{}{
		"conversationId": conv.ID,
		"sender":         sender.String(),
		"plan":           plan.String(),
		"canSend":        d.CanSend,
	})

	return &Output{MessageDecision: d, ConversationID: conv.ID, SenderPlan: plan}, nil
}

func participates(l subscription.Lookup, c store.Conversation) bool {
	if l.IsNanny() {
		return c.NannyID == l.ID()
	}
	return c.FamilyID == l.ID()
}

// gated reports whether the plan's messaging depends on the conversation's
// message counts.
func gated(p subscription.Plan) bool {
	f := subscription.FeaturesFor(p)
	return f.Audience != subscription.AudienceFamily && !f.UnlimitedMessages
}
