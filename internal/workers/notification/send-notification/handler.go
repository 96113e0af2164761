// internal/workers/notification/send-notification/handler.go
package sendnotification

import (
	"context"
	stderrors "errors"
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
	"github.com/google/uuid"
)

const TaskType = "send-notification"

type ContactStore interface {
	GetContact(ctx context.Context, l subscription.Lookup) (store.Contact, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config *Config
	store  ContactStore
	email  EmailSender
	sms    SMSSender
	runner *camunda.Runner
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

// NewHandler wires the worker. email or sms may be nil when the channel is
// not configured.
func NewHandler(config *Config, st ContactStore, email EmailSender, sms SMSSender, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  st,
		email:  email,
		sms:    sms,
		runner: camunda.NewRunner(TaskType, config.Timeout, inputSchema, obs, log),
		logger: log,
		now:    time.Now,
		newID:  uuid.NewString,
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

	tmpl, ok := templates[input.NotificationType]
	if !ok {
		return nil, errors.NewNotificationTypeUnknownError(input.NotificationType)
	}

	out := &Output{
		NotificationID: h.newID(),
		Channels:       []string{},
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	contact, err := h.store.GetContact(ctx, lookup)
	if stderrors.Is(err, store.ErrNotFound) {
		h.logger.Warn("recipient not found, notification dropped", map[string]interface{}{
			"recipient": lookup.String(),
			"type":      input.NotificationType,
		})
		out.Status = StatusDisabled
		return out, nil
	}
	if err != nil {
		return nil, store.Classify("get contact", err, nil)
	}

	data := make(map[string]interface{}, len(input.Metadata)+1)
	for k, v := range input.Metadata {
		data[k] = v
	}
	if _, ok := data["name"]; !ok {
		data["name"] = contact.Name
	}
	subject := render(tmpl.Subject, data)
	body := render(tmpl.Body, data)

	if h.emailEnabled() && contact.Email != "" {
		id, err := h.email.SendEmail(ctx, contact.Email, subject, body)
		if err != nil {
			metrics.NotificationsSent.WithLabelValues(ChannelEmail, "failed").Inc()
			return nil, errors.NewNotificationSendFailedError(ChannelEmail, err)
		}
		metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusSent).Inc()
		out.Channels = append(out.Channels, ChannelEmail)
		out.MessageIDs = append(out.MessageIDs, id)
	}

	if h.smsEnabled() && contact.Phone != "" && priorityRank(input.Priority) >= priorityRank(h.config.SMSPriority) {
		id, err := h.sms.SendSMS(ctx, contact.Phone, body)
		switch {
		case err != nil && len(out.Channels) > 0:
			// the email already went out; retrying would send it twice
			metrics.NotificationsSent.WithLabelValues(ChannelSMS, "failed").Inc()
			h.logger.Error("sms delivery failed", map[string]interface{}{
				"recipient": lookup.String(),
				"error":     err.Error(),
			})
			out.Status = StatusPartial
			return out, nil
		case err != nil:
			metrics.NotificationsSent.WithLabelValues(ChannelSMS, "failed").Inc()
			return nil, errors.NewNotificationSendFailedError(ChannelSMS, err)
		}
		metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusSent).Inc()
		out.Channels = append(out.Channels, ChannelSMS)
		out.MessageIDs = append(out.MessageIDs, id)
	}

	if len(out.Channels) == 0 {
		out.Status = StatusDisabled
	} else {
		out.Status = StatusSent
	}

	h.logger.Info("notification dispatched", map[string]interface{}{
		"notificationId": out.NotificationID,
		"recipient":      lookup.String(),
		"type":           input.NotificationType,
		"channels":       out.Channels,
	})
	return out, nil
}

func (h *Handler) emailEnabled() bool { return h.config.EmailEnabled && h.email != nil }
func (h *Handler) smsEnabled() bool   { return h.config.SMSEnabled && h.sms != nil }

func priorityRank(p string) int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	default:
		return 1
	}
}
