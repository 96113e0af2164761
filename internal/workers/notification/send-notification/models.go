// internal/workers/notification/send-notification/models.go
package sendnotification

type Input struct {
	NannyID          *int64                 `json:"nannyId"`
	FamilyID         *int64                 `json:"familyId"`
	NotificationType string                 `json:"notificationType"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"`
	Channels       []string `json:"channels"`
	MessageIDs     []string `json:"messageIds,omitempty"`
	SentAt         string   `json:"sentAt"`
}

// Notification types
const (
	TypeJobExpiring              = "job_expiring"
	TypeJobExpired               = "job_expired"
	TypeJobLimitReached          = "job_limit_reached"
	TypeConversationLimitReached = "conversation_limit_reached"
	TypeFamilyReplied            = "family_replied"
	TypeBoostAvailable           = "boost_available"
	TypePlanDowngraded           = "plan_downgraded"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusDisabled = "disabled"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)
