// internal/workers/subscription/check-conversation-limit/models.go
package checkconversationlimit

import "cuidly-workers/internal/subscription"

// Input identifies who opens the conversation and on which job. A nanny
// applying to a job sends nannyId; a family reaching out about its own job
// sends familyId and the nanny as recipientId.
type Input struct {
	NannyID     *int64 `json:"nannyId"`
	FamilyID    *int64 `json:"familyId"`
	JobID       int64  `json:"jobId"`
	RecipientID *int64 `json:"recipientId,omitempty"`
}

type Output struct {
	subscription.ConversationDecision
	JobID            int64             `json:"jobId"`
	OwnerPlan        subscription.Plan `json:"ownerPlan"`
	AlreadyConnected bool              `json:"alreadyConnected"`
}
