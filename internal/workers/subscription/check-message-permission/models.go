// internal/workers/subscription/check-message-permission/models.go
package checkmessagepermission

import "cuidly-workers/internal/subscription"

type Input struct {
	NannyID        *int64 `json:"nannyId"`
	FamilyID       *int64 `json:"familyId"`
	ConversationID int64  `json:"conversationId"`
}

type Output struct {
	subscription.MessageDecision
	ConversationID int64             `json:"conversationId"`
	SenderPlan     subscription.Plan `json:"senderPlan"`
}
