// internal/workers/subscription/invalidate-subscription-cache/models.go
package invalidatesubscriptioncache

import "cuidly-workers/internal/subscription"

type Input struct {
	NannyID  *int64 `json:"nannyId"`
	FamilyID *int64 `json:"familyId"`
}

// Output reports the cache state and, when warming is on, the plan the next
// entitlement check will see.
type Output struct {
	Invalidated bool                 `json:"invalidated"`
	Plan        *subscription.Plan   `json:"plan,omitempty"`
	Status      *subscription.Status `json:"status,omitempty"`
	IsPaid      *bool                `json:"isPaid,omitempty"`
}
