// internal/workers/subscription/get-plan-limits/models.go
package getplanlimits

import (
	"time"

	"cuidly-workers/internal/subscription"
)

type Input struct {
	NannyID  *int64 `json:"nannyId"`
	FamilyID *int64 `json:"familyId"`
}

type Output struct {
	Plan             subscription.Plan                 `json:"plan"`
	Status           subscription.Status               `json:"status"`
	IsPaid           bool                              `json:"isPaid"`
	Features         subscription.PlanFeatures         `json:"features"`
	CurrentPeriodEnd *time.Time                        `json:"currentPeriodEnd,omitempty"`
	JobCreation      *subscription.JobCreationDecision `json:"jobCreation,omitempty"`
}
