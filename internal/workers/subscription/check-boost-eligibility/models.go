// internal/workers/subscription/check-boost-eligibility/models.go
package checkboosteligibility

import "cuidly-workers/internal/subscription"

type Input struct {
	NannyID  *int64 `json:"nannyId"`
	FamilyID *int64 `json:"familyId"`
}

type Output struct {
	subscription.BoostDecision
	Plan subscription.Plan `json:"plan"`
}
