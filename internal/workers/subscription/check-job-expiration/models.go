// internal/workers/subscription/check-job-expiration/models.go
package checkjobexpiration

import "cuidly-workers/internal/subscription"

type Input struct {
	JobID int64 `json:"jobId"`
}

type Output struct {
	subscription.ExpirationStatus
	JobID     int64             `json:"jobId"`
	JobStatus string            `json:"jobStatus"`
	OwnerPlan subscription.Plan `json:"ownerPlan"`
}
