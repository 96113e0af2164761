// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import "cuidly-workers/internal/matching"

// Input carries the job side and the nanny side either inline or by id.
// Inline data wins when both are present.
type Input struct {
	JobID    *int64                 `json:"jobId,omitempty"`
	NannyID  *int64                 `json:"nannyId,omitempty"`
	Job      *matching.JobData      `json:"job,omitempty"`
	Family   *matching.FamilyData   `json:"family,omitempty"`
	Children []matching.ChildData   `json:"children,omitempty"`
	Nanny    *matching.NannyProfile `json:"nanny,omitempty"`
}

type Output struct {
	matching.Result
	JobID int64 `json:"jobId"`
}
