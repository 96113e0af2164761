// internal/workers/matching/rank-candidates/models.go
package rankcandidates

import "cuidly-workers/internal/matching"

// Input names the job to rank for. Without nannyIds the candidate pool is
// prefetched from the search index using the family's preferences.
type Input struct {
	JobID             int64   `json:"jobId"`
	NannyIDs          []int64 `json:"nannyIds,omitempty"`
	MaxItems          int     `json:"maxItems,omitempty"`
	IncludeIneligible bool    `json:"includeIneligible,omitempty"`
}

type RankedCandidate struct {
	Position           int                `json:"position"`
	NannyID            int64              `json:"nannyId"`
	Score              int                `json:"score"`
	IsEligible         bool               `json:"isEligible"`
	EliminationReasons []string           `json:"eliminationReasons"`
	Breakdown          matching.Breakdown `json:"breakdown"`
	DistanceKm         *float64           `json:"distanceKm,omitempty"`
	HasActiveBoost     bool               `json:"hasActiveBoost"`
	IsHighlighted      bool               `json:"isHighlighted"`
}

type Output struct {
	JobID         int64             `json:"jobId"`
	Candidates    []RankedCandidate `json:"candidates"`
	TotalScored   int               `json:"totalScored"`
	EligibleCount int               `json:"eligibleCount"`
	Source        string            `json:"source"`
}

const (
	SourceInput  = "input"
	SourceSearch = "search"
)
