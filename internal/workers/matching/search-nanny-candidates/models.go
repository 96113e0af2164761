// internal/workers/matching/search-nanny-candidates/models.go
package searchnannycandidates

import (
	"cuidly-workers/internal/matching"
	"cuidly-workers/internal/search"
)

// Input filters the nanny index. With familyId set, the family's stored
// preferences fill every filter the variables leave out.
type Input struct {
	FamilyID        *int64             `json:"familyId,omitempty"`
	Location        *matching.Location `json:"location,omitempty"`
	RadiusKm        *float64           `json:"radiusKm,omitempty"`
	NannyTypes      []string           `json:"nannyTypes,omitempty"`
	ContractRegimes []string           `json:"contractRegimes,omitempty"`
	Availability    []matching.Slot    `json:"availability,omitempty"`
	HasPets         *bool              `json:"hasPets,omitempty"`
	MaxHourlyRate   *float64           `json:"maxHourlyRate,omitempty"`
	ExcludeIDs      []int64            `json:"excludeIds,omitempty"`
	Size            int                `json:"size,omitempty"`
}

type Output struct {
	NannyIDs  []int64      `json:"nannyIds"`
	Hits      []search.Hit `json:"hits"`
	TotalHits int64        `json:"totalHits"`
	TookMs    int64        `json:"tookMs"`
}
