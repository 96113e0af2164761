// Package matching scores how well a nanny fits a family's job posting and
// orders candidate listings. It performs no I/O.
package matching

import "time"

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Slot is one availability cell, e.g. {MONDAY, MORNING}.
type Slot struct {
	Day   string `json:"day"`
	Shift string `json:"shift"`
}

type PetsComfort string

const (
	PetsYes     PetsComfort = "YES"
	PetsNo      PetsComfort = "NO"
	PetsDepends PetsComfort = "DEPENDS"
)

type JobData struct {
	ID                    int64    `json:"id"`
	MandatoryRequirements []string `json:"mandatoryRequirements,omitempty"`
	ChildIDs              []int64  `json:"childIds,omitempty"`
	DesiredActivities     []string `json:"desiredActivities,omitempty"`
	RequiresLocation      bool     `json:"requiresLocation,omitempty"`
}

type FamilyData struct {
	ID               int64     `json:"id"`
	HasPets          bool      `json:"hasPets"`
	NumberOfChildren int       `json:"numberOfChildren"`
	NannyTypes       []string  `json:"nannyTypes,omitempty"`
	ContractRegimes  []string  `json:"contractRegimes,omitempty"`
	HourlyRateMin    *float64  `json:"hourlyRateMin,omitempty"`
	HourlyRateMax    *float64  `json:"hourlyRateMax,omitempty"`
	Availability     []Slot    `json:"availability,omitempty"`
	Location         *Location `json:"location,omitempty"`
}

type ChildData struct {
	ID                      int64      `json:"id"`
	BirthDate               *time.Time `json:"birthDate,omitempty"`
	ExpectedBirthDate       *time.Time `json:"expectedBirthDate,omitempty"`
	HasSpecialNeeds         bool       `json:"hasSpecialNeeds"`
	SpecialNeedsTypes       []string   `json:"specialNeedsTypes,omitempty"`
	SpecialNeedsDescription string     `json:"specialNeedsDescription,omitempty"`
}

type Verification struct {
	DocumentVerified   bool `json:"documentVerified"`
	BackgroundChecked  bool `json:"backgroundChecked"`
	ReferencesVerified bool `json:"referencesVerified"`
}

type NannyProfile struct {
	ID                        int64        `json:"id"`
	BirthDate                 *time.Time   `json:"birthDate,omitempty"`
	Gender                    string       `json:"gender,omitempty"`
	ExperienceYears           *int         `json:"experienceYears,omitempty"`
	ChildAgeExperience        []string     `json:"childAgeExperience,omitempty"`
	HasSpecialNeedsExperience bool         `json:"hasSpecialNeedsExperience"`
	SpecialNeedsSpecialties   []string     `json:"specialNeedsSpecialties,omitempty"`
	Certifications            []string     `json:"certifications,omitempty"`
	HasDriverLicense          bool         `json:"hasDriverLicense"`
	AcceptedActivities        []string     `json:"acceptedActivities,omitempty"`
	NannyTypes                []string     `json:"nannyTypes,omitempty"`
	ContractRegimes           []string     `json:"contractRegimes,omitempty"`
	PetsComfort               PetsComfort  `json:"petsComfort,omitempty"`
	HourlyRateMin             *float64     `json:"hourlyRateMin,omitempty"`
	HourlyRateMax             *float64     `json:"hourlyRateMax,omitempty"`
	MaxTravelDistanceKm       *float64     `json:"maxTravelDistanceKm,omitempty"`
	MaxChildren               *int         `json:"maxChildren,omitempty"`
	Location                  *Location    `json:"location,omitempty"`
	Availability              []Slot       `json:"availability,omitempty"`
	Verification              Verification `json:"verification"`
	AverageRating             *float64     `json:"averageRating,omitempty"`
	ReviewCount               int          `json:"reviewCount"`
	LastActiveAt              *time.Time   `json:"lastActiveAt,omitempty"`
	HasActiveBoost            bool         `json:"hasActiveBoost"`
	IsHighlighted             bool         `json:"isHighlighted"`
}

// Input is one job/family/children tuple paired with one candidate.
type Input struct {
	Job      JobData      `json:"job"`
	Family   FamilyData   `json:"family"`
	Children []ChildData  `json:"children,omitempty"`
	Nanny    NannyProfile `json:"nanny"`
}

// Breakdown holds the per-dimension sub-scores, each within [0,100].
type Breakdown struct {
	Experience   int `json:"experience"`
	Availability int `json:"availability"`
	Rate         int `json:"rate"`
	Reviews      int `json:"reviews"`
	Activities   int `json:"activities"`
	Recency      int `json:"recency"`
}

type Result struct {
	NannyID            int64     `json:"nannyId"`
	Score              int       `json:"score"`
	IsEligible         bool      `json:"isEligible"`
	EliminationReasons []string  `json:"eliminationReasons"`
	FailedRules        []Rule    `json:"failedRules,omitempty"`
	Breakdown          Breakdown `json:"breakdown"`
	DistanceKm         *float64  `json:"distanceKm,omitempty"`
}

// RankKey derives the listing key for a scored candidate.
func (r Result) RankKey(n NannyProfile) RankKey {
	return RankKey{
		Eligible:     r.IsEligible,
		Score:        r.Score,
		Boosted:      n.HasActiveBoost,
		Highlighted:  n.IsHighlighted,
		LastActiveAt: n.LastActiveAt,
		ID:           n.ID,
	}
}
