package matching

import (
	"math"
	"time"
)

// Dimension weights. They sum to 1.
const (
	WeightExperience   = 0.25
	WeightAvailability = 0.25
	WeightRate         = 0.15
	WeightReviews      = 0.15
	WeightActivities   = 0.10
	WeightRecency      = 0.10
)

// neutral is the sub-score used when the data needed for a dimension is
// missing.
const neutral = 50.0

const (
	experienceYearsShare = 0.7
	ageCoverageShare     = 0.3

	// Review confidence reaches ~63% at this many reviews.
	reviewConfidenceScale = 5.0

	cheaperRateScore = 90.0
	// A nanny whose minimum rate exceeds the family budget by this fraction
	// scores zero on rate.
	rateOverBudgetCutoff = 0.3
	overBudgetCeiling    = 60.0
)

// Child age groups as stored on nanny profiles.
const (
	AgeNewborn   = "NEWBORN"
	AgeToddler   = "TODDLER"
	AgePreschool = "PRESCHOOL"
	AgeSchool    = "SCHOOL_AGE"
	AgeTeen      = "TEEN"
)

func weigh(b Breakdown) float64 {
	return WeightExperience*float64(b.Experience) +
		WeightAvailability*float64(b.Availability) +
		WeightRate*float64(b.Rate) +
		WeightReviews*float64(b.Reviews) +
		WeightActivities*float64(b.Activities) +
		WeightRecency*float64(b.Recency)
}

func clampScore(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

func experienceScore(n NannyProfile, children []ChildData, now time.Time) float64 {
	years, hasYears := neutral, n.ExperienceYears != nil
	if hasYears {
		years = yearsScore(*n.ExperienceYears)
	}
	coverage, hasCoverage := ageCoverage(n.ChildAgeExperience, children, now)
	if !hasYears && !hasCoverage {
		return neutral
	}
	return experienceYearsShare*years + ageCoverageShare*coverage
}

func yearsScore(years int) float64 {
	switch {
	case years >= 10:
		return 100
	case years >= 5:
		return 85
	case years >= 3:
		return 70
	case years >= 1:
		return 50
	default:
		return 25
	}
}

// ageCoverage is the share of children whose age group the nanny has worked
// with. Children without any date are skipped.
func ageCoverage(groups []string, children []ChildData, now time.Time) (float64, bool) {
	if len(groups) == 0 {
		return neutral, false
	}
	known, covered := 0, 0
	for _, c := range children {
		g, ok := AgeGroup(c, now)
		if !ok {
			continue
		}
		known++
		if contains(groups, g) {
			covered++
		}
	}
	if known == 0 {
		return neutral, false
	}
	return 100 * float64(covered) / float64(known), true
}

// AgeGroup buckets a child by age at now. Unborn children count as newborns.
func AgeGroup(c ChildData, now time.Time) (string, bool) {
	if c.BirthDate == nil {
		if c.ExpectedBirthDate != nil {
			return AgeNewborn, true
		}
		return "", false
	}
	months := monthsBetween(*c.BirthDate, now)
	switch {
	case months < 12:
		return AgeNewborn, true
	case months < 36:
		return AgeToddler, true
	case months < 72:
		return AgePreschool, true
	case months < 144:
		return AgeSchool, true
	default:
		return AgeTeen, true
	}
}

func monthsBetween(from, to time.Time) int {
	m := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		m--
	}
	if m < 0 {
		return 0
	}
	return m
}

func availabilityScore(family, nanny []Slot) float64 {
	if len(family) == 0 || len(nanny) == 0 {
		return neutral
	}
	offered := make(map[Slot]struct{}, len(nanny))
	for _, s := range nanny {
		offered[normalizeSlot(s)] = struct{}{}
	}
	seen := make(map[Slot]struct{}, len(family))
	covered := 0
	for _, s := range family {
		s = normalizeSlot(s)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := offered[s]; ok {
			covered++
		}
	}
	return 100 * float64(covered) / float64(len(seen))
}

func normalizeSlot(s Slot) Slot {
	return Slot{Day: normalize(s.Day), Shift: normalize(s.Shift)}
}

// rateScore compares the nanny's hourly range with the family's budget:
// fully inside the budget is 100, partial overlap 70..100, entirely cheaper
// 90, and above budget decays to 0 at rateOverBudgetCutoff. A range that
// starts below the budget is scored on its part from the budget floor up and
// never scores below an entirely cheaper one.
func rateScore(fMin, fMax, nMin, nMax *float64) float64 {
	famLo, famHi, ok := bounds(fMin, fMax)
	if !ok {
		return neutral
	}
	nanLo, nanHi, ok := bounds(nMin, nMax)
	if !ok {
		return neutral
	}

	switch {
	case nanLo >= famLo && nanHi <= famHi:
		return 100
	case nanHi < famLo:
		return cheaperRateScore
	case nanLo > famHi:
		if famHi <= 0 {
			return 0
		}
		gap := (nanLo - famHi) / famHi
		return overBudgetCeiling * math.Max(0, 1-gap/rateOverBudgetCutoff)
	default:
		// Only the part of the nanny's range from the budget floor up counts.
		lo := math.Max(famLo, nanLo)
		overlap := math.Min(famHi, nanHi) - lo
		width := nanHi - lo
		if width <= 0 {
			return 100
		}
		score := 70 + 30*overlap/width
		if nanLo < famLo {
			score = math.Max(score, cheaperRateScore)
		}
		return score
	}
}

func bounds(lo, hi *float64) (float64, float64, bool) {
	switch {
	case lo == nil && hi == nil:
		return 0, 0, false
	case lo == nil:
		return *hi, *hi, true
	case hi == nil:
		return *lo, *lo, true
	case *lo > *hi:
		return *hi, *lo, true
	default:
		return *lo, *hi, true
	}
}

// reviewsScore pulls the rating toward neutral until enough reviews exist.
func reviewsScore(avg *float64, count int) float64 {
	if avg == nil || count <= 0 {
		return neutral
	}
	rating := math.Max(0, math.Min(5, *avg)) / 5 * 100
	confidence := 1 - math.Exp(-float64(count)/reviewConfidenceScale)
	return neutral + (rating-neutral)*confidence
}

func activitiesScore(desired, accepted []string) float64 {
	if len(desired) == 0 || len(accepted) == 0 {
		return neutral
	}
	matched := 0
	for _, a := range desired {
		if contains(accepted, a) {
			matched++
		}
	}
	return 100 * float64(matched) / float64(len(desired))
}

func recencyScore(lastActive *time.Time, now time.Time) float64 {
	if lastActive == nil {
		return neutral
	}
	since := now.Sub(*lastActive)
	switch {
	case since <= 24*time.Hour:
		return 100
	case since <= 3*24*time.Hour:
		return 90
	case since <= 7*24*time.Hour:
		return 80
	case since <= 14*24*time.Hour:
		return 65
	case since <= 30*24*time.Hour:
		return 50
	case since <= 90*24*time.Hour:
		return 30
	default:
		return 10
	}
}
