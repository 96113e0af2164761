package matching

import "time"

// Calculate eliminates, then scores, one candidate. Ineligible candidates
// still get a score for display; listings place them after eligible ones.
func Calculate(in Input, now time.Time) Result {
	e := eliminate(in)

	b := Breakdown{
		Experience:   clampScore(experienceScore(in.Nanny, in.Children, now)),
		Availability: clampScore(availabilityScore(in.Family.Availability, in.Nanny.Availability)),
		Rate:         clampScore(rateScore(in.Family.HourlyRateMin, in.Family.HourlyRateMax, in.Nanny.HourlyRateMin, in.Nanny.HourlyRateMax)),
		Reviews:      clampScore(reviewsScore(in.Nanny.AverageRating, in.Nanny.ReviewCount)),
		Activities:   clampScore(activitiesScore(in.Job.DesiredActivities, in.Nanny.AcceptedActivities)),
		Recency:      clampScore(recencyScore(in.Nanny.LastActiveAt, now)),
	}

	r := Result{
		NannyID:            in.Nanny.ID,
		Score:              clampScore(weigh(b)),
		IsEligible:         len(e.violations) == 0,
		EliminationReasons: make([]string, 0, len(e.violations)),
		Breakdown:          b,
		DistanceKm:         e.distanceKm,
	}
	for _, v := range e.violations {
		r.EliminationReasons = append(r.EliminationReasons, v.reason)
		r.FailedRules = append(r.FailedRules, v.rule)
	}
	return r
}

// Candidate pairs a scored result with the profile it came from.
type Candidate struct {
	Nanny  NannyProfile `json:"nanny"`
	Result Result       `json:"result"`
}

// Rank scores every nanny against the same job and returns them in listing
// order.
func Rank(job JobData, family FamilyData, children []ChildData, nannies []NannyProfile, now time.Time) []Candidate {
	out := make([]Candidate, 0, len(nannies))
	for _, n := range nannies {
		res := Calculate(Input{Job: job, Family: family, Children: children, Nanny: n}, now)
		out = append(out, Candidate{Nanny: n, Result: res})
	}
	SortByRank(out, func(c Candidate) RankKey { return c.Result.RankKey(c.Nanny) })
	return out
}
