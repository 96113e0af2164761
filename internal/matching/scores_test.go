package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeights_SumToOne(t *testing.T) {
	sum := WeightExperience + WeightAvailability + WeightRate + WeightReviews + WeightActivities + WeightRecency
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestRateScore(t *testing.T) {
	tests := []struct {
		name                   string
		fMin, fMax, nMin, nMax *float64
		want                   float64
	}{
		{"inside budget", ptr(30.0), ptr(50.0), ptr(35.0), ptr(45.0), 100},
		{"cheaper than budget", ptr(30.0), ptr(50.0), ptr(20.0), ptr(25.0), 90},
		{"partial overlap", ptr(30.0), ptr(40.0), ptr(35.0), ptr(45.0), 85},
		{"starts below, ends inside", ptr(20.0), ptr(30.0), ptr(10.0), ptr(25.0), 100},
		{"starts below, ends above", ptr(20.0), ptr(30.0), ptr(10.0), ptr(40.0), 90},
		{"ends on the budget floor", ptr(20.0), ptr(30.0), ptr(10.0), ptr(20.0), 100},
		{"slightly over budget", ptr(30.0), ptr(40.0), ptr(46.0), ptr(50.0), 30},
		{"far over budget", ptr(30.0), ptr(40.0), ptr(60.0), ptr(70.0), 0},
		{"single bound each", nil, ptr(40.0), ptr(40.0), nil, 100},
		{"family missing", nil, nil, ptr(40.0), ptr(50.0), 50},
		{"nanny missing", ptr(30.0), ptr(40.0), nil, nil, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rateScore(tt.fMin, tt.fMax, tt.nMin, tt.nMax), 1e-6)
		})
	}
}

func TestRateScore_LowerMinimumNeverScoresWorse(t *testing.T) {
	fMin, fMax := ptr(20.0), ptr(30.0)
	cheaper := rateScore(fMin, fMax, ptr(10.0), ptr(15.0))

	for _, nMax := range []float64{20, 22, 25, 28, 30, 35, 40} {
		straddling := rateScore(fMin, fMax, ptr(10.0), ptr(nMax))
		withoutLowEnd := rateScore(fMin, fMax, ptr(20.0), ptr(nMax))
		assert.GreaterOrEqual(t, straddling, cheaper, "max %v", nMax)
		assert.GreaterOrEqual(t, straddling, withoutLowEnd, "max %v", nMax)
	}
}

func TestReviewsScore(t *testing.T) {
	assert.Equal(t, 50.0, reviewsScore(nil, 10))
	assert.Equal(t, 50.0, reviewsScore(ptr(5.0), 0))
	assert.InDelta(t, 75.28, reviewsScore(ptr(4.5), 5), 0.01)
	assert.InDelta(t, 44.56, reviewsScore(ptr(1.0), 1), 0.01)
	assert.InDelta(t, 100, reviewsScore(ptr(5.0), 1000), 1e-6)

	// More reviews at the same rating moves further from neutral.
	assert.Greater(t, reviewsScore(ptr(4.8), 20), reviewsScore(ptr(4.8), 2))
}

func TestRecencyScore(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want float64
	}{
		{time.Hour, 100},
		{2 * 24 * time.Hour, 90},
		{6 * 24 * time.Hour, 80},
		{10 * 24 * time.Hour, 65},
		{25 * 24 * time.Hour, 50},
		{60 * 24 * time.Hour, 30},
		{200 * 24 * time.Hour, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, recencyScore(ptr(now.Add(-tt.ago)), now), tt.ago.String())
	}
	assert.Equal(t, 50.0, recencyScore(nil, now))
}

func TestAvailabilityScore(t *testing.T) {
	family := []Slot{{"MONDAY", "MORNING"}, {"MONDAY", "MORNING"}, {"FRIDAY", "NIGHT"}}
	nanny := []Slot{{"Monday", "Morning"}}

	assert.Equal(t, 50.0, availabilityScore(family, nanny))
	assert.Equal(t, 50.0, availabilityScore(nil, nanny))
	assert.Equal(t, 0.0, availabilityScore(family, []Slot{{"SUNDAY", "MORNING"}}))
}

func TestActivitiesScore(t *testing.T) {
	assert.Equal(t, 50.0, activitiesScore([]string{"A", "B"}, []string{"b"}))
	assert.Equal(t, 50.0, activitiesScore(nil, []string{"A"}))
	assert.Equal(t, 100.0, activitiesScore([]string{"A"}, []string{"A", "C"}))
}

func TestAgeGroup(t *testing.T) {
	born := func(y int, m time.Month, d int) ChildData {
		return ChildData{BirthDate: ptr(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))}
	}
	tests := []struct {
		name  string
		child ChildData
		want  string
		ok    bool
	}{
		{"unborn", ChildData{ExpectedBirthDate: ptr(now.AddDate(0, 2, 0))}, AgeNewborn, true},
		{"six months", born(2024, 9, 15), AgeNewborn, true},
		{"one year", born(2024, 3, 15), AgeToddler, true},
		{"three years next day", born(2022, 3, 16), AgeToddler, true},
		{"four years", born(2021, 1, 1), AgePreschool, true},
		{"eight years", born(2017, 1, 1), AgeSchool, true},
		{"thirteen years", born(2012, 1, 1), AgeTeen, true},
		{"no dates", ChildData{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AgeGroup(tt.child, now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExperienceScore(t *testing.T) {
	child := []ChildData{{BirthDate: ptr(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))}}

	assert.Equal(t, 50.0, experienceScore(NannyProfile{}, child, now))
	assert.InDelta(t, 0.7*85+0.3*0, experienceScore(NannyProfile{ExperienceYears: ptr(5), ChildAgeExperience: []string{AgeTeen}}, child, now), 1e-9)
	assert.InDelta(t, 0.7*50+0.3*100, experienceScore(NannyProfile{ChildAgeExperience: []string{AgeNewborn}}, child, now), 1e-9)
	assert.InDelta(t, 0.7*25+0.3*50, experienceScore(NannyProfile{ExperienceYears: ptr(0)}, child, now), 1e-9)
}
