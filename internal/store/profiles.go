package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cuidly-workers/internal/matching"
	"cuidly-workers/internal/subscription"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

func (s *Store) GetFamily(ctx context.Context, id int64) (matching.FamilyData, error) {
	var (
		f                   matching.FamilyData
		nannyTypes          pq.StringArray
		regimes             pq.StringArray
		rateMin, rateMax    sql.NullFloat64
		availability        []byte
		latitude, longitude sql.NullFloat64
	)
	q := s.sb.Select(
		"id", "has_pets", "number_of_children", "nanny_types", "contract_regimes",
		"hourly_rate_min", "hourly_rate_max", "availability", "latitude", "longitude",
	).From("families").Where(sq.Eq{"id": id})

	err := s.queryRow(ctx, "get family", q,
		&f.ID, &f.HasPets, &f.NumberOfChildren, &nannyTypes, &regimes,
		&rateMin, &rateMax, &availability, &latitude, &longitude,
	)
	if err != nil {
		return matching.FamilyData{}, err
	}

	f.NannyTypes = []string(nannyTypes)
	f.ContractRegimes = []string(regimes)
	f.HourlyRateMin = nullFloat(rateMin)
	f.HourlyRateMax = nullFloat(rateMax)
	f.Location = location(latitude, longitude)
	if f.Availability, err = slots(availability); err != nil {
		return matching.FamilyData{}, fmt.Errorf("get family %d: %w", id, err)
	}
	return f, nil
}

// GetChildren loads the family's children. When ids is non-empty only those
// children are returned.
func (s *Store) GetChildren(ctx context.Context, familyID int64, ids []int64) ([]matching.ChildData, error) {
	q := s.sb.Select(
		"id", "birth_date", "expected_birth_date", "has_special_needs",
		"special_needs_types", "special_needs_description",
	).From("children").Where(sq.Eq{"family_id": familyID}).OrderBy("id")
	if len(ids) > 0 {
		q = q.Where(sq.Eq{"id": ids})
	}

	rows, done, err := s.query(ctx, "get children", q)
	if err != nil {
		return nil, err
	}
	defer done()

	var children []matching.ChildData
	for rows.Next() {
		var (
			c               matching.ChildData
			birth, expected sql.NullTime
			types           pq.StringArray
			description     sql.NullString
		)
		if err := rows.Scan(&c.ID, &birth, &expected, &c.HasSpecialNeeds, &types, &description); err != nil {
			return nil, fmt.Errorf("get children: %w", err)
		}
		c.BirthDate = nullTime(birth)
		c.ExpectedBirthDate = nullTime(expected)
		c.SpecialNeedsTypes = []string(types)
		c.SpecialNeedsDescription = description.String
		children = append(children, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get children: %w", err)
	}
	return children, nil
}

var nannyColumns = []string{
	"n.id", "n.birth_date", "n.gender", "n.experience_years", "n.child_age_experience",
	"n.has_special_needs_experience", "n.special_needs_specialties", "n.certifications",
	"n.has_driver_license", "n.accepted_activities", "n.nanny_types", "n.contract_regimes",
	"n.pets_comfort", "n.hourly_rate_min", "n.hourly_rate_max", "n.max_travel_distance_km",
	"n.max_children", "n.latitude", "n.longitude", "n.availability",
	"n.document_verified", "n.background_checked", "n.references_verified",
	"n.average_rating", "n.review_count", "n.last_active_at",
	"EXISTS (SELECT 1 FROM boosts b WHERE b.nanny_id = n.id AND b.ends_at > NOW()) AS has_active_boost",
	"sub.plan", "sub.status", "sub.current_period_start", "sub.current_period_end",
}

// latestNannySubscription joins the same row GetSubscription reads, so the
// highlight flag follows the plan the entitlement checks see.
const latestNannySubscription = "LATERAL (SELECT plan, status, current_period_start, current_period_end" +
	" FROM subscriptions s WHERE s.nanny_id = n.id ORDER BY s.created_at DESC LIMIT 1) sub ON TRUE"

func (s *Store) GetNanny(ctx context.Context, id int64) (matching.NannyProfile, error) {
	nannies, err := s.GetNannies(ctx, []int64{id})
	if err != nil {
		return matching.NannyProfile{}, err
	}
	if len(nannies) == 0 {
		return matching.NannyProfile{}, fmt.Errorf("get nanny %d: %w", id, ErrNotFound)
	}
	return nannies[0], nil
}

// GetNannies loads the profiles of the given nannies in id order. Unknown ids
// are skipped.
func (s *Store) GetNannies(ctx context.Context, ids []int64) ([]matching.NannyProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := s.sb.Select(nannyColumns...).
		From("nannies n").
		LeftJoin(latestNannySubscription).
		Where(sq.Eq{"n.id": ids}).
		OrderBy("n.id")

	rows, done, err := s.query(ctx, "get nannies", q)
	if err != nil {
		return nil, err
	}
	defer done()

	now := s.now()
	nannies := make([]matching.NannyProfile, 0, len(ids))
	for rows.Next() {
		n, err := scanNanny(rows, now)
		if err != nil {
			return nil, fmt.Errorf("get nannies: %w", err)
		}
		nannies = append(nannies, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get nannies: %w", err)
	}
	return nannies, nil
}

func scanNanny(rows *sql.Rows, now time.Time) (matching.NannyProfile, error) {
	var (
		n                                   matching.NannyProfile
		birth, lastActive                   sql.NullTime
		gender, pets                        sql.NullString
		experience, maxChildren             sql.NullInt64
		ageExperience, specialties, certs   pq.StringArray
		activities, nannyTypes, regimes     pq.StringArray
		rateMin, rateMax, maxDistance, rate sql.NullFloat64
		latitude, longitude                 sql.NullFloat64
		availability                        []byte
		subPlan, subStatus                  sql.NullString
		periodStart, periodEnd              sql.NullTime
	)
	err := rows.Scan(
		&n.ID, &birth, &gender, &experience, &ageExperience,
		&n.HasSpecialNeedsExperience, &specialties, &certs,
		&n.HasDriverLicense, &activities, &nannyTypes, &regimes,
		&pets, &rateMin, &rateMax, &maxDistance,
		&maxChildren, &latitude, &longitude, &availability,
		&n.Verification.DocumentVerified, &n.Verification.BackgroundChecked, &n.Verification.ReferencesVerified,
		&rate, &n.ReviewCount, &lastActive,
		&n.HasActiveBoost, &subPlan, &subStatus, &periodStart, &periodEnd,
	)
	if err != nil {
		return n, err
	}

	n.BirthDate = nullTime(birth)
	n.Gender = gender.String
	n.ExperienceYears = nullInt(experience)
	n.ChildAgeExperience = []string(ageExperience)
	n.SpecialNeedsSpecialties = []string(specialties)
	n.Certifications = []string(certs)
	n.AcceptedActivities = []string(activities)
	n.NannyTypes = []string(nannyTypes)
	n.ContractRegimes = []string(regimes)
	n.PetsComfort = matching.PetsComfort(pets.String)
	n.HourlyRateMin = nullFloat(rateMin)
	n.HourlyRateMax = nullFloat(rateMax)
	n.MaxTravelDistanceKm = nullFloat(maxDistance)
	n.MaxChildren = nullInt(maxChildren)
	n.Location = location(latitude, longitude)
	n.AverageRating = nullFloat(rate)
	n.LastActiveAt = nullTime(lastActive)
	n.IsHighlighted = highlighted(subPlan, subStatus, periodStart, periodEnd, now)
	if n.Availability, err = slots(availability); err != nil {
		return n, fmt.Errorf("nanny %d: %w", n.ID, err)
	}
	return n, nil
}

// highlighted reports whether the plan in force for the nanny's newest
// subscription row carries a profile highlight.
func highlighted(plan, status sql.NullString, start, end sql.NullTime, now time.Time) bool {
	if !plan.Valid {
		return false
	}
	p, err := subscription.ParsePlan(plan.String)
	if err != nil || p.Audience() != subscription.AudienceNanny {
		return false
	}
	sub := subscription.Subscription{
		Plan:               p,
		Status:             subscription.ParseStatus(status.String),
		CurrentPeriodStart: nullTime(start),
		CurrentPeriodEnd:   nullTime(end),
	}
	return subscription.FeaturesFor(sub.EffectivePlan(now)).ProfileHighlight
}

func slots(raw []byte) ([]matching.Slot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []matching.Slot
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	return out, nil
}

func location(lat, lng sql.NullFloat64) *matching.Location {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &matching.Location{Latitude: lat.Float64, Longitude: lng.Float64}
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
