package store

import (
	"context"
	"testing"
	"time"

	"cuidly-workers/internal/matching"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nannyRowColumns = []string{
	"id", "birth_date", "gender", "experience_years", "child_age_experience",
	"has_special_needs_experience", "special_needs_specialties", "certifications",
	"has_driver_license", "accepted_activities", "nanny_types", "contract_regimes",
	"pets_comfort", "hourly_rate_min", "hourly_rate_max", "max_travel_distance_km",
	"max_children", "latitude", "longitude", "availability",
	"document_verified", "background_checked", "references_verified",
	"average_rating", "review_count", "last_active_at",
	"has_active_boost", "plan", "status", "current_period_start", "current_period_end",
}

func TestGetFamily(t *testing.T) {
	s, mock := newTestStore(t)
	mock.ExpectQuery(`SELECT (.+) FROM families WHERE id = \$1`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "has_pets", "number_of_children", "nanny_types", "contract_regimes",
			"hourly_rate_min", "hourly_rate_max", "availability", "latitude", "longitude",
		}).AddRow(int64(12), true, 2, "{FOLGUISTA}", "{CLT}", 30.0, 45.0,
			`[{"day":"MONDAY","shift":"MORNING"}]`, -23.56, -46.64))

	f, err := s.GetFamily(context.Background(), 12)
	require.NoError(t, err)
	assert.True(t, f.HasPets)
	assert.Equal(t, 2, f.NumberOfChildren)
	assert.Equal(t, []string{"FOLGUISTA"}, f.NannyTypes)
	assert.Equal(t, []string{"CLT"}, f.ContractRegimes)
	require.NotNil(t, f.HourlyRateMax)
	assert.Equal(t, 45.0, *f.HourlyRateMax)
	assert.Equal(t, []matching.Slot{{Day: "MONDAY", Shift: "MORNING"}}, f.Availability)
	require.NotNil(t, f.Location)
	assert.Equal(t, -23.56, f.Location.Latitude)
}

func TestGetFamily_MissingLocationAndRates(t *testing.T) {
	s, mock := newTestStore(t)
	mock.ExpectQuery(`FROM families WHERE id = \$1`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "has_pets", "number_of_children", "nanny_types", "contract_regimes",
			"hourly_rate_min", "hourly_rate_max", "availability", "latitude", "longitude",
		}).AddRow(int64(12), false, 1, nil, nil, nil, nil, nil, nil, nil))

	f, err := s.GetFamily(context.Background(), 12)
	require.NoError(t, err)
	assert.Nil(t, f.Location)
	assert.Nil(t, f.HourlyRateMin)
	assert.Empty(t, f.Availability)
	assert.Empty(t, f.NannyTypes)
}

func TestGetChildren_FilteredByJob(t *testing.T) {
	s, mock := newTestStore(t)
	birth := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM children WHERE family_id = \$1 AND id IN \(\$2,\$3\) ORDER BY id`).
		WithArgs(int64(12), int64(5), int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "birth_date", "expected_birth_date", "has_special_needs",
			"special_needs_types", "special_needs_description",
		}).
			AddRow(int64(5), birth, nil, false, nil, nil).
			AddRow(int64(6), nil, birth, true, "{AUTISM}", "TEA nivel 1"))

	children, err := s.GetChildren(context.Background(), 12, []int64{5, 6})
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.NotNil(t, children[0].BirthDate)
	assert.Nil(t, children[0].ExpectedBirthDate)
	assert.True(t, children[1].HasSpecialNeeds)
	assert.Equal(t, []string{"AUTISM"}, children[1].SpecialNeedsTypes)
	assert.Equal(t, "TEA nivel 1", children[1].SpecialNeedsDescription)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNannies(t *testing.T) {
	s, mock := newTestStore(t)
	lastActive := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM nannies n LEFT JOIN LATERAL \(.+ORDER BY s.created_at DESC LIMIT 1\) sub ON TRUE WHERE n.id IN \(\$1,\$2\) ORDER BY n.id`).
		WithArgs(int64(3), int64(5)).
		WillReturnRows(sqlmock.NewRows(nannyRowColumns).
			AddRow(int64(3), nil, "F", 6, "{TODDLER,PRESCHOOL}",
				true, "{AUTISM}", "{CPR}",
				true, "{COOKING,HOMEWORK}", "{FOLGUISTA}", "{CLT}",
				"YES", 25.0, 40.0, 15.0,
				3, -23.55, -46.63, `[{"day":"MONDAY","shift":"MORNING"}]`,
				true, true, false,
				92.0, 14, lastActive,
				true, nil, nil, nil, nil).
			AddRow(int64(5), nil, nil, nil, nil,
				false, nil, nil,
				false, nil, nil, nil,
				nil, nil, nil, nil,
				nil, nil, nil, nil,
				false, false, false,
				nil, 0, nil,
				false, "NANNY_PRO", "ACTIVE", nil, nil))

	nannies, err := s.GetNannies(context.Background(), []int64{3, 5})
	require.NoError(t, err)
	require.Len(t, nannies, 2)

	full := nannies[0]
	require.NotNil(t, full.ExperienceYears)
	assert.Equal(t, 6, *full.ExperienceYears)
	assert.Equal(t, matching.PetsYes, full.PetsComfort)
	assert.Equal(t, []string{"CPR"}, full.Certifications)
	assert.True(t, full.Verification.BackgroundChecked)
	require.NotNil(t, full.MaxChildren)
	assert.Equal(t, 3, *full.MaxChildren)
	require.NotNil(t, full.Location)
	assert.Len(t, full.Availability, 1)
	assert.True(t, full.HasActiveBoost)
	assert.False(t, full.IsHighlighted)
	assert.Equal(t, 14, full.ReviewCount)

	sparse := nannies[1]
	assert.Nil(t, sparse.ExperienceYears)
	assert.Nil(t, sparse.Location)
	assert.Nil(t, sparse.AverageRating)
	assert.Nil(t, sparse.LastActiveAt)
	assert.True(t, sparse.IsHighlighted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNanny_NotFound(t *testing.T) {
	s, mock := newTestStore(t)
	mock.ExpectQuery(`FROM nannies n LEFT JOIN LATERAL .+ WHERE n.id IN \(\$1\)`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(nannyRowColumns))

	_, err := s.GetNanny(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetNannies_EmptyIDs(t *testing.T) {
	s, mock := newTestStore(t)
	nannies, err := s.GetNannies(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, nannies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNannies_HighlightFollowsEffectivePlan(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	periodStart := now.AddDate(0, 0, -20)
	periodEnd := now.AddDate(0, 0, 10)
	lapsed := now.AddDate(0, 0, -1)

	tests := []struct {
		name   string
		plan   interface{}
		status interface{}
		end    interface{}
		want   bool
	}{
		{"no subscription row", nil, nil, nil, false},
		{"active pro", "NANNY_PRO", "ACTIVE", periodEnd, true},
		{"canceled pro inside period", "NANNY_PRO", "CANCELED", periodEnd, true},
		{"canceled pro after period", "NANNY_PRO", "CANCELED", lapsed, false},
		{"active pro with lapsed period", "NANNY_PRO", "ACTIVE", lapsed, false},
		{"unpaid pro", "NANNY_PRO", "UNPAID", periodEnd, false},
		{"newest row is free", "NANNY_FREE", "ACTIVE", nil, false},
		{"family plan on a nanny", "FAMILY_PLUS", "ACTIVE", periodEnd, false},
		{"unknown plan", "NANNY_GOLD", "ACTIVE", periodEnd, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStore(t)
			s.now = func() time.Time { return now }

			var start interface{}
			if tt.plan != nil {
				start = periodStart
			}
			mock.ExpectQuery(`FROM nannies n LEFT JOIN LATERAL`).
				WithArgs(int64(4)).
				WillReturnRows(sqlmock.NewRows(nannyRowColumns).
					AddRow(int64(4), nil, nil, nil, nil,
						false, nil, nil,
						false, nil, nil, nil,
						nil, nil, nil, nil,
						nil, nil, nil, nil,
						false, false, false,
						nil, 0, nil,
						false, tt.plan, tt.status, start, tt.end))

			n, err := s.GetNanny(context.Background(), 4)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.IsHighlighted)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
