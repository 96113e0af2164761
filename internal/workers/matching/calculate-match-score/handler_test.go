package calculatematchscore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/matching"
	"cuidly-workers/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Store
// ==========================

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetJob(ctx context.Context, id int64) (store.Job, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(store.Job), args.Error(1)
}

func (m *mockStore) GetFamily(ctx context.Context, id int64) (matching.FamilyData, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(matching.FamilyData), args.Error(1)
}

func (m *mockStore) GetChildren(ctx context.Context, familyID int64, ids []int64) ([]matching.ChildData, error) {
	args := m.Called(ctx, familyID, ids)
	children, _ := args.Get(0).([]matching.ChildData)
	return children, args.Error(1)
}

func (m *mockStore) GetNanny(ctx context.Context, id int64) (matching.NannyProfile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(matching.NannyProfile), args.Error(1)
}

// ==========================
// Fixtures
// ==========================

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func testJob() matching.JobData {
	return matching.JobData{ID: 40, ChildIDs: []int64{1}, DesiredActivities: []string{"HOMEWORK"}}
}

func testFamily() matching.FamilyData {
	return matching.FamilyData{
		ID:               12,
		HasPets:          true,
		NumberOfChildren: 1,
		NannyTypes:       []string{"DAILY"},
		HourlyRateMin:    ptr(30.0),
		HourlyRateMax:    ptr(50.0),
		Availability:     []matching.Slot{{Day: "MONDAY", Shift: "MORNING"}},
		Location:         &matching.Location{Latitude: -23.5505, Longitude: -46.6333},
	}
}

func testNanny(pets matching.PetsComfort) matching.NannyProfile {
	return matching.NannyProfile{
		ID:                 3,
		ExperienceYears:    ptr(6),
		AcceptedActivities: []string{"homework"},
		NannyTypes:         []string{"DAILY"},
		PetsComfort:        pets,
		HourlyRateMin:      ptr(35.0),
		HourlyRateMax:      ptr(45.0),
		Availability:       []matching.Slot{{Day: "MONDAY", Shift: "MORNING"}},
		Location:           &matching.Location{Latitude: -23.5615, Longitude: -46.6560},
		LastActiveAt:       ptr(now.Add(-2 * time.Hour)),
	}
}

func createTestHandler(t *testing.T, st Store) *Handler {
	h := NewHandler(&Config{Timeout: 5 * time.Second}, st, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return now }
	return h
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_InlineData(t *testing.T) {
	st := new(mockStore)
	job, family, nanny := testJob(), testFamily(), testNanny(matching.PetsYes)

	out, err := createTestHandler(t, st).Execute(context.Background(), &Input{Job: &job, Family: &family, Nanny: &nanny})
	require.NoError(t, err)

	assert.Equal(t, int64(3), out.NannyID)
	assert.Equal(t, int64(40), out.JobID)
	assert.True(t, out.IsEligible)
	assert.Empty(t, out.EliminationReasons)
	assert.GreaterOrEqual(t, out.Score, 0)
	assert.LessOrEqual(t, out.Score, 100)
	require.NotNil(t, out.DistanceKm)

	want := matching.Calculate(matching.Input{Job: job, Family: family, Nanny: nanny}, now)
	assert.Equal(t, want, out.Result)
	st.AssertNotCalled(t, "GetJob", mock.Anything, mock.Anything)
}

func TestExecute_LoadsByID(t *testing.T) {
	st := new(mockStore)
	children := []matching.ChildData{{ID: 1, BirthDate: ptr(time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC))}}
	st.On("GetJob", mock.Anything, int64(40)).Return(store.Job{ID: 40, FamilyID: 12, Data: testJob()}, nil)
	st.On("GetFamily", mock.Anything, int64(12)).Return(testFamily(), nil)
	st.On("GetChildren", mock.Anything, int64(12), []int64{1}).Return(children, nil)
	st.On("GetNanny", mock.Anything, int64(3)).Return(testNanny(matching.PetsNo), nil)

	out, err := createTestHandler(t, st).Execute(context.Background(), &Input{JobID: ptr(int64(40)), NannyID: ptr(int64(3))})
	require.NoError(t, err)

	assert.False(t, out.IsEligible)
	assert.Contains(t, out.FailedRules, matching.RulePets)
	assert.NotEmpty(t, out.EliminationReasons)
	assert.Positive(t, out.Score, "ineligible candidates are still scored")
	st.AssertExpectations(t)
}

func TestExecute_Errors(t *testing.T) {
	notFound := fmt.Errorf("lookup: %w", store.ErrNotFound)

	tests := []struct {
		name     string
		input    *Input
		setup    func(*mockStore)
		wantCode errors.ErrorCode
	}{
		{
			name:     "no job side",
			input:    &Input{NannyID: ptr(int64(3))},
			setup:    func(*mockStore) {},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "no nanny side",
			input:    &Input{Job: ptr(testJob()), Family: ptr(testFamily())},
			setup:    func(*mockStore) {},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:  "unknown job",
			input: &Input{JobID: ptr(int64(41)), NannyID: ptr(int64(3))},
			setup: func(st *mockStore) {
				st.On("GetJob", mock.Anything, int64(41)).Return(store.Job{}, notFound)
			},
			wantCode: errors.ErrCodeJobNotFound,
		},
		{
			name:  "unknown family",
			input: &Input{JobID: ptr(int64(40)), NannyID: ptr(int64(3))},
			setup: func(st *mockStore) {
				st.On("GetJob", mock.Anything, int64(40)).Return(store.Job{ID: 40, FamilyID: 12, Data: testJob()}, nil)
				st.On("GetFamily", mock.Anything, int64(12)).Return(matching.FamilyData{}, notFound)
			},
			wantCode: errors.ErrCodeFamilyNotFound,
		},
		{
			name:  "unknown nanny",
			input: &Input{Job: ptr(testJob()), Family: ptr(testFamily()), NannyID: ptr(int64(9))},
			setup: func(st *mockStore) {
				st.On("GetNanny", mock.Anything, int64(9)).Return(matching.NannyProfile{}, notFound)
			},
			wantCode: errors.ErrCodeNannyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(mockStore)
			tt.setup(st)

			_, err := createTestHandler(t, st).Execute(context.Background(), tt.input)
			require.Error(t, err)
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestInputSchema(t *testing.T) {
	h := createTestHandler(t, new(mockStore))
	assert.NoError(t, h.runner.Validate(`{"jobId": 40, "nannyId": 3}`))
	assert.NoError(t, h.runner.Validate(`{"job": {"id": 1}, "family": {"id": 2}, "nannyId": 3}`))
	assert.Error(t, h.runner.Validate(`{"nannyId": 3}`))
	assert.Error(t, h.runner.Validate(`{"jobId": "40"}`))
}
