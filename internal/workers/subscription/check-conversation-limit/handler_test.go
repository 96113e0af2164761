package checkconversationlimit

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/store"
	"cuidly-workers/internal/subscription"

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

func (m *mockStore) ResolvePlan(ctx context.Context, l subscription.Lookup, now time.Time) (subscription.Plan, subscription.Subscription, error) {
	args := m.Called(ctx, l, now)
	return args.Get(0).(subscription.Plan), subscription.Subscription{Plan: args.Get(0).(subscription.Plan)}, args.Error(1)
}

func (m *mockStore) CountJobConversations(ctx context.Context, jobID int64) (int, error) {
	args := m.Called(ctx, jobID)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) ConversationExists(ctx context.Context, jobID, nannyID int64) (bool, error) {
	args := m.Called(ctx, jobID, nannyID)
	return args.Bool(0), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func ptr(v int64) *int64 { return &v }

func createTestHandler(t *testing.T, st Store) *Handler {
	h := NewHandler(DefaultConfig(), st, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return now }
	return h
}

func jobPostedDaysAgo(days int) store.Job {
	return store.Job{
		ID:        40,
		FamilyID:  12,
		Status:    store.JobStatusActive,
		CreatedAt: now.Add(-time.Duration(days) * 24 * time.Hour),
	}
}

// ==========================
// Decision Tests
// ==========================

func TestExecute_Decisions(t *testing.T) {
	tests := []struct {
		name       string
		ownerPlan  subscription.Plan
		jobAgeDays int
		existing   int
		connected  bool
		wantStart  bool
		wantCode   subscription.DenialCode
		wantLimit  int
	}{
		{"free owner, first conversation", subscription.PlanFamilyFree, 2, 0, false, true, "", 1},
		{"free owner, cap reached", subscription.PlanFamilyFree, 2, 1, false, false, subscription.CodeConversationLimitReached, 1},
		{"free owner, cap reached but already connected", subscription.PlanFamilyFree, 2, 1, true, true, "", 1},
		{"free owner, job expired", subscription.PlanFamilyFree, 8, 0, false, false, subscription.CodeJobExpired, 1},
		{"expired even when connected", subscription.PlanFamilyFree, 8, 1, true, false, subscription.CodeJobExpired, 1},
		{"plus owner, no cap", subscription.PlanFamilyPlus, 20, 37, false, true, "", subscription.Unlimited},
		{"plus owner, job expired", subscription.PlanFamilyPlus, 31, 3, false, false, subscription.CodeJobExpired, subscription.Unlimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(mockStore)
			st.On("GetJob", mock.Anything, int64(40)).Return(jobPostedDaysAgo(tt.jobAgeDays), nil)
			st.On("ResolvePlan", mock.Anything, subscription.FamilyLookup(12), now).Return(tt.ownerPlan, nil)
			st.On("CountJobConversations", mock.Anything, int64(40)).Return(tt.existing, nil)
			st.On("ConversationExists", mock.Anything, int64(40), int64(3)).Return(tt.connected, nil)

			out, err := createTestHandler(t, st).Execute(context.Background(), &Input{NannyID: ptr(3), JobID: 40})
			require.NoError(t, err)

			assert.Equal(t, tt.wantStart, out.CanStart)
			assert.Equal(t, tt.wantCode, out.Code)
			assert.Equal(t, tt.wantLimit, out.ConversationLimit)
			assert.Equal(t, tt.existing, out.ConversationsUsed)
			assert.Equal(t, tt.ownerPlan, out.OwnerPlan)
			if !tt.wantStart {
				assert.Equal(t, tt.wantCode.Reason(), out.Reason)
			}
		})
	}
}

func TestExecute_FamilyOpensConversation(t *testing.T) {
	st := new(mockStore)
	st.On("GetJob", mock.Anything, int64(40)).Return(jobPostedDaysAgo(1), nil)
	st.On("ResolvePlan", mock.Anything, subscription.FamilyLookup(12), now).Return(subscription.PlanFamilyFree, nil)
	st.On("CountJobConversations", mock.Anything, int64(40)).Return(0, nil)
	st.On("ConversationExists", mock.Anything, int64(40), int64(9)).Return(false, nil)

	out, err := createTestHandler(t, st).Execute(context.Background(), &Input{FamilyID: ptr(12), JobID: 40, RecipientID: ptr(9)})
	require.NoError(t, err)
	assert.True(t, out.CanStart)
	st.AssertExpectations(t)
}

// ==========================
// Error Tests
// ==========================

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		setup    func(*mockStore)
		wantCode errors.ErrorCode
	}{
		{
			name:     "invalid lookup",
			input:    &Input{JobID: 40},
			setup:    func(*mockStore) {},
			wantCode: errors.ErrCodeInvalidLookup,
		},
		{
			name:  "unknown job",
			input: &Input{NannyID: ptr(3), JobID: 41},
			setup: func(st *mockStore) {
				st.On("GetJob", mock.Anything, int64(41)).Return(store.Job{}, fmt.Errorf("get job: %w", store.ErrNotFound))
			},
			wantCode: errors.ErrCodeJobNotFound,
		},
		{
			name:  "family does not own the job",
			input: &Input{FamilyID: ptr(99), JobID: 40, RecipientID: ptr(3)},
			setup: func(st *mockStore) {
				st.On("GetJob", mock.Anything, int64(40)).Return(jobPostedDaysAgo(1), nil)
			},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:  "family without recipient",
			input: &Input{FamilyID: ptr(12), JobID: 40},
			setup: func(st *mockStore) {
				st.On("GetJob", mock.Anything, int64(40)).Return(jobPostedDaysAgo(1), nil)
			},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:  "count failure",
			input: &Input{NannyID: ptr(3), JobID: 40},
			setup: func(st *mockStore) {
				st.On("GetJob", mock.Anything, int64(40)).Return(jobPostedDaysAgo(1), nil)
				st.On("ResolvePlan", mock.Anything, mock.Anything, mock.Anything).Return(subscription.PlanFamilyFree, nil)
				st.On("CountJobConversations", mock.Anything, int64(40)).Return(0, stderrors.New("broken pipe"))
			},
			wantCode: errors.ErrCodeDatabaseQueryFailed,
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

func TestInputSchema_RequiresJobID(t *testing.T) {
	h := createTestHandler(t, new(mockStore))
	assert.Error(t, h.runner.Validate(`{"nannyId": 3}`))
	assert.Error(t, h.runner.Validate(`{"nannyId": 3, "jobId": 0}`))
	assert.NoError(t, h.runner.Validate(`{"nannyId": 3, "jobId": 40}`))
}
