package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cuidly-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock := setupMockDB(t)
	return New(db, nil, 0, logger.NewTestLogger(t)), mock
}

func TestGetJob(t *testing.T) {
	s, mock := newTestStore(t)
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM jobs WHERE id = \$1`).
		WithArgs(int64(40)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "family_id", "status", "created_at",
			"mandatory_requirements", "child_ids", "desired_activities", "requires_location",
		}).AddRow(int64(40), int64(12), "ACTIVE", created, "{CPR,DRIVER_LICENSE}", "{5,6}", "{COOKING}", true))

	job, err := s.GetJob(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, int64(12), job.FamilyID)
	assert.Equal(t, JobStatusActive, job.Status)
	assert.True(t, created.Equal(job.CreatedAt))
	assert.Equal(t, int64(40), job.Data.ID)
	assert.Equal(t, []string{"CPR", "DRIVER_LICENSE"}, job.Data.MandatoryRequirements)
	assert.Equal(t, []int64{5, 6}, job.Data.ChildIDs)
	assert.Equal(t, []string{"COOKING"}, job.Data.DesiredActivities)
	assert.True(t, job.Data.RequiresLocation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJob_NotFound(t *testing.T) {
	s, mock := newTestStore(t)
	mock.ExpectQuery(`FROM jobs WHERE id = \$1`).WithArgs(int64(41)).WillReturnError(sql.ErrNoRows)

	_, err := s.GetJob(context.Background(), 41)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	countRow := func(n int) *sqlmock.Rows { return sqlmock.NewRows([]string{"count"}).AddRow(n) }

	t.Run("active jobs", func(t *testing.T) {
		s, mock := newTestStore(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM jobs WHERE (.+)`).
			WithArgs(int64(12), JobStatusActive).
			WillReturnRows(countRow(2))

		n, err := s.CountActiveJobs(ctx, 12)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("job conversations", func(t *testing.T) {
		s, mock := newTestStore(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM conversations WHERE job_id = \$1`).
			WithArgs(int64(40)).
			WillReturnRows(countRow(1))

		n, err := s.CountJobConversations(ctx, 40)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("conversation exists", func(t *testing.T) {
		s, mock := newTestStore(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM conversations WHERE job_id = \$1 AND nanny_id = \$2`).
			WithArgs(int64(40), int64(3)).
			WillReturnRows(countRow(1))

		ok, err := s.ConversationExists(ctx, 40, 3)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("family boosts in cycle", func(t *testing.T) {
		s, mock := newTestStore(t)
		mock.ExpectQuery(`FROM boosts WHERE family_id = \$1 AND created_at >= \$2 AND created_at < \$3`).
			WithArgs(int64(12), periodStart, periodEnd).
			WillReturnRows(countRow(1))

		n, err := s.CountFamilyBoosts(ctx, 12, periodStart, periodEnd)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("messages by side", func(t *testing.T) {
		s, mock := newTestStore(t)
		mock.ExpectQuery(`FROM messages WHERE conversation_id = \$1`).
			WithArgs(int64(77)).
			WillReturnRows(sqlmock.NewRows([]string{"nanny", "family"}).AddRow(2, 1))

		mc, err := s.CountMessages(ctx, 77)
		require.NoError(t, err)
		assert.Equal(t, MessageCounts{Nanny: 2, Family: 1}, mc)
	})
}

func TestGetConversation(t *testing.T) {
	s, mock := newTestStore(t)
	mock.ExpectQuery(`SELECT id, job_id, nanny_id, family_id FROM conversations WHERE id = \$1`).
		WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_id", "nanny_id", "family_id"}).
			AddRow(int64(77), nil, int64(3), int64(12)))

	c, err := s.GetConversation(context.Background(), 77)
	require.NoError(t, err)
	assert.Nil(t, c.JobID)
	assert.Equal(t, int64(3), c.NannyID)
	assert.Equal(t, int64(12), c.FamilyID)
}

func TestLastNannyBoost(t *testing.T) {
	last := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value interface{}
		want  *time.Time
	}{
		{"has boosted", last, &last},
		{"never boosted", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStore(t)
			mock.ExpectQuery(`SELECT MAX\(created_at\) FROM boosts WHERE nanny_id = \$1`).
				WithArgs(int64(3)).
				WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(tt.value))

			got, err := s.LastNannyBoost(context.Background(), 3)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got))
		})
	}
}
