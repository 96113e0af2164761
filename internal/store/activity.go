package store

import (
	"context"
	"database/sql"
	"time"

	"cuidly-workers/internal/matching"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// JobStatusActive is the status of a job that still accepts applications.
const JobStatusActive = "ACTIVE"

// Job is a job posting with its owner and the subset the matcher needs.
type Job struct {
	ID        int64
	FamilyID  int64
	Status    string
	CreatedAt time.Time
	Data      matching.JobData
}

type Conversation struct {
	ID       int64
	JobID    *int64
	NannyID  int64
	FamilyID int64
}

// MessageCounts splits a conversation's messages by sender side.
type MessageCounts struct {
	Nanny  int
	Family int
}

func (s *Store) GetJob(ctx context.Context, id int64) (Job, error) {
	var (
		job          Job
		requirements pq.StringArray
		childIDs     pq.Int64Array
		activities   pq.StringArray
	)
	q := s.sb.Select(
		"id", "family_id", "status", "created_at",
		"mandatory_requirements", "child_ids", "desired_activities", "requires_location",
	).From("jobs").Where(sq.Eq{"id": id})

	err := s.queryRow(ctx, "get job", q,
		&job.ID, &job.FamilyID, &job.Status, &job.CreatedAt,
		&requirements, &childIDs, &activities, &job.Data.RequiresLocation,
	)
	if err != nil {
		return Job{}, err
	}

	job.Data.ID = job.ID
	job.Data.MandatoryRequirements = []string(requirements)
	job.Data.ChildIDs = []int64(childIDs)
	job.Data.DesiredActivities = []string(activities)
	return job, nil
}

func (s *Store) CountActiveJobs(ctx context.Context, familyID int64) (int, error) {
	return s.count(ctx, "count active jobs", s.sb.Select("COUNT(*)").
		From("jobs").
		Where(sq.Eq{"family_id": familyID, "status": JobStatusActive}))
}

func (s *Store) CountJobConversations(ctx context.Context, jobID int64) (int, error) {
	return s.count(ctx, "count job conversations", s.sb.Select("COUNT(*)").
		From("conversations").
		Where(sq.Eq{"job_id": jobID}))
}

// ConversationExists reports whether the nanny already talks to the job's
// family about this job.
func (s *Store) ConversationExists(ctx context.Context, jobID, nannyID int64) (bool, error) {
	n, err := s.count(ctx, "conversation exists", s.sb.Select("COUNT(*)").
		From("conversations").
		Where(sq.Eq{"job_id": jobID, "nanny_id": nannyID}))
	return n > 0, err
}

func (s *Store) GetConversation(ctx context.Context, id int64) (Conversation, error) {
	var (
		c     Conversation
		jobID sql.NullInt64
	)
	q := s.sb.Select("id", "job_id", "nanny_id", "family_id").
		From("conversations").
		Where(sq.Eq{"id": id})
	if err := s.queryRow(ctx, "get conversation", q, &c.ID, &jobID, &c.NannyID, &c.FamilyID); err != nil {
		return Conversation{}, err
	}
	if jobID.Valid {
		c.JobID = &jobID.Int64
	}
	return c, nil
}

func (s *Store) CountMessages(ctx context.Context, conversationID int64) (MessageCounts, error) {
	var mc MessageCounts
	q := s.sb.Select(
		"COUNT(*) FILTER (WHERE sender_type = 'NANNY')",
		"COUNT(*) FILTER (WHERE sender_type = 'FAMILY')",
	).From("messages").Where(sq.Eq{"conversation_id": conversationID})
	if err := s.queryRow(ctx, "count messages", q, &mc.Nanny, &mc.Family); err != nil {
		return MessageCounts{}, err
	}
	return mc, nil
}

// CountFamilyBoosts counts boosts created in [start, end).
func (s *Store) CountFamilyBoosts(ctx context.Context, familyID int64, start, end time.Time) (int, error) {
	return s.count(ctx, "count family boosts", s.sb.Select("COUNT(*)").
		From("boosts").
		Where(sq.Eq{"family_id": familyID}).
		Where(sq.GtOrEq{"created_at": start}).
		Where(sq.Lt{"created_at": end}))
}

// LastNannyBoost returns the creation time of the nanny's latest boost, or
// nil when there is none.
func (s *Store) LastNannyBoost(ctx context.Context, nannyID int64) (*time.Time, error) {
	var last sql.NullTime
	q := s.sb.Select("MAX(created_at)").
		From("boosts").
		Where(sq.Eq{"nanny_id": nannyID})
	if err := s.queryRow(ctx, "last nanny boost", q, &last); err != nil {
		return nil, err
	}
	return nullTime(last), nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
