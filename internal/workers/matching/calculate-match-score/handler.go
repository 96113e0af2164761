// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

import (
	"context"
	"time"

	"cuidly-workers/internal/common/camunda"
	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/metrics"
	"cuidly-workers/internal/common/observability"
	"cuidly-workers/internal/matching"
	"cuidly-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "calculate-match-score"

type Store interface {
	GetJob(ctx context.Context, id int64) (store.Job, error)
	GetFamily(ctx context.Context, id int64) (matching.FamilyData, error)
	GetChildren(ctx context.Context, familyID int64, ids []int64) ([]matching.ChildData, error)
	GetNanny(ctx context.Context, id int64) (matching.NannyProfile, error)
}

type Handler struct {
	config *Config
	store  Store
	runner *camunda.Runner
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, st Store, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  st,
		runner: camunda.NewRunner(TaskType, config.Timeout, inputSchema, obs, log),
		logger: log,
		now:    time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, func(ctx context.Context, job entities.Job) (interface{}, error) {
		var input Input
		if err := camunda.Decode(job, &input); err != nil {
			return nil, err
		}
		return h.execute(ctx, &input)
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	in, err := h.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	res := matching.Calculate(in, h.now())
	metrics.RecordMatchScore(res.Score, res.IsEligible)

	h.logger.Info("match score calculated", map[string]interface{}{
		"jobId":      in.Job.ID,
		"nannyId":    res.NannyID,
		"score":      res.Score,
		"isEligible": res.IsEligible,
		"failed":     res.FailedRules,
	})
	return &Output{Result: res, JobID: in.Job.ID}, nil
}

// resolve assembles the scorer input, loading whatever the job variables did
// not carry inline.
func (h *Handler) resolve(ctx context.Context, input *Input) (matching.Input, error) {
	var in matching.Input

	switch {
	case input.Job != nil && input.Family != nil:
		in.Job, in.Family, in.Children = *input.Job, *input.Family, input.Children
	case input.JobID != nil:
		job, err := h.store.GetJob(ctx, *input.JobID)
		if err != nil {
			return in, store.Classify("get job", err, errors.NewJobNotFoundError(*input.JobID))
		}
		family, err := h.store.GetFamily(ctx, job.FamilyID)
		if err != nil {
			return in, store.Classify("get family", err, errors.NewFamilyNotFoundError(job.FamilyID))
		}
		children, err := h.store.GetChildren(ctx, job.FamilyID, job.Data.ChildIDs)
		if err != nil {
			return in, store.Classify("get children", err, nil)
		}
		in.Job, in.Family, in.Children = job.Data, family, children
	default:
		return in, errors.NewInvalidInputError("either jobId or job and family are required")
	}

	switch {
	case input.Nanny != nil:
		in.Nanny = *input.Nanny
	case input.NannyID != nil:
		nanny, err := h.store.GetNanny(ctx, *input.NannyID)
		if err != nil {
			return in, store.Classify("get nanny", err, errors.NewNannyNotFoundError(*input.NannyID))
		}
		in.Nanny = nanny
	default:
		return in, errors.NewInvalidInputError("either nannyId or nanny is required")
	}
	return in, nil
}
