// internal/workers/matching/search-nanny-candidates/handler.go
package searchnannycandidates

import (
	"context"

	"cuidly-workers/internal/common/camunda"
	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/observability"
	"cuidly-workers/internal/matching"
	"cuidly-workers/internal/search"
	"cuidly-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "search-nanny-candidates"

type FamilyStore interface {
	GetFamily(ctx context.Context, id int64) (matching.FamilyData, error)
}

type Searcher interface {
	SearchNannies(ctx context.Context, q search.Query) (*search.Result, error)
}

type Handler struct {
	config   *Config
	families FamilyStore
	searcher Searcher
	runner   *camunda.Runner
	logger   logger.Logger
}

func NewHandler(config *Config, families FamilyStore, searcher Searcher, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		families: families,
		searcher: searcher,
		runner:   camunda.NewRunner(TaskType, config.Timeout, inputSchema, obs, log),
		logger:   log,
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
	q := search.Query{RadiusKm: h.config.SearchRadiusKm, Size: h.config.DefaultSize}
	if input.FamilyID != nil {
		family, err := h.families.GetFamily(ctx, *input.FamilyID)
		if err != nil {
			return nil, store.Classify("get family", err, errors.NewFamilyNotFoundError(*input.FamilyID))
		}
		q = search.QueryForFamily(family, q.RadiusKm, q.Size)
	}
	applyOverrides(&q, input)

	res, err := h.searcher.SearchNannies(ctx, q)
	if err != nil {
		return nil, err
	}

	h.logger.Info("nanny candidates found", map[string]interface{}{
		"hits":      len(res.Hits),
		"totalHits": res.TotalHits,
		"geo":       q.Location != nil,
	})
	return &Output{
		NannyIDs:  res.NannyIDs(),
		Hits:      res.Hits,
		TotalHits: res.TotalHits,
		TookMs:    res.Took,
	}, nil
}

func applyOverrides(q *search.Query, in *Input) {
	if in.Location != nil {
		q.Location = in.Location
	}
	if in.RadiusKm != nil {
		q.RadiusKm = *in.RadiusKm
	}
	if len(in.NannyTypes) > 0 {
		q.NannyTypes = in.NannyTypes
	}
	if len(in.ContractRegimes) > 0 {
		q.ContractRegimes = in.ContractRegimes
	}
	if len(in.Availability) > 0 {
		q.Availability = in.Availability
	}
	if in.HasPets != nil {
		q.HasPets = *in.HasPets
	}
	if in.MaxHourlyRate != nil {
		q.MaxHourlyRate = in.MaxHourlyRate
	}
	if in.Size > 0 {
		q.Size = in.Size
	}
	q.ExcludeIDs = in.ExcludeIDs
}
