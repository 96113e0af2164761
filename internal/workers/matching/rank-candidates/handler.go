// internal/workers/matching/rank-candidates/handler.go
package rankcandidates

import (
	"context"
	"time"

	"cuidly-workers/internal/common/camunda"
	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/metrics"
	"cuidly-workers/internal/common/observability"
	"cuidly-workers/internal/matching"
	"cuidly-workers/internal/search"
	"cuidly-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/sync/errgroup"
)

const TaskType = "rank-candidates"

type Store interface {
	GetJob(ctx context.Context, id int64) (store.Job, error)
	GetFamily(ctx context.Context, id int64) (matching.FamilyData, error)
	GetChildren(ctx context.Context, familyID int64, ids []int64) ([]matching.ChildData, error)
	GetNannies(ctx context.Context, ids []int64) ([]matching.NannyProfile, error)
}

type Searcher interface {
	SearchNannies(ctx context.Context, q search.Query) (*search.Result, error)
}

type Handler struct {
	config   *Config
	store    Store
	searcher Searcher
	runner   *camunda.Runner
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(config *Config, st Store, searcher Searcher, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		store:    st,
		searcher: searcher,
		runner:   camunda.NewRunner(TaskType, config.Timeout, inputSchema, obs, log),
		logger:   log,
		now:      time.Now,
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
	start := time.Now()

	job, err := h.store.GetJob(ctx, input.JobID)
	if err != nil {
		return nil, store.Classify("get job", err, errors.NewJobNotFoundError(input.JobID))
	}

	var (
		family   matching.FamilyData
		children []matching.ChildData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := h.store.GetFamily(gctx, job.FamilyID)
		if err != nil {
			return store.Classify("get family", err, errors.NewFamilyNotFoundError(job.FamilyID))
		}
		family = f
		return nil
	})
	g.Go(func() error {
		c, err := h.store.GetChildren(gctx, job.FamilyID, job.Data.ChildIDs)
		if err != nil {
			return store.Classify("get children", err, nil)
		}
		children = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids, source := uniqueIDs(input.NannyIDs), SourceInput
	if len(ids) == 0 {
		res, err := h.searcher.SearchNannies(ctx, search.QueryForFamily(family, h.config.SearchRadiusKm, h.config.MaxCandidates))
		if err != nil {
			return nil, err
		}
		ids, source = res.NannyIDs(), SourceSearch
	}
	if len(ids) > h.config.MaxCandidates {
		ids = ids[:h.config.MaxCandidates]
	}

	nannies, err := h.loadNannies(ctx, ids)
	if err != nil {
		return nil, err
	}

	ranked := matching.Rank(job.Data, family, children, nannies, h.now())
	out := &Output{JobID: job.ID, TotalScored: len(ranked), Source: source, Candidates: []RankedCandidate{}}

	limit := h.maxItems(input.MaxItems)
	for _, c := range ranked {
		metrics.RecordMatchScore(c.Result.Score, c.Result.IsEligible)
		if c.Result.IsEligible {
			out.EligibleCount++
		} else if !input.IncludeIneligible {
			continue
		}
		if len(out.Candidates) == limit {
			continue
		}
		out.Candidates = append(out.Candidates, RankedCandidate{
			Position:           len(out.Candidates) + 1,
			NannyID:            c.Nanny.ID,
			Score:              c.Result.Score,
			IsEligible:         c.Result.IsEligible,
			EliminationReasons: c.Result.EliminationReasons,
			Breakdown:          c.Result.Breakdown,
			DistanceKm:         c.Result.DistanceKm,
			HasActiveBoost:     c.Nanny.HasActiveBoost,
			IsHighlighted:      c.Nanny.IsHighlighted,
		})
	}

	h.logger.Info("candidates ranked", map[string]interface{}{
		"jobId":      job.ID,
		"source":     source,
		"scored":     out.TotalScored,
		"eligible":   out.EligibleCount,
		"returned":   len(out.Candidates),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return out, nil
}

// loadNannies fetches profiles in batches, at most LoadConcurrency at a time.
func (h *Handler) loadNannies(ctx context.Context, ids []int64) ([]matching.NannyProfile, error) {
	batches := chunk(ids, h.config.BatchSize)
	loaded := make([][]matching.NannyProfile, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(h.config.LoadConcurrency, 1))
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			n, err := h.store.GetNannies(gctx, batch)
			if err != nil {
				return store.Classify("get nannies", err, nil)
			}
			loaded[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]matching.NannyProfile, 0, len(ids))
	for _, b := range loaded {
		out = append(out, b...)
	}
	return out, nil
}

func (h *Handler) maxItems(requested int) int {
	if requested > 0 && requested < h.config.MaxItems {
		return requested
	}
	return h.config.MaxItems
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func chunk(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = len(ids)
	}
	var out [][]int64
	for len(ids) > 0 {
		n := min(size, len(ids))
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	return out
}
