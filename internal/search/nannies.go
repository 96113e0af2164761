// Package search prefetches nanny candidates from the Elasticsearch nanny
// index before they are loaded from Postgres and scored.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/metrics"
	"cuidly-workers/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	DefaultIndex = "nannies"
	DefaultSize  = 50
	MaxSize      = 500
)

// Query narrows the candidate pool with the cheap filters the index can
// answer. The matcher still applies every elimination rule afterwards.
type Query struct {
	Location        *matching.Location
	RadiusKm        float64
	NannyTypes      []string
	ContractRegimes []string
	Availability    []matching.Slot
	HasPets         bool
	MaxHourlyRate   *float64
	ExcludeIDs      []int64
	Size            int
}

type Hit struct {
	NannyID    int64    `json:"nannyId"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

type Result struct {
	Hits      []Hit `json:"hits"`
	TotalHits int64 `json:"totalHits"`
	Took      int64 `json:"took"`
}

// NannyIDs returns the hit ids in index order.
func (r *Result) NannyIDs() []int64 {
	ids := make([]int64, 0, len(r.Hits))
	for _, h := range r.Hits {
		ids = append(ids, h.NannyID)
	}
	return ids
}

type Searcher struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func New(client *elasticsearch.Client, index string, log logger.Logger) *Searcher {
	if index == "" {
		index = DefaultIndex
	}
	return &Searcher{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search", "index": index}),
	}
}

// QueryForFamily derives the prefetch filters from a family's preferences.
func QueryForFamily(f matching.FamilyData, radiusKm float64, size int) Query {
	return Query{
		Location:        f.Location,
		RadiusKm:        radiusKm,
		NannyTypes:      f.NannyTypes,
		ContractRegimes: f.ContractRegimes,
		Availability:    f.Availability,
		HasPets:         f.HasPets,
		MaxHourlyRate:   f.HourlyRateMax,
		Size:            size,
	}
}

// SlotKey is the keyword a Slot is indexed under, e.g. MONDAY_MORNING.
func SlotKey(s matching.Slot) string {
	return strings.ToUpper(strings.TrimSpace(s.Day)) + "_" + strings.ToUpper(strings.TrimSpace(s.Shift))
}

func (s *Searcher) SearchNannies(ctx context.Context, q Query) (*Result, error) {
	body, err := json.Marshal(BuildQuery(q))
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(s.index, err)
	}

	size := clampSize(q.Size)
	req := esapi.SearchRequest{
		Index:          []string{s.index},
		Body:           bytes.NewReader(body),
		Size:           &size,
		TrackTotalHits: true,
	}

	start := time.Now()
	res, err := req.Do(ctx, s.client)
	metrics.SearchQueryDuration.WithLabelValues(s.index).Observe(time.Since(start).Seconds())
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError(s.index)
		}
		return nil, errors.NewSearchQueryFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(s.index, fmt.Errorf("status %s", res.Status()))
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, errors.NewSearchQueryFailedError(s.index, fmt.Errorf("decode response: %w", err))
	}

	out := &Result{TotalHits: sr.Hits.Total.Value, Took: sr.Took, Hits: make([]Hit, 0, len(sr.Hits.Hits))}
	for _, h := range sr.Hits.Hits {
		hit := Hit{NannyID: h.Source.NannyID}
		if q.Location != nil && len(h.Sort) > 0 {
			if d, ok := h.Sort[0].(float64); ok {
				hit.DistanceKm = &d
			}
		}
		out.Hits = append(out.Hits, hit)
	}

	s.logger.Debug("nanny search finished", map[string]interface{}{
		"hits":      len(out.Hits),
		"totalHits": out.TotalHits,
		"took":      out.Took,
	})
	return out, nil
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source struct {
				NannyID int64 `json:"nanny_id"`
			} `json:"_source"`
			Sort []interface{} `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// BuildQuery renders q as an Elasticsearch request body.
func BuildQuery(q Query) map[string]interface{} {
	filter := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"is_active": true}},
	}
	var mustNot []interface{}

	if q.Location != nil && q.RadiusKm > 0 {
		filter = append(filter, map[string]interface{}{
			"geo_distance": map[string]interface{}{
				"distance": fmt.Sprintf("%gkm", q.RadiusKm),
				"location": geoPoint(*q.Location),
			},
		})
	}
	if len(q.NannyTypes) > 0 {
		filter = append(filter, terms("nanny_types", q.NannyTypes))
	}
	if len(q.ContractRegimes) > 0 {
		filter = append(filter, terms("contract_regimes", q.ContractRegimes))
	}
	if len(q.Availability) > 0 {
		keys := make([]string, 0, len(q.Availability))
		for _, slot := range q.Availability {
			keys = append(keys, SlotKey(slot))
		}
		filter = append(filter, terms("availability", keys))
	}
	if q.MaxHourlyRate != nil {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{
				"hourly_rate_min": map[string]interface{}{"lte": *q.MaxHourlyRate},
			},
		})
	}
	if q.HasPets {
		mustNot = append(mustNot, map[string]interface{}{
			"term": map[string]interface{}{"pets_comfort": string(matching.PetsNo)},
		})
	}
	if len(q.ExcludeIDs) > 0 {
		mustNot = append(mustNot, map[string]interface{}{
			"terms": map[string]interface{}{"nanny_id": q.ExcludeIDs},
		})
	}

	boolQuery := map[string]interface{}{"filter": filter}
	if len(mustNot) > 0 {
		boolQuery["must_not"] = mustNot
	}

	var sort []interface{}
	if q.Location != nil {
		sort = append(sort, map[string]interface{}{
			"_geo_distance": map[string]interface{}{
				"location": geoPoint(*q.Location),
				"order":    "asc",
				"unit":     "km",
			},
		})
	}
	sort = append(sort,
		map[string]interface{}{"last_active_at": map[string]interface{}{"order": "desc", "missing": "_last"}},
		map[string]interface{}{"nanny_id": "asc"},
	)

	return map[string]interface{}{
		"_source": []string{"nanny_id"},
		"query":   map[string]interface{}{"bool": boolQuery},
		"sort":    sort,
	}
}

func terms(field string, values []string) map[string]interface{} {
	return map[string]interface{}{"terms": map[string]interface{}{field: values}}
}

func geoPoint(l matching.Location) map[string]float64 {
	return map[string]float64{"lat": l.Latitude, "lon": l.Longitude}
}

func clampSize(n int) int {
	switch {
	case n <= 0:
		return DefaultSize
	case n > MaxSize:
		return MaxSize
	default:
		return n
	}
}
