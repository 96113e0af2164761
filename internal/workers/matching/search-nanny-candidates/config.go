// internal/workers/matching/search-nanny-candidates/config.go
package searchnannycandidates

import (
	"time"

	"cuidly-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	SearchRadiusKm float64
	DefaultSize    int
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:        config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		SearchRadiusKm: cfg.Matching.SearchRadiusKm,
		DefaultSize:    cfg.Matching.MaxCandidates,
	}
}
