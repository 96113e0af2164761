// internal/workers/matching/rank-candidates/config.go
package rankcandidates

import (
	"time"

	"cuidly-workers/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	MaxItems        int
	MaxCandidates   int
	SearchRadiusKm  float64
	LoadConcurrency int
	BatchSize       int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:         60 * time.Second,
		MaxItems:        50,
		MaxCandidates:   200,
		SearchRadiusKm:  30,
		LoadConcurrency: 8,
		BatchSize:       50,
	}
}

func LoadConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	if cfg.Matching.MaxItems > 0 {
		c.MaxItems = cfg.Matching.MaxItems
	}
	if cfg.Matching.MaxCandidates > 0 {
		c.MaxCandidates = cfg.Matching.MaxCandidates
	}
	if cfg.Matching.SearchRadiusKm > 0 {
		c.SearchRadiusKm = cfg.Matching.SearchRadiusKm
	}
	if cfg.Matching.LoadConcurrency > 0 {
		c.LoadConcurrency = cfg.Matching.LoadConcurrency
	}
	return c
}
