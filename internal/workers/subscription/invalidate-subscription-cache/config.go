// internal/workers/subscription/invalidate-subscription-cache/config.go
package invalidatesubscriptioncache

import (
	"time"

	"cuidly-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// Warm re-reads the subscription after dropping it so the next
	// entitlement check hits a fresh cache entry.
	Warm bool
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout: config.GetDuration(wc.Timeout),
		Warm:    cfg.Subscription.WarmOnInvalidate,
	}
}
