// internal/workers/subscription/check-job-expiration/config.go
package checkjobexpiration

import (
	"time"

	"cuidly-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)}
}
