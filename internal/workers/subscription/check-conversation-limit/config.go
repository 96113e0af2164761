// internal/workers/subscription/check-conversation-limit/config.go
package checkconversationlimit

import (
	"time"

	"cuidly-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}

func LoadConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	return c
}
