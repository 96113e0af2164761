// internal/workers/notification/send-notification/config.go
package sendnotification

import (
	"time"

	"cuidly-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	// SMSPriority is the lowest priority that also goes out by SMS.
	SMSPriority string
	Timeout     time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		EmailEnabled: cfg.Notifications.Email.Enabled,
		SMSEnabled:   cfg.Notifications.SMS.Enabled,
		SMSPriority:  cfg.Notifications.SMS.PriorityThreshold,
		Timeout:      config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
