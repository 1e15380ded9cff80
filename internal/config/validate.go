package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateGroup(); err != nil {
		return err
	}
	return c.validateProgress()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validateGroup() error {
	if c.Group.WarnScore < 0 || c.Group.WarnScore > 100 {
		return errors.New("group.warn_score must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateProgress() error {
	for _, field := range []struct {
		name  string
		value int
	}{
		{"progress.recent_window_seconds", c.Progress.RecentWindowSeconds},
		{"progress.timeout_seconds", c.Progress.TimeoutSeconds},
		{"progress.small_poll_seconds", c.Progress.SmallPollSeconds},
		{"progress.medium_poll_seconds", c.Progress.MediumPollSeconds},
		{"progress.large_poll_seconds", c.Progress.LargePollSeconds},
		{"progress.max_backoff_seconds", c.Progress.MaxBackoffSeconds},
	} {
		if field.value <= 0 {
			return fmt.Errorf("%s must be positive", field.name)
		}
	}
	return nil
}
