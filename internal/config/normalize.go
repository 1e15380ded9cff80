package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeRenumber()
	return c.normalizeProgress()
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		if value, ok := os.LookupEnv(EnvLogDir); ok && strings.TrimSpace(value) != "" {
			c.Paths.LogDir = strings.TrimSpace(value)
		} else {
			c.Paths.LogDir = defaultLogDir
		}
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
		c.Logging.Format = "json"
	default:
		c.Logging.Format = format
	}

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch level {
	case "":
		c.Logging.Level = defaultLogLevel
	case "warning":
		c.Logging.Level = "warn"
	default:
		c.Logging.Level = level
	}
}

func (c *Config) normalizeRenumber() {
	seen := make(map[string]struct{}, len(c.Renumber.SkipExtensions))
	out := make([]string, 0, len(c.Renumber.SkipExtensions))
	for _, ext := range c.Renumber.SkipExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	c.Renumber.SkipExtensions = out
}

func (c *Config) normalizeProgress() error {
	if strings.TrimSpace(c.Progress.LogDir) == "" {
		if value, ok := os.LookupEnv(EnvDownloadLogDir); ok {
			c.Progress.LogDir = strings.TrimSpace(value)
		}
	}
	if c.Progress.LogDir == "" {
		return nil
	}
	var err error
	if c.Progress.LogDir, err = expandPath(c.Progress.LogDir); err != nil {
		return fmt.Errorf("progress.log_dir: %w", err)
	}
	return nil
}
