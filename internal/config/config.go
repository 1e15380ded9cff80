package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Prompts controls interactive confirmation before mutating commands.
type Prompts struct {
	Confirm bool `toml:"confirm"`
}

// Group contains configuration for manifest-driven grouping.
type Group struct {
	// WarnScore logs a warning when the best candidate scores below it.
	// Selection is unaffected.
	WarnScore     int  `toml:"warn_score"`
	IncludeHidden bool `toml:"include_hidden"`
}

// Renumber contains configuration for prefix zero-padding.
type Renumber struct {
	SkipExtensions []string `toml:"skip_extensions"`
}

// Progress contains configuration for download watching.
type Progress struct {
	LogDir              string `toml:"log_dir"`
	RecentWindowSeconds int    `toml:"recent_window_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	SmallPollSeconds    int    `toml:"small_poll_seconds"`
	MediumPollSeconds   int    `toml:"medium_poll_seconds"`
	LargePollSeconds    int    `toml:"large_poll_seconds"`
	MaxBackoffSeconds   int    `toml:"max_backoff_seconds"`
}

// Config encapsulates all configuration values for mediatidy.
//
// Configuration sections by subsystem:
//   - Paths: log and state directories
//   - Logging: log format, level, and retention
//   - Prompts: confirmation before mutating commands
//   - Group: manifest grouping
//   - Renumber: prefix renumbering
//   - Progress: download watching
type Config struct {
	Paths    Paths    `toml:"paths"`
	Logging  Logging  `toml:"logging"`
	Prompts  Prompts  `toml:"prompts"`
	Group    Group    `toml:"group"`
	Renumber Renumber `toml:"renumber"`
	Progress Progress `toml:"progress"`
}

const (
	defaultConfigPath = "~/.config/mediatidy/config.toml"
	projectConfigFile = "mediatidy.toml"
	journalFileName   = "journal.db"
	lockDirName       = "locks"

	// EnvLogDir overrides paths.log_dir when the config leaves it unset.
	EnvLogDir = "MEDIATIDY_LOG_DIR"
	// EnvDownloadLogDir overrides progress.log_dir when the config leaves it unset.
	EnvDownloadLogDir = "MEDIATIDY_DOWNLOAD_LOG_DIR"
)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir, c.LockDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JournalPath returns the location of the operation journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, journalFileName)
}

// LockDir returns the directory holding per-target lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, lockDirName)
}

// RecentWindow is how far back a download log may have changed to count as active.
func (c *Config) RecentWindow() time.Duration {
	return time.Duration(c.Progress.RecentWindowSeconds) * time.Second
}

// WatchTimeout bounds a single watch.
func (c *Config) WatchTimeout() time.Duration {
	return time.Duration(c.Progress.TimeoutSeconds) * time.Second
}

// PollIntervals returns the small, medium and large file poll intervals.
func (c *Config) PollIntervals() (small, medium, large time.Duration) {
	return time.Duration(c.Progress.SmallPollSeconds) * time.Second,
		time.Duration(c.Progress.MediumPollSeconds) * time.Second,
		time.Duration(c.Progress.LargePollSeconds) * time.Second
}

// MaxBackoff caps the retry interval while a download log is being discovered.
func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.Progress.MaxBackoffSeconds) * time.Second
}

// SkipsExtension reports whether renumbering leaves files with ext alone.
// ext may carry a leading dot.
func (c *Config) SkipsExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return false
	}
	for _, skip := range c.Renumber.SkipExtensions {
		if skip == ext {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
