package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mediatidy/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Log and state directories exist on return; prompts are off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Prompts.Confirm = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithDownloadLogDir creates a download log directory under the test root
// and points progress.log_dir at it.
func WithDownloadLogDir() ConfigOption {
	return func(b *configBuilder) {
		dir := filepath.Join(b.baseDir, "download-logs")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.t.Fatalf("mkdir download log dir: %v", err)
		}
		b.cfg.Progress.LogDir = dir
	}
}

// WithWarnScore overrides group.warn_score.
func WithWarnScore(score int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Group.WarnScore = score
	}
}

// WithSkipExtensions overrides renumber.skip_extensions.
func WithSkipExtensions(exts ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Renumber.SkipExtensions = exts
	}
}

// WithConfirm turns the confirmation prompt on or off.
func WithConfirm(confirm bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Prompts.Confirm = confirm
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WriteConfig encodes cfg as TOML next to its directories and returns the path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(BaseDir(cfg), "config.toml")
	data, err := marshalConfig(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
