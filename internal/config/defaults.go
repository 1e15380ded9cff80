package config

const (
	defaultLogDir              = "~/.local/share/mediatidy/logs"
	defaultStateDir            = "~/.local/share/mediatidy"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
	defaultPromptConfirm       = true
	defaultWarnScore           = 60
	defaultRecentWindowSeconds = 300
	defaultTimeoutSeconds      = 6 * 60 * 60
	defaultSmallPollSeconds    = 1
	defaultMediumPollSeconds   = 30
	defaultLargePollSeconds    = 600
	defaultMaxBackoffSeconds   = 30
)

// defaultSkipExtensions are document and image files that sit next to
// numbered lessons and keep their names.
var defaultSkipExtensions = []string{"docx", "pdf", "jpg", "doc", "xlsx", "txt", "html"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Prompts: Prompts{
			Confirm: defaultPromptConfirm,
		},
		Group: Group{
			WarnScore: defaultWarnScore,
		},
		Renumber: Renumber{
			SkipExtensions: append([]string(nil), defaultSkipExtensions...),
		},
		Progress: Progress{
			RecentWindowSeconds: defaultRecentWindowSeconds,
			TimeoutSeconds:      defaultTimeoutSeconds,
			SmallPollSeconds:    defaultSmallPollSeconds,
			MediumPollSeconds:   defaultMediumPollSeconds,
			LargePollSeconds:    defaultLargePollSeconds,
			MaxBackoffSeconds:   defaultMaxBackoffSeconds,
		},
	}
}
