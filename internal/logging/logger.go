package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Console receives human-oriented output. Nil means stderr.
	Console io.Writer
	// FilePath, when set, receives every record as JSON in addition to the
	// console.
	FilePath    string
	Development bool
}

// Session is a constructed logger plus the handles needed to pause console
// output and close the log file.
type Session struct {
	Logger  *slog.Logger
	console *switchHandler
	file    *os.File
	path    string
}

// New constructs a logger using the provided options.
func New(opts Options) (*Session, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	addSource := opts.Development || level <= slog.LevelDebug

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var consoleHandler slog.Handler
	switch format {
	case "json":
		consoleHandler = newJSONHandler(console, levelVar, addSource)
	case "console":
		consoleHandler = newPrettyHandler(console, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	session := &Session{console: newSwitchHandler(consoleHandler)}
	handlers := []slog.Handler{session.console}

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		if err := ensureLogDir(path); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		// The file always records debug detail regardless of console level.
		fileLevel := new(slog.LevelVar)
		fileLevel.Set(slog.LevelDebug)
		handlers = append(handlers, newJSONHandler(file, fileLevel, true))
		session.file = file
		session.path = path
	}

	session.Logger = slog.New(slogmulti.Fanout(handlers...))
	return session, nil
}

// SuspendConsole stops console output until the returned function is called.
// File output is unaffected.
func (s *Session) SuspendConsole() (resume func()) {
	if s == nil || s.console == nil {
		return func() {}
	}
	s.console.disable()
	return s.console.enable
}

// FilePath returns the log file receiving JSON records, if any.
func (s *Session) FilePath() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close flushes and closes the log file.
func (s *Session) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// RunLogName returns the per-run log file name for an operation started at ts.
func RunLogName(operation string, ts time.Time) string {
	operation = strings.TrimSpace(operation)
	if operation == "" {
		operation = "run"
	}
	return fmt.Sprintf("mediatidy-%s-%s.log", ts.Format("20060102-150405"), operation)
}

// RunLogPattern matches the names produced by RunLogName.
const RunLogPattern = "mediatidy-*.log"

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
