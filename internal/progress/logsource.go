package progress

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"mediatidy/internal/logging"
	"mediatidy/internal/logs"
	"mediatidy/internal/namematch"
)

var (
	totalPattern      = regexp.MustCompile(`Content.Range: bytes \d+.\d+/(\d+)`)
	downloadedPattern = regexp.MustCompile(`time \d+, speed \d+, downl (\d+) Bytes`)
)

// parseTotal extracts the full size from a Content-Range line.
func parseTotal(line string) (int64, bool) {
	return parseFirstGroup(totalPattern, line)
}

// parseDownloaded extracts the byte count from a transfer status line.
func parseDownloaded(line string) (int64, bool) {
	return parseFirstGroup(downloadedPattern, line)
}

func parseFirstGroup(re *regexp.Regexp, line string) (int64, bool) {
	m := re.FindStringSubmatch(line)
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// LogSource reads progress from the per-download logs a download manager
// keeps under one directory tree.
type LogSource struct {
	dir    string
	target string
	window time.Duration
	logger *slog.Logger
	now    func() time.Time

	follower       *logs.Follower
	total          int64
	haveTotal      bool
	downloaded     int64
	haveDownloaded bool
}

// NewLogSource watches logs under dir that changed within window for the
// download producing target.
func NewLogSource(dir, target string, window time.Duration, logger *slog.Logger) *LogSource {
	return &LogSource{
		dir:    dir,
		target: target,
		window: window,
		logger: logging.NewComponentLogger(logger, "progress"),
		now:    time.Now,
	}
}

// LogPath returns the log file currently followed, if any.
func (s *LogSource) LogPath() string {
	if s.follower == nil {
		return ""
	}
	return s.follower.Path()
}

// Total discovers the download log and reads the final size from it. Until
// the size has been seen the log choice is re-evaluated on every call.
func (s *LogSource) Total(ctx context.Context) (int64, bool, error) {
	if s.haveTotal {
		return s.total, true, nil
	}
	path, err := s.discover(ctx)
	if err != nil {
		return 0, false, err
	}
	if path == "" {
		return 0, false, nil
	}
	if s.follower == nil || s.follower.Path() != path {
		s.follow(path)
	}
	if err := s.consume(); err != nil {
		return 0, false, err
	}
	return s.total, s.haveTotal, nil
}

// Sample returns the last downloaded byte count seen in the log.
func (s *LogSource) Sample(ctx context.Context) (Sample, error) {
	if s.follower == nil {
		if _, _, err := s.Total(ctx); err != nil {
			return Sample{}, err
		}
		if s.follower == nil {
			return Sample{}, nil
		}
	}
	if err := s.consume(); err != nil {
		return Sample{}, err
	}
	return Sample{Downloaded: s.downloaded, Known: s.haveDownloaded}, nil
}

func (s *LogSource) follow(path string) {
	s.follower = logs.NewFollower(path)
	s.total, s.haveTotal = 0, false
	s.downloaded, s.haveDownloaded = 0, false
	s.logger.Info("following download log",
		logging.String("log", path),
		logging.String(logging.FieldEventType, "download_log_selected"),
	)
}

func (s *LogSource) consume() error {
	lines, err := s.follower.Next()
	if err != nil {
		return err
	}
	for _, line := range lines {
		if !s.haveTotal {
			if total, ok := parseTotal(line); ok {
				s.total, s.haveTotal = total, true
			}
		}
		if n, ok := parseDownloaded(line); ok {
			s.downloaded, s.haveDownloaded = n, true
		}
	}
	return nil
}

type logFile struct {
	path    string
	modTime time.Time
}

// discover returns the recent log that best matches the target, or "".
func (s *LogSource) discover(ctx context.Context) (string, error) {
	recent, err := s.recentLogs(ctx)
	if err != nil {
		return "", err
	}
	switch len(recent) {
	case 0:
		s.logger.Debug("no recent download log",
			logging.String("dir", s.dir),
			logging.Duration("window", s.window),
		)
		return "", nil
	case 1:
		return recent[0].path, nil
	}

	paths := make([]string, len(recent))
	for i, f := range recent {
		paths[i] = f.path
	}
	best, err := namematch.Match(s.target, paths)
	if err != nil {
		return "", err
	}
	s.logger.Debug("several recent download logs",
		logging.Int("count", len(paths)),
		logging.String("best", best.Label),
		logging.Int("score", best.Score),
	)
	return best.Label, nil
}

// recentLogs lists *.log files under dir changed within the window, newest first.
func (s *LogSource) recentLogs(ctx context.Context) ([]logFile, error) {
	cutoff := s.now().Add(-s.window)
	var found []logFile
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.dir {
				return err
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".log") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			return nil
		}
		found = append(found, logFile{path: path, modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].modTime.After(found[j].modTime)
	})
	return found, nil
}
