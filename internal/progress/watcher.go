package progress

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"mediatidy/internal/batch"
	"mediatidy/internal/logging"
)

// ErrTimeout is returned when the target did not appear within the timeout.
var ErrTimeout = batch.ErrTimeout

const (
	// MediumThreshold and LargeThreshold split downloads into poll classes.
	MediumThreshold int64 = 10 << 20
	LargeThreshold  int64 = 1000 << 20
)

var errNotYet = errors.New("download size not known yet")

// Intervals are the poll intervals per download size class.
type Intervals struct {
	Small  time.Duration
	Medium time.Duration
	Large  time.Duration
}

// For picks the interval for a download of total bytes. Unknown sizes poll
// at the medium interval.
func (iv Intervals) For(total int64, known bool) time.Duration {
	switch {
	case !known:
		return iv.Medium
	case total >= LargeThreshold:
		return iv.Large
	case total >= MediumThreshold:
		return iv.Medium
	default:
		return iv.Small
	}
}

// Update is passed to the report callback. Downloaded never decreases.
type Update struct {
	Target     string
	Downloaded int64
	Total      int64
	TotalKnown bool
	Done       bool
}

// Watcher waits for downloads to finish.
type Watcher struct {
	Timeout        time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Intervals      Intervals
	Logger         *slog.Logger
}

// Wait blocks until target exists. While the total size is unknown it retries
// discovery with exponential backoff; afterwards it samples src at the
// size-dependent interval. report may be nil. A timeout yields ErrTimeout and
// cancellation of ctx returns ctx.Err().
func (w *Watcher) Wait(ctx context.Context, target string, src Source, report func(Update)) error {
	logger := logging.NewComponentLogger(w.Logger, "progress")
	if report == nil {
		report = func(Update) {}
	}
	state := Update{Target: target}

	if exists(target) {
		state.Done = true
		report(state)
		logger.Info("target already present", logging.String("path", target))
		return nil
	}

	waitCtx := ctx
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	if totals, ok := src.(TotalSource); ok {
		done, err := w.discoverTotal(waitCtx, target, totals, &state, logger)
		if err != nil {
			return w.finishErr(ctx, waitCtx, target, err)
		}
		if done {
			state.Done = true
			report(state)
			return nil
		}
		report(state)
	}

	interval := w.Intervals.For(state.Total, state.TotalKnown)
	if interval <= 0 {
		interval = time.Second
	}
	logger.Info("waiting for download",
		logging.String("path", target),
		logging.Int64("total_bytes", state.Total),
		logging.Bool("total_known", state.TotalKnown),
		logging.Duration("interval", interval),
	)

	sampler := logging.NewProgressSampler(5, 0)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-waitCtx.Done():
			return w.finishErr(ctx, waitCtx, target, waitCtx.Err())
		case <-ticker.C:
		}

		if exists(target) {
			state.Done = true
			if state.TotalKnown && state.Downloaded < state.Total {
				state.Downloaded = state.Total
			}
			report(state)
			logger.Info("download complete", logging.String("path", target))
			return nil
		}

		sample, err := src.Sample(waitCtx)
		if err != nil {
			logging.WarnWithContext(logger, "progress sample failed", "progress_sample_failed",
				logging.String("path", target),
				logging.Error(err),
				logging.String(logging.FieldImpact, "progress display may lag"),
			)
			continue
		}
		if !sample.Known || sample.Downloaded < state.Downloaded {
			continue
		}
		state.Downloaded = sample.Downloaded
		report(state)
		if sampler.ShouldLog(state.Downloaded, state.Total) {
			logger.Debug("download progress",
				logging.Int64("downloaded_bytes", state.Downloaded),
				logging.Int64("total_bytes", state.Total),
			)
		}
	}
}

// discoverTotal retries until the total is known. done reports that the
// target appeared in the meantime.
func (w *Watcher) discoverTotal(ctx context.Context, target string, src TotalSource, state *Update, logger *slog.Logger) (done bool, err error) {
	policy := backoff.NewExponentialBackOff()
	if w.InitialBackoff > 0 {
		policy.InitialInterval = w.InitialBackoff
	}
	if w.MaxBackoff > 0 {
		policy.MaxInterval = w.MaxBackoff
	}
	if policy.InitialInterval > policy.MaxInterval {
		policy.InitialInterval = policy.MaxInterval
	}
	policy.MaxElapsedTime = 0

	op := func() error {
		if exists(target) {
			done = true
			return nil
		}
		total, ok, err := src.Total(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errNotYet
		}
		state.Total, state.TotalKnown = total, true
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Debug("download size not available",
			logging.String("reason", err.Error()),
			logging.Duration("retry_in", next),
		)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify); err != nil {
		return false, err
	}
	return done, nil
}

func (w *Watcher) finishErr(parent, waitCtx context.Context, target string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || waitCtx.Err() != nil {
		return batch.Wrap(ErrTimeout, "watch", "waiting for "+target+" after "+w.Timeout.String(), nil)
	}
	return err
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
