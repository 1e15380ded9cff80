package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mediatidy/internal/logging"
	"mediatidy/internal/runctx"
)

// ErrSkip marks an item that was deliberately left untouched. Item functions
// return it (optionally wrapped) to be counted as skipped instead of failed.
var ErrSkip = errors.New("skipped")

// Failure records one item that failed.
type Failure struct {
	Item string
	Err  error
}

// Summary tallies a batch run.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []Failure
}

// Add merges other into s.
func (s *Summary) Add(other Summary) {
	s.Total += other.Total
	s.Succeeded += other.Succeeded
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.Failures = append(s.Failures, other.Failures...)
}

// Err returns a non-nil error when any item failed.
func (s Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	errs := make([]error, 0, len(s.Failures))
	for _, f := range s.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Item, f.Err))
	}
	return fmt.Errorf("%d of %d items failed: %w", s.Failed, s.Total, errors.Join(errs...))
}

// Runner executes per-item work and keeps going after failures.
type Runner struct {
	Logger    *slog.Logger
	Operation string
}

// NewRunner returns a runner whose log lines carry the operation name.
func NewRunner(logger *slog.Logger, operation string) *Runner {
	return &Runner{Logger: logger, Operation: operation}
}

// Each calls fn for every item in order with its index. A failing item is
// logged with its name and classification and does not stop the rest. Each
// stops early only when ctx is cancelled; the remaining items are not counted.
func (r *Runner) Each(ctx context.Context, items []string, fn func(ctx context.Context, i int, item string) error) Summary {
	var summary Summary
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx = runctx.WithOperation(ctx, r.Operation)

	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		summary.Total++
		itemCtx := runctx.WithItem(ctx, item)
		err := fn(itemCtx, i, item)
		switch {
		case err == nil:
			summary.Succeeded++
		case errors.Is(err, ErrSkip):
			summary.Skipped++
			attrs := []logging.Attr{
				logging.String(logging.FieldEventType, "item_skipped"),
				logging.String("reason", err.Error()),
			}
			if marker := Classify(err); marker != ErrTransient {
				attrs = append(attrs, logging.String("error_kind", marker.Error()))
			}
			logging.WithContext(itemCtx, logger).Info("item skipped", logging.Args(attrs...)...)
		default:
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Item: item, Err: err})
			marker := Classify(err)
			logging.ErrorWithContext(logging.WithContext(itemCtx, logger), "item failed", "item_failed",
				logging.Error(err),
				logging.String("error_kind", marker.Error()),
				logging.String(logging.FieldErrorHint, Hint(err)),
			)
		}
	}
	return summary
}
