package journal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"mediatidy/internal/batch"
	"mediatidy/internal/fileutil"
	"mediatidy/internal/logging"
)

// Undo reverts the entries of runID, newest first. Entries already undone are
// skipped. An entry whose destination is gone, or whose source path is taken
// again, fails without stopping the rest.
func Undo(ctx context.Context, store *Store, runID string, logger *slog.Logger) (batch.Summary, error) {
	entries, err := store.Entries(ctx, runID)
	if err != nil {
		return batch.Summary{}, err
	}
	slices.Reverse(entries)

	items := make([]string, len(entries))
	for i, entry := range entries {
		items[i] = entry.Dest
	}

	runner := batch.NewRunner(logger, "undo")
	summary := runner.Each(ctx, items, func(ctx context.Context, i int, _ string) error {
		entry := entries[i]
		if entry.Undone() {
			return batch.ErrSkip
		}
		if err := revert(entry); err != nil {
			return err
		}
		if err := store.MarkUndone(ctx, entry.ID); err != nil {
			return err
		}
		if logger != nil {
			logger.Info("move reverted",
				logging.String("from", entry.Dest),
				logging.String("to", entry.Source),
			)
		}
		return nil
	})
	return summary, nil
}

func revert(entry Entry) error {
	if !fileutil.Exists(entry.Dest) {
		return batch.Wrap(batch.ErrNotFound, "undo", fmt.Sprintf("%s no longer exists", entry.Dest), nil)
	}
	if fileutil.Exists(entry.Source) {
		return batch.Wrap(batch.ErrAlreadyExists, "undo", fmt.Sprintf("%s is occupied", entry.Source), nil)
	}
	if err := os.MkdirAll(filepath.Dir(entry.Source), 0o755); err != nil {
		return batch.Wrap(batch.Classify(err), "undo", "recreate source directory", err)
	}
	if err := fileutil.Move(entry.Dest, entry.Source); err != nil {
		return batch.Wrap(batch.Classify(err), "undo", "move back", err)
	}
	return nil
}
