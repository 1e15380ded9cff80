package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mediatidy/internal/batch"
	"mediatidy/internal/config"
	"mediatidy/internal/journal"
	"mediatidy/internal/logging"
	"mediatidy/internal/preflight"
)

// resolveTarget expands a directory argument and checks that it can be read,
// and written unless readOnly.
func resolveTarget(arg string, readOnly bool) (string, error) {
	dir, err := config.ExpandPath(arg)
	if err != nil {
		return "", batch.Wrap(batch.ErrValidation, "resolve", arg, err)
	}
	check := preflight.CheckDirectoryAccess
	if readOnly {
		check = preflight.CheckReadableDirectory
	}
	if err := check("Target directory", dir).Err(); err != nil {
		return "", err
	}
	return dir, nil
}

// handleNotConfirmed turns a declined prompt into a clean exit.
func handleNotConfirmed(cmd *cobra.Command, err error) error {
	if errors.Is(err, errNotConfirmed) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted; nothing changed")
		return nil
	}
	return err
}

// finishRun stores the summary even when the command was interrupted.
func finishRun(op *operationRun, run journal.Run, summary batch.Summary) {
	ctx := context.WithoutCancel(op.ctx)
	if err := op.journal.FinishRun(ctx, run.ID, summary); err != nil {
		logging.WarnWithContext(op.logger, "journal finish failed", "journal_finish_failed",
			logging.String("run_id", run.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows the run as unfinished"),
		)
	}
}

func printSummary(out io.Writer, verb string, run journal.Run, summary batch.Summary) {
	fmt.Fprintf(out, "%s %d, skipped %d, failed %d (run %s)\n",
		verb, summary.Succeeded, summary.Skipped, summary.Failed, shortID(run.ID))
	for _, f := range summary.Failures {
		fmt.Fprintf(out, "  %s: %v\n", f.Item, f.Err)
		if hint := batch.Hint(f.Err); hint != "" {
			fmt.Fprintf(out, "    hint: %s\n", hint)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// writeJSON encodes v as indented JSON to stdout. Paths keep their & and <>.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
