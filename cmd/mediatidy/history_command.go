package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediatidy/internal/journal"
)

type runJSON struct {
	ID         string     `json:"id"`
	Operation  string     `json:"operation"`
	Root       string     `json:"root"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Succeeded  int        `json:"succeeded"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Entries    int        `json:"entries"`
	Undone     int        `json:"undone"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded group and renumber runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				out := make([]runJSON, len(runs))
				for i, run := range runs {
					out[i] = toRunJSON(run)
				}
				return writeJSON(cmd, out)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Show at most this many runs (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func toRunJSON(run journal.Run) runJSON {
	out := runJSON{
		ID:        run.ID,
		Operation: run.Operation,
		Root:      run.Root,
		StartedAt: run.StartedAt,
		Succeeded: run.Succeeded,
		Skipped:   run.Skipped,
		Failed:    run.Failed,
		Entries:   run.Entries,
		Undone:    run.Undone,
	}
	if run.Finished() {
		finished := run.FinishedAt
		out.FinishedAt = &finished
	}
	return out
}

func renderRuns(runs []journal.Run, now time.Time) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			run.Operation,
			run.Root,
			strconv.Itoa(run.Entries),
			strconv.Itoa(run.Undone),
			runState(run),
		})
	}
	return tableView{
		headers: []string{"Run", "Started", "Operation", "Root", "Moves", "Undone", "State"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	}.render()
}

func runState(run journal.Run) string {
	switch {
	case !run.Finished():
		return "interrupted"
	case run.Entries > 0 && run.Undone == run.Entries:
		return "undone"
	case run.Failed > 0:
		return fmt.Sprintf("%d failed", run.Failed)
	default:
		return "ok"
	}
}
