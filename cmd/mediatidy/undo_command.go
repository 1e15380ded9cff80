package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediatidy/internal/dirlock"
	"mediatidy/internal/journal"
)

func newUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <run-id>",
		Short: "Move the files of a recorded run back where they were",
		Long:  "Reverts a run listed by `mediatidy history`. A unique prefix of the run id is enough.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := ctx.startOperation(cmd, "undo", true)
			if err != nil {
				return err
			}
			defer op.close()

			run, err := op.journal.FindRun(op.ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			pending := run.Entries - run.Undone
			if pending == 0 {
				fmt.Fprintf(out, "Run %s has nothing left to undo\n", shortID(run.ID))
				return nil
			}

			lock, err := dirlock.Acquire(op.cfg.LockDir(), run.Root)
			if err != nil {
				return err
			}
			defer lock.Release()

			question := fmt.Sprintf("Revert %d moves of %s run %s in %s?", pending, run.Operation, shortID(run.ID), run.Root)
			if err := ctx.confirm(cmd, op.cfg, question); err != nil {
				return handleNotConfirmed(cmd, err)
			}

			op.bindRun(run)
			summary, err := journal.Undo(op.ctx, op.journal, run.ID, op.logger)
			if err != nil {
				return err
			}
			printSummary(out, "Reverted", run, summary)
			if err := op.ctx.Err(); err != nil {
				return err
			}
			return summary.Err()
		},
	}
}
