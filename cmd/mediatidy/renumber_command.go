package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediatidy/internal/batch"
	"mediatidy/internal/dirlock"
	"mediatidy/internal/renumber"
)

func newRenumberCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "renumber <root>",
		Short: "Zero-pad numeric name prefixes so entries sort naturally",
		Long: "Renames the sub-folders of <root> and the files inside them from \"3 Intro\" to\n" +
			"\"03. Intro\", padding to the widest number among siblings.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveTarget(args[0], dryRun)
			if err != nil {
				return err
			}

			op, err := ctx.startOperation(cmd, "renumber", true)
			if err != nil {
				return err
			}
			defer op.close()

			if !dryRun {
				lock, err := dirlock.Acquire(op.cfg.LockDir(), root)
				if err != nil {
					return err
				}
				defer lock.Release()
			}

			opts := renumber.Options{SkipExtension: op.cfg.SkipsExtension}
			plan, err := renumber.New(opts, op.logger, nil).Plan(op.ctx, root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderRenumberPlan(plan))
			renames := plan.Count(renumber.ActionRename)
			if dryRun {
				fmt.Fprintf(out, "Dry run: %d renames planned, nothing changed\n", renames)
				return nil
			}
			if renames == 0 {
				if conflicts := plan.Count(renumber.ActionConflict); conflicts > 0 {
					return batch.Wrap(batch.ErrAlreadyExists, "renumber",
						fmt.Sprintf("%d targets already exist, nothing renamed", conflicts), nil)
				}
				fmt.Fprintln(out, "Nothing to rename")
				return nil
			}
			if err := ctx.confirm(cmd, op.cfg, fmt.Sprintf("Rename %d entries under %s?", renames, plan.Root)); err != nil {
				return handleNotConfirmed(cmd, err)
			}

			run, err := op.journal.BeginRun(op.ctx, "renumber", plan.Root)
			if err != nil {
				return err
			}
			op.bindRun(run)
			summary, applyErr := renumber.New(opts, op.logger, op.journal.Recorder(run.ID)).Apply(op.ctx, plan)
			finishRun(op, run, summary)
			printSummary(out, "Renamed", run, summary)
			if applyErr != nil {
				return applyErr
			}
			return summary.Err()
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the plan without renaming anything")
	return cmd
}

func renderRenumberPlan(plan renumber.Plan) string {
	rows := make([][]string, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		if s.Action == renumber.ActionNoop {
			continue
		}
		action := string(s.Action)
		if s.Reason != "" {
			action += ": " + s.Reason
		}
		rows = append(rows, []string{string(s.Kind), s.From, s.To, action})
	}
	return tableView{
		headers: []string{"Kind", "From", "To", "Action"},
		rows:    rows,
		footer: []string{"", "", "", fmt.Sprintf("%d rename, %d skip, %d conflict",
			plan.Count(renumber.ActionRename), plan.Count(renumber.ActionSkip), plan.Count(renumber.ActionConflict))},
	}.render()
}
