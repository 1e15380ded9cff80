package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediatidy/internal/batch"
	"mediatidy/internal/dirlock"
	"mediatidy/internal/grouping"
	"mediatidy/internal/manifest"
)

func newGroupCommand(ctx *commandContext) *cobra.Command {
	var manifestPath string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "group <dir>",
		Short: "Move files into folders named by a manifest",
		Long: "Reads a JSON or YAML manifest of groups and expected names, picks the closest\n" +
			"file in <dir> for each expected name and moves it into the group's folder.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(manifestPath) == "" {
				return batch.Wrap(batch.ErrValidation, "group", "--manifest is required", nil)
			}
			dir, err := resolveTarget(args[0], dryRun)
			if err != nil {
				return err
			}
			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}

			op, err := ctx.startOperation(cmd, "group", true)
			if err != nil {
				return err
			}
			defer op.close()

			if !dryRun {
				lock, err := dirlock.Acquire(op.cfg.LockDir(), dir)
				if err != nil {
					return err
				}
				defer lock.Release()
			}

			opts := grouping.Options{
				WarnScore:     op.cfg.Group.WarnScore,
				IncludeHidden: op.cfg.Group.IncludeHidden,
				Exclude:       manifestExclusion(dir, manifestPath),
			}
			plan, err := grouping.New(opts, op.logger, nil).Plan(op.ctx, dir, m)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderGroupPlan(plan))
			moves := plan.Count(grouping.ActionMove)
			if dryRun {
				fmt.Fprintf(out, "Dry run: %d moves planned, nothing changed\n", moves)
				return nil
			}
			if moves == 0 {
				if conflicts := plan.Count(grouping.ActionConflict); conflicts > 0 {
					return batch.Wrap(batch.ErrAlreadyExists, "group",
						fmt.Sprintf("%d destinations already exist, nothing moved", conflicts), nil)
				}
				fmt.Fprintln(out, "Nothing to move")
				return nil
			}
			if err := ctx.confirm(cmd, op.cfg, fmt.Sprintf("Move %d files in %s?", moves, plan.Dir)); err != nil {
				return handleNotConfirmed(cmd, err)
			}

			run, err := op.journal.BeginRun(op.ctx, "group", plan.Dir)
			if err != nil {
				return err
			}
			op.bindRun(run)
			summary, applyErr := grouping.New(opts, op.logger, op.journal.Recorder(run.ID)).Apply(op.ctx, plan)
			finishRun(op, run, summary)
			printSummary(out, "Moved", run, summary)
			if applyErr != nil {
				return applyErr
			}
			return summary.Err()
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Manifest file (.json, .yaml or .yml)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the plan without moving anything")
	return cmd
}

// manifestExclusion keeps a manifest stored inside dir from being matched.
func manifestExclusion(dir, manifestPath string) []string {
	absManifest, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil
	}
	if filepath.Dir(absManifest) != absDir {
		return nil
	}
	return []string{filepath.Base(absManifest)}
}

func renderGroupPlan(plan grouping.Plan) string {
	rows := make([][]string, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		score := ""
		if s.Source != "" {
			score = strconv.Itoa(s.Score)
		}
		action := string(s.Action)
		if s.Reason != "" {
			action += ": " + s.Reason
		}
		rows = append(rows, []string{s.Group, s.Expected, s.Source, score, s.Dest, action})
	}
	return tableView{
		headers: []string{"Group", "Expected", "Chosen", "Score", "Destination", "Action"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		footer: []string{"", "", "", "", "", fmt.Sprintf("%d move, %d skip, %d conflict",
			plan.Count(grouping.ActionMove), plan.Count(grouping.ActionSkip), plan.Count(grouping.ActionConflict))},
	}.render()
}
