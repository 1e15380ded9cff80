package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediatidy/internal/batch"
	"mediatidy/internal/logging"
	"mediatidy/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var file string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the log of the most recent run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := strings.TrimSpace(file)
			if path == "" {
				path, err = logs.Latest(cfg.Paths.LogDir, logging.RunLogPattern)
				if err != nil {
					return err
				}
				if path == "" {
					return batch.Wrap(batch.ErrNotFound, "logs", "no run logs in "+cfg.Paths.LogDir, nil)
				}
			}

			out := cmd.OutOrStdout()
			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines})
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			offset := result.Offset
			for {
				next, err := logs.Tail(cmd.Context(), path, logs.TailOptions{
					Offset: offset,
					Follow: true,
					Wait:   time.Second,
				})
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return err
				}
				for _, line := range next.Lines {
					fmt.Fprintln(out, line)
				}
				offset = next.Offset
				if cmd.Context().Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().StringVar(&file, "file", "", "Read this log file instead of the latest run log")
	return cmd
}
