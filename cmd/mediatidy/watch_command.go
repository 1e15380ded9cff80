package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"mediatidy/internal/config"
	"mediatidy/internal/logging"
	"mediatidy/internal/progress"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var logDir string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Wait for a download to finish, showing progress from its log",
		Long: "Blocks until <file> exists. When a download log directory is configured the\n" +
			"matching log is found and its byte counts drive a progress bar.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			op, err := ctx.startOperation(cmd, "watch", false)
			if err != nil {
				return err
			}
			defer op.close()

			dir := strings.TrimSpace(logDir)
			if dir == "" {
				dir = op.cfg.Progress.LogDir
			} else if dir, err = config.ExpandPath(dir); err != nil {
				return err
			}
			if timeout <= 0 {
				timeout = op.cfg.WatchTimeout()
			}

			src := newWatchSource(dir, target, op)
			small, medium, large := op.cfg.PollIntervals()
			watcher := &progress.Watcher{
				Timeout:    timeout,
				MaxBackoff: op.cfg.MaxBackoff(),
				Intervals:  progress.Intervals{Small: small, Medium: medium, Large: large},
				Logger:     op.logger,
			}

			display := newProgressDisplay(cmd.ErrOrStderr(), target, op.session)
			defer display.close()
			if err := watcher.Wait(op.ctx, target, src, display.update); err != nil {
				return err
			}
			display.close()

			final := display.last
			size := "size unknown"
			if final.TotalKnown {
				size = humanize.IBytes(uint64(final.Total))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Download complete: %s (%s)\n", target, size)
			return nil
		},
	}

	cmd.Flags().StringVar(&logDir, "log-dir", "", "Download manager log directory (default progress.log_dir)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (default progress.timeout_seconds)")
	return cmd
}

// newWatchSource reads progress from download logs when a directory is known.
// Without one the watcher only polls for the file.
func newWatchSource(dir, target string, op *operationRun) progress.Source {
	if dir == "" {
		op.logger.Info("no download log directory configured; progress unavailable",
			logging.String(logging.FieldEventType, "progress_unavailable"),
		)
		return progress.FuncSource(func(context.Context) (progress.Sample, error) {
			return progress.Sample{}, nil
		})
	}
	return progress.NewLogSource(dir, target, op.cfg.RecentWindow(), op.logger)
}

// progressDisplay draws a progress bar on a terminal and pauses console
// logging while the bar is visible. Off a terminal it stays silent.
type progressDisplay struct {
	out     io.Writer
	label   string
	session *logging.Session
	enabled bool

	bar    *progressbar.ProgressBar
	resume func()
	last   progress.Update
}

func newProgressDisplay(out io.Writer, target string, session *logging.Session) *progressDisplay {
	return &progressDisplay{
		out:     out,
		label:   shortLabel(target),
		session: session,
		enabled: shouldColorize(out),
	}
}

func (d *progressDisplay) update(u progress.Update) {
	d.last = u
	if !d.enabled {
		return
	}
	if d.bar == nil {
		if u.Done {
			return
		}
		maxBytes := int64(-1)
		if u.TotalKnown {
			maxBytes = u.Total
		}
		d.resume = d.session.SuspendConsole()
		d.bar = progressbar.NewOptions64(maxBytes,
			progressbar.OptionSetWriter(d.out),
			progressbar.OptionSetDescription(d.label),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	if u.TotalKnown && d.bar.GetMax64() != u.Total {
		d.bar.ChangeMax64(u.Total)
	}
	_ = d.bar.Set64(u.Downloaded)
	if u.Done {
		d.close()
	}
}

func (d *progressDisplay) close() {
	if d.bar != nil {
		_ = d.bar.Finish()
		d.bar = nil
	}
	if d.resume != nil {
		d.resume()
		d.resume = nil
	}
}

func shortLabel(path string) string {
	const maxLen = 32
	runes := []rune(filepath.Base(path))
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return string(runes)
}
