package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediatidy/internal/config"
	"mediatidy/internal/journal"
	"mediatidy/internal/logging"
	"mediatidy/internal/runctx"
)

type commandContext struct {
	configFlag *string
	yesFlag    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, yesFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		yesFlag:    yesFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) assumeYes() bool {
	return c.yesFlag != nil && *c.yesFlag
}

// operationRun is the per-invocation state of a command that changes files:
// a logger writing to its own run log, and the journal.
type operationRun struct {
	cfg     *config.Config
	session *logging.Session
	logger  *slog.Logger
	journal *journal.Store
	ctx     context.Context
}

// startOperation opens the run log, and the journal when withJournal is set,
// and prunes old run logs.
func (c *commandContext) startOperation(cmd *cobra.Command, operation string, withJournal bool) (*operationRun, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	session, err := logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Console:  cmd.ErrOrStderr(),
		FilePath: runLogPath(cfg, operation, time.Now()),
	})
	if err != nil {
		return nil, err
	}
	logger := session.Logger
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: logging.RunLogPattern,
		Exclude: []string{session.FilePath()},
	})

	ctx := runctx.WithOperation(cmd.Context(), operation)
	ctx = runctx.WithRunID(ctx, uuid.NewString())
	op := &operationRun{
		cfg:     cfg,
		session: session,
		logger:  logger,
		ctx:     ctx,
	}
	if withJournal {
		store, err := journal.Open(cfg.JournalPath())
		if err != nil {
			_ = session.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		op.journal = store
	}
	return op, nil
}

func (r *operationRun) close() {
	if r == nil {
		return
	}
	if r.journal != nil {
		_ = r.journal.Close()
	}
	_ = r.session.Close()
}

// bindRun makes the journal run id the run id carried in log records.
func (r *operationRun) bindRun(run journal.Run) {
	r.ctx = runctx.WithRunID(r.ctx, run.ID)
}

func runLogPath(cfg *config.Config, operation string, ts time.Time) string {
	return filepath.Join(cfg.Paths.LogDir, logging.RunLogName(operation, ts))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
