package grouping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mediatidy/internal/batch"
	"mediatidy/internal/fileutil"
	"mediatidy/internal/logging"
	"mediatidy/internal/manifest"
	"mediatidy/internal/namematch"
	"mediatidy/internal/textutil"
)

// Action describes what a step will do.
type Action string

const (
	ActionMove     Action = "move"
	ActionSkip     Action = "skip"
	ActionConflict Action = "conflict"
)

// Step is one expected name and the file chosen for it.
type Step struct {
	Group    string
	Folder   string
	Expected string
	// Source is the chosen file name inside the plan directory.
	Source string
	// Dest is the destination path relative to the plan directory.
	Dest   string
	Score  int
	Action Action
	Reason string
}

// Label identifies the step in logs.
func (s Step) Label() string {
	return s.Group + "/" + s.Expected
}

// Plan is the ordered set of moves for one directory.
type Plan struct {
	Dir     string
	Folders []string
	Steps   []Step
}

// Count returns the number of steps with the given action.
func (p Plan) Count(action Action) int {
	n := 0
	for _, s := range p.Steps {
		if s.Action == action {
			n++
		}
	}
	return n
}

// Recorder is told about every completed move.
type Recorder interface {
	Record(ctx context.Context, source, dest string) error
}

// Options tunes candidate selection.
type Options struct {
	// WarnScore logs a warning when the best candidate scores below it.
	WarnScore     int
	IncludeHidden bool
	// Exclude lists file names in the directory that are never candidates.
	Exclude []string
}

// Organizer plans and applies manifest-driven grouping.
type Organizer struct {
	opts     Options
	logger   *slog.Logger
	recorder Recorder
}

// New constructs an Organizer. recorder may be nil.
func New(opts Options, logger *slog.Logger, recorder Recorder) *Organizer {
	return &Organizer{
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "grouping"),
		recorder: recorder,
	}
}

// Plan pairs each expected name with a file in dir. Each match sees the
// files left after all earlier steps, as if the earlier moves had happened.
func (o *Organizer) Plan(ctx context.Context, dir string, m manifest.Manifest) (Plan, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return Plan{}, fmt.Errorf("resolve directory: %w", err)
	}
	files, err := o.listCandidates(absDir)
	if err != nil {
		return Plan{}, err
	}
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("planning grouping",
		logging.String("dir", absDir),
		logging.Int("groups", len(m.Groups)),
		logging.Int("expected", m.EntryCount()),
		logging.Int("files", len(files)),
	)

	plan := Plan{Dir: absDir}
	claimed := make(map[string]struct{})
	for _, group := range m.Groups {
		folder := textutil.SanitizeFileName(group.Name)
		if !isSubfolder(absDir, folder) {
			return Plan{}, batch.Wrap(batch.ErrValidation, "group",
				fmt.Sprintf("group %q does not name a subfolder of %s", group.Name, absDir), nil)
		}
		plan.Folders = append(plan.Folders, folder)
		for _, expected := range group.Entries {
			if err := ctx.Err(); err != nil {
				return Plan{}, err
			}
			step := Step{Group: group.Name, Folder: folder, Expected: expected}
			result, err := namematch.Match(expected, files)
			if err != nil {
				step.Action = ActionSkip
				step.Reason = "no files left to match"
				logging.WarnWithContext(logger, "no candidates left", "match_no_candidates",
					logging.String("expected", expected),
					logging.String(logging.FieldErrorHint, batch.Hint(batch.ErrNoCandidates)),
					logging.String(logging.FieldImpact, "expected file will not be grouped"),
				)
				plan.Steps = append(plan.Steps, step)
				continue
			}
			files = slices.Delete(files, result.Index, result.Index+1)

			step.Source = result.Label
			step.Score = result.Score
			step.Dest = filepath.Join(folder, textutil.TidyExtension(result.Label))
			step.Action = ActionMove
			if _, taken := claimed[step.Dest]; taken || fileutil.Exists(filepath.Join(absDir, step.Dest)) {
				step.Action = ActionConflict
				step.Reason = "destination already exists"
			}
			claimed[step.Dest] = struct{}{}

			if result.Score < o.opts.WarnScore {
				logging.WarnWithContext(logger, "weak match", "match_low_score",
					logging.String("expected", expected),
					logging.String("chosen", result.Label),
					logging.Int("score", result.Score),
					logging.Int("warn_score", o.opts.WarnScore),
					logging.String(logging.FieldErrorHint, "check the manifest entry against the folder contents"),
					logging.String(logging.FieldImpact, "file may be placed under the wrong name"),
				)
			}
			plan.Steps = append(plan.Steps, step)
		}
	}
	return plan, nil
}

// Apply creates the plan's folders and performs its moves. Skipped steps are
// counted as skipped, conflicts and failed moves as failures.
func (o *Organizer) Apply(ctx context.Context, plan Plan) (batch.Summary, error) {
	for _, folder := range plan.Folders {
		if err := os.MkdirAll(filepath.Join(plan.Dir, folder), 0o755); err != nil {
			return batch.Summary{}, batch.Wrap(batch.Classify(err), "group", "create folder "+folder, err)
		}
	}

	labels := make([]string, len(plan.Steps))
	for i, s := range plan.Steps {
		labels[i] = s.Label()
	}
	runner := batch.NewRunner(o.logger, "group")
	summary := runner.Each(ctx, labels, func(ctx context.Context, i int, _ string) error {
		return o.applyStep(ctx, plan.Dir, plan.Steps[i])
	})
	o.logger.Info("grouping finished",
		logging.String("dir", plan.Dir),
		logging.Int("moved", summary.Succeeded),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, ctx.Err()
}

// Run plans and applies in one go.
func (o *Organizer) Run(ctx context.Context, dir string, m manifest.Manifest) (Plan, batch.Summary, error) {
	plan, err := o.Plan(ctx, dir, m)
	if err != nil {
		return Plan{}, batch.Summary{}, err
	}
	summary, err := o.Apply(ctx, plan)
	return plan, summary, err
}

func (o *Organizer) applyStep(ctx context.Context, dir string, step Step) error {
	switch step.Action {
	case ActionSkip:
		return fmt.Errorf("%s: %w", step.Reason, errors.Join(batch.ErrSkip, batch.ErrNoCandidates))
	case ActionConflict:
		return batch.Wrap(batch.ErrAlreadyExists, "group", step.Dest, nil)
	}

	src := filepath.Join(dir, step.Source)
	dst := filepath.Join(dir, step.Dest)
	if err := fileutil.Move(src, dst); err != nil {
		return batch.Wrap(batch.Classify(err), "group", "move "+step.Source, err)
	}
	logging.WithContext(ctx, o.logger).Info("file moved",
		logging.String("expected", step.Expected),
		logging.String("source", step.Source),
		logging.String("dest", step.Dest),
		logging.Int("score", step.Score),
		logging.String(logging.FieldEventType, "file_moved"),
	)
	if o.recorder != nil {
		if err := o.recorder.Record(ctx, src, dst); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, o.logger), "journal record failed", "journal_record_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this move cannot be undone automatically"),
			)
		}
	}
	return nil
}

// isSubfolder reports whether folder names a directory strictly below dir.
func isSubfolder(dir, folder string) bool {
	if folder == "" {
		return false
	}
	rel, err := filepath.Rel(dir, filepath.Join(dir, folder))
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// listCandidates returns the regular files directly inside dir in name order.
func (o *Organizer) listCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, batch.Wrap(batch.Classify(err), "group", "list "+dir, err)
	}
	excluded := make(map[string]struct{}, len(o.opts.Exclude))
	for _, name := range o.opts.Exclude {
		excluded[name] = struct{}{}
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !o.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if _, skip := excluded[name]; skip {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}
