package renumber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mediatidy/internal/batch"
	"mediatidy/internal/fileutil"
	"mediatidy/internal/logging"
)

// Kind distinguishes folder and file steps.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
)

// Action describes what a step will do.
type Action string

const (
	ActionRename   Action = "rename"
	ActionNoop     Action = "noop"
	ActionSkip     Action = "skip"
	ActionConflict Action = "conflict"
)

// Step renames one entry. From and To are relative to the plan root; a file
// step's paths already use its folder's new name.
type Step struct {
	Kind   Kind
	Folder string
	From   string
	To     string
	Action Action
	Reason string
}

// Plan is the ordered list of renames under one root.
type Plan struct {
	Root  string
	Steps []Step
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

// Recorder is told about every completed rename.
type Recorder interface {
	Record(ctx context.Context, source, dest string) error
}

// Options tunes which files are renamed.
type Options struct {
	// SkipExtension reports whether files with ext (including the dot) keep
	// their names. Nil renames every file.
	SkipExtension func(ext string) bool
}

// Renamer plans and applies prefix padding.
type Renamer struct {
	opts     Options
	logger   *slog.Logger
	recorder Recorder
}

// New constructs a Renamer. recorder may be nil.
func New(opts Options, logger *slog.Logger, recorder Recorder) *Renamer {
	return &Renamer{
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "renumber"),
		recorder: recorder,
	}
}

// Plan computes the renames for every sub-folder of root and the files
// inside each one. Folder widths come from the sibling folders, file widths
// from the files in the same folder.
func (r *Renamer) Plan(ctx context.Context, root string) (Plan, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Plan{}, fmt.Errorf("resolve root: %w", err)
	}
	folders, rootFiles, err := listDir(absRoot)
	if err != nil {
		return Plan{}, batch.Wrap(batch.Classify(err), "renumber", "list "+absRoot, err)
	}
	plan := Plan{Root: absRoot}
	folderWidth := Padding(folders)
	takenFolders := nameSet(folders, rootFiles)

	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return Plan{}, err
		}
		step := r.planRename("", folder, folderWidth, KindFolder, takenFolders)
		plan.Steps = append(plan.Steps, step)
		if step.Action == ActionSkip || step.Action == ActionConflict {
			continue
		}

		_, files, err := listDir(filepath.Join(absRoot, folder))
		if err != nil {
			return Plan{}, batch.Wrap(batch.Classify(err), "renumber", "list "+folder, err)
		}
		taken := nameSet(files)
		files = r.renamable(files)
		fileWidth := Padding(files)
		newFolder := filepath.Base(step.To)
		for _, file := range files {
			plan.Steps = append(plan.Steps, r.planRename(newFolder, file, fileWidth, KindFile, taken))
		}
	}
	return plan, nil
}

// planRename builds the step for name inside parent (relative to the root).
// taken holds the sibling names plus the names already planned.
func (r *Renamer) planRename(parent, name string, width int, kind Kind, taken map[string]struct{}) Step {
	step := Step{Kind: kind, Folder: parent, From: filepath.Join(parent, name), To: filepath.Join(parent, name)}
	if kind == KindFolder {
		step.Folder = name
	}
	newName, err := Rename(name, width)
	if err != nil {
		step.Action = ActionSkip
		step.Reason = "no numeric prefix"
		r.logger.Info("name skipped",
			logging.String("name", name),
			logging.String("reason", err.Error()),
			logging.String(logging.FieldEventType, "renumber_mismatch"),
		)
		return step
	}
	step.To = filepath.Join(parent, newName)
	if kind == KindFolder {
		step.Folder = newName
	}
	if newName == name {
		step.Action = ActionNoop
		step.Reason = "already numbered"
		return step
	}
	if _, exists := taken[newName]; exists {
		step.Action = ActionConflict
		step.Reason = "destination already exists"
		if kind == KindFolder {
			step.Folder = name
		}
		return step
	}
	taken[newName] = struct{}{}
	step.Action = ActionRename
	return step
}

// Apply performs the plan. A folder that fails to rename takes its files
// with it: they are skipped.
func (r *Renamer) Apply(ctx context.Context, plan Plan) (batch.Summary, error) {
	labels := make([]string, len(plan.Steps))
	for i, s := range plan.Steps {
		labels[i] = s.From
	}
	failedFolders := make(map[string]struct{})
	runner := batch.NewRunner(r.logger, "renumber")
	summary := runner.Each(ctx, labels, func(ctx context.Context, i int, _ string) error {
		step := plan.Steps[i]
		if step.Kind == KindFile {
			if _, failed := failedFolders[step.Folder]; failed {
				return fmt.Errorf("folder was not renamed: %w", batch.ErrSkip)
			}
		}
		err := r.applyStep(ctx, plan.Root, step)
		if err != nil && step.Kind == KindFolder && !errors.Is(err, batch.ErrSkip) {
			failedFolders[filepath.Base(step.To)] = struct{}{}
		}
		return err
	})
	r.logger.Info("renumbering finished",
		logging.String("root", plan.Root),
		logging.Int("renamed", summary.Succeeded),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, ctx.Err()
}

// Run plans and applies in one go.
func (r *Renamer) Run(ctx context.Context, root string) (Plan, batch.Summary, error) {
	plan, err := r.Plan(ctx, root)
	if err != nil {
		return Plan{}, batch.Summary{}, err
	}
	summary, err := r.Apply(ctx, plan)
	return plan, summary, err
}

func (r *Renamer) applyStep(ctx context.Context, root string, step Step) error {
	switch step.Action {
	case ActionSkip, ActionNoop:
		return fmt.Errorf("%s: %w", step.Reason, batch.ErrSkip)
	case ActionConflict:
		return batch.Wrap(batch.ErrAlreadyExists, "renumber", step.To, nil)
	}
	src := filepath.Join(root, step.From)
	dst := filepath.Join(root, step.To)
	if err := fileutil.Move(src, dst); err != nil {
		return batch.Wrap(batch.Classify(err), "renumber", "rename "+step.From, err)
	}
	logging.WithContext(ctx, r.logger).Info("renamed",
		logging.String("kind", string(step.Kind)),
		logging.String("from", step.From),
		logging.String("to", step.To),
		logging.String(logging.FieldEventType, "renamed"),
	)
	if r.recorder != nil {
		if err := r.recorder.Record(ctx, src, dst); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, r.logger), "journal record failed", "journal_record_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this rename cannot be undone automatically"),
			)
		}
	}
	return nil
}

func (r *Renamer) renamable(files []string) []string {
	if r.opts.SkipExtension == nil {
		return files
	}
	out := files[:0]
	for _, f := range files {
		if r.opts.SkipExtension(filepath.Ext(f)) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func nameSet(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, names := range lists {
		for _, name := range names {
			set[name] = struct{}{}
		}
	}
	return set
}

// listDir returns the sub-directories and regular files of dir in name
// order. Hidden entries are ignored.
func listDir(dir string) (folders, files []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case entry.IsDir():
			folders = append(folders, name)
		case entry.Type().IsRegular():
			files = append(files, name)
		}
	}
	return folders, files, nil
}
