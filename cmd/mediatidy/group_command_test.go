package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mediatidy/internal/batch"
	"mediatidy/internal/dirlock"
	"mediatidy/internal/testsupport"
)

const courseManifest = `{
  "Basics": {"1": "Lesson 1 Intro", "2": "Lesson 2 Setup"},
  "Extras": {"1": "Bonus Interview"}
}`

func setupCourse(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	testsupport.Touch(t, dir, "Lesson 1 Intro.mp4", "Lesson 2 Setup .mp4", "bonus interview.mkv")
	manifestPath := writeManifest(t, t.TempDir(), "course.json", courseManifest)
	return dir, manifestPath
}

func TestGroupDryRunChangesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, manifestPath := setupCourse(t)

	out, _, err := runCLI(t, []string{"group", dir, "--manifest", manifestPath, "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("group --dry-run: %v", err)
	}
	requireContains(t, out, "Lesson 1 Intro.mp4")
	requireContains(t, out, "Dry run: 3 moves planned")
	requireExists(t, filepath.Join(dir, "Lesson 1 Intro.mp4"))
	requireMissing(t, filepath.Join(dir, "Basics"))
}

func TestGroupMovesAndRecordsRun(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, manifestPath := setupCourse(t)

	out, _, err := runCLI(t, []string{"group", dir, "--manifest", manifestPath}, env.configPath)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	requireContains(t, out, "Moved 3, skipped 0, failed 0")
	requireExists(t, filepath.Join(dir, "Basics", "Lesson 1 Intro.mp4"))
	requireExists(t, filepath.Join(dir, "Basics", "Lesson 2 Setup.mp4"))
	requireExists(t, filepath.Join(dir, "Extras", "bonus interview.mkv"))

	store := testsupport.MustOpenJournal(t, env.cfg)
	runs, err := store.Runs(context.Background(), 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Operation != "group" || runs[0].Entries != 3 || runs[0].Succeeded != 3 {
		t.Fatalf("unexpected journal runs: %+v", runs)
	}
}

func TestGroupSkipsWhenFilesRunOut(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := t.TempDir()
	testsupport.Touch(t, dir, "only.mp4")
	manifestPath := writeManifest(t, t.TempDir(), "m.yaml", "Show:\n  a: only\n  b: missing\n")

	out, _, err := runCLI(t, []string{"group", dir, "--manifest", manifestPath}, env.configPath)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	requireContains(t, out, "Moved 1, skipped 1, failed 0")
	requireExists(t, filepath.Join(dir, "Show", "only.mp4"))
}

func TestGroupConflictFailsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := t.TempDir()
	testsupport.Touch(t, dir, "a.mp4")
	testsupport.Touch(t, filepath.Join(dir, "Show"), "a.mp4")
	manifestPath := writeManifest(t, t.TempDir(), "m.json", `{"Show": {"1": "a"}}`)

	_, _, err := runCLI(t, []string{"group", dir, "--manifest", manifestPath}, env.configPath)
	if !errors.Is(err, batch.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	requireExists(t, filepath.Join(dir, "a.mp4"))
}

func TestGroupRequiresManifest(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"group", t.TempDir()}, env.configPath)
	if !errors.Is(err, batch.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGroupRefusesLockedDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, manifestPath := setupCourse(t)

	lock, err := dirlock.Acquire(env.cfg.LockDir(), dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{"group", dir, "--manifest", manifestPath}, env.configPath)
	if !errors.Is(err, dirlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	requireExists(t, filepath.Join(dir, "Lesson 1 Intro.mp4"))
}

func TestGroupPromptRefusesNonInteractiveStdin(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithConfirm(true))
	dir, manifestPath := setupCourse(t)

	_, _, err := runCLI(t, []string{"group", dir, "--manifest", manifestPath}, env.configPath)
	if !errors.Is(err, batch.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	requireExists(t, filepath.Join(dir, "Lesson 1 Intro.mp4"))

	out, _, err := runCLI(t, []string{"--yes", "group", dir, "--manifest", manifestPath}, env.configPath)
	if err != nil {
		t.Fatalf("group --yes: %v", err)
	}
	requireContains(t, out, "Moved 3")
}

func TestManifestExclusion(t *testing.T) {
	dir := t.TempDir()
	inside := filepath.Join(dir, "m.json")
	if got := manifestExclusion(dir, inside); len(got) != 1 || got[0] != "m.json" {
		t.Fatalf("manifestExclusion(inside) = %v", got)
	}
	if got := manifestExclusion(dir, filepath.Join(t.TempDir(), "m.json")); got != nil {
		t.Fatalf("manifestExclusion(outside) = %v", got)
	}
}
