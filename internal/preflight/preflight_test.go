package preflight_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediatidy/internal/batch"
	"mediatidy/internal/preflight"
	"mediatidy/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		passed bool
		detail string
	}{
		{"ok", dir, true, "read/write ok"},
		{"missing", filepath.Join(dir, "missing"), false, "does not exist"},
		{"not a dir", file, false, "is not a directory"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := preflight.CheckDirectoryAccess("Target", tc.path)
			if res.Passed != tc.passed {
				t.Fatalf("Passed = %v, want %v (%s)", res.Passed, tc.passed, res.Detail)
			}
			if !strings.Contains(res.Detail, tc.detail) {
				t.Fatalf("detail %q missing %q", res.Detail, tc.detail)
			}
		})
	}
}

func TestResultErr(t *testing.T) {
	missing := preflight.CheckDirectoryAccess("Target", filepath.Join(t.TempDir(), "nope"))
	if err := missing.Err(); !errors.Is(err, batch.ErrNotFound) {
		t.Fatalf("expected not found marker, got %v", err)
	}
	ok := preflight.CheckReadableDirectory("Target", t.TempDir())
	if err := ok.Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := preflight.RunAll(cfg)
	if len(results) != 2 {
		t.Fatalf("expected log and state checks only, got %d", len(results))
	}
	if err := preflight.Failed(results); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}

	cfg.Progress.LogDir = filepath.Join(t.TempDir(), "missing")
	results = preflight.RunAll(cfg)
	if len(results) != 3 {
		t.Fatalf("expected download log check, got %d", len(results))
	}
	if err := preflight.Failed(results); err == nil || !strings.Contains(err.Error(), "Download log directory") {
		t.Fatalf("expected download log failure, got %v", err)
	}
	if preflight.RunAll(nil) != nil {
		t.Fatal("nil config should yield no results")
	}
}
