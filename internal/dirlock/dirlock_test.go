package dirlock_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"mediatidy/internal/batch"
	"mediatidy/internal/dirlock"
)

func TestAcquireFailsFastWhileHeld(t *testing.T) {
	lockDir := filepath.Join(t.TempDir(), "locks")
	target := t.TempDir()

	first, err := dirlock.Acquire(lockDir, target)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if _, err := dirlock.Acquire(lockDir, target); !errors.Is(err, dirlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	} else if !errors.Is(err, batch.ErrAlreadyExists) {
		t.Fatalf("ErrLocked should classify as already exists: %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	second, err := dirlock.Acquire(lockDir, target)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	t.Cleanup(func() { _ = second.Release() })
	if second.Dir() != target {
		t.Fatalf("Dir = %q, want %q", second.Dir(), target)
	}
}

func TestDifferentDirectoriesDoNotConflict(t *testing.T) {
	lockDir := filepath.Join(t.TempDir(), "locks")

	a, err := dirlock.Acquire(lockDir, t.TempDir())
	if err != nil {
		t.Fatalf("Acquire a: %v", err)
	}
	t.Cleanup(func() { _ = a.Release() })
	b, err := dirlock.Acquire(lockDir, t.TempDir())
	if err != nil {
		t.Fatalf("Acquire b: %v", err)
	}
	t.Cleanup(func() { _ = b.Release() })
	if a.Path() == b.Path() {
		t.Fatalf("distinct directories share lock file %s", a.Path())
	}
}

func TestLockName(t *testing.T) {
	a := dirlock.LockName("/media/a_b")
	b := dirlock.LockName("/media/a/b")
	if a == b {
		t.Fatalf("sanitized collision not disambiguated: %s", a)
	}
	if !strings.HasSuffix(a, ".lock") || !strings.HasPrefix(a, "media_a_b-") {
		t.Fatalf("unexpected lock name %q", a)
	}
	long := dirlock.LockName("/" + strings.Repeat("x", 200))
	if len(long) > 48+1+12+len(".lock") {
		t.Fatalf("lock name too long: %d", len(long))
	}
}
