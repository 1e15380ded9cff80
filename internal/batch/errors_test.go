package batch_test

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"

	"mediatidy/internal/batch"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := batch.Wrap(batch.ErrAlreadyExists, "group", "move Lesson 1.mp4", cause)
	if !errors.Is(err, batch.ErrAlreadyExists) {
		t.Fatalf("expected marker in %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in %v", err)
	}
	if got := err.Error(); got != "already exists: group: move Lesson 1.mp4: disk on fire" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapDefaults(t *testing.T) {
	err := batch.Wrap(nil, "", "", nil)
	if !errors.Is(err, batch.ErrTransient) {
		t.Fatalf("nil marker should default to transient, got %v", err)
	}
	if !strings.Contains(err.Error(), "operation failure") {
		t.Fatalf("expected placeholder detail, got %q", err)
	}
}

func TestClassify(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"marker", batch.Wrap(batch.ErrTimeout, "watch", "", nil), batch.ErrTimeout},
		{"not exist", statErr, batch.ErrNotFound},
		{"exist", &fs.PathError{Op: "mkdir", Path: "x", Err: fs.ErrExist}, batch.ErrAlreadyExists},
		{"permission", fmt.Errorf("open: %w", fs.ErrPermission), batch.ErrPermission},
		{"other", errors.New("boom"), batch.ErrTransient},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := batch.Classify(tc.err); got != tc.want {
				t.Fatalf("Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHintCoversMarkers(t *testing.T) {
	if batch.Hint(batch.ErrPermission) == batch.Hint(errors.New("x")) {
		t.Fatal("expected specific hint for permission errors")
	}
}
