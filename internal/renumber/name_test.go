package renumber_test

import (
	"errors"
	"testing"

	"mediatidy/internal/batch"
	"mediatidy/internal/renumber"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name   string
		prefix int
		base   string
	}{
		{"1. Introduction", 1, "Introduction"},
		{"12 Setting up the cluster", 12, "Setting up the cluster"},
		{"007. Bond & Co (part 1).mp4", 7, "Bond & Co (part 1).mp4"},
		{"3 - Deploying [v2].mkv", 3, "Deploying [v2].mkv"},
		{"5. 10 tips, tricks; more!", 5, "tips, tricks; more!"},
		{"100 Über Kubernetes", 100, "Über Kubernetes"},
		{"1. Élan.mp4", 1, "Élan.mp4"},
		{"4 - Ωmega", 4, "Ωmega"},
		{"2 Intro\u00a0Part.mp4", 2, "Intro\u00a0Part.mp4"},
		{"8. Wrap\u2009up", 8, "Wrap\u2009up"},
		{"9 Logging – EFK stack", 9, "Logging – EFK stack"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prefix, base, err := renumber.SplitName(tc.name)
			if err != nil {
				t.Fatalf("SplitName returned error: %v", err)
			}
			if prefix != tc.prefix || base != tc.base {
				t.Fatalf("SplitName = %d %q, want %d %q", prefix, base, tc.prefix, tc.base)
			}
		})
	}
}

func TestSplitNameMismatch(t *testing.T) {
	for _, name := range []string{
		"Introduction",
		"2023 Recap",
		"1.Intro",
		"4. 123",
		"6. résumé?",
		"",
	} {
		_, _, err := renumber.SplitName(name)
		if !errors.Is(err, renumber.ErrPatternMismatch) {
			t.Fatalf("SplitName(%q) error = %v, want pattern mismatch", name, err)
		}
		if !errors.Is(err, batch.ErrValidation) {
			t.Fatalf("SplitName(%q) should classify as validation, got %v", name, err)
		}
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		names []string
		want  int
	}{
		{[]string{"1 a", "2 b", "9 c"}, 1},
		{[]string{"1 a", "10 b"}, 2},
		{[]string{"1 a", "100 b", "notes"}, 3},
		{[]string{"notes", "extras"}, 0},
		{nil, 0},
	}
	for _, tc := range tests {
		if got := renumber.Padding(tc.names); got != tc.want {
			t.Fatalf("Padding(%v) = %d, want %d", tc.names, got, tc.want)
		}
	}
}

func TestRename(t *testing.T) {
	got, err := renumber.Rename("3 - Deploying.mp4", 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != "003. Deploying.mp4" {
		t.Fatalf("Rename = %q", got)
	}
	got, err = renumber.Rename("01. Intro", 2)
	if err != nil || got != "01. Intro" {
		t.Fatalf("formatted name should be stable, got %q %v", got, err)
	}
	got, err = renumber.Rename("1. Élan.mp4", 2)
	if err != nil || got != "01. Élan.mp4" {
		t.Fatalf("accented title must survive, got %q %v", got, err)
	}
	if got := renumber.FormatName(42, 1, "x"); got != "42. x" {
		t.Fatalf("width smaller than the number should not truncate, got %q", got)
	}
}
