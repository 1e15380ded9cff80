package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mediatidy/internal/batch"
	"mediatidy/internal/testsupport"
)

func TestMatchCommandArguments(t *testing.T) {
	out, _, err := runCLI(t, []string{"match", "the matrix", "Matrix Reloaded", "The Matrix", "Inception"}, "")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if strings.TrimSpace(out) != "The Matrix" {
		t.Fatalf("match output = %q", out)
	}
}

func TestMatchCommandJSONFromDirectory(t *testing.T) {
	dir := t.TempDir()
	testsupport.Touch(t, dir, "02 Setup.mp4", "01 Intro.mp4", ".hidden")

	out, _, err := runCLI(t, []string{"match", "01 intro.mp4", "--dir", dir, "--json"}, "")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	var got matchJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Candidate != "01 Intro.mp4" || got.Index != 0 || got.Score != 100 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestMatchCommandAllRanks(t *testing.T) {
	out, _, err := runCLI(t, []string{"match", "abc", "xyz", "abd", "abc", "--all", "--json"}, "")
	if err != nil {
		t.Fatalf("match --all: %v", err)
	}
	var got []matchJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 || got[0].Candidate != "abc" || got[2].Candidate != "xyz" {
		t.Fatalf("unexpected ranking: %+v", got)
	}

	table, _, err := runCLI(t, []string{"match", "abc", "xyz", "abc", "--all"}, "")
	if err != nil {
		t.Fatalf("match --all table: %v", err)
	}
	requireContains(t, table, "CANDIDATE")
	requireContains(t, table, "100")
}

func TestMatchCommandErrors(t *testing.T) {
	_, _, err := runCLI(t, []string{"match", "target"}, "")
	if !errors.Is(err, batch.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}

	_, _, err = runCLI(t, []string{"match", "target", "a", "--dir", t.TempDir()}, "")
	if !errors.Is(err, batch.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
