package batch_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mediatidy/internal/batch"
	"mediatidy/internal/logging"
	"mediatidy/internal/runctx"
)

func TestRunnerContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	session, err := logging.New(logging.Options{Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	runner := batch.NewRunner(session.Logger, "group")

	var seen []string
	summary := runner.Each(context.Background(), []string{"a", "b", "c", "d"}, func(ctx context.Context, i int, item string) error {
		seen = append(seen, item)
		if i != len(seen)-1 {
			t.Errorf("index %d out of step for %q", i, item)
		}
		if got, _ := runctx.ItemFromContext(ctx); got != item {
			t.Errorf("item in context = %q, want %q", got, item)
		}
		switch item {
		case "b":
			return batch.Wrap(batch.ErrAlreadyExists, "group", "move b", nil)
		case "c":
			return fmt.Errorf("nothing to match: %w", batch.ErrSkip)
		}
		return nil
	})

	if strings.Join(seen, ",") != "a,b,c,d" {
		t.Fatalf("expected every item visited, got %v", seen)
	}
	if summary.Total != 4 || summary.Succeeded != 2 || summary.Skipped != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Item != "b" {
		t.Fatalf("unexpected failures %+v", summary.Failures)
	}
	if err := summary.Err(); err == nil || !errors.Is(err, batch.ErrAlreadyExists) {
		t.Fatalf("summary error should carry the marker, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "group · b: item failed") {
		t.Fatalf("expected failure logged with item context, got %q", out)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := batch.NewRunner(nil, "renumber")
	summary := runner.Each(ctx, []string{"a", "b", "c"}, func(ctx context.Context, _ int, item string) error {
		if item == "a" {
			cancel()
		}
		return nil
	})
	if summary.Total != 1 || summary.Succeeded != 1 {
		t.Fatalf("expected only first item processed, got %+v", summary)
	}
	if summary.Err() != nil {
		t.Fatalf("no failures expected, got %v", summary.Err())
	}
}

func TestSummaryAdd(t *testing.T) {
	a := batch.Summary{Total: 2, Succeeded: 1, Failed: 1, Failures: []batch.Failure{{Item: "x", Err: errors.New("x")}}}
	a.Add(batch.Summary{Total: 3, Succeeded: 2, Skipped: 1})
	if a.Total != 5 || a.Succeeded != 3 || a.Skipped != 1 || a.Failed != 1 || len(a.Failures) != 1 {
		t.Fatalf("unexpected merged summary %+v", a)
	}
}
