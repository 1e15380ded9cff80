package progress_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"mediatidy/internal/batch"
	"mediatidy/internal/progress"
)

// staticSource always reports the same values.
type staticSource struct {
	downloaded int64
	total      int64
}

func (s staticSource) Sample(context.Context) (progress.Sample, error) {
	return progress.Sample{Downloaded: s.downloaded, Known: true}, nil
}

func (s staticSource) Total(context.Context) (int64, bool, error) {
	return s.total, s.total > 0, nil
}

var fastIntervals = progress.Intervals{
	Small:  5 * time.Millisecond,
	Medium: 5 * time.Millisecond,
	Large:  5 * time.Millisecond,
}

func TestIntervalsFor(t *testing.T) {
	iv := progress.Intervals{Small: time.Second, Medium: 30 * time.Second, Large: 10 * time.Minute}
	tests := []struct {
		total int64
		known bool
		want  time.Duration
	}{
		{0, false, 30 * time.Second},
		{1 << 20, true, time.Second},
		{10 << 20, true, 30 * time.Second},
		{999 << 20, true, 30 * time.Second},
		{1000 << 20, true, 10 * time.Minute},
	}
	for _, tc := range tests {
		if got := iv.For(tc.total, tc.known); got != tc.want {
			t.Fatalf("For(%d, %v) = %v, want %v", tc.total, tc.known, got, tc.want)
		}
	}
}

func TestWaitReturnsWhenTargetExists(t *testing.T) {
	target := filepath.Join(t.TempDir(), "done.bin")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var updates []progress.Update
	w := &progress.Watcher{Timeout: time.Second, Intervals: fastIntervals}
	err := w.Wait(context.Background(), target, staticSource{}, func(u progress.Update) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if len(updates) != 1 || !updates[0].Done {
		t.Fatalf("expected a single done update, got %+v", updates)
	}
}

type growingSource struct {
	calls  atomic.Int64
	target string
}

func (s *growingSource) Total(context.Context) (int64, bool, error) {
	if s.calls.Add(1) < 3 {
		return 0, false, nil
	}
	return 1000, true, nil
}

func (s *growingSource) Sample(context.Context) (progress.Sample, error) {
	n := s.calls.Add(1)
	if n == 6 {
		// Out-of-order reading; must not move progress backwards.
		return progress.Sample{Downloaded: 1, Known: true}, nil
	}
	if n >= 9 {
		_ = os.WriteFile(s.target, []byte("x"), 0o644)
	}
	return progress.Sample{Downloaded: n * 100, Known: true}, nil
}

func TestWaitReportsMonotonicProgress(t *testing.T) {
	target := filepath.Join(t.TempDir(), "model.bin")
	src := &growingSource{target: target}
	w := &progress.Watcher{
		Timeout:        5 * time.Second,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Intervals:      fastIntervals,
	}

	var updates []progress.Update
	err := w.Wait(context.Background(), target, src, func(u progress.Update) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if len(updates) < 2 {
		t.Fatalf("expected several updates, got %+v", updates)
	}
	last := updates[len(updates)-1]
	if !last.Done || !last.TotalKnown || last.Total != 1000 || last.Downloaded != 1000 {
		t.Fatalf("unexpected final update %+v", last)
	}
	for i := 1; i < len(updates); i++ {
		if updates[i].Downloaded < updates[i-1].Downloaded {
			t.Fatalf("progress went backwards: %+v", updates)
		}
	}
}

func TestWaitTimesOut(t *testing.T) {
	target := filepath.Join(t.TempDir(), "never.bin")
	w := &progress.Watcher{
		Timeout:        50 * time.Millisecond,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Intervals:      fastIntervals,
	}
	err := w.Wait(context.Background(), target, staticSource{}, nil)
	if !errors.Is(err, progress.ErrTimeout) || !errors.Is(err, batch.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestWaitTimesOutWhilePolling(t *testing.T) {
	target := filepath.Join(t.TempDir(), "never.bin")
	w := &progress.Watcher{Timeout: 50 * time.Millisecond, Intervals: fastIntervals}
	src := progress.FuncSource(func(context.Context) (progress.Sample, error) {
		return progress.Sample{}, nil
	})
	if err := w.Wait(context.Background(), target, src, nil); !errors.Is(err, progress.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestWaitHonoursCancellation(t *testing.T) {
	target := filepath.Join(t.TempDir(), "never.bin")
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	w := &progress.Watcher{Timeout: time.Minute, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Intervals: fastIntervals}
	err := w.Wait(ctx, target, staticSource{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestWaitWithLogSource(t *testing.T) {
	logDir := t.TempDir()
	target := filepath.Join(t.TempDir(), "archive.zip")
	logPath := filepath.Join(logDir, "7", "archive.zip.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "C0:Content-Range: bytes 0-2047/2048\ntime 1, speed 10, downl 512 Bytes\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	src := progress.NewLogSource(logDir, target, time.Minute, nil)
	w := &progress.Watcher{Timeout: 5 * time.Second, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Intervals: fastIntervals}

	var sawPartial atomic.Bool
	err := w.Wait(context.Background(), target, src, func(u progress.Update) {
		if !u.Done && u.Downloaded == 512 && u.Total == 2048 {
			if sawPartial.CompareAndSwap(false, true) {
				_ = os.WriteFile(target, []byte("zip"), 0o644)
			}
		}
	})
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if !sawPartial.Load() {
		t.Fatal("expected a partial progress update from the log")
	}
}
