package namematch_test

import (
	"errors"
	"sync"
	"testing"

	"mediatidy/internal/namematch"
)

func TestMatchNoCandidates(t *testing.T) {
	_, err := namematch.Match("abc", nil)
	if !errors.Is(err, namematch.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	_, err = namematch.Match("abc", []string{})
	if !errors.Is(err, namematch.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates for empty slice, got %v", err)
	}
}

func TestMatchIdentity(t *testing.T) {
	for _, target := range []string{"lesson 1.mp4", "", "Ünïcode"} {
		got, err := namematch.Match(target, []string{target})
		if err != nil {
			t.Fatalf("Match(%q): %v", target, err)
		}
		if got.Label != target || got.Score != 100 || got.Index != 0 {
			t.Fatalf("Match(%q) = %+v, want label=%q score=100 index=0", target, got, target)
		}
	}
}

func TestMatchCaseInsensitiveKeepsOriginalLabel(t *testing.T) {
	got, err := namematch.Match("report.mp4", []string{"Report.MP4", "summary.mp4"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got.Label != "Report.MP4" {
		t.Fatalf("label = %q, want Report.MP4", got.Label)
	}
	if got.Score != 100 {
		t.Fatalf("score = %d, want 100", got.Score)
	}
}

func TestMatchTieBreaksToFirst(t *testing.T) {
	got, err := namematch.Match("xx", []string{"ab", "ab"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got.Index != 0 || got.Label != "ab" {
		t.Fatalf("got %+v, want first occurrence", got)
	}

	got, err = namematch.Match("abc", []string{"abx", "xbc", "abc"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got.Index != 2 {
		t.Fatalf("expected exact match at index 2, got %+v", got)
	}

	got, err = namematch.Match("abc", []string{"abx", "xbc"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got.Index != 0 {
		t.Fatalf("expected tie to resolve to index 0, got %+v", got)
	}
}

func TestMatchLowScoreStillSelected(t *testing.T) {
	got, err := namematch.Match("completely different", []string{"zzz"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got.Label != "zzz" {
		t.Fatalf("expected sole candidate to be returned, got %+v", got)
	}
	if got.Score > 20 {
		t.Fatalf("expected a low score, got %d", got.Score)
	}
}

func TestMatchMembership(t *testing.T) {
	sets := [][]string{
		{"01. Intro.mp4", "02. Setup.mp4", "03. Deploy.mp4"},
		{"a", "a", "b"},
		{"", "x"},
		{"Kubernetes Logging .mp4"},
	}
	for _, set := range sets {
		for _, target := range []string{"intro", "02 setup", "", "logging"} {
			got, err := namematch.Match(target, set)
			if err != nil {
				t.Fatalf("Match(%q): %v", target, err)
			}
			if got.Index < 0 || got.Index >= len(set) || set[got.Index] != got.Label {
				t.Fatalf("Match(%q, %v) = %+v, label not from input at index", target, set, got)
			}
			if got.Score < 0 || got.Score > 100 {
				t.Fatalf("score out of range: %d", got.Score)
			}
		}
	}
}

func TestMatchIdempotent(t *testing.T) {
	candidates := []string{"Lesson 10 .mp4", "Lesson 1.mp4", "lesson 11.mp4"}
	first, err := namematch.Match("lesson 1.mp4", candidates)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	second, err := namematch.Match("lesson 1.mp4", candidates)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestMatchConcurrent(t *testing.T) {
	candidates := []string{"alpha.mkv", "beta.mkv", "gamma.mkv"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := namematch.Match("BETA.mkv", candidates)
				if err != nil || got.Label != "beta.mkv" {
					t.Errorf("unexpected result %+v, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestRankAgreesWithMatch(t *testing.T) {
	candidates := []string{"ab", "xx", "ab", "abc"}
	ranked, err := namematch.Rank("abc", candidates)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != len(candidates) {
		t.Fatalf("expected %d results, got %d", len(candidates), len(ranked))
	}
	best, err := namematch.Match("abc", candidates)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if ranked[0] != best {
		t.Fatalf("Rank[0] = %+v, Match = %+v", ranked[0], best)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("rank not descending at %d: %+v", i, ranked)
		}
	}
	// The two "ab" entries tie and must keep input order.
	if ranked[1].Index != 0 || ranked[2].Index != 2 {
		t.Fatalf("tied entries out of order: %+v", ranked)
	}
}

func TestRankNoCandidates(t *testing.T) {
	if _, err := namematch.Rank("x", nil); !errors.Is(err, namematch.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}
