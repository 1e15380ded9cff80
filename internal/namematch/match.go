package namematch

import (
	"errors"
	"sort"

	"mediatidy/internal/textutil"
)

// ErrNoCandidates is returned when there is nothing to match against.
var ErrNoCandidates = errors.New("no candidates to match against")

// Result is the candidate selected for a target.
type Result struct {
	// Label is the candidate exactly as supplied, not case-folded.
	Label string
	// Index is the position of Label in the candidate slice.
	Index int
	// Score is the similarity to the target on a 0-100 scale.
	Score int
}

// Match returns the candidate with the highest case-insensitive similarity to
// target. Ties resolve to the first candidate in input order.
func Match(target string, candidates []string) (Result, error) {
	if len(candidates) == 0 {
		return Result{}, ErrNoCandidates
	}
	folded := textutil.Fold(target)
	best := Result{Index: -1, Score: -1}
	for i, candidate := range candidates {
		score := textutil.Ratio(folded, textutil.Fold(candidate))
		if score > best.Score {
			best = Result{Label: candidate, Index: i, Score: score}
		}
	}
	return best, nil
}

// Rank scores every candidate and orders them best first. Equal scores keep
// their input order, so Rank(...)[0] is always what Match selects.
func Rank(target string, candidates []string) ([]Result, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	folded := textutil.Fold(target)
	results := make([]Result, len(candidates))
	for i, candidate := range candidates {
		results[i] = Result{
			Label: candidate,
			Index: i,
			Score: textutil.Ratio(folded, textutil.Fold(candidate)),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}
