package textutil

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxScore is the similarity of two identical strings.
const MaxScore = 100

// Fold lower-cases text for comparison. Casers are stateful, so a new one is
// built per call.
func Fold(text string) string {
	return cases.Lower(language.Und).String(text)
}

// Ratio computes the normalized Levenshtein similarity between a and b on a
// 0-100 scale: 100 - round(100 * distance / max(len(a), len(b))), counted in
// runes. Two empty strings score 100. The comparison is case-sensitive.
func Ratio(a, b string) int {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return MaxScore
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := MaxScore * (1 - float64(dist)/float64(longest))
	return int(math.Round(score))
}
