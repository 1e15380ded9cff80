package renumber

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"mediatidy/internal/batch"
)

// ErrPatternMismatch is returned for names without a numeric prefix.
var ErrPatternMismatch = fmt.Errorf("%w: name does not start with a numeric prefix", batch.ErrValidation)

var namePattern = regexp.MustCompile(`^(\d{1,3})\.? ([\p{L}\p{N}_\p{Z}\s&\-,.()\[\]^+'!#;–]+)$`)

// SplitName parses "<digits>[.] <title>" into the numeric prefix and the
// title starting at its first letter.
func SplitName(name string) (int, string, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, "", fmt.Errorf("%q: %w", name, ErrPatternMismatch)
	}
	idx := strings.IndexFunc(m[2], unicode.IsLetter)
	if idx < 0 {
		return 0, "", fmt.Errorf("%q has no title: %w", name, ErrPatternMismatch)
	}
	prefix, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", fmt.Errorf("%q: %w", name, ErrPatternMismatch)
	}
	return prefix, m[2][idx:], nil
}

// Padding returns the digit count of the largest prefix among names that
// parse. Names that do not parse are ignored; zero means none parsed.
func Padding(names []string) int {
	largest := -1
	for _, name := range names {
		if prefix, _, err := SplitName(name); err == nil && prefix > largest {
			largest = prefix
		}
	}
	if largest < 0 {
		return 0
	}
	return len(strconv.Itoa(largest))
}

// FormatName renders the padded name.
func FormatName(prefix, width int, base string) string {
	return fmt.Sprintf("%0*d. %s", width, prefix, base)
}

// Rename computes the new name for name at the given width.
func Rename(name string, width int) (string, error) {
	prefix, base, err := SplitName(name)
	if err != nil {
		return "", err
	}
	return FormatName(prefix, width, base), nil
}
