package dedupe

import (
	"strings"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// Similarity returns the normalized edit-distance ratio of a and b in [0,1].
// Both strings are lower-cased and trimmed first. Identical strings score 1.0
// and an empty string never resembles a non-empty one.
func Similarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

// PairScore holds the per-field similarity of two tasks.
type PairScore struct {
	Title       float64
	Description float64
}

// Combined is the mean of title and description similarity.
func (p PairScore) Combined() float64 {
	return (p.Title + p.Description) / 2
}

// ScorePair compares the title and description of two tasks. A missing
// description is compared as the empty string.
func ScorePair(a, b model.Task) PairScore {
	return PairScore{
		Title:       Similarity(a.Title, b.Title),
		Description: Similarity(a.Description, b.Description),
	}
}

// Comparable reports whether two tasks may be fuzzy-compared at all: they
// come from the same source, or both come from the calendar/email
// integrations.
func Comparable(a, b model.Task) bool {
	if a.Source == b.Source {
		return true
	}
	return a.Source.IsIntegration() && b.Source.IsIntegration()
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// levenshtein computes the edit distance between a and b using two rows.
func levenshtein(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
