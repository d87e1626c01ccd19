// Package textmetrics provides the edit-distance primitives the evaluator,
// postprocessor and date parser all share: CER, WER, similarity and a
// bounded fuzzy-match lookup.
package textmetrics

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// distance computes the Levenshtein edit distance between a and b, using the
// native agnivade/levenshtein implementation. The library is pure Go so it
// has no optional-dependency fallback at the binary level, but Distance is
// kept as a seam: callers needing the degrade-gracefully behavior described
// in spec §4.8 rule 4 should go through FuzzyMatch, which uses distancePure
// instead when called with useNative=false.
func distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// distancePure is a dependency-free edit-distance implementation, used by
// FuzzyMatch when useNative is false.
func distancePure(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Normalize upper-cases and collapses whitespace, the normalization CER/WER
// are computed on per spec §3 unless the postprocessor has been disabled.
func Normalize(s string) string {
	fields := strings.Fields(strings.ToUpper(s))
	return strings.Join(fields, " ")
}

// CER returns the character error rate between predicted and groundTruth,
// both normalized first: edit_distance(p, g) / max(1, len(g)), capped at 1.
func CER(predicted, groundTruth string) float64 {
	p, g := Normalize(predicted), Normalize(groundTruth)
	d := distance(p, g)
	denom := len([]rune(g))
	if denom < 1 {
		denom = 1
	}
	cer := float64(d) / float64(denom)
	if cer > 1 {
		cer = 1
	}
	return cer
}

// WER returns the word error rate: word-level edit distance divided by
// max(1, word count of groundTruth), capped at 1.
func WER(predicted, groundTruth string) float64 {
	p := strings.Fields(Normalize(predicted))
	g := strings.Fields(Normalize(groundTruth))
	d := wordDistance(p, g)
	denom := len(g)
	if denom < 1 {
		denom = 1
	}
	wer := float64(d) / float64(denom)
	if wer > 1 {
		wer = 1
	}
	return wer
}

func wordDistance(a, b []string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
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
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Similarity returns 1 - CER.
func Similarity(predicted, groundTruth string) float64 {
	return 1 - CER(predicted, groundTruth)
}

// ExactMatch reports whether predicted equals groundTruth after normalization.
func ExactMatch(predicted, groundTruth string) bool {
	return Normalize(predicted) == Normalize(groundTruth)
}

// ErrorCategory buckets a CER value per spec §3: {perfect, low, medium, high}
// from thresholds {0, ≤0.2, ≤0.5, >0.5}.
type ErrorCategory string

const (
	CategoryPerfect ErrorCategory = "perfect"
	CategoryLow     ErrorCategory = "low"
	CategoryMedium  ErrorCategory = "medium"
	CategoryHigh    ErrorCategory = "high"
)

// Categorize buckets a CER value into its error category.
func Categorize(cer float64) ErrorCategory {
	switch {
	case cer <= 0:
		return CategoryPerfect
	case cer <= 0.2:
		return CategoryLow
	case cer <= 0.5:
		return CategoryMedium
	default:
		return CategoryHigh
	}
}

// FuzzyMatch finds the nearest entry in known by edit distance and returns
// it if the distance is within threshold; otherwise returns token unchanged.
// useNative selects the agnivade/levenshtein implementation; when false (the
// "library absent" degrade path) it falls back to the pure implementation.
func FuzzyMatch(token string, known []string, threshold int, useNative bool) (string, bool) {
	if len(known) == 0 {
		return token, false
	}
	best := token
	bestDist := threshold + 1
	found := false
	for _, k := range known {
		var d int
		if useNative {
			d = distance(token, k)
		} else {
			d = distancePure(token, k)
		}
		if d <= threshold && d < bestDist {
			bestDist = d
			best = k
			found = true
		}
	}
	return best, found
}
