package dedupe

import (
	internal "github.com/ZanzyTHEbar/dupesweep/sweep"

	"github.com/pmezard/go-difflib/difflib"
)

// Matcher accepts two names as near duplicates when the matching-blocks
// ratio of their normalized keys reaches Threshold
type Matcher struct {
	Threshold float64
}

// NewMatcher creates a matcher; a threshold outside (0,1] selects the default 0.85
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = internal.DefaultSimilarityThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Similar reports whether a and b are near duplicates. It is symmetric.
func (m *Matcher) Similar(a, b string) bool {
	return m.Ratio(a, b) >= m.Threshold
}

// Ratio returns 2*M/T over the normalized keys of a and b, where M counts
// characters in matching blocks and T is the combined length.
func (m *Matcher) Ratio(a, b string) float64 {
	ka, kb := NormalizeName(a), NormalizeName(b)
	if ka == kb {
		return 1
	}
	// Block matching breaks ties by position, so fix the argument order
	if kb < ka {
		ka, kb = kb, ka
	}
	return difflib.NewMatcher(runes(ka), runes(kb)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
