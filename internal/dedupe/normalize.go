// Package dedupe reconciles extracted proposals by fuzzy company-name
// matching, merging records that name the same subcontractor.
package dedupe

import (
	"strings"
	"unicode"
)

// companySuffixes are stripped from the end of a name before comparison.
// Checked sequentially, so "Dalton Electric Co Inc." loses both.
var companySuffixes = []string{
	" inc", " inc.", " llc", " llc.", " corp", " corp.",
	" ltd", " ltd.", " co", " co.",
}

// normalizeCompanyName lowercases, strips corporate suffixes, and removes
// punctuation so "Dalton Electric, Inc." and "dalton electric llc" compare
// equal.
func normalizeCompanyName(name string) string {
	n := strings.TrimSpace(strings.ToLower(name))
	for _, suffix := range companySuffixes {
		if strings.HasSuffix(n, suffix) {
			n = strings.TrimSpace(strings.TrimSuffix(n, suffix))
		}
	}

	var b strings.Builder
	b.Grow(len(n))
	for _, r := range n {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity scores two company names in [0, 1]. Either name normalizing to
// empty scores 0.
func Similarity(name1, name2 string) float64 {
	norm1 := normalizeCompanyName(name1)
	norm2 := normalizeCompanyName(name2)
	if norm1 == "" || norm2 == "" {
		return 0
	}
	return sequenceRatio(norm1, norm2)
}
