// Package annotate applies deterministic regex pre-processing to extracted
// proposal text so the downstream extraction step attributes contact fields
// to the right entity. It is a pure string transform: no I/O, no randomness.
package annotate

import (
	"regexp"

	"go.uber.org/zap"
)

const (
	// truncateLimit is the document size above which the middle is dropped.
	truncateLimit = 8000
	// truncateKeep is how much of each end survives truncation. Contact data
	// clusters in the letterhead (top) and signature block (bottom).
	truncateKeep = 4000

	truncationMarker = "\n\n[...middle of document truncated...]\n\n"
)

var contactLabelRe = regexp.MustCompile(`(?i)Contact:\s*([A-Za-z]+(?:\s+[A-Za-z]+)*)`)

// explicitContactRes are tried in order; only the first family that matches
// gets an injection, and only at its first match. Vertical table layouts
// ("Contact\nNathaniel") come before horizontal ones ("Contact: Nathaniel").
var explicitContactRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(estimator|contact)\s*\n\s*([A-Za-z]+(?:\s+[A-Za-z]+)*)`),
	regexp.MustCompile(`(?i)(estimator|contact)[:\s]+([A-Za-z]+(?:\s+[A-Za-z]+)*)`),
}

// Normalize rewrites contact labels, injects an explicit contact marker for
// table layouts, and truncates oversized documents.
func Normalize(text string) string {
	text = contactLabelRe.ReplaceAllString(text, "Contact Name: $1")
	text = injectExplicitContact(text)
	return truncate(text)
}

// injectExplicitContact scans for estimator/contact table layouts and, on the
// first match only, injects an explicit marker right after it. The captured
// name must exceed 2 characters to count.
func injectExplicitContact(text string) string {
	for _, re := range explicitContactRes {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		name := text[loc[4]:loc[5]]
		if len(name) <= 2 {
			continue
		}
		zap.L().Debug("annotate: explicit contact pattern found", zap.String("name", name))
		marker := "\n[EXPLICIT CONTACT FOUND]: " + name + "\n"
		return text[:loc[1]] + marker + text[loc[1]:]
	}
	return text
}

func truncate(text string) string {
	if len(text) <= truncateLimit {
		return text
	}
	return text[:truncateKeep] + truncationMarker + text[len(text)-truncateKeep:]
}
