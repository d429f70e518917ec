package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContactLabelRewrite(t *testing.T) {
	// A rewritten label itself matches the horizontal injection family, so a
	// marker lands between "Contact Name" and the person's name.
	t.Run("basic rewrite", func(t *testing.T) {
		out := Normalize("Contact: Nathaniel")
		assert.True(t, strings.HasPrefix(out, "Contact Name"))
		assert.Contains(t, out, ": Nathaniel")
		assert.NotContains(t, out, "Contact: ")
	})

	t.Run("case insensitive", func(t *testing.T) {
		out := Normalize("CONTACT: Bobby Suastegui")
		assert.True(t, strings.HasPrefix(out, "Contact Name"))
		assert.Contains(t, out, ": Bobby Suastegui")
	})

	t.Run("multi word name", func(t *testing.T) {
		out := Normalize("Contact: Kenny D Moore thanks")
		assert.True(t, strings.HasPrefix(out, "Contact Name"))
		assert.Contains(t, out, ": Kenny D Moore thanks")
	})

	t.Run("rewritten label gains marker", func(t *testing.T) {
		out := Normalize("Contact: Nathaniel")
		assert.Contains(t, out, "[EXPLICIT CONTACT FOUND]")
	})

	t.Run("no label untouched", func(t *testing.T) {
		assert.Equal(t, "Phone: 301-236-0429", Normalize("Phone: 301-236-0429"))
	})
}

func TestExplicitContactInjection(t *testing.T) {
	t.Run("vertical table layout", func(t *testing.T) {
		out := Normalize("Estimator\nNathaniel\nPhone\n555-1234")
		assert.Contains(t, out, "[EXPLICIT CONTACT FOUND]: Nathaniel")
	})

	t.Run("single injection per document", func(t *testing.T) {
		out := Normalize("Estimator\nNathaniel\n\nEstimator\nSomeone Else")
		assert.Equal(t, 1, strings.Count(out, "[EXPLICIT CONTACT FOUND]"))
	})

	t.Run("short names skipped", func(t *testing.T) {
		out := Normalize("Estimator\nAl\n")
		assert.NotContains(t, out, "[EXPLICIT CONTACT FOUND]")
	})

	t.Run("no contact layout no marker", func(t *testing.T) {
		out := Normalize("Proposal for concrete work.\nTotal: $45,000")
		assert.NotContains(t, out, "[EXPLICIT CONTACT FOUND]")
	})
}

func TestTruncation(t *testing.T) {
	t.Run("short document untouched", func(t *testing.T) {
		in := strings.Repeat("a", 8000)
		assert.Equal(t, in, Normalize(in))
	})

	t.Run("oversized document keeps both ends", func(t *testing.T) {
		// "q" does not occur in the truncation marker text.
		head := strings.Repeat("h", 4000)
		tail := strings.Repeat("z", 4000)
		in := head + strings.Repeat("q", 2000) + tail

		out := Normalize(in)
		assert.Contains(t, out, "[...middle of document truncated...]")
		assert.True(t, strings.HasPrefix(out, head))
		assert.True(t, strings.HasSuffix(out, tail))
		assert.NotContains(t, out, "q")
	})
}
