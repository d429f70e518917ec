package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bidbook/internal/model"
)

func proposal(file, company string, extras ...model.FieldValue) model.Proposal {
	p := model.Proposal{
		SourceFile:       file,
		ExtractionMethod: model.MethodTextExtraction,
		CompanyName:      model.NewField(company, model.ConfidenceHigh),
		ContactName:      model.EmptyField(),
		Email:            model.EmptyField(),
		Phone:            model.EmptyField(),
		Website:          model.EmptyField(),
		Trade:            model.EmptyField(),
		LogicReasoning:   model.EmptyField(),
	}
	if len(extras) > 0 {
		p.Email = extras[0]
	}
	if len(extras) > 1 {
		p.Phone = extras[1]
	}
	return p
}

func TestNormalizeCompanyName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "suffix and punctuation", input: "Dalton Electric, Inc.", expected: "dalton electric"},
		{name: "llc suffix", input: "dalton electric llc", expected: "dalton electric"},
		{name: "stacked suffixes", input: "Acme Co Inc.", expected: "acme"},
		{name: "no suffix", input: "HITT Contracting", expected: "hitt contracting"},
		{name: "empty", input: "", expected: ""},
		{name: "ampersand dropped", input: "Wireless & Communications", expected: "wireless  communications"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeCompanyName(tt.input))
		})
	}
}

func TestSequenceRatio(t *testing.T) {
	assert.Equal(t, 1.0, sequenceRatio("dalton electric", "dalton electric"))
	assert.Equal(t, 0.75, sequenceRatio("abcd", "bcde"))
	assert.Equal(t, 0.0, sequenceRatio("abc", "xyz"))
	assert.Equal(t, 1.0, sequenceRatio("", ""))
}

func TestSimilaritySuffixVariants(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Dalton Electric, Inc.", "DALTON ELECTRIC LLC"))
	assert.Less(t, Similarity("Dalton Electric", "Acme Concrete"), 0.85)
	assert.Zero(t, Similarity("", "Dalton Electric"))
}

func TestReconcileMergesSuffixVariants(t *testing.T) {
	in := []model.Proposal{
		proposal("a.pdf", "Dalton Electric Inc"),
		proposal("b.pdf", "Dalton Electric, LLC", model.NewField("bids@daltonelectric.net", model.ConfidenceHigh)),
		proposal("c.pdf", "Acme Concrete"),
	}

	out, merged := Reconcile(in)
	require.Len(t, out, 2)
	assert.Equal(t, 1, merged)

	winner := out[0]
	assert.Equal(t, "Dalton Electric, LLC", winner.CompanyName.String(), "more complete record wins")
	assert.Equal(t, "b.pdf", winner.SourceFile)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, winner.SourceFiles)
	assert.True(t, winner.Merged)
	assert.Equal(t, 1, winner.MergeCount)

	assert.Equal(t, "Acme Concrete", out[1].CompanyName.String())
	assert.False(t, out[1].Merged)
	assert.Equal(t, []string{"c.pdf"}, out[1].SourceFiles)
}

func TestReconcileTieKeepsEarlierRecord(t *testing.T) {
	in := []model.Proposal{
		proposal("first.pdf", "Dalton Electric"),
		proposal("second.pdf", "Dalton Electric Inc"),
	}

	out, merged := Reconcile(in)
	require.Len(t, out, 1)
	assert.Equal(t, 1, merged)
	assert.Equal(t, "first.pdf", out[0].SourceFile)
	assert.Equal(t, []string{"first.pdf", "second.pdf"}, out[0].SourceFiles)
}

func TestReconcileNamelessRecordsPassThrough(t *testing.T) {
	errRec := model.ErrorProposal("broken.pdf", "Failed to process PDF")
	in := []model.Proposal{
		proposal("a.pdf", "Dalton Electric"),
		errRec,
		proposal("b.pdf", "Dalton Electric LLC"),
	}

	out, merged := Reconcile(in)
	require.Len(t, out, 2)
	assert.Equal(t, 1, merged)
	assert.Equal(t, "broken.pdf", out[1].SourceFile, "nameless records trail the result")
	assert.Empty(t, out[1].SourceFiles)
}

func TestReconcileSingleValidRecordUntouched(t *testing.T) {
	in := []model.Proposal{
		proposal("a.pdf", "Dalton Electric"),
		model.ErrorProposal("broken.pdf", "Failed to process PDF"),
	}

	out, merged := Reconcile(in)
	assert.Equal(t, in, out)
	assert.Zero(t, merged)
	assert.Empty(t, out[0].SourceFiles, "short-circuit path adds no annotations")
}

func TestReconcileEmptyInput(t *testing.T) {
	out, merged := Reconcile(nil)
	assert.Empty(t, out)
	assert.Zero(t, merged)
}

func TestReconcileDistinctCompaniesUnmerged(t *testing.T) {
	in := []model.Proposal{
		proposal("a.pdf", "Dalton Electric"),
		proposal("b.pdf", "Acme Concrete"),
		proposal("c.pdf", "Summit Plumbing"),
	}

	out, merged := Reconcile(in)
	assert.Len(t, out, 3)
	assert.Zero(t, merged)
	for _, p := range out {
		assert.False(t, p.Merged)
		assert.Len(t, p.SourceFiles, 1)
	}
}
