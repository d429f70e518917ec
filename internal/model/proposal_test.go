package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeConfidence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Confidence
	}{
		{name: "high passes through", input: "high", expected: ConfidenceHigh},
		{name: "medium passes through", input: "medium", expected: ConfidenceMedium},
		{name: "low passes through", input: "low", expected: ConfidenceLow},
		{name: "none passes through", input: "none", expected: ConfidenceNone},
		{name: "unknown coerced", input: "very high", expected: ConfidenceNone},
		{name: "uppercase coerced", input: "HIGH", expected: ConfidenceNone},
		{name: "empty coerced", input: "", expected: ConfidenceNone},
		{name: "numeric coerced", input: "0.9", expected: ConfidenceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeConfidence(tt.input))
		})
	}
}

func TestNewField(t *testing.T) {
	f := NewField("Dalton Electric", ConfidenceHigh)
	require.NotNil(t, f.Value)
	assert.Equal(t, "Dalton Electric", *f.Value)
	assert.Equal(t, ConfidenceHigh, f.Confidence)
	assert.True(t, f.Present())

	empty := NewField("", ConfidenceMedium)
	assert.Nil(t, empty.Value)
	assert.False(t, empty.Present())

	coerced := NewField("x", Confidence("bogus"))
	assert.Equal(t, ConfidenceNone, coerced.Confidence)
}

func TestFieldValueJSON(t *testing.T) {
	f := NewField("301-236-0429", ConfidenceMedium)
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"301-236-0429","confidence":"medium"}`, string(data))

	data, err = json.Marshal(EmptyField())
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":null,"confidence":"none"}`, string(data))
}

func TestEmptyFields(t *testing.T) {
	f := EmptyFields()
	assert.Nil(t, f.CompanyName.Value)
	assert.Equal(t, ConfidenceNone, f.CompanyName.Confidence)
	assert.Nil(t, f.Trade.Value)
	require.NotNil(t, f.LogicReasoning.Value)
	assert.Equal(t, "Extraction failed", *f.LogicReasoning.Value)
	assert.Equal(t, ConfidenceNone, f.LogicReasoning.Confidence)
}

func TestErrorProposal(t *testing.T) {
	p := ErrorProposal("missing.pdf", "File not found: missing.pdf")
	assert.Equal(t, MethodError, p.ExtractionMethod)
	assert.Equal(t, "missing.pdf", p.SourceFile)
	assert.Equal(t, "File not found: missing.pdf", p.Error)
	assert.False(t, p.CompanyName.Present())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"extraction_method":"error"`)
	assert.NotContains(t, string(data), "_merged")
	assert.NotContains(t, string(data), "source_files")
}

func TestProposalMergeAnnotations(t *testing.T) {
	p := NewProposal("a.pdf", MethodTextExtraction, EmptyFields())
	p.SourceFiles = []string{"a.pdf", "b.pdf"}
	p.Merged = true
	p.MergeCount = 1

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"_merged":true`)
	assert.Contains(t, string(data), `"_merge_count":1`)
	assert.Contains(t, string(data), `"source_files":["a.pdf","b.pdf"]`)
}
