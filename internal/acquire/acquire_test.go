package acquire

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bidbook/internal/model"
)

// stubProvider implements pdf.Provider with canned per-page responses.
type stubProvider struct {
	pageTexts   []string
	footerTexts []string
	countErr    error
	renderErr   error
	renderCalls int
}

func (s *stubProvider) PageCount(_ context.Context, _ string) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return len(s.pageTexts), nil
}

func (s *stubProvider) PageSize(_ context.Context, _ string, _ int) (float64, float64, error) {
	return 612, 792, nil
}

func (s *stubProvider) PageText(_ context.Context, _ string, page int) (string, error) {
	return s.pageTexts[page-1], nil
}

func (s *stubProvider) RegionText(_ context.Context, _ string, page int, _, _, _, _ float64) (string, error) {
	if s.footerTexts == nil {
		return "", nil
	}
	return s.footerTexts[page-1], nil
}

func (s *stubProvider) RenderPage(_ context.Context, _ string, _, _ int) (image.Image, error) {
	s.renderCalls++
	if s.renderErr != nil {
		return nil, s.renderErr
	}
	return image.NewRGBA(image.Rect(0, 0, 850, 1100)), nil
}

// stubEngine returns canned text keyed by whether the image is a footer crop
// (footer crops are much shorter than full pages).
type stubEngine struct {
	footerText string
	pageText   string
	err        error
	calls      int
}

func (s *stubEngine) Recognize(_ context.Context, img image.Image) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if img.Bounds().Dy() < 200 {
		return s.footerText, nil
	}
	return s.pageText, nil
}

func tempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proposal.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func longBody(n int) string {
	return strings.Repeat("proposal body text ", n/19+1)
}

func TestAcquireDirectWithTextLayerFooter(t *testing.T) {
	provider := &stubProvider{
		pageTexts:   []string{longBody(600)},
		footerTexts: []string{"www.daltonelectric.net | 301-236-0429"},
	}
	engine := &stubEngine{}
	a := New(provider, engine)

	text, method, err := a.Acquire(context.Background(), tempPDF(t))
	require.NoError(t, err)
	assert.Equal(t, model.MethodTextExtraction, method)
	assert.Contains(t, text, "--- [FOOTER DATA START] ---")
	assert.Contains(t, text, "www.daltonelectric.net")
	assert.Contains(t, text, "--- [FOOTER DATA END] ---")
	assert.Zero(t, engine.calls, "no OCR expected when the text layer has a footer")
}

func TestFooterOCREscalationAcceptsContactSignals(t *testing.T) {
	provider := &stubProvider{
		pageTexts:   []string{longBody(600)},
		footerTexts: []string{""},
	}
	engine := &stubEngine{footerText: "www.acmeconcrete.com"}
	a := New(provider, engine)

	text, method, err := a.Acquire(context.Background(), tempPDF(t))
	require.NoError(t, err)
	assert.Equal(t, model.MethodTextExtraction, method)
	assert.Contains(t, text, "www.acmeconcrete.com")
	assert.Contains(t, text, "--- [FOOTER DATA START] ---")
	assert.Equal(t, 1, engine.calls)
}

func TestFooterOCRRejectsNoise(t *testing.T) {
	provider := &stubProvider{
		pageTexts:   []string{longBody(600)},
		footerTexts: []string{""},
	}
	engine := &stubEngine{footerText: "lorem ipsum dolor sit amet"}
	a := New(provider, engine)

	text, method, err := a.Acquire(context.Background(), tempPDF(t))
	require.NoError(t, err)
	assert.Equal(t, model.MethodTextExtraction, method)
	assert.NotContains(t, text, "lorem ipsum")
	assert.NotContains(t, text, "FOOTER DATA")
}

func TestNoEscalationForLongMiddlePages(t *testing.T) {
	provider := &stubProvider{
		pageTexts:   []string{longBody(600), longBody(600), longBody(600)},
		footerTexts: []string{"www.a.com 301-555-0000", "", "www.a.com 301-555-0000"},
	}
	engine := &stubEngine{footerText: "www.a.com"}
	a := New(provider, engine)

	_, _, err := a.Acquire(context.Background(), tempPDF(t))
	require.NoError(t, err)
	assert.Zero(t, provider.renderCalls, "middle page with long body must not escalate")
}

func TestShortDocumentFallsBackToOCR(t *testing.T) {
	provider := &stubProvider{
		pageTexts:   []string{"short"},
		footerTexts: []string{""},
	}
	engine := &stubEngine{
		pageText:   longBody(400),
		footerText: "Phone: 907-555-1212",
	}
	a := New(provider, engine)

	text, method, err := a.Acquire(context.Background(), tempPDF(t))
	require.NoError(t, err)
	assert.Equal(t, model.MethodOCR, method)
	assert.Contains(t, text, "proposal body text")
	assert.Contains(t, text, "--- [FOOTER DATA START] ---")
	assert.Contains(t, text, "907-555-1212")
}

func TestAcquireFileNotFound(t *testing.T) {
	a := New(&stubProvider{}, &stubEngine{})

	_, method, err := a.Acquire(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Equal(t, model.MethodError, method)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcquireBothPathsFail(t *testing.T) {
	provider := &stubProvider{countErr: errors.New("corrupt xref table")}
	a := New(provider, &stubEngine{})

	_, method, err := a.Acquire(context.Background(), tempPDF(t))
	require.Error(t, err)
	assert.Equal(t, model.MethodError, method)
}

func TestEmptyDocumentYieldsEmptyOCRText(t *testing.T) {
	provider := &stubProvider{}
	a := New(provider, &stubEngine{})

	text, method, err := a.Acquire(context.Background(), tempPDF(t))
	require.NoError(t, err)
	assert.Equal(t, model.MethodOCR, method)
	assert.Empty(t, text)
}

func TestHasContactSignal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "website", input: "visit www.example", expected: true},
		{name: "email", input: "bids@dalton.net", expected: true},
		{name: "phone label", input: "Phone 5551212", expected: true},
		{name: "area code", input: "703 555 9999", expected: true},
		{name: "hyphenated number", input: "236-0429", expected: true},
		{name: "plain words", input: "lorem ipsum dolor", expected: false},
		{name: "empty", input: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, hasContactSignal(tt.input))
		})
	}
}
