// Package acquire turns a PDF file into an annotated text blob plus a method
// tag. It prefers the embedded text layer, captures the page-footer band
// explicitly (with a targeted high-resolution OCR escalation when the text
// layer comes up empty), and falls back to whole-document OCR for scanned
// files.
package acquire

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/bidbook/internal/annotate"
	"github.com/sells-group/bidbook/internal/model"
	"github.com/sells-group/bidbook/internal/ocr"
	"github.com/sells-group/bidbook/internal/pdf"
)

const (
	// footerBand marks where the footer region starts, as a fraction of page
	// height. The bottom 8% is tight enough to avoid catching bid table rows.
	footerBand = 0.92

	// footerOCRDPI is the render resolution for the surgical footer crop.
	// 300 DPI matters for small footer text.
	footerOCRDPI = 300

	// fallbackDPI is the render resolution for whole-document OCR.
	fallbackDPI = 300

	// minFooterChars is the direct-extraction footer length below which the
	// OCR escalation is considered.
	minFooterChars = 10

	// shortPageChars marks a page as text-poor, qualifying it for footer OCR
	// even when it is neither first nor last.
	shortPageChars = 500

	// minDocumentChars is the threshold under which direct extraction is
	// abandoned in favor of whole-document OCR.
	minDocumentChars = 100

	// maxOCRConcurrency bounds page-level OCR fan-out in the fallback path.
	maxOCRConcurrency = 4

	footerStartMarker = "\n--- [FOOTER DATA START] ---\n"
	footerEndMarker   = "\n--- [FOOTER DATA END] ---\n"
)

// contactSignals are the substrings an OCR'd footer fragment must contain to
// be kept. Anything else is treated as OCR noise and discarded. The list
// covers URL fragments, email markers, phone labels, frequent area codes,
// and phone punctuation.
var contactSignals = []string{
	"www", ".com", ".net", ".org", "@", "Fax", "Phone", "Tel",
	"703", "301", "907", "(", ")", "-",
}

// ErrNotFound reports that the input path does not exist.
var ErrNotFound = eris.New("acquire: file not found")

// Acquirer extracts annotated text from PDF files.
type Acquirer struct {
	pdf pdf.Provider
	ocr ocr.Engine
}

// New creates an Acquirer over the given PDF provider and OCR engine.
func New(provider pdf.Provider, engine ocr.Engine) *Acquirer {
	return &Acquirer{pdf: provider, ocr: engine}
}

// Acquire extracts text from the PDF at path and returns it together with the
// method used. Direct text-layer extraction is tried first; if it yields
// fewer than minDocumentChars characters the whole document is OCR'd instead.
func (a *Acquirer) Acquire(ctx context.Context, path string) (string, model.ExtractionMethod, error) {
	if _, err := os.Stat(path); err != nil {
		return "", model.MethodError, eris.Wrapf(ErrNotFound, "%s", path)
	}

	text, directErr := a.acquireDirect(ctx, path)
	if directErr == nil {
		if trimmed := strings.TrimSpace(text); len(trimmed) >= minDocumentChars {
			return annotate.Normalize(trimmed), model.MethodTextExtraction, nil
		}
	} else {
		// Expected for scanned PDFs; the OCR fallback handles those.
		zap.L().Debug("acquire: direct extraction failed, trying OCR",
			zap.String("path", path),
			zap.Error(directErr),
		)
	}

	text, ocrErr := a.acquireOCR(ctx, path)
	if ocrErr != nil {
		return "", model.MethodError, eris.Wrapf(ocrErr, "acquire: OCR fallback for %s", path)
	}
	return annotate.Normalize(strings.TrimSpace(text)), model.MethodOCR, nil
}

// acquireDirect walks the text layer page by page, capturing the footer band
// of every page separately and escalating to a high-resolution footer OCR
// crop where the text layer has no footer to give.
func (a *Acquirer) acquireDirect(ctx context.Context, path string) (string, error) {
	pages, err := a.pdf.PageCount(ctx, path)
	if err != nil {
		return "", err
	}

	var doc strings.Builder
	footerPages := 0

	for page := 1; page <= pages; page++ {
		pageText, err := a.pdf.PageText(ctx, path, page)
		if err != nil {
			return "", err
		}
		if pageText != "" {
			doc.WriteString(pageText)
			doc.WriteString("\n")
		}

		footer := a.directFooter(ctx, path, page)

		// Escalate only where contact info plausibly lives: the first page,
		// the last page, or a page with barely any body text.
		if len(strings.TrimSpace(footer)) < minFooterChars &&
			(page == 1 || page == pages || len(pageText) < shortPageChars) {
			if ocrFooter := a.footerOCR(ctx, path, page); ocrFooter != "" {
				footer = ocrFooter
			}
		}

		// Duplicated footers across pages are appended every time on purpose:
		// repetition raises the odds the extraction step notices recurring
		// contact data.
		if f := strings.TrimSpace(footer); f != "" {
			doc.WriteString(footerStartMarker)
			doc.WriteString(f)
			doc.WriteString(footerEndMarker)
			footerPages++
		}
	}

	if footerPages > 0 {
		zap.L().Debug("acquire: footer data captured",
			zap.String("path", path),
			zap.Int("pages_with_footer", footerPages),
		)
	} else {
		zap.L().Debug("acquire: no footer data found", zap.String("path", path))
	}

	return doc.String(), nil
}

// directFooter extracts the bottom band of a page from the text layer.
// Failures count as an empty footer; the OCR escalation may still fill it.
func (a *Acquirer) directFooter(ctx context.Context, path string, page int) string {
	w, h, err := a.pdf.PageSize(ctx, path, page)
	if err != nil {
		zap.L().Debug("acquire: page size lookup failed",
			zap.String("path", path), zap.Int("page", page), zap.Error(err))
		return ""
	}
	top := h * footerBand
	footer, err := a.pdf.RegionText(ctx, path, page, 0, top, w, h-top)
	if err != nil {
		zap.L().Debug("acquire: footer region extraction failed",
			zap.String("path", path), zap.Int("page", page), zap.Error(err))
		return ""
	}
	return footer
}

// footerOCR renders a single page at high resolution, crops the footer band,
// and OCRs the crop. The fragment is kept only when it carries a contact
// signal; pure noise is discarded. All failures are swallowed and reported
// as an empty footer so one bad page cannot abort the document.
func (a *Acquirer) footerOCR(ctx context.Context, path string, page int) string {
	img, err := a.pdf.RenderPage(ctx, path, page, footerOCRDPI)
	if err != nil {
		zap.L().Debug("acquire: footer render failed",
			zap.String("path", path), zap.Int("page", page), zap.Error(err))
		return ""
	}

	text, err := a.ocr.Recognize(ctx, ocr.CropBottom(img, footerBand))
	if err != nil {
		zap.L().Debug("acquire: footer OCR failed",
			zap.String("path", path), zap.Int("page", page), zap.Error(err))
		return ""
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if !hasContactSignal(text) {
		zap.L().Debug("acquire: footer OCR filtered out as noise",
			zap.String("path", path), zap.Int("page", page))
		return ""
	}

	zap.L().Debug("acquire: footer OCR accepted",
		zap.String("path", path), zap.Int("page", page))
	return text
}

// acquireOCR rasterizes every page and OCRs the full page plus, separately,
// its footer crop. Per-page failures contribute empty text rather than
// aborting the document.
func (a *Acquirer) acquireOCR(ctx context.Context, path string) (string, error) {
	pages, err := a.pdf.PageCount(ctx, path)
	if err != nil {
		return "", eris.Wrapf(err, "acquire: page count for %s", path)
	}

	type pageResult struct {
		body   string
		footer string
	}
	results := make([]pageResult, pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxOCRConcurrency)
	for page := 1; page <= pages; page++ {
		g.Go(func() error {
			img, err := a.pdf.RenderPage(gctx, path, page, fallbackDPI)
			if err != nil {
				zap.L().Debug("acquire: fallback render failed",
					zap.String("path", path), zap.Int("page", page), zap.Error(err))
				return nil
			}

			body, err := a.ocr.Recognize(gctx, img)
			if err != nil {
				zap.L().Debug("acquire: fallback page OCR failed",
					zap.String("path", path), zap.Int("page", page), zap.Error(err))
			}

			footer, err := a.ocr.Recognize(gctx, ocr.CropBottom(img, footerBand))
			if err != nil {
				zap.L().Debug("acquire: fallback footer OCR failed",
					zap.String("path", path), zap.Int("page", page), zap.Error(err))
			}

			results[page-1] = pageResult{body: body, footer: strings.TrimSpace(footer)}
			return nil
		})
	}
	_ = g.Wait()

	// Reassemble in page order so record ordering downstream stays stable.
	var doc strings.Builder
	for _, r := range results {
		doc.WriteString(r.body)
		doc.WriteString("\n")
		if r.footer != "" {
			doc.WriteString(footerStartMarker)
			doc.WriteString(r.footer)
			doc.WriteString(footerEndMarker)
		}
	}
	return doc.String(), nil
}

func hasContactSignal(text string) bool {
	for _, s := range contactSignals {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
