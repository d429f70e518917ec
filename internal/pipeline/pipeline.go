// Package pipeline runs the per-file processing chain: text acquisition,
// model extraction, and error shaping. One uploaded file in, exactly one
// proposal record out; failures are carried in-band on the record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/bidbook/internal/acquire"
	"github.com/sells-group/bidbook/internal/extract"
	"github.com/sells-group/bidbook/internal/model"
)

// TextAcquirer produces document text for a stored PDF.
type TextAcquirer interface {
	Acquire(ctx context.Context, path string) (string, model.ExtractionMethod, error)
}

// Processor chains acquisition and extraction for uploaded files.
type Processor struct {
	acquirer  TextAcquirer
	extractor extract.Extractor
}

// New builds a Processor.
func New(acquirer TextAcquirer, extractor extract.Extractor) *Processor {
	return &Processor{acquirer: acquirer, extractor: extractor}
}

// BatchFile is one uploaded file queued for processing: the stored temp path
// plus the original upload filename the record carries.
type BatchFile struct {
	DisplayName string
	Path        string
}

// ProcessFile processes one stored PDF. It never returns an error: failures
// become error-tagged records.
func (p *Processor) ProcessFile(ctx context.Context, path, displayName string) model.Proposal {
	text, method, err := p.acquirer.Acquire(ctx, path)
	if err != nil {
		zap.L().Warn("pipeline: acquisition failed",
			zap.String("file", displayName),
			zap.Error(err),
		)
		return model.ErrorProposal(displayName, friendlyError(err, displayName))
	}

	fields, err := p.extractor.Extract(ctx, text, displayName, method)
	if err != nil {
		zap.L().Warn("pipeline: extraction failed",
			zap.String("file", displayName),
			zap.Error(err),
		)
		return model.ErrorProposal(displayName, "Failed to extract data. Please check your API key and try again.")
	}

	return model.NewProposal(displayName, method, fields)
}

// ProcessBatch processes files sequentially in upload order.
func (p *Processor) ProcessBatch(ctx context.Context, files []BatchFile) []model.Proposal {
	proposals := make([]model.Proposal, 0, len(files))
	for _, f := range files {
		proposals = append(proposals, p.ProcessFile(ctx, f.Path, f.DisplayName))
	}
	return proposals
}

// friendlyError maps internal failures to the per-record messages the
// frontend shows.
func friendlyError(err error, displayName string) string {
	if errors.Is(err, acquire.ErrNotFound) {
		return fmt.Sprintf("File not found: %s", displayName)
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "ocr") || strings.Contains(lower, "tesseract"):
		return "Failed to process scanned PDF. Please ensure the PDF is readable."
	case strings.Contains(lower, "api") || strings.Contains(lower, "anthropic"):
		return "Failed to extract data. Please check your API key and try again."
	case strings.Contains(lower, "pdf"):
		return "Invalid or corrupted PDF file."
	default:
		return fmt.Sprintf("Processing failed: %s", err.Error())
	}
}
