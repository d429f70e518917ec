package main

import (
	"go.uber.org/zap"

	"github.com/sells-group/bidbook/internal/acquire"
	"github.com/sells-group/bidbook/internal/config"
	"github.com/sells-group/bidbook/internal/extract"
	"github.com/sells-group/bidbook/internal/ocr"
	"github.com/sells-group/bidbook/internal/pdf"
	"github.com/sells-group/bidbook/internal/pipeline"
	"github.com/sells-group/bidbook/pkg/anthropic"
)

// newProcessor wires the full per-file pipeline from config.
func newProcessor(cfg *config.Config) *pipeline.Processor {
	provider := pdf.NewPoppler(cfg.PDF.PdfInfoPath, cfg.PDF.PdfToTextPath, cfg.PDF.PdfToPPMPath)
	engine := ocr.NewTesseract(cfg.OCR.Language)
	acquirer := acquire.New(provider, engine)

	var client anthropic.Client
	if cfg.Anthropic.Key != "" {
		client = anthropic.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Warn("no anthropic key configured, extraction will return empty results")
	}
	extractor := extract.NewAnthropicExtractor(client, cfg.Anthropic.Model, cfg.Anthropic.RequestsPerSecond)

	return pipeline.New(acquirer, extractor)
}
