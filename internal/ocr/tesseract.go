package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
	"github.com/rotisserie/eris"
)

// Tesseract recognizes text using the tesseract library via gosseract.
type Tesseract struct {
	language string
}

// NewTesseract creates a Tesseract engine. If language is empty, "eng" is used.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language}
}

var _ Engine = (*Tesseract)(nil)

// Recognize OCRs the image in single-block page segmentation mode.
// A fresh client is created per call; gosseract clients are not safe for
// concurrent use.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "ocr: recognize canceled")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", eris.Wrap(err, "ocr: encode image")
	}

	client := gosseract.NewClient()
	defer client.Close() //nolint:errcheck

	if err := client.SetLanguage(t.language); err != nil {
		return "", eris.Wrapf(err, "ocr: set language %s", t.language)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", eris.Wrap(err, "ocr: set page segmentation mode")
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", eris.Wrap(err, "ocr: set image")
	}

	text, err := client.Text()
	if err != nil {
		return "", eris.Wrap(err, "ocr: recognize")
	}
	return text, nil
}
