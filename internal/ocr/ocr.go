// Package ocr provides optical character recognition over raster images.
package ocr

import (
	"context"
	"image"
)

// Engine recognizes text in a raster image. Implementations are hinted to
// treat the image as a single uniform block of text, which keeps footer
// margins from being cropped by layout analysis.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}
