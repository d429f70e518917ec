// Package pdf provides the PDF capability layer: embedded-text extraction
// (whole page or bounding box), page geometry, and raster rendering.
package pdf

import (
	"context"
	"image"
)

// Provider exposes the PDF operations the acquisition pipeline needs.
// Pages are 1-based throughout, matching the poppler tools.
type Provider interface {
	// PageCount returns the number of pages in the document.
	PageCount(ctx context.Context, path string) (int, error)

	// PageSize returns the width and height of a page in points.
	PageSize(ctx context.Context, path string, page int) (width, height float64, err error)

	// PageText extracts the embedded text layer of a single page.
	PageText(ctx context.Context, path string, page int) (string, error)

	// RegionText extracts embedded text restricted to a bounding box
	// (origin top-left, units in points).
	RegionText(ctx context.Context, path string, page int, x, y, w, h float64) (string, error)

	// RenderPage rasterizes a single page at the given DPI.
	RenderPage(ctx context.Context, path string, page, dpi int) (image.Image, error)
}
