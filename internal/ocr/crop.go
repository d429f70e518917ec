package ocr

import (
	"image"
	"image/draw"
)

// CropBottom returns the horizontal band of img from startFraction of its
// height down to the bottom edge. startFraction is clamped to [0, 1].
func CropBottom(img image.Image, startFraction float64) image.Image {
	if startFraction < 0 {
		startFraction = 0
	}
	if startFraction > 1 {
		startFraction = 1
	}

	b := img.Bounds()
	top := b.Min.Y + int(float64(b.Dy())*startFraction)
	crop := image.Rect(b.Min.X, top, b.Max.X, b.Max.Y)

	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(out, out.Bounds(), img, crop.Min, draw.Src)
	return out
}
