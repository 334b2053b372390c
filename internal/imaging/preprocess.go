package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Region is a rectangle in pixel coordinates; (X1,Y1) inclusive, (X2,Y2) exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// CropRegion extracts region from img. The returned image's origin is (0,0).
func CropRegion(img image.Image, region Region) (image.Image, error) {
	bounds := img.Bounds()
	if region.X1 < bounds.Min.X || region.Y1 < bounds.Min.Y || region.X2 > bounds.Max.X || region.Y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			region.X1, region.Y1, region.X2, region.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if region.X1 >= region.X2 || region.Y1 >= region.Y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return imaging.Crop(img, region.Rect()), nil
}

// PrepareOptions controls PrepareForOCR.
type PrepareOptions struct {
	// Binarize converts the image to pure black and white at ThresholdLevel.
	Binarize bool

	// ThresholdLevel is the gray level separating ink from paper. Zero means 128.
	ThresholdLevel uint8

	// Upscale resizes the image by this factor before recognition. Values <= 1
	// leave the size unchanged.
	Upscale float64
}

// PrepareForOCR converts img to grayscale, optionally binarizes it, and optionally
// upscales it. Tesseract finds symbol boxes more reliably on clean, large glyphs.
//
// When Upscale is applied, glyph boxes found on the result must be divided by the
// same factor to map back to img.
func PrepareForOCR(img image.Image, opts PrepareOptions) image.Image {
	var out image.Image = effect.Grayscale(img)

	if opts.Binarize {
		level := opts.ThresholdLevel
		if level == 0 {
			level = 128
		}
		out = segment.Threshold(out, level)
	}

	if opts.Upscale > 1 {
		b := out.Bounds()
		w := int(float64(b.Dx()) * opts.Upscale)
		h := int(float64(b.Dy()) * opts.Upscale)
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}

	return out
}
