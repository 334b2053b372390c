package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/landa/character-clusterer/internal/cluster"
	"github.com/landa/character-clusterer/internal/imaging"
)

// DefaultLanguage is used when Options.Language is empty.
const DefaultLanguage = "eng"

// Options controls glyph extraction.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "deu".
	Language string

	// MinConfidence drops boxes scored below it (0.0 to 1.0).
	MinConfidence float64

	// Binarize and Upscale are passed to imaging.PrepareForOCR.
	Binarize bool
	Upscale  float64

	// Region restricts recognition to part of the image. Returned boxes are
	// still in whole-image coordinates.
	Region *imaging.Region
}

// Word is a word as segmented by Tesseract itself.
type Word struct {
	Text       string       `json:"text"`
	Confidence float64      `json:"confidence"`
	Bounds     cluster.Rect `json:"bounds"`
}

// ExtractGlyphs recognizes single characters in img and returns one glyph per
// Tesseract symbol box, in the order Tesseract reports them. Glyphs are unlabeled.
//
// The image is cropped to opts.Region, prepared with imaging.PrepareForOCR, and
// the resulting boxes are mapped back to img's coordinate system.
func ExtractGlyphs(img image.Image, opts Options) ([]cluster.Glyph, error) {
	boxes, tr, err := recognize(img, opts, gosseract.RIL_SYMBOL)
	if err != nil {
		return nil, err
	}
	return symbolsToGlyphs(boxes, opts.MinConfidence, tr), nil
}

// ExtractGlyphsFromFile loads path through cache and calls ExtractGlyphs.
func ExtractGlyphsFromFile(cache *imaging.ImageCache, path string, opts Options) ([]cluster.Glyph, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return ExtractGlyphs(img, opts)
}

// ExtractWordsFromFile loads path through cache and calls ExtractWords.
func ExtractWordsFromFile(cache *imaging.ImageCache, path string, opts Options) ([]Word, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return ExtractWords(img, opts)
}

// ExtractWords returns Tesseract's own word boxes. They are useful as a reference
// when tuning the clustering threshold against a real page.
func ExtractWords(img image.Image, opts Options) ([]Word, error) {
	boxes, tr, err := recognize(img, opts, gosseract.RIL_WORD)
	if err != nil {
		return nil, err
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		confidence := float64(box.Confidence) / 100.0
		if text == "" || confidence < opts.MinConfidence {
			continue
		}
		words = append(words, Word{
			Text:       text,
			Confidence: confidence,
			Bounds:     tr.rect(box.Box),
		})
	}
	return words, nil
}

// Version returns the version of the linked Tesseract library.
func Version() string {
	return gosseract.Version()
}

// transform maps boxes found on the prepared image back to the source image.
type transform struct {
	offset image.Point
	scale  float64
}

func (t transform) rect(r image.Rectangle) cluster.Rect {
	s := t.scale
	if s <= 0 {
		s = 1
	}
	return cluster.Rect{
		Left:   float64(r.Min.X)/s + float64(t.offset.X),
		Top:    float64(r.Min.Y)/s + float64(t.offset.Y),
		Width:  float64(r.Dx()) / s,
		Height: float64(r.Dy()) / s,
	}
}

func recognize(img image.Image, opts Options, level gosseract.PageIteratorLevel) ([]gosseract.BoundingBox, transform, error) {
	tr := transform{scale: 1}

	src := img
	if opts.Region != nil {
		cropped, err := imaging.CropRegion(img, *opts.Region)
		if err != nil {
			return nil, tr, err
		}
		src = cropped
		tr.offset = image.Pt(opts.Region.X1, opts.Region.Y1)
	} else {
		tr.offset = img.Bounds().Min
	}

	prepared := imaging.PrepareForOCR(src, imaging.PrepareOptions{
		Binarize: opts.Binarize,
		Upscale:  opts.Upscale,
	})
	if opts.Upscale > 1 {
		tr.scale = opts.Upscale
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, tr, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	language := opts.Language
	if language == "" {
		language = DefaultLanguage
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, tr, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, tr, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(level)
	if err != nil {
		return nil, tr, fmt.Errorf("OCR failed: %w", err)
	}
	return boxes, tr, nil
}

// symbolsToGlyphs converts symbol boxes into glyphs, skipping blank symbols and
// those below minConfidence.
func symbolsToGlyphs(boxes []gosseract.BoundingBox, minConfidence float64, tr transform) []cluster.Glyph {
	glyphs := make([]cluster.Glyph, 0, len(boxes))
	for _, box := range boxes {
		value := strings.TrimSpace(box.Word)
		confidence := float64(box.Confidence) / 100.0
		if value == "" || confidence < minConfidence {
			continue
		}
		if box.Box.Dx() <= 0 || box.Box.Dy() <= 0 {
			continue
		}
		glyphs = append(glyphs, cluster.Glyph{
			Rect:       tr.rect(box.Box),
			Value:      value,
			Confidence: confidence,
			Group:      cluster.Unassigned,
		})
	}
	return glyphs
}
