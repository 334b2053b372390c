// Package ocr turns page images into glyphs using Tesseract (via gosseract/v2).
//
// Tesseract segments text into words on its own, but those words follow its
// layout model. This package asks for symbol-level boxes instead (RIL_SYMBOL), one
// per recognized character, so that word grouping can be done by package cluster
// with a tunable threshold.
//
// # Prerequisites
//
// Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Coordinates
//
// Images are cropped, binarized and optionally upscaled before recognition (see
// imaging.PrepareForOCR). Every returned box is mapped back to the coordinate
// system of the image that was passed in, so glyphs can be drawn over it directly.
package ocr
