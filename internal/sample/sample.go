// Package sample builds synthetic glyph layouts for demos and tests.
//
// Every glyph is GlyphWidth x GlyphHeight pixels and consecutive glyphs of a row
// advance by Advance pixels, leaving a 5 pixel gap between neighbours.
package sample

import (
	"github.com/landa/character-clusterer/internal/cluster"
)

// Glyph geometry used by Row.
const (
	GlyphWidth  = 30
	GlyphHeight = 40
	Advance     = 35
)

// Line places text at (X, Y).
type Line struct {
	Text string  `json:"text" yaml:"text"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
}

// Row lays out one unassigned glyph per character of text, starting at (x, y).
func Row(text string, x, y float64) []cluster.Glyph {
	glyphs := make([]cluster.Glyph, 0, len(text))
	i := 0
	for _, r := range text {
		glyphs = append(glyphs, cluster.Glyph{
			Rect: cluster.Rect{
				Left:   x + float64(i*Advance),
				Top:    y,
				Width:  GlyphWidth,
				Height: GlyphHeight,
			},
			Value: string(r),
			Group: cluster.Unassigned,
		})
		i++
	}
	return glyphs
}

// Page lays out all lines and concatenates their glyphs in order.
func Page(lines []Line) []cluster.Glyph {
	var glyphs []cluster.Glyph
	for _, l := range lines {
		glyphs = append(glyphs, Row(l.Text, l.X, l.Y)...)
	}
	return glyphs
}

// DemoLines is the reference layout: a few words on shared lines, words separated
// by growing horizontal gaps (Hest*), and rows stacked with shrinking vertical
// gaps (Vest*). It fits a 1000x800 canvas.
var DemoLines = []Line{
	{"180", 20, 20},
	{"Pt", 160, 20},
	{"Beware", 20, 80},
	{"Hest1", 20, 200},
	{"Hest1", 200, 200},
	{"Hest2", 20, 300},
	{"Hest2", 210, 300},
	{"Hest3", 20, 400},
	{"Hest3", 220, 400},
	{"Vest1", 500, 100},
	{"Vest1", 500, 150},
	{"Vest1", 500, 200},
	{"Vest2", 750, 100},
	{"Vest2", 750, 130},
	{"Vest2", 750, 160},
	{"Vest3", 500, 300},
	{"Vest3", 500, 320},
	{"Vest3", 500, 340},
	{"Vest4", 750, 300},
	{"Vest4", 750, 310},
	{"Vest4", 750, 320},
}

// Demo returns the glyphs of DemoLines.
func Demo() []cluster.Glyph {
	return Page(DemoLines)
}
