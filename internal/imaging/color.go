package imaging

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// UnassignedColor is used for glyphs whose group is 0.
var UnassignedColor = color.RGBA{R: 100, G: 100, B: 100, A: 255}

// goldenAngle spreads consecutive group hues around the wheel without repeats.
const goldenAngle = 137.50776405

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex string   `json:"hex"` // "#rrggbb"
	RGB RGBColor `json:"rgb"`
	HSL HSLColor `json:"hsl"`
}

// GroupColor returns the drawing color for a word id.
//
// The palette is deterministic: the same group always gets the same pastel color,
// so renderings of successive runs can be compared by eye. Group 0 is gray.
func GroupColor(group int) color.RGBA {
	if group <= 0 {
		return UnassignedColor
	}
	hue := math.Mod(float64(group-1)*goldenAngle, 360)
	// Alternate value bands so that neighbours on the wheel stay distinguishable.
	v := 0.85
	if group%2 == 0 {
		v = 0.7
	}
	r, g, b := colorful.Hsv(hue, 0.55, v).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// DescribeColor converts c into its hex, RGB and HSL forms.
func DescribeColor(c color.Color) ColorResult {
	cf, _ := colorful.MakeColor(c)
	r, g, b := cf.RGB255()
	h, s, l := cf.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return ColorResult{
		Hex: cf.Hex(),
		RGB: RGBColor{R: r, G: g, B: b},
		HSL: HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}
}

// Legend maps every group id in groups to its described color.
func Legend(groups []int) map[int]ColorResult {
	legend := make(map[int]ColorResult, len(groups))
	for _, id := range groups {
		legend[id] = DescribeColor(GroupColor(id))
	}
	return legend
}
