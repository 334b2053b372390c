package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/landa/character-clusterer/internal/cluster"
)

// Canvas defaults used when no base image is given.
const (
	DefaultCanvasWidth  = 1000
	DefaultCanvasHeight = 800

	// BoxThickness is the outline width of a glyph box in pixels.
	BoxThickness = 3
)

// valueColor is the color of the glyph value drawn inside each box.
var valueColor = color.RGBA{R: 100, G: 100, B: 100, A: 255}

// RenderOptions controls Draw and RenderClusters.
type RenderOptions struct {
	// Width and Height size the white canvas used when there is no base image.
	// Zero means the defaults.
	Width  int
	Height int

	// Scale resizes the finished rendering. Values <= 0 or 1 leave it unchanged.
	Scale float64

	// HideValues skips drawing glyph values.
	HideValues bool
}

// RenderResult contains a rendering encoded as base64 PNG.
type RenderResult struct {
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	Groups      int                 `json:"groups"`
	Legend      map[int]ColorResult `json:"legend"`
	ImageBase64 string              `json:"image_base64"`
}

// Draw paints every glyph box in its group color onto a copy of base, or onto a
// white canvas when base is nil. Glyph values are drawn centered in each box.
// Boxes are clipped to the canvas.
func Draw(base image.Image, glyphs []cluster.Glyph, opts RenderOptions) *image.NRGBA {
	var canvas *image.NRGBA
	if base != nil {
		canvas = imaging.Clone(base)
	} else {
		w, h := opts.Width, opts.Height
		if w <= 0 {
			w = DefaultCanvasWidth
		}
		if h <= 0 {
			h = DefaultCanvasHeight
		}
		canvas = imaging.New(w, h, color.White)
	}

	for _, g := range glyphs {
		r := pixelRect(g.Rect)
		drawOutline(canvas, r, GroupColor(g.Group))
		if !opts.HideValues && g.Value != "" {
			drawValue(canvas, r, g.Value)
		}
	}

	if opts.Scale > 0 && opts.Scale != 1 {
		b := canvas.Bounds()
		w := max(1, int(float64(b.Dx())*opts.Scale))
		h := max(1, int(float64(b.Dy())*opts.Scale))
		canvas = imaging.Resize(canvas, w, h, imaging.Lanczos)
	}
	return canvas
}

// RenderClusters draws glyphs with Draw and returns the result as base64 PNG along
// with the color legend of the groups present.
func RenderClusters(base image.Image, glyphs []cluster.Glyph, opts RenderOptions) (*RenderResult, error) {
	img := Draw(base, glyphs, opts)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode rendering: %w", err)
	}

	ids := groupIDs(glyphs)
	b := img.Bounds()
	return &RenderResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		Groups:      len(ids),
		Legend:      Legend(ids),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// SaveRendering draws glyphs and writes the image to path. The format follows the
// file extension.
func SaveRendering(path string, base image.Image, glyphs []cluster.Glyph, opts RenderOptions) error {
	if err := imaging.Save(Draw(base, glyphs, opts), path); err != nil {
		return fmt.Errorf("failed to save rendering: %w", err)
	}
	return nil
}

func groupIDs(glyphs []cluster.Glyph) []int {
	groups := cluster.Groups(glyphs)
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func pixelRect(r cluster.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.Left)), int(math.Round(r.Top)),
		int(math.Round(r.Right())), int(math.Round(r.Bottom())),
	)
}

// drawOutline strokes r inward with BoxThickness pixels.
func drawOutline(dst draw.Image, r image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	t := min(BoxThickness, (r.Dx()+1)/2, (r.Dy()+1)/2)
	if t <= 0 {
		return
	}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

func drawValue(dst draw.Image, r image.Rectangle, value string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(valueColor),
		Face: face,
	}
	width := d.MeasureString(value).Ceil()
	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()

	x := r.Min.X + (r.Dx()-width)/2
	y := r.Min.Y + (r.Dy()-textHeight)/2 + metrics.Ascent.Ceil()
	d.Dot = fixed.P(x, y)
	d.DrawString(value)
}
