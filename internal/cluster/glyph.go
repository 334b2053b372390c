package cluster

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// Unassigned is the group id of a glyph that has not been labeled yet.
const Unassigned = 0

// ErrEmptyCluster is the panic value raised when an operation that needs at least
// one glyph receives an empty cluster. It means the partition invariant was broken.
var ErrEmptyCluster = errors.New("cluster: empty cluster")

// Rect is an axis-aligned bounding box in image coordinates (Y grows downward).
type Rect struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Right returns the right edge of the box.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge of the box.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	left := math.Min(r.Left, o.Left)
	top := math.Min(r.Top, o.Top)
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Glyph is a single recognized character with its bounding box.
//
// Only Group changes after creation, and only during labeling.
type Glyph struct {
	Rect Rect `json:"rect" yaml:"rect"`

	// Value is the recognized character. The clustering never looks at it.
	Value string `json:"value" yaml:"value"`

	// Confidence is the recognizer's score (0.0 to 1.0), zero when unknown.
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// Group is the word id assigned by Label; Unassigned before that.
	Group int `json:"group" yaml:"group"`
}

// Cluster is a candidate word: the glyphs currently grouped together.
type Cluster []Glyph

// Leading returns the glyph with the smallest left edge. The first one wins ties.
func (c Cluster) Leading() Glyph {
	mustNotBeEmpty(c)
	lead := c[0]
	for _, g := range c[1:] {
		if g.Rect.Left < lead.Rect.Left {
			lead = g
		}
	}
	return lead
}

// Trailing returns the glyph with the largest left edge. The first one wins ties.
func (c Cluster) Trailing() Glyph {
	mustNotBeEmpty(c)
	trail := c[0]
	for _, g := range c[1:] {
		if g.Rect.Left > trail.Rect.Left {
			trail = g
		}
	}
	return trail
}

// TopEdge returns the top edge of the cluster as defined by mode.
func (c Cluster) TopEdge(mode TopEdgeMode) float64 {
	mustNotBeEmpty(c)
	y := math.Inf(1)
	for _, g := range c {
		edge := g.Rect.Top
		if mode == TopEdgeMinBottom {
			edge = g.Rect.Bottom()
		}
		if edge < y {
			y = edge
		}
	}
	return y
}

// BottomEdge returns the largest bottom edge among the members.
func (c Cluster) BottomEdge() float64 {
	mustNotBeEmpty(c)
	y := math.Inf(-1)
	for _, g := range c {
		if b := g.Rect.Bottom(); b > y {
			y = b
		}
	}
	return y
}

// Bounds returns the union of all member boxes.
func (c Cluster) Bounds() Rect {
	mustNotBeEmpty(c)
	r := c[0].Rect
	for _, g := range c[1:] {
		r = r.Union(g.Rect)
	}
	return r
}

// Text joins the member values in reading order (left edge, then top edge).
func (c Cluster) Text() string {
	ordered := make([]Glyph, len(c))
	copy(ordered, c)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Rect.Left != ordered[j].Rect.Left {
			return ordered[i].Rect.Left < ordered[j].Rect.Left
		}
		return ordered[i].Rect.Top < ordered[j].Rect.Top
	})

	var sb strings.Builder
	for _, g := range ordered {
		sb.WriteString(g.Value)
	}
	return sb.String()
}

func mustNotBeEmpty(c Cluster) {
	if len(c) == 0 {
		panic(ErrEmptyCluster)
	}
}
