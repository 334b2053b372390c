package cluster

import (
	"fmt"
	"math"
	"strings"
)

// Default tuning values.
const (
	DefaultThreshold     = 20.0
	DefaultVerticalScale = 3.0
	DefaultMaxIterations = 1000
)

// TopEdgeMode selects how the top edge of a cluster is computed.
type TopEdgeMode int

const (
	// TopEdgeMinBottom takes the smallest bottom edge among the members. This is the
	// historical definition; existing thresholds were tuned against it.
	TopEdgeMinBottom TopEdgeMode = iota

	// TopEdgeMinTop takes the smallest top edge among the members. Switching to it
	// changes distances for clusters whose members differ in height.
	TopEdgeMinTop
)

// DefaultTopEdge is the top edge definition used when none is configured.
const DefaultTopEdge = TopEdgeMinBottom

// String returns the configuration name of the mode.
func (m TopEdgeMode) String() string {
	switch m {
	case TopEdgeMinBottom:
		return "min-bottom"
	case TopEdgeMinTop:
		return "min-top"
	default:
		return fmt.Sprintf("TopEdgeMode(%d)", int(m))
	}
}

// ParseTopEdgeMode parses "min-bottom" or "min-top". An empty string yields DefaultTopEdge.
func ParseTopEdgeMode(s string) (TopEdgeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultTopEdge, nil
	case "min-bottom":
		return TopEdgeMinBottom, nil
	case "min-top":
		return TopEdgeMinTop, nil
	default:
		return DefaultTopEdge, fmt.Errorf("unknown top edge mode: %s", s)
	}
}

// Metric computes the dissimilarity between two non-empty clusters.
//
// Implementations must be symmetric: Distance(a, b) == Distance(b, a).
type Metric interface {
	Distance(a, b Cluster) float64
}

// EdgeMetric measures clusters by the gaps between the outer edges of their
// leading and trailing glyphs, plus a scaled vertical gap.
type EdgeMetric struct {
	// VerticalScale weighs vertical separation against horizontal separation.
	VerticalScale float64

	// TopEdge selects the top edge definition.
	TopEdge TopEdgeMode
}

// Distance returns sqrt(h² + (VerticalScale·v)²).
func (m EdgeMetric) Distance(a, b Cluster) float64 {
	h, v := m.Components(a, b)
	return math.Hypot(h, m.VerticalScale*v)
}

// Components returns the unscaled horizontal and vertical parts of the distance.
func (m EdgeMetric) Components(a, b Cluster) (horizontal, vertical float64) {
	return edgeHorizontal(a, b), edgeVertical(a, b, m.TopEdge)
}

// edgeHorizontal takes the smallest edge gap over the four leading/trailing pairings.
func edgeHorizontal(a, b Cluster) float64 {
	leadA, trailA := a.Leading(), a.Trailing()
	leadB, trailB := b.Leading(), b.Trailing()

	return min(
		glyphEdgeGap(trailA, leadB),
		glyphEdgeGap(leadA, trailB),
		glyphEdgeGap(leadA, leadB),
		glyphEdgeGap(trailA, trailB),
	)
}

// glyphEdgeGap is the smallest absolute difference between any horizontal edge of a
// and any horizontal edge of b. Overlap is not clamped.
func glyphEdgeGap(a, b Glyph) float64 {
	aL, aR := a.Rect.Left, a.Rect.Right()
	bL, bR := b.Rect.Left, b.Rect.Right()

	return min(
		math.Abs(aL-bL),
		math.Abs(aL-bR),
		math.Abs(aR-bR),
		math.Abs(aR-bL),
	)
}

// edgeVertical covers both the line-stacking case (top against bottom) and the
// shared-baseline case (top against top, bottom against bottom).
func edgeVertical(a, b Cluster, mode TopEdgeMode) float64 {
	topA, bottomA := a.TopEdge(mode), a.BottomEdge()
	topB, bottomB := b.TopEdge(mode), b.BottomEdge()

	return min(
		math.Abs(topA-bottomB),
		math.Abs(topB-bottomA),
		math.Abs(topA-topB),
		math.Abs(bottomA-bottomB),
	)
}

// CenterMetric is the earliest form of the distance: the horizontal part is the
// distance between glyph centers of leading(A)/trailing(B) and leading(B)/trailing(A),
// and the vertical part only considers the line-stacking case.
type CenterMetric struct {
	VerticalScale float64
	TopEdge       TopEdgeMode
}

// Distance returns sqrt(h² + (VerticalScale·v)²).
func (m CenterMetric) Distance(a, b Cluster) float64 {
	h, v := m.Components(a, b)
	return math.Hypot(h, m.VerticalScale*v)
}

// Components returns the unscaled horizontal and vertical parts of the distance.
func (m CenterMetric) Components(a, b Cluster) (horizontal, vertical float64) {
	horizontal = min(
		math.Abs(centerX(a.Leading())-centerX(b.Trailing())),
		math.Abs(centerX(b.Leading())-centerX(a.Trailing())),
	)
	vertical = min(
		math.Abs(a.TopEdge(m.TopEdge)-b.BottomEdge()),
		math.Abs(b.TopEdge(m.TopEdge)-a.BottomEdge()),
	)
	return horizontal, vertical
}

func centerX(g Glyph) float64 {
	return g.Rect.Left + g.Rect.Width/2
}

// Metric names accepted by NewMetric.
const (
	MetricEdge   = "edge"
	MetricCenter = "center"
)

// NewMetric builds the named metric. An empty name selects the edge metric.
func NewMetric(name string, verticalScale float64, topEdge TopEdgeMode) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MetricEdge:
		return EdgeMetric{VerticalScale: verticalScale, TopEdge: topEdge}, nil
	case MetricCenter:
		return CenterMetric{VerticalScale: verticalScale, TopEdge: topEdge}, nil
	default:
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
}

// ComponentMetric is implemented by metrics that can report their horizontal and
// vertical parts separately.
type ComponentMetric interface {
	Metric
	Components(a, b Cluster) (horizontal, vertical float64)
}
