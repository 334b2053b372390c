package cluster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row lays out one glyph per character, 30x40, advancing 35 pixels.
func row(text string, x, y float64) []Glyph {
	glyphs := make([]Glyph, 0, len(text))
	i := 0
	for _, r := range text {
		glyphs = append(glyphs, Glyph{
			Rect:  Rect{Left: x + float64(i)*35, Top: y, Width: 30, Height: 40},
			Value: string(r),
		})
		i++
	}
	return glyphs
}

func box(left, top, width, height float64) Glyph {
	return Glyph{Rect: Rect{Left: left, Top: top, Width: width, Height: height}}
}

func TestGlyphEdgeGap(t *testing.T) {
	tests := []struct {
		name string
		a, b Glyph
		want float64
	}{
		{"adjacent", box(0, 0, 30, 40), box(35, 0, 30, 40), 5},
		{"reversed", box(35, 0, 30, 40), box(0, 0, 30, 40), 5},
		{"same left edge", box(10, 0, 30, 40), box(10, 50, 20, 40), 0},
		{"overlap is not clamped", box(0, 0, 30, 40), box(20, 0, 30, 40), 10},
		{"far apart", box(0, 0, 30, 40), box(500, 0, 30, 40), 470},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, glyphEdgeGap(tt.a, tt.b), 1e-9)
		})
	}
}

func TestEdgeMetric_Distance(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Cluster
		scale   float64
		topEdge TopEdgeMode
		wantH   float64
		wantV   float64
		want    float64
	}{
		{
			name:  "same row neighbours",
			a:     Cluster{box(0, 0, 30, 40)},
			b:     Cluster{box(35, 0, 30, 40)},
			scale: 3, wantH: 5, wantV: 0, want: 5,
		},
		{
			name:  "stacked lines with legacy top edge",
			a:     Cluster{box(0, 0, 30, 40)},
			b:     Cluster{box(0, 60, 30, 40)},
			scale: 3, wantH: 0, wantV: 60, want: 180,
		},
		{
			name:    "stacked lines with true top edge",
			a:       Cluster{box(0, 0, 30, 40)},
			b:       Cluster{box(0, 60, 30, 40)},
			scale:   3,
			topEdge: TopEdgeMinTop,
			wantH:   0, wantV: 20, want: 60,
		},
		{
			name:  "diagonal",
			a:     Cluster{box(0, 0, 30, 40)},
			b:     Cluster{box(34, 3, 30, 40)},
			scale: 1, wantH: 4, wantV: 3, want: 5,
		},
		{
			name:  "multi glyph words use extremal glyphs",
			a:     row("abc", 0, 0),
			b:     row("de", 110, 0),
			scale: 3, wantH: 10, wantV: 0, want: 10,
		},
		{
			name:  "zero scale ignores vertical gap",
			a:     Cluster{box(0, 0, 30, 40)},
			b:     Cluster{box(0, 400, 30, 40)},
			scale: 0, wantH: 0, wantV: 400, want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := EdgeMetric{VerticalScale: tt.scale, TopEdge: tt.topEdge}
			h, v := m.Components(tt.a, tt.b)
			assert.InDelta(t, tt.wantH, h, 1e-9, "horizontal")
			assert.InDelta(t, tt.wantV, v, 1e-9, "vertical")
			assert.InDelta(t, tt.want, m.Distance(tt.a, tt.b), 1e-9, "distance")
		})
	}
}

func TestCenterMetric_Distance(t *testing.T) {
	m := CenterMetric{VerticalScale: 3}

	h, v := m.Components(Cluster{box(0, 0, 30, 40)}, Cluster{box(35, 0, 30, 40)})
	assert.InDelta(t, 35.0, h, 1e-9)
	assert.InDelta(t, 0.0, v, 1e-9)

	d := m.Distance(Cluster{box(0, 0, 30, 40)}, Cluster{box(0, 60, 30, 40)})
	assert.InDelta(t, 180.0, d, 1e-9)
}

func randomCluster(rng *rand.Rand) Cluster {
	n := 1 + rng.Intn(5)
	c := make(Cluster, n)
	for i := range c {
		c[i] = box(
			float64(rng.Intn(800)),
			float64(rng.Intn(600)),
			float64(1+rng.Intn(40)),
			float64(1+rng.Intn(60)),
		)
	}
	return c
}

func TestMetrics_Symmetric(t *testing.T) {
	metrics := map[string]Metric{
		"edge legacy":   EdgeMetric{VerticalScale: 3, TopEdge: TopEdgeMinBottom},
		"edge min top":  EdgeMetric{VerticalScale: 1.5, TopEdge: TopEdgeMinTop},
		"center legacy": CenterMetric{VerticalScale: 3},
		"center top":    CenterMetric{VerticalScale: 2, TopEdge: TopEdgeMinTop},
	}

	for name, m := range metrics {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 500; i++ {
				a, b := randomCluster(rng), randomCluster(rng)
				dab, dba := m.Distance(a, b), m.Distance(b, a)
				require.Equal(t, dab, dba, "distance(a,b) != distance(b,a) for %v / %v", a, b)
				require.GreaterOrEqual(t, dab, 0.0)
			}
		})
	}
}

func TestCluster_Extremes(t *testing.T) {
	c := Cluster{
		{Rect: Rect{Left: 50, Top: 10, Width: 10, Height: 30}, Value: "b"},
		{Rect: Rect{Left: 10, Top: 20, Width: 10, Height: 10}, Value: "a"},
		{Rect: Rect{Left: 90, Top: 0, Width: 10, Height: 50}, Value: "c"},
		{Rect: Rect{Left: 10, Top: 5, Width: 10, Height: 10}, Value: "a2"},
		{Rect: Rect{Left: 90, Top: 5, Width: 10, Height: 10}, Value: "c2"},
	}

	assert.Equal(t, "a", c.Leading().Value, "first occurrence wins ties")
	assert.Equal(t, "c", c.Trailing().Value, "first occurrence wins ties")
	assert.Equal(t, 15.0, c.TopEdge(TopEdgeMinBottom))
	assert.Equal(t, 0.0, c.TopEdge(TopEdgeMinTop))
	assert.Equal(t, 50.0, c.BottomEdge())
	assert.Equal(t, Rect{Left: 10, Top: 0, Width: 90, Height: 50}, c.Bounds())
	assert.Equal(t, "a2abcc2", c.Text())
}

func TestCluster_EmptyPanics(t *testing.T) {
	var empty Cluster

	assert.PanicsWithError(t, ErrEmptyCluster.Error(), func() { empty.Leading() })
	assert.PanicsWithError(t, ErrEmptyCluster.Error(), func() { empty.Trailing() })
	assert.PanicsWithError(t, ErrEmptyCluster.Error(), func() { empty.BottomEdge() })
	assert.PanicsWithError(t, ErrEmptyCluster.Error(), func() {
		EdgeMetric{VerticalScale: 3}.Distance(empty, Cluster{box(0, 0, 1, 1)})
	})
}

func TestParseTopEdgeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    TopEdgeMode
		wantErr bool
	}{
		{"", DefaultTopEdge, false},
		{"min-bottom", TopEdgeMinBottom, false},
		{" MIN-TOP ", TopEdgeMinTop, false},
		{"middle", DefaultTopEdge, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTopEdgeMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) TopEdgeMode {
	t.Helper()
	m, err := ParseTopEdgeMode(s)
	require.NoError(t, err)
	return m
}

func TestNewMetric(t *testing.T) {
	m, err := NewMetric("", 2, TopEdgeMinTop)
	require.NoError(t, err)
	assert.Equal(t, EdgeMetric{VerticalScale: 2, TopEdge: TopEdgeMinTop}, m)

	m, err = NewMetric("center", 1.5, TopEdgeMinBottom)
	require.NoError(t, err)
	assert.Equal(t, CenterMetric{VerticalScale: 1.5}, m)

	_, err = NewMetric("manhattan", 1, TopEdgeMinBottom)
	assert.Error(t, err)
}
