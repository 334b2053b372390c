package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func concat(rows ...[]Glyph) []Glyph {
	var all []Glyph
	for _, r := range rows {
		all = append(all, r...)
	}
	return all
}

// page mirrors a small document: two lines of words plus stacked blocks.
func page() []Glyph {
	return concat(
		row("180", 20, 20),
		row("Pt", 160, 20),
		row("Beware", 20, 80),
		row("Hest3", 20, 400),
		row("Hest3", 220, 400),
		row("Vest1", 500, 100),
		row("Vest1", 500, 150),
		row("Vest3", 500, 300),
		row("Vest3", 500, 320),
	)
}

func opts(threshold, scale float64, maxIter int) Options {
	return Options{
		Threshold:     threshold,
		MaxIterations: maxIter,
		Metric:        EdgeMetric{VerticalScale: scale},
	}
}

func glyphCount(clusters []Cluster) int {
	n := 0
	for _, c := range clusters {
		n += len(c)
	}
	return n
}

func TestRun_TwoCloseGlyphsMerge(t *testing.T) {
	glyphs := []Glyph{
		{Rect: Rect{Left: 0, Top: 0, Width: 4, Height: 10}, Value: "a"},
		{Rect: Rect{Left: 5, Top: 0, Width: 4, Height: 10}, Value: "b"},
	}

	res := Run(glyphs, opts(100, 3, 1000))

	require.Len(t, res.Clusters, 1)
	assert.Len(t, res.Clusters[0], 2)
	assert.Equal(t, "ab", res.Clusters[0].Text())
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Merges)
}

func TestRun_FarGlyphsStaySeparate(t *testing.T) {
	glyphs := []Glyph{
		{Rect: Rect{Left: 0, Top: 0, Width: 30, Height: 40}, Value: "a"},
		{Rect: Rect{Left: 500, Top: 0, Width: 30, Height: 40}, Value: "b"},
	}

	res := Run(glyphs, opts(100, 3, 1000))

	require.Len(t, res.Clusters, 2)
	assert.Equal(t, 0, res.Merges)
	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Converged)
}

func TestRun_StackedLinesDoNotMerge(t *testing.T) {
	glyphs := concat(
		row("Vest3", 500, 300),
		row("Vest3", 500, 320),
		row("Vest3", 500, 340),
	)

	t.Run("vertical scale keeps lines apart", func(t *testing.T) {
		res := Run(glyphs, opts(10, 3, 1000))

		require.Len(t, res.Clusters, 3)
		for _, c := range res.Clusters {
			require.Len(t, c, 5)
			assert.Equal(t, "Vest3", c.Text())
			for _, g := range c {
				assert.Equal(t, c[0].Rect.Top, g.Rect.Top, "word spans more than one line")
			}
		}
	})

	t.Run("horizontal only metric merges across lines", func(t *testing.T) {
		res := Run(glyphs, opts(10, 0, 1000))
		assert.Len(t, res.Clusters, 1)
	})
}

func TestRun_SingleGlyph(t *testing.T) {
	glyphs := []Glyph{{Rect: Rect{Left: 3, Top: 4, Width: 5, Height: 6}, Value: "x"}}

	labeled, res := Words(glyphs, DefaultOptions())

	require.Len(t, res.Clusters, 1)
	require.Len(t, labeled, 1)
	assert.Equal(t, 1, labeled[0].Group)
	assert.Equal(t, 0, res.Iterations)
	assert.True(t, res.Converged)
}

func TestRun_Empty(t *testing.T) {
	res := Run(nil, DefaultOptions())

	assert.Empty(t, res.Clusters)
	assert.Empty(t, Label(res.Clusters))
	assert.True(t, res.Converged)
}

func TestRun_ZeroIterations(t *testing.T) {
	glyphs := page()

	res := Run(glyphs, opts(math.MaxFloat64, 3, 0))

	require.Len(t, res.Clusters, len(glyphs))
	for i, c := range res.Clusters {
		require.Len(t, c, 1)
		assert.Equal(t, glyphs[i], c[0])
	}
	assert.False(t, res.Converged)
	assert.Equal(t, 0, res.Iterations)
}

func TestRun_IterationCap(t *testing.T) {
	glyphs := page()

	res := Run(glyphs, opts(math.MaxFloat64, 3, 5))

	assert.Len(t, res.Clusters, len(glyphs)-5)
	assert.Equal(t, 5, res.Iterations)
	assert.Equal(t, 5, res.Merges)
	assert.False(t, res.Converged)
}

func TestRun_PartitionInvariant(t *testing.T) {
	glyphs := page()
	for i := range glyphs {
		glyphs[i].Value = string(rune('A' + i%26))
		glyphs[i].Confidence = float64(i) // unique tag per glyph
	}

	for _, threshold := range []float64{0, 5, 10, 40, 100, 1000} {
		res := Run(glyphs, opts(threshold, 3, 1000))

		seen := make(map[float64]int)
		for _, c := range res.Clusters {
			require.NotEmpty(t, c)
			for _, g := range c {
				seen[g.Confidence]++
			}
		}
		require.Len(t, seen, len(glyphs), "threshold %v lost glyphs", threshold)
		for tag, n := range seen {
			require.Equal(t, 1, n, "glyph %v appears %d times", tag, n)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	glyphs := page()

	first, _ := Words(glyphs, opts(20, 3, 1000))
	for i := 0; i < 5; i++ {
		again, _ := Words(glyphs, opts(20, 3, 1000))
		require.Equal(t, first, again)
	}
}

func TestRun_DoesNotModifyInput(t *testing.T) {
	glyphs := page()
	before := append([]Glyph(nil), glyphs...)

	Words(glyphs, opts(20, 3, 1000))

	assert.Equal(t, before, glyphs)
}

func TestRun_ClusterCountDropsByOnePerMerge(t *testing.T) {
	glyphs := page()
	prev := len(glyphs)
	merges := 0

	o := opts(40, 3, 1000)
	o.OnMerge = func(m Merge) {
		assert.Equal(t, prev-1, m.Clusters)
		assert.Equal(t, merges, m.Iteration)
		assert.LessOrEqual(t, m.Distance, o.Threshold)
		prev = m.Clusters
		merges++
	}

	res := Run(glyphs, o)

	assert.Equal(t, merges, res.Merges)
	assert.Len(t, res.Clusters, len(glyphs)-merges)
}

func TestRun_ThresholdMonotonic(t *testing.T) {
	glyphs := page()

	prev := len(glyphs) + 1
	for threshold := 0.0; threshold <= 300; threshold += 5 {
		n := len(Run(glyphs, opts(threshold, 3, 1000)).Clusters)
		assert.LessOrEqual(t, n, prev, "threshold %v produced more clusters", threshold)
		prev = n
	}
}

func TestRun_WordsOnPage(t *testing.T) {
	res := Run(page(), opts(20, 3, 1000))

	var words []string
	for _, c := range res.Clusters {
		words = append(words, c.Text())
	}
	assert.ElementsMatch(t, []string{
		"180", "Pt", "Beware", "Hest3", "Hest3", "Vest1", "Vest1", "Vest3", "Vest3",
	}, words)
}

// naiveRun is the straightforward ordered-pair rescan without caching.
func naiveRun(glyphs []Glyph, threshold float64, maxIter int, m Metric) []Cluster {
	words := make([]Cluster, len(glyphs))
	for i, g := range glyphs {
		words[i] = Cluster{g}
	}
	for iter := 0; iter < maxIter; iter++ {
		best := math.MaxFloat64
		w1, w2 := -1, -1
		for j := range words {
			for k := range words {
				if j == k {
					continue
				}
				if d := m.Distance(words[j], words[k]); d < best {
					best, w1, w2 = d, j, k
				}
			}
		}
		if w1 < 0 || best > threshold {
			break
		}
		merged := append(append(Cluster{}, words[w1]...), words[w2]...)
		var next []Cluster
		for i, w := range words {
			if i != w1 && i != w2 {
				next = append(next, w)
			}
		}
		words = append(next, merged)
	}
	return words
}

func TestRun_MatchesNaiveRescan(t *testing.T) {
	metrics := []Metric{
		EdgeMetric{VerticalScale: 3},
		EdgeMetric{VerticalScale: 1.5, TopEdge: TopEdgeMinTop},
		CenterMetric{VerticalScale: 3},
	}

	for _, m := range metrics {
		for _, threshold := range []float64{5, 20, 60, 200} {
			want := naiveRun(page(), threshold, 1000, m)
			got := Run(page(), Options{Threshold: threshold, MaxIterations: 1000, Metric: m}).Clusters
			require.Equal(t, want, got, "metric %T threshold %v", m, threshold)
		}
	}
}

func TestRun_NilMetricUsesDefault(t *testing.T) {
	withDefault := Run(page(), Options{Threshold: 20, MaxIterations: 1000})
	explicit := Run(page(), opts(20, DefaultVerticalScale, 1000))

	assert.Equal(t, explicit.Clusters, withDefault.Clusters)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"nil metric", Options{Threshold: 1}, false},
		{"nan threshold", Options{Threshold: math.NaN()}, true},
		{"negative iterations", Options{MaxIterations: -1}, true},
		{"negative scale", Options{Metric: EdgeMetric{VerticalScale: -1}}, true},
		{"infinite scale", Options{Metric: CenterMetric{VerticalScale: math.Inf(1)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
