package cluster

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Options controls a clustering run.
//
// The zero value performs no merges (MaxIterations is 0); start from DefaultOptions
// for the usual tuning.
type Options struct {
	// Threshold is the largest distance at which two clusters are still merged.
	Threshold float64

	// MaxIterations caps the number of merge iterations. Reaching it is not an error.
	MaxIterations int

	// Metric computes cluster distances. Nil selects an EdgeMetric with
	// DefaultVerticalScale and DefaultTopEdge.
	Metric Metric

	// Logger receives a debug event per merge. Nil disables logging.
	Logger *zerolog.Logger

	// OnMerge, when set, is called after every merge.
	OnMerge func(Merge)
}

// DefaultOptions returns the standard tuning: threshold 20, vertical scale 3 and a
// cap of 1000 iterations.
func DefaultOptions() Options {
	return Options{
		Threshold:     DefaultThreshold,
		MaxIterations: DefaultMaxIterations,
		Metric:        EdgeMetric{VerticalScale: DefaultVerticalScale, TopEdge: DefaultTopEdge},
	}
}

// Validate reports option values that cannot produce a meaningful run.
func (o Options) Validate() error {
	if math.IsNaN(o.Threshold) {
		return fmt.Errorf("threshold must be a number")
	}
	if o.MaxIterations < 0 {
		return fmt.Errorf("max iterations must be >= 0, got %d", o.MaxIterations)
	}
	switch m := o.Metric.(type) {
	case EdgeMetric:
		return validateScale(m.VerticalScale)
	case CenterMetric:
		return validateScale(m.VerticalScale)
	}
	return nil
}

func validateScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale < 0 {
		return fmt.Errorf("vertical scale must be a finite number >= 0, got %v", scale)
	}
	return nil
}

// Merge describes one merge step.
type Merge struct {
	// Iteration is the 0-based iteration that performed the merge.
	Iteration int

	// A and B are the merged clusters, in the order they were combined.
	A, B Cluster

	// Distance is the distance between A and B.
	Distance float64

	// Clusters is the number of clusters left after the merge.
	Clusters int
}

// Result is the outcome of a clustering run.
type Result struct {
	// Clusters is the final partition.
	Clusters []Cluster

	// Iterations is the number of iterations consumed, including the final
	// iteration that found no admissible pair.
	Iterations int

	// Merges is the number of merges performed.
	Merges int

	// Converged is false when the run stopped because MaxIterations was reached
	// while an admissible pair might still exist.
	Converged bool
}

// Run clusters glyphs by repeatedly merging the closest pair of clusters.
//
// The run starts from one cluster per glyph, in input order. Each iteration picks the
// pair with the smallest distance; the first pair in scan order wins ties. When that
// distance is at most opts.Threshold the pair is removed and the merged cluster (A's
// glyphs followed by B's) is appended to the partition; otherwise the run stops.
//
// Glyphs are copied; the caller's slice is never modified.
func Run(glyphs []Glyph, opts Options) *Result {
	metric := opts.Metric
	if metric == nil {
		metric = EdgeMetric{VerticalScale: DefaultVerticalScale, TopEdge: DefaultTopEdge}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	p := newPartition(glyphs, metric)
	res := &Result{}

	// Fewer than two clusters means nothing can ever merge.
	if p.len() < 2 {
		res.Clusters = p.clusters
		res.Converged = true
		return res
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		res.Iterations++

		i, j, best := p.closest()
		if i < 0 || best > opts.Threshold {
			logger.Debug().
				Int("iterations", iter).
				Int("clusters", p.len()).
				Msg("no more similar words")
			res.Converged = true
			break
		}

		a, b := p.clusters[i], p.clusters[j]
		p.merge(i, j)
		res.Merges++

		logger.Debug().
			Str("a", a.Text()).
			Str("b", b.Text()).
			Float64("distance", best).
			Int("clusters", p.len()).
			Msg("combining words")

		if opts.OnMerge != nil {
			opts.OnMerge(Merge{Iteration: iter, A: a, B: b, Distance: best, Clusters: p.len()})
		}

		if p.len() < 2 {
			res.Converged = true
			break
		}
	}

	if !res.Converged {
		logger.Debug().
			Int("max_iterations", opts.MaxIterations).
			Int("clusters", p.len()).
			Msg("iteration cap reached")
	}

	res.Clusters = p.clusters
	return res
}

// Words runs the clustering and labels the result in one call.
func Words(glyphs []Glyph, opts Options) ([]Glyph, *Result) {
	res := Run(glyphs, opts)
	return Label(res.Clusters), res
}

// partition is the working set of clusters with a cached distance matrix.
// dist[i][j] holds metric.Distance(clusters[i], clusters[j]) for i < j.
type partition struct {
	metric   Metric
	clusters []Cluster
	dist     [][]float64
}

func newPartition(glyphs []Glyph, metric Metric) *partition {
	p := &partition{
		metric:   metric,
		clusters: make([]Cluster, len(glyphs)),
		dist:     make([][]float64, len(glyphs)),
	}
	for i, g := range glyphs {
		p.clusters[i] = Cluster{g}
	}
	for i := range p.clusters {
		p.dist[i] = make([]float64, len(p.clusters))
		for j := i + 1; j < len(p.clusters); j++ {
			p.dist[i][j] = metric.Distance(p.clusters[i], p.clusters[j])
		}
	}
	return p
}

func (p *partition) len() int { return len(p.clusters) }

// closest returns the first pair (i < j, row-major) holding the strictly smallest
// distance. Because the metric is symmetric this is the same pair an ordered scan
// over all (i, j), i != j, would select. It returns -1, -1 when there is no pair.
func (p *partition) closest() (int, int, float64) {
	bi, bj := -1, -1
	best := math.Inf(1)
	for i := range p.clusters {
		for j := i + 1; j < len(p.clusters); j++ {
			if d := p.dist[i][j]; d < best {
				best, bi, bj = d, i, j
			}
		}
	}
	return bi, bj, best
}

// merge removes clusters i and j (i < j) and appends their union.
func (p *partition) merge(i, j int) {
	merged := make(Cluster, 0, len(p.clusters[i])+len(p.clusters[j]))
	merged = append(merged, p.clusters[i]...)
	merged = append(merged, p.clusters[j]...)

	keep := make([]int, 0, len(p.clusters)-2)
	for k := range p.clusters {
		if k != i && k != j {
			keep = append(keep, k)
		}
	}

	n := len(keep) + 1
	clusters := make([]Cluster, n)
	dist := make([][]float64, n)
	for a, ka := range keep {
		clusters[a] = p.clusters[ka]
		dist[a] = make([]float64, n)
		for b := a + 1; b < len(keep); b++ {
			dist[a][b] = p.dist[ka][keep[b]]
		}
	}
	clusters[n-1] = merged
	dist[n-1] = make([]float64, n)
	for a := range keep {
		dist[a][n-1] = p.metric.Distance(clusters[a], merged)
	}

	p.clusters = clusters
	p.dist = dist
}
