// Package cluster groups individually recognized glyphs into words.
//
// Glyphs arrive from an upstream detector (see the ocr package) as a flat list of
// bounding boxes with a character value. The package merges them bottom-up: every
// glyph starts in its own cluster, and on each iteration the two closest clusters
// are merged until no pair is closer than the threshold or the iteration cap is hit.
//
// # Components
//
//   - Distance engine: Metric implementations (EdgeMetric, CenterMetric) computing a
//     symmetric dissimilarity between two clusters from their box geometry.
//   - Agglomerative merger: Run repeatedly merges the globally closest pair.
//   - Labeler: Label assigns group ids 1..k to the glyphs of the final partition.
//
// # Distance
//
// EdgeMetric combines a horizontal gap and a vertical gap:
//
//	distance = sqrt(horizontal² + (verticalScale · vertical)²)
//
// The horizontal gap looks only at the leading (smallest left edge) and trailing
// (largest left edge) glyph of each cluster. The vertical gap compares the top and
// bottom edges of the two clusters. A vertical scale above 1 makes glyphs on the
// same text line much closer than glyphs stacked on different lines.
//
// # Top Edge
//
// The top edge of a cluster is, by default, the smallest bottom edge of its members
// (TopEdgeMinBottom). Threshold values tuned against the historical behavior depend
// on it. TopEdgeMinTop uses the true smallest top edge instead.
//
// # Determinism
//
// Pair selection scans the partition in a fixed order and keeps the first strict
// minimum, so identical inputs always produce identical partitions and labels.
//
// # Performance
//
// Each iteration scans O(k²) pairs for k clusters; a full run is O(n³) in the worst
// case. Pairwise distances are cached and only the merged cluster's row is
// recomputed after each merge. This is fine for tens to a few hundred glyphs, not for
// whole-document inputs.
//
// # Concurrency
//
// Run works on its own copy of the input and holds no state between calls, so
// independent runs may execute concurrently without locking.
package cluster
