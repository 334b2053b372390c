package cluster

// Label assigns group id i+1 to every glyph of clusters[i] and returns the labeled
// glyphs in cluster order.
//
// The glyphs inside clusters are updated in place, so labeling the same partition
// twice yields the same assignment. Ids are only meaningful within one partition.
func Label(clusters []Cluster) []Glyph {
	n := 0
	for _, c := range clusters {
		n += len(c)
	}

	labeled := make([]Glyph, 0, n)
	for i, c := range clusters {
		for j := range c {
			c[j].Group = i + 1
			labeled = append(labeled, c[j])
		}
	}
	return labeled
}

// Groups buckets labeled glyphs by group id. Unassigned glyphs are grouped under
// Unassigned.
func Groups(glyphs []Glyph) map[int]Cluster {
	groups := make(map[int]Cluster)
	for _, g := range glyphs {
		groups[g.Group] = append(groups[g.Group], g)
	}
	return groups
}
