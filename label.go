package clusterkit

import "slices"

// relabel converts merge edges into linkage rows. Each edge is
// [a, b, distance] where a and b are any point of the two clusters being
// merged; edges must already be in merge order. The returned rows are
// [left, right, distance, size] with left < right, where IDs below n are
// original points and merged clusters are numbered n, n+1, ... in order.
func relabel(edges [][3]float64, n int) [][4]float64 {
	if len(edges) == 0 {
		return nil
	}

	uf := newUnionFind(n)
	z := make([][4]float64, len(edges))
	for i, e := range edges {
		a := uf.find(int(e[0]))
		b := uf.find(int(e[1]))
		if a > b {
			a, b = b, a
		}
		size := uf.merge(a, b)
		z[i] = [4]float64{float64(a), float64(b), e[2], float64(size)}
	}
	return z
}

// sortEdges orders edges by ascending distance, keeping the relative order of
// equal distances.
func sortEdges(edges [][3]float64) {
	slices.SortStableFunc(edges, func(x, y [3]float64) int {
		switch {
		case x[2] < y[2]:
			return -1
		case x[2] > y[2]:
			return 1
		default:
			return 0
		}
	})
}
