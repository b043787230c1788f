package clusterkit

import (
	"log/slog"
	"math"
)

// primMST computes a minimum spanning tree with Prim's algorithm on a dense
// distance matrix (flat n×n row-major). It returns n-1 edges
// [from, to, weight] in the order vertices join the tree. from is the vertex
// added in the previous step rather than the exact tree endpoint, which is
// enough for single-linkage labelling since every tree vertex belongs to the
// same component.
func primMST(dist []float64, n int) [][3]float64 {
	if n <= 1 {
		return nil
	}

	inTree := make([]bool, n)
	best := make([]float64, n)
	for j := range best {
		best[j] = math.Inf(1)
	}

	edges := make([][3]float64, 0, n-1)
	current := 0
	inTree[0] = true
	hasInf := false

	for len(edges) < n-1 {
		next := -1
		nextDist := math.Inf(1)
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			if d := dist[current*n+j]; d < best[j] {
				best[j] = d
			}
			if next == -1 || best[j] < nextDist {
				next, nextDist = j, best[j]
			}
		}

		if math.IsInf(nextDist, 1) {
			hasInf = true
		}
		edges = append(edges, [3]float64{float64(current), float64(next), nextDist})
		inTree[next] = true
		current = next
	}

	if hasInf {
		slog.Warn("clusterkit: spanning tree contains +Inf edges (disconnected components)")
	}
	return edges
}
