package clusterkit

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ballTreeValidMetric reports whether the metric supports ball-tree pruning.
// The bound dist(q, centroid) - radius relies on the triangle inequality.
func ballTreeValidMetric(m DistanceMetric) bool {
	switch v := m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric:
		return true
	case MinkowskiMetric:
		return v.P >= 1
	default:
		return false
	}
}

// ballNode covers the points idx[start:end] of its tree, all of which lie
// within radius of the node centroid.
type ballNode struct {
	start, end int
	leaf       bool
	used       bool
	radius     float64
}

// BallTree is a ball tree spatial index for k-nearest-neighbor queries.
// Unlike a KD-tree its pruning bound holds for any true metric, not only for
// axis-decomposable ones.
//
// Nodes are stored in array form: node i has children at 2*i+1 and 2*i+2.
type BallTree struct {
	data      []float64 // flat row-major point data (n * dims)
	n         int
	dims      int
	leafSize  int
	metric    DistanceMetric
	idx       []int // tree-order position → original index
	nodes     []ballNode
	centroids []float64 // centroids[node*dims : (node+1)*dims]
}

// NewBallTree builds a ball tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
// The metric must satisfy ballTreeValidMetric.
func NewBallTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *BallTree {
	leafSize = max(leafSize, 1)

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize)
	t := &BallTree{
		data:      slices.Clone(data),
		n:         n,
		dims:      dims,
		leafSize:  leafSize,
		metric:    metric,
		idx:       idx,
		nodes:     make([]ballNode, maxNodes),
		centroids: make([]float64, maxNodes*dims),
	}
	if n > 0 {
		t.build(0, 0, n)
	}
	return t
}

func (t *BallTree) build(node, start, end int) {
	for node >= len(t.nodes) {
		t.nodes = append(t.nodes, ballNode{})
		t.centroids = append(t.centroids, make([]float64, t.dims)...)
	}

	centroid := row(t.centroids, node, t.dims)
	clear(centroid)
	for _, p := range t.idx[start:end] {
		floats.Add(centroid, row(t.data, p, t.dims))
	}
	floats.Scale(1/float64(end-start), centroid)

	var radius float64
	for _, p := range t.idx[start:end] {
		radius = math.Max(radius, t.metric.Distance(centroid, row(t.data, p, t.dims)))
	}

	count := end - start
	if count <= t.leafSize {
		t.nodes[node] = ballNode{start: start, end: end, leaf: true, used: true, radius: radius}
		return
	}
	t.nodes[node] = ballNode{start: start, end: end, used: true, radius: radius}

	split := t.widestDim(start, end)
	sub := t.idx[start:end]
	slices.SortFunc(sub, func(a, b int) int {
		va, vb := t.data[a*t.dims+split], t.data[b*t.dims+split]
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		default:
			return a - b
		}
	})
	mid := start + count/2

	t.build(2*node+1, start, mid)
	t.build(2*node+2, mid, end)
}

// widestDim returns the feature with the greatest spread over idx[start:end].
func (t *BallTree) widestDim(start, end int) int {
	best, bestSpread := 0, -1.0
	for d := 0; d < t.dims; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range t.idx[start:end] {
			v := t.data[p*t.dims+d]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi-lo > bestSpread {
			best, bestSpread = d, hi-lo
		}
	}
	return best
}

// NumPoints returns the number of indexed points.
func (t *BallTree) NumPoints() int { return t.n }

// QueryKNN finds the k nearest indexed points of each row of queryData
// (flat row-major, queryRows rows). Neighbors are sorted by distance, then by
// index. Queries run on up to workers goroutines.
func (t *BallTree) QueryKNN(queryData []float64, queryRows, k, workers int) ([][]int, [][]float64) {
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	k = min(k, t.n)
	if k <= 0 || t.n == 0 {
		return indices, distances
	}

	_ = parallelRows(queryRows, workers, func(start, end int) error {
		for q := start; q < end; q++ {
			h := make(neighborHeap, 0, k)
			t.search(0, row(queryData, q, t.dims), k, &h)
			indices[q], distances[q] = h.sorted()
		}
		return nil
	})
	return indices, distances
}

func (t *BallTree) search(node int, query []float64, k int, h *neighborHeap) {
	if node >= len(t.nodes) || !t.nodes[node].used {
		return
	}
	nd := t.nodes[node]

	if nd.leaf {
		for _, p := range t.idx[nd.start:nd.end] {
			h.offer(p, t.metric.Distance(query, row(t.data, p, t.dims)), k)
		}
		return
	}

	left, right := 2*node+1, 2*node+2
	lb, rb := t.minDist(left, query), t.minDist(right, query)
	near, far, farBound := left, right, rb
	if rb < lb {
		near, far, farBound = right, left, lb
	}

	t.search(near, query, k, h)
	if h.Len() < k || farBound <= (*h)[0].dist {
		t.search(far, query, k, h)
	}
}

// minDist returns a lower bound on the distance between point and any point
// inside node's ball.
func (t *BallTree) minDist(node int, point []float64) float64 {
	if node >= len(t.nodes) || !t.nodes[node].used {
		return math.Inf(1)
	}
	c, r := t.metric.Distance(point, row(t.centroids, node, t.dims)), t.nodes[node].radius
	return math.Max(c-r-boundSlack*(c+r), 0)
}
