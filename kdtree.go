package clusterkit

import (
	"container/heap"
	"math"
	"sort"
)

// kdTreeValidMetric reports whether the metric supports KD-tree pruning.
// The box lower bound used during search only holds for metrics that
// decompose along coordinate axes.
func kdTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, SqEuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// boundSlack shrinks node lower bounds so that rounding differences between a
// bound and metric.Distance never prune a subtree holding an exact tie with
// the current k-th neighbor.
const boundSlack = 1e-9

// kdNode covers the points idx[start:end] of its tree.
type kdNode struct {
	start, end int
	leaf       bool
	used       bool
}

// KDTree is a KD-tree spatial index for k-nearest-neighbor queries. Points are
// stored in a flat row-major array and reordered through an index
// permutation.
//
// The tree is stored as a binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
type KDTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int
	dims     int
	leafSize int
	metric   DistanceMetric
	idx      []int // tree-order position → original index
	nodes    []kdNode
	// lo[node*dims + j] / hi[node*dims + j] bound feature j within node.
	lo []float64
	hi []float64
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
// The metric must satisfy kdTreeValidMetric.
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *KDTree {
	leafSize = max(leafSize, 1)

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize)
	t := &KDTree{
		data:     append([]float64(nil), data...),
		n:        n,
		dims:     dims,
		leafSize: leafSize,
		metric:   metric,
		idx:      idx,
		nodes:    make([]kdNode, maxNodes),
		lo:       make([]float64, maxNodes*dims),
		hi:       make([]float64, maxNodes*dims),
	}
	if n > 0 {
		t.build(0, 0, n)
	}
	return t
}

// kdMaxNodes returns an upper bound on the number of nodes of a median-split
// tree over n points.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	for v := 1; v < leaves; v *= 2 {
		depth++
	}
	return (1 << (depth + 2)) - 1
}

func (t *KDTree) build(node, start, end int) {
	for node >= len(t.nodes) {
		t.nodes = append(t.nodes, kdNode{})
		t.lo = append(t.lo, make([]float64, t.dims)...)
		t.hi = append(t.hi, make([]float64, t.dims)...)
	}

	t.computeBounds(node, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[node] = kdNode{start: start, end: end, leaf: true, used: true}
		return
	}

	// Split the widest dimension at the median.
	split, spread := 0, -1.0
	for d := 0; d < t.dims; d++ {
		if s := t.hi[node*t.dims+d] - t.lo[node*t.dims+d]; s > spread {
			split, spread = d, s
		}
	}
	sub := t.idx[start:end]
	sort.Slice(sub, func(i, j int) bool {
		return t.data[sub[i]*t.dims+split] < t.data[sub[j]*t.dims+split]
	})
	mid := start + count/2

	t.nodes[node] = kdNode{start: start, end: end, used: true}
	t.build(2*node+1, start, mid)
	t.build(2*node+2, mid, end)
}

func (t *KDTree) computeBounds(node, start, end int) {
	base := node * t.dims
	for d := 0; d < t.dims; d++ {
		t.lo[base+d] = math.Inf(1)
		t.hi[base+d] = math.Inf(-1)
	}
	for _, p := range t.idx[start:end] {
		for d := 0; d < t.dims; d++ {
			v := t.data[p*t.dims+d]
			t.lo[base+d] = math.Min(t.lo[base+d], v)
			t.hi[base+d] = math.Max(t.hi[base+d], v)
		}
	}
}

// NumPoints returns the number of indexed points.
func (t *KDTree) NumPoints() int { return t.n }

// QueryKNN finds the k nearest indexed points of each row of queryData
// (flat row-major, queryRows rows). Neighbors are sorted by distance, then by
// index. Queries run on up to workers goroutines.
func (t *KDTree) QueryKNN(queryData []float64, queryRows, k, workers int) ([][]int, [][]float64) {
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

func (t *KDTree) search(node int, query []float64, k int, h *neighborHeap) {
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
// inside node's bounding box.
func (t *KDTree) minDist(node int, point []float64) float64 {
	if node >= len(t.nodes) || !t.nodes[node].used {
		return math.Inf(1)
	}
	base := node * t.dims

	var acc float64
	for j := 0; j < t.dims; j++ {
		var g float64
		if lo := t.lo[base+j]; point[j] < lo {
			g = lo - point[j]
		} else if hi := t.hi[base+j]; point[j] > hi {
			g = point[j] - hi
		}
		switch m := t.metric.(type) {
		case ChebyshevMetric:
			acc = math.Max(acc, g)
		case ManhattanMetric:
			acc += g
		case MinkowskiMetric:
			acc += math.Pow(g, m.P)
		default:
			acc += g * g
		}
	}

	switch m := t.metric.(type) {
	case EuclideanMetric:
		acc = math.Sqrt(acc)
	case MinkowskiMetric:
		acc = math.Pow(acc, 1/m.P)
	}
	return acc * (1 - boundSlack)
}

// neighbor is a candidate result of a k-NN query.
type neighbor struct {
	index int
	dist  float64
}

// neighborHeap is a max-heap on distance (ties: larger index on top) used as
// a bounded priority queue for k-NN queries.
type neighborHeap []neighbor

func (h neighborHeap) Len() int { return len(h) }
func (h neighborHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist > h[j].dist
	}
	return h[i].index > h[j].index
}
func (h neighborHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x any)   { *h = append(*h, x.(neighbor)) }
func (h *neighborHeap) Pop() any {
	old := *h
	item := old[len(old)-1]
	*h = old[:len(old)-1]
	return item
}

// offer keeps the k best candidates seen so far.
func (h *neighborHeap) offer(index int, dist float64, k int) {
	c := neighbor{index: index, dist: dist}
	if h.Len() < k {
		heap.Push(h, c)
		return
	}
	top := (*h)[0]
	if dist < top.dist || (dist == top.dist && index < top.index) {
		(*h)[0] = c
		heap.Fix(h, 0)
	}
}

// sorted drains the heap into ascending (distance, index) order.
func (h *neighborHeap) sorted() ([]int, []float64) {
	n := h.Len()
	idx := make([]int, n)
	dist := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		c := heap.Pop(h).(neighbor)
		idx[i], dist[i] = c.index, c.dist
	}
	return idx, dist
}
