package clusterkit

// unionFind is a disjoint-set forest over 2*n - 1 elements: the n original
// points followed by the n-1 clusters created by successive merges. Every
// merge creates a fresh root whose ID is the next unused label, which is the
// cluster numbering used by linkage matrices.
type unionFind struct {
	parent    []int
	size      []int
	nextLabel int
}

func newUnionFind(n int) *unionFind {
	total := max(2*n-1, 1)
	uf := &unionFind{
		parent:    make([]int, total),
		size:      make([]int, total),
		nextLabel: n,
	}
	for i := range uf.parent {
		uf.parent[i] = -1
	}
	for i := 0; i < n; i++ {
		uf.size[i] = 1
	}
	return uf
}

// find returns the root of x, compressing the path on the way back.
func (uf *unionFind) find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// merge joins two roots under a new cluster label and returns the size of the
// merged cluster.
func (uf *unionFind) merge(a, b int) int {
	label := uf.nextLabel
	uf.nextLabel++
	uf.parent[a] = label
	uf.parent[b] = label
	uf.size[label] = uf.size[a] + uf.size[b]
	return uf.size[label]
}
