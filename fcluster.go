package clusterkit

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Criterion selects how FlatClusters interprets its threshold.
type Criterion string

const (
	// CriterionMaxClust forms at most t flat clusters, using the smallest
	// cut height that achieves it.
	CriterionMaxClust Criterion = "maxclust"
	// CriterionDistance groups points whose cophenetic distance is <= t.
	CriterionDistance Criterion = "distance"
)

// FlatClusters cuts the hierarchy described by the linkage matrix z into flat
// clusters. Labels are 0-based and numbered in left-to-right order of the
// dendrogram.
//
// Cutting uses the largest merge distance inside each subtree, so
// non-monotonic linkages (centroid, median) never split a cluster below a
// merge that happened at a greater height.
func FlatClusters(z [][4]float64, t float64, criterion Criterion) ([]int, error) {
	if err := validateLinkage(z); err != nil {
		return nil, err
	}
	n := len(z) + 1
	md := maxDists(z)

	switch criterion {
	case CriterionDistance:
		return cutTree(z, md, t), nil
	case CriterionMaxClust:
		k := int(t)
		if k < 1 || float64(k) != t {
			return nil, fmt.Errorf("%w: maxclust needs a positive integer, got %v", ErrInvalidK, t)
		}
		if k >= n {
			return cutTree(z, md, math.Inf(-1)), nil
		}
		thresholds := slices.Clone(md)
		slices.Sort(thresholds)
		// countClusters is non-increasing in the threshold, so the first threshold
		// reaching <= k clusters is the smallest valid cut.
		i := sort.Search(len(thresholds), func(i int) bool {
			return countClusters(z, md, thresholds[i]) <= k
		})
		return cutTree(z, md, thresholds[min(i, len(thresholds)-1)]), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCriterion, criterion)
	}
}

// validateLinkage checks the shape and cluster references of a linkage matrix.
func validateLinkage(z [][4]float64) error {
	if len(z) == 0 {
		return fmt.Errorf("%w: no merges", ErrInvalidLinkage)
	}
	n := len(z) + 1
	for i, r := range z {
		for _, c := range r[:2] {
			if c < 0 || c != math.Trunc(c) || int(c) >= n+i {
				return fmt.Errorf("%w: row %d references cluster %v", ErrInvalidLinkage, i, c)
			}
		}
		if r[0] == r[1] {
			return fmt.Errorf("%w: row %d merges cluster %v with itself", ErrInvalidLinkage, i, r[0])
		}
		if r[2] < 0 || math.IsNaN(r[2]) {
			return fmt.Errorf("%w: row %d has distance %v", ErrInvalidLinkage, i, r[2])
		}
	}
	return nil
}

// maxDists returns, for each merge row, the largest merge distance in the
// subtree rooted at that row.
func maxDists(z [][4]float64) []float64 {
	n := len(z) + 1
	md := make([]float64, len(z))
	for i, r := range z {
		m := r[2]
		for _, c := range r[:2] {
			if id := int(c); id >= n {
				m = math.Max(m, md[id-n])
			}
		}
		md[i] = m
	}
	return md
}

// cutTree walks the dendrogram from the root, left child first, and opens a
// new flat cluster at the highest node whose subtree max distance is <= t.
// Leaves reached outside such a node form singleton clusters.
func cutTree(z [][4]float64, md []float64, t float64) []int {
	n := len(z) + 1
	labels := make([]int, n)
	next := 0

	type frame struct {
		node  int
		label int // -1 while no enclosing flat cluster has been opened
	}
	stack := []frame{{node: 2*n - 2, label: -1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node < n {
			if f.label < 0 {
				f.label = next
				next++
			}
			labels[f.node] = f.label
			continue
		}

		label := f.label
		if label < 0 && md[f.node-n] <= t {
			label = next
			next++
		}
		r := z[f.node-n]
		// Push right first so the left subtree is numbered first.
		stack = append(stack,
			frame{node: int(r[1]), label: label},
			frame{node: int(r[0]), label: label},
		)
	}
	return labels
}

// countClusters returns the number of flat clusters cutTree would form at t.
func countClusters(z [][4]float64, md []float64, t float64) int {
	n := len(z) + 1
	count := 0
	stack := []int{2*n - 2}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node < n || md[node-n] <= t {
			count++
			continue
		}
		r := z[node-n]
		stack = append(stack, int(r[0]), int(r[1]))
	}
	return count
}
