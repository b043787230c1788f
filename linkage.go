package clusterkit

import (
	"fmt"
	"math"
	"strings"
)

// LinkageMethod selects how the distance between two clusters is derived
// from the distances between their members.
type LinkageMethod string

const (
	LinkageSingle   LinkageMethod = "single"
	LinkageComplete LinkageMethod = "complete"
	LinkageAverage  LinkageMethod = "average"
	LinkageWeighted LinkageMethod = "weighted"
	LinkageWard     LinkageMethod = "ward"
	LinkageCentroid LinkageMethod = "centroid"
	LinkageMedian   LinkageMethod = "median"
)

// ParseLinkageMethod resolves a method name (case-insensitive). An empty
// name selects ward.
func ParseLinkageMethod(name string) (LinkageMethod, error) {
	m := LinkageMethod(strings.ToLower(strings.TrimSpace(name)))
	if m == "" {
		return LinkageWard, nil
	}
	switch m {
	case LinkageSingle, LinkageComplete, LinkageAverage, LinkageWeighted,
		LinkageWard, LinkageCentroid, LinkageMedian:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLinkage, name)
	}
}

// requiresEuclidean reports whether the method's update rule is only
// meaningful for Euclidean distances.
func (m LinkageMethod) requiresEuclidean() bool {
	return m == LinkageWard || m == LinkageCentroid || m == LinkageMedian
}

// reducible reports whether the method satisfies the reducibility property
// needed by the nearest-neighbor chain algorithm.
func (m LinkageMethod) reducible() bool {
	return m != LinkageCentroid && m != LinkageMedian
}

// Linkage performs agglomerative clustering of data and returns the linkage
// matrix in scipy format: row i is [left, right, distance, size] describing
// the i-th merge. IDs below n are original points; the cluster formed by row
// i has ID n+i. ward, centroid and median require the Euclidean metric; a nil
// metric means Euclidean.
func Linkage(data [][]float64, method LinkageMethod, metric DistanceMetric) ([][4]float64, error) {
	return LinkageParallel(data, method, metric, 0)
}

// LinkageParallel is Linkage with the pairwise distance pass spread over up
// to workers goroutines. 0 means runtime.NumCPU().
func LinkageParallel(data [][]float64, method LinkageMethod, metric DistanceMetric, workers int) ([][4]float64, error) {
	method, err := ParseLinkageMethod(string(method))
	if err != nil {
		return nil, err
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	if method.requiresEuclidean() && !isEuclidean(metric) {
		return nil, fmt.Errorf("%w: %s linkage requires the Euclidean metric, got %T",
			ErrMetricNotSupported, method, metric)
	}

	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: linkage needs at least 2 observations, got %d", ErrTooFewSamples, n)
	}

	dist := ComputePairwiseDistancesParallel(flat, n, dims, metric, resolveWorkers(workers))
	return linkageFromMatrix(dist, n, method), nil
}

// LinkagePrecomputed performs agglomerative clustering on a precomputed
// distance matrix. dist is flat n*n row-major and is not modified.
func LinkagePrecomputed(dist []float64, n int, method LinkageMethod) ([][4]float64, error) {
	method, err := ParseLinkageMethod(string(method))
	if err != nil {
		return nil, err
	}
	if len(dist) != n*n {
		return nil, fmt.Errorf("clusterkit: dist length %d does not match n*n = %d (n=%d)", len(dist), n*n, n)
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: linkage needs at least 2 observations, got %d", ErrTooFewSamples, n)
	}
	return linkageFromMatrix(dist, n, method), nil
}

func linkageFromMatrix(dist []float64, n int, method LinkageMethod) [][4]float64 {
	switch {
	case method == LinkageSingle:
		edges := primMST(dist, n)
		sortEdges(edges)
		return relabel(edges, n)
	case method.reducible():
		edges := nnChain(dist, n, method)
		sortEdges(edges)
		return relabel(edges, n)
	default:
		// Centroid and median merges can produce inversions, so the merge
		// order is kept as is.
		return relabel(pairwiseMinimum(dist, n, method), n)
	}
}

// nnChain builds the merge sequence with the nearest-neighbor chain
// algorithm. Merges come out in discovery order, not sorted by distance.
// The merged cluster takes the slot of its larger representative.
func nnChain(dist []float64, n int, method LinkageMethod) [][3]float64 {
	d := make([]float64, len(dist))
	copy(d, dist)
	size := make([]int, n)
	for i := range size {
		size[i] = 1
	}

	edges := make([][3]float64, 0, n-1)
	chain := make([]int, 0, n)

	for len(edges) < n-1 {
		if len(chain) == 0 {
			for i := 0; i < n; i++ {
				if size[i] > 0 {
					chain = append(chain, i)
					break
				}
			}
		}

		var x, y int
		var current float64
		for {
			x = chain[len(chain)-1]
			current = math.Inf(1)
			y = -1
			if len(chain) > 1 {
				y = chain[len(chain)-2]
				current = d[x*n+y]
			}
			for i := 0; i < n; i++ {
				if size[i] == 0 || i == x {
					continue
				}
				if v := d[x*n+i]; v < current || y == -1 {
					current, y = v, i
				}
			}
			if len(chain) > 1 && y == chain[len(chain)-2] {
				break
			}
			chain = append(chain, y)
		}

		chain = chain[:len(chain)-2]
		if x > y {
			x, y = y, x
		}
		edges = append(edges, [3]float64{float64(x), float64(y), current})
		mergeInto(d, n, size, x, y, current, method)
	}

	return edges
}

// pairwiseMinimum repeatedly merges the globally closest pair of active
// clusters. It is O(n³) but valid for every Lance–Williams method.
func pairwiseMinimum(dist []float64, n int, method LinkageMethod) [][3]float64 {
	d := make([]float64, len(dist))
	copy(d, dist)
	size := make([]int, n)
	for i := range size {
		size[i] = 1
	}

	edges := make([][3]float64, 0, n-1)
	for len(edges) < n-1 {
		bx, by := -1, -1
		current := math.Inf(1)
		for i := 0; i < n; i++ {
			if size[i] == 0 {
				continue
			}
			for j := i + 1; j < n; j++ {
				if size[j] == 0 {
					continue
				}
				if v := d[i*n+j]; bx == -1 || v < current {
					bx, by, current = i, j, v
				}
			}
		}
		edges = append(edges, [3]float64{float64(bx), float64(by), current})
		mergeInto(d, n, size, bx, by, current, method)
	}
	return edges
}

// mergeInto merges cluster x into slot y (x < y), updating the distances from
// y to every other active cluster with the Lance–Williams rule of method.
func mergeInto(d []float64, n int, size []int, x, y int, dxy float64, method LinkageMethod) {
	nx, ny := size[x], size[y]
	size[x] = 0
	size[y] = nx + ny
	for i := 0; i < n; i++ {
		ni := size[i]
		if ni == 0 || i == y {
			continue
		}
		v := lanceWilliams(method, d[i*n+x], d[i*n+y], dxy, float64(nx), float64(ny), float64(ni))
		d[i*n+y] = v
		d[y*n+i] = v
	}
}

// lanceWilliams returns the distance between cluster i and the union of
// clusters x and y, given the distances d(i,x), d(i,y), d(x,y) and the sizes.
func lanceWilliams(method LinkageMethod, dxi, dyi, dxy, nx, ny, ni float64) float64 {
	switch method {
	case LinkageSingle:
		return math.Min(dxi, dyi)
	case LinkageComplete:
		return math.Max(dxi, dyi)
	case LinkageAverage:
		return (nx*dxi + ny*dyi) / (nx + ny)
	case LinkageWeighted:
		return 0.5 * (dxi + dyi)
	case LinkageWard:
		t := 1 / (nx + ny + ni)
		return safeSqrt((ni+nx)*t*dxi*dxi + (ni+ny)*t*dyi*dyi - ni*t*dxy*dxy)
	case LinkageCentroid:
		nxy := nx + ny
		return safeSqrt((nx*dxi*dxi + ny*dyi*dyi - nx*ny*dxy*dxy/nxy) / nxy)
	case LinkageMedian:
		return safeSqrt(0.5*(dxi*dxi+dyi*dyi) - 0.25*dxy*dxy)
	default:
		panic("clusterkit: unhandled linkage method " + string(method))
	}
}

// safeSqrt clamps small negative radicands caused by rounding to zero.
func safeSqrt(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}
