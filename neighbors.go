package clusterkit

import (
	"fmt"
	"slices"
)

// NeighborAlgorithm selects the k-nearest-neighbor search strategy.
type NeighborAlgorithm string

const (
	NeighborsAuto     NeighborAlgorithm = "auto"
	NeighborsBrute    NeighborAlgorithm = "brute"
	NeighborsKDTree   NeighborAlgorithm = "kd_tree"
	NeighborsBallTree NeighborAlgorithm = "ball_tree"
)

// kdTreeMaxDims is the dimensionality above which auto selection prefers
// brute force; KD-tree pruning degrades quickly in high dimensions.
const kdTreeMaxDims = 60

// DefaultKDistanceK is the neighbor rank used by KDistances when k is 0.
const DefaultKDistanceK = 4

// NeighborsConfig controls k-nearest-neighbor queries.
// Start with [DefaultNeighborsConfig] and override the fields you need.
type NeighborsConfig struct {
	// Metric is the distance function. Default: EuclideanMetric.
	Metric DistanceMetric

	// Algorithm is "auto", "brute", "kd_tree" or "ball_tree". auto uses the
	// KD-tree for axis-decomposable metrics on data with at most 60 features,
	// the ball tree for other true metrics and brute force otherwise.
	// Default: "auto".
	Algorithm NeighborAlgorithm

	// LeafSize is the maximum number of points in a KD-tree leaf. Default: 30.
	LeafSize int

	// Workers bounds the number of goroutines answering queries.
	// 0 means runtime.NumCPU().
	Workers int
}

// Neighbors holds, for each point, its nearest neighbors sorted by ascending
// distance (ties by index).
type Neighbors struct {
	Indices   [][]int
	Distances [][]float64
}

// DefaultNeighborsConfig returns a NeighborsConfig with reasonable defaults.
func DefaultNeighborsConfig() NeighborsConfig {
	return NeighborsConfig{
		Metric:    EuclideanMetric{},
		Algorithm: NeighborsAuto,
		LeafSize:  30,
	}
}

func applyNeighborsDefaults(cfg *NeighborsConfig) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = NeighborsAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 30
	}
	cfg.Workers = resolveWorkers(cfg.Workers)
}

// selectNeighborAlgorithm resolves NeighborsAuto and validates that a forced
// KD-tree is compatible with the metric.
func selectNeighborAlgorithm(cfg NeighborsConfig, dims int) (NeighborAlgorithm, error) {
	switch cfg.Algorithm {
	case NeighborsAuto:
		switch {
		case kdTreeValidMetric(cfg.Metric) && dims <= kdTreeMaxDims:
			return NeighborsKDTree, nil
		case ballTreeValidMetric(cfg.Metric):
			return NeighborsBallTree, nil
		default:
			return NeighborsBrute, nil
		}
	case NeighborsKDTree:
		if !kdTreeValidMetric(cfg.Metric) {
			return "", fmt.Errorf("%w: metric %T cannot be used with a KD-tree", ErrMetricNotSupported, cfg.Metric)
		}
		return NeighborsKDTree, nil
	case NeighborsBallTree:
		if !ballTreeValidMetric(cfg.Metric) {
			return "", fmt.Errorf("%w: metric %T cannot be used with a ball tree", ErrMetricNotSupported, cfg.Metric)
		}
		return NeighborsBallTree, nil
	case NeighborsBrute:
		return NeighborsBrute, nil
	default:
		return "", fmt.Errorf("clusterkit: invalid neighbor algorithm %q", cfg.Algorithm)
	}
}

// KNearest finds the k nearest neighbors of every point of data among the
// points of data. A point is a neighbor of itself, so with distinct points
// the first neighbor is always the point itself at distance 0.
func KNearest(data [][]float64, k int, cfg NeighborsConfig) (*Neighbors, error) {
	applyNeighborsDefaults(&cfg)
	if cfg.LeafSize < 1 {
		return nil, fmt.Errorf("clusterkit: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}

	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: k must be in [1, %d], got %d", ErrInvalidK, n, k)
	}

	algo, err := selectNeighborAlgorithm(cfg, dims)
	if err != nil {
		return nil, err
	}

	var nb Neighbors
	switch algo {
	case NeighborsKDTree:
		tree := NewKDTree(flat, n, dims, cfg.Metric, cfg.LeafSize)
		nb.Indices, nb.Distances = tree.QueryKNN(flat, n, k, cfg.Workers)
	case NeighborsBallTree:
		tree := NewBallTree(flat, n, dims, cfg.Metric, cfg.LeafSize)
		nb.Indices, nb.Distances = tree.QueryKNN(flat, n, k, cfg.Workers)
	default:
		nb.Indices, nb.Distances = bruteKNN(flat, n, dims, k, cfg.Metric, cfg.Workers)
	}
	return &nb, nil
}

// bruteKNN answers every query by scanning all points.
func bruteKNN(flat []float64, n, dims, k int, metric DistanceMetric, workers int) ([][]int, [][]float64) {
	indices := make([][]int, n)
	distances := make([][]float64, n)
	_ = parallelRows(n, workers, func(start, end int) error {
		for q := start; q < end; q++ {
			query := row(flat, q, dims)
			h := make(neighborHeap, 0, k)
			for p := 0; p < n; p++ {
				h.offer(p, metric.Distance(query, row(flat, p, dims)), k)
			}
			indices[q], distances[q] = h.sorted()
		}
		return nil
	})
	return indices, distances
}

// KDistances returns, in ascending order, the distance from every point to
// its k-th nearest neighbor, counting the point itself as the first. A knee
// in this curve is a common choice for the DBSCAN eps parameter, with k
// around twice DBSCAN's min_samples. k of 0 means 4; a nil metric means
// CosineMetric.
func KDistances(data [][]float64, k int, metric DistanceMetric) ([]float64, error) {
	if metric == nil {
		metric = CosineMetric{}
	}
	cfg := DefaultNeighborsConfig()
	cfg.Metric = metric
	return KDistancesConfig(data, k, cfg)
}

// KDistancesConfig is KDistances with full control over the neighbor search.
// k of 0 means 4; a nil cfg.Metric means EuclideanMetric.
func KDistancesConfig(data [][]float64, k int, cfg NeighborsConfig) ([]float64, error) {
	if k == 0 {
		k = DefaultKDistanceK
	}

	nb, err := KNearest(data, k, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(nb.Distances))
	for i, d := range nb.Distances {
		out[i] = d[k-1]
	}
	slices.Sort(out)
	return out, nil
}
