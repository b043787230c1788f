package clusterkit

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// KMeansConfig controls K-Means clustering.
// Start with [DefaultKMeansConfig] and override the fields you need.
type KMeansConfig struct {
	// K is the number of clusters. Must be in [1, n]. Default: 5.
	K int

	// Seed makes center initialization reproducible. Default: 42.
	Seed int64

	// NInit is the number of k-means++ initializations to run. The run with
	// the lowest inertia is returned. Must be >= 1. Default: 1.
	NInit int

	// MaxIter bounds the Lloyd iterations of a single run. Default: 300.
	MaxIter int

	// Tol is the relative convergence tolerance: a run stops once the summed
	// squared center shift is <= Tol times the mean per-feature variance of
	// the data. 0 means iterate until the assignment no longer changes.
	// Must be >= 0. Default: 1e-4.
	Tol float64

	// Workers controls the number of goroutines used for the assignment step
	// and for concurrent initializations. 0 means runtime.NumCPU().
	Workers int
}

// KMeansResult contains the output of K-Means clustering.
type KMeansResult struct {
	// Labels assigns each point to a cluster in [0, K).
	Labels []int

	// Inertia is the sum of squared Euclidean distances of samples to their
	// closest cluster center.
	Inertia float64

	// Centers holds the K cluster centroids.
	Centers [][]float64

	// Iterations is the number of Lloyd iterations of the winning run.
	Iterations int
}

// DefaultKMeansConfig returns a KMeansConfig with reasonable defaults.
func DefaultKMeansConfig() KMeansConfig {
	return KMeansConfig{
		K:       5,
		Seed:    42,
		NInit:   1,
		MaxIter: 300,
		Tol:     1e-4,
	}
}

func applyKMeansDefaults(cfg *KMeansConfig) {
	if cfg.NInit == 0 {
		cfg.NInit = 1
	}
	if cfg.MaxIter == 0 {
		cfg.MaxIter = 300
	}
	cfg.Workers = resolveWorkers(cfg.Workers)
}

func validateKMeansConfig(cfg *KMeansConfig, n int) error {
	if cfg.K < 1 || cfg.K > n {
		return fmt.Errorf("%w: K must be in [1, %d], got %d", ErrInvalidK, n, cfg.K)
	}
	if cfg.NInit < 1 {
		return fmt.Errorf("clusterkit: NInit must be >= 1, got %d", cfg.NInit)
	}
	if cfg.MaxIter < 1 {
		return fmt.Errorf("clusterkit: MaxIter must be >= 1, got %d", cfg.MaxIter)
	}
	if cfg.Tol < 0 || math.IsNaN(cfg.Tol) {
		return fmt.Errorf("clusterkit: Tol must be >= 0, got %f", cfg.Tol)
	}
	return nil
}

// KMeans partitions data into cfg.K clusters with Lloyd's algorithm seeded by
// greedy k-means++. Each element of data is a point; all points must have the
// same dimensionality.
func KMeans(data [][]float64, cfg KMeansConfig) (*KMeansResult, error) {
	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	return kmeansFlat(flat, n, dims, cfg)
}

func kmeansFlat(flat []float64, n, dims int, cfg KMeansConfig) (*KMeansResult, error) {
	applyKMeansDefaults(&cfg)
	if err := validateKMeansConfig(&cfg, n); err != nil {
		return nil, err
	}

	tol := absoluteTolerance(flat, n, dims, cfg.Tol)

	master := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.NInit)
	for i := range seeds {
		seeds[i] = master.Int63()
	}
	if cfg.NInit == 1 {
		// Single run: seed directly so results depend only on cfg.Seed.
		seeds[0] = cfg.Seed
	}

	runs := make([]*KMeansResult, cfg.NInit)
	if cfg.NInit == 1 || cfg.Workers <= 1 {
		for i, seed := range seeds {
			runs[i] = kmeansRun(flat, n, dims, cfg.K, cfg.MaxIter, tol, seed, cfg.Workers)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(cfg.Workers)
		for i, seed := range seeds {
			g.Go(func() error {
				runs[i] = kmeansRun(flat, n, dims, cfg.K, cfg.MaxIter, tol, seed, 1)
				return nil
			})
		}
		_ = g.Wait()
	}

	best := runs[0]
	for _, r := range runs[1:] {
		if r.Inertia < best.Inertia {
			best = r
		}
	}
	return best, nil
}

// absoluteTolerance scales the relative tolerance by the mean population
// variance of the features.
func absoluteTolerance(flat []float64, n, dims int, tol float64) float64 {
	if tol == 0 {
		return 0
	}
	col := make([]float64, n)
	var sum float64
	for d := 0; d < dims; d++ {
		for i := 0; i < n; i++ {
			col[i] = flat[i*dims+d]
		}
		sum += stat.PopVariance(col, nil)
	}
	return tol * sum / float64(dims)
}

// kmeansRun performs one k-means++ initialization followed by Lloyd
// iterations.
func kmeansRun(flat []float64, n, dims, k, maxIter int, tol float64, seed int64, workers int) *KMeansResult {
	rng := rand.New(rand.NewSource(seed))
	centers := kmeansPlusPlus(flat, n, dims, k, rng)
	next := make([]float64, len(centers))
	labels := make([]int, n)
	prev := make([]int, n)
	for i := range prev {
		prev[i] = -1
	}
	counts := make([]int, k)

	iter := 0
	for iter < maxIter {
		iter++
		assignLabels(flat, n, dims, centers, k, labels, workers)
		updateCenters(flat, n, dims, labels, k, centers, next, counts)

		var shift float64
		for c := 0; c < k; c++ {
			shift += sqEuclidean(row(centers, c, dims), row(next, c, dims))
		}
		centers, next = next, centers

		if slices.Equal(labels, prev) {
			break
		}
		copy(prev, labels)
		if shift <= tol {
			break
		}
	}

	// Labels must agree with the final centers.
	inertia := assignLabels(flat, n, dims, centers, k, labels, workers)

	out := make([][]float64, k)
	for c := range out {
		out[c] = slices.Clone(row(centers, c, dims))
	}
	return &KMeansResult{
		Labels:     labels,
		Inertia:    inertia,
		Centers:    out,
		Iterations: iter,
	}
}

// assignLabels sets labels[i] to the nearest center (lowest index on ties)
// and returns the resulting inertia.
func assignLabels(flat []float64, n, dims int, centers []float64, k int, labels []int, workers int) float64 {
	partial := make([]float64, n)
	_ = parallelRows(n, workers, func(start, end int) error {
		for i := start; i < end; i++ {
			p := row(flat, i, dims)
			best, bestDist := 0, math.Inf(1)
			for c := 0; c < k; c++ {
				if d := sqEuclidean(p, row(centers, c, dims)); d < bestDist {
					best, bestDist = c, d
				}
			}
			labels[i] = best
			partial[i] = bestDist
		}
		return nil
	})
	return floats.Sum(partial)
}

// updateCenters writes the mean of each cluster into next. Clusters that lost
// all their points are re-seeded with the points farthest from their current
// centers.
func updateCenters(flat []float64, n, dims int, labels []int, k int, centers, next []float64, counts []int) {
	clear(next)
	clear(counts)
	for i := 0; i < n; i++ {
		c := labels[i]
		floats.Add(row(next, c, dims), row(flat, i, dims))
		counts[c]++
	}

	var empty []int
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			empty = append(empty, c)
			continue
		}
		floats.Scale(1/float64(counts[c]), row(next, c, dims))
	}
	if len(empty) == 0 {
		return
	}

	slog.Debug("kmeans: relocating empty clusters", "count", len(empty))

	// Rank points by distance to their current center, farthest first.
	order := make([]int, n)
	dist := make([]float64, n)
	for i := range order {
		order[i] = i
		dist[i] = sqEuclidean(row(flat, i, dims), row(centers, labels[i], dims))
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case dist[a] > dist[b]:
			return -1
		case dist[a] < dist[b]:
			return 1
		default:
			return 0
		}
	})

	taken := 0
	for _, c := range empty {
		// Skip points whose cluster would become empty by moving them.
		for taken < n && counts[labels[order[taken]]] <= 1 {
			taken++
		}
		if taken == n {
			return
		}
		i := order[taken]
		taken++

		old := labels[i]
		p := row(flat, i, dims)
		// Remove p from its old cluster mean.
		oc := row(next, old, dims)
		floats.Scale(float64(counts[old]), oc)
		floats.Sub(oc, p)
		counts[old]--
		floats.Scale(1/float64(counts[old]), oc)

		copy(row(next, c, dims), p)
		counts[c] = 1
		labels[i] = c
	}
}
