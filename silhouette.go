package clusterkit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SilhouetteSamples computes the silhouette coefficient of every point:
// s = (b - a) / max(a, b), where a is the mean distance to the other members
// of its own cluster and b the mean distance to the members of the nearest
// other cluster. Points that are alone in their cluster score 0.
//
// The coefficient is only defined for 2 <= number of distinct labels <= n-1;
// outside that range ErrSilhouetteUndefined is returned.
func SilhouetteSamples(data [][]float64, labels []int, metric DistanceMetric) ([]float64, error) {
	return SilhouetteSamplesParallel(data, labels, metric, 0)
}

// SilhouetteSamplesParallel is SilhouetteSamples on up to workers goroutines.
// 0 means runtime.NumCPU().
func SilhouetteSamplesParallel(data [][]float64, labels []int, metric DistanceMetric, workers int) ([]float64, error) {
	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	if len(labels) != n {
		return nil, fmt.Errorf("clusterkit: got %d labels for %d points", len(labels), n)
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	workers = resolveWorkers(workers)
	dist := ComputePairwiseDistancesParallel(flat, n, dims, metric, workers)
	return silhouetteFromMatrix(dist, n, labels, workers)
}

// SilhouetteScore returns the mean silhouette coefficient over all points.
func SilhouetteScore(data [][]float64, labels []int, metric DistanceMetric) (float64, error) {
	s, err := SilhouetteSamples(data, labels, metric)
	if err != nil {
		return 0, err
	}
	return stat.Mean(s, nil), nil
}

// SilhouettePrecomputed returns the mean silhouette coefficient for a
// precomputed distance matrix. dist is flat n*n row-major.
func SilhouettePrecomputed(dist []float64, n int, labels []int) (float64, error) {
	return silhouettePrecomputed(dist, n, labels, resolveWorkers(0))
}

func silhouettePrecomputed(dist []float64, n int, labels []int, workers int) (float64, error) {
	if len(dist) != n*n {
		return 0, fmt.Errorf("clusterkit: dist length %d does not match n*n = %d (n=%d)", len(dist), n*n, n)
	}
	if len(labels) != n {
		return 0, fmt.Errorf("clusterkit: got %d labels for %d points", len(labels), n)
	}
	s, err := silhouetteFromMatrix(dist, n, labels, workers)
	if err != nil {
		return 0, err
	}
	return stat.Mean(s, nil), nil
}

func silhouetteFromMatrix(dist []float64, n int, labels []int, workers int) ([]float64, error) {
	// Map arbitrary label values onto dense cluster indices.
	index := make(map[int]int)
	dense := make([]int, n)
	for i, l := range labels {
		c, ok := index[l]
		if !ok {
			c = len(index)
			index[l] = c
		}
		dense[i] = c
	}
	nl := len(index)
	if nl < 2 || nl > n-1 {
		return nil, fmt.Errorf("%w: got %d distinct labels for %d points, need 2 <= labels <= n-1",
			ErrSilhouetteUndefined, nl, n)
	}

	counts := make([]int, nl)
	for _, c := range dense {
		counts[c]++
	}

	samples := make([]float64, n)
	_ = parallelRows(n, workers, func(start, end int) error {
		sums := make([]float64, nl)
		for i := start; i < end; i++ {
			clear(sums)
			for j := 0; j < n; j++ {
				sums[dense[j]] += dist[i*n+j]
			}

			own := dense[i]
			if counts[own] < 2 {
				samples[i] = 0
				continue
			}
			a := sums[own] / float64(counts[own]-1)
			b := math.Inf(1)
			for c := 0; c < nl; c++ {
				if c == own {
					continue
				}
				b = math.Min(b, sums[c]/float64(counts[c]))
			}

			denom := math.Max(a, b)
			if denom == 0 {
				samples[i] = 0
				continue
			}
			samples[i] = (b - a) / denom
		}
		return nil
	})

	return samples, nil
}
