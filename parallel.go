package clusterkit

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// resolveWorkers maps a Workers setting to a goroutine count;
// 0 (or negative) means runtime.NumCPU().
func resolveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

// parallelRows splits [0, n) into contiguous row ranges, one per worker, and
// runs fn on each range concurrently. Ranges never overlap, so fn may write
// to per-row output without synchronization. With workers <= 1 fn runs once
// on the calling goroutine.
func parallelRows(n, workers int, fn func(start, end int) error) error {
	if workers <= 1 || n <= 1 {
		return fn(0, n)
	}

	rowsPerWorker := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += rowsPerWorker {
		end := min(start+rowsPerWorker, n)
		g.Go(func() error { return fn(start, end) })
	}
	return g.Wait()
}

// ComputePairwiseDistancesParallel computes the full n×n distance matrix using
// multiple goroutines. data is flat row-major with n rows and dims columns.
// numWorkers controls the degree of parallelism; if <= 1, it falls back to
// single-threaded ComputePairwiseDistances.
//
// The result is bitwise identical to ComputePairwiseDistances.
func ComputePairwiseDistancesParallel(data []float64, n, dims int, metric DistanceMetric, numWorkers int) []float64 {
	if numWorkers <= 1 || n <= 1 {
		return ComputePairwiseDistances(data, n, dims, metric)
	}

	result := make([]float64, n*n)

	// Each worker owns the upper-triangle entries of its source rows and the
	// mirrored lower-triangle cells; no two workers touch the same cell.
	_ = parallelRows(n, numWorkers, func(start, end int) error {
		for i := start; i < end; i++ {
			for j := i + 1; j < n; j++ {
				d := metric.Distance(row(data, i, dims), row(data, j, dims))
				result[i*n+j] = d
				result[j*n+i] = d
			}
		}
		return nil
	})

	return result
}
