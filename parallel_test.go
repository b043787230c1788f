package clusterkit

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestComputePairwiseDistancesParallel_BitwiseIdentical(t *testing.T) {
	data := []float64{
		0, 0,
		3, 0,
		0, 4,
		1, 1,
		5, 5,
	}
	n, dims := 5, 2

	for _, metric := range []DistanceMetric{EuclideanMetric{}, ManhattanMetric{}, CosineMetric{}} {
		sequential := ComputePairwiseDistances(data, n, dims, metric)
		for _, workers := range []int{1, 2, 4, 16} {
			parallel := ComputePairwiseDistancesParallel(data, n, dims, metric, workers)
			if len(parallel) != len(sequential) {
				t.Fatalf("%T workers=%d: length mismatch %d != %d", metric, workers, len(parallel), len(sequential))
			}
			for i := range sequential {
				if parallel[i] != sequential[i] {
					t.Errorf("%T workers=%d: result[%d] = %v, expected %v (bitwise)",
						metric, workers, i, parallel[i], sequential[i])
				}
			}
		}
	}
}

func TestParallelRows_CoversEveryRowOnce(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100} {
		for _, workers := range []int{1, 3, 8, 200} {
			hits := make([]int32, n)
			err := parallelRows(n, workers, func(start, end int) error {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("n=%d workers=%d: unexpected error %v", n, workers, err)
			}
			for i, h := range hits {
				if h != 1 {
					t.Errorf("n=%d workers=%d: row %d visited %d times", n, workers, i, h)
				}
			}
		}
	}
}

func TestParallelRows_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := parallelRows(10, 4, func(start, end int) error {
		if start == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestResolveWorkers(t *testing.T) {
	if resolveWorkers(3) != 3 {
		t.Error("explicit worker count must be kept")
	}
	if resolveWorkers(0) < 1 || resolveWorkers(-1) < 1 {
		t.Error("non-positive worker count must resolve to at least one CPU")
	}
}
