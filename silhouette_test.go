package clusterkit

import (
	"errors"
	"slices"
	"testing"
)

func TestSilhouetteSamples_HandComputed(t *testing.T) {
	data := [][]float64{{0}, {1}, {10}, {11}}
	labels := []int{0, 0, 1, 1}

	s, err := SilhouetteSamples(data, labels, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Point 0: a = 1, b = mean(10, 11) = 10.5. Point 1: a = 1, b = mean(9, 10).
	want := []float64{9.5 / 10.5, 8.5 / 9.5, 8.5 / 9.5, 9.5 / 10.5}
	for i := range want {
		if !almostEqual(s[i], want[i], floatTol) {
			t.Errorf("s[%d] = %v, want %v", i, s[i], want[i])
		}
	}

	score, err := SilhouetteScore(data, labels, EuclideanMetric{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mean := (want[0] + want[1]) / 2; !almostEqual(score, mean, floatTol) {
		t.Errorf("score = %v, want %v", score, mean)
	}
}

func TestSilhouetteSamples_SingletonScoresZero(t *testing.T) {
	data := [][]float64{{0}, {1}, {10}}
	s, err := SilhouetteSamples(data, []int{0, 0, 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s[2] != 0 {
		t.Errorf("singleton sample = %v, want 0", s[2])
	}
	// Point 0: a = 1, b = 10.
	if !almostEqual(s[0], 0.9, floatTol) {
		t.Errorf("s[0] = %v, want 0.9", s[0])
	}
}

func TestSilhouetteSamples_ArbitraryLabelValues(t *testing.T) {
	data := [][]float64{{0}, {1}, {10}, {11}}
	a, err := SilhouetteScore(data, []int{0, 0, 1, 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := SilhouetteScore(data, []int{7, 7, -3, -3}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("label values changed the score: %v vs %v", a, b)
	}
}

func TestSilhouetteSamples_Undefined(t *testing.T) {
	data := [][]float64{{0}, {1}, {2}}
	for _, labels := range [][]int{{0, 0, 0}, {0, 1, 2}} {
		if _, err := SilhouetteSamples(data, labels, nil); !errors.Is(err, ErrSilhouetteUndefined) {
			t.Errorf("labels %v: expected ErrSilhouetteUndefined, got %v", labels, err)
		}
	}
	if _, err := SilhouetteSamples(data, []int{0, 1}, nil); err == nil {
		t.Error("expected error for label count mismatch")
	}
}

func TestSilhouettePrecomputed_MatchesSamples(t *testing.T) {
	data := randomBlobs(5, [][]float64{{0, 0}, {5, 5}, {0, 5}}, 10)
	labels := make([]int, len(data))
	for i := range labels {
		labels[i] = i / 10
	}

	for _, metric := range []DistanceMetric{EuclideanMetric{}, ManhattanMetric{}, CosineMetric{}} {
		want, err := SilhouetteScore(data, labels, metric)
		if err != nil {
			t.Fatalf("%T: unexpected error: %v", metric, err)
		}
		flat, n, dims, _ := flatten(data)
		got, err := SilhouettePrecomputed(ComputePairwiseDistances(flat, n, dims, metric), n, labels)
		if err != nil {
			t.Fatalf("%T: unexpected error: %v", metric, err)
		}
		if !almostEqual(got, want, 1e-12) {
			t.Errorf("%T: precomputed %v, want %v", metric, got, want)
		}
	}

	if _, err := SilhouettePrecomputed(make([]float64, 8), 3, []int{0, 0, 1}); err == nil {
		t.Error("expected error for non-square matrix")
	}
}

func TestSilhouetteScore_InRange(t *testing.T) {
	data := randomBlobs(9, [][]float64{{0, 0}, {1, 1}}, 20)
	labels := make([]int, len(data))
	for i := range labels {
		labels[i] = i % 3
	}
	s, err := SilhouetteSamples(data, labels, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Errorf("s[%d] = %v outside [-1, 1]", i, v)
		}
	}
}

func TestSilhouetteSamplesParallel_WorkersAgree(t *testing.T) {
	data := randomBlobs(12, [][]float64{{0, 0}, {5, 5}, {0, 5}}, 15)
	labels := make([]int, len(data))
	for i := range labels {
		labels[i] = i / 15
	}
	want, err := SilhouetteSamplesParallel(data, labels, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, workers := range []int{0, 2, 5} {
		got, err := SilhouetteSamplesParallel(data, labels, nil, workers)
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}
		if !slices.Equal(got, want) {
			t.Errorf("workers=%d: samples differ from the single-worker run", workers)
		}
	}
}
