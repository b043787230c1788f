package clusterkit

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric measures the dissimilarity between two points of equal
// dimensionality.
type DistanceMetric interface {
	Distance(a, b []float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 2) }

// SqEuclideanMetric computes the squared Euclidean distance.
type SqEuclideanMetric struct{}

func (SqEuclideanMetric) Distance(a, b []float64) float64 { return sqEuclidean(a, b) }

func sqEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 1) }

// CosineMetric computes the cosine distance: 1 - cosine_similarity.
// A zero vector has no direction and is treated as orthogonal to everything
// (distance 1). Results are clipped to [0, 2] to absorb rounding error.
type CosineMetric struct{}

func (CosineMetric) Distance(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 1
	}
	d := 1 - floats.Dot(a, b)/(na*nb)
	return math.Min(math.Max(d, 0), 2)
}

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }

// MinkowskiMetric computes the Minkowski distance parameterized by P.
// P must be >= 1. Panics if P < 1.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	if m.P < 1 {
		panic("MinkowskiMetric: P must be >= 1")
	}
	return floats.Distance(a, b, m.P)
}

// MetricByName returns the built-in metric registered under name.
// Names follow scipy/scikit-learn: euclidean (l2), sqeuclidean,
// manhattan (cityblock, l1), cosine, chebyshev and minkowski (P=2).
func MetricByName(name string) (DistanceMetric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euclidean", "l2":
		return EuclideanMetric{}, nil
	case "sqeuclidean":
		return SqEuclideanMetric{}, nil
	case "manhattan", "cityblock", "l1":
		return ManhattanMetric{}, nil
	case "cosine":
		return CosineMetric{}, nil
	case "chebyshev":
		return ChebyshevMetric{}, nil
	case "minkowski":
		return MinkowskiMetric{P: 2}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}

// isEuclidean reports whether m computes plain L2 distances.
func isEuclidean(m DistanceMetric) bool {
	switch v := m.(type) {
	case EuclideanMetric, *EuclideanMetric:
		return true
	case MinkowskiMetric:
		return v.P == 2
	default:
		return false
	}
}

// ComputePairwiseDistances computes the full n*n distance matrix.
// data is flat row-major with n rows and dims columns.
// Returns flat []float64 of length n*n.
func ComputePairwiseDistances(data []float64, n, dims int, metric DistanceMetric) []float64 {
	result := make([]float64, n*n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := metric.Distance(row(data, i, dims), row(data, j, dims))
			result[i*n+j] = d
			result[j*n+i] = d
		}
	}

	return result
}
