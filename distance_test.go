package clusterkit

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const floatTol = 1e-10

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestEuclideanDistance_HandComputed(t *testing.T) {
	m := EuclideanMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	// sqrt(9 + 16 + 0) = 5
	if d := m.Distance(a, b); !almostEqual(d, 5, floatTol) {
		t.Errorf("expected 5, got %v", d)
	}
	if d := m.Distance(a, a); d != 0 {
		t.Errorf("expected 0 for identical vectors, got %v", d)
	}
}

func TestSqEuclideanDistance(t *testing.T) {
	d := SqEuclideanMetric{}.Distance([]float64{1, 2, 3}, []float64{4, 6, 3})
	if !almostEqual(d, 25, floatTol) {
		t.Errorf("expected 25, got %v", d)
	}
}

func TestManhattanDistance(t *testing.T) {
	d := ManhattanMetric{}.Distance([]float64{1, 2, 3}, []float64{4, 0, 3})
	if !almostEqual(d, 5, floatTol) {
		t.Errorf("expected 5, got %v", d)
	}
}

func TestChebyshevDistance(t *testing.T) {
	d := ChebyshevMetric{}.Distance([]float64{1, 2, 3}, []float64{4, 0, 3})
	if !almostEqual(d, 3, floatTol) {
		t.Errorf("expected 3, got %v", d)
	}
}

func TestMinkowskiDistance(t *testing.T) {
	a := []float64{0, 0}
	b := []float64{3, 4}
	if d := (MinkowskiMetric{P: 2}).Distance(a, b); !almostEqual(d, 5, floatTol) {
		t.Errorf("P=2: expected 5, got %v", d)
	}
	if d := (MinkowskiMetric{P: 1}).Distance(a, b); !almostEqual(d, 7, floatTol) {
		t.Errorf("P=1: expected 7, got %v", d)
	}
	// (27 + 64)^(1/3)
	if d := (MinkowskiMetric{P: 3}).Distance(a, b); !almostEqual(d, math.Cbrt(91), 1e-9) {
		t.Errorf("P=3: expected %v, got %v", math.Cbrt(91), d)
	}
}

func TestMinkowskiDistance_PanicsBelowOne(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for P < 1")
		}
	}()
	MinkowskiMetric{P: 0.5}.Distance([]float64{0}, []float64{1})
}

func TestCosineDistance(t *testing.T) {
	m := CosineMetric{}
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"parallel", []float64{1, 2}, []float64{2, 4}, 0},
		{"orthogonal", []float64{1, 0}, []float64{0, 3}, 1},
		{"opposite", []float64{1, 1}, []float64{-1, -1}, 2},
		{"diagonal", []float64{1, 0}, []float64{1, 1}, 1 - 1/math.Sqrt2},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := m.Distance(tt.a, tt.b); !almostEqual(d, tt.want, 1e-12) {
				t.Errorf("expected %v, got %v", tt.want, d)
			}
		})
	}
}

func TestDistanceFunc(t *testing.T) {
	var m DistanceMetric = DistanceFunc(func(a, b []float64) float64 { return 42 })
	if d := m.Distance(nil, nil); d != 42 {
		t.Errorf("expected 42, got %v", d)
	}
}

func TestMetricByName(t *testing.T) {
	tests := []struct {
		name string
		want DistanceMetric
	}{
		{"euclidean", EuclideanMetric{}},
		{"L2", EuclideanMetric{}},
		{"sqeuclidean", SqEuclideanMetric{}},
		{"manhattan", ManhattanMetric{}},
		{"cityblock", ManhattanMetric{}},
		{"l1", ManhattanMetric{}},
		{" cosine ", CosineMetric{}},
		{"chebyshev", ChebyshevMetric{}},
		{"minkowski", MinkowskiMetric{P: 2}},
	}
	for _, tt := range tests {
		got, err := MetricByName(tt.name)
		if err != nil {
			t.Errorf("MetricByName(%q): unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("MetricByName(%q) = %#v, want %#v", tt.name, got, tt.want)
		}
	}

	if _, err := MetricByName("hamming"); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("expected ErrUnknownMetric, got %v", err)
	}
}

func TestIsEuclidean(t *testing.T) {
	if !isEuclidean(EuclideanMetric{}) || !isEuclidean(&EuclideanMetric{}) || !isEuclidean(MinkowskiMetric{P: 2}) {
		t.Error("expected Euclidean metrics to be recognized")
	}
	if isEuclidean(MinkowskiMetric{P: 3}) || isEuclidean(CosineMetric{}) || isEuclidean(SqEuclideanMetric{}) {
		t.Error("expected non-Euclidean metrics to be rejected")
	}
}

func TestComputePairwiseDistances(t *testing.T) {
	data := []float64{
		0, 0,
		3, 4,
		6, 8,
	}
	d := ComputePairwiseDistances(data, 3, 2, EuclideanMetric{})
	want := []float64{
		0, 5, 10,
		5, 0, 5,
		10, 5, 0,
	}
	for i := range want {
		if !almostEqual(d[i], want[i], floatTol) {
			t.Errorf("d[%d] = %v, want %v", i, d[i], want[i])
		}
	}
}

func TestFlatten(t *testing.T) {
	flat, n, dims, err := flatten([][]float64{{1, 2}, {3, 4}, {5, 6}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 || dims != 2 {
		t.Fatalf("shape = (%d, %d), want (3, 2)", n, dims)
	}
	if got := row(flat, 2, dims); got[0] != 5 || got[1] != 6 {
		t.Errorf("row 2 = %v, want [5 6]", got)
	}

	if _, _, _, err := flatten(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("nil data: expected ErrEmptyData, got %v", err)
	}
	if _, _, _, err := flatten([][]float64{{}, {}}); !errors.Is(err, ErrEmptyData) {
		t.Errorf("zero features: expected ErrEmptyData, got %v", err)
	}
	if _, _, _, err := flatten([][]float64{{1, 2}, {3}}); !errors.Is(err, ErrRaggedData) {
		t.Errorf("ragged rows: expected ErrRaggedData, got %v", err)
	}
}

func TestFromDense(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	got := FromDense(m)
	if len(got) != 2 || len(got[0]) != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", len(got), len(got[0]))
	}
	if got[1][0] != 4 || got[1][2] != 6 {
		t.Errorf("row 1 = %v, want [4 5 6]", got[1])
	}

	// The result must not alias the matrix.
	got[0][0] = 100
	if m.At(0, 0) != 1 {
		t.Error("FromDense result aliases the source matrix")
	}
}
