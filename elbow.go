package clusterkit

import "fmt"

// DefaultMaxK is the largest k swept by the model-selection helpers when the
// caller passes 0.
const DefaultMaxK = 10

// ElbowPoint is the K-Means inertia obtained for one value of k.
type ElbowPoint struct {
	K       int     `json:"k" yaml:"k"`
	Inertia float64 `json:"inertia" yaml:"inertia"`
}

// ElbowMethod runs K-Means for every k in [1, maxK] and returns the inertia of
// each run. The "elbow" of the resulting curve, where inertia stops dropping
// quickly, suggests a good k. cfg.K is ignored; the remaining fields apply to
// every run. maxK of 0 means DefaultMaxK.
func ElbowMethod(data [][]float64, maxK int, cfg KMeansConfig) ([]ElbowPoint, error) {
	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	if maxK == 0 {
		maxK = DefaultMaxK
	}
	if maxK < 1 || maxK > n {
		return nil, fmt.Errorf("%w: maxK must be in [1, %d], got %d", ErrInvalidK, n, maxK)
	}

	points := make([]ElbowPoint, 0, maxK)
	for k := 1; k <= maxK; k++ {
		cfg.K = k
		res, err := kmeansFlat(flat, n, dims, cfg)
		if err != nil {
			return nil, fmt.Errorf("clusterkit: kmeans k=%d: %w", k, err)
		}
		points = append(points, ElbowPoint{K: k, Inertia: res.Inertia})
	}
	return points, nil
}

// ElbowIndex locates the elbow of a non-decreasing sequence of merge
// distances: it returns argmax(diff(distances)) + 1, the position right after
// the largest jump. Ties resolve to the first maximum. At least two distances
// are required.
func ElbowIndex(distances []float64) (int, error) {
	if len(distances) < 2 {
		return 0, fmt.Errorf("%w: elbow needs at least 2 merge distances, got %d", ErrTooFewSamples, len(distances))
	}
	best := 0
	bestDiff := distances[1] - distances[0]
	for i := 1; i < len(distances)-1; i++ {
		if d := distances[i+1] - distances[i]; d > bestDiff {
			best, bestDiff = i, d
		}
	}
	return best + 1, nil
}
