package clusterkit

import "fmt"

// SilhouettePoint is the mean silhouette score obtained for one value of k.
type SilhouettePoint struct {
	K     int     `json:"k" yaml:"k"`
	Score float64 `json:"score" yaml:"score"`
}

// SilhouetteMethod runs K-Means for every k in [2, maxK] and scores each
// labelling with the mean Euclidean silhouette coefficient. Higher is better.
// The score is undefined for k=1 and k=n, so maxK must lie in [2, n-1].
// cfg.K is ignored. maxK of 0 means DefaultMaxK.
func SilhouetteMethod(data [][]float64, maxK int, cfg KMeansConfig) ([]SilhouettePoint, error) {
	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	if maxK == 0 {
		maxK = DefaultMaxK
	}
	if maxK < 2 || maxK > n-1 {
		return nil, fmt.Errorf("%w: maxK must be in [2, %d], got %d", ErrInvalidK, n-1, maxK)
	}

	workers := resolveWorkers(cfg.Workers)
	dist := ComputePairwiseDistancesParallel(flat, n, dims, EuclideanMetric{}, workers)

	points := make([]SilhouettePoint, 0, maxK-1)
	for k := 2; k <= maxK; k++ {
		cfg.K = k
		res, err := kmeansFlat(flat, n, dims, cfg)
		if err != nil {
			return nil, fmt.Errorf("clusterkit: kmeans k=%d: %w", k, err)
		}
		score, err := silhouettePrecomputed(dist, n, res.Labels, workers)
		if err != nil {
			return nil, fmt.Errorf("clusterkit: silhouette k=%d: %w", k, err)
		}
		points = append(points, SilhouettePoint{K: k, Score: score})
	}
	return points, nil
}

// BestSilhouette returns the point with the highest score. The earliest point
// wins ties. ok is false when points is empty.
func BestSilhouette(points []SilhouettePoint) (best SilhouettePoint, ok bool) {
	if len(points) == 0 {
		return SilhouettePoint{}, false
	}
	best = points[0]
	for _, p := range points[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, true
}
