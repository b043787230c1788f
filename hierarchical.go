package clusterkit

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Selection chooses which heuristic OptimalClusters evaluates.
type Selection string

const (
	SelectElbow      Selection = "elbow"
	SelectSilhouette Selection = "silhouette"
	SelectBoth       Selection = "both"
)

// ParseSelection resolves a selection name (case-insensitive). An empty name
// selects both heuristics.
func ParseSelection(name string) (Selection, error) {
	s := Selection(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case "":
		return SelectBoth, nil
	case SelectElbow, SelectSilhouette, SelectBoth:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q (want elbow, silhouette or both)", ErrUnknownCriterion, name)
	}
}

// OptimalConfig controls OptimalClusters.
// Start with [DefaultOptimalConfig] and override the fields you need.
type OptimalConfig struct {
	// Method is the linkage method. Default: ward.
	Method LinkageMethod

	// Selection picks the heuristic(s) to evaluate. Default: both.
	Selection Selection

	// MaxK is the largest k tried by the silhouette search, capped at the
	// number of points. Must be >= 2. Default: 10.
	MaxK int

	// Metric is used both for the linkage and for silhouette scoring. ward,
	// centroid and median require Euclidean. Default: EuclideanMetric.
	Metric DistanceMetric

	// Workers bounds the number of goroutines used for distance and
	// silhouette computations. 0 means runtime.NumCPU().
	Workers int
}

// DefaultOptimalConfig returns an OptimalConfig with reasonable defaults.
func DefaultOptimalConfig() OptimalConfig {
	return OptimalConfig{
		Method:    LinkageWard,
		Selection: SelectBoth,
		MaxK:      DefaultMaxK,
		Metric:    EuclideanMetric{},
	}
}

// Optimum reports the number of clusters suggested by each heuristic. Fields
// of heuristics that were not selected are zero.
type Optimum struct {
	// Elbow is argmax of the first difference of the merge distances, plus one.
	Elbow int `json:"elbow,omitempty" yaml:"elbow,omitempty"`

	// Silhouette is the k with the highest mean silhouette score.
	Silhouette int `json:"silhouette,omitempty" yaml:"silhouette,omitempty"`

	// SilhouetteScore is the score obtained at Silhouette.
	SilhouetteScore float64 `json:"silhouette_score" yaml:"silhouette_score"`

	// Scores holds the silhouette score of every k that could be scored.
	Scores []SilhouettePoint `json:"scores,omitempty" yaml:"scores,omitempty"`
}

func applyOptimalDefaults(cfg *OptimalConfig) {
	if cfg.Method == "" {
		cfg.Method = LinkageWard
	}
	if cfg.Selection == "" {
		cfg.Selection = SelectBoth
	}
	if cfg.MaxK == 0 {
		cfg.MaxK = DefaultMaxK
	}
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	cfg.Workers = resolveWorkers(cfg.Workers)
}

func validateOptimalConfig(cfg *OptimalConfig) error {
	if _, err := ParseLinkageMethod(string(cfg.Method)); err != nil {
		return err
	}
	if _, err := ParseSelection(string(cfg.Selection)); err != nil {
		return err
	}
	if cfg.MaxK < 2 {
		return fmt.Errorf("%w: MaxK must be >= 2, got %d", ErrInvalidK, cfg.MaxK)
	}
	return nil
}

// OptimalClusters estimates the number of clusters of a hierarchical
// clustering of data.
//
// The elbow estimate is the position of the largest jump between consecutive
// merge distances. The silhouette estimate cuts the tree into k clusters for
// every k in [2, min(MaxK, n)] and keeps the k with the strictly highest mean
// silhouette score, starting from k=2 with score -1. Cuts whose silhouette is
// undefined (a single cluster, or one cluster per point) are skipped.
func OptimalClusters(data [][]float64, cfg OptimalConfig) (*Optimum, error) {
	applyOptimalDefaults(&cfg)
	if err := validateOptimalConfig(&cfg); err != nil {
		return nil, err
	}
	if cfg.Method.requiresEuclidean() && !isEuclidean(cfg.Metric) {
		return nil, fmt.Errorf("%w: %s linkage requires the Euclidean metric, got %T",
			ErrMetricNotSupported, cfg.Method, cfg.Metric)
	}

	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: linkage needs at least 2 observations, got %d", ErrTooFewSamples, n)
	}

	dist := ComputePairwiseDistancesParallel(flat, n, dims, cfg.Metric, cfg.Workers)
	z := linkageFromMatrix(dist, n, cfg.Method)

	opt := &Optimum{}

	if cfg.Selection == SelectElbow || cfg.Selection == SelectBoth {
		distances := make([]float64, len(z))
		for i, r := range z {
			distances[i] = r[2]
		}
		opt.Elbow, err = ElbowIndex(distances)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Selection == SelectSilhouette || cfg.Selection == SelectBoth {
		bestK, bestScore := 2, -1.0
		for k := 2; k <= min(cfg.MaxK, n); k++ {
			labels, err := FlatClusters(z, float64(k), CriterionMaxClust)
			if err != nil {
				return nil, err
			}
			score, err := silhouettePrecomputed(dist, n, labels, cfg.Workers)
			if errors.Is(err, ErrSilhouetteUndefined) {
				slog.Debug("clusterkit: skipping k with undefined silhouette", "k", k, "error", err)
				continue
			}
			if err != nil {
				return nil, err
			}
			opt.Scores = append(opt.Scores, SilhouettePoint{K: k, Score: score})
			if score > bestScore {
				bestK, bestScore = k, score
			}
		}
		opt.Silhouette = bestK
		opt.SilhouetteScore = bestScore
	}

	return opt, nil
}
