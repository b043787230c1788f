package clusterkit

import "errors"

var (
	ErrEmptyData           = errors.New("clusterkit: empty data")
	ErrRaggedData          = errors.New("clusterkit: rows have different dimensionality")
	ErrInvalidK            = errors.New("clusterkit: invalid number of clusters")
	ErrTooFewSamples       = errors.New("clusterkit: too few samples")
	ErrUnknownMetric       = errors.New("clusterkit: unknown metric")
	ErrUnknownLinkage      = errors.New("clusterkit: unknown linkage method")
	ErrUnknownCriterion    = errors.New("clusterkit: unknown criterion")
	ErrMetricNotSupported  = errors.New("clusterkit: metric not supported")
	ErrSilhouetteUndefined = errors.New("clusterkit: silhouette score undefined")
	ErrInvalidLinkage      = errors.New("clusterkit: invalid linkage matrix")
)
