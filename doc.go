// Package clusterkit provides exploratory clustering utilities: K-Means,
// agglomerative (hierarchical) clustering with dendrogram layout, k-nearest
// neighbor distances for DBSCAN epsilon selection, and two heuristics for
// choosing the number of clusters (elbow and silhouette).
//
// Basic usage:
//
//	cfg := clusterkit.DefaultKMeansConfig()
//	cfg.K = 3
//	res, err := clusterkit.KMeans(data, cfg)
//	// res.Labels[i] is the cluster of point i, res.Inertia the within-cluster SSE
//
// Hierarchical clustering returns a linkage matrix in scipy format, where each
// row is [left, right, distance, size] and merged cluster IDs start at n:
//
//	z, err := clusterkit.Linkage(data, clusterkit.LinkageWard, clusterkit.EuclideanMetric{})
//	labels, err := clusterkit.FlatClusters(z, 4, clusterkit.CriterionMaxClust)
//
// # Choosing k
//
// ElbowMethod and SilhouetteMethod sweep k for K-Means and return one point
// per k, ready to be rendered by the chart package. OptimalClusters applies
// both heuristics to a hierarchical clustering:
//
//	opt, err := clusterkit.OptimalClusters(data, clusterkit.DefaultOptimalConfig())
//	// opt.Elbow is argmax of the merge-distance derivative, plus one
//	// opt.Silhouette is the k in [2, MaxK] with the highest silhouette score
//
// # DBSCAN epsilon
//
// KDistances returns the sorted distance of every point to its k-th nearest
// neighbor (the point itself counts as the first). The knee of that curve is
// a reasonable DBSCAN eps.
package clusterkit
