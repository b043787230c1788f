package chart

import (
	"fmt"

	"github.com/TrevorS/clusterkit"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// Elbow plots K-Means inertia against the number of clusters.
func Elbow(points []clusterkit.ElbowPoint) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Elbow Method for Optimal k", "Number of Clusters (k)", "Inertia")
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: float64(pt.K), Y: pt.Inertia}
	}
	if err := addCurve(p, xys); err != nil {
		return nil, err
	}
	p.X.Tick.Marker = integerTicks(points[0].K, points[len(points)-1].K)
	return p, nil
}

// Silhouette plots the mean silhouette score against the number of clusters.
func Silhouette(points []clusterkit.SilhouettePoint) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Silhouette Score for Optimal k", "Number of Clusters (k)", "Silhouette Score")
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: float64(pt.K), Y: pt.Score}
	}
	if err := addCurve(p, xys); err != nil {
		return nil, err
	}
	p.X.Tick.Marker = integerTicks(points[0].K, points[len(points)-1].K)
	return p, nil
}

// KDistance plots the sorted k-th nearest neighbor distances, one point per
// sample, on a grid.
func KDistance(distances []float64, k int) (*plot.Plot, error) {
	if len(distances) == 0 {
		return nil, ErrNoData
	}
	p := newPlot(
		fmt.Sprintf("K-Distance Plot for k=%d", k),
		"Points sorted by distance",
		fmt.Sprintf("%d-th Nearest Neighbor Distance", k),
	)
	p.Add(plotter.NewGrid())
	xys := make(plotter.XYs, len(distances))
	for i, d := range distances {
		xys[i] = plotter.XY{X: float64(i), Y: d}
	}
	if err := addCurve(p, xys); err != nil {
		return nil, err
	}
	return p, nil
}
