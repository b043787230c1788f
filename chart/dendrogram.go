package chart

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/TrevorS/clusterkit"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
)

// aboveThreshold colors links that merge clusters at or above the color
// threshold.
var aboveThreshold = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// Dendrogram draws the U-shaped links of a dendrogram layout. Links below the
// layout's color threshold are colored per group; the x axis is labelled with
// the original point indices.
func Dendrogram(layout *clusterkit.DendrogramLayout) (*plot.Plot, error) {
	if layout == nil || len(layout.Links) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Hierarchical Clustering Dendrogram", "Samples", "Distance")

	for _, link := range layout.Links {
		xys := make(plotter.XYs, 4)
		for i := range xys {
			xys[i] = plotter.XY{X: link.X[i], Y: link.Y[i]}
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("chart: dendrogram link %d: %w", link.Row, err)
		}
		l.LineStyle.Color = aboveThreshold
		if link.Group >= 0 {
			// Offset by one so groups never reuse the above-threshold blue.
			l.LineStyle.Color = plotutil.Color(link.Group + 1)
		}
		p.Add(l)
	}

	const spacing = clusterkit.DendrogramLeafSpacing
	ticks := make(plot.ConstantTicks, len(layout.Leaves))
	for i, leaf := range layout.Leaves {
		ticks[i] = plot.Tick{Value: spacing/2 + spacing*float64(i), Label: strconv.Itoa(leaf)}
	}
	p.X.Tick.Marker = ticks
	p.X.Min = 0
	p.X.Max = spacing * float64(len(layout.Leaves))
	p.Y.Min = 0
	return p, nil
}
