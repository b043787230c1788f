// Package chart renders the diagnostic plots of clusterkit with gonum/plot:
// elbow curves, silhouette curves, k-distance curves and dendrograms.
//
// Builders return a *plot.Plot that can be customized further before being
// written with Save or Write.
package chart

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Size is the rendered size of a figure.
type Size struct {
	Width, Height vg.Length
}

var (
	// SizeDefault matches the 8x5 inch figures of the curve plots.
	SizeDefault = Size{Width: 8 * vg.Inch, Height: 5 * vg.Inch}
	// SizeWide is used for dendrograms.
	SizeWide = Size{Width: 10 * vg.Inch, Height: 5 * vg.Inch}
)

// ErrNoData is returned when a plot has nothing to draw.
var ErrNoData = errors.New("chart: no data to plot")

// Save writes p to path; the image format is inferred from the file
// extension (png, jpg, svg, pdf, eps, tif).
func Save(p *plot.Plot, size Size, path string) error {
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return fmt.Errorf("chart: saving %s: %w", path, err)
	}
	return nil
}

// Write renders p in the given format ("png", "svg", "pdf", ...) to w.
func Write(p *plot.Plot, size Size, format string, w io.Writer) error {
	wt, err := p.WriterTo(size.Width, size.Height, format)
	if err != nil {
		return fmt.Errorf("chart: rendering %s: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: writing %s: %w", format, err)
	}
	return nil
}

// newPlot creates a plot with title and axis labels set.
func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// addCurve draws xys as a line with circle markers.
func addCurve(p *plot.Plot, xys plotter.XYs) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("chart: building curve: %w", err)
	}
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(3)
	p.Add(line, points)
	return nil
}

// integerTicks labels every integer in [lo, hi] on an axis.
func integerTicks(lo, hi int) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		ticks = append(ticks, plot.Tick{Value: float64(v), Label: fmt.Sprint(v)})
	}
	return ticks
}
