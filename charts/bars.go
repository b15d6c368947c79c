package charts

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"cine-insights/analysis"
)

var barWidth = vg.Points(14)

// rankedBars draws counts as horizontal bars with the first entry on top.
// Nothing is added when counts is empty.
func (r *Renderer) rankedBars(p *plot.Plot, counts []analysis.Count, fill color.Color, annotate bool) error {
	if len(counts) == 0 {
		return nil
	}
	n := len(counts)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, c := range counts {
		values[n-1-i] = float64(c.Count)
		names[n-1-i] = c.Value
	}

	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.Color = fill
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	if annotate {
		return addValueLabels(p, values, true, func(v float64) string { return fmt.Sprintf("%.0f", v) })
	}
	return nil
}

// shareBars replaces a pie chart: one vertical bar per category holding its
// percentage of the total, labelled with the percentage.
func (r *Renderer) shareBars(p *plot.Plot, names []string, counts []int) error {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil
	}

	values := make(plotter.Values, len(counts))
	for i, c := range counts {
		values[i] = analysis.Percent(c, total)
	}
	for i := range values {
		one := make(plotter.Values, len(values))
		one[i] = values[i]
		bars, err := plotter.NewBarChart(one, barWidth*3)
		if err != nil {
			return err
		}
		bars.Color = r.style.Color(i)
		bars.LineStyle.Width = 0
		p.Add(bars)
	}
	p.NominalX(names...)
	p.Y.Min = 0
	p.Y.Max = 100
	return addValueLabels(p, values, false, func(v float64) string { return fmt.Sprintf("%.1f%%", v) })
}

func addValueLabels(p *plot.Plot, values plotter.Values, horizontal bool, format func(float64) string) error {
	xys := make(plotter.XYs, len(values))
	labels := make([]string, len(values))
	for i, v := range values {
		if horizontal {
			xys[i] = plotter.XY{X: v, Y: float64(i)}
		} else {
			xys[i] = plotter.XY{X: float64(i), Y: v}
		}
		labels[i] = format(v)
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		if horizontal {
			l.TextStyle[i].YAlign = draw.YCenter
		} else {
			l.TextStyle[i].XAlign = draw.XCenter
		}
	}
	if horizontal {
		l.Offset = vg.Point{X: vg.Points(4)}
	} else {
		l.Offset = vg.Point{Y: vg.Points(4)}
	}
	p.Add(l)
	return nil
}

func withAlpha(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}
