package charts

import (
	"fmt"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Modeling and forecasting figure names.
const (
	FileConfusionMatrix  = "churn_prediction_confusion_matrix.png"
	FileClusters         = "customer_segments_clustering.png"
	FileModelPerformance = "model_performance_comparison.png"
	FileRevenueForecast  = "revenue_forecast.png"
)

// countGrid adapts a square count matrix to plotter.GridXYZ with row 0 on top.
type countGrid [][]int

func (g countGrid) Dims() (c, r int)   { return len(g), len(g) }
func (g countGrid) Z(c, r int) float64 { return float64(g[len(g)-1-r][c]) }
func (g countGrid) X(c int) float64    { return float64(c) }
func (g countGrid) Y(r int) float64    { return float64(r) }

// ConfusionMatrix draws an annotated heat map of cm, where cm[true][pred].
func (r *Renderer) ConfusionMatrix(cm [][]int, title string) (string, error) {
	if len(cm) == 0 {
		return "", fmt.Errorf("empty confusion matrix")
	}
	p := r.newPlot(title+" - Confusion Matrix", "Predicted Label", "True Label")

	grid := countGrid(cm)
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	n := len(cm)
	xys := make(plotter.XYs, 0, n*n)
	labels := make([]string, 0, n*n)
	classes := make([]string, n)
	reversed := make([]string, n)
	for i := 0; i < n; i++ {
		classes[i] = fmt.Sprintf("%d", i)
		reversed[n-1-i] = classes[i]
		for j := 0; j < n; j++ {
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			labels = append(labels, fmt.Sprintf("%d", cm[i][j]))
		}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return "", err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
		l.TextStyle[i].YAlign = draw.YCenter
		l.TextStyle[i].Font.Size = r.style.TitleSize
	}
	p.Add(l)
	p.NominalX(classes...)
	p.NominalY(reversed...)

	return r.saveGrid([][]*plot.Plot{{p}}, 8*vg.Inch, 6*vg.Inch, FileConfusionMatrix)
}

// Clusters scatters the first two scaled features coloured by cluster.
func (r *Renderer) Clusters(points [][]float64, labels []int, k int) (string, error) {
	p := r.newPlot("Customer Segmentation - K-Means Clustering", "Feature 1 (Scaled)", "Feature 2 (Scaled)")

	groups := make([]plotter.XYs, k)
	for i, pt := range points {
		if len(pt) < 2 || labels[i] < 0 || labels[i] >= k {
			continue
		}
		groups[labels[i]] = append(groups[labels[i]], plotter.XY{X: pt[0], Y: pt[1]})
	}
	for c, xys := range groups {
		if len(xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return "", err
		}
		s.Color = withAlpha(r.style.Color(c), 0x99)
		s.Shape = draw.CircleGlyph{}
		s.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("Cluster %d", c), s)
	}
	p.Legend.Top = true

	return r.saveGrid([][]*plot.Plot{{p}}, 10*vg.Inch, 8*vg.Inch, FileClusters)
}

// Metric is one named score in [0, 1].
type Metric struct {
	Name  string
	Value float64
}

// ModelPerformance draws the classifier scores as labelled bars.
func (r *Renderer) ModelPerformance(metrics []Metric) (string, error) {
	p := r.newPlot("Churn Prediction Model Performance", "", "Score")
	names := make([]string, len(metrics))
	values := make(plotter.Values, len(metrics))
	for i, m := range metrics {
		one := make(plotter.Values, len(metrics))
		one[i] = m.Value
		names[i], values[i] = m.Name, m.Value

		bars, err := plotter.NewBarChart(one, vg.Points(40))
		if err != nil {
			return "", err
		}
		bars.Color = r.style.Color(i)
		bars.LineStyle.Width = 0
		p.Add(bars)
	}
	if err := addValueLabels(p, values, false, func(v float64) string { return fmt.Sprintf("%.3f", v) }); err != nil {
		return "", err
	}
	p.NominalX(names...)
	p.Y.Min = 0
	p.Y.Max = 1

	return r.saveGrid([][]*plot.Plot{{p}}, 10*vg.Inch, 6*vg.Inch, FileModelPerformance)
}

// Point is one dated value of a time series.
type Point struct {
	Time  time.Time
	Value float64
}

// RevenueForecast draws the observed series followed by the forecast.
func (r *Renderer) RevenueForecast(history, forecast []Point) (string, error) {
	p := r.newPlot("Quarterly Revenue Forecast", "Quarter", "Revenue (Billions USD)")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	series := []struct {
		name   string
		points []Point
		dashed bool
	}{
		{"Historical", history, false},
		{"Forecast", forecast, true},
	}
	for i, s := range series {
		if len(s.points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.points))
		for j, pt := range s.points {
			xys[j] = plotter.XY{X: float64(pt.Time.Unix()), Y: pt.Value}
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return "", err
		}
		line.Color = r.style.Color(i)
		line.Width = vg.Points(2)
		if s.dashed {
			line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}
		points.Color = r.style.Color(i)
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(2.5)
		p.Add(line, points)
		p.Legend.Add(s.name, line, points)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return r.save(p, FileRevenueForecast)
}
