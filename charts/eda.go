package charts

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"cine-insights/analysis"
	"cine-insights/catalog"
)

// EDA figure names.
const (
	FileContentDistribution = "content_distribution.png"
	FileRatingDistribution  = "rating_correlation_heatmap.png"
	FileGenrePerformance    = "genre_performance_boxplot.png"
	FileGeographic          = "geographic_performance_heatmap.png"
	FileTemporalTrends      = "revenue_forecast_2021-2025.png"
)

// TrendStartYear is the first release year shown in the trend chart.
const TrendStartYear = 1990

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// RenderEDA writes the five EDA figures and returns their paths. Figures
// whose source columns are absent are skipped.
func (r *Renderer) RenderEDA(ds *catalog.Dataset) ([]string, error) {
	steps := []func(*catalog.Dataset) (string, error){
		r.ContentDistribution,
		r.RatingDistribution,
		r.GenrePerformance,
		r.GeographicDistribution,
		r.TemporalTrends,
	}
	var paths []string
	for _, step := range steps {
		path, err := step(ds)
		if err != nil {
			return paths, err
		}
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// ContentDistribution shows the type split and titles added per year by type.
func (r *Renderer) ContentDistribution(ds *catalog.Dataset) (string, error) {
	if err := ds.RequireColumns(catalog.ColumnType); err != nil {
		return "", err
	}

	share := r.newPlot("Content Type Distribution", "", "Share of Titles (%)")
	counts := analysis.ValueCounts(ds.Values(catalog.ColumnType))
	names := make([]string, len(counts))
	values := make([]int, len(counts))
	for i, c := range counts {
		names[i], values[i] = c.Value, c.Count
	}
	if err := r.shareBars(share, names, values); err != nil {
		return "", err
	}

	yearly := r.newPlot("Content Added by Year", "Year Added", "Number of Titles")
	if ds.HasColumn(catalog.ColumnYearAdded) {
		if err := r.groupedByYear(yearly, ds, names); err != nil {
			return "", err
		}
	}

	return r.saveGrid([][]*plot.Plot{{share, yearly}}, 15*vg.Inch, 6*vg.Inch, FileContentDistribution)
}

func (r *Renderer) groupedByYear(p *plot.Plot, ds *catalog.Dataset, types []string) error {
	byYear := make(map[int]map[string]int)
	for _, rec := range ds.Records {
		year, ok := rec.Int(catalog.ColumnYearAdded)
		if !ok {
			continue
		}
		if byYear[year] == nil {
			byYear[year] = make(map[string]int)
		}
		byYear[year][rec.Value(catalog.ColumnType)]++
	}
	if len(byYear) == 0 {
		return nil
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}

	width := vg.Points(6)
	for i, typ := range types {
		values := make(plotter.Values, len(years))
		for j, y := range years {
			values[j] = float64(byYear[y][typ])
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bars.Color = r.style.Color(i)
		bars.LineStyle.Width = 0
		bars.Offset = width * vg.Length(float64(i)-float64(len(types)-1)/2)
		p.Add(bars)
		p.Legend.Add(typ, bars)
	}
	p.Legend.Top = true
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	return nil
}

// RatingDistribution shows the ten most common ratings and the mature share.
func (r *Renderer) RatingDistribution(ds *catalog.Dataset) (string, error) {
	top := r.newPlot("Top 10 Content Ratings", "Count", "")
	if ds.HasColumn(catalog.ColumnRating) {
		counts := analysis.Top(analysis.ValueCounts(ds.Values(catalog.ColumnRating)), 10)
		if err := r.rankedBars(top, counts, r.style.Color(2), false); err != nil {
			return "", err
		}
	}

	mature := r.newPlot("Mature vs Non-Mature Content", "", "Share of Titles (%)")
	if ds.HasColumn(catalog.ColumnIsMature) {
		var flags [2]int
		for _, rec := range ds.Records {
			if v, ok := rec.Int(catalog.ColumnIsMature); ok && (v == 0 || v == 1) {
				flags[v]++
			}
		}
		if err := r.shareBars(mature, []string{"Non-Mature", "Mature"}, flags[:]); err != nil {
			return "", err
		}
	}

	return r.saveGrid([][]*plot.Plot{{top, mature}}, 15*vg.Inch, 6*vg.Inch, FileRatingDistribution)
}

// GenrePerformance shows the ten most common primary genres and their split
// by content type. It is skipped without a primary_genre column.
func (r *Renderer) GenrePerformance(ds *catalog.Dataset) (string, error) {
	if !ds.HasColumn(catalog.ColumnPrimaryGenre) {
		return "", nil
	}
	counts := analysis.Top(analysis.ValueCounts(ds.Values(catalog.ColumnPrimaryGenre)), 10)

	top := r.newPlot("Top 10 Genres", "Number of Titles", "")
	if err := r.rankedBars(top, counts, r.style.Color(2), false); err != nil {
		return "", err
	}

	byType := r.newPlot("Top Genres by Content Type", "Count", "")
	if ds.HasColumn(catalog.ColumnType) && len(counts) > 0 {
		if err := r.stackedByType(byType, ds, counts); err != nil {
			return "", err
		}
	}

	return r.saveGrid([][]*plot.Plot{{top, byType}}, 15*vg.Inch, 6*vg.Inch, FileGenrePerformance)
}

func (r *Renderer) stackedByType(p *plot.Plot, ds *catalog.Dataset, genres []analysis.Count) error {
	n := len(genres)
	index := make(map[string]int, n)
	names := make([]string, n)
	for i, g := range genres {
		index[g.Value] = n - 1 - i
		names[n-1-i] = g.Value
	}

	types := []string{catalog.TypeMovie, catalog.TypeTVShow}
	series := make([]plotter.Values, len(types))
	for i := range series {
		series[i] = make(plotter.Values, n)
	}
	for _, rec := range ds.Records {
		pos, ok := index[rec.Value(catalog.ColumnPrimaryGenre)]
		if !ok {
			continue
		}
		for i, typ := range types {
			if rec.Value(catalog.ColumnType) == typ {
				series[i][pos]++
			}
		}
	}

	var below *plotter.BarChart
	for i, values := range series {
		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return err
		}
		bars.Horizontal = true
		bars.Color = r.style.Color(i)
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(types[i], bars)
		below = bars
	}
	p.Legend.Left = false
	p.Legend.Top = false
	p.NominalY(names...)
	return nil
}

// GeographicDistribution shows the fifteen largest producing countries. It
// is skipped without a primary_country column.
func (r *Renderer) GeographicDistribution(ds *catalog.Dataset) (string, error) {
	if !ds.HasColumn(catalog.ColumnPrimaryCountry) {
		return "", nil
	}
	counts := analysis.Top(analysis.ValueCounts(ds.Values(catalog.ColumnPrimaryCountry)), 15)

	p := r.newPlot("Top 15 Countries by Content Production", "Number of Titles", "")
	if err := r.rankedBars(p, counts, r.style.Color(1), true); err != nil {
		return "", err
	}
	return r.saveGrid([][]*plot.Plot{{p}}, 12*vg.Inch, 8*vg.Inch, FileGeographic)
}

// TemporalTrends shows releases per year since TrendStartYear and titles
// added per calendar month.
func (r *Renderer) TemporalTrends(ds *catalog.Dataset) (string, error) {
	releases := r.newPlot(fmt.Sprintf("Content Release Trends (%d-Present)", TrendStartYear), "Release Year", "Number of Titles")
	if ds.HasColumn(catalog.ColumnReleaseYear) {
		perYear := make(map[int]int)
		for _, rec := range ds.Records {
			if y, ok := rec.Int(catalog.ColumnReleaseYear); ok && y >= TrendStartYear {
				perYear[y]++
			}
		}
		if len(perYear) > 0 {
			years := make([]int, 0, len(perYear))
			for y := range perYear {
				years = append(years, y)
			}
			sort.Ints(years)
			xys := make(plotter.XYs, len(years))
			for i, y := range years {
				xys[i] = plotter.XY{X: float64(y), Y: float64(perYear[y])}
			}
			line, points, err := plotter.NewLinePoints(xys)
			if err != nil {
				return "", err
			}
			line.Color = r.style.Color(2)
			line.Width = vg.Points(2)
			line.FillColor = withAlpha(r.style.Color(2), 0x4C)
			points.Color = r.style.Color(2)
			points.Shape = draw.CircleGlyph{}
			points.Radius = vg.Points(2)
			releases.Add(line, points)
		}
	}

	monthly := r.newPlot("Content Addition Patterns by Month", "Month", "Number of Titles Added")
	if ds.HasColumn(catalog.ColumnMonthAdded) {
		values := make(plotter.Values, 12)
		for _, rec := range ds.Records {
			if m, ok := rec.Int(catalog.ColumnMonthAdded); ok && m >= 1 && m <= 12 {
				values[m-1]++
			}
		}
		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return "", err
		}
		bars.Color = r.style.Color(0)
		bars.LineStyle.Width = 0
		monthly.Add(bars)
		monthly.NominalX(monthNames...)
	}

	return r.saveGrid([][]*plot.Plot{{releases}, {monthly}}, 14*vg.Inch, 10*vg.Inch, FileTemporalTrends)
}
