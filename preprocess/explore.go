package preprocess

import (
	"fmt"
	"io"
	"sort"

	"cine-insights/analysis"
	"cine-insights/catalog"
	"cine-insights/console"
)

const (
	headRows     = 5
	maxCellWidth = 24
)

// ColumnInfo describes one column of the raw dataset.
type ColumnInfo struct {
	Name    string
	NonNull int
	Kind    string
}

// MissingValue is one row of the missing-value table.
type MissingValue struct {
	Column  string
	Count   int
	Percent float64
}

// Exploration is the first look at a freshly loaded dataset.
type Exploration struct {
	Rows    int
	Columns int
	Names   []string
	Info    []ColumnInfo
	Head    [][]string
	Stats   []analysis.Description
	// Missing lists only columns with at least one null, most first.
	Missing []MissingValue
}

// Explore inspects the dataset without modifying it.
func Explore(ds *catalog.Dataset) *Exploration {
	rows, cols := ds.Shape()
	e := &Exploration{Rows: rows, Columns: cols, Names: ds.Columns}

	for _, c := range ds.Columns {
		kind := "text"
		if ds.IsNumeric(c) {
			kind = "numeric"
			e.Stats = append(e.Stats, analysis.Describe(c, ds.Floats(c)))
		}
		nulls := ds.NullCount(c)
		e.Info = append(e.Info, ColumnInfo{Name: c, NonNull: rows - nulls, Kind: kind})
		if nulls > 0 {
			e.Missing = append(e.Missing, MissingValue{
				Column:  c,
				Count:   nulls,
				Percent: analysis.Percent(nulls, rows),
			})
		}
	}
	sort.SliceStable(e.Missing, func(i, j int) bool {
		return e.Missing[i].Count > e.Missing[j].Count
	})

	for i := 0; i < rows && i < headRows; i++ {
		row := make([]string, len(ds.Columns))
		for j, c := range ds.Columns {
			row[j] = truncate(ds.Records[i].Value(c))
		}
		e.Head = append(e.Head, row)
	}
	return e
}

// Render writes the exploration summary.
func (e *Exploration) Render(w io.Writer) {
	console.Banner(w, "DATA EXPLORATION SUMMARY")

	console.Heading(w, "Dataset Info")
	fmt.Fprintf(w, "%d entries, %d columns\n", e.Rows, e.Columns)
	info := make([][]string, len(e.Info))
	for i, c := range e.Info {
		info[i] = []string{c.Name, fmt.Sprintf("%d", c.NonNull), c.Kind}
	}
	console.Table(w, []string{"Column", "Non-Null Count", "Kind"}, info)

	console.Heading(w, "First 5 rows")
	if len(e.Head) > 0 {
		console.Table(w, e.Names, e.Head)
	}

	console.Heading(w, "Statistical Summary")
	stats := make([][]string, len(e.Stats))
	for i, d := range e.Stats {
		stats[i] = []string{
			d.Column,
			fmt.Sprintf("%d", d.Count),
			formatStat(d.Mean), formatStat(d.Std), formatStat(d.Min),
			formatStat(d.Q25), formatStat(d.Median), formatStat(d.Q75), formatStat(d.Max),
		}
	}
	console.Table(w, []string{"Column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}, stats)

	console.Heading(w, "Missing Values")
	if len(e.Missing) == 0 {
		fmt.Fprintln(w, "No missing values")
		return
	}
	missing := make([][]string, len(e.Missing))
	for i, m := range e.Missing {
		missing[i] = []string{m.Column, fmt.Sprintf("%d", m.Count), fmt.Sprintf("%.2f", m.Percent)}
	}
	console.Table(w, []string{"Column", "Missing Count", "Percentage"}, missing)
}

func formatStat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCellWidth {
		return s
	}
	return string(r[:maxCellWidth-3]) + "..."
}
