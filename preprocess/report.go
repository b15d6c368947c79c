package preprocess

import (
	"fmt"
	"io"
	"time"

	"cine-insights/catalog"
	"cine-insights/console"
)

// Report summarises one preprocessing run.
type Report struct {
	InputPath  string
	OutputPath string
	StartedAt  time.Time
	FinishedAt time.Time

	OriginalRows     int
	OriginalColumns  int
	FinalRows        int
	FinalColumns     int
	RowsRemoved      int
	ColumnsAdded     int
	MissingRemaining int

	// Imputed counts the cells filled per column.
	Imputed           map[string]int
	RowsDropped       int
	DuplicatesRemoved int
	UnparseableDates  int

	Capabilities []catalog.Capability
	Issues       []string
	// Features lists the engineered features present in the output.
	Features []string
}

// Passed reports whether validation found no issues.
func (r *Report) Passed() bool {
	return len(r.Issues) == 0
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) finish(ds *catalog.Dataset, finishedAt time.Time) {
	r.FinalRows, r.FinalColumns = ds.Shape()
	r.RowsRemoved = r.OriginalRows - r.FinalRows
	r.ColumnsAdded = r.FinalColumns - r.OriginalColumns
	r.MissingRemaining = ds.TotalNulls()
	r.Features = catalog.PresentFeatures(ds.Columns)
	r.FinishedAt = finishedAt
}

// RenderValidation writes the validation outcome.
func (r *Report) RenderValidation(w io.Writer) {
	if r.Passed() {
		fmt.Fprintln(w, "✓ All data quality checks passed")
		return
	}
	fmt.Fprintln(w, "Data quality issues found:")
	console.List(w, "-", r.Issues)
}

// Render writes the preprocessing summary report.
func (r *Report) Render(w io.Writer) {
	console.Banner(w, "PREPROCESSING SUMMARY REPORT")
	console.KeyValues(w, [][2]string{
		{"Original Rows", fmt.Sprintf("%d", r.OriginalRows)},
		{"Original Columns", fmt.Sprintf("%d", r.OriginalColumns)},
		{"Final Rows", fmt.Sprintf("%d", r.FinalRows)},
		{"Final Columns", fmt.Sprintf("%d", r.FinalColumns)},
		{"Rows Removed", fmt.Sprintf("%d", r.RowsRemoved)},
		{"Columns Added", fmt.Sprintf("%d", r.ColumnsAdded)},
		{"Missing Values Remaining", fmt.Sprintf("%d", r.MissingRemaining)},
	})

	console.Heading(w, "New Features Created")
	console.List(w, "✓", r.Features)
}
