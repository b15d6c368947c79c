package analysis

import (
	"fmt"
	"io"

	"cine-insights/catalog"
	"cine-insights/console"
)

// Summary is the statistical summary of a processed catalog.
type Summary struct {
	TotalTitles   int
	TypeCounts    []Count
	Movies        int
	TVShows       int
	MoviePercent  float64
	TVShowPercent float64

	// ReleaseYear and ContentAge are nil when the column is absent.
	ReleaseYear *Description
	ContentAge  *Description

	TopCountries []Count
	TopGenres    []Count
}

// Summarize aggregates the dataset. It requires the type column.
func Summarize(ds *catalog.Dataset) (*Summary, error) {
	if err := ds.RequireColumns(catalog.ColumnType); err != nil {
		return nil, err
	}

	s := &Summary{TotalTitles: ds.Len()}
	s.TypeCounts = ValueCounts(ds.Values(catalog.ColumnType))
	for _, r := range ds.Records {
		switch r.Value(catalog.ColumnType) {
		case catalog.TypeMovie:
			s.Movies++
		case catalog.TypeTVShow:
			s.TVShows++
		}
	}
	s.MoviePercent = Percent(s.Movies, s.TotalTitles)
	s.TVShowPercent = Percent(s.TVShows, s.TotalTitles)

	if ds.HasColumn(catalog.ColumnReleaseYear) {
		d := Describe(catalog.ColumnReleaseYear, ds.Floats(catalog.ColumnReleaseYear))
		s.ReleaseYear = &d
	}
	if ds.HasColumn(catalog.ColumnContentAge) {
		d := Describe(catalog.ColumnContentAge, ds.Floats(catalog.ColumnContentAge))
		s.ContentAge = &d
	}
	if ds.HasColumn(catalog.ColumnPrimaryCountry) {
		s.TopCountries = Top(ValueCounts(ds.Values(catalog.ColumnPrimaryCountry)), 5)
	}
	if ds.HasColumn(catalog.ColumnPrimaryGenre) {
		s.TopGenres = Top(ValueCounts(ds.Values(catalog.ColumnPrimaryGenre)), 5)
	}
	return s, nil
}

// Render prints the summary the way the EDA stage reports it.
func (s *Summary) Render(w io.Writer) {
	console.Banner(w, "STATISTICAL ANALYSIS SUMMARY")

	console.Heading(w, "Content Type Distribution")
	console.Table(w, []string{"Type", "Titles"}, countRows(s.TypeCounts))
	fmt.Fprintf(w, "Movies: %d (%.1f%%)\n", s.Movies, s.MoviePercent)
	fmt.Fprintf(w, "TV Shows: %d (%.1f%%)\n", s.TVShows, s.TVShowPercent)

	if s.ReleaseYear != nil {
		console.Heading(w, "Release Year Statistics")
		fmt.Fprintf(w, "Earliest: %.0f\n", s.ReleaseYear.Min)
		fmt.Fprintf(w, "Latest: %.0f\n", s.ReleaseYear.Max)
		fmt.Fprintf(w, "Median: %.1f\n", s.ReleaseYear.Median)
		fmt.Fprintf(w, "Mean: %.1f\n", s.ReleaseYear.Mean)
	}
	if s.ContentAge != nil {
		console.Heading(w, "Content Age Statistics")
		fmt.Fprintf(w, "Average Content Age: %.1f years\n", s.ContentAge.Mean)
		fmt.Fprintf(w, "Median Content Age: %.1f years\n", s.ContentAge.Median)
	}
	if len(s.TopCountries) > 0 {
		console.Heading(w, "Top 5 Content Producing Countries")
		console.Table(w, []string{"Country", "Titles"}, countRows(s.TopCountries))
	}
	if len(s.TopGenres) > 0 {
		console.Heading(w, "Top 5 Genres")
		console.Table(w, []string{"Genre", "Titles"}, countRows(s.TopGenres))
	}
}

func countRows(counts []Count) [][]string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Value, fmt.Sprintf("%d", c.Count)}
	}
	return rows
}
