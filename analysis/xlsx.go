package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes the summary to a workbook with one sheet per table.
func ExportXLSX(s *Summary, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	overview := [][]interface{}{
		{"Metric", "Value"},
		{"Total Titles", s.TotalTitles},
		{"Movies", s.Movies},
		{"Movies %", round1(s.MoviePercent)},
		{"TV Shows", s.TVShows},
		{"TV Shows %", round1(s.TVShowPercent)},
	}
	if s.ReleaseYear != nil {
		overview = append(overview,
			[]interface{}{"Earliest Release Year", s.ReleaseYear.Min},
			[]interface{}{"Latest Release Year", s.ReleaseYear.Max},
			[]interface{}{"Median Release Year", s.ReleaseYear.Median},
			[]interface{}{"Mean Release Year", round1(s.ReleaseYear.Mean)},
		)
	}
	if s.ContentAge != nil {
		overview = append(overview,
			[]interface{}{"Average Content Age", round1(s.ContentAge.Mean)},
			[]interface{}{"Median Content Age", s.ContentAge.Median},
		)
	}
	if err := writeRows(f, "Summary", overview); err != nil {
		return err
	}

	tables := []struct {
		sheet  string
		header string
		counts []Count
	}{
		{"Types", "Type", s.TypeCounts},
		{"Countries", "Country", s.TopCountries},
		{"Genres", "Genre", s.TopGenres},
	}
	for _, t := range tables {
		if _, err := f.NewSheet(t.sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.sheet, err)
		}
		rows := [][]interface{}{{t.header, "Titles"}}
		for _, c := range t.counts {
			rows = append(rows, []interface{}{c.Value, c.Count})
		}
		if err := writeRows(f, t.sheet, rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
