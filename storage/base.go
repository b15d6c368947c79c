package storage

import (
	"time"

	"cine-insights/catalog"
)

// Title is one row of the stored catalog snapshot.
type Title struct {
	Title          string `json:"title"`
	Type           string `json:"type"`
	Director       string `json:"director"`
	Country        string `json:"country"`
	ReleaseYear    *int   `json:"release_year,omitempty"`
	Rating         string `json:"rating"`
	Duration       string `json:"duration"`
	ListedIn       string `json:"listed_in"`
	PrimaryGenre   string `json:"primary_genre"`
	PrimaryCountry string `json:"primary_country"`
	ContentAge     *int   `json:"content_age_years,omitempty"`
	IsMature       bool   `json:"is_mature"`
}

// TitleFromRecord maps a processed catalog record onto a Title. Columns the
// record does not carry stay at their zero value.
func TitleFromRecord(r *catalog.Record) Title {
	t := Title{
		Title:          r.Value(catalog.ColumnTitle),
		Type:           r.Value(catalog.ColumnType),
		Director:       r.Value(catalog.ColumnDirector),
		Country:        r.Value(catalog.ColumnCountry),
		Rating:         r.Value(catalog.ColumnRating),
		Duration:       r.Value(catalog.ColumnDuration),
		ListedIn:       r.Value(catalog.ColumnListedIn),
		PrimaryGenre:   r.Value(catalog.ColumnPrimaryGenre),
		PrimaryCountry: r.Value(catalog.ColumnPrimaryCountry),
		IsMature:       r.Value(catalog.ColumnIsMature) == "1",
	}
	if year, ok := r.Int(catalog.ColumnReleaseYear); ok {
		t.ReleaseYear = &year
	}
	if age, ok := r.Int(catalog.ColumnContentAge); ok {
		t.ContentAge = &age
	}
	return t
}

// Run is one recorded pipeline execution.
type Run struct {
	ID                string    `json:"id"`
	InputPath         string    `json:"input_path"`
	OutputPath        string    `json:"output_path"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	OriginalRows      int       `json:"original_rows"`
	FinalRows         int       `json:"final_rows"`
	DuplicatesRemoved int       `json:"duplicates_removed"`
	Issues            []string  `json:"issues"`
}
