// Package catalog holds the in-memory representation of the title catalog:
// records keyed by column name, the dataset that owns them, the schema
// inspection that decides which derived features can be computed, and the
// CSV reader/writer used by every stage.
package catalog

import (
	"errors"
	"strconv"
	"strings"
)

// Source columns. The names match the input CSV header exactly.
const (
	ColumnType        = "type"
	ColumnTitle       = "title"
	ColumnDirector    = "director"
	ColumnCast        = "cast"
	ColumnCountry     = "country"
	ColumnDateAdded   = "date_added"
	ColumnReleaseYear = "release_year"
	ColumnRating      = "rating"
	ColumnDuration    = "duration"
	ColumnListedIn    = "listed_in"
)

// Derived columns written by feature engineering.
const (
	ColumnDateAddedClean  = "date_added_clean"
	ColumnYearAdded       = "year_added"
	ColumnMonthAdded      = "month_added"
	ColumnDayOfWeekAdded  = "day_of_week_added"
	ColumnDurationValue   = "duration_value"
	ColumnDurationType    = "duration_type"
	ColumnDurationMinutes = "duration_minutes"
	ColumnNumCountries    = "num_countries"
	ColumnPrimaryCountry  = "primary_country"
	ColumnNumGenres       = "num_genres"
	ColumnPrimaryGenre    = "primary_genre"
	ColumnNumCast         = "num_cast"
	ColumnContentAge      = "content_age_years"
	ColumnReleaseDecade   = "release_decade"
	ColumnIsMovie         = "is_movie"
	ColumnIsTVShow        = "is_tv_show"
	ColumnIsMature        = "is_mature"
)

// Content types.
const (
	TypeMovie  = "Movie"
	TypeTVShow = "TV Show"
)

// ErrMissingColumn is returned when an operation needs a column the dataset
// does not have.
var ErrMissingColumn = errors.New("missing required column")

// Record is one row of the catalog. A cell is null when it is absent or empty.
type Record struct {
	Line  int
	cells map[string]string
}

// NewRecord creates an empty record for the given 1-indexed source line.
func NewRecord(line int) *Record {
	return &Record{Line: line, cells: make(map[string]string)}
}

// Get returns the cell value and whether it is non-null.
func (r *Record) Get(column string) (string, bool) {
	v, ok := r.cells[column]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Value returns the raw cell text, "" for null.
func (r *Record) Value(column string) string {
	return r.cells[column]
}

// IsNull reports whether the cell is absent or empty.
func (r *Record) IsNull(column string) bool {
	_, ok := r.Get(column)
	return !ok
}

// Set stores a cell value. An empty value makes the cell null.
func (r *Record) Set(column, value string) {
	r.cells[column] = value
}

// SetNull clears a cell.
func (r *Record) SetNull(column string) {
	r.cells[column] = ""
}

// SetInt stores an integer cell.
func (r *Record) SetInt(column string, v int) {
	r.cells[column] = strconv.Itoa(v)
}

// SetFloat stores a float cell using the shortest exact representation.
func (r *Record) SetFloat(column string, v float64) {
	r.cells[column] = strconv.FormatFloat(v, 'f', -1, 64)
}

// SetBool stores a 0/1 flag.
func (r *Record) SetBool(column string, v bool) {
	if v {
		r.cells[column] = "1"
		return
	}
	r.cells[column] = "0"
}

// Int parses the cell as an integer. Values written as floats ("2019.0") are
// accepted when they have no fractional part.
func (r *Record) Int(column string) (int, bool) {
	v, ok := r.Get(column)
	if !ok {
		return 0, false
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Float parses the cell as a float.
func (r *Record) Float(column string) (float64, bool) {
	v, ok := r.Get(column)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{Line: r.Line, cells: make(map[string]string, len(r.cells))}
	for k, v := range r.cells {
		c.cells[k] = v
	}
	return c
}
