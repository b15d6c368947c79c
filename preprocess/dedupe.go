package preprocess

import (
	"fmt"
	"strconv"

	"cine-insights/catalog"
)

// DedupeKey is the column triple that identifies a title.
var DedupeKey = []string{catalog.ColumnTitle, catalog.ColumnType, catalog.ColumnReleaseYear}

// Deduplicate removes records whose (title, type, release_year) matches an
// earlier record, keeping the first occurrence. Years compare by value, so
// "2020" and "2020.0" collide. It returns the number of records removed and
// fails when a key column is absent.
func Deduplicate(ds *catalog.Dataset) (int, error) {
	if err := ds.RequireColumns(DedupeKey...); err != nil {
		return 0, fmt.Errorf("failed to deduplicate: %w", err)
	}

	seen := make(map[[3]string]struct{}, ds.Len())
	removed := ds.Filter(func(r *catalog.Record) bool {
		key := [3]string{
			r.Value(catalog.ColumnTitle),
			r.Value(catalog.ColumnType),
			yearKey(r),
		}
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	return removed, nil
}

func yearKey(r *catalog.Record) string {
	if year, ok := r.Int(catalog.ColumnReleaseYear); ok {
		return strconv.Itoa(year)
	}
	return r.Value(catalog.ColumnReleaseYear)
}
