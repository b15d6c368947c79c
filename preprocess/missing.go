package preprocess

import (
	"sort"

	"cine-insights/catalog"
)

// Sentinels substituted for missing optional values.
const (
	UnknownDirector = "Unknown Director"
	UnknownCast     = "Unknown Cast"
	UnknownCountry  = "Unknown Country"
	NotRated        = "Not Rated"
	UnknownDate     = "Unknown"
)

var sentinels = []struct {
	column string
	value  string
}{
	{catalog.ColumnDirector, UnknownDirector},
	{catalog.ColumnCast, UnknownCast},
	{catalog.ColumnCountry, UnknownCountry},
	{catalog.ColumnRating, NotRated},
}

// criticalColumns are never imputed; rows missing them are dropped.
var criticalColumns = []string{catalog.ColumnType, catalog.ColumnTitle}

// MissingResult records what FillMissing changed.
type MissingResult struct {
	// Filled counts the imputed cells per column.
	Filled      map[string]int
	RowsDropped int
}

// FillMissing replaces missing optional values with their sentinel,
// date_added with its most frequent value, and then removes rows missing a
// critical column. Columns absent from the dataset are skipped.
func FillMissing(ds *catalog.Dataset) MissingResult {
	res := MissingResult{Filled: make(map[string]int)}

	for _, s := range sentinels {
		if !ds.HasColumn(s.column) {
			continue
		}
		res.Filled[s.column] = fillColumn(ds, s.column, s.value)
	}

	if ds.HasColumn(catalog.ColumnDateAdded) {
		fill := mostFrequent(ds.NonNull(catalog.ColumnDateAdded))
		if fill == "" {
			fill = UnknownDate
		}
		res.Filled[catalog.ColumnDateAdded] = fillColumn(ds, catalog.ColumnDateAdded, fill)
	}

	for _, col := range criticalColumns {
		if !ds.HasColumn(col) {
			continue
		}
		res.RowsDropped += ds.Filter(func(r *catalog.Record) bool {
			return !r.IsNull(col)
		})
	}
	return res
}

func fillColumn(ds *catalog.Dataset, column, value string) int {
	n := 0
	for _, r := range ds.Records {
		if r.IsNull(column) {
			r.Set(column, value)
			n++
		}
	}
	return n
}

// mostFrequent returns the modal value; ties resolve to the smallest value.
// It returns "" when values is empty.
func mostFrequent(values []string) string {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestN := "", 0
	for _, k := range keys {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}
