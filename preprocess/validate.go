package preprocess

import (
	"fmt"
	"time"

	"cine-insights/catalog"
)

// MinReleaseYear is the earliest plausible release year.
const MinReleaseYear = 1900

// Validate reports data quality issues without modifying the dataset. An
// empty result means every check passed.
func Validate(ds *catalog.Dataset, now time.Time) []string {
	var issues []string

	if ds.HasColumn(catalog.ColumnReleaseYear) {
		tooOld, future := 0, 0
		for _, r := range ds.Records {
			year, ok := r.Int(catalog.ColumnReleaseYear)
			if !ok {
				continue
			}
			if year < MinReleaseYear {
				tooOld++
			}
			if year > now.Year() {
				future++
			}
		}
		if tooOld > 0 {
			issues = append(issues, fmt.Sprintf("Found %d entries with invalid release years", tooOld))
		}
		if future > 0 {
			issues = append(issues, fmt.Sprintf("Found %d entries with future release years", future))
		}
	}

	if ds.HasColumn(catalog.ColumnDurationMinutes) {
		invalid := 0
		for _, r := range ds.Records {
			if m, ok := r.Float(catalog.ColumnDurationMinutes); ok && m <= 0 {
				invalid++
			}
		}
		if invalid > 0 {
			issues = append(issues, fmt.Sprintf("Found %d entries with invalid durations", invalid))
		}
	}
	return issues
}
