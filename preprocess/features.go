package preprocess

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"cine-insights/catalog"
)

// SeasonMinutes approximates the runtime of one TV season. It is a coarse
// placeholder used to put series and films on one duration scale, not a
// runtime estimate.
const SeasonMinutes = 45

// UnknownPrimary is the primary value of a missing multi-value field.
const UnknownPrimary = "Unknown"

// MatureRatings is the set of ratings flagged as mature content.
var MatureRatings = map[string]bool{
	"R":     true,
	"NC-17": true,
	"TV-MA": true,
	"TV-14": true,
}

var (
	durationValueRe = regexp.MustCompile(`\d+`)
	durationUnitRe  = regexp.MustCompile(`[a-zA-Z]+`)
)

// feature derives the columns of one capability for a single record. It
// returns false when a present source value could not be interpreted.
type feature func(r *catalog.Record, now time.Time) bool

var features = []struct {
	capability catalog.Capability
	apply      feature
	// warn is logged once with the failure count when apply reports failures.
	warn string
}{
	{catalog.CapDateParts, dateParts, "could not parse date_added values"},
	{catalog.CapDuration, duration, ""},
	{catalog.CapCountries, multiValue(catalog.ColumnCountry, catalog.ColumnNumCountries, catalog.ColumnPrimaryCountry), ""},
	{catalog.CapGenres, multiValue(catalog.ColumnListedIn, catalog.ColumnNumGenres, catalog.ColumnPrimaryGenre), ""},
	{catalog.CapCast, castCount, ""},
	{catalog.CapAge, contentAge, ""},
	{catalog.CapDecade, releaseDecade, ""},
	{catalog.CapTypeFlags, typeFlags, ""},
	{catalog.CapMaturity, maturity, ""},
}

// FeatureResult records which capabilities were applied.
type FeatureResult struct {
	Applied []catalog.Capability
	// Failures counts present values that could not be interpreted, per
	// capability.
	Failures map[catalog.Capability]int
}

// EngineerFeatures derives every feature group the dataset's columns allow.
// Groups whose source columns are absent are skipped.
func EngineerFeatures(ds *catalog.Dataset, now time.Time, logger *zap.Logger) FeatureResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema := catalog.Inspect(ds.Columns)
	res := FeatureResult{Failures: make(map[catalog.Capability]int)}

	for _, f := range features {
		if !schema.Has(f.capability) {
			logger.Debug("skipping feature group", zap.String("capability", string(f.capability)))
			continue
		}
		for _, col := range f.capability.Produces() {
			ds.AddColumn(col)
		}

		failed := 0
		for _, r := range ds.Records {
			if !f.apply(r, now) {
				failed++
			}
		}
		res.Applied = append(res.Applied, f.capability)
		if failed > 0 {
			res.Failures[f.capability] = failed
			if f.warn != "" {
				logger.Warn(f.warn, zap.Int("count", failed))
			}
		}
	}
	return res
}

func dateParts(r *catalog.Record, _ time.Time) bool {
	reset := func() {
		r.SetNull(catalog.ColumnDateAddedClean)
		r.SetNull(catalog.ColumnYearAdded)
		r.SetNull(catalog.ColumnMonthAdded)
		r.SetNull(catalog.ColumnDayOfWeekAdded)
	}

	raw, ok := r.Get(catalog.ColumnDateAdded)
	if !ok {
		reset()
		return true
	}
	t, err := dateparse.ParseAny(strings.TrimSpace(raw))
	if err != nil {
		reset()
		return false
	}
	r.Set(catalog.ColumnDateAddedClean, t.Format("2006-01-02"))
	r.SetInt(catalog.ColumnYearAdded, t.Year())
	r.SetInt(catalog.ColumnMonthAdded, int(t.Month()))
	r.SetInt(catalog.ColumnDayOfWeekAdded, weekdayIndex(t.Weekday()))
	return true
}

// weekdayIndex maps a weekday to 0 for Monday through 6 for Sunday.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func duration(r *catalog.Record, _ time.Time) bool {
	raw, _ := r.Get(catalog.ColumnDuration)

	if unit := durationUnitRe.FindString(raw); unit != "" {
		r.Set(catalog.ColumnDurationType, unit)
	} else {
		r.SetNull(catalog.ColumnDurationType)
	}

	digits := durationValueRe.FindString(raw)
	value, err := strconv.ParseFloat(digits, 64)
	if digits == "" || err != nil {
		r.SetNull(catalog.ColumnDurationValue)
		r.SetNull(catalog.ColumnDurationMinutes)
		return raw == ""
	}
	r.SetFloat(catalog.ColumnDurationValue, value)

	minutes := value
	if r.Value(catalog.ColumnType) != catalog.TypeMovie {
		minutes = value * SeasonMinutes
	}
	r.SetFloat(catalog.ColumnDurationMinutes, minutes)
	return true
}

func multiValue(source, countCol, primaryCol string) feature {
	return func(r *catalog.Record, _ time.Time) bool {
		raw, ok := r.Get(source)
		if !ok {
			r.SetInt(countCol, 0)
			r.Set(primaryCol, UnknownPrimary)
			return true
		}
		parts := strings.Split(raw, ",")
		r.SetInt(countCol, len(parts))
		r.Set(primaryCol, strings.TrimSpace(parts[0]))
		return true
	}
}

func castCount(r *catalog.Record, _ time.Time) bool {
	raw, ok := r.Get(catalog.ColumnCast)
	if !ok || raw == UnknownCast {
		r.SetInt(catalog.ColumnNumCast, 0)
		return true
	}
	r.SetInt(catalog.ColumnNumCast, len(strings.Split(raw, ",")))
	return true
}

func contentAge(r *catalog.Record, now time.Time) bool {
	year, ok := r.Int(catalog.ColumnReleaseYear)
	if !ok {
		r.SetNull(catalog.ColumnContentAge)
		return r.IsNull(catalog.ColumnReleaseYear)
	}
	r.SetInt(catalog.ColumnContentAge, now.Year()-year)
	return true
}

func releaseDecade(r *catalog.Record, _ time.Time) bool {
	year, ok := r.Int(catalog.ColumnReleaseYear)
	if !ok {
		r.SetNull(catalog.ColumnReleaseDecade)
		return r.IsNull(catalog.ColumnReleaseYear)
	}
	r.SetInt(catalog.ColumnReleaseDecade, floorDiv(year, 10)*10)
	return true
}

// floorDiv rounds toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func typeFlags(r *catalog.Record, _ time.Time) bool {
	t := r.Value(catalog.ColumnType)
	r.SetBool(catalog.ColumnIsMovie, t == catalog.TypeMovie)
	r.SetBool(catalog.ColumnIsTVShow, t == catalog.TypeTVShow)
	return true
}

func maturity(r *catalog.Record, _ time.Time) bool {
	r.SetBool(catalog.ColumnIsMature, MatureRatings[r.Value(catalog.ColumnRating)])
	return true
}
