package catalog

import "sort"

// Capability names a group of derived features that can be computed from the
// columns present in a dataset.
type Capability string

const (
	CapDateParts Capability = "date_parts"
	CapDuration  Capability = "duration"
	CapCountries Capability = "countries"
	CapGenres    Capability = "genres"
	CapCast      Capability = "cast"
	CapAge       Capability = "content_age"
	CapDecade    Capability = "release_decade"
	CapTypeFlags Capability = "type_flags"
	CapMaturity  Capability = "maturity"
)

type capabilitySpec struct {
	requires []string
	produces []string
}

var capabilitySpecs = map[Capability]capabilitySpec{
	CapDateParts: {
		requires: []string{ColumnDateAdded},
		produces: []string{ColumnDateAddedClean, ColumnYearAdded, ColumnMonthAdded, ColumnDayOfWeekAdded},
	},
	CapDuration: {
		requires: []string{ColumnDuration, ColumnType},
		produces: []string{ColumnDurationValue, ColumnDurationType, ColumnDurationMinutes},
	},
	CapCountries: {
		requires: []string{ColumnCountry},
		produces: []string{ColumnNumCountries, ColumnPrimaryCountry},
	},
	CapGenres: {
		requires: []string{ColumnListedIn},
		produces: []string{ColumnNumGenres, ColumnPrimaryGenre},
	},
	CapCast: {
		requires: []string{ColumnCast},
		produces: []string{ColumnNumCast},
	},
	CapAge: {
		requires: []string{ColumnReleaseYear},
		produces: []string{ColumnContentAge},
	},
	CapDecade: {
		requires: []string{ColumnReleaseYear},
		produces: []string{ColumnReleaseDecade},
	},
	CapTypeFlags: {
		requires: []string{ColumnType},
		produces: []string{ColumnIsMovie, ColumnIsTVShow},
	},
	CapMaturity: {
		requires: []string{ColumnRating},
		produces: []string{ColumnIsMature},
	},
}

// DerivedFeatures lists the headline engineered features in report order.
var DerivedFeatures = []string{
	ColumnYearAdded, ColumnMonthAdded, ColumnDayOfWeekAdded,
	ColumnDurationMinutes, ColumnNumCountries, ColumnPrimaryCountry,
	ColumnNumGenres, ColumnPrimaryGenre, ColumnNumCast,
	ColumnContentAge, ColumnReleaseDecade,
	ColumnIsMovie, ColumnIsTVShow, ColumnIsMature,
}

// Produces returns the derived columns written for the capability.
func (c Capability) Produces() []string {
	return capabilitySpecs[c].produces
}

// Requires returns the source columns the capability depends on.
func (c Capability) Requires() []string {
	return capabilitySpecs[c].requires
}

// Schema describes which columns a dataset has and which derived feature
// groups are therefore available.
type Schema struct {
	columns      map[string]bool
	capabilities map[Capability]bool
}

// Inspect builds the schema for a column layout.
func Inspect(columns []string) Schema {
	s := Schema{
		columns:      make(map[string]bool, len(columns)),
		capabilities: make(map[Capability]bool),
	}
	for _, c := range columns {
		s.columns[c] = true
	}
	for capability, spec := range capabilitySpecs {
		ok := true
		for _, col := range spec.requires {
			if !s.columns[col] {
				ok = false
				break
			}
		}
		if ok {
			s.capabilities[capability] = true
		}
	}
	return s
}

// Has reports whether the capability is available.
func (s Schema) Has(c Capability) bool {
	return s.capabilities[c]
}

// HasColumn reports whether the column is present.
func (s Schema) HasColumn(name string) bool {
	return s.columns[name]
}

// Capabilities returns the available capabilities sorted by name.
func (s Schema) Capabilities() []Capability {
	out := make([]Capability, 0, len(s.capabilities))
	for c := range s.capabilities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PresentFeatures filters DerivedFeatures down to the columns in the layout.
func PresentFeatures(columns []string) []string {
	s := Inspect(columns)
	var out []string
	for _, f := range DerivedFeatures {
		if s.HasColumn(f) {
			out = append(out, f)
		}
	}
	return out
}
