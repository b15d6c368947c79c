// Package analysis aggregates the cleaned catalog into descriptive
// statistics: describe-style summaries of numeric columns, value counts of
// categorical ones, and the EDA summary printed after chart generation.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Description is the describe() row of a numeric column.
type Description struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe summarises values. Std is the sample standard deviation and is
// NaN for fewer than two values; every statistic is NaN for no values.
func Describe(column string, values []float64) Description {
	d := Description{Column: column, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		d.Mean, d.Std, d.Min, d.Q25, d.Median, d.Q75, d.Max = nan, nan, nan, nan, nan, nan, nan
		return d
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		d.Std = stat.StdDev(sorted, nil)
	} else {
		d.Std = math.NaN()
	}
	d.Min = floats.Min(sorted)
	d.Max = floats.Max(sorted)
	d.Q25 = Quantile(sorted, 0.25)
	d.Median = Quantile(sorted, 0.5)
	d.Q75 = Quantile(sorted, 0.75)
	return d
}

// Quantile returns the p-quantile of sorted values with linear interpolation
// between closest ranks, the convention used by pandas describe().
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// Median of unsorted values.
func Median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Quantile(sorted, 0.5)
}

// Count is one entry of a value-count table.
type Count struct {
	Value string
	Count int
}

// ValueCounts tallies non-empty values, most frequent first. Ties are
// ordered by value so the output is deterministic.
func ValueCounts(values []string) []Count {
	tally := make(map[string]int)
	for _, v := range values {
		if v == "" {
			continue
		}
		tally[v]++
	}
	out := make([]Count, 0, len(tally))
	for v, n := range tally {
		out = append(out, Count{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Top returns at most n leading entries.
func Top(counts []Count, n int) []Count {
	if len(counts) <= n {
		return counts
	}
	return counts[:n]
}

// Percent returns part/total*100, or 0 for an empty total.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
