package forecast

import "time"

// Observation is one quarterly value.
type Observation struct {
	Quarter time.Time
	Value   float64
}

// quarterlyRevenue is the hand-authored revenue history in billions USD,
// one value per quarter from Q1 2020.
var quarterlyRevenue = []float64{
	6.15, 6.44, 6.77, 7.16, 7.49, 7.87, 8.28, 8.71,
	9.19, 9.67, 10.19, 10.74, 11.31, 11.93, 12.58, 13.25,
	13.96, 14.72, 15.51, 16.35,
}

// FirstYear is the year of the first revenue observation.
const FirstYear = 2020

// QuarterEnd returns the last day of quarter q (1-4) of year.
func QuarterEnd(year, q int) time.Time {
	// Day 0 of the following month is the last day of the quarter's final month.
	return time.Date(year, time.Month(q*3+1), 0, 0, 0, 0, 0, time.UTC)
}

// NextQuarters returns the n quarter ends following last.
func NextQuarters(last time.Time, n int) []time.Time {
	year, q := last.Year(), (int(last.Month())-1)/3+1
	out := make([]time.Time, n)
	for i := range out {
		q++
		if q > 4 {
			q = 1
			year++
		}
		out[i] = QuarterEnd(year, q)
	}
	return out
}

// RevenueHistory returns the synthetic quarterly revenue series.
func RevenueHistory() []Observation {
	out := make([]Observation, len(quarterlyRevenue))
	for i, v := range quarterlyRevenue {
		out[i] = Observation{
			Quarter: QuarterEnd(FirstYear+i/4, i%4+1),
			Value:   v,
		}
	}
	return out
}

// Values extracts the observation values in order.
func Values(obs []Observation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Value
	}
	return out
}
