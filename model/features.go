package model

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"cine-insights/catalog"
)

// ChurnRate is the probability of the synthetic churn label. The label is a
// demonstration stand-in drawn at random, not a signal in the catalog.
const ChurnRate = 0.15

// Candidate feature columns.
var (
	ChurnFeatures = []string{
		catalog.ColumnContentAge,
		catalog.ColumnNumGenres,
		catalog.ColumnNumCountries,
		catalog.ColumnIsMature,
	}
	SegmentationFeatures = []string{
		catalog.ColumnContentAge,
		catalog.ColumnNumGenres,
		catalog.ColumnIsMature,
	}
)

// MinFeatures is the fewest present candidate columns a model trains on.
const MinFeatures = 2

// ChurnLabels draws n Bernoulli(rate) labels from a seeded generator.
func ChurnLabels(n int, rate float64, seed uint64) []int {
	rng := rand.New(rand.NewPCG(seed, seed))
	y := make([]int, n)
	for i := range y {
		if rng.Float64() < rate {
			y[i] = 1
		}
	}
	return y
}

// FeatureMatrix builds a row-per-record matrix from the candidate columns
// the dataset has. Null or non-numeric cells become 0. It returns
// ErrInsufficientFeatures when fewer than MinFeatures columns are present.
func FeatureMatrix(ds *catalog.Dataset, candidates []string) (*mat.Dense, []string, error) {
	var features []string
	for _, c := range candidates {
		if ds.HasColumn(c) {
			features = append(features, c)
		}
	}
	if len(features) < MinFeatures || ds.Len() == 0 {
		return nil, features, ErrInsufficientFeatures
	}

	X := mat.NewDense(ds.Len(), len(features), nil)
	for i, r := range ds.Records {
		for j, c := range features {
			if v, ok := r.Float(c); ok {
				X.Set(i, j, v)
			}
		}
	}
	return X, features, nil
}
