package model

import (
	"fmt"
	"math"

	"github.com/ezoic/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centres each column on its mean and divides by its
// population standard deviation. Constant columns keep a scale of 1.
// Fitting is done by scigo; the learned statistics are kept here so the
// scaler persists with the model artifacts.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Fit learns the column statistics of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	n, d := X.Dims()
	if n == 0 {
		return fmt.Errorf("cannot fit scaler on an empty matrix")
	}

	scaler := preprocessing.NewStandardScaler(true, true)
	if err := scaler.Fit(X); err != nil {
		return fmt.Errorf("failed to fit scaler: %w", err)
	}

	// Row 0 maps to -mean/scale and row 1 to (1-mean)/scale.
	basis := mat.NewDense(2, d, nil)
	for j := 0; j < d; j++ {
		basis.Set(1, j, 1)
	}
	unit, err := scaler.Transform(basis)
	if err != nil {
		return fmt.Errorf("failed to read scaler statistics: %w", err)
	}

	s.Mean = make([]float64, d)
	s.Scale = make([]float64, d)
	for j := 0; j < d; j++ {
		zero, one := unit.At(0, j), unit.At(1, j)
		scale := 1 / (one - zero)
		if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
			s.Mean[j] = stat.Mean(mat.Col(nil, j, X), nil)
			s.Scale[j] = 1
			continue
		}
		s.Mean[j] = -zero * scale
		s.Scale[j] = scale
	}
	return nil
}

// Transform returns a scaled copy of X.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if s.Mean == nil {
		return nil, ErrNotFitted
	}
	n, d := X.Dims()
	if d != len(s.Mean) {
		return nil, fmt.Errorf("scaler fitted on %d features, got %d", len(s.Mean), d)
	}
	out := mat.NewDense(n, d, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return out, nil
}

// FitTransform fits on X and returns it scaled.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
