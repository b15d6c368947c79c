package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// ErrNotFitted is returned when forecasting before Fit.
var ErrNotFitted = errors.New("model has not been fitted")

// minObservations is the shortest series an ARIMA(1,1,1) is fitted on.
const minObservations = 4

// ARIMA is an ARIMA(1,1,1) model without constant:
//
//	z_t = y_t - y_{t-1}
//	z_t = Phi*z_{t-1} + e_t + Theta*e_{t-1}
//
// fitted by conditional sum of squares with e_0 = 0.
type ARIMA struct {
	Phi    float64
	Theta  float64
	Sigma2 float64
	// CSS is the minimised conditional sum of squared residuals.
	CSS float64

	last  float64
	diffs []float64
	resid []float64
}

// NewARIMA creates an unfitted model.
func NewARIMA() *ARIMA {
	return &ARIMA{}
}

// Fit estimates Phi and Theta with Nelder-Mead. Both are searched through a
// tanh transform so the fitted model stays stationary and invertible.
func (m *ARIMA) Fit(y []float64) error {
	if len(y) < minObservations {
		return fmt.Errorf("need at least %d observations, got %d", minObservations, len(y))
	}
	z := make([]float64, len(y)-1)
	floats.SubTo(z, y[1:], y[:len(y)-1])

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			ss, _ := css(z, math.Tanh(x[0]), math.Tanh(x[1]))
			return ss
		},
	}
	result, err := optimize.Minimize(problem, []float64{0, 0}, nil, &optimize.NelderMead{})
	if err != nil {
		return fmt.Errorf("failed to fit ARIMA: %w", err)
	}

	m.Phi = math.Tanh(result.X[0])
	m.Theta = math.Tanh(result.X[1])
	m.CSS, m.resid = css(z, m.Phi, m.Theta)
	m.Sigma2 = m.CSS / float64(len(z)-1)
	m.diffs = z
	m.last = y[len(y)-1]
	return nil
}

// Residuals returns the in-sample innovations of the differenced series.
func (m *ARIMA) Residuals() []float64 {
	return m.resid
}

// Forecast projects the level series steps periods ahead.
func (m *ARIMA) Forecast(steps int) ([]float64, error) {
	if m.diffs == nil {
		return nil, ErrNotFitted
	}
	n := len(m.diffs)
	out := make([]float64, steps)
	level := m.last
	z := m.Phi*m.diffs[n-1] + m.Theta*m.resid[n-1]
	for h := range out {
		if h > 0 {
			z *= m.Phi
		}
		level += z
		out[h] = level
	}
	return out, nil
}

// css runs the innovation recursion over z and returns the sum of squares
// and the residuals. The first difference only conditions the recursion.
func css(z []float64, phi, theta float64) (float64, []float64) {
	resid := make([]float64, len(z))
	ss := 0.0
	for t := 1; t < len(z); t++ {
		resid[t] = z[t] - phi*z[t-1] - theta*resid[t-1]
		ss += resid[t] * resid[t]
	}
	return ss, resid
}
