package forecast

import (
	"bytes"
	"context"
	"encoding/csv"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-insights/charts"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestQuarterEnd(t *testing.T) {
	assert.Equal(t, date(2020, time.March, 31), QuarterEnd(2020, 1))
	assert.Equal(t, date(2020, time.June, 30), QuarterEnd(2020, 2))
	assert.Equal(t, date(2020, time.September, 30), QuarterEnd(2020, 3))
	assert.Equal(t, date(2020, time.December, 31), QuarterEnd(2020, 4))
}

func TestRevenueHistory(t *testing.T) {
	history := RevenueHistory()
	require.Len(t, history, 20)
	assert.Equal(t, date(2020, time.March, 31), history[0].Quarter)
	assert.Equal(t, 6.15, history[0].Value)
	assert.Equal(t, date(2024, time.December, 31), history[19].Quarter)
	assert.Equal(t, 16.35, history[19].Value)
}

func TestNextQuarters(t *testing.T) {
	next := NextQuarters(date(2024, time.December, 31), 12)
	require.Len(t, next, 12)
	assert.Equal(t, date(2025, time.March, 31), next[0])
	assert.Equal(t, date(2025, time.June, 30), next[1])
	assert.Equal(t, date(2027, time.December, 31), next[11])
}

// arma11 integrates a simulated ARMA(1,1) difference series into levels.
func arma11(n int, phi, theta float64) []float64 {
	rng := rand.New(rand.NewPCG(7, 7))
	y := make([]float64, n+1)
	z, e := 0.0, 0.0
	for t := 1; t <= n; t++ {
		next := rng.NormFloat64()
		z = phi*z + next + theta*e
		e = next
		y[t] = y[t-1] + z
	}
	return y
}

func TestARIMARecoversCoefficients(t *testing.T) {
	m := NewARIMA()
	require.NoError(t, m.Fit(arma11(2000, 0.6, 0.3)))

	assert.InDelta(t, 0.6, m.Phi, 0.1)
	assert.InDelta(t, 0.3, m.Theta, 0.1)
	assert.InDelta(t, 1.0, m.Sigma2, 0.15)
}

func TestARIMAForecastRecursion(t *testing.T) {
	m := &ARIMA{
		Phi:   0.5,
		Theta: 0.2,
		last:  10,
		diffs: []float64{1, 2},
		resid: []float64{0, 1},
	}
	got, err := m.Forecast(3)
	require.NoError(t, err)

	// z1 = 0.5*2 + 0.2*1 = 1.2, then 0.6, 0.3.
	assert.InDeltaSlice(t, []float64{11.2, 11.8, 12.1}, got, 1e-12)
}

func TestARIMAErrors(t *testing.T) {
	_, err := NewARIMA().Forecast(3)
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.Error(t, NewARIMA().Fit([]float64{1, 2, 3}))
}

func TestForecasterRun(t *testing.T) {
	dir := t.TempDir()
	style := charts.DefaultStyle()
	style.DPI = 40
	renderer, err := charts.NewRenderer(filepath.Join(dir, "figures"), style, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	res, err := NewForecaster(filepath.Join(dir, "results"), renderer, nil, &out).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Forecast, DefaultPeriods)
	assert.Equal(t, date(2025, time.March, 31), res.Forecast[0].Quarter)
	assert.Greater(t, res.Model.Phi, 0.0)
	prev := res.History[len(res.History)-1].Value
	for _, o := range res.Forecast {
		assert.Greater(t, o.Value, prev)
		prev = o.Value
	}

	f, err := os.Open(res.CSVPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, DefaultPeriods+1)
	assert.Equal(t, []string{"quarter", "forecasted_revenue_billions"}, records[0])
	assert.Equal(t, "2025-03-31", records[1][0])
	assert.Equal(t, "2027-12-31", records[12][0])

	assert.FileExists(t, res.Figure)
	assert.Contains(t, out.String(), "Training ARIMA(1,1,1) model...")
}

func TestForecasterWithoutRenderer(t *testing.T) {
	res, err := NewForecaster(t.TempDir(), nil, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Figure)
	assert.FileExists(t, res.CSVPath)
}

func TestForecasterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewForecaster(t.TempDir(), nil, nil, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForecasterCustomCSVPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "exports", "quarters.csv")
	f := NewForecaster(filepath.Join(dir, "results"), nil, nil, nil).WithCSVPath(target)
	assert.Equal(t, target, f.CSVPath())

	res, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, target, res.CSVPath)
	assert.FileExists(t, target)
	assert.NoFileExists(t, filepath.Join(dir, "results", FileForecast))
}
