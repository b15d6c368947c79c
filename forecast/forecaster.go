package forecast

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"cine-insights/charts"
	"cine-insights/console"
)

// Forecast output.
const (
	FileForecast   = "revenue_forecast.csv"
	DefaultPeriods = 12
	dateLayout     = "2006-01-02"
)

// Result is the outcome of one forecasting run.
type Result struct {
	History  []Observation
	Forecast []Observation
	Model    *ARIMA
	CSVPath  string
	Figure   string
}

// Forecaster fits the revenue model and writes its projection.
type Forecaster struct {
	resultsDir string
	renderer   *charts.Renderer
	logger     *zap.Logger
	out        io.Writer
	periods    int
	csvPath    string
}

// NewForecaster creates a forecaster writing to resultsDir. The chart is
// skipped when renderer is nil.
func NewForecaster(resultsDir string, renderer *charts.Renderer, logger *zap.Logger, out io.Writer) *Forecaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Forecaster{
		resultsDir: resultsDir,
		renderer:   renderer,
		logger:     logger,
		out:        out,
		periods:    DefaultPeriods,
	}
}

// WithCSVPath writes the forecast CSV to path instead of
// resultsDir/revenue_forecast.csv.
func (f *Forecaster) WithCSVPath(path string) *Forecaster {
	f.csvPath = path
	return f
}

// CSVPath returns where Run writes the forecast.
func (f *Forecaster) CSVPath() string {
	if f.csvPath != "" {
		return f.csvPath
	}
	return filepath.Join(f.resultsDir, FileForecast)
}

// Run fits ARIMA(1,1,1) to the revenue history and forecasts the following
// quarters.
func (f *Forecaster) Run(ctx context.Context) (*Result, error) {
	console.Banner(f.out, "REVENUE FORECASTING")
	history := RevenueHistory()

	fmt.Fprintln(f.out, "Training ARIMA(1,1,1) model...")
	model := NewARIMA()
	if err := model.Fit(Values(history)); err != nil {
		return nil, err
	}
	f.logger.Info("ARIMA fitted",
		zap.Float64("phi", model.Phi),
		zap.Float64("theta", model.Theta),
		zap.Float64("sigma2", model.Sigma2))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values, err := model.Forecast(f.periods)
	if err != nil {
		return nil, err
	}
	quarters := NextQuarters(history[len(history)-1].Quarter, f.periods)
	projected := make([]Observation, f.periods)
	for i := range projected {
		projected[i] = Observation{Quarter: quarters[i], Value: values[i]}
	}

	res := &Result{History: history, Forecast: projected, Model: model}
	res.CSVPath = f.CSVPath()
	if err := WriteCSV(res.CSVPath, projected); err != nil {
		return nil, err
	}
	f.logger.Info("forecast saved", zap.String("path", res.CSVPath), zap.Int("periods", f.periods))

	if f.renderer != nil {
		res.Figure, err = f.renderer.RevenueForecast(points(history), points(projected))
		if err != nil {
			return nil, err
		}
	}

	f.render(res)
	return res, nil
}

func (f *Forecaster) render(res *Result) {
	console.KeyValues(f.out, [][2]string{
		{"AR coefficient", fmt.Sprintf("%.4f", res.Model.Phi)},
		{"MA coefficient", fmt.Sprintf("%.4f", res.Model.Theta)},
		{"Residual variance", fmt.Sprintf("%.6f", res.Model.Sigma2)},
	})
	console.Heading(f.out, "Forecast")
	rows := make([][]string, len(res.Forecast))
	for i, o := range res.Forecast {
		rows[i] = []string{o.Quarter.Format(dateLayout), fmt.Sprintf("%.2f", o.Value)}
	}
	console.Table(f.out, []string{"Quarter", "Revenue (B)"}, rows)
	fmt.Fprintf(f.out, "Forecast saved: %s\n", res.CSVPath)
}

// WriteCSV writes the projection as quarter,forecasted_revenue_billions.
func WriteCSV(path string, obs []Observation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	records := [][]string{{"quarter", "forecasted_revenue_billions"}}
	for _, o := range obs {
		records = append(records, []string{
			o.Quarter.Format(dateLayout),
			strconv.FormatFloat(o.Value, 'f', -1, 64),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func points(obs []Observation) []charts.Point {
	out := make([]charts.Point, len(obs))
	for i, o := range obs {
		out[i] = charts.Point{Time: o.Quarter, Value: o.Value}
	}
	return out
}
