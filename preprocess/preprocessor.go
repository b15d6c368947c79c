package preprocess

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"cine-insights/catalog"
)

// Step names in execution order.
const (
	StepExplore     = "explore"
	StepImpute      = "handle_missing_values"
	StepEngineer    = "engineer_features"
	StepDeduplicate = "remove_duplicates"
	StepValidate    = "validate"
)

// Clock returns the current time. It is injected so content age and the
// future-year check are reproducible.
type Clock func() time.Time

// Preprocessor runs the cleaning pipeline over a catalog.
type Preprocessor struct {
	logger *zap.Logger
	out    io.Writer
	clock  Clock
}

// NewPreprocessor creates a preprocessor. Reports are written to out; a nil
// out discards them and a nil clock uses time.Now.
func NewPreprocessor(logger *zap.Logger, out io.Writer, clock Clock) *Preprocessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	if clock == nil {
		clock = time.Now
	}
	return &Preprocessor{logger: logger, out: out, clock: clock}
}

// Pipeline builds the ordered steps, recording their outcomes into report.
func (p *Preprocessor) Pipeline(report *Report) *Pipeline {
	now := p.clock()
	pipe := NewPipeline(p.logger)

	pipe.AddStep(StepExplore, func(_ context.Context, ds *catalog.Dataset) (*catalog.Dataset, error) {
		Explore(ds).Render(p.out)
		return ds, nil
	})

	pipe.AddStep(StepImpute, func(_ context.Context, ds *catalog.Dataset) (*catalog.Dataset, error) {
		res := FillMissing(ds)
		report.Imputed = res.Filled
		report.RowsDropped = res.RowsDropped
		rows, cols := ds.Shape()
		p.logger.Info("missing values handled",
			zap.Int("rows", rows),
			zap.Int("columns", cols),
			zap.Int("dropped", res.RowsDropped))
		return ds, nil
	})

	pipe.AddStep(StepEngineer, func(_ context.Context, ds *catalog.Dataset) (*catalog.Dataset, error) {
		res := EngineerFeatures(ds, now, p.logger)
		report.Capabilities = res.Applied
		report.UnparseableDates = res.Failures[catalog.CapDateParts]
		rows, cols := ds.Shape()
		p.logger.Info("feature engineering completed",
			zap.Int("rows", rows),
			zap.Int("columns", cols),
			zap.Int("feature_groups", len(res.Applied)))
		return ds, nil
	})

	pipe.AddStep(StepDeduplicate, func(_ context.Context, ds *catalog.Dataset) (*catalog.Dataset, error) {
		removed, err := Deduplicate(ds)
		if err != nil {
			return ds, err
		}
		report.DuplicatesRemoved = removed
		p.logger.Info("duplicates removed", zap.Int("count", removed))
		return ds, nil
	})

	pipe.AddStep(StepValidate, func(_ context.Context, ds *catalog.Dataset) (*catalog.Dataset, error) {
		report.Issues = Validate(ds, now)
		report.RenderValidation(p.out)
		return ds, nil
	})

	return pipe
}

// Process runs the pipeline over ds in place.
func (p *Preprocessor) Process(ctx context.Context, ds *catalog.Dataset) (*catalog.Dataset, *Report, error) {
	report := &Report{StartedAt: p.clock()}
	report.OriginalRows, report.OriginalColumns = ds.Shape()

	ds, err := p.Pipeline(report).Run(ctx, ds)
	if err != nil {
		return nil, nil, err
	}
	report.finish(ds, p.clock())
	return ds, report, nil
}

// Run loads inputPath, processes it, saves the result to outputPath and
// writes the summary report.
func (p *Preprocessor) Run(ctx context.Context, inputPath, outputPath string) (*catalog.Dataset, *Report, error) {
	p.logger.Info("loading dataset", zap.String("path", inputPath))
	ds, err := catalog.Load(inputPath)
	if err != nil {
		return nil, nil, err
	}
	rows, cols := ds.Shape()
	p.logger.Info("data loaded", zap.Int("rows", rows), zap.Int("columns", cols))

	ds, report, err := p.Process(ctx, ds)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to preprocess %s: %w", inputPath, err)
	}
	report.InputPath = inputPath
	report.OutputPath = outputPath

	if err := catalog.Save(ds, outputPath); err != nil {
		return nil, nil, err
	}
	p.logger.Info("processed data saved",
		zap.String("path", outputPath),
		zap.Int("rows", report.FinalRows),
		zap.Int("columns", report.FinalColumns))

	report.Render(p.out)
	return ds, report, nil
}
