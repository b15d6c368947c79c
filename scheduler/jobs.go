package scheduler

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"cine-insights/analysis"
	"cine-insights/catalog"
	"cine-insights/charts"
	"cine-insights/fetcher"
	"cine-insights/forecast"
	"cine-insights/model"
	"cine-insights/notifier"
	"cine-insights/preprocess"
	"cine-insights/storage"
)

// Job names.
const (
	JobPreprocess = "preprocess_job"
	JobEDA        = "eda_job"
	JobModeling   = "modeling_job"
	JobForecast   = "forecast_job"
	JobPipeline   = "pipeline_job"
)

// PreprocessJob cleans the raw catalog and writes the processed CSV. It
// optionally downloads a remote input, stores a snapshot and emails a
// report.
type PreprocessJob struct {
	inputPath  string
	outputPath string
	pre        *preprocess.Preprocessor
	fetcher    *fetcher.Fetcher
	store      storage.StorageInterface
	notifier   *notifier.EmailNotifier
	logger     *zap.Logger

	lastReport *preprocess.Report
	lastRunID  string
}

// NewPreprocessJob creates the preprocessing job.
func NewPreprocessJob(inputPath, outputPath string, pre *preprocess.Preprocessor, logger *zap.Logger) *PreprocessJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreprocessJob{inputPath: inputPath, outputPath: outputPath, pre: pre, logger: logger}
}

// WithFetcher enables downloading http(s) inputs.
func (j *PreprocessJob) WithFetcher(f *fetcher.Fetcher) *PreprocessJob {
	j.fetcher = f
	return j
}

// WithStorage enables the SQLite snapshot and run log.
func (j *PreprocessJob) WithStorage(s storage.StorageInterface) *PreprocessJob {
	j.store = s
	return j
}

// WithNotifier enables the emailed run report.
func (j *PreprocessJob) WithNotifier(n *notifier.EmailNotifier) *PreprocessJob {
	j.notifier = n
	return j
}

func (j *PreprocessJob) Name() string { return JobPreprocess }

// LastReport returns the report of the latest successful run.
func (j *PreprocessJob) LastReport() *preprocess.Report { return j.lastReport }

// LastRunID returns the stored id of the latest run, empty without storage.
func (j *PreprocessJob) LastRunID() string { return j.lastRunID }

func (j *PreprocessJob) Run(ctx context.Context) error {
	input := j.inputPath
	if fetcher.IsRemote(input) {
		if j.fetcher == nil {
			return fmt.Errorf("input %s is remote but no fetcher is configured", input)
		}
		path, err := j.fetcher.Fetch(ctx, input)
		if err != nil {
			return err
		}
		input = path
	}

	ds, report, err := j.pre.Run(ctx, input, j.outputPath)
	if err != nil {
		return err
	}
	j.lastReport = report
	j.lastRunID = ""

	var stats map[string]int
	if j.store != nil {
		if _, err := j.store.SaveSnapshot(ds); err != nil {
			return err
		}
		j.lastRunID, err = j.store.RecordRun(storage.Run{
			InputPath:         report.InputPath,
			OutputPath:        report.OutputPath,
			StartedAt:         report.StartedAt,
			FinishedAt:        report.FinishedAt,
			OriginalRows:      report.OriginalRows,
			FinalRows:         report.FinalRows,
			DuplicatesRemoved: report.DuplicatesRemoved,
			Issues:            report.Issues,
		})
		if err != nil {
			return err
		}
		if stats, err = j.store.GetStats(); err != nil {
			return err
		}
		j.logger.Info("run recorded",
			zap.String("run_id", j.lastRunID),
			zap.Int("titles", stats["total"]),
			zap.Int("movies", stats["movies"]),
			zap.Int("tv_shows", stats["tv_shows"]))
	}

	if j.notifier != nil {
		// A failed notification does not fail the run.
		if err := j.notifier.NotifyRunReport(j.lastRunID, report, stats); err != nil {
			j.logger.Error("failed to send run report", zap.Error(err))
		}
	}
	return nil
}

// EDAJob renders the exploratory charts and the statistical summary of the
// processed catalog.
type EDAJob struct {
	processedPath string
	summaryXLSX   string
	renderer      *charts.Renderer
	out           io.Writer
	logger        *zap.Logger
}

// NewEDAJob creates the EDA job. A non-empty summaryXLSX also exports the
// summary workbook.
func NewEDAJob(processedPath, summaryXLSX string, renderer *charts.Renderer, out io.Writer, logger *zap.Logger) *EDAJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &EDAJob{
		processedPath: processedPath,
		summaryXLSX:   summaryXLSX,
		renderer:      renderer,
		out:           out,
		logger:        logger,
	}
}

func (j *EDAJob) Name() string { return JobEDA }

func (j *EDAJob) Run(ctx context.Context) error {
	ds, err := catalog.Load(j.processedPath)
	if err != nil {
		return err
	}

	figures, err := j.renderer.RenderEDA(ds)
	if err != nil {
		return fmt.Errorf("failed to render EDA charts: %w", err)
	}
	for _, f := range figures {
		fmt.Fprintf(j.out, "✓ Saved: %s\n", f)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	summary, err := analysis.Summarize(ds)
	if err != nil {
		return err
	}
	summary.Render(j.out)

	if j.summaryXLSX != "" {
		if err := analysis.ExportXLSX(summary, j.summaryXLSX); err != nil {
			return err
		}
		j.logger.Info("summary workbook saved", zap.String("path", j.summaryXLSX))
	}
	j.logger.Info("EDA completed", zap.Int("figures", len(figures)))
	return nil
}

// ModelingJob trains the churn and segmentation models.
type ModelingJob struct {
	processedPath string
	trainer       *model.Trainer
	lastResults   *model.Results
}

func NewModelingJob(processedPath string, trainer *model.Trainer) *ModelingJob {
	return &ModelingJob{processedPath: processedPath, trainer: trainer}
}

func (j *ModelingJob) Name() string { return JobModeling }

// LastResults returns the outcome of the latest successful run.
func (j *ModelingJob) LastResults() *model.Results { return j.lastResults }

func (j *ModelingJob) Run(ctx context.Context) error {
	ds, err := catalog.Load(j.processedPath)
	if err != nil {
		return err
	}
	results, err := j.trainer.Run(ctx, ds)
	if err != nil {
		return err
	}
	j.lastResults = results
	return nil
}

// ForecastJob projects quarterly revenue.
type ForecastJob struct {
	forecaster *forecast.Forecaster
}

func NewForecastJob(f *forecast.Forecaster) *ForecastJob {
	return &ForecastJob{forecaster: f}
}

func (j *ForecastJob) Name() string { return JobForecast }

func (j *ForecastJob) Run(ctx context.Context) error {
	_, err := j.forecaster.Run(ctx)
	return err
}

// PipelineJob runs jobs in order, stopping at the first failure.
type PipelineJob struct {
	jobs   []Job
	logger *zap.Logger
}

func NewPipelineJob(logger *zap.Logger, jobs ...Job) *PipelineJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineJob{jobs: jobs, logger: logger}
}

func (j *PipelineJob) Name() string { return JobPipeline }

func (j *PipelineJob) Run(ctx context.Context) error {
	for _, job := range j.jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			return fmt.Errorf("job %s: %w", job.Name(), err)
		}
		j.logger.Info("stage completed",
			zap.String("job", job.Name()),
			zap.Duration("duration", time.Since(start)))
	}
	return nil
}
