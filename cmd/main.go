package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cine-insights/charts"
	"cine-insights/config"
	"cine-insights/console"
	"cine-insights/fetcher"
	"cine-insights/forecast"
	"cine-insights/logging"
	"cine-insights/model"
	"cine-insights/notifier"
	"cine-insights/preprocess"
	"cine-insights/scheduler"
	"cine-insights/storage"
)

var (
	verbose    bool
	dbDir      string
	inputPath  string
	outputPath string
	schedule   string
	dailyHours []int
	listModels bool
	statsQuery titleFilter
)

// app holds what every command shares once flags and env are resolved.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "cine-insights",
	Short: "Catalog preprocessing, analysis, modeling and forecasting",
	Long: `cine-insights cleans a title catalog CSV, renders exploratory charts,
trains churn and segmentation models and forecasts quarterly revenue.

Paths and integrations are read from the environment (and .env);
flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if dbDir != "" {
			cfg.DBDir = dbDir
		}
		if err := applyPathFlags(cmd.Name(), inputPath, outputPath, cfg); err != nil {
			return err
		}
		if schedule != "" {
			cfg.Schedule = schedule
		}

		logger, err := logging.New(cfg.LogLevel, verbose)
		if err != nil {
			return err
		}
		current = &app{cfg: cfg, logger: logger}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			_ = current.logger.Sync()
		}
	},
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Clean the raw catalog and write the processed CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		job, closeStore, err := current.preprocessJob(false)
		if err != nil {
			return err
		}
		defer closeStore()
		return job.Run(cmd.Context())
	},
}

var edaCmd = &cobra.Command{
	Use:   "eda",
	Short: "Render exploratory charts and the statistical summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := current.edaJob()
		if err != nil {
			return err
		}
		return job.Run(cmd.Context())
	},
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Train the churn classifier and the segmentation model",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listModels {
			printSupportedModels(cmd.OutOrStdout(), model.NewManager())
			return nil
		}
		job, err := current.modelingJob()
		if err != nil {
			return err
		}
		return job.Run(cmd.Context())
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast quarterly revenue with ARIMA(1,1,1)",
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := current.forecastJob()
		if err != nil {
			return err
		}
		return job.Run(cmd.Context())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage, once or on a cron schedule",
	Long: `Run preprocess, eda, model and forecast in order.

With --schedule (or PIPELINE_SCHEDULE) the pipeline is registered on a
cron scheduler using a six-field spec with seconds, e.g. "0 0 10,17 * * *",
and the process runs until interrupted. --at 10,17 is shorthand for a
daily run at those hours.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.runPipeline(cmd.Context())
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the stored catalog snapshot and recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.showStats(cmd.OutOrStdout(), statsQuery)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbDir, "db", "", "directory of the SQLite catalog snapshot (overrides DB_DIR)")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "", "stage input: raw catalog CSV or URL for preprocess and run, processed CSV for eda and model")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "stage output: processed CSV, figures dir (eda), results dir (model) or forecast CSV (forecast)")
	runCmd.Flags().StringVar(&schedule, "schedule", "", "cron spec with seconds (overrides PIPELINE_SCHEDULE)")
	runCmd.Flags().IntSliceVar(&dailyHours, "at", nil, "run daily at these hours, e.g. 10,17")
	modelCmd.Flags().BoolVar(&listModels, "list", false, "list the registered model types and exit")
	statsCmd.Flags().StringVar(&statsQuery.Type, "type", "", `only list titles of this type ("Movie" or "TV Show")`)
	statsCmd.Flags().StringVar(&statsQuery.Search, "search", "", "only list titles whose name contains this text")
	statsCmd.Flags().IntVar(&statsQuery.Limit, "limit", recentLimit, "maximum number of runs and titles to list")

	rootCmd.AddCommand(preprocessCmd, edaCmd, modelCmd, forecastCmd, runCmd, statsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// applyPathFlags points --input and --output at the paths the named command
// actually reads and writes.
func applyPathFlags(command, input, output string, cfg *config.Config) error {
	switch command {
	case "preprocess", "run":
		if input != "" {
			cfg.InputPath = input
		}
		if output != "" {
			cfg.ProcessedPath = output
		}
	case "eda":
		if input != "" {
			cfg.ProcessedPath = input
		}
		if output != "" {
			cfg.FiguresDir = output
		}
	case "model":
		if input != "" {
			cfg.ProcessedPath = input
		}
		if output != "" {
			cfg.ResultsDir = output
		}
	case "forecast":
		if input != "" {
			return fmt.Errorf("forecast takes no --input: the revenue series is synthetic")
		}
		if output != "" {
			cfg.ForecastPath = output
		}
	default:
		if input != "" || output != "" {
			return fmt.Errorf("%s does not accept --input or --output", command)
		}
	}
	return nil
}

func printSupportedModels(w io.Writer, m *model.Manager) {
	supported := m.ListSupportedModels()
	types := make([]string, 0, len(supported))
	for t := range supported {
		types = append(types, string(t))
	}
	sort.Strings(types)

	rows := make([][]string, len(types))
	for i, t := range types {
		rows[i] = []string{t, strings.Join(supported[model.ModelType(t)], ", ")}
	}
	console.Heading(w, "Supported Models")
	console.Table(w, []string{"Type", "Algorithms"}, rows)
}

func (a *app) renderer() (*charts.Renderer, error) {
	return charts.NewRenderer(a.cfg.FiguresDir, charts.DefaultStyle(), a.logger)
}

// openStore opens the snapshot store when one is configured. The returned
// close func is always safe to call.
func (a *app) openStore() (*storage.SQLiteStorage, func(), error) {
	if a.cfg.DBDir == "" {
		return nil, func() {}, nil
	}
	store := storage.NewSQLiteStorage(a.cfg.DBDir, a.logger)
	if err := store.Initialize(); err != nil {
		return nil, func() {}, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("failed to close storage", zap.Error(err))
		}
	}, nil
}

func (a *app) preprocessJob(notify bool) (*scheduler.PreprocessJob, func(), error) {
	pre := preprocess.NewPreprocessor(a.logger, os.Stdout, nil)
	job := scheduler.NewPreprocessJob(a.cfg.InputPath, a.cfg.ProcessedPath, pre, a.logger).
		WithFetcher(fetcher.NewFetcher(a.cfg.DataDir, a.logger))

	store, closeStore, err := a.openStore()
	if err != nil {
		return nil, closeStore, err
	}
	if store != nil {
		job.WithStorage(store)
	}

	if notify && a.cfg.Email.Enabled() {
		n, err := notifier.NewEmailNotifier(a.cfg.Email, a.logger)
		if err != nil {
			a.logger.Error("failed to create email notifier", zap.Error(err))
		} else {
			job.WithNotifier(n)
		}
	} else if notify {
		a.logger.Info("email notifications disabled: missing configuration")
	}
	return job, closeStore, nil
}

func (a *app) edaJob() (*scheduler.EDAJob, error) {
	renderer, err := a.renderer()
	if err != nil {
		return nil, err
	}
	return scheduler.NewEDAJob(a.cfg.ProcessedPath, a.cfg.SummaryXLSX, renderer, os.Stdout, a.logger), nil
}

func (a *app) modelingJob() (*scheduler.ModelingJob, error) {
	renderer, err := a.renderer()
	if err != nil {
		return nil, err
	}
	trainer := model.NewTrainer(a.cfg.ResultsDir, renderer, a.logger, os.Stdout)
	return scheduler.NewModelingJob(a.cfg.ProcessedPath, trainer), nil
}

func (a *app) forecastJob() (*scheduler.ForecastJob, error) {
	renderer, err := a.renderer()
	if err != nil {
		return nil, err
	}
	f := forecast.NewForecaster(a.cfg.ResultsDir, renderer, a.logger, os.Stdout)
	if a.cfg.ForecastPath != "" {
		f.WithCSVPath(a.cfg.ForecastPath)
	}
	return scheduler.NewForecastJob(f), nil
}

func (a *app) runPipeline(ctx context.Context) error {
	if len(dailyHours) > 0 && a.cfg.Schedule != "" {
		return fmt.Errorf("use either --at or --schedule, not both")
	}
	pre, closeStore, err := a.preprocessJob(true)
	if err != nil {
		return err
	}
	defer closeStore()
	eda, err := a.edaJob()
	if err != nil {
		return err
	}
	modeling, err := a.modelingJob()
	if err != nil {
		return err
	}
	fc, err := a.forecastJob()
	if err != nil {
		return err
	}
	pipeline := scheduler.NewPipelineJob(a.logger, pre, eda, modeling, fc)

	if a.cfg.Schedule == "" && len(dailyHours) == 0 {
		if err := pipeline.Run(ctx); err != nil {
			return err
		}
		fmt.Println("\nPipeline completed successfully")
		return nil
	}

	sched := scheduler.NewScheduler(a.logger)
	if len(dailyHours) > 0 {
		err = sched.AddDailyJob(pipeline, dailyHours...)
	} else {
		err = sched.AddJob(a.cfg.Schedule, pipeline)
	}
	if err != nil {
		return err
	}
	sched.Start()
	a.logger.Info("pipeline scheduled; press Ctrl+C to exit", zap.Strings("jobs", sched.Jobs()))

	<-ctx.Done()
	a.logger.Info("shutting down")
	sched.Stop()
	return nil
}
