// Package config loads the pipeline configuration from the environment.
// A .env file in the working directory is honoured through godotenv.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every path and optional integration used by the stages.
type Config struct {
	InputPath     string `envconfig:"INPUT_PATH" default:"data/netflix_titles.csv" validate:"required"`
	ProcessedPath string `envconfig:"PROCESSED_PATH" default:"data/netflix_processed.csv" validate:"required"`
	DataDir       string `envconfig:"DATA_PATH" default:"./data" validate:"required"`
	FiguresDir    string `envconfig:"FIGURES_DIR" default:"outputs/figures" validate:"required"`
	ResultsDir    string `envconfig:"RESULTS_DIR" default:"outputs/results" validate:"required"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// DBDir enables the SQLite catalog snapshot when set.
	DBDir string `envconfig:"DB_DIR"`
	// SummaryXLSX enables the workbook export of the EDA summary when set.
	SummaryXLSX string `envconfig:"SUMMARY_XLSX"`
	// ForecastPath overrides RESULTS_DIR/revenue_forecast.csv.
	ForecastPath string `envconfig:"FORECAST_PATH"`

	// Schedule is a six-field cron spec used by `run --schedule`.
	Schedule string `envconfig:"PIPELINE_SCHEDULE"`

	Email EmailConfig `envconfig:"EMAIL"`
}

// EmailConfig configures run report notifications.
type EmailConfig struct {
	SMTPHost       string `envconfig:"SMTP_HOST"`
	SMTPPort       int    `envconfig:"SMTP_PORT" default:"587" validate:"min=1,max=65535"`
	SenderEmail    string `envconfig:"SENDER" validate:"omitempty,email"`
	SenderPassword string `envconfig:"PASSWORD"`
	RecipientEmail string `envconfig:"RECIPIENT" validate:"omitempty,email"`
}

// Enabled reports whether enough is configured to send mail.
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != "" && e.RecipientEmail != ""
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
