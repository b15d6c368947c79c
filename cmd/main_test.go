package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-insights/charts"
	"cine-insights/config"
	"cine-insights/forecast"
	"cine-insights/model"
)

func TestApplyPathFlags(t *testing.T) {
	base := config.Config{
		InputPath:     "raw.csv",
		ProcessedPath: "processed.csv",
		FiguresDir:    "figures",
		ResultsDir:    "results",
	}

	tests := []struct {
		command string
		input   string
		output  string
		want    func(c *config.Config)
		wantErr bool
	}{
		{command: "preprocess", input: "in.csv", output: "out.csv", want: func(c *config.Config) {
			c.InputPath, c.ProcessedPath = "in.csv", "out.csv"
		}},
		{command: "run", input: "in.csv", output: "out.csv", want: func(c *config.Config) {
			c.InputPath, c.ProcessedPath = "in.csv", "out.csv"
		}},
		{command: "eda", input: "clean.csv", output: "charts", want: func(c *config.Config) {
			c.ProcessedPath, c.FiguresDir = "clean.csv", "charts"
		}},
		{command: "model", input: "clean.csv", output: "models", want: func(c *config.Config) {
			c.ProcessedPath, c.ResultsDir = "clean.csv", "models"
		}},
		{command: "forecast", output: "q.csv", want: func(c *config.Config) {
			c.ForecastPath = "q.csv"
		}},
		{command: "eda", want: func(c *config.Config) {}},
		{command: "stats", want: func(c *config.Config) {}},
		{command: "forecast", input: "in.csv", wantErr: true},
		{command: "stats", output: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s in=%q out=%q", tt.command, tt.input, tt.output), func(t *testing.T) {
			got := base
			err := applyPathFlags(tt.command, tt.input, tt.output, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			want := base
			tt.want(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestNormalizeType(t *testing.T) {
	for in, want := range map[string]string{
		"":        "",
		"movie":   "Movie",
		" Movie ": "Movie",
		"TV Show": "TV Show",
		"tv":      "TV Show",
		"tv-show": "TV Show",
	} {
		got, err := normalizeType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := normalizeType("documentary")
	assert.Error(t, err)
}

type paths struct {
	raw, processed, figures, results string
}

func setupEnv(t *testing.T) paths {
	t.Helper()
	dir := t.TempDir()
	p := paths{
		raw:       filepath.Join(dir, "data", "raw.csv"),
		processed: filepath.Join(dir, "data", "processed.csv"),
		figures:   filepath.Join(dir, "figures"),
		results:   filepath.Join(dir, "results"),
	}
	t.Setenv("INPUT_PATH", p.raw)
	t.Setenv("PROCESSED_PATH", p.processed)
	t.Setenv("DATA_PATH", filepath.Join(dir, "data"))
	t.Setenv("FIGURES_DIR", p.figures)
	t.Setenv("RESULTS_DIR", p.results)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_DIR", "")
	t.Setenv("SUMMARY_XLSX", "")
	t.Setenv("FORECAST_PATH", "")
	t.Setenv("PIPELINE_SCHEDULE", "")
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, dbDir, inputPath, outputPath, schedule = false, "", "", "", ""
	dailyHours, listModels = nil, false
	statsQuery = titleFilter{Limit: recentLimit}
	current = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeRawCatalog(t *testing.T, path string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	ratings := []string{"PG-13", "TV-MA", "R", "TV-14", "PG"}
	genres := []string{"Dramas", "Comedies, Dramas", "Documentaries", "International TV Shows, TV Dramas"}

	var b strings.Builder
	b.WriteString("show_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in\n")
	for i := 0; i < n; i++ {
		kind, duration := "Movie", fmt.Sprintf("%d min", 80+i%60)
		if i%3 == 0 {
			kind, duration = "TV Show", fmt.Sprintf("%d Seasons", 1+i%4)
		}
		fmt.Fprintf(&b, "s%d,%s,Title %d,Director %d,\"Actor %d\",United States,\"May %d, 2019\",%d,%s,%s,\"%s\"\n",
			i, kind, i, i%5, i, 1+i%28, 1990+i%30, ratings[i%len(ratings)], duration, genres[i%len(genres)])
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
}

func TestOutputFlagFollowsCommand(t *testing.T) {
	p := setupEnv(t)
	dir := t.TempDir()
	raw := filepath.Join(dir, "in", "catalog.csv")
	processed := filepath.Join(dir, "clean", "catalog.csv")
	figures := filepath.Join(dir, "charts")
	results := filepath.Join(dir, "models")
	quarters := filepath.Join(dir, "exports", "quarters.csv")
	db := filepath.Join(dir, "db")
	writeRawCatalog(t, raw, 60)

	_, err := execute(t, "preprocess", "-i", raw, "-o", processed, "--db", db)
	require.NoError(t, err)
	assert.FileExists(t, processed)
	assert.NoFileExists(t, p.processed)

	_, err = execute(t, "eda", "-i", processed, "-o", figures)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(figures, charts.FileContentDistribution))
	assert.NoFileExists(t, filepath.Join(p.figures, charts.FileContentDistribution))

	_, err = execute(t, "model", "-i", processed, "-o", results)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(results, model.FileChurnModel))
	assert.NoFileExists(t, filepath.Join(p.results, model.FileChurnModel))

	_, err = execute(t, "forecast", "-o", quarters)
	require.NoError(t, err)
	assert.FileExists(t, quarters)
	assert.NoFileExists(t, filepath.Join(p.results, forecast.FileForecast))

	out, err := execute(t, "stats", "--db", db, "--type", "tv show")
	require.NoError(t, err)
	assert.Contains(t, out, "Matching Titles (20)")
	assert.Contains(t, out, "TV Show")

	out, err = execute(t, "stats", "--db", db, "--search", "Title 1", "--type", "movie", "--limit", "20")
	require.NoError(t, err)
	// Title 1 and Title 10-19, minus the TV shows 12, 15 and 18.
	assert.Contains(t, out, "Matching Titles (8)")
	assert.NotContains(t, out, "Title 12")

	out, err = execute(t, "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Recent Runs")
	assert.Contains(t, out, "Sample Titles")
}

func TestCommandErrors(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "forecast", "-i", "titles.csv")
	assert.ErrorContains(t, err, "no --input")

	_, err = execute(t, "stats")
	assert.ErrorContains(t, err, "no database configured")

	_, err = execute(t, "stats", "--db", t.TempDir(), "--type", "documentary")
	assert.ErrorContains(t, err, "unknown title type")

	_, err = execute(t, "run", "--at", "25")
	assert.ErrorContains(t, err, "invalid hour 25")
}

func TestModelList(t *testing.T) {
	p := setupEnv(t)

	out, err := execute(t, "model", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "Supported Models")
	assert.Contains(t, out, "kmeans_plus_plus")
	assert.Contains(t, out, "random_forest_classifier")
	assert.NoDirExists(t, p.results)
}
