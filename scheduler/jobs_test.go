package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-insights/charts"
	"cine-insights/forecast"
	"cine-insights/model"
	"cine-insights/preprocess"
	"cine-insights/storage"
)

var (
	ratings   = []string{"PG-13", "TV-MA", "R", "TV-14", "PG"}
	countries = []string{"United States", "India", "United Kingdom, France", "Japan"}
	genres    = []string{"Dramas", "Comedies, Dramas", "Documentaries", "International TV Shows, TV Dramas"}
)

func writeCatalog(t *testing.T, path string, n int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("show_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in\n")
	for i := 0; i < n; i++ {
		kind, duration := "Movie", fmt.Sprintf("%d min", 80+i%60)
		if i%3 == 0 {
			kind, duration = "TV Show", fmt.Sprintf("%d Seasons", 1+i%4)
		}
		fmt.Fprintf(&b, "s%d,%s,Title %d,Director %d,\"Actor %d, Actor %d\",\"%s\",\"March %d, 20%02d\",%d,%s,%s,\"%s\"\n",
			i, kind, i, i%7, i, i+1, countries[i%len(countries)], 1+i%28, 15+i%7,
			1995+i%28, ratings[i%len(ratings)], duration, genres[i%len(genres)])
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func TestPipelineJobEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "data", "titles.csv")
	processed := filepath.Join(dir, "data", "processed.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(input), 0755))
	writeCatalog(t, input, 60)

	style := charts.DefaultStyle()
	style.DPI = 40
	renderer, err := charts.NewRenderer(filepath.Join(dir, "figures"), style, nil)
	require.NoError(t, err)

	store := storage.NewSQLiteStorage(filepath.Join(dir, "db"), nil)
	require.NoError(t, store.Initialize())
	defer store.Close()

	var out bytes.Buffer
	pre := NewPreprocessJob(input, processed, preprocess.NewPreprocessor(nil, &out, fixedClock), nil).
		WithStorage(store)

	forest := model.DefaultForestParams()
	forest.NEstimators = 5
	trainer := model.NewTrainer(filepath.Join(dir, "results"), renderer, nil, &out).WithParams(forest, nil)
	modeling := NewModelingJob(processed, trainer)

	xlsx := filepath.Join(dir, "results", "summary.xlsx")
	pipeline := NewPipelineJob(nil,
		pre,
		NewEDAJob(processed, xlsx, renderer, &out, nil),
		modeling,
		NewForecastJob(forecast.NewForecaster(filepath.Join(dir, "results"), renderer, nil, &out)),
	)

	s := NewScheduler(nil)
	require.NoError(t, s.AddJob("0 0 10 * * *", pipeline))
	require.NoError(t, s.RunJobNow(context.Background(), JobPipeline))

	report := pre.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, 60, report.FinalRows)
	assert.NotEmpty(t, pre.LastRunID())

	stats, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 60, stats["total"])
	assert.Equal(t, 20, stats["tv_shows"])

	runs, err := store.GetRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, pre.LastRunID(), runs[0].ID)

	require.NotNil(t, modeling.LastResults())
	assert.NotNil(t, modeling.LastResults().Churn)

	for _, name := range []string{
		charts.FileContentDistribution,
		charts.FileConfusionMatrix,
		charts.FileRevenueForecast,
	} {
		assert.FileExists(t, filepath.Join(renderer.Dir(), name))
	}
	assert.FileExists(t, filepath.Join(dir, "results", forecast.FileForecast))
	assert.FileExists(t, filepath.Join(dir, "results", model.FileChurnModel))
	assert.FileExists(t, xlsx)
	assert.Contains(t, out.String(), "STATISTICAL ANALYSIS SUMMARY")
}

type failingJob struct{ name string }

func (j failingJob) Name() string                  { return j.name }
func (j failingJob) Run(ctx context.Context) error { return errors.New("boom") }

func TestPipelineJobStopsAtFirstFailure(t *testing.T) {
	after := &MockJob{name: "after"}
	p := NewPipelineJob(nil, failingJob{name: "broken"}, after)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job broken")
	assert.Zero(t, after.runCount.Load())
}

func TestPipelineJobHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := &MockJob{name: "never"}

	assert.ErrorIs(t, NewPipelineJob(nil, job).Run(ctx), context.Canceled)
	assert.Zero(t, job.runCount.Load())
}

func TestPreprocessJobRemoteWithoutFetcher(t *testing.T) {
	job := NewPreprocessJob("https://example.com/titles.csv", "out.csv",
		preprocess.NewPreprocessor(nil, nil, fixedClock), nil)
	assert.Error(t, job.Run(context.Background()))
}
