package analysis

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cine-insights/catalog"
)

func TestDescribe(t *testing.T) {
	d := Describe("x", []float64{4, 1, 3, 2})

	assert.Equal(t, 4, d.Count)
	assert.InDelta(t, 2.5, d.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), d.Std, 1e-12)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 4.0, d.Max)
	assert.InDelta(t, 1.75, d.Q25, 1e-12)
	assert.InDelta(t, 2.5, d.Median, 1e-12)
	assert.InDelta(t, 3.25, d.Q75, 1e-12)
}

func TestDescribeEdgeCases(t *testing.T) {
	empty := Describe("x", nil)
	assert.Zero(t, empty.Count)
	assert.True(t, math.IsNaN(empty.Mean))

	single := Describe("x", []float64{7})
	assert.Equal(t, 7.0, single.Median)
	assert.True(t, math.IsNaN(single.Std))
}

func TestMedianDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	assert.Equal(t, 2.0, Median(values))
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestValueCounts(t *testing.T) {
	counts := ValueCounts([]string{"b", "a", "", "b", "c", "a", "b"})

	assert.Equal(t, []Count{{"b", 3}, {"a", 2}, {"c", 1}}, counts)
	assert.Equal(t, []Count{{"b", 3}, {"a", 2}}, Top(counts, 2))
	assert.Len(t, Top(counts, 10), 3)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 25.0, Percent(1, 4))
	assert.Zero(t, Percent(1, 0))
}

const processed = "type,title,release_year,content_age_years,primary_country,primary_genre\n" +
	"Movie,A,2019,6,United States,Dramas\n" +
	"Movie,B,2021,4,India,Comedies\n" +
	"TV Show,C,2015,10,United States,Dramas\n" +
	"Movie,D,2020,5,Unknown,Dramas\n"

func mustRead(t *testing.T, body string) *catalog.Dataset {
	t.Helper()
	ds, err := catalog.Read(strings.NewReader(body))
	require.NoError(t, err)
	return ds
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(mustRead(t, processed))
	require.NoError(t, err)

	assert.Equal(t, 4, s.TotalTitles)
	assert.Equal(t, 3, s.Movies)
	assert.Equal(t, 1, s.TVShows)
	assert.Equal(t, 75.0, s.MoviePercent)
	require.NotNil(t, s.ReleaseYear)
	assert.Equal(t, 2015.0, s.ReleaseYear.Min)
	assert.Equal(t, 2021.0, s.ReleaseYear.Max)
	assert.Equal(t, 2019.5, s.ReleaseYear.Median)
	require.NotNil(t, s.ContentAge)
	assert.Equal(t, 6.25, s.ContentAge.Mean)
	assert.Equal(t, Count{"United States", 2}, s.TopCountries[0])
	assert.Equal(t, Count{"Dramas", 3}, s.TopGenres[0])
}

func TestSummarizeOptionalColumns(t *testing.T) {
	s, err := Summarize(mustRead(t, "type\nMovie\n"))
	require.NoError(t, err)
	assert.Nil(t, s.ReleaseYear)
	assert.Nil(t, s.ContentAge)
	assert.Empty(t, s.TopCountries)

	var out bytes.Buffer
	s.Render(&out)
	assert.Contains(t, out.String(), "Movies: 1 (100.0%)")
	assert.NotContains(t, out.String(), "Release Year Statistics")
}

func TestSummarizeRequiresType(t *testing.T) {
	_, err := Summarize(mustRead(t, "title\nA\n"))
	assert.ErrorIs(t, err, catalog.ErrMissingColumn)
}

func TestRenderSummary(t *testing.T) {
	s, err := Summarize(mustRead(t, processed))
	require.NoError(t, err)

	var out bytes.Buffer
	s.Render(&out)
	text := out.String()
	assert.Contains(t, text, "STATISTICAL ANALYSIS SUMMARY")
	assert.Contains(t, text, "TV Shows: 1 (25.0%)")
	assert.Contains(t, text, "Average Content Age:")
	assert.Contains(t, text, "United States")
}

func TestExportXLSX(t *testing.T) {
	s, err := Summarize(mustRead(t, processed))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "summary.xlsx")
	require.NoError(t, ExportXLSX(s, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Types", "Countries", "Genres"}, f.GetSheetList())

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])
	assert.Equal(t, []string{"Total Titles", "4"}, rows[1])

	genres, err := f.GetRows("Genres")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dramas", "3"}, genres[1])
}
