package catalog

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `show_id,type,title,cast,country,release_year
s1,Movie,Dick Johnson Is Dead,,United States,2020
s2,TV Show,Blood & Water,"Ama Qamata, Khosi Ngema","South Africa",2021
s3,Movie,Short Row
`

func TestReadParsesHeaderAndNulls(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	rows, cols := ds.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 6, cols)

	first := ds.Records[0]
	assert.Equal(t, 2, first.Line)
	assert.True(t, first.IsNull(ColumnCast), "empty cell should be null")
	year, ok := first.Int(ColumnReleaseYear)
	require.True(t, ok)
	assert.Equal(t, 2020, year)

	second := ds.Records[1]
	cast, ok := second.Get(ColumnCast)
	require.True(t, ok)
	assert.Equal(t, "Ama Qamata, Khosi Ngema", cast)

	short := ds.Records[2]
	assert.True(t, short.IsNull(ColumnCountry))
	assert.True(t, short.IsNull(ColumnReleaseYear))
}

func TestReadRejectsEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadStripsBOM(t *testing.T) {
	ds, err := Read(strings.NewReader("\ufefftype,title\nMovie,X\n"))
	require.NoError(t, err)
	assert.True(t, ds.HasColumn(ColumnType))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	ds.AddColumn(ColumnIsMovie)
	for _, r := range ds.Records {
		r.SetBool(ColumnIsMovie, r.Value(ColumnType) == TypeMovie)
	}

	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	require.NoError(t, Save(ds, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ds.Columns, loaded.Columns)
	assert.Equal(t, ds.Values(ColumnIsMovie), loaded.Values(ColumnIsMovie))
	assert.Equal(t, ds.Values(ColumnCast), loaded.Values(ColumnCast))
}

func TestWriteKeepsColumnOrder(t *testing.T) {
	ds := NewDataset([]string{"b", "a"})
	r := NewRecord(2)
	r.Set("a", "1")
	r.Set("b", "2")
	ds.Append(r)

	var buf bytes.Buffer
	require.NoError(t, Write(ds, &buf))
	assert.Equal(t, "b,a\n2,1\n", buf.String())
}

func TestFilterPreservesOrder(t *testing.T) {
	ds := NewDataset([]string{"n"})
	for i := 0; i < 5; i++ {
		r := NewRecord(i + 2)
		r.SetInt("n", i)
		ds.Append(r)
	}
	removed := ds.Filter(func(r *Record) bool {
		n, _ := r.Int("n")
		return n%2 == 0
	})
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"0", "2", "4"}, ds.Values("n"))
}

func TestRequireColumns(t *testing.T) {
	ds := NewDataset([]string{ColumnTitle})
	err := ds.RequireColumns(ColumnTitle, ColumnType)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), ColumnType)
}

func TestRecordIntAcceptsWholeFloats(t *testing.T) {
	r := NewRecord(2)
	r.Set("y", "2019.0")
	v, ok := r.Int("y")
	assert.True(t, ok)
	assert.Equal(t, 2019, v)

	r.Set("y", "2019.5")
	_, ok = r.Int("y")
	assert.False(t, ok)
}

func TestInspectCapabilities(t *testing.T) {
	s := Inspect([]string{ColumnType, ColumnTitle, ColumnCountry, ColumnRating})

	assert.True(t, s.Has(CapTypeFlags))
	assert.True(t, s.Has(CapCountries))
	assert.True(t, s.Has(CapMaturity))
	assert.False(t, s.Has(CapDuration), "duration needs the duration column")
	assert.False(t, s.Has(CapDateParts))
	assert.False(t, s.Has(CapAge))

	full := Inspect([]string{
		ColumnType, ColumnTitle, ColumnDirector, ColumnCast, ColumnCountry, ColumnDateAdded,
		ColumnReleaseYear, ColumnRating, ColumnDuration, ColumnListedIn,
	})
	assert.Len(t, full.Capabilities(), 9)
}

func TestPresentFeatures(t *testing.T) {
	got := PresentFeatures([]string{ColumnTitle, ColumnIsMature, ColumnNumCast, ColumnYearAdded})
	assert.Equal(t, []string{ColumnYearAdded, ColumnNumCast, ColumnIsMature}, got)
}
