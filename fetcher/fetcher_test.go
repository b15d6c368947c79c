package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "type,title,release_year\nMovie,A,2001\n"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files/titles.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, sampleCSV)
	})
	mux.HandleFunc("/datasets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
<a href="/about">About</a>
<a href="/files/titles.csv">Download CSV</a>
<a href="/files/other.csv">Other</a>
</body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/data.csv"))
	assert.True(t, IsRemote("http://example.com/data.csv"))
	assert.False(t, IsRemote("data/netflix_titles.csv"))
}

func TestDownload(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()

	path, err := NewFetcher(dir, nil).Download(context.Background(), srv.URL+"/files/titles.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "titles.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))
}

func TestFetchFollowsPageLink(t *testing.T) {
	srv := newServer(t)
	f := NewFetcher(t.TempDir(), nil)

	links, err := f.CSVLinks(srv.URL + "/datasets")
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/files/titles.csv", srv.URL + "/files/other.csv"}, links)

	path, err := f.Fetch(context.Background(), srv.URL+"/datasets")
	require.NoError(t, err)
	assert.Equal(t, "titles.csv", filepath.Base(path))
}

func TestDownloadNotFound(t *testing.T) {
	srv := newServer(t)
	_, err := NewFetcher(t.TempDir(), nil).Download(context.Background(), srv.URL+"/missing.csv")
	assert.Error(t, err)
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFetcher(t.TempDir(), nil).Fetch(ctx, "http://127.0.0.1:1/data.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileName(t *testing.T) {
	for raw, want := range map[string]string{
		"https://example.com/netflix.csv": "netflix.csv",
		"https://example.com/":            DefaultFileName,
		"https://example.com/export":      DefaultFileName,
	} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, fileName(u), raw)
	}
}
