package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cine-insights/catalog"
)

func TestSQLiteStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage := NewSQLiteStorage(tempDir, nil)
	err := storage.Initialize()
	if err != nil {
		t.Fatalf("Failed to initialize storage: %v", err)
	}
	defer storage.Close()

	csv := "title,type,director,release_year,rating,is_mature\n" +
		"Test Movie,Movie,Jane Doe,2023,R,1\n" +
		"Another Show,TV Show,,2020,TV-PG,0\n"
	ds, err := catalog.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Failed to read catalog: %v", err)
	}
	if _, err := storage.SaveSnapshot(ds); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	titles, err := storage.GetAllTitles()
	if err != nil {
		t.Fatalf("Failed to get all titles: %v", err)
	}

	if len(titles) != 2 {
		t.Fatalf("Expected 2 titles, got %d", len(titles))
	}

	if titles[0].Title != "Test Movie" {
		t.Errorf("Expected title Test Movie, got %s", titles[0].Title)
	}
	if titles[0].Rating != "R" || !titles[0].IsMature || titles[0].Director != "Jane Doe" {
		t.Errorf("Unexpected first title: %+v", titles[0])
	}
	if titles[0].ReleaseYear == nil || *titles[0].ReleaseYear != 2023 {
		t.Errorf("Expected release year 2023, got %v", titles[0].ReleaseYear)
	}

	movies, err := storage.GetTitlesByType(catalog.TypeMovie)
	if err != nil {
		t.Fatalf("Failed to get movies: %v", err)
	}

	if len(movies) != 1 || movies[0].Title != "Test Movie" {
		t.Fatalf("Expected only Test Movie, got %+v", movies)
	}

	shows, err := storage.GetTitlesByType(catalog.TypeTVShow)
	if err != nil {
		t.Fatalf("Failed to get shows: %v", err)
	}
	if len(shows) != 1 || shows[0].Title != "Another Show" {
		t.Fatalf("Expected only Another Show, got %+v", shows)
	}

	searchResults, err := storage.SearchTitles("test")
	if err != nil {
		t.Fatalf("Failed to search titles: %v", err)
	}

	if len(searchResults) != 1 {
		t.Fatalf("Expected 1 search result, got %d", len(searchResults))
	}

	none, err := storage.SearchTitles("missing")
	if err != nil {
		t.Fatalf("Failed to search titles: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no search results, got %d", len(none))
	}

	stats, err := storage.GetStats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}

	if stats["total"] != 2 {
		t.Errorf("Expected total 2, got %d", stats["total"])
	}

	if stats["movies"] != 1 {
		t.Errorf("Expected movies 1, got %d", stats["movies"])
	}

	if stats["tv_shows"] != 1 {
		t.Errorf("Expected tv_shows 1, got %d", stats["tv_shows"])
	}
}

func TestSaveSnapshot(t *testing.T) {
	storage := NewSQLiteStorage(t.TempDir(), nil)
	if err := storage.Initialize(); err != nil {
		t.Fatalf("Failed to initialize storage: %v", err)
	}
	defer storage.Close()

	csv := "title,type,release_year,content_age_years,is_mature,primary_genre\n" +
		"A,Movie,2001.0,24,1,Dramas\n" +
		"B,TV Show,2019,6,0,\n" +
		"C,Movie,,,,\n"
	ds, err := catalog.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Failed to read catalog: %v", err)
	}

	for i := 0; i < 2; i++ {
		n, err := storage.SaveSnapshot(ds)
		if err != nil {
			t.Fatalf("Failed to save snapshot: %v", err)
		}
		if n != 3 {
			t.Errorf("Expected 3 rows written, got %d", n)
		}
	}

	titles, err := storage.GetAllTitles()
	if err != nil {
		t.Fatalf("Failed to get titles: %v", err)
	}
	if len(titles) != 3 {
		t.Fatalf("Expected snapshot to replace rows, got %d titles", len(titles))
	}

	first := titles[0]
	if first.ReleaseYear == nil || *first.ReleaseYear != 2001 {
		t.Errorf("Expected release year 2001, got %v", first.ReleaseYear)
	}
	if first.ContentAge == nil || *first.ContentAge != 24 {
		t.Errorf("Expected content age 24, got %v", first.ContentAge)
	}
	if !first.IsMature || first.PrimaryGenre != "Dramas" {
		t.Errorf("Unexpected first title: %+v", first)
	}
	if titles[2].ReleaseYear != nil || titles[2].ContentAge != nil {
		t.Errorf("Expected null year and age for C, got %+v", titles[2])
	}

	stats, err := storage.GetStats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats["movies"] != 2 || stats["tv_shows"] != 1 {
		t.Errorf("Unexpected stats: %v", stats)
	}
}

func TestRecordRun(t *testing.T) {
	storage := NewSQLiteStorage(t.TempDir(), nil)
	if err := storage.Initialize(); err != nil {
		t.Fatalf("Failed to initialize storage: %v", err)
	}
	defer storage.Close()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	older := Run{
		InputPath:  "data/in.csv",
		OutputPath: "data/out.csv",
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	}
	newer := Run{
		ID:                "fixed-id",
		InputPath:         "data/in.csv",
		OutputPath:        "data/out.csv",
		StartedAt:         start.Add(time.Hour),
		FinishedAt:        start.Add(time.Hour + time.Second),
		OriginalRows:      10,
		FinalRows:         8,
		DuplicatesRemoved: 2,
		Issues:            []string{"Found 1 titles with future release years"},
	}

	id, err := storage.RecordRun(older)
	if err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("Expected a generated uuid, got %q", id)
	}
	if id, err = storage.RecordRun(newer); err != nil || id != "fixed-id" {
		t.Fatalf("Failed to record run with id: %v (%s)", err, id)
	}

	runs, err := storage.GetRuns(0)
	if err != nil {
		t.Fatalf("Failed to get runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "fixed-id" {
		t.Errorf("Expected newest run first, got %s", runs[0].ID)
	}
	if !runs[0].StartedAt.Equal(newer.StartedAt) {
		t.Errorf("Expected started_at %v, got %v", newer.StartedAt, runs[0].StartedAt)
	}
	if runs[0].DuplicatesRemoved != 2 || len(runs[0].Issues) != 1 {
		t.Errorf("Unexpected run: %+v", runs[0])
	}
	if len(runs[1].Issues) != 0 {
		t.Errorf("Expected no issues, got %v", runs[1].Issues)
	}

	limited, err := storage.GetRuns(1)
	if err != nil {
		t.Fatalf("Failed to get limited runs: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 run, got %d", len(limited))
	}
}

func TestSQLiteStorageInit(t *testing.T) {
	tempDir := t.TempDir()

	storage := NewSQLiteStorage(tempDir, nil)
	err := storage.Initialize()
	if err != nil {
		t.Fatalf("Failed to initialize storage: %v", err)
	}
	defer storage.Close()

	dbPath := filepath.Join(tempDir, DatabaseFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("Database file was not created")
	}
	if storage.Path() != dbPath {
		t.Errorf("Expected path %s, got %s", dbPath, storage.Path())
	}
}
