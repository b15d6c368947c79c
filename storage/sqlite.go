package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"cine-insights/catalog"
)

// DatabaseFile is the SQLite file name created inside the data directory.
const DatabaseFile = "cine_insights.db"

type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	dataPath string
	logger   *zap.Logger
}

type StorageInterface interface {
	Initialize() error
	SaveSnapshot(ds *catalog.Dataset) (int, error)
	GetAllTitles() ([]Title, error)
	GetTitlesByType(titleType string) ([]Title, error)
	SearchTitles(title string) ([]Title, error)
	RecordRun(run Run) (string, error)
	GetRuns(limit int) ([]Run, error)
	GetStats() (map[string]int, error)
	Close() error
}

var _ StorageInterface = (*SQLiteStorage)(nil)

func NewSQLiteStorage(dataPath string, logger *zap.Logger) *SQLiteStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStorage{
		dbPath:   filepath.Join(dataPath, DatabaseFile),
		dataPath: dataPath,
		logger:   logger,
	}
}

func (s *SQLiteStorage) Initialize() error {
	if err := os.MkdirAll(s.dataPath, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	s.db = db

	if err := s.RunMigrations(); err != nil {
		return err
	}

	s.logger.Info("SQLite database initialized", zap.String("path", s.dbPath))
	return nil
}

const titleColumns = `title, type, director, country, release_year, rating, duration,
	listed_in, primary_genre, primary_country, content_age_years, is_mature`

// SaveSnapshot replaces the stored titles with the dataset's records in one
// transaction and returns the number of rows written.
func (s *SQLiteStorage) SaveSnapshot(ds *catalog.Dataset) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM titles`); err != nil {
		return 0, fmt.Errorf("failed to clear titles: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO titles (` + titleColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range ds.Records {
		if _, err := stmt.Exec(titleArgs(TitleFromRecord(r))...); err != nil {
			return 0, fmt.Errorf("failed to insert line %d: %w", r.Line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	s.logger.Info("catalog snapshot saved", zap.Int("titles", ds.Len()))
	return ds.Len(), nil
}

func titleArgs(t Title) []any {
	return []any{t.Title, t.Type, t.Director, t.Country, t.ReleaseYear, t.Rating, t.Duration,
		t.ListedIn, t.PrimaryGenre, t.PrimaryCountry, t.ContentAge, t.IsMature}
}

func (s *SQLiteStorage) GetAllTitles() ([]Title, error) {
	return s.queryTitles(`SELECT `+titleColumns+` FROM titles ORDER BY id`)
}

// GetTitlesByType returns the titles of one type, e.g. catalog.TypeMovie.
func (s *SQLiteStorage) GetTitlesByType(titleType string) ([]Title, error) {
	return s.queryTitles(`SELECT `+titleColumns+` FROM titles WHERE type = ? ORDER BY id`, titleType)
}

// SearchTitles returns the titles containing the text, case-insensitively
// for ASCII.
func (s *SQLiteStorage) SearchTitles(title string) ([]Title, error) {
	return s.queryTitles(`SELECT `+titleColumns+` FROM titles WHERE title LIKE ? ORDER BY id`, "%"+title+"%")
}

func (s *SQLiteStorage) queryTitles(query string, args ...any) ([]Title, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query titles: %w", err)
	}
	defer rows.Close()

	var titles []Title
	for rows.Next() {
		var t Title
		var director, country, rating, duration, listedIn, genre, primaryCountry sql.NullString
		err := rows.Scan(&t.Title, &t.Type, &director, &country, &t.ReleaseYear, &rating, &duration,
			&listedIn, &genre, &primaryCountry, &t.ContentAge, &t.IsMature)
		if err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		t.Director, t.Country, t.Rating = director.String, country.String, rating.String
		t.Duration, t.ListedIn = duration.String, listedIn.String
		t.PrimaryGenre, t.PrimaryCountry = genre.String, primaryCountry.String
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// RecordRun stores a pipeline run, assigning an id when it has none.
func (s *SQLiteStorage) RecordRun(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	issues, err := json.Marshal(run.Issues)
	if err != nil {
		return "", fmt.Errorf("failed to encode issues: %w", err)
	}
	if run.Issues == nil {
		issues = []byte("[]")
	}

	_, err = s.db.Exec(`
	INSERT INTO pipeline_runs (id, input_path, output_path, started_at, finished_at,
		original_rows, final_rows, duplicates_removed, issues)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.InputPath, run.OutputPath, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.OriginalRows, run.FinalRows, run.DuplicatesRemoved, string(issues))
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.ID, nil
}

// GetRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (s *SQLiteStorage) GetRuns(limit int) ([]Run, error) {
	query := `
	SELECT id, input_path, output_path, started_at, finished_at,
		original_rows, final_rows, duplicates_removed, issues
	FROM pipeline_runs
	ORDER BY started_at DESC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run    Run
			issues string
		)
		err := rows.Scan(&run.ID, &run.InputPath, &run.OutputPath, &run.StartedAt, &run.FinishedAt,
			&run.OriginalRows, &run.FinalRows, &run.DuplicatesRemoved, &issues)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(issues), &run.Issues); err != nil {
			return nil, fmt.Errorf("failed to decode issues of run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStorage) GetDB() (*sql.DB, error) {
	if s.db == nil {
		db, err := sql.Open("sqlite3", s.dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db
	}
	return s.db, nil
}

// Path returns the database file location.
func (s *SQLiteStorage) Path() string { return s.dbPath }

func (s *SQLiteStorage) GetStats() (map[string]int, error) {
	stats := make(map[string]int)

	counts := []struct {
		key   string
		query string
		args  []any
	}{
		{"total", "SELECT COUNT(*) FROM titles", nil},
		{"movies", "SELECT COUNT(*) FROM titles WHERE type = ?", []any{catalog.TypeMovie}},
		{"tv_shows", "SELECT COUNT(*) FROM titles WHERE type = ?", []any{catalog.TypeTVShow}},
	}
	for _, c := range counts {
		var n int
		if err := s.db.QueryRow(c.query, c.args...).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to get %s count: %w", c.key, err)
		}
		stats[c.key] = n
	}

	return stats, nil
}

// Migrations returns a migration manager bound to the open database.
func (s *SQLiteStorage) Migrations() (*MigrationManager, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database is not open")
	}
	return NewMigrationManager(s.db, s.logger)
}

// RunMigrations brings the schema up to the latest embedded version.
func (s *SQLiteStorage) RunMigrations() error {
	m, err := s.Migrations()
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	_, err = m.Up(context.Background())
	return err
}
