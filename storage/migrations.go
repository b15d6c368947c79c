package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// versionTable is where goose records applied schema versions.
const versionTable = "goose_db_version"

// MigrationState describes one schema migration of the catalog database.
type MigrationState struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// MigrationManager applies the embedded schema to a catalog database through
// a goose provider, so no package level goose state is touched.
type MigrationManager struct {
	db       *sql.DB
	provider *goose.Provider
	logger   *zap.Logger
}

func NewMigrationManager(db *sql.DB, logger *zap.Logger) (*MigrationManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return &MigrationManager{db: db, provider: provider, logger: logger}, nil
}

// Latest is the schema version the embedded migrations lead to.
func (m *MigrationManager) Latest() int64 {
	var latest int64
	for _, src := range m.provider.ListSources() {
		if src.Version > latest {
			latest = src.Version
		}
	}
	return latest
}

// Up applies every pending migration and returns how many ran.
func (m *MigrationManager) Up(ctx context.Context) (int, error) {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		m.logger.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.String("file", path.Base(r.Source.Path)),
			zap.Duration("took", r.Duration))
	}
	return len(results), nil
}

// Down rolls back the latest applied migration.
func (m *MigrationManager) Down(ctx context.Context) error {
	r, err := m.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	m.logger.Info("migration rolled back",
		zap.Int64("version", r.Source.Version),
		zap.String("file", path.Base(r.Source.Path)))
	return nil
}

// Reset rolls back every applied migration.
func (m *MigrationManager) Reset(ctx context.Context) error {
	results, err := m.provider.DownTo(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}
	m.logger.Info("database reset", zap.Int("rolled_back", len(results)))
	return nil
}

// Status lists every embedded migration in version order.
func (m *MigrationManager) Status(ctx context.Context) ([]MigrationState, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get migration status: %w", err)
	}
	states := make([]MigrationState, len(statuses))
	for i, s := range statuses {
		states[i] = MigrationState{
			Version:   s.Source.Version,
			Name:      path.Base(s.Source.Path),
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		}
	}
	return states, nil
}

func (m *MigrationManager) Version(ctx context.Context) (int64, error) {
	version, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

// Tables lists the catalog tables currently in the database, sorted.
func (m *MigrationManager) Tables(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != ?
		ORDER BY name`, versionTable)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
