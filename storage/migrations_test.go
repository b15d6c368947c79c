package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
)

func TestInitializeAppliesSchema(t *testing.T) {
	tempDir := t.TempDir()

	storage := NewSQLiteStorage(tempDir, nil)
	if err := storage.Initialize(); err != nil {
		t.Fatalf("Failed to initialize storage: %v", err)
	}
	defer storage.Close()

	m, err := storage.Migrations()
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	ctx := context.Background()

	version, err := m.Version(ctx)
	if err != nil {
		t.Fatalf("Failed to get database version: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected database version 2, got %d", version)
	}

	// A second run has nothing left to apply.
	applied, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("Failed to run migrations again: %v", err)
	}
	if applied != 0 {
		t.Errorf("Expected no migrations on second run, got %d", applied)
	}
}

func TestMigrationManager(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	m, err := NewMigrationManager(db, nil)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	ctx := context.Background()

	if m.Latest() != 2 {
		t.Errorf("Expected latest version 2, got %d", m.Latest())
	}

	version, err := m.Version(ctx)
	if err != nil {
		t.Fatalf("Failed to get initial version: %v", err)
	}
	if version != 0 {
		t.Errorf("Expected initial version 0, got %d", version)
	}

	applied, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if applied != 2 {
		t.Errorf("Expected 2 migrations applied, got %d", applied)
	}

	version, err = m.Version(ctx)
	if err != nil {
		t.Fatalf("Failed to get version after migrations: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected version 2 after migrations, got %d", version)
	}

	tables, err := m.Tables(ctx)
	if err != nil {
		t.Fatalf("Failed to list tables: %v", err)
	}
	if want := []string{"pipeline_runs", "titles"}; !reflect.DeepEqual(tables, want) {
		t.Errorf("Expected tables %v after migrations, got %v", want, tables)
	}

	states, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("Expected 2 migration states, got %d", len(states))
	}
	for _, st := range states {
		if !st.Applied {
			t.Errorf("Expected migration %s to be applied", st.Name)
		}
	}
	if states[1].Name != "00002_create_pipeline_runs.sql" {
		t.Errorf("Expected second migration 00002_create_pipeline_runs.sql, got %s", states[1].Name)
	}

	if err := m.Down(ctx); err != nil {
		t.Fatalf("Failed to rollback migration: %v", err)
	}

	version, err = m.Version(ctx)
	if err != nil {
		t.Fatalf("Failed to get version after rollback: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected version 1 after rollback, got %d", version)
	}

	tables, err = m.Tables(ctx)
	if err != nil {
		t.Fatalf("Failed to list tables: %v", err)
	}
	if want := []string{"titles"}; !reflect.DeepEqual(tables, want) {
		t.Errorf("Expected tables %v after rollback, got %v", want, tables)
	}

	states, err = m.Status(ctx)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if states[1].Applied {
		t.Errorf("Expected %s to be pending after rollback", states[1].Name)
	}

	if err := m.Reset(ctx); err != nil {
		t.Fatalf("Failed to reset database: %v", err)
	}
	tables, err = m.Tables(ctx)
	if err != nil {
		t.Fatalf("Failed to list tables: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("Expected no tables after reset, got %v", tables)
	}
}
