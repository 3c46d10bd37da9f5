package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newMigratedDB(t *testing.T) *Migrator {
	t.Helper()

	db, err := NewDatabase(MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m, err := NewMigrator(db, nil)
	if err != nil {
		t.Fatalf("NewMigrator failed: %v", err)
	}
	return m
}

func TestMigrator(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) != 2 {
			t.Fatalf("expected 2 migrations, got %d", len(migrations))
		}

		tt := []struct {
			version int
			name    string
		}{
			{0, "create_collections"},
			{1, "collections_sequence_index"},
		}
		for i, tc := range tt {
			if migrations[i].Version != tc.version || migrations[i].Name != tc.name {
				t.Errorf("migration %d: expected %04d_%s, got %04d_%s", i, tc.version, tc.name, migrations[i].Version, migrations[i].Name)
			}
			if migrations[i].Up == "" || migrations[i].Down == "" {
				t.Errorf("migration %d missing up or down SQL", tc.version)
			}
		}
	})

	t.Run("Up applies the collection schema", func(t *testing.T) {
		m := newMigratedDB(t)

		n, err := m.Up()
		if err != nil {
			t.Fatalf("Up failed: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 migrations applied, got %d", n)
		}

		if _, err := m.db.Exec("SELECT 1 FROM collections LIMIT 1"); err != nil {
			t.Errorf("collections table should exist after migrations: %v", err)
		}

		var seq int
		if err := m.db.QueryRow("SELECT value FROM collections_sequence WHERE id = 1").Scan(&seq); err != nil {
			t.Errorf("collections_sequence should be seeded: %v", err)
		}
		if seq != 0 {
			t.Errorf("expected seeded sequence 0, got %d", seq)
		}

		n, err = m.Up()
		if err != nil {
			t.Fatalf("second Up failed: %v", err)
		}
		if n != 0 {
			t.Errorf("expected second Up to be a no-op, applied %d", n)
		}
	})

	t.Run("Down rolls back newest first", func(t *testing.T) {
		m := newMigratedDB(t)
		if _, err := m.Up(); err != nil {
			t.Fatalf("Up failed: %v", err)
		}

		n, err := m.Down(1)
		if err != nil {
			t.Fatalf("Down failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 rollback, got %d", n)
		}

		statuses, err := m.Status()
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if !statuses[0].Applied() || statuses[1].Applied() {
			t.Errorf("expected only version 0 applied, got %v and %v", statuses[0].Applied(), statuses[1].Applied())
		}

		var idx int
		if err := m.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = 'idx_collections_sequence'").Scan(&idx); err != nil {
			t.Fatalf("failed to query index: %v", err)
		}
		if idx != 0 {
			t.Error("expected sequence index to be dropped")
		}

		n, err = m.Down(5)
		if err != nil {
			t.Fatalf("Down failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected the remaining migration to roll back, got %d", n)
		}
		if _, err := m.db.Exec("SELECT 1 FROM collections"); err == nil {
			t.Error("expected collections table to be dropped")
		}

		if _, err := m.Down(1); !errors.Is(err, ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations, got %v", err)
		}
		if _, err := m.Down(0); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}

		if n, err := m.Up(); err != nil || n != 2 {
			t.Errorf("expected Up to reapply both migrations, got %d, %v", n, err)
		}
	})

	t.Run("Status before and after Up", func(t *testing.T) {
		m := newMigratedDB(t)

		statuses, err := m.Status()
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		for _, s := range statuses {
			if s.Applied() {
				t.Errorf("migration %d should be pending", s.Version)
			}
		}

		if err := RunMigrations(m.db); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}

		statuses, _ = m.Status()
		for _, s := range statuses {
			if !s.Applied() || s.AppliedAt.IsZero() {
				t.Errorf("migration %d should be applied with a timestamp", s.Version)
			}
		}
	})

	t.Run("progress is logged", func(t *testing.T) {
		db, err := NewDatabase(MemoryDatabase)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		var buf bytes.Buffer
		m, err := NewMigrator(db, NewLogger(&buf))
		if err != nil {
			t.Fatalf("NewMigrator failed: %v", err)
		}
		if _, err := m.Up(); err != nil {
			t.Fatalf("Up failed: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "applied migration") || !strings.Contains(out, "create_collections") {
			t.Errorf("expected migration progress in log, got %q", out)
		}
	})
}
