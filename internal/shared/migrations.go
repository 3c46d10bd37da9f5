package shared

import (
	"cmp"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// migrationName matches files such as 0001_collections_sequence_index_up.sql.
var migrationName = regexp.MustCompile(`^(\d+)_(\w+?)_(up|down)\.sql$`)

// Migration is one numbered schema change with its up and down scripts.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// MigrationStatus reports whether a migration has been applied to a database.
type MigrationStatus struct {
	Migration
	AppliedAt *time.Time
}

// Applied reports whether the migration is recorded in schema_migrations.
func (s MigrationStatus) Applied() bool { return s.AppliedAt != nil }

// Migrator applies and rolls back the embedded collection schema.
//
// Applied versions are tracked in the schema_migrations table, which is created on first use.
type Migrator struct {
	db         *sql.DB
	logger     *log.Logger
	migrations []Migration
}

// NewMigrator loads the embedded migrations and prepares db to track them.
func NewMigrator(db *sql.DB, logger *log.Logger) (*Migrator, error) {
	if logger == nil {
		logger = NopLogger()
	}

	migrations, err := loadMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	return &Migrator{db: db, logger: WithLogger(logger, "component", "migrations"), migrations: migrations}, nil
}

// RunMigrations applies every pending migration without logging.
func RunMigrations(db *sql.DB) error {
	m, err := NewMigrator(db, nil)
	if err != nil {
		return err
	}
	_, err = m.Up()
	return err
}

// Up applies pending migrations in version order and returns how many ran.
func (m *Migrator) Up() (int, error) {
	applied, err := m.applied()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		if err := m.exec(mig.Up, "INSERT INTO schema_migrations (version) VALUES (?)", mig.Version); err != nil {
			return count, fmt.Errorf("failed to apply migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Info("applied migration", "version", mig.Version, "name", mig.Name)
		count++
	}

	if count == 0 {
		m.logger.Debug("schema up to date")
	}
	return count, nil
}

// Down rolls back the most recent steps applied migrations, newest first, and returns how many were undone.
//
// It fails with [ErrNoMigrations] when nothing is applied.
func (m *Migrator) Down(steps int) (int, error) {
	if steps < 1 {
		return 0, fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidArgument, steps)
	}

	applied, err := m.applied()
	if err != nil {
		return 0, err
	}
	if len(applied) == 0 {
		return 0, ErrNoMigrations
	}

	count := 0
	for _, mig := range slices.Backward(m.migrations) {
		if count == steps {
			break
		}
		if _, ok := applied[mig.Version]; !ok {
			continue
		}
		if err := m.exec(mig.Down, "DELETE FROM schema_migrations WHERE version = ?", mig.Version); err != nil {
			return count, fmt.Errorf("failed to roll back migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Info("rolled back migration", "version", mig.Version, "name", mig.Name)
		count++
	}
	return count, nil
}

// Status lists every known migration with its applied time, in version order.
func (m *Migrator) Status() ([]MigrationStatus, error) {
	applied, err := m.applied()
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		s := MigrationStatus{Migration: mig}
		if at, ok := applied[mig.Version]; ok {
			s.AppliedAt = &at
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func (m *Migrator) applied() (map[int]time.Time, error) {
	rows, err := m.db.Query("SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var (
			version int
			at      time.Time
		)
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("failed to scan applied migration: %w", err)
		}
		applied[version] = at
	}
	return applied, rows.Err()
}

// exec runs script and the bookkeeping statement in one transaction.
func (m *Migrator) exec(script, record string, version int) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec(record, version); err != nil {
		return err
	}
	return tx.Commit()
}

// loadMigrations pairs the embedded up and down scripts by version.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		match := migrationName.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			continue
		}

		version, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", entry.Name(), err)
		}

		content, err := migrationFiles.ReadFile(path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: match[2]}
			byVersion[version] = mig
		}
		if match[3] == "up" {
			mig.Up = string(content)
		} else {
			mig.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.Up == "" || mig.Down == "" {
			return nil, fmt.Errorf("incomplete migration %04d_%s", mig.Version, mig.Name)
		}
		migrations = append(migrations, *mig)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return migrations, nil
}
