package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/rba/internal/shared"
)

// CollectionRepository stores collection documents in SQLite.
type CollectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new [CollectionRepository] with the given database connection
func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Read returns the stored document for key. ok is false when the key has never been written or was deleted.
func (r *CollectionRepository) Read(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM collections WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query collection %s: %w", key, err)
	}
	return value, true, nil
}

// Write upserts the document for key and stamps it with the next write sequence.
//
// Failures are wrapped in [shared.ErrPersistence].
func (r *CollectionRepository) Write(key, value string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrPersistence, err)
	}
	defer tx.Rollback()

	sequence, err := nextSequenceTx(tx, "collections")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO collections (key, sequence, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET sequence = excluded.sequence, value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := tx.Exec(query, key, sequence, value, now, now); err != nil {
		return fmt.Errorf("%w: failed to write collection %s: %v", shared.ErrPersistence, key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit collection %s: %v", shared.ErrPersistence, key, err)
	}
	return nil
}

// Delete removes the document for key. Deleting an absent key is not an error.
func (r *CollectionRepository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM collections WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: failed to delete collection %s: %v", shared.ErrPersistence, key, err)
	}
	return nil
}

// Keys lists stored keys ordered by most recent write first.
func (r *CollectionRepository) Keys() ([]string, error) {
	rows, err := r.db.Query("SELECT key FROM collections ORDER BY sequence DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan collection key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return keys, nil
}

// Sequence returns the write sequence recorded for key, or 0 when absent.
func (r *CollectionRepository) Sequence(key string) (int, error) {
	var sequence int
	err := r.db.QueryRow("SELECT sequence FROM collections WHERE key = ?", key).Scan(&sequence)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query sequence for %s: %w", key, err)
	}
	return sequence, nil
}
