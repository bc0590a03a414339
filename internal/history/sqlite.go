package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/deckhand/internal/infrastructure/database"
)

// Recent limit bounds.
const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// timeLayout is fixed width, unlike RFC3339Nano which trims trailing
// zeros, so lexicographic order on created_at is chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores press history in the deckhand database.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a press-history repository.
func NewSQLiteRepository(db *database.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts one press entry. A missing ID or timestamp is filled in.
func (r *SQLiteRepository) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO press_history (id, layout, key_index, action, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.Layout,
		entry.KeyIndex,
		entry.Action,
		entry.Status,
		entry.Error,
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording press: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first. A non-positive
// limit uses the default; anything above the maximum is clamped.
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, layout, key_index, action, status, error, created_at
		FROM press_history
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying press history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Layout, &e.KeyIndex, &e.Action, &e.Status, &e.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning press row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(timeLayout, createdAt) //nolint:errcheck // Format is controlled
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating press history: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the given age.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(timeLayout)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM press_history WHERE created_at < ?", cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning press history: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return removed, nil
}
