package history

import (
	"context"
	"time"
)

// Press outcome statuses.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusIgnored = "ignored"
)

// Entry is one handled key press.
type Entry struct {
	ID        string
	Layout    string
	KeyIndex  int
	Action    string
	Status    string
	Error     string
	CreatedAt time.Time
}

// Recorder accepts press entries. The controller depends on this interface
// so dispatch works with recording disabled.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Repository is the full press-history store.
type Repository interface {
	Recorder

	// Recent returns the newest entries, most recent first. The limit is
	// clamped to a sane range.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Prune deletes entries older than the given age and reports how many
	// rows were removed.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NopRecorder discards entries. Used when the database is disabled.
type NopRecorder struct{}

// Record discards the entry.
func (NopRecorder) Record(context.Context, Entry) error { return nil }
