// Package database provides the SQLite connection used by the press-history
// store.
//
// The wrapper configures WAL mode, a busy timeout and a single-writer
// connection pool, and applies embedded schema migrations on startup.
// Migration files live in the top-level migrations directory and are
// compiled into the binary via go:embed, so the daemon needs no SQL files
// on disk.
package database
