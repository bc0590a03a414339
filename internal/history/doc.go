// Package history records handled key presses in SQLite.
//
// Every dispatched press becomes one row: which layout and key, what action
// ran and how it ended. The store is an audit trail, not a control path;
// recording failures are logged by the caller and never block dispatch.
package history
