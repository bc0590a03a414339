// Package lifecycle performs shutdown cleanup exactly once.
//
// Cleanup can be reached from several paths at the same time: signal
// handler, run-loop error, deferred main exit. The manager guarantees the
// steps run once; later callers block until the first run finishes and see
// the same result.
//
// Every step runs even when an earlier one fails. Releasing synthetic keys
// matters most: a daemon dying between a press and its release leaves the
// host keyboard stuck, so the release batch goes first, the device is reset
// afterwards, and a managed injection daemon stops only once the batch has
// been sent through it.
package lifecycle
