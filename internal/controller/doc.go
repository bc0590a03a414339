// Package controller runs the press dispatch loop.
//
// A single goroutine consumes device key events in order, so actions for
// one key finish before the next press is handled. Releases are filtered
// out; only presses dispatch. A failing or panicking action is logged and
// recorded but never stops the loop, and the device keeps working for
// every other key.
//
// Layout switches arrive as commands returned by actions. The controller
// owns the current layout and is the only place that renders.
package controller
