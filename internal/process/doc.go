// Package process supervises the injection daemon.
//
// The exec input backend talks to a ydotool-style tool whose daemon half
// must already be running. When configured as managed, deckhand starts
// that daemon itself, restarts it if it dies, and shuts down its whole
// process group on exit.
//
// The manager is generic over the binary it runs; nothing in it knows
// about input injection.
package process
