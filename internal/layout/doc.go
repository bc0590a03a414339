// Package layout models the named key layouts a deck can display.
//
// A Layout maps key indices to key specs (visuals plus a bound action).
// Build validates the whole configuration against the physical key count
// up front, so a bad layout fails at startup rather than on first press.
//
// Switching layouts is expressed as a value, not a side effect: an action
// that wants to change the visible layout returns SwitchLayout and the
// controller performs the switch. Actions never touch the device.
package layout
