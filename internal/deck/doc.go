// Package deck wraps the Stream Deck HID device.
//
// Device serialises all writes to the hardware behind a mutex, since the
// underlying HID transport is not safe for concurrent use. Events turns the
// raw key report channel into a stream of KeyEvent values that closes when
// the context is cancelled or the device goes away.
//
// Acquire handles the plugged-in-later case: it polls for a device at a
// fixed interval until one appears or the discovery window expires. When
// several decks are connected the one with the lexically smallest serial
// is used, so the choice is stable across restarts.
package deck
