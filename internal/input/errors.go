package input

import "errors"

// Sentinel errors for synthetic input operations.
var (
	// ErrUnknownKey indicates a key name with no entry in the keycode table.
	ErrUnknownKey = errors.New("input: unknown key")

	// ErrClosed indicates an operation on a closed injector.
	ErrClosed = errors.New("input: injector closed")
)
