package actions

import "errors"

// Sentinel errors for action binding.
var (
	// ErrUnknownType indicates an action type the binder does not support.
	ErrUnknownType = errors.New("actions: unknown action type")

	// ErrUnknownPath indicates a {path:name} placeholder with no matching
	// entry in the paths configuration.
	ErrUnknownPath = errors.New("actions: unknown path placeholder")

	// ErrCannotType indicates a type_text action bound against an input
	// backend without text support.
	ErrCannotType = errors.New("actions: input backend cannot type text")
)
