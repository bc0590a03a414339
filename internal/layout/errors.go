package layout

import "errors"

// Sentinel errors for layout building and lookup.
var (
	// ErrUnknownLayout indicates a reference to a layout name that is not defined.
	ErrUnknownLayout = errors.New("layout: unknown layout")

	// ErrKeyOutOfRange indicates a key index beyond the device's key count.
	ErrKeyOutOfRange = errors.New("layout: key index out of range")

	// ErrNoLayouts indicates an empty layout set.
	ErrNoLayouts = errors.New("layout: no layouts defined")
)
