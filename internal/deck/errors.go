package deck

import "errors"

// Sentinel errors for device discovery and access.
var (
	// ErrNoDeviceFound indicates discovery gave up without seeing a device.
	ErrNoDeviceFound = errors.New("deck: no device found")

	// ErrClosed indicates an operation on a closed device.
	ErrClosed = errors.New("deck: device closed")
)
