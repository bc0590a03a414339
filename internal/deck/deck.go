package deck

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/muesli/streamdeck"
)

// KeyEvent is a single key transition reported by the device.
type KeyEvent struct {
	Index   int
	Pressed bool
}

// Device wraps an open Stream Deck. All hardware writes are serialised
// behind a mutex; the HID transport underneath is not safe for concurrent
// use.
type Device struct {
	mu     sync.Mutex
	dev    *streamdeck.Device
	closed bool
}

// KeyCount returns the number of physical keys.
func (d *Device) KeyCount() int {
	return int(d.dev.Keys)
}

// PixelSize returns the width and height of one key image in pixels.
// Key images are square.
func (d *Device) PixelSize() int {
	return int(d.dev.Pixels)
}

// Serial returns the device serial number.
func (d *Device) Serial() string {
	return d.dev.Serial
}

// SetImage pushes an image to the given key.
func (d *Device) SetImage(index int, img image.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if err := d.dev.SetImage(uint8(index), img); err != nil {
		return fmt.Errorf("setting image on key %d: %w", index, err)
	}
	return nil
}

// SetBrightness sets the display brightness (0-100).
func (d *Device) SetBrightness(percent int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if err := d.dev.SetBrightness(uint8(percent)); err != nil {
		return fmt.Errorf("setting brightness: %w", err)
	}
	return nil
}

// Clear blanks all keys.
func (d *Device) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if err := d.dev.Clear(); err != nil {
		return fmt.Errorf("clearing device: %w", err)
	}
	return nil
}

// Reset performs a firmware reset, returning the device to its idle state.
func (d *Device) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if err := d.dev.Reset(); err != nil {
		return fmt.Errorf("resetting device: %w", err)
	}
	return nil
}

// Close releases the HID handle. Safe to call more than once.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.dev.Close(); err != nil {
		return fmt.Errorf("closing device: %w", err)
	}
	return nil
}

// Events starts reading key reports and returns a channel of transitions.
// The channel closes when the context is cancelled or the device stops
// reporting. Reads do not hold the write mutex.
func (d *Device) Events(ctx context.Context) (<-chan KeyEvent, error) {
	raw, err := d.dev.ReadKeys()
	if err != nil {
		return nil, fmt.Errorf("reading keys: %w", err)
	}

	out := make(chan KeyEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case k, ok := <-raw:
				if !ok {
					return
				}
				select {
				case out <- KeyEvent{Index: int(k.Index), Pressed: k.Pressed}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
