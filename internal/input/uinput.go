package input

import (
	"context"
	"fmt"
	"sync"

	"github.com/bendahl/uinput"
)

// UinputInjector writes key events through a virtual keyboard device.
// It needs write access to /dev/uinput.
type UinputInjector struct {
	mu     sync.Mutex
	kbd    uinput.Keyboard
	closed bool
}

// NewUinputInjector creates a virtual keyboard with the given device name.
func NewUinputInjector(deviceName string) (*UinputInjector, error) {
	kbd, err := uinput.CreateKeyboard("/dev/uinput", []byte(deviceName))
	if err != nil {
		return nil, fmt.Errorf("creating virtual keyboard: %w", err)
	}
	return &UinputInjector{kbd: kbd}, nil
}

// Send writes each event to the virtual device in order.
func (u *UinputInjector) Send(ctx context.Context, events []Event) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ErrClosed
	}

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if ev.Pressed {
			err = u.kbd.KeyDown(ev.Code)
		} else {
			err = u.kbd.KeyUp(ev.Code)
		}
		if err != nil {
			return fmt.Errorf("writing key event %d: %w", ev.Code, err)
		}
	}
	return nil
}

// Close destroys the virtual keyboard device.
func (u *UinputInjector) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return nil
	}
	u.closed = true
	if err := u.kbd.Close(); err != nil {
		return fmt.Errorf("closing virtual keyboard: %w", err)
	}
	return nil
}
