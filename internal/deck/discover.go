package deck

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/muesli/streamdeck"

	"github.com/nerrad567/deckhand/internal/infrastructure/logging"
)

// Discovery defaults. The window is generous so the daemon can start at
// boot before the device is plugged in.
const (
	DefaultTimeout      = 5 * time.Minute
	DefaultPollInterval = 5 * time.Second
)

// Options configures device discovery.
type Options struct {
	// Timeout is the total discovery window. Default: DefaultTimeout
	Timeout time.Duration

	// PollInterval is the delay between enumeration attempts.
	// Default: DefaultPollInterval
	PollInterval time.Duration

	// Enumerate lists candidate devices. Defaults to streamdeck.Devices.
	// Overridable in tests.
	Enumerate func() ([]streamdeck.Device, error)

	Logger *logging.Logger
}

// Acquire polls for a Stream Deck until one appears, the discovery window
// expires, or the context is cancelled. The first attempt happens
// immediately.
//
// Returns ErrNoDeviceFound when the window expires with nothing connected.
// Enumeration errors are logged and retried; only an open failure on a
// found device is fatal.
func Acquire(ctx context.Context, opts Options) (*Device, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Enumerate == nil {
		opts.Enumerate = streamdeck.Devices
	}
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}

	deadline := time.Now().Add(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		devices, err := opts.Enumerate()
		switch {
		case err != nil:
			log.Warn("device enumeration failed", "attempt", attempt, "error", err)
		case len(devices) > 0:
			return openFirst(devices, log)
		default:
			log.Debug("no device connected, waiting", "attempt", attempt)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w after %s", ErrNoDeviceFound, opts.Timeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// selectDevice picks the device with the lexically smallest serial so the
// choice is stable when several decks are connected.
func selectDevice(devices []streamdeck.Device) (streamdeck.Device, []string) {
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Serial < devices[j].Serial
	})
	serials := make([]string, len(devices))
	for i, d := range devices {
		serials[i] = d.Serial
	}
	return devices[0], serials
}

func openFirst(devices []streamdeck.Device, log *logging.Logger) (*Device, error) {
	dev, serials := selectDevice(devices)
	if len(serials) > 1 {
		log.Warn("multiple devices connected, using first by serial", "serials", serials)
	}
	if err := dev.Open(); err != nil {
		return nil, fmt.Errorf("opening device %s: %w", dev.Serial, err)
	}

	log.Info("device opened",
		"serial", dev.Serial,
		"keys", dev.Keys,
		"pixels", dev.Pixels,
	)
	return &Device{dev: &dev}, nil
}
