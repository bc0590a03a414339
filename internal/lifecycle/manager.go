package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/deckhand/internal/infrastructure/logging"
	"github.com/nerrad567/deckhand/internal/input"
)

// Cleanup states.
const (
	StateActive   = "active"
	StateCleaning = "cleaning"
	StateDone     = "done"
)

// Surface is the device subset cleanup needs.
type Surface interface {
	Reset() error
	Close() error
}

// Daemon is a managed helper process stopped at the end of cleanup. The
// exec injector sends through it, so it must outlive the release batch.
type Daemon interface {
	Stop() error
}

// Manager runs shutdown cleanup exactly once. A nil surface or injector
// skips the corresponding steps, so the manager is usable from the moment
// the process starts, before the device is acquired.
type Manager struct {
	mu    sync.Mutex
	state string
	done  chan struct{}
	err   error

	surface  Surface
	injector input.Injector
	daemon   Daemon
	log      *logging.Logger
}

// New creates a manager in the active state.
func New(log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Default()
	}
	return &Manager{
		state: StateActive,
		done:  make(chan struct{}),
		log:   log,
	}
}

// SetSurface registers the device once acquired.
func (m *Manager) SetSurface(s Surface) {
	m.mu.Lock()
	m.surface = s
	m.mu.Unlock()
}

// SetInjector registers the input injector once created.
func (m *Manager) SetInjector(inj input.Injector) {
	m.mu.Lock()
	m.injector = inj
	m.mu.Unlock()
}

// SetDaemon registers the managed injection daemon once started.
func (m *Manager) SetDaemon(d Daemon) {
	m.mu.Lock()
	m.daemon = d
	m.mu.Unlock()
}

// State reports the current cleanup state.
func (m *Manager) State() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Cleanup releases all synthetic keys, closes the injector, resets and
// closes the device, then stops the managed injection daemon if one is
// registered. The first caller does the work; concurrent and
// repeat callers wait for it and receive the same result.
//
// Steps are independent: a failing step is collected and the rest still
// run, so a dead device cannot stop the key release.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateCleaning, StateDone:
		m.mu.Unlock()
		<-m.done
		return m.err
	}
	m.state = StateCleaning
	surface := m.surface
	injector := m.injector
	daemon := m.daemon
	m.mu.Unlock()

	m.log.Info("cleanup started")
	err := m.run(ctx, surface, injector, daemon)

	m.mu.Lock()
	m.state = StateDone
	m.err = err
	m.mu.Unlock()
	close(m.done)

	if err != nil {
		m.log.Warn("cleanup finished with errors", "error", err)
	} else {
		m.log.Info("cleanup finished")
	}
	return err
}

func (m *Manager) run(ctx context.Context, surface Surface, injector input.Injector, daemon Daemon) error {
	var errs []error

	if injector != nil {
		if err := input.ReleaseAll(ctx, injector); err != nil {
			errs = append(errs, fmt.Errorf("releasing keys: %w", err))
		}
		if err := injector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing injector: %w", err))
		}
	}

	if surface != nil {
		if err := surface.Reset(); err != nil {
			errs = append(errs, fmt.Errorf("resetting device: %w", err))
		}
		if err := surface.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing device: %w", err))
		}
	}

	// The daemon carries the release batch, so it stops last.
	if daemon != nil {
		if err := daemon.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping injection daemon: %w", err))
		}
	}

	return errors.Join(errs...)
}
