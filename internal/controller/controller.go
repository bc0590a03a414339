package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/deckhand/internal/deck"
	"github.com/nerrad567/deckhand/internal/history"
	"github.com/nerrad567/deckhand/internal/infrastructure/logging"
	"github.com/nerrad567/deckhand/internal/layout"
	"github.com/nerrad567/deckhand/internal/render"
)

// ErrDeviceStopped indicates the device stopped reporting key events
// without the run context being cancelled, usually an unplug.
var ErrDeviceStopped = errors.New("controller: device stopped reporting")

// Deck is the controller's view of the hardware: a drawable surface that
// also produces key events.
type Deck interface {
	render.Surface
	Events(ctx context.Context) (<-chan deck.KeyEvent, error)
}

// Controller owns the current layout and dispatches key presses to their
// bound actions.
type Controller struct {
	deck     Deck
	engine   *render.Engine
	layouts  layout.Set
	recorder history.Recorder
	log      *logging.Logger

	mu      sync.Mutex
	current *layout.Layout
}

// New creates a controller. A nil recorder disables press history.
func New(d Deck, engine *render.Engine, layouts layout.Set, recorder history.Recorder, log *logging.Logger) *Controller {
	if recorder == nil {
		recorder = history.NopRecorder{}
	}
	if log == nil {
		log = logging.Default()
	}
	return &Controller{
		deck:     d,
		engine:   engine,
		layouts:  layouts,
		recorder: recorder,
		log:      log,
	}
}

// SwitchLayout renders the named layout and makes it current. The previous
// layout stays active when the name is unknown or rendering fails.
func (c *Controller) SwitchLayout(name string) error {
	l, err := c.layouts.Get(name)
	if err != nil {
		return err
	}
	if err := c.engine.RenderLayout(c.deck, l); err != nil {
		return err
	}

	c.mu.Lock()
	c.current = l
	c.mu.Unlock()

	c.log.Info("layout active", "layout", name)
	return nil
}

// Run renders the initial layout and dispatches key events until the
// context is cancelled or the device stops reporting.
func (c *Controller) Run(ctx context.Context, initial string) error {
	if err := c.SwitchLayout(initial); err != nil {
		return fmt.Errorf("rendering initial layout: %w", err)
	}

	events, err := c.deck.Events(ctx)
	if err != nil {
		return fmt.Errorf("starting event stream: %w", err)
	}

	for ev := range events {
		if !ev.Pressed {
			continue
		}
		c.handlePress(ctx, ev.Index)
	}

	if ctx.Err() != nil {
		return nil
	}
	return ErrDeviceStopped
}

// handlePress runs the action bound to a key, records the outcome and
// applies any returned command. Action failures never propagate.
func (c *Controller) handlePress(ctx context.Context, index int) {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	entry := history.Entry{
		Layout:   current.Name,
		KeyIndex: index,
	}

	spec, ok := current.Key(index)
	if !ok || spec.Action == nil {
		entry.Status = history.StatusIgnored
		c.log.Debug("press ignored", "layout", current.Name, "key", index)
		c.record(ctx, entry)
		return
	}

	entry.Action = spec.Action.Describe()
	c.log.Info("key pressed", "layout", current.Name, "key", index, "action", entry.Action)

	cmd, err := c.invoke(ctx, spec.Action)
	if err != nil {
		entry.Status = history.StatusError
		entry.Error = err.Error()
		c.log.Warn("action failed", "layout", current.Name, "key", index,
			"action", entry.Action, "error", err)
		c.record(ctx, entry)
		return
	}

	entry.Status = history.StatusOK
	c.record(ctx, entry)

	if cmd != nil {
		c.apply(cmd)
	}
}

// invoke runs the action, converting a panic into an error so one broken
// action cannot take the dispatch loop down.
func (c *Controller) invoke(ctx context.Context, action layout.Action) (cmd layout.Command, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	return action.Invoke(ctx)
}

// apply executes a command an action handed back.
func (c *Controller) apply(cmd layout.Command) {
	switch v := cmd.(type) {
	case layout.SwitchLayout:
		if err := c.SwitchLayout(v.Name); err != nil {
			c.log.Error("layout switch failed", "layout", v.Name, "error", err)
		}
	default:
		c.log.Warn("unhandled action command", "command", fmt.Sprintf("%T", cmd))
	}
}

// record stores the press outcome. History is an audit trail; failures are
// logged and dispatch continues.
func (c *Controller) record(ctx context.Context, entry history.Entry) {
	if err := c.recorder.Record(ctx, entry); err != nil {
		c.log.Warn("press history write failed", "error", err)
	}
}
