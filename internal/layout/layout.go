package layout

import (
	"context"
	"fmt"

	"github.com/nerrad567/deckhand/internal/infrastructure/config"
)

// Action is the behaviour bound to a key press. The returned command, if
// any, is interpreted by the controller; actions themselves never touch
// the device.
type Action interface {
	Invoke(ctx context.Context) (Command, error)

	// Describe returns a short human-readable form for logs and history.
	Describe() string
}

// Command is a value returned by an action asking the controller to do
// something on its behalf. The only command today is SwitchLayout.
type Command interface {
	isCommand()
}

// SwitchLayout asks the controller to render the named layout.
type SwitchLayout struct {
	Name string
}

func (SwitchLayout) isCommand() {}

// Func adapts a plain function to the Action interface.
type Func struct {
	Name string
	Fn   func(ctx context.Context) (Command, error)
}

// Invoke runs the wrapped function.
func (f Func) Invoke(ctx context.Context) (Command, error) {
	return f.Fn(ctx)
}

// Describe returns the action name.
func (f Func) Describe() string {
	return f.Name
}

// KeySpec is the resolved definition of a single key: what it looks like
// and what it does.
type KeySpec struct {
	Icon       string
	Label      string
	Color      string
	LabelColor string
	Action     Action
}

// Layout is a named mapping of key index to key spec. Unmapped indices
// render blank and ignore presses.
type Layout struct {
	Name string
	Keys map[int]KeySpec
}

// Key returns the spec for an index, with ok=false for unmapped keys.
func (l *Layout) Key(index int) (KeySpec, bool) {
	spec, ok := l.Keys[index]
	return spec, ok
}

// Set holds every layout by name.
type Set map[string]*Layout

// Get returns the named layout or ErrUnknownLayout.
func (s Set) Get(name string) (*Layout, error) {
	l, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	return l, nil
}

// BindFunc resolves an action configuration into an executable Action.
type BindFunc func(spec config.ActionConfig) (Action, error)

// Build validates the configured layouts against the device key count and
// binds every action. All problems are reported at build time.
//
// Validation covers key index bounds, colour values, switch_layout targets
// referencing defined layouts, and action bindings the binder rejects.
func Build(keyCount int, layouts map[string]config.LayoutConfig, bind BindFunc) (Set, error) {
	if len(layouts) == 0 {
		return nil, ErrNoLayouts
	}

	set := make(Set, len(layouts))
	for name, lc := range layouts {
		l := &Layout{
			Name: name,
			Keys: make(map[int]KeySpec, len(lc.Keys)),
		}
		for idx, kc := range lc.Keys {
			if idx < 0 || idx >= keyCount {
				return nil, fmt.Errorf("%w: layout %q key %d (device has %d keys)",
					ErrKeyOutOfRange, name, idx, keyCount)
			}
			if kc.Color != "" {
				if _, err := ParseColor(kc.Color); err != nil {
					return nil, fmt.Errorf("layout %q key %d: %w", name, idx, err)
				}
			}
			if kc.LabelColor != "" {
				if _, err := ParseColor(kc.LabelColor); err != nil {
					return nil, fmt.Errorf("layout %q key %d label: %w", name, idx, err)
				}
			}

			spec := KeySpec{
				Icon:       kc.Icon,
				Label:      kc.Label,
				Color:      kc.Color,
				LabelColor: kc.LabelColor,
			}
			if kc.Action != nil {
				action, err := bind(*kc.Action)
				if err != nil {
					return nil, fmt.Errorf("layout %q key %d: %w", name, idx, err)
				}
				spec.Action = action
			}
			l.Keys[idx] = spec
		}
		set[name] = l
	}

	// Switch targets can only be checked once every layout exists.
	for name, lc := range layouts {
		for idx, kc := range lc.Keys {
			if kc.Action == nil || kc.Action.Type != "switch_layout" {
				continue
			}
			if _, ok := set[kc.Action.Layout]; !ok {
				return nil, fmt.Errorf("%w: layout %q key %d switches to %q",
					ErrUnknownLayout, name, idx, kc.Action.Layout)
			}
		}
	}

	return set, nil
}
