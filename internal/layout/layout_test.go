package layout

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/deckhand/internal/infrastructure/config"
)

func noopBind(spec config.ActionConfig) (Action, error) {
	return Func{
		Name: spec.Type,
		Fn: func(context.Context) (Command, error) {
			return nil, nil
		},
	}, nil
}

func TestBuild_Valid(t *testing.T) {
	layouts := map[string]config.LayoutConfig{
		"main": {Keys: map[int]config.KeyConfig{
			0: {Label: "apps", Action: &config.ActionConfig{Type: "switch_layout", Layout: "apps"}},
			5: {Label: "term", Action: &config.ActionConfig{Type: "exec", Command: "xterm"}},
		}},
		"apps": {Keys: map[int]config.KeyConfig{
			0: {Label: "back", Action: &config.ActionConfig{Type: "switch_layout", Layout: "main"}},
		}},
	}

	set, err := Build(6, layouts, noopBind)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	main, err := set.Get("main")
	if err != nil {
		t.Fatalf("Get(main) error = %v", err)
	}

	spec, ok := main.Key(5)
	if !ok {
		t.Fatal("Key(5) not found")
	}
	if spec.Label != "term" || spec.Action == nil {
		t.Errorf("Key(5) = %+v, want term with action", spec)
	}

	if _, ok := main.Key(3); ok {
		t.Error("Key(3) should be unmapped")
	}
}

func TestBuild_KeyOutOfRange(t *testing.T) {
	layouts := map[string]config.LayoutConfig{
		"main": {Keys: map[int]config.KeyConfig{6: {Label: "x"}}},
	}

	_, err := Build(6, layouts, noopBind)
	if !errors.Is(err, ErrKeyOutOfRange) {
		t.Errorf("Build() error = %v, want ErrKeyOutOfRange", err)
	}
}

func TestBuild_UnknownSwitchTarget(t *testing.T) {
	layouts := map[string]config.LayoutConfig{
		"main": {Keys: map[int]config.KeyConfig{
			0: {Action: &config.ActionConfig{Type: "switch_layout", Layout: "ghost"}},
		}},
	}

	_, err := Build(6, layouts, noopBind)
	if !errors.Is(err, ErrUnknownLayout) {
		t.Errorf("Build() error = %v, want ErrUnknownLayout", err)
	}
}

func TestBuild_BinderErrorIncludesKey(t *testing.T) {
	bindErr := errors.New("bad action")
	layouts := map[string]config.LayoutConfig{
		"main": {Keys: map[int]config.KeyConfig{
			2: {Action: &config.ActionConfig{Type: "exec"}},
		}},
	}

	_, err := Build(6, layouts, func(config.ActionConfig) (Action, error) {
		return nil, bindErr
	})
	if !errors.Is(err, bindErr) {
		t.Fatalf("Build() error = %v, want wrapped binder error", err)
	}
}

func TestBuild_Empty(t *testing.T) {
	if _, err := Build(6, nil, noopBind); !errors.Is(err, ErrNoLayouts) {
		t.Errorf("Build() error = %v, want ErrNoLayouts", err)
	}
}

func TestSet_GetUnknown(t *testing.T) {
	set := Set{"main": &Layout{Name: "main"}}
	if _, err := set.Get("missing"); !errors.Is(err, ErrUnknownLayout) {
		t.Errorf("Get() error = %v, want ErrUnknownLayout", err)
	}
}
