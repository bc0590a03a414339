package actions

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/nerrad567/deckhand/internal/infrastructure/config"
	"github.com/nerrad567/deckhand/internal/input"
	"github.com/nerrad567/deckhand/internal/layout"
)

// defaultOpener launches URLs on a standard Linux desktop.
const defaultOpener = "xdg-open"

// pathPlaceholder matches {path:name} references in command arguments.
var pathPlaceholder = regexp.MustCompile(`\{path:([^}]+)\}`)

// Binder resolves action specs against the configured environment.
type Binder struct {
	// Injector delivers synthetic key events for hotkey and type_text.
	Injector input.Injector

	// Paths backs {path:name} expansion in exec arguments.
	Paths map[string]string

	// Opener is the URL-opening command. Defaults to xdg-open.
	Opener string

	// runCmd starts a detached command. Overridable in tests.
	runCmd func(ctx context.Context, name string, args ...string) error
}

// NewBinder creates a binder over the given injector and shared paths.
func NewBinder(inj input.Injector, paths map[string]string) *Binder {
	return &Binder{
		Injector: inj,
		Paths:    paths,
		Opener:   defaultOpener,
		runCmd:   startDetached,
	}
}

// startDetached launches a command without waiting for it to finish.
// A goroutine reaps the process so it never turns into a zombie.
func startDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	go cmd.Wait() //nolint:errcheck // Exit status of launched programs is not ours to handle
	return nil
}

// Bind resolves one action spec into an executable Action. All validation
// happens here so a bad spec fails at startup.
func (b *Binder) Bind(spec config.ActionConfig) (layout.Action, error) {
	switch spec.Type {
	case "exec":
		return b.bindExec(spec)
	case "open_url":
		return b.bindOpenURL(spec)
	case "type_text":
		return b.bindTypeText(spec)
	case "hotkey":
		return b.bindHotkey(spec)
	case "switch_layout":
		return b.bindSwitchLayout(spec)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, spec.Type)
	}
}

func (b *Binder) bindExec(spec config.ActionConfig) (layout.Action, error) {
	if spec.Command == "" {
		return nil, fmt.Errorf("exec action requires a command")
	}

	command, err := b.expandPaths(spec.Command)
	if err != nil {
		return nil, err
	}
	args := make([]string, len(spec.Args))
	for i, arg := range spec.Args {
		if args[i], err = b.expandPaths(arg); err != nil {
			return nil, err
		}
	}

	return layout.Func{
		Name: "exec " + command,
		Fn: func(ctx context.Context) (layout.Command, error) {
			return nil, b.runCmd(ctx, command, args...)
		},
	}, nil
}

func (b *Binder) bindOpenURL(spec config.ActionConfig) (layout.Action, error) {
	if spec.URL == "" {
		return nil, fmt.Errorf("open_url action requires a url")
	}

	opener := b.Opener
	if opener == "" {
		opener = defaultOpener
	}
	url := spec.URL

	return layout.Func{
		Name: "open_url " + url,
		Fn: func(ctx context.Context) (layout.Command, error) {
			return nil, b.runCmd(ctx, opener, url)
		},
	}, nil
}

func (b *Binder) bindTypeText(spec config.ActionConfig) (layout.Action, error) {
	if spec.Text == "" {
		return nil, fmt.Errorf("type_text action requires text")
	}

	typer, ok := b.Injector.(input.Typer)
	if !ok {
		return nil, ErrCannotType
	}
	text := spec.Text

	return layout.Func{
		Name: "type_text",
		Fn: func(ctx context.Context) (layout.Command, error) {
			return nil, typer.Type(ctx, text)
		},
	}, nil
}

func (b *Binder) bindHotkey(spec config.ActionConfig) (layout.Action, error) {
	if len(spec.Keys) == 0 {
		return nil, fmt.Errorf("hotkey action requires keys")
	}

	codes := make([]int, len(spec.Keys))
	for i, name := range spec.Keys {
		code, err := input.Keycode(name)
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}

	return layout.Func{
		Name: "hotkey " + strings.Join(spec.Keys, "+"),
		Fn: func(ctx context.Context) (layout.Command, error) {
			return nil, input.Hotkey(ctx, b.Injector, codes)
		},
	}, nil
}

func (b *Binder) bindSwitchLayout(spec config.ActionConfig) (layout.Action, error) {
	if spec.Layout == "" {
		return nil, fmt.Errorf("switch_layout action requires a layout")
	}
	target := spec.Layout

	return layout.Func{
		Name: "switch_layout " + target,
		Fn: func(context.Context) (layout.Command, error) {
			return layout.SwitchLayout{Name: target}, nil
		},
	}, nil
}

// expandPaths replaces every {path:name} placeholder, failing on names
// the paths section does not define.
func (b *Binder) expandPaths(s string) (string, error) {
	var missing string
	expanded := pathPlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		name := pathPlaceholder.FindStringSubmatch(match)[1]
		value, ok := b.Paths[name]
		if !ok {
			missing = name
			return match
		}
		return value
	})
	if missing != "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownPath, missing)
	}
	return expanded, nil
}
