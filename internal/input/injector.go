package input

import (
	"context"
	"fmt"
	"os/exec"
)

// Event is a single key transition, identified by Linux event code.
type Event struct {
	Code    int
	Pressed bool
}

// Injector delivers a batch of key events to the host. Implementations must
// deliver the batch in order.
type Injector interface {
	Send(ctx context.Context, events []Event) error
	Close() error
}

// Typer is implemented by injectors that can type free text directly.
type Typer interface {
	Type(ctx context.Context, text string) error
}

// ExecInjector drives a ydotool-style command line tool. Each batch becomes
// a single invocation: tool key CODE:1 CODE:0 ...
type ExecInjector struct {
	// Tool is the path to the injection binary.
	Tool string

	// run executes the prepared command. Overridable in tests.
	run func(cmd *exec.Cmd) error
}

// NewExecInjector returns an injector that shells out to the given tool.
func NewExecInjector(tool string) *ExecInjector {
	return &ExecInjector{
		Tool: tool,
		run: func(cmd *exec.Cmd) error {
			if out, err := cmd.CombinedOutput(); err != nil {
				return fmt.Errorf("%s: %w (%s)", cmd.Path, err, out)
			}
			return nil
		},
	}
}

// Send invokes the tool once with the whole batch. A single invocation keeps
// press/release pairs atomic from the tool's point of view.
func (e *ExecInjector) Send(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	args := make([]string, 0, len(events)+1)
	args = append(args, "key")
	for _, ev := range events {
		state := 0
		if ev.Pressed {
			state = 1
		}
		args = append(args, fmt.Sprintf("%d:%d", ev.Code, state))
	}

	cmd := exec.CommandContext(ctx, e.Tool, args...)
	if err := e.run(cmd); err != nil {
		return fmt.Errorf("sending key events: %w", err)
	}
	return nil
}

// Type asks the tool to type literal text. The "--" stops the tool from
// interpreting leading dashes in the text as flags.
func (e *ExecInjector) Type(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, e.Tool, "type", "--", text)
	if err := e.run(cmd); err != nil {
		return fmt.Errorf("typing text: %w", err)
	}
	return nil
}

// Close is a no-op; the exec backend holds no resources between calls.
func (e *ExecInjector) Close() error {
	return nil
}

// Hotkey sends a key combination: presses in the given order, releases in
// reverse, all in one batch so modifiers stay held across the chord.
func Hotkey(ctx context.Context, inj Injector, codes []int) error {
	if len(codes) == 0 {
		return nil
	}

	events := make([]Event, 0, len(codes)*2)
	for _, code := range codes {
		events = append(events, Event{Code: code, Pressed: true})
	}
	for i := len(codes) - 1; i >= 0; i-- {
		events = append(events, Event{Code: codes[i], Pressed: false})
	}
	return inj.Send(ctx, events)
}

// ReleaseAll emits a release for every key in the keycode table. Releasing
// keys that were never pressed is harmless, so the batch is exhaustive
// rather than tracking which keys an aborted action left down.
func ReleaseAll(ctx context.Context, inj Injector) error {
	codes := allCodes()
	events := make([]Event, 0, len(codes))
	for _, code := range codes {
		events = append(events, Event{Code: code, Pressed: false})
	}
	return inj.Send(ctx, events)
}
