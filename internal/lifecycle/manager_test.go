package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nerrad567/deckhand/internal/input"
)

type fakeSurface struct {
	resets   int32
	closes   int32
	resetErr error
}

func (f *fakeSurface) Reset() error {
	atomic.AddInt32(&f.resets, 1)
	return f.resetErr
}

func (f *fakeSurface) Close() error {
	atomic.AddInt32(&f.closes, 1)
	return nil
}

type countingInjector struct {
	sends  int32
	closes int32
	err    error
}

func (c *countingInjector) Send(context.Context, []input.Event) error {
	atomic.AddInt32(&c.sends, 1)
	return c.err
}

func (c *countingInjector) Close() error {
	atomic.AddInt32(&c.closes, 1)
	return nil
}

func TestCleanup_RunsOnce(t *testing.T) {
	surface := &fakeSurface{}
	inj := &countingInjector{}

	m := New(nil)
	m.SetSurface(surface)
	m.SetInjector(inj)

	if m.State() != StateActive {
		t.Fatalf("State() = %q, want active", m.State())
	}

	for i := 0; i < 3; i++ {
		if err := m.Cleanup(context.Background()); err != nil {
			t.Fatalf("Cleanup() call %d error = %v", i, err)
		}
	}

	if m.State() != StateDone {
		t.Errorf("State() = %q, want done", m.State())
	}
	if inj.sends != 1 {
		t.Errorf("release batch sent %d times, want 1", inj.sends)
	}
	if surface.resets != 1 || surface.closes != 1 {
		t.Errorf("surface resets=%d closes=%d, want 1/1", surface.resets, surface.closes)
	}
	if inj.closes != 1 {
		t.Errorf("injector closed %d times, want 1", inj.closes)
	}
}

func TestCleanup_ConcurrentCallersShareResult(t *testing.T) {
	surface := &fakeSurface{resetErr: errors.New("device gone")}
	m := New(nil)
	m.SetSurface(surface)

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Cleanup(context.Background())
		}(i)
	}
	wg.Wait()

	if surface.resets != 1 {
		t.Errorf("Reset() ran %d times under concurrency, want 1", surface.resets)
	}
	for i, err := range results {
		if err == nil {
			t.Errorf("results[%d] = nil, want shared reset error", i)
		}
	}
}

func TestCleanup_StepFailureDoesNotStopLaterSteps(t *testing.T) {
	surface := &fakeSurface{}
	inj := &countingInjector{err: errors.New("uinput gone")}

	m := New(nil)
	m.SetSurface(surface)
	m.SetInjector(inj)

	err := m.Cleanup(context.Background())
	if err == nil {
		t.Fatal("Cleanup() should report the release failure")
	}

	// The device steps must still have run.
	if surface.resets != 1 || surface.closes != 1 {
		t.Errorf("surface resets=%d closes=%d after release failure, want 1/1",
			surface.resets, surface.closes)
	}
	if inj.closes != 1 {
		t.Errorf("injector closed %d times after release failure, want 1", inj.closes)
	}
}

func TestCleanup_NilTargetsAreTolerated(t *testing.T) {
	m := New(nil)
	if err := m.Cleanup(context.Background()); err != nil {
		t.Errorf("Cleanup() with nothing registered error = %v", err)
	}
}

func TestCleanup_ReleaseBatchCoversAllKeys(t *testing.T) {
	var batch []input.Event
	m := New(nil)
	m.SetInjector(recorderInjector{batch: &batch})

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	if len(batch) != len(input.Keycodes) {
		t.Errorf("release batch has %d events, want %d", len(batch), len(input.Keycodes))
	}
	for _, ev := range batch {
		if ev.Pressed {
			t.Fatalf("release batch contains press for code %d", ev.Code)
		}
	}
}

func TestCleanup_DaemonStopsAfterReleaseBatch(t *testing.T) {
	var order []string
	m := New(nil)
	m.SetInjector(orderInjector{order: &order})
	m.SetDaemon(orderDaemon{order: &order})

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	want := []string{"send", "close", "stop"}
	if len(order) != len(want) {
		t.Fatalf("cleanup ran steps %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("cleanup ran steps %v, want %v", order, want)
		}
	}
}

func TestCleanup_DaemonStopErrorIsCollected(t *testing.T) {
	stopErr := errors.New("process group gone")
	m := New(nil)
	m.SetDaemon(orderDaemon{order: &[]string{}, err: stopErr})

	if err := m.Cleanup(context.Background()); !errors.Is(err, stopErr) {
		t.Errorf("Cleanup() error = %v, want wrapped %v", err, stopErr)
	}
}

type recorderInjector struct {
	batch *[]input.Event
}

func (r recorderInjector) Send(_ context.Context, events []input.Event) error {
	*r.batch = append(*r.batch, events...)
	return nil
}

func (recorderInjector) Close() error { return nil }

type orderInjector struct {
	order *[]string
}

func (o orderInjector) Send(context.Context, []input.Event) error {
	*o.order = append(*o.order, "send")
	return nil
}

func (o orderInjector) Close() error {
	*o.order = append(*o.order, "close")
	return nil
}

type orderDaemon struct {
	order *[]string
	err   error
}

func (o orderDaemon) Stop() error {
	*o.order = append(*o.order, "stop")
	return o.err
}
