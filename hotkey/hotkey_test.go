package hotkey

import (
	"testing"
	"time"

	"go.ghostpane.dev/ghostpane/internal/types"
)

func TestDefaultBindingsUnique(t *testing.T) {
	if err := validate(DefaultBindings()); err != nil {
		t.Fatalf("default bindings invalid: %v", err)
	}
	if got := len(DefaultBindings()); got != 6 {
		t.Fatalf("expected 6 bindings, got %d", got)
	}
}

func TestValidateRejectsDuplicateChord(t *testing.T) {
	dup := []Binding{
		{Chord: []string{"ctrl", "9"}, Action: types.ActionToggleVisibility},
		{Chord: []string{"9", "ctrl"}, Action: types.ActionSubmit}, // same chord, different order
	}
	if err := validate(dup); err == nil {
		t.Fatal("expected duplicate chord error")
	}
}

func TestValidateRejectsEmptyChord(t *testing.T) {
	if err := validate([]Binding{{Action: types.ActionClear}}); err == nil {
		t.Fatal("expected empty chord error")
	}
}

func TestStopBeforeStartIsNoop(t *testing.T) {
	m := New(DefaultBindings(), func(types.Action) {})

	// Must be safe with nothing registered, and safe twice in a row.
	m.Stop()
	m.Stop()
}

func TestFireDeliversOncePerPress(t *testing.T) {
	got := make(chan types.Action, 8)
	m := New(nil, func(a types.Action) { got <- a })
	m.events = make(chan types.Action, 8)
	m.done = make(chan struct{})
	defer close(m.done)
	go m.dispatchLoop()

	m.arm(types.ActionSubmit)
	m.fire(types.ActionSubmit) // key-down
	m.fire(types.ActionSubmit) // OS auto-repeat, must not fire again
	m.arm(types.ActionSubmit)  // key-up re-arms
	m.fire(types.ActionSubmit) // second physical press

	var count int
	deadline := time.After(time.Second)
	for count < 2 {
		select {
		case <-got:
			count++
		case <-deadline:
			t.Fatalf("expected 2 deliveries, got %d", count)
		}
	}

	select {
	case <-got:
		t.Fatal("auto-repeat produced an extra delivery")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatchPreservesPressOrder(t *testing.T) {
	got := make(chan types.Action, 8)
	m := New(nil, func(a types.Action) { got <- a })
	m.events = make(chan types.Action, 8)
	m.done = make(chan struct{})
	defer close(m.done)
	go m.dispatchLoop()

	order := []types.Action{
		types.ActionToggleMic,
		types.ActionScreenshot,
		types.ActionSubmit,
	}
	for _, a := range order {
		m.arm(a)
		m.fire(a)
	}

	for i, want := range order {
		select {
		case a := <-got:
			if a != want {
				t.Fatalf("delivery %d = %s, want %s", i, a, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for delivery %d", i)
		}
	}
}
