package overlay

import (
	"errors"
	"testing"
	"time"
)

// fakePolicy records every property application.
type fakePolicy struct {
	exclusions []uintptr
	levels     []Level
	opacities  []float64
	hidden     int

	exclusionErr error
}

func (f *fakePolicy) ApplyCaptureExclusion(handle uintptr) error {
	f.exclusions = append(f.exclusions, handle)
	return f.exclusionErr
}

func (f *fakePolicy) ApplyLevel(handle uintptr, level Level) error {
	f.levels = append(f.levels, level)
	return nil
}

func (f *fakePolicy) ApplyOpacity(handle uintptr, opacity float64) error {
	f.opacities = append(f.opacities, opacity)
	return nil
}

func (f *fakePolicy) HideFromTaskSwitcher(handle uintptr) error {
	f.hidden++
	return nil
}

// fakeWindow records calls in order.
type fakeWindow struct {
	calls []string
}

func (w *fakeWindow) Show()                 { w.calls = append(w.calls, "show") }
func (w *fakeWindow) Hide()                 { w.calls = append(w.calls, "hide") }
func (w *fakeWindow) Focus()                { w.calls = append(w.calls, "focus") }
func (w *fakeWindow) SetAlwaysOnTop(v bool) { w.calls = append(w.calls, "set-top") }

func (w *fakeWindow) NativeWindowHandle() (uintptr, error) { return 42, nil }

func newAttached(t *testing.T) (*Controller, *fakePolicy, *fakeWindow) {
	t.Helper()
	policy := &fakePolicy{}
	win := &fakeWindow{}
	c := NewController(policy, 0.85)
	if err := c.Attach(win); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return c, policy, win
}

func TestAttachAppliesExclusionBeforeShow(t *testing.T) {
	c, policy, win := newAttached(t)

	if len(policy.exclusions) != 1 || policy.exclusions[0] != 42 {
		t.Fatalf("expected one exclusion on handle 42, got %v", policy.exclusions)
	}
	for _, call := range win.calls {
		if call == "show" {
			t.Fatal("window shown during Attach; exclusion must precede first show")
		}
	}
	if !c.CaptureExcluded() {
		t.Fatal("expected capture exclusion requested after Attach")
	}
	if c.Visible() {
		t.Fatal("window should not be visible after Attach")
	}
}

func TestExclusionHoldsAcrossVisibilityTransitions(t *testing.T) {
	c, _, _ := newAttached(t)

	c.Show()
	for range 5 {
		if !c.CaptureExcluded() {
			t.Fatal("capture exclusion dropped during visibility transition")
		}
		c.ToggleVisibility()
	}
}

func TestToggleVisibilityAlternates(t *testing.T) {
	c, _, win := newAttached(t)

	c.ToggleVisibility()
	if !c.Visible() {
		t.Fatal("expected visible after first toggle")
	}
	c.ToggleVisibility()
	if c.Visible() {
		t.Fatal("expected hidden after second toggle")
	}

	// Showing must re-assert stacking and request focus.
	var sawFocus bool
	for _, call := range win.calls {
		if call == "focus" {
			sawFocus = true
		}
	}
	if !sawFocus {
		t.Fatal("expected focus request when showing")
	}
}

func TestToggleVisibilityWithoutWindow(t *testing.T) {
	c := NewController(&fakePolicy{}, 0.85)

	// Must be a silent no-op with no window attached.
	c.ToggleVisibility()
	if c.Visible() {
		t.Fatal("unattached controller reported visible")
	}
}

func TestDegradedOnExclusionFailure(t *testing.T) {
	policy := &fakePolicy{exclusionErr: ErrUnsupported}
	c := NewController(policy, 0.85)

	var reason string
	c.OnDegraded(func(r string) { reason = r })

	if err := c.Attach(&fakeWindow{}); err != nil {
		t.Fatalf("Attach must not fail on property errors: %v", err)
	}
	if !c.Degraded() {
		t.Fatal("expected degraded state")
	}
	if reason == "" {
		t.Fatal("expected degraded callback with a reason")
	}
	if !errors.Is(policy.exclusionErr, ErrUnsupported) {
		t.Fatal("sanity: exclusion error should be ErrUnsupported")
	}
	// The requested state stays true even when the OS refused it.
	if !c.CaptureExcluded() {
		t.Fatal("requested exclusion state must remain true")
	}
}

func TestDegradedCallbackRunsOutsideControllerLock(t *testing.T) {
	policy := &fakePolicy{exclusionErr: ErrUnsupported}
	c := NewController(policy, 0.85)

	// The production callback crosses into the service, which in turn
	// queries the controller from under its own lock. Calling back into
	// the controller here hangs forever if Attach still holds c.mu.
	var sawDegraded bool
	c.OnDegraded(func(string) { sawDegraded = c.Degraded() })

	done := make(chan error, 1)
	go func() { done <- c.Attach(&fakeWindow{}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Attach: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Attach did not return; degraded callback ran under the controller lock")
	}
	if !sawDegraded {
		t.Fatal("callback should observe the degraded state")
	}
}

func TestSetOpacityClamps(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"above_one", 1.5, 1},
		{"below_zero", -0.2, 0},
		{"in_range", 0.6, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, policy, _ := newAttached(t)
			if err := c.SetOpacity(tt.in); err != nil {
				t.Fatalf("SetOpacity: %v", err)
			}
			if got := c.Opacity(); got != tt.want {
				t.Fatalf("opacity = %v, want %v", got, tt.want)
			}
			applied := policy.opacities[len(policy.opacities)-1]
			if applied != tt.want {
				t.Fatalf("applied opacity = %v, want %v", applied, tt.want)
			}
		})
	}
}

func TestFocusReassertsLevel(t *testing.T) {
	c, policy, _ := newAttached(t)

	before := len(policy.levels)
	c.HandleFocus()
	if len(policy.levels) != before+1 {
		t.Fatal("expected level re-applied on focus")
	}
}

func TestSetAlwaysOnTopFallsBackToNormalLevel(t *testing.T) {
	c, policy, _ := newAttached(t)

	c.SetAlwaysOnTop(false)
	applied := policy.levels[len(policy.levels)-1]
	if applied != LevelNormal {
		t.Fatalf("expected LevelNormal when always-on-top disabled, got %v", applied)
	}

	// Disabled always-on-top must not be re-asserted on focus.
	before := len(policy.levels)
	c.HandleFocus()
	if len(policy.levels) != before {
		t.Fatal("level re-asserted while always-on-top disabled")
	}
}
