package overlay

import (
	"fmt"
	"log/slog"
	"sync"
)

// Window is the subset of the native window surface the controller drives.
// The production implementation wraps a Wails webview window; tests use a
// recording fake.
type Window interface {
	Show()
	Hide()
	Focus()
	SetAlwaysOnTop(bool)
	NativeWindowHandle() (uintptr, error)
}

// Controller owns the lifecycle and properties of the overlay window.
// Exactly one Controller exists per process. All window property changes
// flow through here; nothing else touches the window.
type Controller struct {
	mu     sync.Mutex
	win    Window
	handle uintptr
	policy Policy

	visible     bool
	opacity     float64
	level       Level
	alwaysOnTop bool

	// captureExcluded is the requested state and is true from Attach
	// onward, for the life of the window. degraded records that the OS
	// refused the request, which breaks the core promise of the app and
	// must be surfaced, not swallowed.
	captureExcluded bool
	degraded        bool
	onDegraded      func(reason string)
}

// NewController creates a controller with the given platform policy.
// The initial opacity reads as a semi-transparent HUD.
func NewController(policy Policy, opacity float64) *Controller {
	return &Controller{
		policy:      policy,
		opacity:     clampOpacity(opacity),
		level:       DefaultLevel(),
		alwaysOnTop: true,
	}
}

// OnDegraded registers a callback fired when capture exclusion could not
// be applied. Must be set before Attach.
func (c *Controller) OnDegraded(fn func(reason string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDegraded = fn
}

// Attach binds the controller to its window and applies every window
// property. Capture exclusion is applied here, before the window is ever
// shown, so no frame can leak into a capture stream. Returns an error
// only when the native handle cannot be resolved; property failures are
// logged and reported through OnDegraded. The callback runs after the
// controller lock is released: it may call back into the controller or
// into code holding its own locks.
func (c *Controller) Attach(win Window) error {
	handle, err := win.NativeWindowHandle()
	if err != nil {
		return fmt.Errorf("native window handle: %w", err)
	}

	c.mu.Lock()
	c.win = win
	c.handle = handle

	c.captureExcluded = true
	var degradedReason string
	if err := c.policy.ApplyCaptureExclusion(handle); err != nil {
		c.degraded = true
		slog.Error("apply capture exclusion", "error", err)
		degradedReason = err.Error()
	}

	if err := c.policy.HideFromTaskSwitcher(handle); err != nil {
		slog.Warn("hide from task switcher", "error", err)
	}
	if err := c.policy.ApplyLevel(handle, c.level); err != nil {
		slog.Warn("apply window level", "error", err, "level", c.level)
	}
	if err := c.policy.ApplyOpacity(handle, c.opacity); err != nil {
		slog.Warn("apply opacity", "error", err)
	}
	onDegraded := c.onDegraded
	c.mu.Unlock()

	if degradedReason != "" && onDegraded != nil {
		onDegraded(degradedReason)
	}
	return nil
}

// Show makes the window visible, re-asserting stacking and focus.
func (c *Controller) Show() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.win == nil {
		return
	}
	c.showLocked()
}

// ToggleVisibility flips window visibility. Showing re-applies the
// stacking level and requests focus. No-op without an attached window.
func (c *Controller) ToggleVisibility() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.win == nil {
		return
	}

	if c.visible {
		c.win.Hide()
		c.visible = false
		return
	}
	c.showLocked()
}

func (c *Controller) showLocked() {
	c.win.Show()
	c.reassertLocked()
	c.win.Focus()
	c.visible = true
}

// HandleFocus re-asserts the stacking level. Some window managers demote
// always-on-top windows after focus changes, so this runs on every focus
// event.
func (c *Controller) HandleFocus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.win == nil {
		return
	}
	c.reassertLocked()
}

func (c *Controller) reassertLocked() {
	if !c.alwaysOnTop {
		return
	}
	c.win.SetAlwaysOnTop(true)
	if err := c.policy.ApplyLevel(c.handle, c.level); err != nil {
		slog.Debug("reassert window level", "error", err)
	}
}

// SetOpacity clamps v to [0,1] and applies it.
func (c *Controller) SetOpacity(v float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.opacity = clampOpacity(v)
	if c.win == nil {
		return nil
	}
	if err := c.policy.ApplyOpacity(c.handle, c.opacity); err != nil {
		return fmt.Errorf("apply opacity: %w", err)
	}
	return nil
}

// SetAlwaysOnTop toggles the floating policy, for cases where it
// conflicts with another always-on-top system surface.
func (c *Controller) SetAlwaysOnTop(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.alwaysOnTop = on
	if c.win == nil {
		return
	}
	c.win.SetAlwaysOnTop(on)

	level := c.level
	if !on {
		level = LevelNormal
	}
	if err := c.policy.ApplyLevel(c.handle, level); err != nil {
		slog.Warn("apply window level", "error", err, "level", level)
	}
}

// Visible reports current visibility.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Opacity returns the current opacity.
func (c *Controller) Opacity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opacity
}

// CaptureExcluded reports whether exclusion has been requested on the
// window. True from Attach onward.
func (c *Controller) CaptureExcluded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captureExcluded
}

// Degraded reports whether the OS refused capture exclusion, leaving the
// window potentially visible to screen sharing.
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

func clampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
