// Package overlay owns the single capture-excluded overlay window.
package overlay

import "errors"

// ErrUnsupported is returned when a window property has no implementation
// on the current platform or OS build.
var ErrUnsupported = errors.New("overlay: not supported on this platform")

// Level is the logical stacking level of the overlay window.
// Platforms translate it to their native window-level mechanism.
type Level int

const (
	// LevelNormal stacks with ordinary application windows.
	LevelNormal Level = iota
	// LevelFloating stays above normal windows. Default on macOS, where it
	// keeps focus behavior sane while remaining on top.
	LevelFloating
	// LevelScreenSaver stays above everything, including full-screen apps.
	// Default on Windows.
	LevelScreenSaver
)

func (l Level) String() string {
	switch l {
	case LevelFloating:
		return "floating"
	case LevelScreenSaver:
		return "screen-saver"
	default:
		return "normal"
	}
}

// Policy applies platform-specific window properties to a native handle.
// The controller never branches on the platform name itself; it only
// speaks through this interface.
type Policy interface {
	// ApplyCaptureExclusion removes the window from every screen-capture,
	// screen-sharing and screenshot pipeline while keeping it visible to
	// the user. Returns ErrUnsupported where the OS has no such facility.
	ApplyCaptureExclusion(handle uintptr) error

	// ApplyLevel sets the native stacking level for the logical Level.
	ApplyLevel(handle uintptr, level Level) error

	// ApplyOpacity sets whole-window opacity in [0,1].
	ApplyOpacity(handle uintptr, opacity float64) error

	// HideFromTaskSwitcher removes the window from Alt-Tab / Dock surfaces.
	HideFromTaskSwitcher(handle uintptr) error
}

// NewPolicy returns the Policy for the running platform.
func NewPolicy() Policy {
	return newPolicy()
}

// DefaultLevel is the stacking level used at window creation.
func DefaultLevel() Level {
	return defaultLevel()
}
