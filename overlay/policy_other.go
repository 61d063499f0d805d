//go:build !darwin && !windows

package overlay

type otherPolicy struct{}

func newPolicy() Policy { return otherPolicy{} }

func defaultLevel() Level { return LevelFloating }

// No compositor-level capture exclusion exists on X11/Wayland; report it
// so the degraded-protection path fires instead of failing silently.
func (otherPolicy) ApplyCaptureExclusion(handle uintptr) error {
	return ErrUnsupported
}

// Stacking and taskbar visibility are handled by the webview toolkit's
// own always-on-top and skip-taskbar hints on this platform.
func (otherPolicy) ApplyLevel(handle uintptr, level Level) error { return nil }

func (otherPolicy) ApplyOpacity(handle uintptr, opacity float64) error {
	return ErrUnsupported
}

func (otherPolicy) HideFromTaskSwitcher(handle uintptr) error { return nil }
