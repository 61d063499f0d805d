//go:build windows

package overlay

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetWindowDisplayAffinity    = user32.NewProc("SetWindowDisplayAffinity")
	procSetWindowPos                = user32.NewProc("SetWindowPos")
	procGetWindowLongW              = user32.NewProc("GetWindowLongW")
	procSetWindowLongW              = user32.NewProc("SetWindowLongW")
	procSetLayeredWindowAttributes  = user32.NewProc("SetLayeredWindowAttributes")
)

const (
	// WDA_EXCLUDEFROMCAPTURE renders the window for the user but removes
	// it from capture APIs. Requires Windows 10 2004 or later; older
	// builds reject it.
	wdaExcludeFromCapture = 0x00000011

	wsExLayered     = 0x00080000
	wsExToolWindow  = 0x00000080
	lwaAlpha        = 0x00000002

	swpNoMove     = 0x0002
	swpNoSize     = 0x0001
	swpNoActivate = 0x0010
)

var (
	hwndTopmost   = ^uintptr(0) // (HWND)-1
	hwndNoTopmost = ^uintptr(1) // (HWND)-2

	gwlExStyle = ^uintptr(19) // GWL_EXSTYLE (-20)
)

type windowsPolicy struct{}

func newPolicy() Policy { return windowsPolicy{} }

// defaultLevel uses screen-saver semantics on Windows: HWND_TOPMOST is the
// only stacking mechanism, and it covers full-screen apps.
func defaultLevel() Level { return LevelScreenSaver }

func (windowsPolicy) ApplyCaptureExclusion(handle uintptr) error {
	ret, _, err := procSetWindowDisplayAffinity.Call(handle, wdaExcludeFromCapture)
	if ret == 0 {
		return fmt.Errorf("%w: SetWindowDisplayAffinity: %v", ErrUnsupported, err)
	}
	return nil
}

func (windowsPolicy) ApplyLevel(handle uintptr, level Level) error {
	insertAfter := hwndTopmost
	if level == LevelNormal {
		insertAfter = hwndNoTopmost
	}
	ret, _, err := procSetWindowPos.Call(
		handle, insertAfter, 0, 0, 0, 0,
		uintptr(swpNoMove|swpNoSize|swpNoActivate),
	)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos: %v", err)
	}
	return nil
}

func (windowsPolicy) ApplyOpacity(handle uintptr, opacity float64) error {
	style, _, _ := procGetWindowLongW.Call(handle, gwlExStyle)
	if style&wsExLayered == 0 {
		if ret, _, err := procSetWindowLongW.Call(handle, gwlExStyle, style|wsExLayered); ret == 0 {
			return fmt.Errorf("SetWindowLongW: %v", err)
		}
	}
	alpha := uintptr(opacity * 255)
	ret, _, err := procSetLayeredWindowAttributes.Call(handle, 0, alpha, lwaAlpha)
	if ret == 0 {
		return fmt.Errorf("SetLayeredWindowAttributes: %v", err)
	}
	return nil
}

func (windowsPolicy) HideFromTaskSwitcher(handle uintptr) error {
	style, _, _ := procGetWindowLongW.Call(handle, gwlExStyle)
	if ret, _, err := procSetWindowLongW.Call(handle, gwlExStyle, style|wsExToolWindow); ret == 0 {
		return fmt.Errorf("SetWindowLongW: %v", err)
	}
	return nil
}
