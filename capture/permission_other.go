//go:build !darwin

package capture

// HasScreenPermission checks screen recording permission. Only macOS
// gates screen capture behind a permission; elsewhere it is always
// available.
func HasScreenPermission() bool { return true }

// RequestScreenPermission prompts the system permission dialog.
func RequestScreenPermission() {}
