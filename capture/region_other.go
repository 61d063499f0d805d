//go:build !darwin

package capture

// CaptureRegion has no portable selection tool outside macOS, so it
// degrades to a full-frame grab.
func CaptureRegion() ([]byte, error) {
	return CaptureScreen()
}
