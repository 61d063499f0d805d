//go:build darwin

package capture

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// CaptureRegion lets the user drag out a region with the system selection
// tool and returns it as PNG bytes, downscaled to the transmission bound.
// Escape during selection returns ErrCaptureCancelled.
func CaptureRegion() ([]byte, error) {
	if !HasScreenPermission() {
		RequestScreenPermission()
		return nil, ErrPermissionDenied
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("ghostpane-%s.png", uuid.NewString()))
	defer os.Remove(path)

	// -i: interactive selection, -x: no shutter sound
	if err := exec.Command("screencapture", "-i", "-x", path).Run(); err != nil {
		return nil, fmt.Errorf("screencapture: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// screencapture writes nothing when the user cancels
			return nil, ErrCaptureCancelled
		}
		return nil, fmt.Errorf("read region capture: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode region capture: %w", err)
	}
	return encodePNG(fitWithin(img, maxFrameWidth, maxFrameHeight))
}
