// Package capture grabs still screen frames and finite audio clips.
//
// The overlay window itself never appears in captured frames: its
// capture-exclusion property (owned by the overlay package) makes the OS
// compositor omit it, so nothing here needs to special-case it.
package capture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/kbinani/screenshot"
	"golang.org/x/image/draw"

	"go.ghostpane.dev/ghostpane/internal/types"
)

// ErrNoDisplay is returned when no capturable display exists.
var ErrNoDisplay = errors.New("capture: no active display")

// ErrPermissionDenied is returned when the user has not granted screen
// recording access. Recoverable: the user grants it in OS settings.
var ErrPermissionDenied = errors.New("capture: screen recording permission denied")

// ErrCaptureCancelled is returned when the user aborts an interactive
// region selection.
var ErrCaptureCancelled = errors.New("capture: selection cancelled")

const (
	// Frames are bounded before transmission to keep request payloads
	// reasonable on high-DPI displays.
	maxFrameWidth  = 1920
	maxFrameHeight = 1080

	thumbnailEdge = 150
)

// CaptureScreen grabs the primary display's current frame as PNG bytes,
// downscaled to fit within 1920x1080.
func CaptureScreen() ([]byte, error) {
	if !HasScreenPermission() {
		RequestScreenPermission()
		return nil, ErrPermissionDenied
	}
	if screenshot.NumActiveDisplays() == 0 {
		return nil, ErrNoDisplay
	}

	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture display: %w", err)
	}

	return encodePNG(fitWithin(img, maxFrameWidth, maxFrameHeight))
}

// ListSources enumerates capturable displays with small thumbnails. The
// system-audio path uses this where the OS ties audio capture to a video
// source handle.
func ListSources() ([]types.Source, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplay
	}

	sources := make([]types.Source, 0, n)
	for i := 0; i < n; i++ {
		src := types.Source{
			ID:   fmt.Sprintf("screen:%d", i),
			Name: fmt.Sprintf("Display %d", i+1),
		}
		img, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(i))
		if err == nil {
			if data, err := encodePNG(fitWithin(img, thumbnailEdge, thumbnailEdge)); err == nil {
				src.Thumbnail = "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
			}
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// fitWithin scales img down to fit inside maxW x maxH, preserving aspect
// ratio. Images already within bounds are returned unchanged.
func fitWithin(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	dw, dh := int(float64(w)*scale), int(float64(h)*scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
