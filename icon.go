package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
)

// trayIcon renders the tray glyph at runtime: a rounded square in the
// accent color. Rendering at startup keeps the binary free of asset
// plumbing for a 16x16 image.
func trayIcon() []byte {
	const size = 16
	accent := color.NRGBA{R: 0x7c, G: 0x5c, B: 0xff, A: 0xff}

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 2; y < size-2; y++ {
		for x := 2; x < size-2; x++ {
			corner := (x < 4 || x >= size-4) && (y < 4 || y >= size-4)
			if corner {
				continue
			}
			img.SetNRGBA(x, y, accent)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		slog.Error("encode tray icon", "error", err)
		return nil
	}
	return buf.Bytes()
}
