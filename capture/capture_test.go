package capture

import (
	"bytes"
	"image"
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"already_fits", 800, 600, 1920, 1080, 800, 600},
		{"wide_scaled", 3840, 2160, 1920, 1080, 1920, 1080},
		{"tall_scaled", 1080, 3840, 1920, 1080, 303, 1080},
		{"thumbnail", 1920, 1080, 150, 150, 150, 84},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := fitWithin(src, tt.maxW, tt.maxH)
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Fatalf("scaled to %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestEncodeWAV(t *testing.T) {
	samples := make([]float32, 1600) // 100ms of audio
	for i := range samples {
		samples[i] = 0.5
	}

	data, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatal("missing RIFF header")
	}
	if !bytes.Contains(data[:12], []byte("WAVE")) {
		t.Fatal("missing WAVE marker")
	}
	// 44-byte header plus two bytes per sample.
	if want := 44 + len(samples)*2; len(data) != want {
		t.Fatalf("wav length = %d, want %d", len(data), want)
	}
}

func TestEncodeWAVEmptyClip(t *testing.T) {
	// A stop right after start still yields a valid WAV so the
	// transcription flow always runs.
	data, err := EncodeWAV(nil, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatal("missing RIFF header")
	}
}

func TestClampPCM16(t *testing.T) {
	tests := []struct {
		in   float32
		want int
	}{
		{0, 0},
		{1.0, 32767},
		{-1.0, -32767},
		{2.5, 32767},
		{-2.5, -32768},
	}
	for _, tt := range tests {
		if got := clampPCM16(tt.in); got != tt.want {
			t.Fatalf("clampPCM16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMatchesLoopback(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"BlackHole 2ch", true},
		{"Soundflower (2ch)", true},
		{"Stereo Mix (Realtek Audio)", true},
		{"Monitor of Built-in Audio", true},
		{"VB-Audio Virtual Cable", true},
		{"MacBook Pro Microphone", false},
		{"USB Headset", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesLoopback(tt.name); got != tt.want {
				t.Fatalf("matchesLoopback(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestStopWithoutStart(t *testing.T) {
	r := NewRecorder(ChannelMicrophone)
	if _, err := r.Stop(); err != ErrNotRecording {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
}
