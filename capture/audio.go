package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// ErrRunning is returned when starting a recorder that is already recording.
var ErrRunning = errors.New("capture: already recording")

// ErrNotRecording is returned when stopping a recorder that never started.
var ErrNotRecording = errors.New("capture: not recording")

// ErrNoLoopbackDevice is returned when no system-audio capable input
// device exists. The remediation is a virtual audio driver (BlackHole,
// VB-Cable, ...), which is a user-facing hint distinct from a generic
// capture failure.
var ErrNoLoopbackDevice = errors.New("capture: no system-audio device, a virtual audio driver is required")

// Channel is a logical audio capture channel.
type Channel int

const (
	// ChannelMicrophone records the default input device.
	ChannelMicrophone Channel = iota
	// ChannelSystemAudio records what the computer is playing, via a
	// loopback-capable input device. Best effort: depends on drivers.
	ChannelSystemAudio
)

func (c Channel) String() string {
	if c == ChannelSystemAudio {
		return "system-audio"
	}
	return "microphone"
}

const (
	sampleRate      = 16000 // what speech models expect
	framesPerBuffer = 512
)

// Recorder captures one finite audio clip on one channel. Each channel
// owns its own buffer; concurrent mic and system-audio recorders never
// share state.
type Recorder struct {
	mu      sync.Mutex
	channel Channel
	stream  *portaudio.Stream
	samples []float32
	running bool
}

// NewRecorder creates a recorder for the given channel.
func NewRecorder(channel Channel) *Recorder {
	return &Recorder{channel: channel}
}

// Start opens the capture device and begins buffering samples.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrRunning
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}

	dev, err := r.device()
	if err != nil {
		portaudio.Terminate()
		return err
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = 1
	params.SampleRate = sampleRate
	params.FramesPerBuffer = framesPerBuffer

	stream, err := portaudio.OpenStream(params, r.onFrame)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open %s stream: %w", r.channel, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start %s stream: %w", r.channel, err)
	}

	r.stream = stream
	r.samples = r.samples[:0]
	r.running = true
	slog.Info("audio capture started", "channel", r.channel.String(), "device", dev.Name)
	return nil
}

// onFrame appends one callback buffer. Runs on portaudio's thread; the
// mutex keeps it ordered against Stop.
func (r *Recorder) onFrame(in []float32) {
	r.mu.Lock()
	r.samples = append(r.samples, in...)
	r.mu.Unlock()
}

// Stop ends capture and returns the clip as WAV bytes. Very short or
// empty clips still produce a valid (possibly silent) WAV so the
// transcription flow always runs rather than silently discarding input.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil, ErrNotRecording
	}

	if err := r.stream.Stop(); err != nil {
		slog.Warn("stop audio stream", "channel", r.channel.String(), "error", err)
	}
	if err := r.stream.Close(); err != nil {
		slog.Warn("close audio stream", "channel", r.channel.String(), "error", err)
	}
	portaudio.Terminate()

	r.stream = nil
	r.running = false

	clip, err := EncodeWAV(r.samples, sampleRate)
	r.samples = nil
	if err != nil {
		return nil, fmt.Errorf("encode %s clip: %w", r.channel, err)
	}
	slog.Info("audio capture stopped", "channel", r.channel.String(), "bytes", len(clip))
	return clip, nil
}

// Running reports whether a capture is in progress.
func (r *Recorder) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Recorder) device() (*portaudio.DeviceInfo, error) {
	if r.channel == ChannelMicrophone {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("default input device: %w", err)
		}
		return dev, nil
	}
	return findLoopbackDevice()
}

// loopbackHints match input devices that expose system playback. Covers
// the common virtual drivers plus PulseAudio monitor sources.
var loopbackHints = []string{
	"blackhole",
	"soundflower",
	"stereo mix",
	"monitor of",
	"vb-audio",
	"vb-cable",
	"loopback",
	"what u hear",
}

func findLoopbackDevice() (*portaudio.DeviceInfo, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate audio devices: %w", err)
	}
	for _, dev := range devs {
		if dev.MaxInputChannels > 0 && matchesLoopback(dev.Name) {
			return dev, nil
		}
	}
	return nil, ErrNoLoopbackDevice
}

func matchesLoopback(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range loopbackHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
