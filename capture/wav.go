package capture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

// EncodeWAV renders float32 PCM samples in [-1,1] as a 16-bit mono WAV
// file. The wav encoder needs a seekable writer to finalize the header,
// so it goes through a temp file.
func EncodeWAV(samples []float32, rate int) ([]byte, error) {
	path := filepath.Join(os.TempDir(), "ghostpane-"+uuid.NewString()+".wav")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	defer os.Remove(path)

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = clampPCM16(s)
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return nil, fmt.Errorf("finalize wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp wav: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read temp wav: %w", err)
	}
	return data, nil
}

func clampPCM16(s float32) int {
	v := int(s * 32767)
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}
