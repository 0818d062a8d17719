package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV persists ordered 16-bit PCM frames to path as a WAV file,
// creating parent directories as needed.
func writeWAV(path string, frames [][]byte, sampleRate, channels int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("audio: create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create %q: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)

	total := 0
	for _, frame := range frames {
		total += len(frame) / 2
	}
	data := make([]int, 0, total)
	for _, frame := range frames {
		for i := 0; i+2 <= len(frame); i += 2 {
			data = append(data, int(int16(binary.LittleEndian.Uint16(frame[i:i+2]))))
		}
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audio: encode %q: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: finalize %q: %w", path, err)
	}
	return nil
}
