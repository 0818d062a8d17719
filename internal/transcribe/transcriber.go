// Package transcribe provides speech-to-text backends that turn a finished
// WAV recording into plain text.
//
// Supported backends:
//   - server: a local whisper HTTP server (whisper.cpp server,
//     faster-whisper-server or compatible)
//   - openai: the hosted OpenAI transcription API
package transcribe

import (
	"context"
	"fmt"
	"os"

	"github.com/chaz8081/godictate/internal/config"
	"github.com/chaz8081/godictate/internal/status"
)

// Transcriber converts a complete audio file to text.
type Transcriber interface {
	// Transcribe returns the concatenated text of all recognized segments
	// in the file at path. A failed attempt is terminal for that file;
	// there is no internal retry.
	Transcribe(ctx context.Context, path string) (string, error)
	// Close releases backend resources.
	Close() error
}

// New creates a Transcriber for the configured backend. The reporter
// receives a transcribing signal for the span of every attempt; pass nil
// for no signaling.
func New(cfg config.TranscribeConfig, reporter status.Reporter) (Transcriber, error) {
	if reporter == nil {
		reporter = status.NopReporter{}
	}

	var backend Transcriber
	switch cfg.Backend {
	case "server", "":
		backend = newServerTranscriber(cfg)
	case "openai":
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("transcribe: %s is not set", cfg.APIKeyEnv)
		}
		backend = newOpenAITranscriber(cfg, key)
	default:
		return nil, fmt.Errorf("transcribe: unknown backend %q (supported: server, openai)", cfg.Backend)
	}

	return &signaled{backend: backend, reporter: reporter}, nil
}

// signaled raises the transcribing status around every attempt and clears
// it unconditionally on the way out.
type signaled struct {
	backend  Transcriber
	reporter status.Reporter
}

func (s *signaled) Transcribe(ctx context.Context, path string) (string, error) {
	s.reporter.Set(status.Transcribing)
	defer s.reporter.Set(status.Hidden)
	return s.backend.Transcribe(ctx, path)
}

func (s *signaled) Close() error {
	return s.backend.Close()
}

// checkAudioFile rejects missing and zero-byte files before any upload.
func checkAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("transcribe: stat %q: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("transcribe: %q is empty", path)
	}
	return nil
}
