// Package audio owns the microphone capture session: a start/stop lifecycle
// around an ordered frame buffer that is flushed to a WAV file when the
// session ends, with optional asynchronous transcription and auto-paste of
// the result.
package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chaz8081/godictate/internal/config"
	"github.com/chaz8081/godictate/internal/status"
	"github.com/chaz8081/godictate/internal/transcribe"
)

// stopTimeout bounds how long Stop waits for device teardown.
const stopTimeout = 3 * time.Second

// TextPaster receives non-empty transcripts for injection into the focused
// application.
type TextPaster interface {
	PasteText(text string) error
}

// DeviceOpener opens the capture device and starts delivering raw PCM bytes
// (16-bit little-endian, interleaved) to onData until the returned handle
// is closed.
type DeviceOpener func(sampleRate, channels uint32, onData func(pcm []byte)) (io.Closer, error)

// Options carries the recorder's optional collaborators. Nil values mean
// the capability is unavailable: no transcriber means recordings are only
// saved, no paster means transcripts are only logged.
type Options struct {
	Transcriber transcribe.Transcriber
	Paster      TextPaster
	Reporter    status.Reporter
	Logger      *slog.Logger
	AutoPaste   bool
	OpenDevice  DeviceOpener // defaults to the malgo capture device
}

// Recorder captures microphone audio into fixed-size frames and persists
// finished recordings. Exactly one recording session is active at a time.
type Recorder struct {
	sampleRate uint32
	channels   uint32
	chunkSize  uint32 // samples per frame
	outputPath string

	transcriber transcribe.Transcriber
	paster      TextPaster
	reporter    status.Reporter
	autoPaste   bool
	openDevice  DeviceOpener
	log         *slog.Logger

	mu      sync.Mutex
	active  bool
	frames  [][]byte
	partial []byte
	device  io.Closer

	closeOnce sync.Once
}

// NewRecorder creates a Recorder writing finished sessions to outputPath.
func NewRecorder(cfg config.AudioConfig, outputPath string, opts Options) *Recorder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = status.NopReporter{}
	}
	openDevice := opts.OpenDevice
	if openDevice == nil {
		openDevice = openCaptureDevice
	}

	return &Recorder{
		sampleRate:  cfg.SampleRate,
		channels:    cfg.Channels,
		chunkSize:   cfg.ChunkSize,
		outputPath:  outputPath,
		transcriber: opts.Transcriber,
		paster:      opts.Paster,
		reporter:    reporter,
		autoPaste:   opts.AutoPaste,
		openDevice:  openDevice,
		log:         logger.With("component", "audio"),
	}
}

// Start begins a new recording session. Starting while already active is a
// logged no-op. A device-open failure forces the session back to inactive
// and is returned as an error.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		r.log.Warn("already recording, ignoring start request")
		return nil
	}
	r.frames = r.frames[:0]
	r.partial = r.partial[:0]
	r.active = true
	r.mu.Unlock()

	device, err := r.openDevice(r.sampleRate, r.channels, r.onData)
	if err != nil {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
		r.log.Error("failed to open capture device", "error", err)
		return fmt.Errorf("audio: open capture device: %w", err)
	}

	r.mu.Lock()
	r.device = device
	r.mu.Unlock()

	r.reporter.Set(status.Recording)
	r.log.Info("recording started", "output", r.outputPath)
	return nil
}

// Stop ends the active session, tears the device down with a bounded wait,
// and synchronously flushes the frame buffer to the output WAV file.
// Stopping while inactive is a logged no-op.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		r.log.Warn("not currently recording, ignoring stop request")
		return
	}
	r.active = false
	device := r.device
	r.device = nil
	r.mu.Unlock()

	if device != nil {
		done := make(chan struct{})
		go func() {
			if err := device.Close(); err != nil {
				r.log.Error("closing capture device", "error", err)
			}
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(stopTimeout):
			r.log.Warn("capture device did not stop in time", "timeout", stopTimeout)
		}
	}

	r.reporter.Set(status.Hidden)

	r.mu.Lock()
	frames := r.frames
	r.frames = nil
	r.partial = nil
	r.mu.Unlock()

	r.flush(frames)
}

// Toggle starts or stops recording based on state: true starts, false
// stops. Redundant transitions are tolerated as no-ops.
func (r *Recorder) Toggle(state bool) {
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()

	switch {
	case state && !active:
		if err := r.Start(); err != nil {
			r.log.Error("toggle start failed", "error", err)
		}
	case !state && active:
		r.Stop()
	default:
		r.log.Debug("toggle is a no-op", "state", state, "active", active)
	}
}

// IsRecording reports whether a session is active.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Cleanup stops any active recording and releases the transcription
// backend. Safe to call multiple times.
func (r *Recorder) Cleanup() {
	if r.IsRecording() {
		r.log.Info("stopping active recording during cleanup")
		r.Stop()
	}
	r.closeOnce.Do(func() {
		if r.transcriber != nil {
			if err := r.transcriber.Close(); err != nil {
				r.log.Error("closing transcriber", "error", err)
			}
		}
	})
}

// onData receives raw PCM from the capture device and appends it to the
// frame buffer in arrival order, cut into fixed chunkSize-sample frames.
func (r *Recorder) onData(pcm []byte) {
	frameBytes := int(r.chunkSize * r.channels * 2)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}

	r.partial = append(r.partial, pcm...)
	for len(r.partial) >= frameBytes {
		frame := make([]byte, frameBytes)
		copy(frame, r.partial[:frameBytes])
		r.frames = append(r.frames, frame)
		r.partial = r.partial[frameBytes:]
	}
}

// flush writes frames to the output WAV file and, when a transcriber is
// configured, dispatches a background transcription job for the file.
// A trailing partial chunk never reaches the buffer, so the written length
// is always a whole number of frames.
func (r *Recorder) flush(frames [][]byte) {
	if len(frames) == 0 {
		r.log.Warn("no audio data to save")
		return
	}

	duration := float64(len(frames)) * float64(r.chunkSize) / float64(r.sampleRate)

	if err := writeWAV(r.outputPath, frames, int(r.sampleRate), int(r.channels)); err != nil {
		r.log.Error("failed to save recording", "path", r.outputPath, "error", err)
		return
	}
	r.log.Info("recording saved",
		"path", r.outputPath,
		"frames", len(frames),
		"duration_sec", fmt.Sprintf("%.2f", duration))

	if r.transcriber == nil {
		r.log.Debug("no transcriber configured, skipping transcription")
		return
	}

	// One worker per finished file; jobs for different files may overlap
	// and complete in any order.
	go r.transcribeFile(r.outputPath)
}

// transcribeFile runs one transcription job to completion. Failures are
// logged and never affect the recorder's own state; nothing may escape a
// background worker.
func (r *Recorder) transcribeFile(path string) {
	jobID := uuid.NewString()
	log := r.log.With("job", jobID, "path", path)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in transcription worker", "panic", rec)
		}
	}()

	start := time.Now()
	text, err := r.transcriber.Transcribe(context.Background(), path)
	if err != nil {
		log.Error("transcription failed", "error", err)
		return
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	if text == "" {
		log.Info("no speech detected", "elapsed", elapsed)
		return
	}
	log.Info("transcription complete", "elapsed", elapsed, "chars", len(text))

	if !r.autoPaste || r.paster == nil {
		log.Debug("auto-paste disabled, transcript logged only", "text", text)
		return
	}
	if err := r.paster.PasteText(text); err != nil {
		log.Error("paste failed", "error", err)
		return
	}
	log.Info("transcript pasted")
}
