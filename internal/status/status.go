// Package status signals the current activity of the dictation core to
// external indicator renderers. The core only ever writes states; how an
// indicator displays them (separate process, overlay, nothing at all) is
// the renderer's business.
package status

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// State is an externally visible activity state.
type State string

const (
	Hidden       State = "hidden"
	Recording    State = "recording"
	Transcribing State = "transcribing"
	Formatting   State = "formatting"
)

// Reporter receives state transitions from the core.
type Reporter interface {
	Set(state State)
}

// NopReporter discards all state transitions.
type NopReporter struct{}

func (NopReporter) Set(State) {}

// FileReporter persists the current state to a JSON file using an atomic
// temp-file + rename write, so an indicator process can poll it without
// ever observing a partial write.
type FileReporter struct {
	path string
	log  *slog.Logger
}

type stateDoc struct {
	State State `json:"state"`
}

// NewFileReporter creates a FileReporter writing to path. An empty path
// allocates a file under the OS temp directory. The initial state is hidden.
func NewFileReporter(path string, logger *slog.Logger) (*FileReporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		f, err := os.CreateTemp("", "godictate-status-*.json")
		if err != nil {
			return nil, fmt.Errorf("status: create state file: %w", err)
		}
		path = f.Name()
		f.Close()
	}

	r := &FileReporter{path: path, log: logger.With("component", "status")}
	r.Set(Hidden)
	return r, nil
}

// Path returns the state file path, for handing to indicator processes.
func (r *FileReporter) Path() string {
	return r.path
}

// Set writes the new state. Write failures are logged, never propagated:
// a broken indicator must not affect recording or reformatting.
func (r *FileReporter) Set(state State) {
	if err := atomicWriteJSON(r.path, stateDoc{State: state}); err != nil {
		r.log.Error("writing state file", "state", state, "error", err)
		return
	}
	r.log.Debug("state written", "state", state)
}

// Close removes the state file. Safe to call more than once.
func (r *FileReporter) Close() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("status: remove state file: %w", err)
	}
	return nil
}

// atomicWriteJSON writes data to path via a temp file in the same
// directory followed by a rename.
func atomicWriteJSON(path string, data any) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "state-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
