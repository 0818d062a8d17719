// Package app composes the hotkey monitor and the audio recorder into the
// top-level recording controller.
package app

import (
	"log/slog"
	"sync"
	"time"
)

// statusPollInterval is how often the diagnostic loop samples the
// recording state.
const statusPollInterval = 2 * time.Second

// Monitor is the hotkey monitor surface the controller drives.
type Monitor interface {
	SetCallback(cb func(recording bool))
	Start()
	Stop()
}

// Recorder is the capture session surface the controller drives.
type Recorder interface {
	Toggle(state bool)
	Stop()
	IsRecording() bool
	Cleanup()
}

// Controller wires the hotkey monitor's state transitions straight into
// the recorder and owns orderly shutdown of both.
type Controller struct {
	monitor  Monitor
	recorder Recorder
	log      *slog.Logger

	stopMu  sync.Mutex
	stopped bool
	done    chan struct{}
}

// New creates the controller and registers the recorder's toggle as the
// hotkey callback: true starts capture, false stops it.
func New(monitor Monitor, recorder Recorder, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		monitor:  monitor,
		recorder: recorder,
		log:      logger.With("component", "app"),
		done:     make(chan struct{}),
	}
	monitor.SetCallback(recorder.Toggle)
	return c
}

// Start begins hotkey monitoring and the diagnostic status loop.
func (c *Controller) Start() {
	c.log.Info("recording system starting")
	c.monitor.Start()
	go c.pollStatus()
}

// Stop shuts the system down in order: active recording first, then the
// hotkey monitor, then capture resources. Idempotent; safe to invoke from
// a signal handler and from normal shutdown.
func (c *Controller) Stop() {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()

	if c.stopped {
		c.log.Debug("already stopped")
		return
	}
	c.stopped = true
	close(c.done)

	if c.recorder.IsRecording() {
		c.log.Info("stopping active recording")
		c.recorder.Stop()
	}
	c.monitor.Stop()
	c.recorder.Cleanup()

	c.log.Info("recording system stopped")
}

// pollStatus logs recording-state transitions. Purely diagnostic; it has
// no effect on control flow.
func (c *Controller) pollStatus() {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	last := false
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			current := c.recorder.IsRecording()
			if current != last {
				c.log.Info("recording state changed", "from", last, "to", current)
				last = current
			}
		}
	}
}
