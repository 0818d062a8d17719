// Package hotkey owns the process-global keyboard hook. It detects one
// configured key combination and reports binary recording-state
// transitions to a registered callback, and can additionally tap raw
// key-down/key-up events for hold detection.
//
// gohook's event loop is a process-wide singleton, so every consumer of
// global key events registers through the one Monitor instead of running
// its own loop.
package hotkey

import (
	"log/slog"
	"sync"
	"time"

	hook "github.com/robotn/gohook"
)

// stopTimeout bounds how long Stop waits for the hook loop to exit.
const stopTimeout = 2 * time.Second

// keyTap is a raw key-down/key-up subscription for one key.
type keyTap struct {
	key    string
	onDown func()
	onUp   func()
}

// Monitor detects the configured global key combination and flips a
// recording state on each trigger.
type Monitor struct {
	keys []string
	log  *slog.Logger

	mu       sync.Mutex
	state    bool
	callback func(recording bool)
	taps     []keyTap
	started  bool
	done     chan struct{}
	finished chan struct{}
}

// NewMonitor creates a Monitor for the given key combination.
// keys are lowercase key names (e.g. ["ctrl", "shift", "l"]).
func NewMonitor(keys []string, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		keys: keys,
		log:  logger.With("component", "hotkey"),
	}
}

// SetCallback registers the state-change callback. A single slot: the last
// registration wins. Calling it after Start is legal and takes effect on
// the next trigger.
func (m *Monitor) SetCallback(cb func(recording bool)) {
	m.mu.Lock()
	m.callback = cb
	m.mu.Unlock()
}

// TapKey subscribes to raw down/up events for one key on the shared hook
// loop. Must be called before Start; either handler may be nil.
func (m *Monitor) TapKey(key string, onDown, onUp func()) {
	m.mu.Lock()
	m.taps = append(m.taps, keyTap{key: key, onDown: onDown, onUp: onUp})
	m.mu.Unlock()
}

// State returns the current recording state.
func (m *Monitor) State() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start registers the hotkey and the key taps with the OS hook and runs
// the event loop on a dedicated goroutine. A second call while already
// running is a logged no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		m.log.Warn("hotkey monitoring already running, ignoring start request")
		return
	}
	m.started = true
	m.done = make(chan struct{})
	m.finished = make(chan struct{})
	done, finished := m.done, m.finished
	taps := m.taps
	m.mu.Unlock()

	hook.Register(hook.KeyDown, m.keys, func(e hook.Event) {
		m.toggle()
	})
	for _, tap := range taps {
		tap := tap
		if tap.onDown != nil {
			hook.Register(hook.KeyDown, []string{tap.key}, func(e hook.Event) {
				m.guard(tap.key+" down", tap.onDown)
			})
			// Key repeat arrives as KeyHold; the hold detector debounces.
			hook.Register(hook.KeyHold, []string{tap.key}, func(e hook.Event) {
				m.guard(tap.key+" hold", tap.onDown)
			})
		}
		if tap.onUp != nil {
			hook.Register(hook.KeyUp, []string{tap.key}, func(e hook.Event) {
				m.guard(tap.key+" up", tap.onUp)
			})
		}
	}

	go func() {
		evChan := hook.Start()
		go func() {
			<-done
			hook.End()
		}()
		<-hook.Process(evChan)
		close(finished)
	}()

	m.log.Info("hotkey monitoring started", "keys", m.keys)
}

// Stop signals the hook loop to exit and waits for it with a bounded
// timeout. A timed-out join is logged as a warning, not an error; the hook
// de-registration has been requested regardless. Safe to call repeatedly.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		m.log.Warn("hotkey monitoring not running, ignoring stop request")
		return
	}
	m.started = false
	done, finished := m.done, m.finished
	m.mu.Unlock()

	close(done)
	select {
	case <-finished:
		m.log.Info("hotkey monitoring stopped")
	case <-time.After(stopTimeout):
		m.log.Warn("hook loop did not exit in time", "timeout", stopTimeout)
	}
}

// toggle flips the recording state and invokes the callback with the new
// value, all inside the state mutex. Callback panics are recovered here: a
// panic escaping into the hook's execution context can disable the whole
// OS hook subsystem.
func (m *Monitor) toggle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = !m.state
	m.log.Info("hotkey triggered", "recording", m.state)

	if m.callback == nil {
		m.log.Warn("no callback registered")
		return
	}
	cb, state := m.callback, m.state
	m.guardLocked("toggle callback", func() { cb(state) })
}

// guard runs fn, converting panics to log entries.
func (m *Monitor) guard(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			m.log.Error("panic in key handler", "handler", name, "panic", rec)
		}
	}()
	fn()
}

// guardLocked is guard for callers already holding m.mu.
func (m *Monitor) guardLocked(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			m.log.Error("panic in key handler", "handler", name, "panic", rec)
		}
	}()
	fn()
}
