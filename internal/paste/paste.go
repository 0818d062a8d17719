// Package paste injects text into the focused application via the OS
// clipboard and a simulated paste keystroke, restoring the previous
// clipboard contents afterwards. It can also capture the current OS
// selection with a simulated copy keystroke.
package paste

import (
	"fmt"
	"log/slog"
	"time"
)

// Clipboard abstracts the OS clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Keys abstracts keystroke simulation.
type Keys interface {
	TapPaste() error
	TapCopy() error
}

// Paster runs the save / set / paste / restore clipboard workflow.
//
// The clipboard is treated as an exclusively owned resource for the span of
// one workflow. Overlapping PasteText calls from different goroutines are
// not protected against each other.
type Paster struct {
	clip Clipboard
	keys Keys
	log  *slog.Logger

	settleDelay  time.Duration // before the simulated keystroke
	copyDelay    time.Duration // after the simulated copy, before reading
	restoreDelay time.Duration // after the paste, before restoring
}

// Option configures a Paster.
type Option func(*Paster)

// WithRestoreDelay sets how long to wait after the paste keystroke before
// restoring the original clipboard.
func WithRestoreDelay(d time.Duration) Option {
	return func(p *Paster) { p.restoreDelay = d }
}

// WithSettleDelay sets the delay between clipboard mutation and the
// simulated keystroke.
func WithSettleDelay(d time.Duration) Option {
	return func(p *Paster) { p.settleDelay = d }
}

// WithCopyDelay sets how long CopySelection waits for the OS to service a
// simulated copy before reading the clipboard.
func WithCopyDelay(d time.Duration) Option {
	return func(p *Paster) { p.copyDelay = d }
}

// New creates a Paster over the given clipboard and key sender.
func New(clip Clipboard, keys Keys, logger *slog.Logger, opts ...Option) *Paster {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Paster{
		clip:         clip,
		keys:         keys,
		log:          logger.With("component", "paste"),
		settleDelay:  100 * time.Millisecond,
		copyDelay:    200 * time.Millisecond,
		restoreDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PasteText pastes text into the focused application:
// save clipboard, set text, simulate paste, wait, restore clipboard.
//
// If saving fails the clipboard is never mutated. If the keystroke fails,
// restoration is still attempted before the error is returned. A failed
// restoration after a successful paste is logged but does not fail the call.
func (p *Paster) PasteText(text string) error {
	if text == "" {
		return fmt.Errorf("paste: empty text")
	}

	p.log.Info("paste workflow starting", "chars", len(text))

	saved, err := p.clip.ReadAll()
	if err != nil {
		return fmt.Errorf("paste: save clipboard: %w", err)
	}

	if err := p.clip.WriteAll(text); err != nil {
		return fmt.Errorf("paste: set clipboard: %w", err)
	}

	// Give the OS a moment to register the new clipboard owner before
	// the focused application reads it.
	time.Sleep(p.settleDelay)

	if err := p.keys.TapPaste(); err != nil {
		p.restore(saved)
		return fmt.Errorf("paste: simulate paste: %w", err)
	}

	time.Sleep(p.restoreDelay)
	p.restore(saved)

	p.log.Info("paste workflow complete")
	return nil
}

// CopySelection captures the current OS selection: it saves and clears the
// clipboard, simulates a copy keystroke, waits for the asynchronous OS copy
// to land, and reads the result. The saved clipboard is restored whenever
// nothing usable was captured.
//
// The returned saved string is the pre-workflow clipboard snapshot; callers
// running a longer workflow hold it for their own restore paths.
func (p *Paster) CopySelection() (text, saved string, err error) {
	saved, err = p.clip.ReadAll()
	if err != nil {
		return "", "", fmt.Errorf("paste: save clipboard: %w", err)
	}

	if err := p.clip.WriteAll(""); err != nil {
		return "", saved, fmt.Errorf("paste: clear clipboard: %w", err)
	}
	time.Sleep(p.settleDelay)

	if err := p.keys.TapCopy(); err != nil {
		p.restore(saved)
		return "", saved, fmt.Errorf("paste: simulate copy: %w", err)
	}

	// The OS services the copy asynchronously.
	time.Sleep(p.copyDelay)

	text, err = p.clip.ReadAll()
	if err != nil {
		p.restore(saved)
		return "", saved, fmt.Errorf("paste: read clipboard: %w", err)
	}

	if text == "" {
		p.log.Warn("nothing selected, clipboard empty after copy")
		p.restore(saved)
		return "", saved, fmt.Errorf("paste: no selection captured")
	}

	p.log.Debug("selection captured", "chars", len(text))
	return text, saved, nil
}

// Restore puts a previously saved snapshot back on the clipboard,
// best-effort.
func (p *Paster) Restore(saved string) {
	p.restore(saved)
}

func (p *Paster) restore(saved string) {
	if err := p.clip.WriteAll(saved); err != nil {
		p.log.Warn("failed to restore clipboard", "error", err)
	}
}
