// Package reformat detects a held modifier key and runs the selection
// cleanup workflow: copy the OS selection, send it to a language model for
// grammar correction, paste the result, and restore the clipboard.
package reformat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chaz8081/godictate/internal/status"
)

// reformatTimeout bounds one model call.
const reformatTimeout = 60 * time.Second

// SelectionPaster is the clipboard workflow the controller drives.
// *paste.Paster satisfies it.
type SelectionPaster interface {
	CopySelection() (text, saved string, err error)
	PasteText(text string) error
	Restore(saved string)
}

// Controller is the hold-detection state machine. A qualifying hold fires
// the workflow exactly once; while a workflow is in flight the monitoring
// gate is closed and further key-downs are ignored.
type Controller struct {
	paster      SelectionPaster
	reformatter Reformatter
	reporter    status.Reporter
	log         *slog.Logger

	mu           sync.Mutex
	holdDuration time.Duration
	holding      bool
	pressStart   time.Time
	gateClosed   bool
	gateWarned   bool
}

// NewController creates a Controller with the given hold duration.
func NewController(reformatter Reformatter, paster SelectionPaster, reporter status.Reporter, holdDuration time.Duration, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if reporter == nil {
		reporter = status.NopReporter{}
	}
	return &Controller{
		paster:       paster,
		reformatter:  reformatter,
		reporter:     reporter,
		log:          logger.With("component", "reformat"),
		holdDuration: holdDuration,
	}
}

// SetHoldDuration changes the duration used by future holds. An already
// armed timer keeps its original deadline.
func (c *Controller) SetHoldDuration(d time.Duration) {
	c.mu.Lock()
	c.holdDuration = d
	c.mu.Unlock()
	c.log.Info("hold duration changed", "duration", d)
}

// KeyDown handles a down (or OS key-repeat) event on the monitored key.
// Ignored while the gate is closed or a hold is already being timed.
func (c *Controller) KeyDown() {
	c.mu.Lock()
	if c.gateClosed {
		warn := !c.gateWarned
		c.gateWarned = true
		c.mu.Unlock()
		if warn {
			c.log.Info("key ignored, reformatting in progress")
		}
		return
	}
	if c.holding {
		c.mu.Unlock()
		return
	}
	c.holding = true
	c.pressStart = time.Now()
	d := c.holdDuration
	c.mu.Unlock()

	c.log.Debug("key down, arming hold timer", "duration", d)
	time.AfterFunc(d, c.evaluateHold)
}

// KeyUp handles a release of the monitored key. Releasing before the hold
// duration elapses turns the armed timer into a no-op.
func (c *Controller) KeyUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.holding {
		return
	}
	c.log.Debug("key released", "held", time.Since(c.pressStart))
	c.holding = false
	c.pressStart = time.Time{}
}

// evaluateHold runs when the one-shot timer fires. The key must still be
// down and must have been down for the full configured duration.
func (c *Controller) evaluateHold() {
	c.mu.Lock()
	if !c.holding || c.pressStart.IsZero() {
		c.mu.Unlock()
		return
	}
	if time.Since(c.pressStart) < c.holdDuration {
		c.mu.Unlock()
		return
	}
	c.holding = false
	c.pressStart = time.Time{}
	c.gateClosed = true
	c.mu.Unlock()

	c.log.Info("hold detected, starting reformatting workflow")
	go c.runWorkflow()
}

// GateOpen reports whether new holds are currently accepted.
func (c *Controller) GateOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.gateClosed
}

// runWorkflow executes one reformatting pass. The gate reopens and the
// warn flag resets on every exit path, including panics: a workflow that
// leaves the gate closed would silently disable the feature.
func (c *Controller) runWorkflow() {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.Error("panic in reformatting workflow", "panic", rec)
		}
		c.mu.Lock()
		c.gateClosed = false
		c.gateWarned = false
		c.mu.Unlock()
		c.log.Debug("monitoring re-enabled")
	}()

	text, saved, err := c.paster.CopySelection()
	if err != nil {
		// CopySelection restores the clipboard on its own failure paths.
		c.log.Warn("no selection to reformat", "error", err)
		return
	}

	result, err := c.reformatText(text)
	if err != nil {
		c.log.Error("reformatting failed", "error", err)
		c.paster.Restore(saved)
		return
	}
	if result == "" {
		c.log.Warn("model returned empty text")
		c.paster.Restore(saved)
		return
	}

	if err := c.paster.PasteText(result); err != nil {
		c.log.Error("failed to paste reformatted text", "error", err)
		c.paster.Restore(saved)
		return
	}
	c.log.Info("reformatted text pasted", "chars", len(result))
}

// reformatText calls the model with the formatting status raised for the
// span of the call.
func (c *Controller) reformatText(text string) (string, error) {
	c.reporter.Set(status.Formatting)
	defer c.reporter.Set(status.Hidden)

	ctx, cancel := context.WithTimeout(context.Background(), reformatTimeout)
	defer cancel()
	return c.reformatter.Reformat(ctx, text)
}
