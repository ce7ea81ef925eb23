package chat

import (
	"context"
	"log/slog"
	"time"
)

// prober is what the driver needs from a ReadinessProbe.
type prober interface {
	Check(ctx context.Context, h SessionHandle) Readiness
	Stable(ctx context.Context, h SessionHandle, checks int, delay time.Duration) bool
}

// DriverConfig tunes the readiness drive. The defaults are what the product
// ships with; none of them are protocol requirements.
type DriverConfig struct {
	// RetryBudget is the number of probe attempts per cycle.
	RetryBudget int

	// RetryDelay is the fixed backoff between attempts.
	RetryDelay time.Duration

	// RecoveryCycles is how many times an exhausted budget may be reset
	// when the page is observed to have regressed to not-ready.
	RecoveryCycles int

	// StabilityChecks and StabilityDelay configure the confirmation pass
	// that runs after the first ready observation.
	StabilityChecks int
	StabilityDelay  time.Duration
}

func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		RetryBudget:     60,
		RetryDelay:      60 * time.Millisecond,
		RecoveryCycles:  2,
		StabilityChecks: 3,
		StabilityDelay:  120 * time.Millisecond,
	}
}

// Driver drives a freshly created session toward a confirmed-ready state by
// polling the probe under a retry budget with recovery cycles.
type Driver struct {
	probe prober
	cfg   DriverConfig
}

func NewDriver(probe prober, cfg DriverConfig) *Driver {
	return &Driver{probe: probe, cfg: cfg}
}

// Drive polls until the session is confirmed ready or every budget is spent.
// It blocks the calling goroutine and never fails hard: exhausting the budget
// resolves with a best-effort answer. A final state of not-ready resolves
// false; a final state the probe could not determine resolves true, trading
// confidence for availability rather than blocking the chat forever. Context
// cancellation resolves false.
func (d *Driver) Drive(ctx context.Context, h SessionHandle) bool {
	recoveries := d.cfg.RecoveryCycles
	last := ReadinessUnknown

	for {
		for attempt := 1; attempt <= d.cfg.RetryBudget; attempt++ {
			if ctx.Err() != nil {
				return false
			}
			last = d.probe.Check(ctx, h)
			if last == ReadinessReady {
				if d.probe.Stable(ctx, h, d.cfg.StabilityChecks, d.cfg.StabilityDelay) {
					slog.Debug("driver: session ready", "session", h.ID, "attempt", attempt)
					return true
				}
				// Readiness flapped during confirmation. Treat the pass
				// as not-ready and keep retrying.
				last = ReadinessNotReady
			}
			if attempt < d.cfg.RetryBudget && !sleepCtx(ctx, d.cfg.RetryDelay) {
				return false
			}
		}

		// Budget exhausted. A page observed to have regressed to not-ready
		// gets a fresh budget while recovery cycles remain; it may have been
		// ready earlier in the drive and slipped back.
		if last == ReadinessNotReady && recoveries > 0 {
			recoveries--
			slog.Debug("driver: retry budget reset",
				"session", h.ID,
				"recoveries_left", recoveries,
			)
			continue
		}

		ok := last != ReadinessNotReady
		slog.Info("driver: giving up on confirmation",
			"session", h.ID,
			"last_state", last.String(),
			"resolved", ok,
		)
		return ok
	}
}
