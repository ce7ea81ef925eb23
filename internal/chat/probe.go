package chat

import (
	"context"
	"log/slog"
	"time"
)

// ReadinessProbe evaluates whether a session's page has reached the desired
// default state. A single probe both reads the state and, when possible,
// corrects it; keeping the two merged keeps the driver's retry loop simple,
// and the target page offers no side-effect-free way to check anyway.
type ReadinessProbe struct {
	host Host
}

func NewReadinessProbe(host Host) *ReadinessProbe {
	return &ReadinessProbe{host: host}
}

// Check runs one readiness check. It never fails: a host error means the
// state could not be observed and maps to ReadinessUnknown.
func (p *ReadinessProbe) Check(ctx context.Context, h SessionHandle) Readiness {
	state, err := p.host.CheckReadiness(ctx, h)
	if err != nil {
		slog.Debug("probe: readiness check failed", "session", h.ID, "error", err)
		return ReadinessUnknown
	}
	return state
}

// Stable reports whether checks consecutive probes, spaced by delay, all come
// back ready. A single non-ready result rejects the whole pass; this filters
// out pages that flap into the ready state while still settling.
func (p *ReadinessProbe) Stable(ctx context.Context, h SessionHandle, checks int, delay time.Duration) bool {
	for i := 0; i < checks; i++ {
		if i > 0 && !sleepCtx(ctx, delay) {
			return false
		}
		if p.Check(ctx, h) != ReadinessReady {
			return false
		}
	}
	return true
}

// sleepCtx waits for d, reporting false if ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
