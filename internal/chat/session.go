package chat

import (
	"context"
	"time"
)

// SessionHandle identifies one live browsing context on the session host.
type SessionHandle struct {
	// ID is the host-assigned session identifier.
	ID string

	// LiveViewURL is a URL where the session can be watched and operated
	// interactively. May be empty for hosts that do not expose one.
	LiveViewURL string
}

// Readiness is the tri-state result of a readiness check.
type Readiness int

const (
	// ReadinessUnknown means the check could not determine the page state.
	ReadinessUnknown Readiness = iota

	// ReadinessNotReady means the page is loaded but not yet in the
	// desired default state.
	ReadinessNotReady

	// ReadinessReady means the page is in the desired default state.
	ReadinessReady
)

func (r Readiness) String() string {
	switch r {
	case ReadinessReady:
		return "ready"
	case ReadinessNotReady:
		return "not-ready"
	default:
		return "unknown"
	}
}

// Session is one isolated chat context. Ownership is exclusive: a session
// belongs to the prewarm pool, the coordinator's open-chat list, or a single
// in-flight creation task, and moves between them by transfer.
type Session struct {
	Handle   SessionHandle
	Ready    bool
	OpenedAt time.Time
}

// ID returns the session's immutable identifier.
func (s *Session) ID() string { return s.Handle.ID }

// Host is the session content host: the subsystem that owns the actual
// browsing contexts. Implementations live outside this package; the
// coordinator only needs these five operations.
type Host interface {
	// CreateSession allocates a new isolated browsing context.
	CreateSession(ctx context.Context) (SessionHandle, error)

	// LoadDefaultURL navigates the session to the chat site.
	LoadDefaultURL(ctx context.Context, h SessionHandle) error

	// CheckReadiness runs the readiness check against the live page. The
	// check is allowed to nudge the page toward the default state as a side
	// effect; the target UI offers no way to set it directly.
	CheckReadiness(ctx context.Context, h SessionHandle) (Readiness, error)

	// FocusComposer moves input focus to the message composer. Best effort.
	FocusComposer(ctx context.Context, h SessionHandle) error

	// CloseSession releases the browsing context.
	CloseSession(ctx context.Context, h SessionHandle) error
}
