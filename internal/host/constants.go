// Package host runs chat sessions inside Kernel cloud browsers. It implements
// the session content host the coordinator drives: creating browsers, pointing
// them at the chat site, probing page readiness, and sending messages, all via
// Playwright scripts executed through the Kernel API.
package host

const (
	// DefaultChatURL is where new sessions navigate on creation.
	DefaultChatURL = "https://claude.ai/new"

	// DefaultSessionTimeoutSeconds is the browser lifetime requested from
	// Kernel when the caller does not override it.
	DefaultSessionTimeoutSeconds = 3600

	// readinessTimeoutSec bounds a single readiness-check script run.
	readinessTimeoutSec = 10

	// focusTimeoutSec bounds the best-effort composer focus.
	focusTimeoutSec = 5

	// accessiblePollAttempts and accessiblePollDelayMS cover the eventual
	// consistency window right after browser creation.
	accessiblePollAttempts = 10
	accessiblePollDelayMS  = 500
)
