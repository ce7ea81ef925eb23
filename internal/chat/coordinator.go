// Package chat implements the prewarmed chat-session coordinator: an ordered
// list of open chats backed by a pool of sessions driven to readiness before
// anyone asks for them, so opening a new chat is instant.
//
// All shared state lives on a single cooperative run loop. Creation tasks and
// timers run on their own goroutines but only ever mutate state by posting
// back to the loop, so the package needs no locks.
package chat

import (
	"context"
	"log/slog"
	"time"
)

// Presenter receives user-visible session changes. Calls arrive on the
// coordinator loop and must return quickly.
type Presenter interface {
	SessionActivated(s *Session, index, total int)
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(s *Session, index, total int)

func (f PresenterFunc) SessionActivated(s *Session, index, total int) { f(s, index, total) }

// Config tunes the coordinator and its collaborators.
type Config struct {
	Driver DriverConfig
	Pool   PoolConfig

	// FallbackDelay bounds how long a new-chat request may wait on the pool
	// before a live session is created for it directly. This is the only
	// hard timeout in the system.
	FallbackDelay time.Duration

	// FocusDelay is the pause before the best-effort composer focus that
	// follows activation.
	FocusDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Driver:        DefaultDriverConfig(),
		Pool:          DefaultPoolConfig(),
		FallbackDelay: 450 * time.Millisecond,
		FocusDelay:    150 * time.Millisecond,
	}
}

// SessionInfo is a read-only copy of one open chat's state.
type SessionInfo struct {
	ID          string
	LiveViewURL string
	Ready       bool
	OpenedAt    time.Time
}

// Snapshot is a consistent copy of the coordinator's observable state.
type Snapshot struct {
	Sessions []SessionInfo
	Active   int
	PoolSize int
	InFlight int
	QueueLen int
}

// Coordinator orchestrates the open-chat list, the prewarm pool, and the
// request queue. All exported methods are safe to call from any goroutine
// and return without blocking on session work.
type Coordinator struct {
	host Host
	cfg  Config
	pres Presenter

	ctx    context.Context
	cancel context.CancelFunc
	loop   *runLoop

	driver *Driver
	pool   *SessionPool
	queue  *RequestQueue

	// Loop-confined: the ordered open-chat list and the active pointer.
	// The list never shrinks below one once the first chat has opened.
	sessions []*Session
	active   int
}

// New builds a coordinator and starts its run loop. Close releases it.
func New(ctx context.Context, host Host, cfg Config, pres Presenter) *Coordinator {
	ctx, cancel := context.WithCancel(ctx)
	c := &Coordinator{
		host:   host,
		cfg:    cfg,
		pres:   pres,
		ctx:    ctx,
		cancel: cancel,
		loop:   startRunLoop(ctx),
		queue:  NewRequestQueue(),
	}
	c.driver = NewDriver(NewReadinessProbe(host), cfg.Driver)
	c.pool = newSessionPool(ctx, host, c.driver, c.queue, c.loop, cfg.Pool)
	c.pool.deliver = func(requestID string, s *Session) { c.adopt(s) }
	return c
}

// Close stops the run loop and cancels outstanding session work.
func (c *Coordinator) Close() { c.cancel() }

// Prewarm starts filling the pool ahead of the first chat request.
func (c *Coordinator) Prewarm() {
	c.loop.Do(func() { c.pool.EnsureCapacity(c.pool.Target(), false) })
}

// NewChat opens a new chat. On a pool hit the session is adopted and
// activated immediately; on a miss the request is queued, urgent
// replenishment starts, and a fallback timer guarantees a session arrives
// even if the pool stays starved. Returns immediately; activation happens
// asynchronously.
func (c *Coordinator) NewChat() {
	c.loop.Do(func() {
		if s := c.pool.Take(); s != nil {
			slog.Debug("coordinator: new chat from pool", "session", s.ID())
			c.adopt(s)
			c.pool.EnsureCapacity(c.pool.Target(), false)
			return
		}
		id := c.queue.Enqueue()
		slog.Debug("coordinator: new chat queued", "request", id)
		c.pool.EnsureCapacity(c.pool.Target(), true)
		c.queue.ScheduleFallback(id, c.cfg.FallbackDelay, c.onFallback)
	})
}

// NextChat activates the chat after the current one, wrapping around.
// No-op with fewer than two chats.
func (c *Coordinator) NextChat() {
	c.loop.Do(func() {
		if len(c.sessions) <= 1 {
			return
		}
		c.activate((c.active + 1) % len(c.sessions))
	})
}

// CloseChat closes the active chat and activates its successor position.
// Closing the last remaining chat is a no-op at this layer; the surrounding
// window owns that case.
func (c *Coordinator) CloseChat() {
	c.loop.Do(func() {
		if len(c.sessions) <= 1 {
			return
		}
		s := c.sessions[c.active]
		c.sessions = append(c.sessions[:c.active], c.sessions[c.active+1:]...)
		go func() { _ = c.host.CloseSession(c.ctx, s.Handle) }()
		slog.Debug("coordinator: chat closed", "session", s.ID(), "remaining", len(c.sessions))
		c.activate(min(c.active, len(c.sessions)-1))
	})
}

// Activate makes the chat at index the active one. Out-of-range indexes are
// ignored.
func (c *Coordinator) Activate(index int) {
	c.loop.Do(func() { c.activate(index) })
}

// Snapshot returns a consistent copy of the coordinator's state, or the zero
// Snapshot after Close.
func (c *Coordinator) Snapshot() Snapshot {
	var snap Snapshot
	c.loop.Call(func() {
		snap.Active = c.active
		snap.PoolSize = c.pool.Size()
		snap.InFlight = c.pool.InFlight()
		snap.QueueLen = c.queue.Len()
		for _, s := range c.sessions {
			snap.Sessions = append(snap.Sessions, SessionInfo{
				ID:          s.ID(),
				LiveViewURL: s.Handle.LiveViewURL,
				Ready:       s.Ready,
				OpenedAt:    s.OpenedAt,
			})
		}
	})
	return snap
}

// ActiveSession returns the active chat's info, or false before the first
// chat has opened.
func (c *Coordinator) ActiveSession() (SessionInfo, bool) {
	snap := c.Snapshot()
	if len(snap.Sessions) == 0 {
		return SessionInfo{}, false
	}
	return snap.Sessions[snap.Active], true
}

// adopt appends a freshly readied session to the open-chat list and makes it
// active. Loop only.
func (c *Coordinator) adopt(s *Session) {
	c.sessions = append(c.sessions, s)
	c.activate(len(c.sessions) - 1)
}

// activate sets the active pointer, notifies the presenter, and kicks off a
// delayed best-effort composer focus. Loop only.
func (c *Coordinator) activate(index int) {
	if index < 0 || index >= len(c.sessions) {
		return
	}
	c.active = index
	s := c.sessions[index]
	if c.pres != nil {
		c.pres.SessionActivated(s, index, len(c.sessions))
	}
	// Fire and forget: the page may still be settling when the focus lands,
	// and a miss only costs the user one click.
	time.AfterFunc(c.cfg.FocusDelay, func() {
		if err := c.host.FocusComposer(c.ctx, s.Handle); err != nil {
			slog.Debug("coordinator: composer focus failed", "session", s.ID(), "error", err)
		}
	})
}

// onFallback fires when a queued request has waited out its fallback delay.
// If the request is still queued it is removed and a live session is created
// for it directly, outside the pool path and its concurrency caps. The
// session still runs through the readiness driver before being shown.
func (c *Coordinator) onFallback(id string) {
	c.loop.Do(func() {
		if !c.queue.Remove(id) {
			return // pool fulfillment won the race
		}
		slog.Info("coordinator: pool too slow, creating live session", "request", id)
		go func() {
			s, ok := buildSession(c.ctx, c.host, c.driver)
			if s == nil {
				// The fallback must not lose the request: put it back in
				// the queue with a fresh fallback timer so either the pool
				// or the next fallback attempt resolves it.
				slog.Warn("coordinator: fallback creation failed, re-queuing", "request", id)
				c.loop.Do(func() {
					requeued := c.queue.Enqueue()
					c.pool.EnsureCapacity(c.pool.Target(), true)
					c.queue.ScheduleFallback(requeued, c.cfg.FallbackDelay, c.onFallback)
				})
				return
			}
			if !ok {
				slog.Warn("coordinator: fallback session unconfirmed", "request", id, "session", s.ID())
			}
			c.loop.Do(func() { c.adopt(s) })
		}()
	})
}
