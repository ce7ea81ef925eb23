package chat

import (
	"context"
	"log/slog"
	"time"
)

// PoolConfig tunes the prewarm pool. Sizing is deliberately constant at
// runtime; it is not exposed through the settings file.
type PoolConfig struct {
	// BaseTarget is the number of readied sessions kept warm when no
	// requests are waiting.
	BaseTarget int

	// BufferSize is added on top of the pending-request count when requests
	// are waiting.
	BufferSize int

	// NormalCap and UrgentCap bound concurrent creation tasks. Urgent
	// replenishment, used when a request is waiting, gets the higher cap.
	NormalCap int
	UrgentCap int

	// RetryDelay is the pause before re-ensuring capacity after a creation
	// task fails.
	RetryDelay time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		BaseTarget: 2,
		BufferSize: 1,
		NormalCap:  4,
		UrgentCap:  6,
		RetryDelay: 250 * time.Millisecond,
	}
}

// SessionPool keeps a FIFO buffer of pre-created, pre-readied sessions and
// replenishes it under a concurrency cap. Outstanding requests always win
// over pool replenishment: the first session to come ready goes to the
// oldest queued request, and only joins the pool when nobody is waiting.
//
// All fields are confined to the coordinator loop. Creation tasks run on
// their own goroutines and post their resolution back.
type SessionPool struct {
	ctx    context.Context
	host   Host
	driver *Driver
	queue  *RequestQueue
	loop   *runLoop
	cfg    PoolConfig

	sessions []*Session
	inFlight int

	// deliver hands a readied session to the owner of a queued request.
	// Runs on the loop.
	deliver func(requestID string, s *Session)
}

func newSessionPool(ctx context.Context, host Host, driver *Driver, queue *RequestQueue, loop *runLoop, cfg PoolConfig) *SessionPool {
	return &SessionPool{
		ctx:    ctx,
		host:   host,
		driver: driver,
		queue:  queue,
		loop:   loop,
		cfg:    cfg,
	}
}

// Target returns the session count the pool should currently hold or be
// driving toward: the base target, or enough to cover every pending request
// plus a buffer, whichever is larger.
func (p *SessionPool) Target() int {
	return max(p.cfg.BaseTarget, p.queue.Len()+p.cfg.BufferSize)
}

// EnsureCapacity launches as many creation tasks as the target and the
// concurrency cap allow. Loop only.
func (p *SessionPool) EnsureCapacity(target int, urgent bool) {
	limit := p.cfg.NormalCap
	if urgent {
		limit = p.cfg.UrgentCap
	}
	remaining := target - (len(p.sessions) + p.inFlight)
	launch := min(remaining, limit-p.inFlight)
	for i := 0; i < launch; i++ {
		p.inFlight++
		go p.create()
	}
	if launch > 0 {
		slog.Debug("pool: replenishing",
			"launched", launch,
			"target", target,
			"in_flight", p.inFlight,
			"urgent", urgent,
		)
	}
}

// Take pops the oldest readied session, or nil when the pool is empty.
// Loop only.
func (p *SessionPool) Take() *Session {
	if len(p.sessions) == 0 {
		return nil
	}
	s := p.sessions[0]
	p.sessions = p.sessions[1:]
	return s
}

// Size returns the number of readied sessions currently pooled. Loop only.
func (p *SessionPool) Size() int { return len(p.sessions) }

// InFlight returns the number of creation tasks currently running. Loop only.
func (p *SessionPool) InFlight() int { return p.inFlight }

// create is one creation task. It runs on its own goroutine and posts its
// resolution back to the loop.
func (p *SessionPool) create() {
	s, ok := buildSession(p.ctx, p.host, p.driver)
	p.loop.Do(func() { p.resolve(s, ok) })
}

// resolve finishes one creation task. inFlight was incremented when the task
// launched and is decremented here exactly once; the delayed retry below
// never touches it. Loop only.
func (p *SessionPool) resolve(s *Session, ok bool) {
	p.inFlight--

	if ok {
		if id, waiting := p.queue.DequeueOldest(); waiting {
			slog.Debug("pool: fulfilling queued request", "request", id, "session", s.ID())
			p.deliver(id, s)
		} else {
			p.sessions = append(p.sessions, s)
			slog.Debug("pool: session pooled", "session", s.ID(), "pool_size", len(p.sessions))
		}
	} else {
		if s != nil {
			// The session exists but never confirmed ready. Discard it
			// rather than pooling something unusable.
			go func() { _ = p.host.CloseSession(p.ctx, s.Handle) }()
		}
		slog.Warn("pool: creation task failed, scheduling retry", "delay", p.cfg.RetryDelay)
		time.AfterFunc(p.cfg.RetryDelay, func() {
			p.loop.Do(func() { p.EnsureCapacity(p.Target(), p.queue.Len() > 0) })
		})
	}

	// Keep the pipeline full after every resolution.
	p.EnsureCapacity(p.Target(), p.queue.Len() > 0)
}

// buildSession creates a session, points it at the chat site, and drives it
// toward readiness. It returns a nil session only when the host could not
// create one at all; a non-nil session with ok == false exists but never
// confirmed ready.
func buildSession(ctx context.Context, host Host, driver *Driver) (*Session, bool) {
	h, err := host.CreateSession(ctx)
	if err != nil {
		slog.Warn("pool: session creation failed", "error", err)
		return nil, false
	}
	if err := host.LoadDefaultURL(ctx, h); err != nil {
		slog.Warn("pool: default URL load failed", "session", h.ID, "error", err)
		go func() { _ = host.CloseSession(ctx, h) }()
		return nil, false
	}
	ok := driver.Drive(ctx, h)
	return &Session{Handle: h, Ready: ok, OpenedAt: time.Now()}, ok
}
