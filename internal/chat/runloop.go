package chat

import "context"

// runLoop serializes all coordinator, pool, and queue state mutations onto a
// single goroutine. Worker goroutines and timers never touch shared state
// directly; they post a closure and the loop applies it. Each posted closure
// runs atomically with respect to the next, which is what lets the rest of
// the package go without locks.
type runLoop struct {
	ctx   context.Context
	tasks chan func()
}

func startRunLoop(ctx context.Context) *runLoop {
	l := &runLoop{ctx: ctx, tasks: make(chan func(), 256)}
	go l.run()
	return l
}

func (l *runLoop) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Do schedules fn on the loop goroutine. It reports false when the loop has
// shut down, in which case fn never runs.
func (l *runLoop) Do(fn func()) bool {
	select {
	case <-l.ctx.Done():
		return false
	case l.tasks <- fn:
		return true
	}
}

// Call runs fn on the loop goroutine and waits for it to finish. It reports
// false without running fn when the loop has shut down.
func (l *runLoop) Call(fn func()) bool {
	done := make(chan struct{})
	ok := l.Do(func() {
		fn()
		close(done)
	})
	if !ok {
		return false
	}
	select {
	case <-l.ctx.Done():
		return false
	case <-done:
		return true
	}
}
