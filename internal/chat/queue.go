package chat

import (
	"time"

	"github.com/google/uuid"
)

// pendingRequest is one "open a new chat" request that could not be served
// from the pool, together with its fallback timer.
type pendingRequest struct {
	id    string
	timer *time.Timer
}

// RequestQueue tracks pending chat requests in arrival order. The first
// request to arrive is the first to receive a freshly readied session. Every
// method must run on the coordinator loop; the fallback timer callback is the
// caller's responsibility to hop back onto it.
type RequestQueue struct {
	entries []*pendingRequest
}

func NewRequestQueue() *RequestQueue {
	return &RequestQueue{}
}

// Enqueue appends a new request and returns its id.
func (q *RequestQueue) Enqueue() string {
	id := uuid.NewString()
	q.entries = append(q.entries, &pendingRequest{id: id})
	return id
}

// Len returns the number of pending requests.
func (q *RequestQueue) Len() int { return len(q.entries) }

// DequeueOldest pops the oldest pending request, cancelling its fallback
// timer. It reports false when the queue is empty.
func (q *RequestQueue) DequeueOldest() (string, bool) {
	if len(q.entries) == 0 {
		return "", false
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	if e.timer != nil {
		e.timer.Stop()
	}
	return e.id, true
}

// Remove drops the request with the given id, cancelling its fallback timer.
// It reports false when the id is no longer queued, which makes the fallback
// path a no-op after pool fulfillment has already won.
func (q *RequestQueue) Remove(id string) bool {
	for i, e := range q.entries {
		if e.id != id {
			continue
		}
		q.entries = append(q.entries[:i], q.entries[i+1:]...)
		if e.timer != nil {
			e.timer.Stop()
		}
		return true
	}
	return false
}

// ScheduleFallback arms the request's fallback timer. After delay, fire is
// invoked with the request id from the timer's own goroutine; fire must
// re-enter the coordinator loop and check Remove before acting, so that a
// request is resolved by exactly one of pool fulfillment and fallback.
func (q *RequestQueue) ScheduleFallback(id string, delay time.Duration, fire func(id string)) {
	for _, e := range q.entries {
		if e.id == id {
			e.timer = time.AfterFunc(delay, func() { fire(id) })
			return
		}
	}
}
