package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost is an in-memory session content host. The zero behavior creates
// sessions instantly and probes ready; individual operations are overridden
// per test through the Func fields.
type fakeHost struct {
	mu      sync.Mutex
	nextID  int
	created []string
	closed  []string

	CreateSessionFunc  func(ctx context.Context) (SessionHandle, error)
	LoadDefaultURLFunc func(ctx context.Context, h SessionHandle) error
	CheckReadinessFunc func(ctx context.Context, h SessionHandle) (Readiness, error)
	FocusComposerFunc  func(ctx context.Context, h SessionHandle) error
	CloseSessionFunc   func(ctx context.Context, h SessionHandle) error
}

func newFakeHost() *fakeHost {
	return &fakeHost{}
}

func (f *fakeHost) CreateSession(ctx context.Context) (SessionHandle, error) {
	if f.CreateSessionFunc != nil {
		return f.CreateSessionFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("sess-%d", f.nextID)
	f.created = append(f.created, id)
	return SessionHandle{ID: id, LiveViewURL: "https://live.example/" + id}, nil
}

func (f *fakeHost) LoadDefaultURL(ctx context.Context, h SessionHandle) error {
	if f.LoadDefaultURLFunc != nil {
		return f.LoadDefaultURLFunc(ctx, h)
	}
	return nil
}

func (f *fakeHost) CheckReadiness(ctx context.Context, h SessionHandle) (Readiness, error) {
	if f.CheckReadinessFunc != nil {
		return f.CheckReadinessFunc(ctx, h)
	}
	return ReadinessReady, nil
}

func (f *fakeHost) FocusComposer(ctx context.Context, h SessionHandle) error {
	if f.FocusComposerFunc != nil {
		return f.FocusComposerFunc(ctx, h)
	}
	return nil
}

func (f *fakeHost) CloseSession(ctx context.Context, h SessionHandle) error {
	if f.CloseSessionFunc != nil {
		return f.CloseSessionFunc(ctx, h)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, h.ID)
	return nil
}

func (f *fakeHost) closedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.closed...)
}

// gatedReadiness blocks every readiness check until the gate closes, keeping
// creation tasks in flight for as long as the test wants.
func gatedReadiness(gate chan struct{}) func(ctx context.Context, h SessionHandle) (Readiness, error) {
	return func(ctx context.Context, h SessionHandle) (Readiness, error) {
		select {
		case <-gate:
			return ReadinessReady, nil
		case <-ctx.Done():
			return ReadinessUnknown, ctx.Err()
		}
	}
}

type activation struct {
	id    string
	index int
	total int
}

type recordingPresenter struct {
	mu     sync.Mutex
	events []activation
}

func (r *recordingPresenter) SessionActivated(s *Session, index, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, activation{id: s.ID(), index: index, total: total})
}

func (r *recordingPresenter) all() []activation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]activation(nil), r.events...)
}

func fastConfig() Config {
	return Config{
		Driver: DriverConfig{
			RetryBudget:     3,
			RetryDelay:      time.Millisecond,
			RecoveryCycles:  1,
			StabilityChecks: 2,
			StabilityDelay:  time.Millisecond,
		},
		Pool: PoolConfig{
			BaseTarget: 2,
			BufferSize: 1,
			NormalCap:  4,
			UrgentCap:  6,
			RetryDelay: 5 * time.Millisecond,
		},
		FallbackDelay: 10 * time.Second, // effectively off unless a test lowers it
		FocusDelay:    time.Millisecond,
	}
}

func newTestCoordinator(t *testing.T, host Host, cfg Config, pres Presenter) *Coordinator {
	t.Helper()
	c := New(context.Background(), host, cfg, pres)
	t.Cleanup(c.Close)
	return c
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, 5*time.Millisecond, msg)
}

func TestNewChatFromPool(t *testing.T) {
	host := newFakeHost()
	pres := &recordingPresenter{}
	c := newTestCoordinator(t, host, fastConfig(), pres)

	c.Prewarm()
	eventually(t, func() bool { return c.Snapshot().PoolSize == 2 }, "pool never prewarmed")

	c.NewChat()

	eventually(t, func() bool { return len(c.Snapshot().Sessions) == 1 }, "chat never opened")
	snap := c.Snapshot()
	assert.Equal(t, 0, snap.Active)
	assert.True(t, snap.Sessions[0].Ready)

	events := pres.all()
	require.Len(t, events, 1)
	assert.Equal(t, snap.Sessions[0].ID, events[0].id)
	assert.Equal(t, 0, events[0].index)
	assert.Equal(t, 1, events[0].total)

	// The consumed slot is refilled in the background.
	eventually(t, func() bool { return c.Snapshot().PoolSize == 2 }, "pool never refilled")
}

func TestQueuedRequestsFulfilledFIFO(t *testing.T) {
	gate := make(chan struct{})
	host := newFakeHost()
	host.CheckReadinessFunc = gatedReadiness(gate)
	c := newTestCoordinator(t, host, fastConfig(), &recordingPresenter{})

	var deliveredMu sync.Mutex
	var delivered []string
	orig := c.pool.deliver
	c.pool.deliver = func(requestID string, s *Session) {
		deliveredMu.Lock()
		delivered = append(delivered, requestID)
		deliveredMu.Unlock()
		orig(requestID, s)
	}

	c.NewChat()
	c.NewChat()
	c.NewChat()

	eventually(t, func() bool { return c.Snapshot().QueueLen == 3 }, "requests never queued")

	// target = max(2, 3+1) under the urgent cap of 6.
	eventually(t, func() bool {
		inFlight := c.Snapshot().InFlight
		return inFlight >= 3 && inFlight <= 6
	}, "creation tasks never launched")

	var queued []string
	c.loop.Call(func() {
		for _, e := range c.queue.entries {
			queued = append(queued, e.id)
		}
	})
	require.Len(t, queued, 3)

	close(gate)

	eventually(t, func() bool { return len(c.Snapshot().Sessions) == 3 }, "chats never opened")

	deliveredMu.Lock()
	defer deliveredMu.Unlock()
	require.Len(t, delivered, 3)
	assert.Equal(t, queued, delivered, "arrival order not preserved")
}

func TestFallbackCreatesLiveSession(t *testing.T) {
	host := newFakeHost()
	host.CheckReadinessFunc = func(ctx context.Context, h SessionHandle) (Readiness, error) {
		return ReadinessNotReady, nil
	}
	cfg := fastConfig()
	cfg.FallbackDelay = 15 * time.Millisecond
	c := newTestCoordinator(t, host, cfg, &recordingPresenter{})

	c.NewChat()

	// Pool creations all drive to a hard false, so only the fallback can
	// satisfy the request. The session is shown even though it never
	// confirmed ready.
	eventually(t, func() bool { return len(c.Snapshot().Sessions) == 1 }, "fallback never delivered")
	snap := c.Snapshot()
	assert.Equal(t, 0, snap.QueueLen)
	assert.False(t, snap.Sessions[0].Ready)

	// The request must be resolved exactly once.
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, c.Snapshot().Sessions, 1)
}

func TestFallbackRetriesAfterCreationFailure(t *testing.T) {
	host := newFakeHost()
	recoverAt := time.Now().Add(100 * time.Millisecond)
	host.CreateSessionFunc = func(ctx context.Context) (SessionHandle, error) {
		if time.Now().Before(recoverAt) {
			return SessionHandle{}, fmt.Errorf("host unavailable")
		}
		host.mu.Lock()
		defer host.mu.Unlock()
		host.nextID++
		id := fmt.Sprintf("sess-%d", host.nextID)
		host.created = append(host.created, id)
		return SessionHandle{ID: id}, nil
	}
	cfg := fastConfig()
	cfg.FallbackDelay = 15 * time.Millisecond
	c := newTestCoordinator(t, host, cfg, &recordingPresenter{})

	c.NewChat()

	// Every creation fails until the host recovers, including the fallback's
	// own attempt. The request must survive that window and still end in an
	// open chat, with nothing left queued.
	eventually(t, func() bool { return len(c.Snapshot().Sessions) == 1 }, "request was dropped")
	eventually(t, func() bool { return c.Snapshot().QueueLen == 0 }, "queue never drained")
}

func TestPoolFulfillmentCancelsFallback(t *testing.T) {
	gate := make(chan struct{})
	host := newFakeHost()
	host.CheckReadinessFunc = gatedReadiness(gate)
	cfg := fastConfig()
	cfg.FallbackDelay = 500 * time.Millisecond
	c := newTestCoordinator(t, host, cfg, &recordingPresenter{})

	c.NewChat()
	eventually(t, func() bool { return c.Snapshot().InFlight > 0 }, "creation never launched")

	close(gate)
	eventually(t, func() bool { return len(c.Snapshot().Sessions) == 1 }, "request never fulfilled")

	// Wait past the fallback deadline; the canceled timer must not deliver
	// a second session for the same request.
	time.Sleep(600 * time.Millisecond)
	assert.Len(t, c.Snapshot().Sessions, 1)
}

func TestCloseChatClampsIndex(t *testing.T) {
	host := newFakeHost()
	c := newTestCoordinator(t, host, fastConfig(), &recordingPresenter{})

	c.loop.Call(func() {
		for _, id := range []string{"a", "b", "c"} {
			c.adopt(&Session{Handle: SessionHandle{ID: id}, Ready: true, OpenedAt: time.Now()})
		}
	})

	c.Activate(1)
	c.CloseChat()

	eventually(t, func() bool { return len(c.Snapshot().Sessions) == 2 }, "chat never closed")
	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Active)
	assert.Equal(t, []string{"a", "c"}, []string{snap.Sessions[0].ID, snap.Sessions[1].ID})

	// Closing the last-position chat clamps the pointer back.
	c.Activate(1)
	c.CloseChat()
	eventually(t, func() bool { return len(c.Snapshot().Sessions) == 1 }, "chat never closed")
	assert.Equal(t, 0, c.Snapshot().Active)

	eventually(t, func() bool { return len(host.closedIDs()) == 2 }, "host sessions never released")
	assert.Equal(t, []string{"b", "c"}, host.closedIDs())
}

func TestCloseLastChatIsNoOp(t *testing.T) {
	host := newFakeHost()
	c := newTestCoordinator(t, host, fastConfig(), &recordingPresenter{})

	c.loop.Call(func() {
		c.adopt(&Session{Handle: SessionHandle{ID: "only"}, Ready: true, OpenedAt: time.Now()})
	})

	c.CloseChat()
	time.Sleep(20 * time.Millisecond)

	snap := c.Snapshot()
	assert.Len(t, snap.Sessions, 1)
	assert.Empty(t, host.closedIDs())
}

func TestNextChatWrapsAround(t *testing.T) {
	host := newFakeHost()
	c := newTestCoordinator(t, host, fastConfig(), &recordingPresenter{})

	c.loop.Call(func() {
		for _, id := range []string{"a", "b", "c"} {
			c.adopt(&Session{Handle: SessionHandle{ID: id}, Ready: true, OpenedAt: time.Now()})
		}
	})
	c.Activate(0)

	for _, want := range []int{1, 2, 0} {
		c.NextChat()
		eventually(t, func() bool { return c.Snapshot().Active == want }, "active pointer never advanced")
	}
}

func TestNextChatSingleSessionIsNoOp(t *testing.T) {
	host := newFakeHost()
	c := newTestCoordinator(t, host, fastConfig(), &recordingPresenter{})

	c.loop.Call(func() {
		c.adopt(&Session{Handle: SessionHandle{ID: "only"}, Ready: true, OpenedAt: time.Now()})
	})

	c.NextChat()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, c.Snapshot().Active)
}

func TestActivateOutOfRangeIgnored(t *testing.T) {
	host := newFakeHost()
	c := newTestCoordinator(t, host, fastConfig(), &recordingPresenter{})

	c.loop.Call(func() {
		c.adopt(&Session{Handle: SessionHandle{ID: "only"}, Ready: true, OpenedAt: time.Now()})
	})

	c.Activate(5)
	c.Activate(-1)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, c.Snapshot().Active)
}

func TestSnapshotAfterClose(t *testing.T) {
	host := newFakeHost()
	c := New(context.Background(), host, fastConfig(), nil)
	c.Close()

	assert.Equal(t, Snapshot{}, c.Snapshot())
}

func TestActiveSession(t *testing.T) {
	host := newFakeHost()
	c := newTestCoordinator(t, host, fastConfig(), &recordingPresenter{})

	_, ok := c.ActiveSession()
	assert.False(t, ok)

	c.loop.Call(func() {
		c.adopt(&Session{Handle: SessionHandle{ID: "a"}, Ready: true, OpenedAt: time.Now()})
	})

	info, ok := c.ActiveSession()
	require.True(t, ok)
	assert.Equal(t, "a", info.ID)
}
