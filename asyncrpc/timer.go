package asyncrpc

import (
	"sync"
	"time"
)

// Timer is the monotonic tick source of §5: a single goroutine fires at
// a configurable period (typical 100ms) and every timeout in this
// module — handshake session expiry, channel-pool keepalive, ratchet
// cooldown — is expressed as a tick count rather than wall-clock time,
// so the whole module can be driven deterministically in tests by
// calling Tick directly instead of waiting on a real ticker.
type Timer struct {
	period time.Duration

	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int

	ticker *time.Ticker
	quit   chan struct{}
	done   chan struct{}
}

// NewTimer builds a Timer that has not yet started ticking.
func NewTimer(period time.Duration) *Timer {
	return &Timer{
		period: period,
		subs:   make(map[int]chan struct{}),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins firing ticks at the configured period until Stop is
// called. Start must only be called once.
func (t *Timer) Start() {
	t.ticker = time.NewTicker(t.period)
	go t.run()
}

func (t *Timer) run() {
	defer close(t.done)
	for {
		select {
		case <-t.ticker.C:
			t.broadcast()
		case <-t.quit:
			t.ticker.Stop()
			return
		}
	}
}

func (t *Timer) broadcast() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- struct{}{}:
		default:
			// Subscriber hasn't drained its last tick yet; per §5
			// nothing here may block the timer's own goroutine, so
			// this tick is dropped for that subscriber.
		}
	}
}

// Subscribe registers a new tick listener, returning its channel and an
// unsubscribe function the caller must eventually call.
func (t *Timer) Subscribe() (<-chan struct{}, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan struct{}, 1)
	t.subs[id] = ch

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

// Tick fires a tick to every subscriber immediately, bypassing the
// period — the hook tests use to drive tick-based expiry
// deterministically instead of sleeping real wall-clock time.
func (t *Timer) Tick() {
	t.broadcast()
}

// Stop halts the ticking goroutine and waits for it to exit. A Timer
// that was never Start-ed returns immediately.
func (t *Timer) Stop() {
	if t.ticker == nil {
		return
	}
	close(t.quit)
	<-t.done
}
