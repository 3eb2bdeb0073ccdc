package ratelimit

import (
	"math"
	"sync"
	"time"
)

// WindowConfig holds the fixed-window counter settings.
type WindowConfig struct {
	Limit           int           // max requests per window per identity
	Window          time.Duration // window length
	CleanupInterval time.Duration // how often expired windows are swept
}

// DefaultWindowConfig is the limit applied to AI suggestion requests when
// no environment overrides are set.
var DefaultWindowConfig = WindowConfig{
	Limit:           5,
	Window:          time.Minute,
	CleanupInterval: 5 * time.Minute,
}

// Decision is the outcome of a fixed-window check.
type Decision struct {
	Allowed   bool
	Remaining int       // requests left in the current window
	ResetAt   time.Time // when the current window ends
}

// RetryAfterSeconds returns the whole seconds until the window resets,
// rounded up and never below 1.
func (d Decision) RetryAfterSeconds(now time.Time) int {
	secs := int(math.Ceil(d.ResetAt.Sub(now).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// CounterStore holds fixed-window counters keyed by identity. The default
// is an in-process map; a store backed by a shared cache lets several
// server instances enforce one limit. Window serializes all calls, so
// implementations do not need their own locking.
type CounterStore interface {
	// Get returns the counter for identity, if one is tracked.
	Get(identity string) (count int, start time.Time, ok bool)
	// Set records the counter for identity.
	Set(identity string, count int, start time.Time)
	// Sweep removes every entry whose window start satisfies expired.
	Sweep(expired func(start time.Time) bool)
	// Len reports the number of tracked identities.
	Len() int
}

type windowEntry struct {
	count int
	start time.Time
}

type mapCounterStore struct {
	entries map[string]*windowEntry
}

// NewMapCounterStore returns the in-process CounterStore.
func NewMapCounterStore() CounterStore {
	return &mapCounterStore{entries: make(map[string]*windowEntry)}
}

func (m *mapCounterStore) Get(identity string) (int, time.Time, bool) {
	entry, ok := m.entries[identity]
	if !ok {
		return 0, time.Time{}, false
	}
	return entry.count, entry.start, true
}

func (m *mapCounterStore) Set(identity string, count int, start time.Time) {
	m.entries[identity] = &windowEntry{count: count, start: start}
}

func (m *mapCounterStore) Sweep(expired func(start time.Time) bool) {
	for identity, entry := range m.entries {
		if expired(entry.start) {
			delete(m.entries, identity)
		}
	}
}

func (m *mapCounterStore) Len() int {
	return len(m.entries)
}

// Window counts requests per identity in fixed intervals. The counter
// resets fully at each window boundary, so a burst right after a reset is
// allowed up to the full limit.
type Window struct {
	mu     sync.Mutex
	store  CounterStore
	config WindowConfig
	now    func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWindow starts the limiter with the in-process counter store and its
// background sweep goroutine. Call Stop on shutdown.
func NewWindow(config WindowConfig) *Window {
	return NewWindowWithStore(config, NewMapCounterStore())
}

// NewWindowWithStore starts the limiter on the given counter store.
func NewWindowWithStore(config WindowConfig, store CounterStore) *Window {
	w := &Window{
		store:  store,
		config: config,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.sweepLoop()
	return w
}

// SetNowFunc overrides the clock for tests.
func (w *Window) SetNowFunc(now func() time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.now = now
}

// Identity picks the rate-limit key for a request: the user ID when
// authenticated, otherwise the client IP, otherwise a shared anonymous
// bucket.
func Identity(userID, remoteIP string) string {
	if userID != "" {
		return userID
	}
	if remoteIP != "" {
		return remoteIP
	}
	return "anonymous"
}

// Allow records one request for identity and reports whether it fits in
// the current window. Blocked requests do not consume from the window.
func (w *Window) Allow(identity string) Decision {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	count, start, ok := w.store.Get(identity)
	if !ok || !now.Before(start.Add(w.config.Window)) {
		count, start = 0, now
	}

	resetAt := start.Add(w.config.Window)
	if count >= w.config.Limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	count++
	w.store.Set(identity, count, start)
	return Decision{
		Allowed:   true,
		Remaining: w.config.Limit - count,
		ResetAt:   resetAt,
	}
}

// Sweep drops entries whose window has already ended.
func (w *Window) Sweep() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.store.Sweep(func(start time.Time) bool {
		return !now.Before(start.Add(w.config.Window))
	})
}

func (w *Window) sweepLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep()
		case <-w.stopCh:
			return
		}
	}
}

// Stop terminates the sweep goroutine and waits for it to exit.
func (w *Window) Stop() {
	close(w.stopCh)
	w.wg.Wait()
}

// Len reports the number of tracked identities.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Len()
}
