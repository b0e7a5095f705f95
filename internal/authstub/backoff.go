package authstub

import (
	"sync"
	"time"
)

// Accept retry delays.
const (
	initialAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay     = time.Second
)

// backoff doubles a delay up to a cap. It paces the accept loop after
// transient errors such as running out of file descriptors.
type backoff struct {
	mu       sync.Mutex
	current  time.Duration
	initial  time.Duration
	max      time.Duration
	failures int
}

func newBackoff(initial, max time.Duration) *backoff {
	return &backoff{current: initial, initial: initial, max: max}
}

// Next returns the delay to wait now and doubles the following one.
func (b *backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := b.current
	b.failures++
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Reset returns to the initial delay after a successful accept.
func (b *backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.failures = 0
}

// Failures returns the number of delays handed out since the last Reset.
func (b *backoff) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
