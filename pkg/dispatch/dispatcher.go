package dispatch

import "sync"

// Dispatcher is a one-shot latch for a single attempt.
// It is safe for concurrent use.
type Dispatcher struct {
	deliver func(Outcome)

	mu       sync.Mutex
	resolved bool
	outcome  Outcome
	dropped  int
	done     chan struct{}
}

// New creates a dispatcher that forwards the first outcome to deliver.
// deliver may be nil when the caller only waits on Done.
func New(deliver func(Outcome)) *Dispatcher {
	return &Dispatcher{
		deliver: deliver,
		done:    make(chan struct{}),
	}
}

// Resolve records o if no outcome has been recorded yet.
// It returns true for the call that won; later calls return false and
// have no effect. deliver runs outside the lock, before Done is closed.
func (d *Dispatcher) Resolve(o Outcome) bool {
	d.mu.Lock()
	if d.resolved {
		d.dropped++
		d.mu.Unlock()
		return false
	}
	d.resolved = true
	d.outcome = o
	d.mu.Unlock()

	if d.deliver != nil {
		d.deliver(o)
	}
	close(d.done)
	return true
}

// Done is closed after the first outcome has been delivered.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Outcome returns the recorded outcome and whether one exists.
func (d *Dispatcher) Outcome() (Outcome, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outcome, d.resolved
}

// Dropped returns how many Resolve calls were discarded.
func (d *Dispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}
