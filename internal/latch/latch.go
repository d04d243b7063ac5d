// Package latch provides a one-shot completion latch.
package latch

import "sync"

// State is the latch state.
type State int

const (
	// Pending means neither Fail nor Done has been called.
	Pending State = iota
	// Errored means the first settlement was a failure.
	Errored
	// Done means the first settlement was a success.
	Done
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Errored:
		return "errored"
	case Done:
		return "done"
	default:
		return "pending"
	}
}

// Latch settles exactly once. The first call to Fail or Done wins; later
// calls report false and leave the state unchanged.
type Latch struct {
	mu    sync.Mutex
	state State
	err   error
}

// Fail settles the latch with err. It reports whether this call settled it.
func (l *Latch) Fail(err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Pending {
		return false
	}
	l.state = Errored
	l.err = err
	return true
}

// Done settles the latch successfully. It reports whether this call settled it.
func (l *Latch) Done() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Pending {
		return false
	}
	l.state = Done
	return true
}

// State returns the current state.
func (l *Latch) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err returns the settling error, if any.
func (l *Latch) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
