package backend

import (
	"sync"
	"sync/atomic"
)

// Interrupter is a cooperative cancellation flag. Once set it causes any
// in-progress or future Solve call it is attached to, to terminate at the
// backend's next checkpoint with the best result found so far. Setting the
// flag does not guarantee immediate termination.
//
// An Interrupter is safe for concurrent use and may be shared between
// multiple Solve calls.
type Interrupter struct {
	once        sync.Once
	done        chan struct{}
	interrupted atomic.Bool
}

// NewInterrupter returns an unset interrupter.
func NewInterrupter() *Interrupter {
	return &Interrupter{done: make(chan struct{})}
}

// Interrupt sets the flag. It is idempotent.
func (i *Interrupter) Interrupt() {
	i.interrupted.Store(true)
	i.once.Do(func() { close(i.done) })
}

// Interrupted reports whether the flag is set. Backends poll this at their
// checkpoints.
func (i *Interrupter) Interrupted() bool {
	return i.interrupted.Load()
}

// Done returns a channel closed when the flag is set, for backends that
// select on channels rather than poll.
func (i *Interrupter) Done() <-chan struct{} {
	return i.done
}
