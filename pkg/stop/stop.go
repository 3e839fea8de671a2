// Package stop holds the process-wide "should stop" flag shared by every worker.
package stop

import (
	"sync"
	"sync/atomic"
)

// Controller is a one-way stop flag. It starts false and, once set, stays set
// for the lifetime of the controller.
//
// RequestStop only touches an atomic word and closes a channel, so it is safe
// to call from the signal-forwarding goroutine while any worker is reading the
// flag.
type Controller struct {
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

func New() *Controller {
	return &Controller{done: make(chan struct{})}
}

// RequestStop sets the flag. It reports true only for the call that actually
// flipped it; later calls are no-ops.
func (c *Controller) RequestStop() bool {
	if !c.stopped.CompareAndSwap(false, true) {
		return false
	}
	c.once.Do(func() { close(c.done) })
	return true
}

// ShouldStop reports whether a stop has been requested.
func (c *Controller) ShouldStop() bool {
	return c.stopped.Load()
}

// Done returns a channel closed once a stop has been requested.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}
