package shared

// StopSource is the read side of the stop flag.
type StopSource interface {
	ShouldStop() bool
	Done() <-chan struct{}
}

// Wake tells why Readiness.Wait returned.
type Wake int

const (
	Ready Wake = iota
	Stopped
)

func (w Wake) String() string {
	switch w {
	case Ready:
		return "ready"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Readiness tells a single consumer that at least one new reading was
// published since it last looked. Notifications coalesce: any number of
// Notify calls before a Wait result in exactly one Ready.
//
// The pending flag is a buffered channel of capacity one. A value in the
// buffer means pending; receiving it is the consumer's acknowledgment.
type Readiness struct {
	pending chan struct{}
}

func NewReadiness() *Readiness {
	return &Readiness{pending: make(chan struct{}, 1)}
}

// Notify marks new data as pending and wakes the waiter, if any. It never
// blocks.
func (r *Readiness) Notify() {
	select {
	case r.pending <- struct{}{}:
	default:
	}
}

// Pending reports whether a notification is waiting to be consumed.
func (r *Readiness) Pending() bool {
	return len(r.pending) > 0
}

// Wait blocks until data is pending or stop is requested.
//
// If stop is (or becomes) requested, Wait returns Stopped and leaves the
// pending flag as it was. Otherwise it clears the flag and returns Ready.
func (r *Readiness) Wait(stop StopSource) Wake {
	if stop.ShouldStop() {
		return Stopped
	}
	select {
	case <-r.pending:
		return Ready
	case <-stop.Done():
		return Stopped
	}
}
