// Package notify provides a coalescing wake-up signal between goroutines.
package notify

// Signal collapses any number of requests into a single pending wake-up.
// The zero value is not usable; create one with New.
type Signal struct {
	ch chan struct{}
}

func New() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Request marks the signal pending. It never blocks.
func (s *Signal) Request() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C is drained by the consumer; one receive clears all pending requests.
func (s *Signal) C() <-chan struct{} {
	return s.ch
}

// Pending consumes a pending request without blocking.
func (s *Signal) Pending() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}
