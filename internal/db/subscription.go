package db

import "sync"

// Subscription is a handle to an open snapshot listener. Every live
// subscription must be stopped when its owner is torn down or when the
// subscribing identity changes; an unstopped subscription leaks a standing
// goroutine and callback registration.
type Subscription struct {
	stop     func()
	stopOnce sync.Once
	done     chan struct{}
}

func newSubscription(stop func()) *Subscription {
	return &Subscription{stop: stop, done: make(chan struct{})}
}

// Stop cancels the listener. Safe to call more than once.
func (s *Subscription) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(s.stop)
}

// Done is closed once the listener goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) markDone() {
	close(s.done)
}
