package downloader

import "sync/atomic"

// Stopper is a cooperative cancellation flag shared by every worker of a
// run. Workers poll it between groups and between requests; nothing is
// interrupted mid-request.
//
// The flag is independent of any signal mechanism, so it can be triggered
// from a signal handler, a test, or a timeout alike.
type Stopper struct {
	stopped atomic.Bool
}

// Stop requests cancellation. Calling it again has no further effect.
func (s *Stopper) Stop() {
	s.stopped.Store(true)
}

// Stopped reports whether cancellation has been requested.
func (s *Stopper) Stopped() bool {
	return s.stopped.Load()
}
