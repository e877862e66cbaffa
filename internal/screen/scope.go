// Package screen tracks whether the view that started a request is still
// showing, so late responses can be dropped.
package screen

import "sync"

// Scope is live from New until Close. In-flight requests are not cancelled
// by Close; their results are simply not applied.
type Scope struct {
	mu     sync.Mutex
	closed bool
}

func New() *Scope {
	return &Scope{}
}

// Close marks the scope as unmounted. It is idempotent.
func (s *Scope) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Live reports whether results may still be applied. A nil scope is always live.
func (s *Scope) Live() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Apply runs fn only while the scope is live and reports whether it ran.
// Close waits for a running fn to return.
func (s *Scope) Apply(fn func()) bool {
	if s == nil {
		fn()
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	fn()
	return true
}
