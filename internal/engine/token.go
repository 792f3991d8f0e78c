package engine

import "sync/atomic"

// CancelToken requests cooperative cancellation of a running scan or
// pre-scan. Cancellation is one-way: once tripped, a token stays
// cancelled, and there is no reset. Tokens are safe to share across
// goroutines and to cancel from a different goroutine than the scan's.
type CancelToken struct {
	cancelled atomic.Bool
}

// NewCancelToken returns a fresh, uncancelled token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel trips the token. Calling it again is a no-op.
func (t *CancelToken) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool {
	if t == nil {
		return false
	}
	return t.cancelled.Load()
}
