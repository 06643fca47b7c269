package narration

import (
	"context"
	"sync/atomic"
)

// Token is the cancellable lifetime of one narration run. It moves from
// active to cancelled exactly once; a new run needs a new Token.
type Token struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// NewToken returns an active token. Cancelling parent also cancels the
// token, which is how process shutdown reaches a run.
func NewToken(parent context.Context) *Token {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Token{ctx: ctx, cancel: cancel}
}

// Cancel requests a stop. Repeated calls are no-ops.
func (t *Token) Cancel() {
	t.cancelled.Store(true)
	t.cancel()
}

// Cancelled reports whether the token has been cancelled, directly or via
// its parent.
func (t *Token) Cancelled() bool {
	return t.cancelled.Load() || t.ctx.Err() != nil
}

// Done is closed once the token is cancelled.
func (t *Token) Done() <-chan struct{} {
	return t.ctx.Done()
}

// Context returns a context that ends when the token is cancelled.
func (t *Token) Context() context.Context {
	return t.ctx
}
