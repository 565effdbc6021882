package tts

import (
	"context"
	"sync"
)

// pendingCall is one in-flight synthesis shared between the owner and any
// callers that arrived while it was running.
type pendingCall struct {
	done   chan struct{}
	result *SynthesisResult
	err    error
}

// wait blocks until the owning call settles or the waiter's context ends.
func (p *pendingCall) wait(ctx context.Context) (*SynthesisResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// pendingRegistry de-duplicates concurrent syntheses by cache key within a
// single process. At most one call per key is in flight at a time; entries
// are removed unconditionally when the call settles, so a later request with
// the same key always starts fresh.
type pendingRegistry struct {
	mu    sync.Mutex
	calls map[string]*pendingCall
}

func newPendingRegistry() *pendingRegistry {
	return &pendingRegistry{calls: make(map[string]*pendingCall)}
}

// begin returns the in-flight call for key and whether the caller owns it.
// The owner must eventually settle the call; non-owners just wait on it.
func (r *pendingRegistry) begin(key string) (*pendingCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.calls[key]; ok {
		return existing, false
	}
	call := &pendingCall{done: make(chan struct{})}
	r.calls[key] = call
	return call, true
}

// settle records the outcome, removes the registry entry and releases every
// waiter. Removal happens before the broadcast so no new waiter can attach to
// a settled call.
func (r *pendingRegistry) settle(key string, call *pendingCall, result *SynthesisResult, err error) {
	r.mu.Lock()
	delete(r.calls, key)
	r.mu.Unlock()

	call.result = result
	call.err = err
	close(call.done)
}

// size reports the number of in-flight calls; used by tests.
func (r *pendingRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
