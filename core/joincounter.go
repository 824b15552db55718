package core

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// JoinCounter signals exactly once when remaining branches of an n-ary
// join all complete. remaining only decreases; Ready becomes true exactly
// when it reaches zero. Decrementing below zero is a contract violation.
//
// Grounded on original_source/sync/JoinCounter.java, adapted from
// synchronized/wait-notify to sync.Cond over an atomic counter.
type JoinCounter struct {
	remaining int64

	mu    sync.Mutex
	cond  *sync.Cond
	ready bool
}

// NewJoinCounter creates a counter for n branches. n must be positive.
func NewJoinCounter(n int) (*JoinCounter, error) {
	if n <= 0 {
		return nil, newError(InvalidConfig, fmt.Sprintf("join counter initial count must be positive, got %d", n), nil)
	}
	jc := &JoinCounter{remaining: int64(n)}
	jc.cond = sync.NewCond(&jc.mu)
	return jc, nil
}

// Decrement records one completed branch. Returns true if this call
// brought remaining to zero (i.e. this goroutine is the one that made the
// counter ready). Panics with a ContractViolation *Error if called more
// times than the initial count.
func (c *JoinCounter) Decrement() bool {
	remaining := atomic.AddInt64(&c.remaining, -1)

	if remaining == 0 {
		c.mu.Lock()
		c.ready = true
		c.mu.Unlock()
		c.cond.Broadcast()
		return true
	}

	if remaining < 0 {
		panic(newError(ContractViolation, "join counter decremented below zero", nil))
	}

	return false
}

// IsReady reports whether all branches have completed.
func (c *JoinCounter) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Remaining returns the number of branches still pending.
func (c *JoinCounter) Remaining() int64 {
	return atomic.LoadInt64(&c.remaining)
}

// Await blocks until the counter becomes ready.
func (c *JoinCounter) Await() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.ready {
		c.cond.Wait()
	}
}
