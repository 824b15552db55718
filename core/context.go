package core

// WorkerContext is the per-worker bundle of {Timer, PollingStrategy,
// PromotionTracker, stats}. It is created when a task is admitted on a
// worker and torn down when that worker's top-level task finishes.
// Exclusively owned by its worker; never shared, never inherited by a
// promoted child (see spec §5, "why contexts are not inherited").
//
// Grounded on original_source/core/HeartbeatContext.java.
type WorkerContext struct {
	Name string

	timer   *Timer
	polling PollingStrategy
	tracker *PromotionTracker

	operations int64
	polls      int64
	promotions int64
}

// NewWorkerContext builds a fresh context from its pieces. Each promoted
// worker must call this rather than reuse a parent's context.
func NewWorkerContext(name string, timer *Timer, polling PollingStrategy) *WorkerContext {
	return &WorkerContext{
		Name:    name,
		timer:   timer,
		polling: polling,
		tracker: NewPromotionTracker(),
	}
}

// Tracker returns this worker's promotion tracker.
func (c *WorkerContext) Tracker() *PromotionTracker {
	return c.tracker
}

// Timer returns this worker's heartbeat timer.
func (c *WorkerContext) Timer() *Timer {
	return c.timer
}

// Polling returns this worker's polling strategy.
func (c *WorkerContext) Polling() PollingStrategy {
	return c.polling
}

// CheckHeartbeat is the single entrypoint coupling the polling strategy to
// the timer:
//
//	operations += 1
//	if strategy.ShouldPoll():
//	    polls += 1
//	    strategy.RecordPoll()
//	    if timer.ShouldPromote():
//	        return true
//	return false
//
// On a true result the caller must invoke RecordPromotion once a
// promotion has actually happened.
func (c *WorkerContext) CheckHeartbeat() bool {
	c.operations++

	if c.polling.ShouldPoll() {
		c.polls++
		c.polling.RecordPoll()

		if c.timer.ShouldPromote() {
			return true
		}
	}

	return false
}

// RecordPromotion delegates to the timer and increments the promotion
// counter. Call exactly once per actual promotion.
func (c *WorkerContext) RecordPromotion() {
	c.timer.RecordPromotion()
	c.promotions++
}

// Reset clears the timer, polling strategy, and stats together.
func (c *WorkerContext) Reset() {
	c.timer.Reset()
	c.polling.Reset()
	c.operations, c.polls, c.promotions = 0, 0, 0
}

// ContextStats is an immutable snapshot of a worker context's counters.
type ContextStats struct {
	Operations int64
	Polls      int64
	Promotions int64
}

// PollingRate returns Polls / Operations.
func (s ContextStats) PollingRate() float64 {
	if s.Operations == 0 {
		return 0
	}
	return float64(s.Polls) / float64(s.Operations)
}

// PromotionRate returns Promotions / Polls.
func (s ContextStats) PromotionRate() float64 {
	if s.Polls == 0 {
		return 0
	}
	return float64(s.Promotions) / float64(s.Polls)
}

// Stats returns a snapshot of this context's counters.
func (c *WorkerContext) Stats() ContextStats {
	return ContextStats{
		Operations: c.operations,
		Polls:      c.polls,
		Promotions: c.promotions,
	}
}
