package core

// PoolStats is a read-only snapshot of the bounded top-level worker pool's
// state, exported by pool.WorkerPool.Stats() and consumed by the
// Prometheus snapshot poller. Adapted from the teacher's PoolStats in
// core/observability.go (dropping the Delayed field: heartbeat scheduling
// has no delayed-task concept).
type PoolStats struct {
	Workers int
	Queued  int
	Active  int
	Running bool
}

// ExecutorStats is a read-only snapshot of a Fork/Join Executor's
// lifetime counters.
type ExecutorStats struct {
	TasksSubmitted int64
	Promotions     int64
	Active         int64
	Shutdown       bool
}

// PromotionRate returns Promotions / TasksSubmitted.
func (s ExecutorStats) PromotionRate() float64 {
	if s.TasksSubmitted == 0 {
		return 0
	}
	return float64(s.Promotions) / float64(s.TasksSubmitted)
}
